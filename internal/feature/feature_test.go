package feature

import (
	"testing"
)

func TestVectorizeLengthMatchesSchema(t *testing.T) {
	schema := DefaultSchema()
	vec := Vectorize(nil, schema)
	if len(vec) != len(schema) {
		t.Fatalf("len(vec) = %d, want %d", len(vec), len(schema))
	}
	for i, v := range vec {
		if v != 0 {
			t.Errorf("vec[%d] = %g, want 0 for empty source", i, v)
		}
	}
}

func TestVectorizeZeroFillsAndDropsUnknown(t *testing.T) {
	schema := []string{"a", "b", "c"}
	source := map[string]float64{
		"a":       1.5,
		"c":       -2,
		"unknown": 99, // not in schema; must be dropped
	}

	vec := Vectorize(source, schema)
	want := []float64{1.5, 0, -2}
	for i := range want {
		if vec[i] != want[i] {
			t.Errorf("vec[%d] = %g, want %g", i, vec[i], want[i])
		}
	}
}

func TestVectorizeDeterministic(t *testing.T) {
	schema := DefaultSchema()
	source := map[string]float64{"pain_level": 7, "Diabetes": 1}

	a := Vectorize(source, schema)
	b := Vectorize(source, schema)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectorization not deterministic at column %d", i)
		}
	}
}

func TestNumericValues(t *testing.T) {
	data := map[string]any{
		"pain_level":      float64(8),
		"Diabetes":        true,
		"Asthma":          false,
		"duration_months": "6",
		"free_text":       "not a number",
		"nested":          map[string]any{"x": 1},
	}

	values := NumericValues(data)
	if values["pain_level"] != 8 {
		t.Errorf("pain_level = %g, want 8", values["pain_level"])
	}
	if values["Diabetes"] != 1 {
		t.Errorf("Diabetes = %g, want 1", values["Diabetes"])
	}
	if v, ok := values["Asthma"]; ok && v != 0 {
		t.Errorf("Asthma = %g, want 0", v)
	}
	if values["duration_months"] != 6 {
		t.Errorf("duration_months = %g, want 6", values["duration_months"])
	}
	if _, ok := values["free_text"]; ok {
		t.Error("non-numeric string must be dropped")
	}
	if _, ok := values["nested"]; ok {
		t.Error("non-scalar value must be dropped")
	}
}

func TestDeriveCompleteRecord(t *testing.T) {
	record := map[string]string{
		"disease":            "Type 2 Diabetes",
		"duration_months":    "about 6 months",
		"symptoms":           "Fatigue, joint pain and frequent urination",
		"pain_level":         "7 out of 10",
		"prior_diagnosis":    "Yes",
		"comorbidity":        "mild thyroid issues",
		"preferred_language": "Hindi",
	}

	values := Derive(record)

	want := map[string]float64{
		"duration_months":          6,
		"pain_level":               7,
		"Diabetes":                 1,
		"fatigue":                  1,
		"joint pain":               1,
		"frequent urination":       1,
		"prior_diagnosis_Yes":      1,
		"comorbidity_Thyroid":      1,
		"preferred_language_Hindi": 1,
	}
	for col, v := range want {
		if values[col] != v {
			t.Errorf("values[%q] = %g, want %g", col, values[col], v)
		}
	}
	if len(values) != len(want) {
		t.Errorf("derived %d columns, want %d: %v", len(values), len(want), values)
	}
}

func TestDeriveDegradesToZero(t *testing.T) {
	record := map[string]string{
		"disease":            "a condition no model column knows",
		"duration_months":    "a while",
		"symptoms":           "",
		"pain_level":         "dunno",
		"prior_diagnosis":    "No",
		"comorbidity":        "none",
		"preferred_language": "English",
	}

	values := Derive(record)
	if len(values) != 0 {
		t.Errorf("unrecognized answers must derive nothing, got %v", values)
	}

	// And the vector still has full schema length, all zero.
	vec := Vectorize(values, DefaultSchema())
	if len(vec) != len(DefaultSchema()) {
		t.Fatalf("len(vec) = %d, want %d", len(vec), len(DefaultSchema()))
	}
}

func TestDeriveNegativeAnswerNotAffirmative(t *testing.T) {
	values := Derive(map[string]string{"prior_diagnosis": "no, never"})
	if _, ok := values["prior_diagnosis_Yes"]; ok {
		t.Error("negative answer set prior_diagnosis_Yes")
	}
}
