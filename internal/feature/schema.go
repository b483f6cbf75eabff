// Package feature converts intake answers and raw feature maps into the
// fixed-order numeric vector the scoring model expects.
//
// Vectorization is best-effort by design: unknown data is ignored and
// missing data degrades to zero. It never fails.
package feature

import "strconv"

// defaultColumns is the column order of the current scoring model. Changing
// the model schema is a config change here, not a code change elsewhere:
// every consumer receives the schema as an ordered list of names.
var defaultColumns = []string{
	"duration_months", "pain_level",
	"Arthritis", "Asthma", "Diabetes", "Hypertension",
	"swelling", "nausea", "frequent urination", "coughing", "fatigue",
	"light sensitivity", "joint pain", "stiffness", "shortness of breath",
	"prior_diagnosis_Yes",
	"comorbidity_Kidney Issues", "comorbidity_Liver Disease",
	"comorbidity_Lung Disease", "comorbidity_Thyroid",
	"preferred_language_Hindi",
}

// DefaultSchema returns a copy of the built-in 21-column model schema.
func DefaultSchema() []string {
	return append([]string(nil), defaultColumns...)
}

// Vectorize maps source values onto the schema order. The result always has
// exactly len(schema) entries: columns absent from source are zero-filled and
// source keys absent from the schema are silently dropped.
func Vectorize(source map[string]float64, schema []string) []float64 {
	vec := make([]float64, len(schema))
	for i, col := range schema {
		vec[i] = source[col]
	}
	return vec
}

// NumericValues coerces a decoded flat JSON object into column values.
// Numbers pass through, booleans become 1/0, numeric strings are parsed, and
// everything else is dropped (which zero-fills the column downstream).
func NumericValues(data map[string]any) map[string]float64 {
	values := make(map[string]float64, len(data))
	for key, raw := range data {
		switch v := raw.(type) {
		case float64:
			values[key] = v
		case bool:
			if v {
				values[key] = 1
			}
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				values[key] = f
			}
		}
	}
	return values
}
