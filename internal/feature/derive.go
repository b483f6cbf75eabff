package feature

import (
	"regexp"
	"strconv"
	"strings"
)

// Known vocabularies behind the one-hot columns. Matching is case-insensitive
// substring search over the free-text answer, so "type 2 diabetes" still
// lights up the Diabetes column.
var (
	diseaseColumns = []string{"Arthritis", "Asthma", "Diabetes", "Hypertension"}

	symptomColumns = []string{
		"swelling", "nausea", "frequent urination", "coughing", "fatigue",
		"light sensitivity", "joint pain", "stiffness", "shortness of breath",
	}

	comorbidityColumns = map[string]string{
		"kidney":  "comorbidity_Kidney Issues",
		"liver":   "comorbidity_Liver Disease",
		"lung":    "comorbidity_Lung Disease",
		"thyroid": "comorbidity_Thyroid",
	}
)

var numberPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

// Derive maps the seven raw intake answers onto scoring-model column values.
// Like Vectorize it is total: unparseable or unrecognized answers simply
// contribute nothing, leaving their columns at zero.
func Derive(record map[string]string) map[string]float64 {
	values := make(map[string]float64)

	if v, ok := firstNumber(record["duration_months"]); ok {
		values["duration_months"] = v
	}
	if v, ok := firstNumber(record["pain_level"]); ok {
		values["pain_level"] = v
	}

	disease := strings.ToLower(record["disease"])
	for _, col := range diseaseColumns {
		if strings.Contains(disease, strings.ToLower(col)) {
			values[col] = 1
		}
	}

	symptoms := strings.ToLower(record["symptoms"])
	for _, col := range symptomColumns {
		if strings.Contains(symptoms, col) {
			values[col] = 1
		}
	}

	if isAffirmative(record["prior_diagnosis"]) {
		values["prior_diagnosis_Yes"] = 1
	}

	comorbidity := strings.ToLower(record["comorbidity"])
	for keyword, col := range comorbidityColumns {
		if strings.Contains(comorbidity, keyword) {
			values[col] = 1
		}
	}

	if strings.Contains(strings.ToLower(record["preferred_language"]), "hindi") {
		values["preferred_language_Hindi"] = 1
	}

	return values
}

// firstNumber extracts the first numeric token of a free-text answer, so
// "about 6 months" parses as 6.
func firstNumber(s string) (float64, bool) {
	match := numberPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isAffirmative(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "yeah", "yep", "true", "haan", "ha":
		return true
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "yes")
}
