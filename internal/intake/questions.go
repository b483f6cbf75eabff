package intake

// QuestionSlot is one entry of the fixed intake questionnaire. The catalogue
// is immutable at runtime; slot order is the order answers are collected in.
type QuestionSlot struct {
	Index     int    `json:"index"`
	Prompt    string `json:"prompt"`
	FieldName string `json:"field_name"`
}

// NumSlots is the number of answers a conversation must collect before it is
// complete.
const NumSlots = 7

// Questions is the ordered intake catalogue. Field names match the keys the
// feature schema derives columns from.
var Questions = [NumSlots]QuestionSlot{
	{0, "1. What is your diagnosed disease or medical condition?", "disease"},
	{1, "2. How many months have you been experiencing this condition?", "duration_months"},
	{2, "3. What symptoms are you currently experiencing?", "symptoms"},
	{3, "4. On a scale from 1 to 10, how would you rate your current pain level?", "pain_level"},
	{4, "5. Have you been previously diagnosed with this condition? (Yes/No)", "prior_diagnosis"},
	{5, "6. Do you have any other comorbidities or existing medical conditions?", "comorbidity"},
	{6, "7. What is your preferred language for communication? (English/Hindi)", "preferred_language"},
}

// Question returns the slot at index, or false if index is out of range.
func Question(index int) (QuestionSlot, bool) {
	if index < 0 || index >= NumSlots {
		return QuestionSlot{}, false
	}
	return Questions[index], true
}
