package symptoms

import "encoding/json"

// ConditionSeverity grades how urgent a possible condition is.
type ConditionSeverity string

const (
	SeverityLow     ConditionSeverity = "Low"
	SeverityMedium  ConditionSeverity = "Medium"
	SeverityHigh    ConditionSeverity = "High"
	SeverityUnknown ConditionSeverity = "Unknown"
)

func (s *ConditionSeverity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch ConditionSeverity(raw) {
	case SeverityLow, SeverityMedium, SeverityHigh:
		*s = ConditionSeverity(raw)
	default:
		*s = SeverityUnknown
	}
	return nil
}

// RemedyCategory buckets a non-medicinal suggestion.
type RemedyCategory string

const (
	RemedyHome      RemedyCategory = "Home Remedy"
	RemedyAyurvedic RemedyCategory = "Ayurvedic"
	RemedyPhysical  RemedyCategory = "Physical Activity"
	RemedyLifestyle RemedyCategory = "Lifestyle"
)

// Condition is one possible diagnosis candidate.
type Condition struct {
	Condition   string            `json:"condition"`
	Severity    ConditionSeverity `json:"severity"`
	Description string            `json:"description"`
}

// Remedy is a safe, non-medicinal suggestion relevant to the symptoms.
type Remedy struct {
	Category    RemedyCategory `json:"category"`
	Remedy      string         `json:"remedy"`
	Description string         `json:"description"`
}

// PersonalInfo optionally contextualizes the analysis. All fields are
// free-text and omitted from the prompt when blank.
type PersonalInfo struct {
	Age     string `json:"age,omitempty"`
	Gender  string `json:"gender,omitempty"`
	History string `json:"history,omitempty"`
}

// Analysis is the full symptom report. Disclaimer is always populated.
type Analysis struct {
	PossibleConditions   []Condition `json:"possibleConditions"`
	Recommendation       string      `json:"recommendation"`
	NonMedicinalRemedies []Remedy    `json:"nonMedicinalRemedies,omitempty"`
	Disclaimer           string      `json:"disclaimer"`
}
