package interactions

import "encoding/json"

// Severity grades a single drug interaction.
type Severity string

const (
	SeverityMajor    Severity = "Major"
	SeverityModerate Severity = "Moderate"
	SeverityMinor    Severity = "Minor"
	SeverityNone     Severity = "None"
	SeverityUnknown  Severity = "Unknown"
)

// UnmarshalJSON folds unrecognized grades into SeverityUnknown so a drifting
// model vocabulary never fails the whole analysis.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch Severity(raw) {
	case SeverityMajor, SeverityModerate, SeverityMinor, SeverityNone:
		*s = Severity(raw)
	default:
		*s = SeverityUnknown
	}
	return nil
}

// Interaction describes one interacting pair.
type Interaction struct {
	Medicines   []string `json:"medicines"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// Analysis is the full interaction report. An empty Interactions slice with a
// populated Summary means no interactions were found.
type Analysis struct {
	Summary      string        `json:"summary"`
	Interactions []Interaction `json:"interactions"`
}
