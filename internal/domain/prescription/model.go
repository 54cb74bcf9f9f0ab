package prescription

import (
	"encoding/json"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/pricing"
)

// Medicine is one entry extracted from a prescription image. Dosage and
// quantity stay empty when the model could not read them; they are never
// fabricated.
type Medicine struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage,omitempty"`
	Quantity string `json:"quantity,omitempty"`
}

// CDSCOStatus is the Indian regulatory approval status of a medicine.
type CDSCOStatus string

const (
	CDSCOApproved    CDSCOStatus = "Approved"
	CDSCOBanned      CDSCOStatus = "Banned"
	CDSCOUnderReview CDSCOStatus = "Under Review"
	CDSCONotListed   CDSCOStatus = "N/A"
	CDSCOUnknown     CDSCOStatus = "Unknown"
)

// UnmarshalJSON maps out-of-contract values to CDSCOUnknown instead of
// failing the decode.
func (s *CDSCOStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch CDSCOStatus(raw) {
	case CDSCOApproved, CDSCOBanned, CDSCOUnderReview, CDSCONotListed:
		*s = CDSCOStatus(raw)
	default:
		*s = CDSCOUnknown
	}
	return nil
}

// Schedule is the Indian drug schedule classification.
type Schedule string

const (
	ScheduleH         Schedule = "Schedule H"
	ScheduleOTC       Schedule = "OTC"
	ScheduleAyurvedic Schedule = "Ayurvedic"
	ScheduleGeneral   Schedule = "General"
	ScheduleNotListed Schedule = "N/A"
	ScheduleUnknown   Schedule = "Unknown"
)

// UnmarshalJSON maps out-of-contract values to ScheduleUnknown instead of
// failing the decode.
func (s *Schedule) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch Schedule(raw) {
	case ScheduleH, ScheduleOTC, ScheduleAyurvedic, ScheduleGeneral, ScheduleNotListed:
		*s = Schedule(raw)
	default:
		*s = ScheduleUnknown
	}
	return nil
}

// GenericAlternative describes one generic substitute for a branded medicine.
type GenericAlternative struct {
	GenericName     string              `json:"genericName"`
	SaltComposition string              `json:"saltComposition"`
	Strength        string              `json:"strength"`
	Form            string              `json:"form"`
	Prices          []pricing.PriceInfo `json:"prices"`
	SafetyNote      string              `json:"safetyNote,omitempty"`
	CDSCOStatus     CDSCOStatus         `json:"cdscoStatus"`
	Schedule        Schedule            `json:"schedule"`
	RecallNotice    string              `json:"recallNotice,omitempty"`
}

// BrandedAnalysis bundles the alternatives found for one branded medicine.
type BrandedAnalysis struct {
	BrandedSaltComposition string               `json:"brandedSaltComposition"`
	Alternatives           []GenericAlternative `json:"alternatives"`
}

// AnalyzedMedicine pairs a prescription entry with its analysis; Analysis is
// nil when the batch lookup had nothing for that name.
type AnalyzedMedicine struct {
	BrandedMedicine Medicine         `json:"brandedMedicine"`
	Analysis        *BrandedAnalysis `json:"analysis,omitempty"`
}

// FlowResult is the outcome of the full two-step prescription flow.
type FlowResult struct {
	Medicines []AnalyzedMedicine `json:"medicines"`
}
