package pill

// Identification is the pill identifier's best guess. Only the name and usage
// description are guaranteed; the physical attributes are filled when the
// image supports them.
type Identification struct {
	Name             string `json:"name"`
	Strength         string `json:"strength,omitempty"`
	Imprint          string `json:"imprint,omitempty"`
	Color            string `json:"color,omitempty"`
	Shape            string `json:"shape,omitempty"`
	Manufacturer     string `json:"manufacturer,omitempty"`
	UsageDescription string `json:"usageDescription"`
}
