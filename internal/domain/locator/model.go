package locator

import "strings"

// JanAushadhiService is the service tag marking a government-subsidized
// Pradhan Mantri Bhartiya Janaushadhi Kendra store.
const JanAushadhiService = "Jan Aushadhi"

// Pharmacy is one candidate store returned by the locator.
type Pharmacy struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Distance  string   `json:"distance,omitempty"`
	Contact   string   `json:"contact,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Services  []string `json:"services,omitempty"`
}

// ID is the identity pair: two pharmacies are the same place iff name and
// address are textually equal.
func (p Pharmacy) ID() string {
	return p.Name + "|" + p.Address
}

// HasCoordinates reports whether the pharmacy can be placed on a map.
func (p Pharmacy) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// IsJanAushadhi reports whether the store carries the Jan Aushadhi tag.
func (p Pharmacy) IsJanAushadhi() bool {
	for _, svc := range p.Services {
		if strings.Contains(strings.ToLower(svc), strings.ToLower(JanAushadhiService)) {
			return true
		}
	}
	return false
}

// LocationQuery binds either geographic coordinates or a free-text place
// query, never both.
type LocationQuery struct {
	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lng,omitempty"`
	Place     string   `json:"query,omitempty"`
}

// HasCoordinates reports whether the query carries a coordinate pair.
func (q LocationQuery) HasCoordinates() bool {
	return q.Latitude != nil && q.Longitude != nil
}
