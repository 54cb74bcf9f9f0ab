package locator

import "strings"

// Filter narrows a pharmacy list. All active criteria must match.
type Filter struct {
	Name            string
	Services        []string
	JanAushadhiOnly bool
}

// Apply keeps pharmacies matching every active criterion. Name and service
// matching is a case-insensitive substring check.
func (f Filter) Apply(pharmacies []Pharmacy) []Pharmacy {
	out := make([]Pharmacy, 0, len(pharmacies))
	for _, p := range pharmacies {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f Filter) matches(p Pharmacy) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.JanAushadhiOnly && !p.IsJanAushadhi() {
		return false
	}
	for _, want := range f.Services {
		if !hasService(p, want) {
			return false
		}
	}
	return true
}

func hasService(p Pharmacy, want string) bool {
	for _, s := range p.Services {
		if strings.Contains(strings.ToLower(s), strings.ToLower(want)) {
			return true
		}
	}
	return false
}

// ServiceNames collects the distinct service labels across a result set,
// excluding the Jan Aushadhi marker which has a dedicated toggle.
func ServiceNames(pharmacies []Pharmacy) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range pharmacies {
		for _, s := range p.Services {
			if strings.Contains(strings.ToLower(s), strings.ToLower(JanAushadhiService)) {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
