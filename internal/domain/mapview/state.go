package mapview

import (
	"sort"
	"sync"
)

// ViewState is a serializable snapshot of a widget, mirrored to clients so
// they can render the map without owning marker lifecycle themselves.
type ViewState struct {
	CenterLatitude  float64  `json:"centerLatitude"`
	CenterLongitude float64  `json:"centerLongitude"`
	Zoom            int      `json:"zoom"`
	Markers         []Marker `json:"markers"`
	InfoWindowFor   string   `json:"infoWindowFor,omitempty"`
	HighlightedID   string   `json:"highlightedId,omitempty"`
}

// StateWidget is a headless Widget that tracks the full view state instead of
// rendering. The server reconciles against it and ships snapshots to the
// client.
type StateWidget struct {
	mu          sync.Mutex
	centerLat   float64
	centerLng   float64
	zoom        int
	markers     map[string]Marker
	infoFor     string
	highlighted string
}

func NewStateWidget(cfg WidgetConfig) *StateWidget {
	return &StateWidget{
		centerLat: cfg.CenterLatitude,
		centerLng: cfg.CenterLongitude,
		zoom:      cfg.Zoom,
		markers:   make(map[string]Marker),
	}
}

func (w *StateWidget) AddMarker(m Marker) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.markers[m.ID] = m
	return nil
}

func (w *StateWidget) RemoveMarker(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.markers, id)
	if w.highlighted == id {
		w.highlighted = ""
	}
	return nil
}

func (w *StateWidget) PanTo(latitude, longitude float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.centerLat = latitude
	w.centerLng = longitude
}

func (w *StateWidget) Zoom() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.zoom
}

func (w *StateWidget) SetZoom(zoom int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.zoom = zoom
}

func (w *StateWidget) ShowInfoWindow(markerID, _ string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.infoFor = markerID
}

func (w *StateWidget) CloseInfoWindow() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.infoFor = ""
}

func (w *StateWidget) SetHighlight(markerID string, on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if on {
		w.highlighted = markerID
		return
	}
	if w.highlighted == markerID {
		w.highlighted = ""
	}
}

// Snapshot returns the current view with markers in a stable order.
func (w *StateWidget) Snapshot() ViewState {
	w.mu.Lock()
	defer w.mu.Unlock()
	markers := make([]Marker, 0, len(w.markers))
	for _, m := range w.markers {
		markers = append(markers, m)
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].ID < markers[j].ID })
	return ViewState{
		CenterLatitude:  w.centerLat,
		CenterLongitude: w.centerLng,
		Zoom:            w.zoom,
		Markers:         markers,
		InfoWindowFor:   w.infoFor,
		HighlightedID:   w.highlighted,
	}
}

var _ Widget = (*StateWidget)(nil)
