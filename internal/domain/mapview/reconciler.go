package mapview

import (
	"sync"
	"time"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/locator"
	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
)

// WidgetConfig is the initial viewport for a new map widget.
type WidgetConfig struct {
	CenterLatitude  float64
	CenterLongitude float64
	Zoom            int
}

// Marker is a rendered pharmacy pin. ID is the pharmacy identity pair.
type Marker struct {
	ID          string
	Title       string
	Latitude    float64
	Longitude   float64
	JanAushadhi bool
}

// Widget is the rendered map surface the reconciler drives. Implementations
// adapt a concrete renderer; tests use a recording fake.
type Widget interface {
	AddMarker(m Marker) error
	RemoveMarker(id string) error
	PanTo(latitude, longitude float64)
	Zoom() int
	SetZoom(zoom int)
	ShowInfoWindow(markerID, title string)
	CloseInfoWindow()
	SetHighlight(markerID string, on bool)
}

// ReconcilerConfig tunes selection behavior.
type ReconcilerConfig struct {
	SelectionZoom int
	HighlightFor  time.Duration
}

// Reconciler owns the marker set on a widget. Each Sync fully replaces the
// previous result set; markers for pharmacies without coordinates are never
// created.
type Reconciler struct {
	cfg    ReconcilerConfig
	widget Widget
	after  func(d time.Duration, f func()) *time.Timer

	mu       sync.Mutex
	markers  map[string]Marker
	selected string
}

func NewReconciler(cfg ReconcilerConfig, widget Widget) *Reconciler {
	return &Reconciler{
		cfg:     cfg,
		widget:  widget,
		after:   time.AfterFunc,
		markers: make(map[string]Marker),
	}
}

// Sync replaces the widget's markers with one per pharmacy that carries
// coordinates. Stale markers are removed before new ones are added, and any
// open info window is closed since its marker may be gone.
func (r *Reconciler) Sync(pharmacies []locator.Pharmacy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]Marker, len(pharmacies))
	for _, p := range pharmacies {
		if !p.HasCoordinates() {
			continue
		}
		id := p.ID()
		if _, ok := next[id]; ok {
			continue
		}
		next[id] = Marker{
			ID:          id,
			Title:       p.Name,
			Latitude:    *p.Latitude,
			Longitude:   *p.Longitude,
			JanAushadhi: p.IsJanAushadhi(),
		}
	}

	for id := range r.markers {
		if _, keep := next[id]; !keep {
			if err := r.widget.RemoveMarker(id); err != nil {
				return err
			}
		}
	}
	for id, m := range next {
		if _, exists := r.markers[id]; !exists {
			if err := r.widget.AddMarker(m); err != nil {
				return err
			}
		}
	}

	r.clearSelectionLocked()
	r.markers = next
	return nil
}

// Select focuses a marker: pan to it, raise the zoom to at least the
// selection level, open its info window, and highlight it briefly. Selecting
// an unknown identity is a not-found error.
func (r *Reconciler) Select(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.markers[id]
	if !ok {
		return apperrors.Wrap(apperrors.CodeNotFound, "the selected pharmacy is not on the map", nil)
	}

	r.widget.PanTo(m.Latitude, m.Longitude)
	if r.widget.Zoom() < r.cfg.SelectionZoom {
		r.widget.SetZoom(r.cfg.SelectionZoom)
	}
	r.widget.ShowInfoWindow(m.ID, m.Title)
	r.widget.SetHighlight(m.ID, true)
	r.selected = id

	if r.cfg.HighlightFor > 0 {
		markerID := m.ID
		r.after(r.cfg.HighlightFor, func() {
			r.widget.SetHighlight(markerID, false)
		})
	}
	return nil
}

// Deselect closes the info window, cancels the marker highlight, and clears
// the active selection.
func (r *Reconciler) Deselect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearSelectionLocked()
}

func (r *Reconciler) clearSelectionLocked() {
	r.widget.CloseInfoWindow()
	if r.selected != "" {
		r.widget.SetHighlight(r.selected, false)
	}
	r.selected = ""
}

// Selected reports the currently focused marker identity, if any.
func (r *Reconciler) Selected() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected, r.selected != ""
}

// MarkerCount reports how many markers are currently rendered.
func (r *Reconciler) MarkerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.markers)
}
