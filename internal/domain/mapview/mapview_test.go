package mapview

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/locator"
	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
)

type fakeHandle struct {
	widgets int
	err     error
}

func (f *fakeHandle) NewWidget(_ WidgetConfig) (Widget, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.widgets++
	return newFakeWidget(), nil
}

type fakeWidget struct {
	markers     map[string]Marker
	zoom        int
	panned      []float64
	infoOpenFor string
	highlighted map[string]bool
	closes      int
}

func newFakeWidget() *fakeWidget {
	return &fakeWidget{markers: make(map[string]Marker), highlighted: make(map[string]bool)}
}

func (w *fakeWidget) AddMarker(m Marker) error {
	w.markers[m.ID] = m
	return nil
}

func (w *fakeWidget) RemoveMarker(id string) error {
	delete(w.markers, id)
	return nil
}

func (w *fakeWidget) PanTo(lat, lng float64) { w.panned = []float64{lat, lng} }
func (w *fakeWidget) Zoom() int              { return w.zoom }
func (w *fakeWidget) SetZoom(zoom int)       { w.zoom = zoom }

func (w *fakeWidget) ShowInfoWindow(markerID, _ string) { w.infoOpenFor = markerID }
func (w *fakeWidget) CloseInfoWindow()                  { w.infoOpenFor = ""; w.closes++ }
func (w *fakeWidget) SetHighlight(markerID string, on bool) {
	w.highlighted[markerID] = on
}

func floatPtr(v float64) *float64 { return &v }

func pharmacy(name, address string, lat, lng float64) locator.Pharmacy {
	return locator.Pharmacy{Name: name, Address: address, Latitude: floatPtr(lat), Longitude: floatPtr(lng)}
}

func TestLoaderDialsBackendOnce(t *testing.T) {
	dials := 0
	loader := NewLoader("key", func(string) (Handle, error) {
		dials++
		return &fakeHandle{}, nil
	})

	first, err := loader.Load()
	require.NoError(t, err)
	second, err := loader.Load()
	require.NoError(t, err)
	require.Same(t, first.(*fakeHandle), second.(*fakeHandle))
	require.Equal(t, 1, dials)
}

func TestLoaderMissingCredentialNeverDials(t *testing.T) {
	dials := 0
	loader := NewLoader("  ", func(string) (Handle, error) {
		dials++
		return &fakeHandle{}, nil
	})

	_, err := loader.Load()
	require.True(t, apperrors.IsCode(err, apperrors.CodeMapLoadError))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, KindMissingCredential, loadErr.Kind)
	require.Zero(t, dials)
}

func TestLoaderFailureIsSticky(t *testing.T) {
	dials := 0
	loader := NewLoader("key", func(string) (Handle, error) {
		dials++
		return nil, errors.New("backend down")
	})

	_, err := loader.Load()
	require.Error(t, err)
	_, err = loader.Load()
	require.Error(t, err)
	require.Equal(t, 1, dials)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, KindLoadFailure, loadErr.Kind)
}

func TestLoaderWidgetInitFailureKeepsHandle(t *testing.T) {
	handle := &fakeHandle{err: errors.New("viewport rejected")}
	loader := NewLoader("key", func(string) (Handle, error) { return handle, nil })

	_, err := loader.Widget(WidgetConfig{})
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, KindInitFailure, loadErr.Kind)

	handle.err = nil
	_, err = loader.Widget(WidgetConfig{})
	require.NoError(t, err)
}

func newTestReconciler(widget Widget) *Reconciler {
	return NewReconciler(ReconcilerConfig{SelectionZoom: 15, HighlightFor: time.Millisecond}, widget)
}

func TestSyncReplacesMarkerSet(t *testing.T) {
	widget := newFakeWidget()
	rec := newTestReconciler(widget)

	require.NoError(t, rec.Sync([]locator.Pharmacy{
		pharmacy("Apollo", "MG Road", 12.97, 77.59),
		pharmacy("MedPlus", "Church Street", 12.98, 77.60),
	}))
	require.Len(t, widget.markers, 2)

	require.NoError(t, rec.Sync([]locator.Pharmacy{
		pharmacy("MedPlus", "Church Street", 12.98, 77.60),
		pharmacy("Wellness Forever", "Brigade Road", 12.96, 77.61),
	}))
	require.Len(t, widget.markers, 2)
	require.NotContains(t, widget.markers, "Apollo|MG Road")
	require.Contains(t, widget.markers, "Wellness Forever|Brigade Road")
}

func TestSyncSkipsPharmaciesWithoutCoordinates(t *testing.T) {
	widget := newFakeWidget()
	rec := newTestReconciler(widget)

	require.NoError(t, rec.Sync([]locator.Pharmacy{
		pharmacy("Apollo", "MG Road", 12.97, 77.59),
		{Name: "Unmapped", Address: "Somewhere"},
	}))
	require.Len(t, widget.markers, 1)
	require.Equal(t, 1, rec.MarkerCount())
}

func TestSyncClosesInfoWindowAndClearsSelection(t *testing.T) {
	widget := newFakeWidget()
	rec := newTestReconciler(widget)

	require.NoError(t, rec.Sync([]locator.Pharmacy{pharmacy("Apollo", "MG Road", 12.97, 77.59)}))
	require.NoError(t, rec.Select("Apollo|MG Road"))
	require.Equal(t, "Apollo|MG Road", widget.infoOpenFor)

	require.NoError(t, rec.Sync(nil))
	require.Empty(t, widget.infoOpenFor)
	_, selected := rec.Selected()
	require.False(t, selected)
}

func TestSelectPansRaisesZoomAndHighlights(t *testing.T) {
	widget := newFakeWidget()
	widget.zoom = 5
	rec := newTestReconciler(widget)
	cleared := make(chan string, 1)
	rec.after = func(_ time.Duration, f func()) *time.Timer {
		f()
		cleared <- "done"
		return nil
	}

	require.NoError(t, rec.Sync([]locator.Pharmacy{pharmacy("Apollo", "MG Road", 12.97, 77.59)}))
	require.NoError(t, rec.Select("Apollo|MG Road"))

	require.Equal(t, []float64{12.97, 77.59}, widget.panned)
	require.Equal(t, 15, widget.zoom)
	require.Equal(t, "Apollo|MG Road", widget.infoOpenFor)
	<-cleared
	require.False(t, widget.highlighted["Apollo|MG Road"])
}

func TestSelectKeepsCloserZoom(t *testing.T) {
	widget := newFakeWidget()
	widget.zoom = 18
	rec := newTestReconciler(widget)

	require.NoError(t, rec.Sync([]locator.Pharmacy{pharmacy("Apollo", "MG Road", 12.97, 77.59)}))
	require.NoError(t, rec.Select("Apollo|MG Road"))
	require.Equal(t, 18, widget.zoom)
}

func TestSelectUnknownMarkerIsNotFound(t *testing.T) {
	rec := newTestReconciler(newFakeWidget())
	err := rec.Select("ghost|nowhere")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestDeselectClosesInfoWindowAndHighlight(t *testing.T) {
	widget := newFakeWidget()
	// No highlight duration, so only Deselect can turn the highlight off.
	rec := NewReconciler(ReconcilerConfig{SelectionZoom: 15}, widget)

	require.NoError(t, rec.Sync([]locator.Pharmacy{pharmacy("Apollo", "MG Road", 12.97, 77.59)}))
	require.NoError(t, rec.Select("Apollo|MG Road"))
	require.True(t, widget.highlighted["Apollo|MG Road"])

	rec.Deselect()

	require.Empty(t, widget.infoOpenFor)
	require.False(t, widget.highlighted["Apollo|MG Road"])
	_, selected := rec.Selected()
	require.False(t, selected)
}

func TestSyncClearsActiveSelection(t *testing.T) {
	widget := newFakeWidget()
	rec := NewReconciler(ReconcilerConfig{SelectionZoom: 15}, widget)

	require.NoError(t, rec.Sync([]locator.Pharmacy{pharmacy("Apollo", "MG Road", 12.97, 77.59)}))
	require.NoError(t, rec.Select("Apollo|MG Road"))

	require.NoError(t, rec.Sync([]locator.Pharmacy{
		pharmacy("Apollo", "MG Road", 12.97, 77.59),
		pharmacy("MedPlus", "Church Street", 12.98, 77.60),
	}))

	require.Empty(t, widget.infoOpenFor)
	require.False(t, widget.highlighted["Apollo|MG Road"])
	_, selected := rec.Selected()
	require.False(t, selected)
}
