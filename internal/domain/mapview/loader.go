package mapview

import (
	"fmt"
	"strings"
	"sync"

	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
)

// LoadErrorKind distinguishes why the map backend is unavailable.
type LoadErrorKind string

const (
	KindMissingCredential LoadErrorKind = "missing_credential"
	KindLoadFailure       LoadErrorKind = "load_failure"
	KindInitFailure       LoadErrorKind = "init_failure"
)

// LoadError is a categorized map bootstrap failure.
type LoadError struct {
	Kind LoadErrorKind
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("map %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("map %s", e.Kind)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Handle is an initialized connection to the map rendering backend.
type Handle interface {
	NewWidget(cfg WidgetConfig) (Widget, error)
}

// OpenFunc dials the map backend. It runs at most once per Loader.
type OpenFunc func(apiKey string) (Handle, error)

// Loader shares a single backend handle across every map consumer in the
// process. The first Load settles the outcome; later calls observe the same
// handle or the same error without retrying.
type Loader struct {
	apiKey string
	open   OpenFunc

	once   sync.Once
	handle Handle
	err    error
}

func NewLoader(apiKey string, open OpenFunc) *Loader {
	return &Loader{apiKey: apiKey, open: open}
}

// Load returns the shared handle, initializing it on first use. A blank
// credential fails before the backend is ever dialed.
func (l *Loader) Load() (Handle, error) {
	l.once.Do(func() {
		if strings.TrimSpace(l.apiKey) == "" {
			l.err = apperrors.Wrap(apperrors.CodeMapLoadError, "the map could not be loaded because no maps credential is configured",
				&LoadError{Kind: KindMissingCredential})
			return
		}
		handle, err := l.open(l.apiKey)
		if err != nil {
			l.err = apperrors.Wrap(apperrors.CodeMapLoadError, "the map failed to load, please try again later",
				&LoadError{Kind: KindLoadFailure, Err: err})
			return
		}
		l.handle = handle
	})
	return l.handle, l.err
}

// Widget builds a map widget from the shared handle with the given initial
// viewport. Widget construction failures are init failures, not load
// failures: the shared handle stays usable.
func (l *Loader) Widget(cfg WidgetConfig) (Widget, error) {
	handle, err := l.Load()
	if err != nil {
		return nil, err
	}
	widget, err := handle.NewWidget(cfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMapLoadError, "the map failed to initialize, please try again later",
			&LoadError{Kind: KindInitFailure, Err: err})
	}
	return widget, nil
}
