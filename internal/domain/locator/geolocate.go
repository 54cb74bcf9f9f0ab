package locator

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
)

// PositionProvider resolves the caller's current position. Implementations
// may proxy a device report or an IP-based lookup.
type PositionProvider interface {
	CurrentPosition(ctx context.Context) (latitude, longitude float64, err error)
}

// Geolocation failure categories reported by providers.
var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
)

// ResolvePosition queries the provider with a bounded timeout and maps each
// failure category to a distinct user-facing message.
func ResolvePosition(ctx context.Context, provider PositionProvider, timeout time.Duration) (LocationQuery, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lat, lng, err := provider.CurrentPosition(ctx)
	switch {
	case err == nil:
		return LocationQuery{Latitude: &lat, Longitude: &lng}, nil
	case errors.Is(err, ErrPermissionDenied):
		return LocationQuery{}, apperrors.Wrap(apperrors.CodeInvalidInput, "location access was denied, search by place name instead", err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return LocationQuery{}, apperrors.Wrap(apperrors.CodeTransportError, "timed out determining your location, search by place name instead", err)
	default:
		return LocationQuery{}, apperrors.Wrap(apperrors.CodeTransportError, "your location could not be determined, search by place name instead", err)
	}
}
