package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
)

func TestService_RegisterAndValidate(t *testing.T) {
	svc := NewService(Config{Secret: "test-secret", TokenTTL: time.Hour})

	reg, err := svc.Register()
	require.NoError(t, err)
	require.NotEmpty(t, reg.DeviceID)
	require.NotEmpty(t, reg.Token)
	require.WithinDuration(t, time.Now().Add(time.Hour), reg.ExpiresAt, time.Minute)

	claims, err := svc.ValidateToken(reg.Token)
	require.NoError(t, err)
	require.Equal(t, reg.DeviceID, claims.DeviceID)
}

func TestService_EachRegistrationIsDistinct(t *testing.T) {
	svc := NewService(Config{Secret: "test-secret", TokenTTL: time.Hour})

	first, err := svc.Register()
	require.NoError(t, err)
	second, err := svc.Register()
	require.NoError(t, err)
	require.NotEqual(t, first.DeviceID, second.DeviceID)
}

func TestService_RejectsMissingToken(t *testing.T) {
	svc := NewService(Config{Secret: "test-secret", TokenTTL: time.Hour})

	_, err := svc.ValidateToken("  ")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestService_RejectsTamperedToken(t *testing.T) {
	svc := NewService(Config{Secret: "test-secret", TokenTTL: time.Hour})
	reg, err := svc.Register()
	require.NoError(t, err)

	_, err = svc.ValidateToken(reg.Token + "x")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestService_RejectsForeignSecret(t *testing.T) {
	issuer := NewService(Config{Secret: "issuer-secret", TokenTTL: time.Hour})
	verifier := NewService(Config{Secret: "other-secret", TokenTTL: time.Hour})

	reg, err := issuer.Register()
	require.NoError(t, err)

	_, err = verifier.ValidateToken(reg.Token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestService_RejectsExpiredToken(t *testing.T) {
	svc := NewService(Config{Secret: "test-secret", TokenTTL: -time.Minute})
	reg, err := svc.Register()
	require.NoError(t, err)

	_, err = svc.ValidateToken(reg.Token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}
