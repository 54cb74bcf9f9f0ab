package device

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
)

const tokenTypeDevice = "device"

// Claims identifies an anonymous device.
type Claims struct {
	DeviceID  string
	ExpiresAt time.Time
}

// Registration is the response to a new device enrollment.
type Registration struct {
	DeviceID  string    `json:"deviceId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Config configures device token issuance.
type Config struct {
	Secret   string
	TokenTTL time.Duration
}

// Service issues and validates anonymous device tokens. There are no user
// accounts; a token only scopes per-device state such as favorites.
type Service interface {
	Register() (Registration, error)
	ValidateToken(token string) (Claims, error)
}

type service struct {
	cfg Config
}

func NewService(cfg Config) Service {
	return &service{cfg: cfg}
}

// Register mints a fresh device identity and its signed token.
func (s *service) Register() (Registration, error) {
	deviceID := uuid.NewString()
	now := time.Now()
	expiresAt := now.Add(s.cfg.TokenTTL)

	claims := tokenClaims{
		DeviceID:  deviceID,
		TokenType: tokenTypeDevice,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			ID:        newTokenID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return Registration{}, apperrors.Wrap(apperrors.CodeInvalidToken, "failed to sign device token", err)
	}
	return Registration{DeviceID: deviceID, Token: signed, ExpiresAt: expiresAt}, nil
}

func (s *service) ValidateToken(token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing", nil)
	}
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token invalid", nil)
	}
	if claims.TokenType != tokenTypeDevice {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token type mismatch", nil)
	}
	if claims.ExpiresAt == nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing expiry", nil)
	}
	if claims.ExpiresAt.Time.Before(time.Now()) {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token expired", nil)
	}
	if claims.DeviceID == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing device id", nil)
	}
	return Claims{DeviceID: claims.DeviceID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	DeviceID  string `json:"deviceId"`
	TokenType string `json:"type"`
}

func newTokenID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return hex.EncodeToString(buf)
}
