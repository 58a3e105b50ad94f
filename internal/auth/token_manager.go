package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = time.Hour

var (
	errMissingSigningSecret = errors.New("auth: signing secret must be provided")
	errMissingSubject       = errors.New("auth: subject must be provided")
)

// TokenManagerConfig configures the HS256 caller-token manager.
type TokenManagerConfig struct {
	SigningSecret []byte
	Issuer        string
	Audience      string
	TokenTTL      time.Duration
	Clock         func() time.Time
}

// TokenManager mints and validates the bearer tokens that carry caller
// identity into the API. Verifying the caller's actual credentials happens
// upstream; the manager only binds an already established identity to a
// signed token.
type TokenManager struct {
	signingSecret []byte
	issuer        string
	audience      string
	tokenTTL      time.Duration
	clock         func() time.Time
}

// NewTokenManager constructs a TokenManager with sane defaults.
func NewTokenManager(cfg TokenManagerConfig) *TokenManager {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TokenManager{
		signingSecret: append([]byte(nil), cfg.SigningSecret...),
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
		tokenTTL:      ttl,
		clock:         clock,
	}
}

// IssueToken produces a signed JWT for the caller along with its lifetime
// in seconds.
func (m *TokenManager) IssueToken(callerID string) (string, int64, error) {
	if len(m.signingSecret) == 0 {
		return "", 0, errMissingSigningSecret
	}
	subject := strings.TrimSpace(callerID)
	if subject == "" {
		return "", 0, errMissingSubject
	}

	now := m.clock().UTC()
	expiresAt := now.Add(m.tokenTTL).UTC()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    m.issuer,
		Audience:  []string{m.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingSecret)
	if err != nil {
		return "", 0, err
	}

	return signed, int64(expiresAt.Sub(now).Seconds()), nil
}

// ValidateToken ensures the token is well formed and returns the caller id.
func (m *TokenManager) ValidateToken(tokenString string) (string, error) {
	if len(m.signingSecret) == 0 {
		return "", errMissingSigningSecret
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing algorithm: %s", token.Method.Alg())
			}
			return m.signingSecret, nil
		},
		jwt.WithAudience(m.audience),
		jwt.WithIssuer(m.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock),
	)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errMissingSubject
	}
	return claims.Subject, nil
}
