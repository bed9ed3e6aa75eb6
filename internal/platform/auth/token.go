package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTokenTTL = 8 * time.Hour

var ErrNoSigningKey = errors.New("auth: no signing key configured")

// TokenIssuer mints HS256 tokens that JWTMiddleware accepts when configured
// with the same key, issuer and audience.
type TokenIssuer struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	TTL        time.Duration
}

func NewTokenIssuer(cfg JWTConfig, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		SigningKey: cfg.SigningKey,
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		TTL:        ttl,
	}
}

// Issue signs a token for subject with the given roles and returns it with
// its expiry.
func (i *TokenIssuer) Issue(subject, name string, roles []string) (string, time.Time, error) {
	if len(i.SigningKey) == 0 {
		return "", time.Time{}, ErrNoSigningKey
	}
	issued := time.Now().UTC()
	expires := issued.Add(i.TTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    i.Issuer,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Name:  name,
		Roles: roles,
	}
	if i.Audience != "" {
		claims.Audience = jwt.ClaimStrings{i.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.SigningKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}
