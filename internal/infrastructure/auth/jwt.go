// Package auth issues and verifies the bearer tokens that identify callers.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
)

// Claims are the JWT claims carried by a bearer token
type Claims struct {
	Role  entities.Role `json:"role"`
	LabID *string       `json:"lab_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 bearer tokens
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a token manager
func NewTokenManager(secret, issuer string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue mints a token for the principal
func (m *TokenManager) Issue(p entities.Principal) (string, error) {
	if p.ID == "" {
		return "", errors.New("principal id is required")
	}
	if !p.Role.IsValid() {
		return "", fmt.Errorf("unknown role %q", p.Role)
	}

	now := m.now()
	claims := Claims{
		Role:  p.Role,
		LabID: p.LabID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies the token and returns the principal it identifies
func (m *TokenManager) Parse(token string) (*entities.Principal, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims.Subject == "" || !claims.Role.IsValid() {
		return nil, errors.New("invalid token: missing subject or role")
	}

	return &entities.Principal{
		ID:    claims.Subject,
		Role:  claims.Role,
		LabID: claims.LabID,
	}, nil
}
