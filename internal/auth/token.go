// Package auth issues and verifies the HS256 bearer tokens handed out at
// login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is what a verified token asserts about its bearer.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Issuer)

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(secret string, ttl time.Duration, opts ...Option) *Issuer {
	i := &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Issuer) Issue(userID uuid.UUID, role string) (string, error) {
	now := i.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) Parse(token string) (*Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := uuid.FromString(claims.Subject)
	if err != nil || id == uuid.Nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return &Identity{UserID: id, Role: claims.Role}, nil
}
