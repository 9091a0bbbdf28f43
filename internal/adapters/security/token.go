package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hotel_booking/internal/domain"
)

// claims is the JWT payload: standard registered claims plus email and role.
// The subject holds the decimal user id.
type claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenSigner issues and verifies HS256 bearer tokens. It keeps no state
// besides the secret, so verification is a pure function of the token.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), ttl: ttl, issuer: "hotel-booking", now: time.Now}
}

// WithClock overrides the signer's clock, for tests.
func (s *TokenSigner) WithClock(now func() time.Time) *TokenSigner {
	cp := *s
	cp.now = now
	return &cp
}

func (s *TokenSigner) Issue(c domain.Claims) (domain.Token, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: c.Email,
		Role:  c.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(c.UserID, 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return domain.Token{}, err
	}
	return domain.Token{Value: signed, ExpiresAt: exp}, nil
}

func (s *TokenSigner) Verify(raw string) (domain.Claims, error) {
	if raw == "" {
		return domain.Claims{}, fmt.Errorf("%w: missing token", domain.ErrUnauthorized)
	}
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		reason := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = "token expired"
		}
		return domain.Claims{}, fmt.Errorf("%w: %s", domain.ErrUnauthorized, reason)
	}
	id, err := strconv.ParseInt(cl.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.Claims{}, fmt.Errorf("%w: invalid subject", domain.ErrUnauthorized)
	}
	if cl.Role != domain.RoleUser && cl.Role != domain.RoleAdmin {
		return domain.Claims{}, fmt.Errorf("%w: invalid role", domain.ErrUnauthorized)
	}
	return domain.Claims{UserID: id, Email: cl.Email, Role: cl.Role, ExpiresAt: cl.ExpiresAt.Time}, nil
}
