package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

type SignupInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService struct {
	users  domain.UserRepository
	hasher domain.PasswordHasher
	tokens domain.TokenIssuer
}

func NewAuthService(u domain.UserRepository, h domain.PasswordHasher, t domain.TokenIssuer) *AuthService {
	return &AuthService{users: u, hasher: h, tokens: t}
}

// Signup registers a user with role "user" and returns a fresh token.
// Emails are compared exactly as stored (trimmed, not case-folded).
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (domain.AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validateStruct(in); err != nil {
		return domain.AuthResult{}, err
	}

	u, err := s.createUser(ctx, in, domain.RoleUser)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			observability.ObserveAuth("signup", "conflict")
		}
		return domain.AuthResult{}, err
	}
	observability.ObserveAuth("signup", "ok")
	return s.issue(u)
}

func (s *AuthService) createUser(ctx context.Context, in SignupInput, role domain.Role) (domain.User, error) {
	if _, err := s.users.GetUserByEmail(ctx, in.Email); err == nil {
		return domain.User{}, fmt.Errorf("%w: user already exists", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         role,
	}
	// the unique index still guards a concurrent signup with the same email
	if err := s.users.CreateUser(ctx, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (domain.AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		observability.ObserveAuth("login", "invalid")
		return domain.AuthResult{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			observability.ObserveAuth("login", "invalid")
			return domain.AuthResult{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return domain.AuthResult{}, err
	}
	if !s.hasher.Verify(u.PasswordHash, in.Password) {
		observability.ObserveAuth("login", "invalid")
		return domain.AuthResult{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	observability.ObserveAuth("login", "ok")
	return s.issue(u)
}

func (s *AuthService) issue(u domain.User) (domain.AuthResult, error) {
	tok, err := s.tokens.Issue(domain.Claims{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return domain.AuthResult{Token: tok.Value, User: u.Summary()}, nil
}

// Authenticate verifies a bearer token and returns its claims.
func (s *AuthService) Authenticate(raw string) (domain.Claims, error) {
	return s.tokens.Verify(raw)
}

// Me resolves the caller's current profile.
func (s *AuthService) Me(ctx context.Context, c domain.Claims) (domain.UserSummary, error) {
	u, err := s.users.GetUserByID(ctx, c.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.UserSummary{}, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthorized)
		}
		return domain.UserSummary{}, err
	}
	return u.Summary(), nil
}

// EnsureAdmin creates an admin account when no user holds the email yet.
// It reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	in := SignupInput{Email: strings.TrimSpace(email), Password: password, FirstName: "Admin"}
	if err := validateStruct(in); err != nil {
		return false, err
	}
	if _, err := s.createUser(ctx, in, domain.RoleAdmin); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	log.Info().Str("email", in.Email).Msg("admin account created")
	return true, nil
}

// Authorize fails with ErrForbidden unless the caller holds one of roles.
func Authorize(c domain.Claims, roles ...domain.Role) error {
	if slices.Contains(roles, c.Role) {
		return nil
	}
	return fmt.Errorf("%w: requires role %v", domain.ErrForbidden, roles)
}
