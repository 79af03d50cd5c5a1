package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const minPasswordLength = 8

var (
	hasDigit = regexp.MustCompile(`\d`)
	hasUpper = regexp.MustCompile(`[A-Z]`)
	hasLower = regexp.MustCompile(`[a-z]`)
)

// Service composes the credential hasher, the token service and the user
// store into the signup, login and request-authorization flows.
type Service struct {
	users  UserStore
	tokens *TokenService
}

func NewService(users UserStore, tokens *TokenService) *Service {
	return &Service{users: users, tokens: tokens}
}

// Tokens exposes the underlying token service.
func (s *Service) Tokens() *TokenService { return s.tokens }

// Users exposes the underlying user store.
func (s *Service) Users() UserStore { return s.users }

// Signup validates the request, hashes the password and persists the user.
// The returned record carries the hash only internally; json marshalling
// drops it.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	if err := validateSignup(req); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	}
	// The pre-check above races with concurrent signups; the store's unique
	// constraint settles it and must surface the same conflict.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues an access token with the user's
// email as subject. Unknown email and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &TokenPair{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// Authenticate resolves a bearer token to the user it represents. Every
// failure mode, including a valid token whose user has since disappeared,
// collapses into ErrInvalidToken.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func validateSignup(req SignupRequest) error {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" ||
		strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return fmt.Errorf("%w: email, password and name are required", ErrInvalidInput)
	}
	if !strings.Contains(req.Email, "@") {
		return fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	if len(req.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if !hasDigit.MatchString(req.Password) || !hasUpper.MatchString(req.Password) || !hasLower.MatchString(req.Password) {
		return fmt.Errorf("%w: password must contain at least one lowercase letter, uppercase letter and digit", ErrInvalidInput)
	}
	return nil
}
