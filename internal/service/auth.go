// Package service — authentication business logic.
//
// AuthService sits between the HTTP handlers and the repository/auth
// utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT) ↘ PasswordService (bcrypt)
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/yutosuda/url-shortener/internal/apperror"
	"github.com/yutosuda/url-shortener/internal/auth"
	"github.com/yutosuda/url-shortener/internal/model"
	"github.com/yutosuda/url-shortener/internal/repository"
)

// MinPasswordLength applies to newly registered accounts, not to login —
// an existing account keeps working whatever policy created it.
const MinPasswordLength = 6

// AuthService handles login, token validation and account registration.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued token so the handler
// can build the login response in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Login verifies the credentials and issues an access token.
//
// DON'T LEAK WHICH HALF WAS WRONG:
// "Unknown email" and "wrong password" both return the same
// AuthenticationError with the same message. Distinguishing them would
// hand an attacker a free account-enumeration oracle. That's also why the
// repository's not-found is converted here rather than passed through as
// a 404.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("login failed", slog.String("email", email))
		return nil, apperror.AuthenticationFailed("invalid email or password")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Warn("login failed", slog.String("email", email))
		return nil, apperror.AuthenticationFailed("invalid email or password")
	}

	token, err := s.tokens.Generate(user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %s: %w", user.Email, err)
	}

	s.logger.Info("login succeeded", slog.String("email", user.Email))
	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate validates a bearer token and resolves the user it names.
//
// Every failure mode — bad signature, expiry, missing subject, or a
// subject with no matching user — collapses into AuthenticationError so
// protected routes answer 401 uniformly. Pure read: no side effects, safe
// on every request.
//
// Satisfies auth.Authenticator, which is what RequireAuth consumes.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	email, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperror.AuthenticationFailed("invalid or expired token")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// Token is cryptographically fine but the account is gone.
		return nil, apperror.AuthenticationFailed("invalid or expired token")
	}

	return user, nil
}

// Register creates a new account. Used by the seed tool — there is no
// public registration endpoint.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "email address is not valid")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{Email: email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("email", user.Email))
	return user, nil
}
