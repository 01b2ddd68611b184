// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services accept primitives and return domain errors — they know nothing
// about HTTP. Handlers translate apperror sentinels into status codes; the
// repository translates SQL errors into apperror sentinels. Each layer only
// receives the interfaces it needs, so every service is testable with
// in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/linklair/internal/apperror"
	"github.com/sakif/linklair/internal/auth"
	"github.com/sakif/linklair/internal/model"
	"github.com/sakif/linklair/internal/repository"
)

// AuthService handles registration and login.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all dependencies injected.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Register creates a new account.
//
// The password is hashed before anything touches storage; the plaintext is
// never persisted or logged. Duplicate username/email arrives from the
// repository as an apperror.Conflict and passes straight through.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	digest, err := s.passwords.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: digest,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies credentials and issues a signed token.
//
// ONE GENERIC FAILURE:
// An unknown email and a wrong password both return the same
// apperror.Unauthorized — the response must not leak which factor failed.
// A digest that cannot be decoded is different: that means our own storage
// is corrupted, so it surfaces as an internal error, not a 401.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthorized()
		}
		s.logger.Error("failed to look up user for login", slog.String("error", err.Error()))
		return "", fmt.Errorf("service/auth: looking up user: %w", err)
	}

	ok, err := s.passwords.Verify(ctx, user.PasswordHash, password)
	if err != nil {
		s.logger.Error("password verification failed structurally",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("service/auth: verifying password: %w", err)
	}
	if !ok {
		return "", apperror.Unauthorized()
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		s.logger.Error("token issuance failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("service/auth: issuing token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return token, nil
}
