// Package users is the identity provider: account registration, credential
// verification, and access token issuance.
package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/rentfleet/rentfleet-backend/pkg/auth"
	"github.com/rentfleet/rentfleet-backend/pkg/clock"
	"github.com/rentfleet/rentfleet-backend/pkg/config"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
	"github.com/rentfleet/rentfleet-backend/pkg/security"
)

const minPasswordLength = 8

// Service implements account operations.
type Service struct {
	repo        *Repository
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	clk         clock.Clock
	logg        *logger.Logger
}

// NewService wires the users service.
func NewService(repo *Repository, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig, clk clock.Clock, logg *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		clk:         clk,
		logg:        logg,
	}
}

// RegisterInput carries a signup request. Role defaults to the regular user
// role; staff roles are assigned out of band.
type RegisterInput struct {
	Email    string
	Password string
}

// Register creates an account with a hashed password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if input.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, &models.User{
		Email:        input.Email,
		PasswordHash: hash,
		Role:         enums.MemberRoleUser,
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "user registered")
	return user, nil
}

// Login verifies credentials and returns a signed access token. Lookup and
// verification failures collapse into one error so the response does not
// reveal which emails exist.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	invalid := pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return "", nil, invalid
		}
		return "", nil, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return "", nil, invalid
	}

	token, err := auth.MintAccessToken(s.jwtCfg, s.clk.Now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}
