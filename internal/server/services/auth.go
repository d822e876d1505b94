package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/logging"
	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/users"
	"github.com/dmitrijs2005/taxportal/internal/server/validate"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues, resolves and revokes opaque bearer tokens. A user holds
// at most one token; logging in again replaces it.
type AuthService struct {
	users         users.Repository
	logger        logging.Logger
	upgradeLegacy bool
	now           func() time.Time
}

func NewAuthService(repo users.Repository, logger logging.Logger, upgradeLegacy bool) *AuthService {
	return &AuthService{
		users:         repo,
		logger:        logger,
		upgradeLegacy: upgradeLegacy,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Login checks the credentials and issues a new token. An unknown email and a
// wrong password fail with the same common.ErrorInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, models.PublicUser, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyDigest(), []byte(password))
			return "", models.PublicUser{}, common.ErrorInvalidCredentials
		}
		return "", models.PublicUser{}, storageFailure(ctx, s.logger, "find user", err)
	}

	ok, legacy := verifyPassword(user.Password, password)
	if !ok {
		return "", models.PublicUser{}, common.ErrorInvalidCredentials
	}

	token, err := common.MakeRandURLToken(common.SessionTokenBytes)
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("error generating token: %w", err)
	}

	now := s.now()
	if err := s.users.SetToken(ctx, user.ID, token, now); err != nil {
		return "", models.PublicUser{}, storageFailure(ctx, s.logger, "store token", err, "user", user.ID)
	}

	if legacy && s.upgradeLegacy {
		s.upgradePassword(ctx, user.ID, password, now)
	}

	s.logger.Info(ctx, "user logged in", "user", user.ID)
	return token, user.Public(), nil
}

// upgradePassword replaces a legacy digest with bcrypt. Failures are logged
// only; the old digest keeps working.
func (s *AuthService) upgradePassword(ctx context.Context, userID, password string, at time.Time) {
	digest, err := HashPassword(password)
	if err != nil {
		s.logger.Warn(ctx, "password upgrade skipped", "user", userID, "error", err)
		return
	}
	if err := s.users.UpdatePassword(ctx, userID, digest, at); err != nil {
		s.logger.Warn(ctx, "password upgrade failed", "user", userID, "error", err)
		return
	}
	s.logger.Info(ctx, "legacy password digest upgraded", "user", userID)
}

// Resolve returns the session owning token. An empty or unknown token fails
// with common.ErrorUnauthenticated.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, common.ErrorUnauthenticated
	}

	user, err := s.users.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthenticated
		}
		return nil, storageFailure(ctx, s.logger, "resolve token", err)
	}

	return &models.Session{User: *user, Token: token}, nil
}

// Logout revokes the session token. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, session *models.Session) error {
	if session == nil {
		return nil
	}
	if err := s.users.UnsetToken(ctx, session.User.ID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return storageFailure(ctx, s.logger, "revoke token", err, "user", session.User.ID)
	}
	return nil
}

// RequireAdmin passes admin sessions through and rejects the rest with
// common.ErrorForbidden.
func (s *AuthService) RequireAdmin(session *models.Session) (*models.Session, error) {
	if session == nil {
		return nil, common.ErrorUnauthenticated
	}
	if !session.User.IsAdmin {
		return nil, common.ErrorForbidden
	}
	return session, nil
}

func (s *AuthService) Me(session *models.Session) models.PublicUser {
	return session.User.Public()
}

// EnsureAdmin creates the administrator account, or promotes and resets the
// existing account with that email.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if err := validate.Struct(models.LoginRequest{Email: email, Password: password}); err != nil {
		return nil, err
	}

	digest, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "Administrator"
	}

	user, err := s.users.UpsertAdmin(ctx, email, name, digest, s.now())
	if err != nil {
		return nil, storageFailure(ctx, s.logger, "upsert admin", err, "email", email)
	}

	s.logger.Info(ctx, "administrator account ready", "user", user.ID, "email", email)
	return user, nil
}
