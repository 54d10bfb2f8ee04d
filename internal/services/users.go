// Package services implements the application operations on top of the
// repositories: account management, record management, and mass
// anonymization. Every state change is attributed in the audit log.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/clinicore/clinicore/internal/audit"
	"github.com/clinicore/clinicore/internal/common"
	"github.com/clinicore/clinicore/internal/credential"
	"github.com/clinicore/clinicore/internal/dbx"
	"github.com/clinicore/clinicore/internal/logging"
	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/internal/repositories/repomanager"
)

// UserService manages accounts and authentication.
type UserService struct {
	db    *sql.DB
	rm    repomanager.RepositoryManager
	audit *audit.Recorder
	log   logging.Logger
}

func NewUserService(db *sql.DB, rm repomanager.RepositoryManager, rec *audit.Recorder, log logging.Logger) *UserService {
	return &UserService{
		db:    db,
		rm:    rm,
		audit: rec,
		log:   log.With("component", "users"),
	}
}

// CreateUser registers a new account. The role must be one of the fixed set
// and the username must be unused; the password is stored only as a
// credential artifact.
func (s *UserService) CreateUser(ctx context.Context, username, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	parsed, ok := models.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidRole, role)
	}

	user := &models.User{
		Username:   username,
		Credential: credential.Hash(password),
		Role:       parsed,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Users(tx)

		_, err := repo.GetByUsername(ctx, username)
		if err == nil {
			return fmt.Errorf("%w: %q", common.ErrDuplicateUsername, username)
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}

		user, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.log.Info(ctx, "user created", "username", user.Username, "role", user.Role.String())
	return user, nil
}

// Authenticate checks username/password and returns the account on success.
// Every failure path returns the same common.ErrInvalidCredentials so the
// result does not reveal whether the username exists. Both outcomes are
// audited: a success as "login" with the actor attributed, a failure with
// the real actor when the username resolves and as unknown otherwise.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.rm.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Error(ctx, "user lookup failed", "error", err)
		}
		s.audit.Record(ctx, nil, models.ActorRoleUnknown, string(models.ActionLogin),
			fmt.Sprintf("LOGIN_FAILED username=%s", username))
		return nil, common.ErrInvalidCredentials
	}

	if !credential.Verify(user.Credential, password) {
		s.audit.Record(ctx, &user.ID, user.Role.String(), string(models.ActionLogin),
			fmt.Sprintf("LOGIN_FAILED username=%s", username))
		return nil, common.ErrInvalidCredentials
	}

	s.audit.Record(ctx, &user.ID, user.Role.String(), string(models.ActionLogin),
		fmt.Sprintf("%s logged in", user.Username))
	return user, nil
}

// ChangePassword re-hashes the account credential under a fresh salt. It
// returns false without error when no account with the given id exists.
func (s *UserService) ChangePassword(ctx context.Context, userID, newPassword string) (bool, error) {
	if newPassword == "" {
		return false, fmt.Errorf("%w: password cannot be empty", common.ErrValidation)
	}

	updated, err := s.rm.Users(s.db).UpdateCredential(ctx, userID, credential.Hash(newPassword))
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	if updated {
		s.log.Info(ctx, "credential rotated", "user_id", userID)
	}
	return updated, nil
}

// Logout only leaves an audit trace; sessions are stateless tokens and
// expire on their own.
func (s *UserService) Logout(ctx context.Context, user *models.User) {
	s.audit.Record(ctx, &user.ID, user.Role.String(), string(models.ActionLogout),
		fmt.Sprintf("%s logged out", user.Username))
}
