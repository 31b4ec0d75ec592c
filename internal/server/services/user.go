// Package services contains server-side business logic. This file implements
// UserService, which seeds accounts and resolves session tokens to users.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/server/auth"
	"github.com/dmitrijs2005/recipebox/internal/server/config"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost matches the cost of hashes already stored in backups.
const DefaultPasswordCost = 10

// UserService provides account operations:
// - EnsureUser: create an account unless the name is taken
// - IssueToken: sign a session token for an account
// - Authenticate: map a session token to a live user
type UserService struct {
	runner      dbx.TxRunner
	repomanager repomanager.RepositoryManager
	jwtSecret   []byte
	cost        int
	newID       func() string
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(runner dbx.TxRunner, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		runner:      runner,
		repomanager: m,
		jwtSecret:   []byte(cfg.SecretKey),
		cost:        DefaultPasswordCost,
		newID:       uuid.NewString,
	}
}

// EnsureUser creates username with a bcrypt hash of password. When a user
// with the same name exists (compared case-insensitively) it is returned
// unchanged and created is false.
func (s *UserService) EnsureUser(ctx context.Context, username, password string) (user *models.User, created bool, err error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, false, errors.New("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	err = s.runner.RunInTx(ctx, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		existing, err := repo.GetUserByLogin(ctx, username)
		switch {
		case err == nil:
			user = existing
			return nil
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		user = &models.User{ID: s.newID(), UserName: username, PasswordHash: string(hash)}
		if err := repo.Create(ctx, user); err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}

// IssueToken signs a session token for user valid for ttl.
func (s *UserService) IssueToken(user *models.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("token validity must be positive")
	}
	return auth.GenerateToken(user.ID, user.UserName, s.jwtSecret, ttl)
}

// Authenticate validates token and returns the user it was issued for. A
// token whose user no longer exists, for example after a restore, is
// rejected with common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	var user *models.User
	err = s.runner.RunInTx(ctx, dbx.Snapshot, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).GetUserByLogin(ctx, claims.Username)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if user.ID != claims.UserID {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}
