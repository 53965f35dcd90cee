// Package services contains server-side business logic. This file
// implements UserService: registration (credential record plus user root
// directory, created as a unit) and credential verification.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/cryptox"
	"github.com/dmitrijs2005/filekeeper/internal/dbx"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filekeeper/internal/server/storage"
	"github.com/google/uuid"
)

const registerLockStripes = 64

// UserService provides account operations:
//   - Register: create a credential record and the user's root directory
//   - Verify: one-shot credential check (no sessions are issued)
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	resolver    *storage.Resolver
	tree        *storage.Tree

	// registration is check-then-write; the striped locks serialize
	// concurrent registrations of the same username, and the UNIQUE
	// constraint on users.username backs them up across processes.
	registerLocks [registerLockStripes]sync.Mutex
}

// NewUserService constructs a UserService over the repositories and the
// storage layer.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, resolver *storage.Resolver, tree *storage.Tree) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		resolver:    resolver,
		tree:        tree,
	}
}

func (s *UserService) lockFor(username string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return &s.registerLocks[h.Sum32()%registerLockStripes]
}

// Register creates a new user: argon2id-hashed credential record and the
// user root directory. The two are one unit: the INSERT runs in a
// transaction and the directory is created before commit, so a directory
// failure rolls the record back. Returns ErrorAlreadyExists for a
// duplicate username (exact, case-sensitive match).
func (s *UserService) Register(ctx context.Context, username string, password []byte) (*models.User, error) {

	if !storage.ValidEntryName(username) {
		return nil, common.ErrorInvalidUser
	}

	userRoot, err := s.resolver.UserRoot(username)
	if err != nil {
		return nil, err
	}

	salt := cryptox.NewSalt()
	user := &models.User{
		ID:           uuid.NewString(),
		UserName:     username,
		Salt:         salt,
		PasswordHash: cryptox.HashPassword(password, salt),
	}

	lock := s.lockFor(username)
	lock.Lock()
	defer lock.Unlock()

	rootCreated := false
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if _, err := repo.Create(ctx, user); err != nil {
			return err
		}
		// inside the tx on purpose: mkdir failure must discard the record
		if err := s.tree.CreateUserRoot(userRoot); err != nil {
			return err
		}
		rootCreated = true
		return nil
	})
	if err != nil {
		if rootCreated {
			// commit failed after the directory was made; don't leave an
			// orphan root behind
			_ = s.tree.RemoveUserRoot(userRoot)
		}
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Verify performs a one-shot credential check. It returns
// ErrorNotFound when the username is absent; otherwise the boolean says
// whether the password matched (comparison is constant-time). The
// plaintext password is never stored or logged.
func (s *UserService) Verify(ctx context.Context, username string, password []byte) (bool, error) {

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, common.ErrorNotFound
		}
		// keep the cause; masking toward the client happens at the
		// handler boundary
		return false, fmt.Errorf("get user %q: %w", username, err)
	}

	return cryptox.VerifyPassword(password, user.Salt, user.PasswordHash), nil
}
