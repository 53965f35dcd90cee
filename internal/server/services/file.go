package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filekeeper/internal/server/storage"
)

// FileService orchestrates file-tree operations for one request: confirm
// the user is registered, resolve the client-supplied path against the
// user root, then run the filesystem operation. The filesystem itself is
// the source of truth for existence; nothing is cached between calls.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	resolver    *storage.Resolver
	tree        *storage.Tree
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, resolver *storage.Resolver, tree *storage.Tree) *FileService {
	return &FileService{db: db, repomanager: m, resolver: resolver, tree: tree}
}

// resolveDir checks the user exists and resolves relPath under their
// root. An unregistered username fails with ErrorInvalidUser.
func (s *FileService) resolveDir(ctx context.Context, username, relPath string) (string, error) {
	repo := s.repomanager.Users(s.db)
	if _, err := repo.GetUserByLogin(ctx, username); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorInvalidUser
		}
		return "", err
	}
	return s.resolver.Resolve(username, relPath)
}

// resolveEntry resolves relPath and then the leaf name inside it, keeping
// the name validation and containment check on the combined result.
func (s *FileService) resolveEntry(ctx context.Context, username, relPath, name string) (string, error) {
	if !storage.ValidEntryName(name) {
		return "", common.ErrorInvalidName
	}
	dir, err := s.resolveDir(ctx, username, relPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// List returns the partitioned contents of one folder level.
func (s *FileService) List(ctx context.Context, username, relPath string) (*storage.Listing, error) {
	dir, err := s.resolveDir(ctx, username, relPath)
	if err != nil {
		return nil, err
	}
	return s.tree.List(dir)
}

// CreateFolder creates an empty folder called name inside relPath.
func (s *FileService) CreateFolder(ctx context.Context, username, relPath, name string) error {
	dir, err := s.resolveDir(ctx, username, relPath)
	if err != nil {
		return err
	}
	_, err = s.tree.CreateFolder(dir, name)
	return err
}

// SaveUpload stores the uploaded bytes as relPath/name, overwriting any
// existing file of the same name. Returns the number of bytes written.
func (s *FileService) SaveUpload(ctx context.Context, username, relPath, name string, r io.Reader) (int64, error) {
	if !storage.ValidEntryName(name) {
		return 0, common.ErrorInvalidName
	}
	dir, err := s.resolveDir(ctx, username, relPath)
	if err != nil {
		return 0, err
	}
	return s.tree.SaveUploadedFile(dir, name, r)
}

// DeleteFile removes the file relPath/name.
func (s *FileService) DeleteFile(ctx context.Context, username, relPath, name string) error {
	target, err := s.resolveEntry(ctx, username, relPath, name)
	if err != nil {
		return err
	}
	return s.tree.DeleteFile(target)
}

// DeleteFolder removes the folder relPath/name recursively.
func (s *FileService) DeleteFolder(ctx context.Context, username, relPath, name string) error {
	target, err := s.resolveEntry(ctx, username, relPath, name)
	if err != nil {
		return err
	}
	return s.tree.DeleteFolder(target)
}

// OpenDownload opens relPath/name for streaming. The caller must close
// the returned handle on every exit path, aborted transfers included.
func (s *FileService) OpenDownload(ctx context.Context, username, relPath, name string) (*os.File, int64, error) {
	target, err := s.resolveEntry(ctx, username, relPath, name)
	if err != nil {
		return nil, 0, err
	}
	return s.tree.OpenForDownload(target)
}
