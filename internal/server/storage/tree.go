package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/filekeeper/internal/common"
)

// Listing is the partitioned contents of one directory level, in the
// order the filesystem enumerates them. No sorting is guaranteed.
type Listing struct {
	Folders []string
	Files   []string
}

// Tree performs the actual filesystem operations on resolved paths.
// Every method re-validates that its target is contained under the
// storage root before touching the disk.
//
// Operations carry no cross-call state. A List followed by an operation
// on one of the listed entries races against concurrent mutation of the
// same path; the listing may be stale by the time the caller acts on it.
// That race is accepted, not locked around.
type Tree struct {
	root string
}

func NewTree(root string) *Tree {
	return &Tree{root: filepath.Clean(root)}
}

func (t *Tree) ensureContained(path string) error {
	p := filepath.Clean(path)
	if p != t.root && !strings.HasPrefix(p, t.root+string(filepath.Separator)) {
		return common.ErrorPathEscape
	}
	return nil
}

// CreateUserRoot creates the directory owned by a newly registered user.
// Creating an already-present root is not an error; registration is the
// only caller and guards uniqueness at the record level.
func (t *Tree) CreateUserRoot(path string) error {
	if err := t.ensureContained(path); err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0o770); err != nil {
		return fmt.Errorf("create user root: %w", err)
	}
	return nil
}

// RemoveUserRoot removes a user root and everything under it. Used to
// roll back a registration whose credential record could not be kept.
func (t *Tree) RemoveUserRoot(path string) error {
	if err := t.ensureContained(path); err != nil {
		return err
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove user root: %w", err)
	}
	return nil
}

// List enumerates one directory level, partitioned into folders and
// files. Symlinks are classified the way the filesystem reports them.
// Fails with ErrorNotFound if dir is absent or not a directory.
func (t *Tree) List(dir string) (*Listing, error) {
	if err := t.ensureContained(dir); err != nil {
		return nil, err
	}

	if err := dirExists(dir); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	l := &Listing{Folders: []string{}, Files: []string{}}
	for _, e := range entries {
		if e.IsDir() {
			l.Folders = append(l.Folders, e.Name())
		} else {
			l.Files = append(l.Files, e.Name())
		}
	}
	return l, nil
}

// CreateFolder creates an empty directory named name inside parent.
// Fails with ErrorNotFound if parent is missing (missing ancestors are
// not created) and ErrorAlreadyExists if any entry, file or folder,
// already occupies the target name.
func (t *Tree) CreateFolder(parent, name string) (string, error) {
	if !ValidEntryName(name) {
		return "", common.ErrorInvalidName
	}
	target := filepath.Join(parent, name)
	if err := t.ensureContained(target); err != nil {
		return "", err
	}

	if err := dirExists(parent); err != nil {
		return "", err
	}

	if _, err := os.Lstat(target); err == nil {
		return "", common.ErrorAlreadyExists
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat %s: %w", target, err)
	}

	if err := os.Mkdir(target, 0o770); err != nil {
		// a concurrent create may have won the race since the check
		if errors.Is(err, fs.ErrExist) {
			return "", common.ErrorAlreadyExists
		}
		return "", fmt.Errorf("mkdir %s: %w", target, err)
	}
	return target, nil
}

// SaveUploadedFile writes the reader's bytes to parent/name, overwriting
// any existing file of that name: last write wins, no rename-on-conflict.
// Fails with ErrorNotFound if parent does not exist. The file handle is
// closed on every exit path; an aborted reader may leave a partial file
// behind, which is the caller's documented risk.
func (t *Tree) SaveUploadedFile(parent, name string, r io.Reader) (int64, error) {
	if !ValidEntryName(name) {
		return 0, common.ErrorInvalidName
	}
	target := filepath.Join(parent, name)
	if err := t.ensureContained(target); err != nil {
		return 0, err
	}

	if err := dirExists(parent); err != nil {
		return 0, err
	}

	f, err := os.Create(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("create %s: %w", target, err)
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		return n, fmt.Errorf("write %s: %w", target, copyErr)
	}
	if closeErr != nil {
		return n, fmt.Errorf("close %s: %w", target, closeErr)
	}
	return n, nil
}

// DeleteFile removes a single file. A missing path and a path that is
// actually a directory both fail with ErrorNotFound: a type mismatch is
// treated as not-found, not as a separate error.
func (t *Tree) DeleteFile(path string) error {
	if err := t.ensureContained(path); err != nil {
		return err
	}

	fi, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return common.ErrorNotFound
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// DeleteFolder removes a directory and all of its contents recursively.
// Destructive and irreversible: there is no trash. A missing path and a
// path that is actually a file both fail with ErrorNotFound.
func (t *Tree) DeleteFolder(path string) error {
	if err := t.ensureContained(path); err != nil {
		return err
	}
	if path == t.root {
		// never allow removing the storage root itself
		return common.ErrorNotFound
	}

	fi, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !fi.IsDir() {
		return common.ErrorNotFound
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// OpenForDownload opens a file for streaming to the client and returns
// the open handle plus its current size. The caller owns the handle and
// must close it on every exit path, including aborted transfers. Fails
// with ErrorNotFound if the path is absent or denotes a directory.
func (t *Tree) OpenForDownload(path string) (*os.File, int64, error) {
	if err := t.ensureContained(path); err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, common.ErrorNotFound
		}
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		_ = f.Close()
		return nil, 0, common.ErrorNotFound
	}

	return f, fi.Size(), nil
}

// dirExists maps a missing or non-directory parent to ErrorNotFound.
func dirExists(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !fi.IsDir() {
		return common.ErrorNotFound
	}
	return nil
}
