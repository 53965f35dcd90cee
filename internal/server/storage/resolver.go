// Package storage implements the user-scoped virtual filesystem layer:
// resolving (username, relative path) pairs onto real paths under a
// configured storage root, and the file-tree operations performed on the
// resolved paths. All containment checks live here.
package storage

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/filekeeper/internal/common"
)

// Resolver turns (username, relative path) pairs into validated absolute
// paths. It is pure: no filesystem access, only path arithmetic. The
// storage root is injected at construction time and must be absolute.
type Resolver struct {
	root string
}

func NewResolver(root string) *Resolver {
	return &Resolver{root: filepath.Clean(root)}
}

// Root returns the storage root all user roots live under.
func (r *Resolver) Root() string {
	return r.root
}

// UserRoot returns the absolute path of the directory owned by username.
// The username doubles as the directory name, so it must pass the same
// allow-list as any client-supplied entry name.
func (r *Resolver) UserRoot(username string) (string, error) {
	if !ValidEntryName(username) {
		return "", common.ErrorInvalidUser
	}
	return filepath.Join(r.root, username), nil
}

// Resolve joins the user root with relPath (forward-slash separated, may
// be empty) and normalizes the result. Any path whose cleaned form falls
// outside the user root fails with ErrorPathEscape, no matter how many
// ".." segments were nested to get there.
func (r *Resolver) Resolve(username, relPath string) (string, error) {
	userRoot, err := r.UserRoot(username)
	if err != nil {
		return "", err
	}
	return contain(userRoot, relPath)
}

// contain joins rel onto root and verifies the cleaned result is root
// itself or a descendant of it. Naive concatenation is insufficient:
// "../../etc" would escape.
func contain(root, rel string) (string, error) {
	p := filepath.Join(root, filepath.FromSlash(rel))
	if p != root && !strings.HasPrefix(p, root+string(filepath.Separator)) {
		return "", common.ErrorPathEscape
	}
	return p, nil
}

// ValidEntryName reports whether a client-supplied leaf name (username,
// new folder name, uploaded file name) is acceptable: 1-255 bytes of
// valid UTF-8, no path separators, no control bytes, and not one of the
// reserved "." / ".." entries. Everything else passes through to the
// filesystem verbatim.
func ValidEntryName(name string) bool {
	if name == "" || len(name) > 255 {
		return false
	}
	if name == "." || name == ".." {
		return false
	}
	if !utf8.ValidString(name) {
		return false
	}
	for _, c := range name {
		if c == '/' || c == '\\' || c < 0x20 || c == 0x7f {
			return false
		}
	}
	return true
}
