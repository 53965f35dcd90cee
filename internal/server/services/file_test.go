package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFileService returns a FileService over a temp storage root with user
// "alice" registered (record + user root directory).
func newFileService(t *testing.T) (*FileService, string) {
	t.Helper()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	root := t.TempDir()
	resolver := storage.NewResolver(root)
	tree := storage.NewTree(root)

	repo := newFakeUsersRepo()
	repo.users["alice"] = &models.User{ID: "u-1", UserName: "alice"}
	require.NoError(t, os.Mkdir(filepath.Join(root, "alice"), 0o770))

	return NewFileService(db, &fakeRepoManager{u: repo}, resolver, tree), filepath.Join(root, "alice")
}

func TestFileService_ListAndCreateFolder(t *testing.T) {
	s, _ := newFileService(t)
	ctx := context.Background()

	require.NoError(t, s.CreateFolder(ctx, "alice", "", "docs"))

	l, err := s.List(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, l.Folders)
	assert.Empty(t, l.Files)

	l, err = s.List(ctx, "alice", "docs")
	require.NoError(t, err)
	assert.Empty(t, l.Folders)
}

func TestFileService_UnknownUser(t *testing.T) {
	s, _ := newFileService(t)
	ctx := context.Background()

	_, err := s.List(ctx, "bob", "")
	assert.ErrorIs(t, err, common.ErrorInvalidUser)

	err = s.CreateFolder(ctx, "bob", "", "docs")
	assert.ErrorIs(t, err, common.ErrorInvalidUser)

	_, err = s.SaveUpload(ctx, "bob", "", "f.txt", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, common.ErrorInvalidUser)
}

func TestFileService_PathEscapeRejected(t *testing.T) {
	s, _ := newFileService(t)
	ctx := context.Background()

	_, err := s.List(ctx, "alice", "../bob")
	assert.ErrorIs(t, err, common.ErrorPathEscape)

	err = s.DeleteFolder(ctx, "alice", "../..", "etc")
	assert.ErrorIs(t, err, common.ErrorPathEscape)
}

func TestFileService_UploadDownloadRoundTrip(t *testing.T) {
	s, _ := newFileService(t)
	ctx := context.Background()

	n, err := s.SaveUpload(ctx, "alice", "", "report.pdf", bytes.NewReader([]byte("v1 content")))
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	// overwrite: last write wins
	_, err = s.SaveUpload(ctx, "alice", "", "report.pdf", bytes.NewReader([]byte("v2")))
	require.NoError(t, err)

	f, size, err := s.OpenDownload(ctx, "alice", "", "report.pdf")
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, int64(2), size)
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestFileService_UploadToMissingFolder(t *testing.T) {
	s, _ := newFileService(t)

	_, err := s.SaveUpload(context.Background(), "alice", "nope", "f.txt", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFileService_UploadInvalidName(t *testing.T) {
	s, _ := newFileService(t)

	_, err := s.SaveUpload(context.Background(), "alice", "", "../f.txt", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, common.ErrorInvalidName)
}

func TestFileService_DeleteFileAndFolder(t *testing.T) {
	s, userRoot := newFileService(t)
	ctx := context.Background()

	require.NoError(t, s.CreateFolder(ctx, "alice", "", "docs"))
	_, err := s.SaveUpload(ctx, "alice", "docs", "f.txt", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	// type mismatches are not-found
	assert.ErrorIs(t, s.DeleteFile(ctx, "alice", "", "docs"), common.ErrorNotFound)
	assert.ErrorIs(t, s.DeleteFolder(ctx, "alice", "docs", "f.txt"), common.ErrorNotFound)

	require.NoError(t, s.DeleteFile(ctx, "alice", "docs", "f.txt"))
	require.NoError(t, s.DeleteFolder(ctx, "alice", "", "docs"))

	_, err = os.Stat(filepath.Join(userRoot, "docs"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFileService_DownloadMissing(t *testing.T) {
	s, _ := newFileService(t)

	_, _, err := s.OpenDownload(context.Background(), "alice", "", "nope.txt")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
