// Package httpapi exposes the user-scoped file operations over an HTTP
// JSON API. Handlers are thin: parse input, call a service, translate the
// result. All invariant-bearing logic lives in the storage and services
// packages.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/storage"
)

// UserOps is the slice of UserService the handlers need.
type UserOps interface {
	Register(ctx context.Context, username string, password []byte) (*models.User, error)
	Verify(ctx context.Context, username string, password []byte) (bool, error)
}

// FileOps is the slice of FileService the handlers need.
type FileOps interface {
	List(ctx context.Context, username, relPath string) (*storage.Listing, error)
	CreateFolder(ctx context.Context, username, relPath, name string) error
	SaveUpload(ctx context.Context, username, relPath, name string, r io.Reader) (int64, error)
	DeleteFile(ctx context.Context, username, relPath, name string) error
	DeleteFolder(ctx context.Context, username, relPath, name string) error
	OpenDownload(ctx context.Context, username, relPath, name string) (*os.File, int64, error)
}

type HTTPServer struct {
	address         string
	logger          logging.Logger
	users           UserOps
	files           FileOps
	maxUploadBytes  int64
	shutdownTimeout time.Duration
}

func NewHTTPServer(address string, l logging.Logger, us UserOps, fs FileOps, maxUploadBytes int64, shutdownTimeout time.Duration) (*HTTPServer, error) {
	return &HTTPServer{
		address:         address,
		logger:          l.With("module", "http_server"),
		users:           us,
		files:           fs,
		maxUploadBytes:  maxUploadBytes,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/files", s.handleList)
	mux.HandleFunc("POST /api/files/upload", s.handleUpload)
	mux.HandleFunc("POST /api/files/delete", s.handleDeleteFile)
	mux.HandleFunc("GET /api/files/download", s.handleDownload)
	mux.HandleFunc("POST /api/folders", s.handleCreateFolder)
	mux.HandleFunc("POST /api/folders/delete", s.handleDeleteFolder)

	return s.withLogging(mux)
}

func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: s.routes()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
