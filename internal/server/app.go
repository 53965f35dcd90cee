// Package server initializes and runs the FileKeeper server application.
// It opens the database, applies migrations, prepares the storage root for
// per-user trees, and starts the HTTP API with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/filekeeper/internal/filex"
	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/config"
	"github.com/dmitrijs2005/filekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filekeeper/internal/server/services"
	"github.com/dmitrijs2005/filekeeper/internal/server/storage"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *services.UserService
	fileService *services.FileService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	root, err := filex.EnsureDir(cfg.StorageRoot)
	if err != nil {
		return nil, fmt.Errorf("storage root init error: %w", err)
	}

	resolver := storage.NewResolver(root)
	tree := storage.NewTree(root)

	us := services.NewUserService(db, rm, resolver, tree)
	fs := services.NewFileService(db, rm, resolver, tree)

	return &App{config: cfg, logger: logger, userService: us, fileService: fs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := httpapi.NewHTTPServer(
		app.config.EndpointAddr,
		app.logger,
		app.userService,
		app.fileService,
		app.config.MaxUploadBytes,
		app.config.ShutdownTimeout,
	)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
