// Package server wires the Taskly API server together: configuration,
// PostgreSQL, migrations, object storage, services and the HTTP router. It
// also handles OS signals and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/taskly/internal/logging"
	"github.com/dmitrijs2005/taskly/internal/server/auth"
	"github.com/dmitrijs2005/taskly/internal/server/config"
	"github.com/dmitrijs2005/taskly/internal/server/httpapi"
	"github.com/dmitrijs2005/taskly/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskly/internal/server/services"
	"github.com/dmitrijs2005/taskly/internal/server/storage"
	"github.com/gin-gonic/gin"
)

// seams for tests
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepoManager = repomanager.NewPostgresRepositoryManager
	newStorage     = func(ctx context.Context, o storage.Options) (storage.Presigner, error) {
		return storage.NewS3Storage(ctx, o)
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
	flush  func() error
}

// NewApp connects to the database, applies migrations and builds the HTTP
// stack. Object storage is optional: without a bucket, avatar uploads are
// answered with 503.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	zl, err := logging.NewProductionZapLoggerAt(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app, err := newApp(ctx, cfg, zl)
	if err != nil {
		_ = zl.Sync()
		return nil, err
	}
	app.flush = zl.Sync
	return app, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	images, err := newStorage(ctx, storage.Options{
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3BaseEndpoint,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		if !errors.Is(err, storage.ErrDisabled) {
			db.Close()
			return nil, fmt.Errorf("storage init error: %w", err)
		}
		logger.Warn(ctx, "object storage disabled, profile image uploads unavailable")
		images = nil
	}

	issuer := auth.NewIssuer([]byte(cfg.SecretKey), cfg.TokenValidity)
	us := services.NewUserService(db, rm, issuer, images)
	ts := services.NewTaskService(db, rm)

	gin.SetMode(gin.ReleaseMode)
	h := httpapi.NewHandler(us, ts, logger.With("component", "httpapi"))
	router := httpapi.NewRouter(h, issuer, cfg.AllowedOrigins)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		server: httpapi.NewServer(cfg.Address, router, logger),
	}, nil
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

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server error", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	if app.flush != nil {
		_ = app.flush()
	}
}
