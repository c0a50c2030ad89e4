package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vytor/cftracker/internal/api"
	"github.com/vytor/cftracker/internal/cache"
	"github.com/vytor/cftracker/internal/codeforces"
	"github.com/vytor/cftracker/internal/config"
	"github.com/vytor/cftracker/internal/db"
	"github.com/vytor/cftracker/internal/logger"
	"github.com/vytor/cftracker/internal/observability"
	"github.com/vytor/cftracker/internal/repository"
	"github.com/vytor/cftracker/internal/repository/sqlite"
	"github.com/vytor/cftracker/internal/session"
	"github.com/vytor/cftracker/internal/worker"
)

const (
	noteQueueSize   = 64
	shutdownTimeout = 30 * time.Second
)

// App holds the long-lived components shared by the server and the CLI.
type App struct {
	Config  config.Config
	DB      *db.DB
	Redis   *redis.Client
	Client  *codeforces.Client
	Notes   repository.NoteRepository
	Prefs   repository.PreferenceRepository
	Session *session.Controller

	fetchPool *worker.Pool
	notePool  *worker.Pool
	log       *logger.Logger
}

// New opens storage, connects the optional cache and assembles the session
// controller. Worker pools are created but not started.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	log := logger.Default().WithPrefix("app")

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	opts := []codeforces.Option{
		codeforces.WithBaseURL(cfg.APIBase),
		codeforces.WithTimeout(cfg.Timeout),
		codeforces.WithDelay(cfg.FetchDelay),
		codeforces.WithSubmissionCount(cfg.SubmissionCount),
		codeforces.WithObserver(observability.ObserveUpstream),
	}

	var rc *redis.Client
	if cfg.RedisURL != "" {
		rc, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			_ = database.Close()
			return nil, err
		}
		opts = append(opts, codeforces.WithCache(cache.NewRedis(rc, cfg.CacheTTL)))
		log.Info("upstream cache enabled, ttl=%v", cfg.CacheTTL)
	}

	a := &App{
		Config:    cfg,
		DB:        database,
		Redis:     rc,
		Client:    codeforces.New(opts...),
		Notes:     sqlite.NewNoteRepository(database.DB),
		Prefs:     sqlite.NewPreferenceRepository(database.DB),
		fetchPool: worker.NewPool(cfg.FetchWorkerCount, cfg.FetchQueueSize),
		notePool:  worker.NewPool(1, noteQueueSize),
		log:       log,
	}
	a.Session = session.NewController(a.Client, a.Notes, a.Prefs,
		session.WithFetchPool(a.fetchPool),
		session.WithNotePool(a.notePool),
		session.WithRecentLimit(cfg.RecentLimit),
	)
	return a, nil
}

// Handler returns the HTTP API with readiness checks for storage and cache.
func (a *App) Handler() http.Handler {
	checks := map[string]api.HealthCheck{
		"database": a.DB.PingContext,
	}
	if a.Redis != nil {
		checks["cache"] = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}
	srv := &api.Server{Session: a.Session, Checks: checks}
	return srv.Routes()
}

// Serve starts the workers, restores the previous session and serves HTTP
// until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.fetchPool.Start(workerCtx)
	a.notePool.Start(workerCtx)

	handle, err := a.Session.Restore(ctx)
	if err != nil {
		a.log.Warn("session restored partially: %v", err)
	}
	if handle != "" {
		if _, err := a.Session.ResumeFetch(handle); err != nil {
			a.log.Warn("could not refresh %s: %v", handle, err)
		}
	}

	httpServer := &http.Server{
		Addr:         a.Config.Addr,
		Handler:      a.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.Info("HTTP server listening on %s", a.Config.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
	case serveErr = <-errc:
		a.log.Error("HTTP server error: %v", serveErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Error("HTTP server shutdown error: %v", err)
	}

	a.log.Debug("stopping worker pools")
	a.notePool.Drain()
	a.fetchPool.Stop()
	return serveErr
}

// Close releases the cache connection and the database.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	errs = append(errs, a.DB.Close())
	return stderrors.Join(errs...)
}
