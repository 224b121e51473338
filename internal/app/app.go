package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nichecal/nichecal/internal/config"
	"github.com/nichecal/nichecal/internal/database"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg       config.Application
	db        *pgxpool.Pool
	deps      *Dependencies
	scheduler *cron.Cron
	router    *mux.Router
	srv       *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, cfg config.Application) (*Application, error) {
	var db *pgxpool.Pool
	if cfg.Backend == "postgres" {
		var err error
		db, err = database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(cfg.Database); err != nil {
			db.Close()
			return nil, err
		}
	}

	deps, err := BuildDependencies(db, cfg)
	if err != nil {
		closeDb(db)
		return nil, err
	}

	scheduler, err := NewScheduler(deps, cfg.Cache.Purge)
	if err != nil {
		closeDb(db)
		return nil, err
	}

	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, db: db, deps: deps, scheduler: scheduler, router: r, srv: srv}, nil
}

// Run starts the HTTP server and blocks until it fails or a termination
// signal arrives, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.scheduler.Start()
	defer a.close()

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		serveErr <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}

func (a *Application) close() {
	<-a.scheduler.Stop().Done()
	if a.deps.RedisClient != nil {
		if err := a.deps.RedisClient.Close(); err != nil {
			log.Errorf("failed to close redis client: %v", err)
		}
	}
	closeDb(a.db)
}

func closeDb(db *pgxpool.Pool) {
	if db != nil {
		db.Close()
	}
}
