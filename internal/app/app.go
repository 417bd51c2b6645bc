package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gatherly/gatherly/internal/config"
	"github.com/gatherly/gatherly/internal/database"
	"github.com/gatherly/gatherly/internal/rest"
	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	router *mux.Router
	srv    *http.Server
	cron   *cron.Cron
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	// DB + migrations
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	// db will be closed when server shuts down; defer not possible here, leave to process exit.
	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// Build dependencies (services, handlers...)
	deps := BuildDependencies(db, cfg)

	// Middleware chain
	SetupMiddleware(r, deps, cfg)

	// Routes
	RegisterRoutes(r, deps, cfg)

	// Frontend
	if cfg.Frontend.Enabled {
		frontend := rest.NewFrontendHandler("frontend", "index.html")
		r.PathPrefix("/").Handler(frontend)
	}

	srv := &http.Server{
		Handler:      r,
		Addr:         ":8181",
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: r, srv: srv, cron: scheduleJobs(deps, cfg)}, nil
}

// scheduleJobs sets up the background maintenance jobs: sweeping abandoned
// join flow sessions and pruning calendar hand-offs that were never consumed.
func scheduleJobs(deps *Dependencies, cfg config.Application) *cron.Cron {
	c := cron.New()
	sessionTTL := time.Duration(cfg.Checkout.SessionTTLMinutes) * time.Minute

	_, err := c.AddFunc("@every 5m", func() {
		deps.CheckoutService.Sweep(sessionTTL)
	})
	if err != nil {
		log.Errorf("failed to schedule session sweep: %v", err)
	}

	_, err = c.AddFunc("@daily", func() {
		removed, err := deps.PendingRepo.DeleteOlderThan(context.Background(), time.Now().Add(-7*24*time.Hour))
		if err != nil {
			log.Errorf("failed to prune pending calendar events: %v", err)
			return
		}
		if removed > 0 {
			log.Infof("pruned %d abandoned calendar hand-offs", removed)
		}
	})
	if err != nil {
		log.Errorf("failed to schedule pending calendar prune: %v", err)
	}

	return c
}

// Run starts the background jobs and the HTTP server, and blocks.
func (a *Application) Run() error {
	a.cron.Start()
	log.Infof("Starting server on %s", a.srv.Addr)
	return a.srv.ListenAndServe()
}
