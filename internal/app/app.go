package app

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dropvoxsite/internal/config"
	"dropvoxsite/internal/data"
	"dropvoxsite/internal/infrastructure"
	"dropvoxsite/internal/license"
	"dropvoxsite/internal/mailer"
	custommw "dropvoxsite/internal/middleware"
	"dropvoxsite/internal/payments"
	"dropvoxsite/internal/release"
	transporthttp "dropvoxsite/internal/transport/http"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Application holds the wired components of the site backend.
type Application struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	server *http.Server
}

// NewApplication loads configuration, connects the license store, runs
// migrations and wires the HTTP server. frontendFS holds the static site
// served at the root.
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := data.RunMigrations(db, cfg.Database.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app := &Application{
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	router := app.buildRouter(frontendFS)
	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) buildRouter(frontendFS fs.FS) http.Handler {
	licenses := &data.LicenseModel{DB: app.db}
	activations := &data.ActivationModel{DB: app.db}

	var licenseMailer license.Mailer
	if app.cfg.Email.APIKey != "" {
		licenseMailer = mailer.New(app.cfg.Email, app.logger)
	} else {
		app.logger.Warn("email api key not set, license emails disabled")
	}

	licenseService := license.NewService(licenses, activations, licenseMailer, app.logger)
	stripeClient := payments.NewClient(app.cfg.Stripe, app.cfg.Site, app.logger)
	releaseService := release.NewService(app.cfg.Release, app.logger)

	licenseHandler := transporthttp.NewLicenseHandler(licenseService, app.logger)
	checkoutHandler := transporthttp.NewCheckoutHandler(stripeClient, app.logger)
	webhookHandler := transporthttp.NewWebhookHandler(stripeClient, licenseService, app.logger)
	releaseHandler := transporthttp.NewReleaseHandler(releaseService, app.logger)
	healthHandler := transporthttp.NewHealthHandler(app.db, Version, app.logger)

	rateLimiter := custommw.NewRateLimiter(
		app.cfg.Server.RateLimitRPS,
		app.cfg.Server.RateLimitBurst,
		app.logger,
	)

	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommw.StructuredLogger(app.logger))
	r.Use(custommw.Recoverer(app.logger))
	r.Use(custommw.SecurityHeaders)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommw.Timeout(30*time.Second, app.logger))

		r.Group(func(r chi.Router) {
			r.Use(rateLimiter.Handler)
			r.Mount("/license", licenseHandler.Routes())
			r.Mount("/checkout", checkoutHandler.Routes())
			r.Mount("/latest-release", releaseHandler.Routes())
		})

		// Webhooks authenticate via signature, not rate limits.
		r.Mount("/webhooks", webhookHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
	})

	r.Handle("/metrics", promhttp.Handler())

	if frontendFS != nil {
		r.NotFound(spaHandler(frontendFS, app.logger))
	}

	return r
}

// spaHandler serves the embedded static site, falling back to index.html
// for client-side routes.
func spaHandler(frontendFS fs.FS, logger *slog.Logger) http.HandlerFunc {
	fileServer := http.FileServer(http.FS(frontendFS))

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}

		if _, err := fs.Stat(frontendFS, path); err != nil {
			index, err := fs.ReadFile(frontendFS, "index.html")
			if err != nil {
				logger.Error("frontend index missing", slog.String("error", err.Error()))
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write(index)
			return
		}

		fileServer.ServeHTTP(w, r)
	}
}

// Run starts the HTTP server and blocks until shutdown completes.
func (app *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("server starting",
			slog.String("addr", app.server.Addr),
			slog.String("version", Version))
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		app.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	return app.Shutdown()
}

// Shutdown drains in-flight requests and closes the license store.
func (app *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
		app.server.Close()
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", slog.String("error", err.Error()))
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}

	app.logger.Info("server stopped")
	return nil
}
