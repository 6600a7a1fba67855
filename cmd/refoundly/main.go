package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/refoundly/internal/api"
	"github.com/erazemk/refoundly/internal/audit"
	"github.com/erazemk/refoundly/internal/auth"
	"github.com/erazemk/refoundly/internal/blob"
	"github.com/erazemk/refoundly/internal/config"
	"github.com/erazemk/refoundly/internal/db"
	"github.com/erazemk/refoundly/internal/notify"
	"github.com/erazemk/refoundly/internal/obs"
	"github.com/erazemk/refoundly/internal/reports"
	"github.com/erazemk/refoundly/internal/session"
	"github.com/erazemk/refoundly/internal/store"
	"github.com/erazemk/refoundly/internal/web"
)

const usage = `Usage: refoundly <command> [flags]

Commands:
  serve          run the web server (default)
  migrate        apply database migrations and exit
  create-admin   provision an administrator account

Run "refoundly <command> -h" for the flags of a command.
`

// sessionSweepInterval is how often expired sessions are deleted.
const sessionSweepInterval = 10 * time.Minute

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = cmdServe(args)
	case "migrate":
		err = cmdMigrate(args)
	case "create-admin":
		err = cmdCreateAdmin(args)
	case "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", cmd, usage)
		os.Exit(1)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openDatabase opens the database and brings its schema up to date.
func openDatabase(ctx context.Context, path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return database, nil
}

func cmdMigrate(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := openDatabase(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	version, err := db.Version(ctx, database)
	if err != nil {
		return err
	}
	fmt.Printf("Database %s is at schema version %d.\n", cfg.DBPath, version)
	return nil
}

func loadConfig(args []string) (*config.Config, error) {
	cfg, err := config.Load(args, os.Getenv)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(os.Stdout, config.Usage)
	}
	return cfg, err
}

func cmdServe(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	if closeLog != nil {
		defer closeLog()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := openDatabase(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()
	slog.Info("database ready", "path", cfg.DBPath)

	secret := cfg.SessionSecret
	if secret == "" {
		// Generated on first run and kept in the settings table.
		secret, err = store.GetSessionSecret(ctx, database)
		if err != nil {
			return err
		}
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	sessions := session.NewManager(database, secret, cfg.SessionTTL, cfg.SecureCookies)
	go sessions.Sweep(ctx, sessionSweepInterval)

	auditLog := audit.New(database)
	authSvc := &auth.Service{
		DB:             database,
		Sender:         newSender(cfg),
		Audit:          auditLog,
		Limiter:        auth.NewLimiter(cfg.LoginLimit, cfg.LoginWindow),
		OTPTTL:         cfg.OTPTTL,
		OTPMaxAttempts: cfg.OTPMaxAttempts,
	}
	reportsSvc := &reports.Service{
		DB:            database,
		Blobs:         blobs,
		Audit:         auditLog,
		MaxImageBytes: cfg.MaxUploadBytes,
	}

	pages, err := web.NewRouter(authSvc, reportsSvc, sessions)
	if err != nil {
		return fmt.Errorf("setting up pages: %w", err)
	}

	server := &http.Server{
		Addr: cfg.Addr,
		Handler: api.Handler(&api.Deps{
			Auth:           authSvc,
			Reports:        reportsSvc,
			Sessions:       sessions,
			EnforceCSRF:    cfg.EnforceCSRF,
			MaxUploadBytes: cfg.MaxUploadBytes,
		}, pages),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	metricsServer := newMetricsServer(cfg.MetricsAddr)

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server forced to shutdown", "error", err)
			}
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "csrf", cfg.EnforceCSRF)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// newMetricsServer starts the Prometheus listener, kept off the public
// address. It returns nil when addr is empty.
func newMetricsServer(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", obs.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	if cfg.S3Bucket != "" {
		slog.Info("storing images in s3", "bucket", cfg.S3Bucket, "endpoint", cfg.S3Endpoint)
		return blob.NewS3(ctx, blob.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	slog.Info("storing images on disk", "dir", cfg.UploadDir)
	return blob.NewLocal(cfg.UploadDir)
}

func newSender(cfg *config.Config) notify.Sender {
	if cfg.SMTPHost != "" {
		slog.Info("sending mail via smtp", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
		return &notify.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}
	}
	slog.Warn("no smtp host configured, writing login codes to the outbox", "dir", cfg.OutboxDir)
	return &notify.OutboxSender{Dir: cfg.OutboxDir}
}
