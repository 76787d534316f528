package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/jedilnik/internal/api"
	"github.com/erazemk/jedilnik/internal/config"
	"github.com/erazemk/jedilnik/internal/db"
	"github.com/erazemk/jedilnik/internal/events"
	"github.com/erazemk/jedilnik/internal/logging"
	"github.com/erazemk/jedilnik/internal/metrics"
	"github.com/erazemk/jedilnik/internal/model"
	"github.com/erazemk/jedilnik/internal/source"
	"github.com/erazemk/jedilnik/internal/store"
)

// purgeInterval is how often unreferenced images are checked for expiry.
const purgeInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("jedilnik", flag.ContinueOnError)

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	fs.StringVar(&cfg.AdminUser, "user", cfg.AdminUser, "")
	fs.StringVar(&cfg.AdminUser, "u", cfg.AdminUser, "")

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: jedilnik [flags]

Flags:
  -d, -db <path>          SQLite database path (default: jedilnik.sqlite3, env JEDILNIK_DB)
  -a, -addr <host:port>   listen address (default: :8080, env JEDILNIK_ADDR)
  -u, -user <name>        master admin username on first run (default: Admin, env JEDILNIK_ADMIN_USER)
  -l, -log <path>         log file path (default: no file, env JEDILNIK_LOG)
  -h, -help               show this help and exit

Environment:
  LOG_LEVEL               debug, info, warn or error (default: info)
  JEDILNIK_MAX_UPLOAD     image upload limit in bytes (default: 204800)
  JEDILNIK_IMAGE_TTL      age after which unused images are removed (default: 720h)

Variables are also read from a .env file in the working directory.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	// INFO/WARN → stdout, ERROR → stderr, optionally everything to a file.
	closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		database, password, err := initDatabase(cfg.DBPath, cfg.AdminUser)
		if err != nil {
			slog.Error("failed to initialize database", "error", err)
			os.Exit(1)
		}
		database.Close()

		printInitResult(cfg.DBPath, cfg.AdminUser, password)
		fmt.Println()
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Idempotent: creates missing tables and applies pending migrations.
	if err := db.Migrate(database); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	slog.Info("database ready", "path", cfg.DBPath)

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(context.Background(), database)
	if err != nil {
		slog.Error("failed to get JWT secret", "error", err)
		os.Exit(1)
	}

	bus := &events.Bus{}
	m := metrics.New()
	bus.Subscribe(m.ObserveEvent)
	bus.Subscribe(func(e events.Event) {
		slog.Debug("data changed", "kind", e.Kind, "restaurant", e.RestaurantID)
	})

	router := api.NewRouter(api.Options{
		DB:         database,
		JWTSecret:  jwtSecret,
		Events:     bus,
		Metrics:    m,
		Categories: source.Mongo{},
		MaxUpload:  cfg.MaxUpload,
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go purgeImages(ctx, database, cfg.ImageTTL)

	server := newServer(ctx, cfg.Addr, api.LoggingMiddleware(router))

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())
		stop()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}

// newServer builds the HTTP server. Request contexts derive from ctx, so
// cancelling it ends long-lived event streams during shutdown.
func newServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// purgeImages removes uploaded images older than ttl that no menu item uses,
// once at startup and then every purgeInterval until ctx is done.
func purgeImages(ctx context.Context, database *sql.DB, ttl time.Duration) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		n, err := store.DeleteExpiredImages(ctx, database, time.Now().Add(-ttl))
		switch {
		case err != nil && ctx.Err() == nil:
			slog.Error("failed to purge images", "error", err)
		case n > 0:
			slog.Info("purged expired images", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// initDatabase creates a new database, applies the schema, and creates the
// master admin.
func initDatabase(path, adminUsername string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.Migrate(database); err != nil {
		return fail(fmt.Errorf("migrating schema: %w", err))
	}

	password, err := generatePassword(16)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fail(fmt.Errorf("hashing password: %w", err))
	}

	_, err = store.CreateUser(context.Background(), database, adminUsername, "", string(hash), model.RoleMaster, nil)
	if err != nil {
		return fail(fmt.Errorf("creating master admin: %w", err))
	}

	return database, password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Master admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("It can be changed after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
