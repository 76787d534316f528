// Package config loads server settings from a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings. Command-line flags override these.
type Config struct {
	DBPath    string
	Addr      string
	AdminUser string
	LogPath   string
	LogLevel  slog.Level
	MaxUpload int64
	ImageTTL  time.Duration
}

// Load reads the given .env files (".env" if none) without overriding
// variables already set, then builds a Config from the environment. Missing
// .env files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := &Config{
		DBPath:    getEnv("JEDILNIK_DB", "jedilnik.sqlite3"),
		Addr:      getEnv("JEDILNIK_ADDR", ":8080"),
		AdminUser: getEnv("JEDILNIK_ADMIN_USER", "Admin"),
		LogPath:   getEnv("JEDILNIK_LOG", ""),
		LogLevel:  ParseLevel(os.Getenv("LOG_LEVEL")),
		MaxUpload: 200 << 10,
		ImageTTL:  30 * 24 * time.Hour,
	}

	if v := os.Getenv("JEDILNIK_MAX_UPLOAD"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid JEDILNIK_MAX_UPLOAD %q", v)
		}
		cfg.MaxUpload = n
	}
	if v := os.Getenv("JEDILNIK_IMAGE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid JEDILNIK_IMAGE_TTL %q", v)
		}
		cfg.ImageTTL = d
	}

	return cfg, nil
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else
// is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
