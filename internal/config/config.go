package config

import (
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"officedesk/internal/deadline"
	"officedesk/internal/util"
)

// Config holds the process configuration.
type Config struct {
	Addr      string
	DBPath    string
	StaticDir string
	LogLevel  slog.Level

	UpstreamURL     string
	UpstreamTimeout time.Duration
	// ServiceToken authenticates the background snapshot sync; empty disables it.
	ServiceToken string
	SyncInterval time.Duration

	// JWTSecret enables signature checks on caller tokens.
	JWTSecret string

	Locale   deadline.Locale
	Location *time.Location

	AllowedOrigins []string
}

// Load reads the .env file when present, then parses flags whose defaults
// come from OFFICEDESK_* environment variables.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("officedesk", flag.ContinueOnError)
	addr := fs.String("addr", util.EnvOrDefault("OFFICEDESK_ADDR", ":8080"), "HTTP listen address")
	dbPath := fs.String("db", util.EnvOrDefault("OFFICEDESK_DB_PATH", "data/officedesk.db"), "Path to the sqlite snapshot file")
	staticDir := fs.String("static", util.EnvOrDefault("OFFICEDESK_STATIC_DIR", "web/dist"), "Directory with the built frontend")
	logLevel := fs.String("log-level", util.EnvOrDefault("OFFICEDESK_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	upstreamURL := fs.String("upstream", util.EnvOrDefault("OFFICEDESK_UPSTREAM_URL", "http://localhost:8000/api"), "Base URL of the office REST backend")
	upstreamTimeout := fs.Duration("upstream-timeout", util.EnvDuration("OFFICEDESK_UPSTREAM_TIMEOUT", 10*time.Second), "Timeout for upstream requests")
	serviceToken := fs.String("service-token", util.EnvOrDefault("OFFICEDESK_SERVICE_TOKEN", ""), "Bearer token used by the background sync")
	syncInterval := fs.Duration("sync-interval", util.EnvDuration("OFFICEDESK_SYNC_INTERVAL", 5*time.Minute), "Interval between snapshot syncs")
	jwtSecret := fs.String("jwt-secret", util.EnvOrDefault("OFFICEDESK_JWT_SECRET", ""), "HS256 secret for verifying caller tokens")
	locale := fs.String("locale", util.EnvOrDefault("OFFICEDESK_LOCALE", "vi"), "Language of remaining-time labels (en, vi)")
	timezone := fs.String("timezone", util.EnvOrDefault("OFFICEDESK_TIMEZONE", "Asia/Ho_Chi_Minh"), "Time zone for deadlines without an offset")
	origins := fs.String("cors-origins", util.EnvOrDefault("OFFICEDESK_CORS_ORIGINS", "*"), "Comma separated allowed CORS origins")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	level, err := parseLevel(*logLevel)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", *timezone, err)
	}
	if *syncInterval < time.Second {
		return nil, fmt.Errorf("sync interval %s is too short", *syncInterval)
	}

	return &Config{
		Addr:            *addr,
		DBPath:          *dbPath,
		StaticDir:       *staticDir,
		LogLevel:        level,
		UpstreamURL:     *upstreamURL,
		UpstreamTimeout: *upstreamTimeout,
		ServiceToken:    *serviceToken,
		SyncInterval:    *syncInterval,
		JWTSecret:       *jwtSecret,
		Locale:          deadline.ParseLocale(*locale),
		Location:        loc,
		AllowedOrigins:  util.SplitList(*origins),
	}, nil
}

// Classifier returns the deadline classifier configured for this process.
func (c *Config) Classifier() deadline.Classifier {
	return deadline.Classifier{Locale: c.Locale, Location: c.Location}
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}
