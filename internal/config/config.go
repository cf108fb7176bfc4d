package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	IrisBaseURL string
	IrisWSURL   string

	BotPrefix string

	XUserID    string
	XUserEmail string
	XSessionID string

	RedisURL    string
	DatabaseURL string

	AllowedRooms []string

	EgressMode   string
	EgressDryRun bool

	MatchTTL      time.Duration
	BoardSquarePx int
	MessagesDir   string

	HTTPAddr string
}

// Load reads the environment. Variables from ENV_FILE (default .env) fill in
// whatever the process environment leaves unset; a missing file is fine.
func Load() (*AppConfig, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}
	cfg := &AppConfig{
		RedisURL:      "redis://localhost:6379/0",
		EgressMode:    "http",
		MatchTTL:      7 * 24 * time.Hour,
		BoardSquarePx: 64,
	}

	cfg.IrisBaseURL = env("IRIS_BASE_URL")
	cfg.IrisWSURL = env("IRIS_WS_URL")
	cfg.BotPrefix = env("BOT_PREFIX")

	cfg.XUserID = env("X_USER_ID")
	cfg.XUserEmail = env("X_USER_EMAIL")
	cfg.XSessionID = env("X_SESSION_ID")

	if v := env("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	cfg.DatabaseURL = env("DATABASE_URL")
	cfg.AllowedRooms = splitList(env("ALLOWED_ROOMS"))

	if v := strings.ToLower(env("EGRESS_MODE")); v != "" {
		switch v {
		case "http", "ws", "auto":
			cfg.EgressMode = v
		default:
			return nil, errors.New("EGRESS_MODE must be http, ws or auto")
		}
	}
	if v := env("EGRESS_DRYRUN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EgressDryRun = b
		}
	}

	// seconds, or a Go duration such as 36h
	if v := env("CHECKERS_MATCH_TTL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MatchTTL = time.Duration(n) * time.Second
		} else if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.MatchTTL = d
		}
	}
	if v := env("CHECKERS_BOARD_SQUARE_PX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 16 && n <= 256 {
			cfg.BoardSquarePx = n
		}
	}
	cfg.MessagesDir = env("MESSAGES_DIR")
	cfg.HTTPAddr = env("HTTP_ADDR")

	if cfg.IrisBaseURL == "" {
		return nil, errors.New("IRIS_BASE_URL is required")
	}
	if cfg.IrisWSURL == "" {
		return nil, errors.New("IRIS_WS_URL is required")
	}
	if cfg.BotPrefix == "" {
		return nil, errors.New("BOT_PREFIX is required")
	}

	return cfg, nil
}

// Headers returns the X-User-* headers Iris expects, omitting unset ones.
func (c *AppConfig) Headers() map[string]string {
	h := map[string]string{}
	if c.XUserID != "" {
		h["X-User-Id"] = c.XUserID
	}
	if c.XUserEmail != "" {
		h["X-User-Email"] = c.XUserEmail
	}
	if c.XSessionID != "" {
		h["X-Session-Id"] = c.XSessionID
	}
	return h
}

// RoomAllowed reports whether room passes the ALLOWED_ROOMS filter.
func (c *AppConfig) RoomAllowed(room string) bool {
	if len(c.AllowedRooms) == 0 {
		return true
	}
	for _, r := range c.AllowedRooms {
		if r == room {
			return true
		}
	}
	return false
}

func loadEnvFile() error {
	path := env("ENV_FILE")
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("ENV_FILE: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func env(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
