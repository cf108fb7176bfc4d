package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("IRIS_BASE_URL", "http://iris:3000")
	t.Setenv("IRIS_WS_URL", "ws://iris:3000/ws")
	t.Setenv("BOT_PREFIX", "!")
	t.Setenv("ENV_FILE", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	for _, k := range []string{"REDIS_URL", "DATABASE_URL", "ALLOWED_ROOMS", "EGRESS_MODE", "EGRESS_DRYRUN", "CHECKERS_MATCH_TTL", "CHECKERS_BOARD_SQUARE_PX", "MESSAGES_DIR", "X_USER_ID", "X_USER_EMAIL", "X_SESSION_ID"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EgressMode != "http" || cfg.EgressDryRun {
		t.Errorf("egress defaults: %q %v", cfg.EgressMode, cfg.EgressDryRun)
	}
	if cfg.MatchTTL != 7*24*time.Hour {
		t.Errorf("MatchTTL = %v", cfg.MatchTTL)
	}
	if cfg.BoardSquarePx != 64 {
		t.Errorf("BoardSquarePx = %d", cfg.BoardSquarePx)
	}
	if !cfg.RoomAllowed("any") {
		t.Errorf("empty ALLOWED_ROOMS must allow every room")
	}
	if len(cfg.Headers()) != 0 {
		t.Errorf("unexpected headers %v", cfg.Headers())
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ALLOWED_ROOMS", " a, ,b ")
	t.Setenv("EGRESS_MODE", "AUTO")
	t.Setenv("EGRESS_DRYRUN", "true")
	t.Setenv("CHECKERS_MATCH_TTL", "90")
	t.Setenv("CHECKERS_BOARD_SQUARE_PX", "48")
	t.Setenv("X_USER_ID", "bot")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.AllowedRooms) != 2 || !cfg.RoomAllowed("b") || cfg.RoomAllowed("c") {
		t.Errorf("AllowedRooms = %v", cfg.AllowedRooms)
	}
	if cfg.EgressMode != "auto" || !cfg.EgressDryRun {
		t.Errorf("egress: %q %v", cfg.EgressMode, cfg.EgressDryRun)
	}
	if cfg.MatchTTL != 90*time.Second {
		t.Errorf("MatchTTL = %v", cfg.MatchTTL)
	}
	if cfg.BoardSquarePx != 48 {
		t.Errorf("BoardSquarePx = %d", cfg.BoardSquarePx)
	}
	if cfg.Headers()["X-User-Id"] != "bot" {
		t.Errorf("headers = %v", cfg.Headers())
	}

	t.Setenv("CHECKERS_MATCH_TTL", "36h")
	t.Setenv("CHECKERS_BOARD_SQUARE_PX", "4096")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MatchTTL != 36*time.Hour || cfg.BoardSquarePx != 64 {
		t.Errorf("ttl/px = %v/%d", cfg.MatchTTL, cfg.BoardSquarePx)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name  string
		unset string
		mode  string
	}{
		{name: "base url", unset: "IRIS_BASE_URL"},
		{name: "ws url", unset: "IRIS_WS_URL"},
		{name: "prefix", unset: "BOT_PREFIX"},
		{name: "egress mode", mode: "smtp"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("EGRESS_MODE", tc.mode)
			if tc.unset != "" {
				t.Setenv(tc.unset, "")
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "bot.env")
	if err := os.WriteFile(path, []byte("HTTP_ADDR=:8088\nBOT_PREFIX=?\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("HTTP_ADDR", "")
	os.Unsetenv("HTTP_ADDR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8088" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	// the process environment wins over the file
	if cfg.BotPrefix != "!" {
		t.Errorf("BotPrefix = %q", cfg.BotPrefix)
	}

	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for a missing explicit ENV_FILE")
	}
}
