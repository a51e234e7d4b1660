package config

import "testing"

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_PATH", "/var/lib/anuncios/app.db")
	t.Setenv("PARSE_WORKERS", "8")
	t.Setenv("VERBOSE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "/var/lib/anuncios/app.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if !cfg.Verbose {
		t.Error("Verbose not set")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PARSE_WORKERS", "")
	t.Setenv("VERBOSE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want default 4", cfg.Workers)
	}
	if cfg.Verbose {
		t.Error("Verbose should default to false")
	}
	if cfg.DBPath == "" || cfg.ProfileDir == "" || cfg.OutputDir == "" {
		t.Errorf("path defaults missing: %+v", cfg)
	}
}

func TestGetEnvParsers(t *testing.T) {
	t.Setenv("SOME_INT", "not a number")
	if got := getEnvInt("SOME_INT", 3); got != 3 {
		t.Errorf("getEnvInt fallback = %d", got)
	}
	t.Setenv("SOME_BOOL", "on")
	if !getEnvBool("SOME_BOOL", false) {
		t.Error("getEnvBool should accept \"on\"")
	}
	t.Setenv("SOME_BOOL", "garbage")
	if getEnvBool("SOME_BOOL", false) {
		t.Error("getEnvBool should fall back on garbage")
	}
}
