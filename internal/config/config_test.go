package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"postbundle/internal/config"
)

func TestLoadDefaultsWithEnvHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(home, "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}

	if cfg.Paths.ImagesDir != filepath.Join(home, "media", "images") {
		t.Fatalf("unexpected images dir: %q", cfg.Paths.ImagesDir)
	}
	if cfg.Paths.OutboxDir != filepath.Join(home, "outbox") {
		t.Fatalf("unexpected outbox dir: %q", cfg.Paths.OutboxDir)
	}
	if cfg.Paths.LogDir != filepath.Join(home, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Timezone.Name != "Europe/Madrid" || cfg.Timezone.Label != "CET" {
		t.Fatalf("unexpected timezone defaults: %+v", cfg.Timezone)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutboxDir, cfg.Paths.BanksDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be a directory", dir)
		}
	}

	if got := cfg.LockPath(); got != filepath.Join(cfg.Paths.LogDir, "postbundle.lock") {
		t.Fatalf("unexpected lock path: %q", got)
	}
	if got := cfg.CaptionBankPath(); got != filepath.Join(cfg.Paths.BanksDir, "captions.json") {
		t.Fatalf("unexpected caption bank path: %q", got)
	}
}

func TestLoadExplicitFileOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)

	custom := filepath.Join(home, "media")
	content := strings.Join([]string{
		"[paths]",
		"images_dir = " + tomlString(filepath.Join(custom, "img")),
		"videos_dir = " + tomlString(filepath.Join(custom, "vid")),
		"[timezone]",
		`name = "UTC"`,
		`label = "UTC"`,
		"[logging]",
		`format = "json"`,
	}, "\n")
	path := filepath.Join(home, "custom.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be read")
	}
	if cfg.Paths.ImagesDir != filepath.Join(custom, "img") {
		t.Fatalf("unexpected images dir: %q", cfg.Paths.ImagesDir)
	}
	if cfg.Paths.OutboxDir != filepath.Join(home, "outbox") {
		t.Fatalf("expected default outbox dir, got %q", cfg.Paths.OutboxDir)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected format: %q", cfg.Logging.Format)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default level, got %q", cfg.Logging.Level)
	}
	if _, err := cfg.Location(); err != nil {
		t.Fatalf("Location failed: %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)

	cases := map[string]string{
		"bad format":   "[logging]\nformat = \"yaml\"\n",
		"bad level":    "[logging]\nlevel = \"trace\"\n",
		"bad timezone": "[timezone]\nname = \"Mars/Olympus\"\n",
	}
	for name, content := range cases {
		path := filepath.Join(home, strings.ReplaceAll(name, " ", "_")+".toml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, _, _, err := config.Load(path); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[timezone]") {
		t.Fatalf("sample config missing timezone section")
	}
}

func tomlString(value string) string {
	return "'" + value + "'"
}
