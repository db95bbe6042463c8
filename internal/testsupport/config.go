// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"postbundle/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test. UTC is used as the job timezone so folder names in assertions do
// not depend on DST.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ImagesDir = filepath.Join(base, "media", "images")
	cfg.Paths.VideosDir = filepath.Join(base, "media", "videos")
	cfg.Paths.OutboxDir = filepath.Join(base, "outbox")
	cfg.Paths.BanksDir = filepath.Join(base, "banks")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Timezone.Name = "UTC"
	cfg.Timezone.Label = "UTC"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithTimezone overrides the job timezone on the test config.
func WithTimezone(name, label string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Timezone.Name = name
		cfg.Timezone.Label = label
	}
}
