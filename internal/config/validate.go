package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	required := map[string]string{
		"paths.images_dir": c.Paths.ImagesDir,
		"paths.videos_dir": c.Paths.VideosDir,
		"paths.outbox_dir": c.Paths.OutboxDir,
		"paths.banks_dir":  c.Paths.BanksDir,
		"paths.log_dir":    c.Paths.LogDir,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("config: %s must not be empty", key)
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("config: logging.format: unsupported value %q", c.Logging.Format)
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: logging.level: unsupported value %q", c.Logging.Level)
	}

	if strings.TrimSpace(c.Timezone.Label) == "" {
		return fmt.Errorf("config: timezone.label must not be empty")
	}
	if _, err := time.LoadLocation(c.Timezone.Name); err != nil {
		return fmt.Errorf("config: timezone.name: %w", err)
	}
	return nil
}

// Location resolves the configured civil timezone. Validate guarantees the
// name loads, so errors here only occur on configs that skipped Load.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone.Name)
}
