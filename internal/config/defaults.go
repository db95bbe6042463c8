package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultTimezoneName  = "Europe/Madrid"
	defaultTimezoneLabel = "CET"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults. All default
// paths hang off one base directory so POSTBUNDLE_HOME relocates the whole
// layout at once.
func Default() Config {
	base := defaultBaseDir()
	return Config{
		Paths: Paths{
			ImagesDir: filepath.Join(base, "media", "images"),
			VideosDir: filepath.Join(base, "media", "videos"),
			OutboxDir: filepath.Join(base, "outbox"),
			BanksDir:  filepath.Join(base, "banks"),
			LogDir:    filepath.Join(base, "logs"),
		},
		Timezone: Timezone{
			Name:  defaultTimezoneName,
			Label: defaultTimezoneLabel,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultBaseDir() string {
	if home := strings.TrimSpace(os.Getenv(EnvHome)); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.local/share/postbundle"
	}
	return filepath.Join(home, ".local", "share", "postbundle")
}
