package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvHome overrides the root directory for every default path.
const EnvHome = "POSTBUNDLE_HOME"

// Paths contains the directory layout the engine operates on.
type Paths struct {
	ImagesDir string `toml:"images_dir"`
	VideosDir string `toml:"videos_dir"`
	OutboxDir string `toml:"outbox_dir"`
	BanksDir  string `toml:"banks_dir"`
	LogDir    string `toml:"log_dir"`
}

// Timezone pins job folder naming to one civil timezone regardless of the
// host zone.
type Timezone struct {
	Name  string `toml:"name"`
	Label string `toml:"label"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for postbundle.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Timezone Timezone `toml:"timezone"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the location Load consults when no explicit
// path is given.
func DefaultConfigPath() (string, error) {
	if home := strings.TrimSpace(os.Getenv(EnvHome)); home != "" {
		return expandPath(filepath.Join(home, "config.toml"))
	}
	return expandPath("~/.config/postbundle/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	defaults := Default()
	if strings.TrimSpace(c.Paths.ImagesDir) == "" {
		c.Paths.ImagesDir = defaults.Paths.ImagesDir
	}
	if strings.TrimSpace(c.Paths.VideosDir) == "" {
		c.Paths.VideosDir = defaults.Paths.VideosDir
	}
	if strings.TrimSpace(c.Paths.OutboxDir) == "" {
		c.Paths.OutboxDir = defaults.Paths.OutboxDir
	}
	if strings.TrimSpace(c.Paths.BanksDir) == "" {
		c.Paths.BanksDir = defaults.Paths.BanksDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaults.Paths.LogDir
	}
	if strings.TrimSpace(c.Timezone.Name) == "" {
		c.Timezone.Name = defaults.Timezone.Name
	}
	if strings.TrimSpace(c.Timezone.Label) == "" {
		c.Timezone.Label = defaults.Timezone.Label
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaults.Logging.Level
	}

	for _, field := range []*string{
		&c.Paths.ImagesDir,
		&c.Paths.VideosDir,
		&c.Paths.OutboxDir,
		&c.Paths.BanksDir,
		&c.Paths.LogDir,
	} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

// EnsureDirectories creates the directories a run needs to exist. Media
// roots are created best-effort; a missing media root is a valid empty
// inventory, not a failure.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutboxDir, c.Paths.BanksDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	_ = os.MkdirAll(c.Paths.ImagesDir, 0o755)
	_ = os.MkdirAll(c.Paths.VideosDir, 0o755)
	return nil
}

// CaptionBankPath returns the caption bank file location.
func (c *Config) CaptionBankPath() string {
	return filepath.Join(c.Paths.BanksDir, "captions.json")
}

// HashtagBankPath returns the hashtag bank file location.
func (c *Config) HashtagBankPath() string {
	return filepath.Join(c.Paths.BanksDir, "hashtags.json")
}

// LockPath returns the run lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "postbundle.lock")
}

// JournalPath returns the run journal database location.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.LogDir, "journal.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
