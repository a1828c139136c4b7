// Package config resolves the on-disk directory layout and tunables for
// ypms, per spec.md §6 (EXTERNAL INTERFACES: directory layout).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// EnvYpmsDir overrides the ypms home directory. Default: ~/.ypms.
	EnvYpmsDir = "YPMS_DIR"

	// EnvYpmsEnvsDir overrides the environments directory.
	EnvYpmsEnvsDir = "YPMS_ENVS_DIR"

	// EnvDebug enables verbose logs when set to a truthy value.
	EnvDebug = "YPMS_DEBUG"

	// EnvHTTPTimeout overrides the HTTP request timeout (duration string).
	EnvHTTPTimeout = "YPMS_HTTP_TIMEOUT"

	// DefaultHTTPTimeout is the fixed 20-second timeout specified by
	// spec.md §4.2 and §6. This is the default; EnvHTTPTimeout may
	// override it, but the spec's literal behavior is unchanged unless
	// an operator opts in.
	DefaultHTTPTimeout = 20 * time.Second

	// MinHTTPTimeout and MaxHTTPTimeout bound EnvHTTPTimeout overrides.
	MinHTTPTimeout = 1 * time.Second
	MaxHTTPTimeout = 10 * time.Minute

	// DefaultSourceName is the source seeded on first run.
	DefaultSourceName = "yopr"

	// DefaultSourceConfigURL is the config URL for the seeded default source.
	DefaultSourceConfigURL = "https://ypsh-dgc.github.io/YPMS/yopr/ypms.json"

	// DefaultEnvID is the environment used when the caller does not specify one.
	DefaultEnvID = "default"

	// UserAgent is sent with every HTTP request per spec.md §6.
	UserAgent = "YPMS-Go/1.0 (+https://github.com/YPSH-DGC/YPMS)"
)

// Config resolves the directory layout rooted at YpmsDir.
type Config struct {
	YpmsDir string
	EnvsDir string

	// File holds optional operator defaults loaded from config.toml.
	// Never required; zero value means "no overrides configured".
	File FileConfig
}

// FileConfig is the schema of the optional ~/.ypms/config.toml. It carries
// ambient operator preferences only. Load decodes it into Config.File; no
// command reads these fields, so flags and environment variables alone
// decide the source, the environment, and whether prompts are skipped.
type FileConfig struct {
	DefaultSource  string `toml:"default_source"`
	DefaultEnv     string `toml:"default_env"`
	AssumeYes      bool   `toml:"assume_yes"`
}

// Load resolves the Config from environment variables and, if present,
// config.toml. It does not create any directories; call EnsureDirectories
// for that.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	ypmsDir := os.Getenv(EnvYpmsDir)
	if ypmsDir == "" {
		ypmsDir = filepath.Join(home, ".ypms")
	}

	envsDir := os.Getenv(EnvYpmsEnvsDir)
	if envsDir == "" {
		envsDir = filepath.Join(ypmsDir, "envs")
	}

	cfg := &Config{YpmsDir: ypmsDir, EnvsDir: envsDir}

	var fc FileConfig
	if _, err := toml.DecodeFile(cfg.ConfigTomlPath(), &fc); err == nil {
		cfg.File = fc
	}
	// A missing or malformed config.toml is never fatal: it is pure
	// ambient sugar layered on top of flags and environment variables.

	return cfg, nil
}

// EnsureDirectories creates ypms_dir, envs/, bin/, and cache/ if absent,
// per spec.md §4.5 (Manager façade initialization) and §6 (directory layout).
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.YpmsDir, c.EnvsDir, c.BinDir(), c.CacheDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SourcesPath returns the path to sources.json.
func (c *Config) SourcesPath() string { return filepath.Join(c.YpmsDir, "sources.json") }

// InstalledPath returns the path to installed.json.
func (c *Config) InstalledPath() string { return filepath.Join(c.YpmsDir, "installed.json") }

// CacheDir returns the metadata/download cache root.
func (c *Config) CacheDir() string { return filepath.Join(c.YpmsDir, "cache") }

// BinDir returns the bin/ directory (reserved per spec.md §6; unused by
// the core, owned by the bootstrap launcher collaborator).
func (c *Config) BinDir() string { return filepath.Join(c.YpmsDir, "bin") }

// ConfigTomlPath returns the path to the optional operator config file.
func (c *Config) ConfigTomlPath() string { return filepath.Join(c.YpmsDir, "config.toml") }

// EnvDir returns the directory for a given environment ID, under envs/.
func (c *Config) EnvDir(envID string) string { return filepath.Join(c.EnvsDir, envID) }

// EnsureEnvDir creates and returns the directory for envID.
func (c *Config) EnsureEnvDir(envID string) (string, error) {
	dir := c.EnvDir(envID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create environment directory %s: %w", dir, err)
	}
	return dir, nil
}

// HTTPTimeout returns the configured HTTP timeout, honoring EnvHTTPTimeout
// with a [MinHTTPTimeout, MaxHTTPTimeout] clamp, defaulting to the spec's
// fixed 20 seconds.
func HTTPTimeout() time.Duration {
	raw := os.Getenv(EnvHTTPTimeout)
	if raw == "" {
		return DefaultHTTPTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return DefaultHTTPTimeout
	}
	if d < MinHTTPTimeout {
		return MinHTTPTimeout
	}
	if d > MaxHTTPTimeout {
		return MaxHTTPTimeout
	}
	return d
}

// DebugEnabled reports whether YPMS_DEBUG is set to a truthy value.
func DebugEnabled() bool {
	return isTruthy(os.Getenv(EnvDebug))
}

func isTruthy(s string) bool {
	switch s {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	default:
		return false
	}
}
