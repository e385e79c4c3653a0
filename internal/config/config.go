package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved clubdata configuration.
type Config struct {
	Strategy       string
	APIBase        string
	CachePath      string
	IDScheme       string
	RequestTimeout time.Duration
	Log            LogConfig
	Server         ServerConfig
}

// LogConfig selects logger level and encoder.
type LogConfig struct {
	Level  string
	Format string
	File   string
}

// ServerConfig configures `clubdata serve`.
type ServerConfig struct {
	Bind    string
	Backend string
	DataDir string
}

const (
	defaultConfigPath     = "~/.config/clubdata/config.toml"
	defaultStrategy       = "remote"
	defaultAPIBase        = "http://127.0.0.1:3001/api"
	defaultCachePath      = "~/.local/share/clubdata/cache.db"
	defaultIDScheme       = "timestamp"
	defaultRequestTimeout = 10 * time.Second
	defaultLogLevel       = "INFO"
	defaultLogFormat      = "CONSOLE"
	defaultLogFile        = "~/.local/share/clubdata/clubdata.log"
	defaultBind           = "127.0.0.1:3001"
	defaultBackend        = "file"
	defaultDataDir        = "~/.local/share/clubdata/data"
)

var (
	strategies = []string{"remote", "bulk", "local", "none"}
	idSchemes  = []string{"timestamp", "uuid7"}
	backends   = []string{"file", "sqlite"}
	logFormats = []string{"CONSOLE", "JSON"}
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Strategy:       defaultStrategy,
		APIBase:        defaultAPIBase,
		CachePath:      mustExpand(defaultCachePath),
		IDScheme:       defaultIDScheme,
		RequestTimeout: defaultRequestTimeout,
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
			File:   mustExpand(defaultLogFile),
		},
		Server: ServerConfig{
			Bind:    defaultBind,
			Backend: defaultBackend,
			DataDir: mustExpand(defaultDataDir),
		},
	}
}

type rawConfig struct {
	Strategy       string `toml:"strategy"`
	APIBase        string `toml:"api_base"`
	CachePath      string `toml:"cache_path"`
	IDScheme       string `toml:"id_scheme"`
	RequestTimeout string `toml:"request_timeout"`
	Log            struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
		File   string `toml:"file"`
	} `toml:"log"`
	Server struct {
		Bind    string `toml:"bind"`
		Backend string `toml:"backend"`
		DataDir string `toml:"data_dir"`
	} `toml:"server"`
}

// Load reads the config at path, or the default path when empty. A missing
// file yields Default(); blank fields keep their defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	override(&cfg.Strategy, strings.ToLower(raw.Strategy))
	override(&cfg.APIBase, raw.APIBase)
	overridePath(&cfg.CachePath, raw.CachePath)
	override(&cfg.IDScheme, strings.ToLower(raw.IDScheme))
	override(&cfg.Log.Level, strings.ToUpper(raw.Log.Level))
	override(&cfg.Log.Format, strings.ToUpper(raw.Log.Format))
	overridePath(&cfg.Log.File, raw.Log.File)
	override(&cfg.Server.Bind, raw.Server.Bind)
	override(&cfg.Server.Backend, strings.ToLower(raw.Server.Backend))
	overridePath(&cfg.Server.DataDir, raw.Server.DataDir)

	if timeout := strings.TrimSpace(raw.RequestTimeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks every enumerated field.
func (c Config) Validate() error {
	if !oneOf(c.Strategy, strategies) {
		return fmt.Errorf("strategy %q is not one of %s", c.Strategy, strings.Join(strategies, ", "))
	}
	if !oneOf(c.IDScheme, idSchemes) {
		return fmt.Errorf("id_scheme %q is not one of %s", c.IDScheme, strings.Join(idSchemes, ", "))
	}
	if !oneOf(c.Server.Backend, backends) {
		return fmt.Errorf("server.backend %q is not one of %s", c.Server.Backend, strings.Join(backends, ", "))
	}
	if !oneOf(c.Log.Format, logFormats) {
		return fmt.Errorf("log.format %q is not one of %s", c.Log.Format, strings.Join(logFormats, ", "))
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func override(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func overridePath(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = mustExpand(v)
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
