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
	"github.com/subosito/gotenv"

	"github.com/five82/famwall/internal/familywall"
)

// ErrMissingCredentials is returned when no login email or password is set.
var ErrMissingCredentials = errors.New("missing FamilyWall credentials: set FAMWALL_EMAIL and FAMWALL_PASSWORD")

// Config holds famwall settings. Credentials are never read from the file.
type Config struct {
	Path         string
	BaseURL      string
	Timezone     string
	DeviceID     string
	LoginRetries int // extra login attempts; -1 disables retries
	Timeout      time.Duration
	PollInterval time.Duration
	Theme        string
	LogLevel     string
	LogFormat    string
}

const (
	defaultConfigPath   = "~/.config/famwall/config.toml"
	defaultEnvFile      = ".env"
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 60 * time.Second
	defaultTheme        = "Nightfox"
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
)

var (
	emailVars    = []string{"FAMWALL_EMAIL", "email"}
	passwordVars = []string{"FAMWALL_PASSWORD", "password"}
)

type fileConfig struct {
	BaseURL        string `toml:"base_url"`
	Timezone       string `toml:"timezone"`
	DeviceID       string `toml:"device_id"`
	LoginRetries   *int   `toml:"login_retries"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	PollSeconds    int    `toml:"poll_seconds"`
	Theme          string `toml:"theme"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Path:         mustExpand(defaultConfigPath),
		BaseURL:      familywall.DefaultBaseURL,
		LoginRetries: familywall.DefaultLoginRetries,
		Timeout:      defaultTimeout,
		PollInterval: defaultPollInterval,
		Theme:        defaultTheme,
		LogLevel:     defaultLogLevel,
		LogFormat:    defaultLogFormat,
	}
}

// Load parses the famwall config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	cfg.Path = resolved

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

	var raw fileConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	cfg.Timezone = strings.TrimSpace(raw.Timezone)
	cfg.DeviceID = strings.TrimSpace(raw.DeviceID)
	if raw.LoginRetries != nil {
		cfg.LoginRetries = max(*raw.LoginRetries, 0)
		if cfg.LoginRetries == 0 {
			cfg.LoginRetries = -1
		}
	}
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if raw.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(raw.PollSeconds) * time.Second
	}
	if v := strings.TrimSpace(raw.Theme); v != "" {
		cfg.Theme = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.LogFormat); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("parse config: log_format %q must be text or json", raw.LogFormat)
	}

	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. With no paths it reads ./.env
// and ignores a missing file; explicit paths must exist.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		if err := gotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file: %w", err)
		}
		return nil
	}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		resolved, err := expandPath(p)
		if err != nil {
			return err
		}
		if err := gotenv.Load(resolved); err != nil {
			return fmt.Errorf("load env file %s: %w", resolved, err)
		}
	}
	return nil
}

// Credentials returns the login email and password from the environment.
func (c Config) Credentials() (string, string, error) {
	email := firstEnv(emailVars)
	password := firstEnv(passwordVars)
	if email == "" || password == "" {
		return "", "", ErrMissingCredentials
	}
	return email, password, nil
}

// ClientOptions maps the config onto familywall client options.
func (c Config) ClientOptions() familywall.Options {
	return familywall.Options{
		BaseURL:      c.BaseURL,
		Timezone:     c.Timezone,
		DeviceID:     c.DeviceID,
		LoginRetries: c.LoginRetries,
		Timeout:      c.Timeout,
	}
}

// SaveTheme rewrites the theme key of the config file at path, keeping every
// other key. The file and its directory are created when missing.
func SaveTheme(path, theme string) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	doc := map[string]any{}
	if bytes, err := os.ReadFile(resolved); err == nil {
		if err := toml.Unmarshal(bytes, &doc); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read config: %w", err)
	}
	doc["theme"] = theme

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	bytes, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func firstEnv(keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
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
