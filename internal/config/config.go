// Package config resolves runtime settings from ~/.legalai/config.toml, a
// local .env file and LEGALAI_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	KeyBaseURL        = "api.base_url"
	KeyTimeout        = "api.timeout"
	KeySessionBackend = "session.backend"
	KeySessionPath    = "session.path"
	KeySecretsDir     = "secrets.dir"
	KeyPassBinary     = "secrets.pass_binary"
	KeyPassStoreDir   = "secrets.pass_store_dir"
	KeyDismissAfter   = "notify.dismiss_after"
	KeyLogLevel       = "log.level"

	BackendTOML    = "toml"
	BackendSecrets = "secrets"

	DefaultBaseURL      = "http://localhost:8000/api/v1"
	DefaultDismissAfter = 5 * time.Second

	envPrefix  = "LEGALAI"
	configDir  = ".legalai"
	configName = "config"
)

type LoadOptions struct {
	// ConfigFile replaces the default lookup; a missing explicit file is an error.
	ConfigFile string
	// EnvFile defaults to ".env" in the working directory. Missing files are ignored.
	EnvFile string
	HomeDir string
}

type Config struct {
	v *viper.Viper

	BaseURL        string
	Timeout        time.Duration
	SessionBackend string
	SessionPath    string
	SecretsDir     string
	PassBinary     string
	PassStoreDir   string
	DismissAfter   time.Duration
	LogLevel       slog.Level
}

func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	homeDir := opts.HomeDir
	if homeDir == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		homeDir = dir
	}

	v := viper.New()
	setDefaults(v, homeDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(homeDir, configDir))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return FromViper(v)
}

// FromViper validates an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		v:              v,
		BaseURL:        strings.TrimRight(strings.TrimSpace(v.GetString(KeyBaseURL)), "/"),
		Timeout:        v.GetDuration(KeyTimeout),
		SessionBackend: strings.ToLower(strings.TrimSpace(v.GetString(KeySessionBackend))),
		SessionPath:    v.GetString(KeySessionPath),
		SecretsDir:     v.GetString(KeySecretsDir),
		PassBinary:     strings.TrimSpace(v.GetString(KeyPassBinary)),
		PassStoreDir:   strings.TrimSpace(v.GetString(KeyPassStoreDir)),
		DismissAfter:   v.GetDuration(KeyDismissAfter),
	}

	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("%s must not be negative", KeyTimeout)
	}
	if cfg.DismissAfter <= 0 {
		cfg.DismissAfter = DefaultDismissAfter
	}

	switch cfg.SessionBackend {
	case BackendTOML, BackendSecrets:
	default:
		return nil, fmt.Errorf("%s must be %q or %q, got %q", KeySessionBackend, BackendTOML, BackendSecrets, cfg.SessionBackend)
	}

	level, err := ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	v.Set(KeyBaseURL, cfg.BaseURL)

	return cfg, nil
}

// Viper exposes the resolved settings to adapters that read their own keys.
func (c *Config) Viper() *viper.Viper {
	return c.v
}

func (c *Config) Override(key string, value any) error {
	c.v.Set(key, value)
	updated, err := FromViper(c.v)
	if err != nil {
		return err
	}
	*c = *updated
	return nil
}

func ParseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(raw) == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return 0, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	return level, nil
}

func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func setDefaults(v *viper.Viper, homeDir string) {
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeySessionBackend, BackendTOML)
	v.SetDefault(KeySessionPath, filepath.Join(homeDir, configDir, "session.toml"))
	v.SetDefault(KeySecretsDir, filepath.Join(homeDir, configDir, "secrets"))
	v.SetDefault(KeyDismissAfter, DefaultDismissAfter)
	v.SetDefault(KeyLogLevel, "warn")
}

func validateBaseURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", KeyBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", KeyBaseURL, raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s has no host: %q", KeyBaseURL, raw)
	}
	return nil
}
