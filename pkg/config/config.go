// Package config loads runtime settings from defaults, an optional config
// file, a .env file and REPORTFORM_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/goliatone/go-reportform/pkg/analysis"
)

// EnvPrefix namespaces environment overrides, e.g. REPORTFORM_LOG_LEVEL.
const EnvPrefix = "REPORTFORM"

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Schema  SchemaConfig  `mapstructure:"schema"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	// Addr is the web UI listen address.
	Addr string `mapstructure:"addr"`
	// APIAddr is the report API listen address.
	APIAddr         string        `mapstructure:"api_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type BackendConfig struct {
	// URL of the report API the web UI and CLI talk to. Empty means reports
	// are generated in process.
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SchemaConfig points the web UI at another OpenAPI document, usually the
// running backend's /openapi.yaml. Empty means the embedded document.
type SchemaConfig struct {
	URL string `mapstructure:"url"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.api_addr", ":8000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.timeout", 60*time.Second)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", analysis.DefaultModel)
	v.SetDefault("schema.url", "")
}

// Load reads configuration. path is optional; when empty only defaults and
// the environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("config: bind api key: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Backend.Timeout < 0 {
		return errors.New("config: backend.timeout must not be negative")
	}
	return nil
}

// LoadDotEnv loads variables from .env style files into the process
// environment without overriding values already set. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return nil
}
