// Package config loads settings from flags, ONIRIA_* environment
// variables, an optional .env file and an optional .oniria.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DataDir  string `mapstructure:"data_dir" validate:"required"`
	Backend  string `mapstructure:"backend" validate:"oneof=sqlite blob"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=trace debug info warn error disabled"`
	Addr     string `mapstructure:"addr" validate:"required,hostname_port"`
	Gemini   Gemini `mapstructure:"gemini"`
}

// Gemini configures the remote interpretation client. An empty APIKey
// leaves interpretation to the local generator.
type Gemini struct {
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model" validate:"required"`
	Endpoint string        `mapstructure:"endpoint" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"data-dir":  "data_dir",
	"backend":   "backend",
	"log-level": "log_level",
	"addr":      "addr",
}

// Load reads the configuration. Flags that were set on fs win over every
// other source; fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("data_dir", "~/.oniria")
	v.SetDefault("backend", "sqlite")
	v.SetDefault("log_level", "info")
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash-preview-09-2025")
	v.SetDefault("gemini.endpoint", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.timeout", "30s")

	v.SetConfigName(".oniria") // .yaml is implicit
	v.SetEnvPrefix("ONIRIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.api_key", "ONIRIA_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if override := os.Getenv("ONIRIA_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	dir, err := homedir.Expand(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("expand data dir: %w", err)
	}
	cfg.DataDir = dir

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
