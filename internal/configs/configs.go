/*
Package configs loads the application configuration.

Settings come from an optional config.yaml plus SCRUMPOKER_* environment
variable overrides; every value has a default, so the server runs with no
configuration at all.
*/
package configs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig holds every runtime setting of the server.
type AppConfig struct {
	// Environment switches log formatting and CORS strictness
	// ("development" or "production").
	Environment string `mapstructure:"environment"`

	// Addr is the listen address, host:port.
	Addr string `mapstructure:"addr"`

	// AllowedOrigins are the origins accepted for CORS and WebSocket
	// upgrades outside development.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// VoteOptions is the numeric estimation scale advertised to every
	// admitted client in its config frame.
	VoteOptions []float64 `mapstructure:"vote_options"`

	// StaticDir is the directory of the bundled web client; empty disables
	// static serving.
	StaticDir string `mapstructure:"static_dir"`
}

// LoadConfig reads config.yaml (working dir or ./config) and the
// environment, fills in defaults, and validates the result.
func LoadConfig() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("environment", "development")
	v.SetDefault("addr", "0.0.0.0:15000")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("vote_options", []float64{0, 0.5, 1, 2, 3, 5, 8, 10, 15, 20, 40, 60})
	v.SetDefault("static_dir", "")

	v.SetEnvPrefix("SCRUMPOKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("listen address must not be empty")
	}
	if len(cfg.VoteOptions) == 0 {
		return nil, fmt.Errorf("vote_options must contain at least one value")
	}

	return &cfg, nil
}
