// Package config loads cloudstack.Config from files and the environment.
//
// Sources are applied in this order, later ones winning:
//
//  1. the config file (YAML, JSON or TOML, picked by extension)
//  2. a .env file, loaded into the process environment
//  3. environment variables prefixed with CLOUDSTACK_, e.g.
//     CLOUDSTACK_SECRET_KEY or CLOUDSTACK_SIGNATURE_TTL=5m
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lestrrat-go/cloudstack"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of recognized environment variables.
const EnvPrefix = "CLOUDSTACK"

// keys lists every configuration key so that environment variables are
// honored even when the file does not mention them.
var keys = []string{
	"url",
	"api_key",
	"secret_key",
	"allow_empty_string_params",
	"algorithm",
	"signature_ttl",
	"timeout",
}

type loaderConfig struct {
	configFile string
	envFile    string
	envPrefix  string
}

// LoaderOption configures Load.
type LoaderOption func(*loaderConfig)

// WithConfigFile reads path. A missing file is an error.
func WithConfigFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithEnvFile loads path into the environment before reading variables.
// A missing file is an error.
func WithEnvFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.envFile = path }
}

// WithEnvPrefix overrides EnvPrefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *loaderConfig) { lc.envPrefix = prefix }
}

// Load builds a cloudstack.Config. Defaults are applied and the result is
// validated; invalid results are cloudstack.ErrConfiguration errors.
// Middlewares are code, not configuration: set them on the returned value.
func Load(options ...LoaderOption) (cloudstack.Config, error) {
	lc := loaderConfig{envPrefix: EnvPrefix}
	for _, option := range options {
		option(&lc)
	}

	v := viper.New()
	if lc.configFile != "" {
		v.SetConfigFile(lc.configFile)
		if err := v.ReadInConfig(); err != nil {
			return cloudstack.Config{}, configError(fmt.Errorf("failed to read config file %s: %w", lc.configFile, err))
		}
	}

	if lc.envFile != "" {
		if _, err := os.Stat(lc.envFile); err != nil {
			return cloudstack.Config{}, configError(fmt.Errorf("failed to load env file %s: %w", lc.envFile, err))
		}
		if err := godotenv.Load(lc.envFile); err != nil {
			return cloudstack.Config{}, configError(fmt.Errorf("failed to load env file %s: %w", lc.envFile, err))
		}
	}

	v.SetEnvPrefix(lc.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return cloudstack.Config{}, configError(fmt.Errorf("failed to bind %s: %w", key, err))
		}
	}

	var cfg cloudstack.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cloudstack.Config{}, configError(fmt.Errorf("failed to unmarshal config: %w", err))
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cloudstack.Config{}, err
	}
	return cfg, nil
}

func configError(err error) error {
	return &cloudstack.Error{Phase: cloudstack.PhaseBuild, Kind: cloudstack.ErrConfiguration, Err: err}
}
