// Package viper loads dashdoc configuration with spf13/viper.
package viper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/dashdoc"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. DASHDOC_OUTPUT.
const EnvPrefix = "DASHDOC"

// Config holds the settings read from the configuration file and the
// environment.
type Config struct {
	Output   string                 `mapstructure:"output"`
	CacheDir string                 `mapstructure:"cache_dir"`
	Rate     float64                `mapstructure:"rate"`
	Docsets  []dashdoc.DocsetConfig `mapstructure:"docsets"`
}

// Catalog returns the configured docsets, or the built-in catalog when the
// configuration names none.
func (c *Config) Catalog() *dashdoc.Catalog {
	if len(c.Docsets) == 0 {
		return dashdoc.DefaultCatalog()
	}
	return &dashdoc.Catalog{Docsets: c.Docsets}
}

// Load reads the configuration. An explicit path must exist. Without one,
// dashdoc.{yaml,toml,json} is searched for in the working directory and
// in $HOME/.dashdoc, and a missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("dashdoc")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".dashdoc"))
		}
	}

	v.SetDefault("output", ".")
	v.SetDefault("cache_dir", "")
	v.SetDefault("rate", 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, dashdoc.Errorf(dashdoc.EINVALID, "failed to read config file: %v", err)
		}
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, dashdoc.Errorf(dashdoc.EINVALID, "failed to decode config: %v", err)
	}

	for _, d := range cfg.Docsets {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// LoadCatalog reads the configuration at path and returns its catalog.
func LoadCatalog(path string) (*dashdoc.Catalog, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Catalog(), nil
}
