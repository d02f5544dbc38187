// Package config loads client settings from an optional YAML file and
// TRUCCA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TRUCCA_BASE_URL.
const EnvPrefix = "TRUCCA"

type Config struct {
	BaseURL      string        `mapstructure:"base_url"`
	StoragePath  string        `mapstructure:"storage_path"`
	DownloadDir  string        `mapstructure:"download_dir"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PageSize     int           `mapstructure:"page_size"`
	OTLPEndpoint string        `mapstructure:"otlp_endpoint"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		StoragePath: filepath.Join(Dir(), "trucca.db"),
		DownloadDir: ".",
		PageSize:    10,
	}
}

// Dir is the per-user configuration directory.
func Dir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "trucca")
	}
	return ".trucca"
}

// Load reads path when given; otherwise config.yaml is looked up in Dir and
// the working directory and may be absent. Environment variables override
// the file.
func Load(path string) (*Config, error) {
	def := Default()

	v := viper.New()
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("storage_path", def.StoragePath)
	v.SetDefault("download_dir", def.DownloadDir)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("page_size", def.PageSize)
	v.SetDefault("otlp_endpoint", def.OTLPEndpoint)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.PageSize <= 0 {
		c.PageSize = def.PageSize
	}
	return &c, nil
}
