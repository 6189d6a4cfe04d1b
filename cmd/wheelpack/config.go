package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/meigma/wheelpack"
	"github.com/meigma/wheelpack/shim"
)

const (
	appName    = "wheelpack"
	envPrefix  = "WHEELPACK"
	configType = "toml"

	// sourceDateEpochEnv is the reproducible-builds timestamp variable.
	sourceDateEpochEnv = "SOURCE_DATE_EPOCH"
)

// config is the process configuration, read from wheelpack.toml and
// WHEELPACK_* environment variables.
type config struct {
	LogLevel        string `mapstructure:"log_level"`
	Level           int    `mapstructure:"level"`
	NormalizeModes  bool   `mapstructure:"normalize_modes"`
	SourceDateEpoch string `mapstructure:"source_date_epoch"`
}

func defaultConfig() config {
	return config{
		LogLevel: "warn",
		Level:    wheelpack.DefaultLevel,
	}
}

// configPaths returns the directories searched for wheelpack.toml.
func configPaths() []string {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, appName))
	}
	return paths
}

// loadConfig merges defaults, the first wheelpack.toml found in dirs, and
// the environment, in increasing precedence.
func loadConfig(dirs ...string) (config, error) {
	v := viper.New()

	defaults := defaultConfig()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("level", defaults.Level)
	v.SetDefault("normalize_modes", defaults.NormalizeModes)
	v.SetDefault("source_date_epoch", defaults.SourceDateEpoch)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("source_date_epoch", sourceDateEpochEnv); err != nil {
		return config{}, fmt.Errorf("bind %s: %w", sourceDateEpochEnv, err)
	}

	v.SetConfigName(appName)
	v.SetConfigType(configType)
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// timestamp returns the SOURCE_DATE_EPOCH override, or the zero time when
// none is set.
func (c config) timestamp() (time.Time, error) {
	if c.SourceDateEpoch == "" {
		return time.Time{}, nil
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(c.SourceDateEpoch), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", sourceDateEpochEnv, c.SourceDateEpoch, err)
	}
	return time.Unix(secs, 0).UTC(), nil
}

func (c config) shimOptions() ([]shim.Option, error) {
	ts, err := c.timestamp()
	if err != nil {
		return nil, err
	}
	opts := []shim.Option{shim.WithLevel(c.Level)}
	if !ts.IsZero() {
		opts = append(opts, shim.WithTimestamp(ts))
	}
	if c.NormalizeModes {
		opts = append(opts, shim.WithNormalizedModes())
	}
	return opts, nil
}
