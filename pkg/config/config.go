// Package config loads the dispatch-trace settings.
package config

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "DISPATCH"
	FileName  = ".dispatch"
)

type Config struct {
	LogLevel     string `mapstructure:"log_level"`
	ScenarioFile string `mapstructure:"scenario_file"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("scenario_file", "")
}

// Prepare wires v to the environment and to cfgFile, or to ~/.dispatch.* when
// cfgFile is empty.
func Prepare(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		return nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return errors.Wrapf(err, "locating home directory")
	}

	v.AddConfigPath(home)
	v.SetConfigName(FileName)

	return nil
}

// Load reads the config file and decodes v. A missing file in the home
// directory is not an error, an explicit config file must exist.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrapf(err, "reading config")
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding config")
	}

	if hclog.LevelFromString(cfg.LogLevel) == hclog.NoLevel {
		return nil, errors.Errorf("unknown log level: %s", cfg.LogLevel)
	}

	return &cfg, nil
}

// Logger returns a logger at the configured level.
func (c *Config) Logger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "dispatch",
		Level:  hclog.LevelFromString(c.LogLevel),
		Output: os.Stderr,
	})
}
