// Copyright © 2018 One Concern

package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/oneconcern/datasets/pkg/dlogger"
	"github.com/oneconcern/datasets/pkg/transport/binary"
	"github.com/oneconcern/datasets/pkg/transport/gateway"
	"github.com/spf13/viper"
)

const (
	envPrefix     = "DATASETS"
	configEnv     = envPrefix + "_CONFIG"
	configName    = "datasets"
	configHomeDir = "$HOME/.datasets"
)

// configDefaults holds every configuration key, with its default value
var configDefaults = map[string]interface{}{
	"repository":     defaultRepository,
	"dataset":        defaultDataset,
	"gateway":        gateway.DefaultURL,
	"http":           false,
	"binary":         binary.DefaultName,
	"binary_timeout": binary.DefaultTimeout,
	"loglevel":       dlogger.LogLevelInfo,
	"concurrency":    1,
	"metrics_addr":   "",
}

// Settings describes the CLI configuration, resolved from flags, environment and configuration file.
type Settings struct {
	Repository    string        `mapstructure:"repository"`
	Dataset       string        `mapstructure:"dataset"`
	Gateway       string        `mapstructure:"gateway"`
	HTTP          bool          `mapstructure:"http"`
	Binary        string        `mapstructure:"binary"`
	BinaryTimeout time.Duration `mapstructure:"binary_timeout"`
	LogLevel      string        `mapstructure:"loglevel"`
	Concurrency   int           `mapstructure:"concurrency"`
	MetricsAddr   string        `mapstructure:"metrics_addr"`
}

func newSettings() (*Settings, error) {
	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, err
	}
	if settings.Repository == "" {
		return nil, errors.New("a repository is required")
	}
	if settings.Concurrency < 1 {
		return nil, fmt.Errorf("concurrency should be at least 1, got %d", settings.Concurrency)
	}
	return &settings, nil
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	for key, value := range configDefaults {
		viper.SetDefault(key, value)
	}

	explicit := os.Getenv(configEnv)
	if explicit != "" {
		viper.SetConfigFile(explicit)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(configHomeDir)
		viper.SetConfigName(configName)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		log.Println("Using config file:", viper.ConfigFileUsed())
	case errors.As(err, &notFound) && explicit == "":
	default:
		wrapFatalln("read config file", err)
	}
}
