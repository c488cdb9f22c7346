package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".strtab"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for strtab settings.
const envPrefix = "STRTAB"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("table.initial_size", DefaultInitialSize)
	viperCfg.SetDefault("table.min_size", DefaultMinSize)
	viperCfg.SetDefault("table.max_size", DefaultMaxSize)
	viperCfg.SetDefault("table.check_interval", DefaultCheckInterval)
	viperCfg.SetDefault("table.grow_load", DefaultGrowLoad)
	viperCfg.SetDefault("table.shrink_load", DefaultShrinkLoad)

	viperCfg.SetDefault("strings.max_byte_length", DefaultMaxByteLength)

	viperCfg.SetDefault("heap.memory_limit", DefaultMemoryLimit)
	viperCfg.SetDefault("heap.gc_interval", DefaultGCInterval)

	viperCfg.SetDefault("hash.algorithm", DefaultHashAlgorithm)
	viperCfg.SetDefault("hash.seed", DefaultHashSeed)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultOTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultOTLPInsecure)
}
