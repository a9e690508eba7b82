package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	DBPath        string   `mapstructure:"db_path"`
	HashWorkers   int      `mapstructure:"hash_workers"`
	CopyWorkers   int      `mapstructure:"copy_workers"`
	IgnoreList    []string `mapstructure:"ignore_list"`
	DebounceMS    int      `mapstructure:"debounce_ms"`
	StatusPort    int      `mapstructure:"status_port"`
	ProgressEvery int      `mapstructure:"progress_every"`
}

var Default = Config{
	DBPath:        "photosync.db",
	HashWorkers:   4,
	CopyWorkers:   2,
	IgnoreList:    []string{".DS_Store", "Thumbs.db", "*.tmp", "*.swp"},
	DebounceMS:    2000,
	StatusPort:    9820,
	ProgressEvery: 100,
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home dir: %w", err)
	}

	configDir := filepath.Join(home, ".photosync")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	viper.SetDefault("db_path", filepath.Join(configDir, Default.DBPath))
	viper.SetDefault("hash_workers", Default.HashWorkers)
	viper.SetDefault("copy_workers", Default.CopyWorkers)
	viper.SetDefault("ignore_list", Default.IgnoreList)
	viper.SetDefault("debounce_ms", Default.DebounceMS)
	viper.SetDefault("status_port", Default.StatusPort)
	viper.SetDefault("progress_every", Default.ProgressEvery)

	viper.SetEnvPrefix("PHOTOSYNC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if ok := errors.As(err, &notFoundErr); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
