// Package config loads tutor settings from defaults, an optional
// bridgetutor.yaml, and BRIDGETUTOR_-prefixed environment variables.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// DefaultTier is the AI tier the shell starts with.
	DefaultTier string `mapstructure:"default-tier"`
	// Search depths are counted in individual card plays, not tricks.
	IntermediateDepth int `mapstructure:"intermediate-depth"`
	AdvancedDepth     int `mapstructure:"advanced-depth"`
	// SearchBudget bounds one minimax move selection. On expiry the best
	// move found so far is played.
	SearchBudget time.Duration `mapstructure:"search-budget"`
	// TTMemFraction is the fraction of system memory the transposition
	// table may claim.
	TTMemFraction float64 `mapstructure:"tt-mem-fraction"`

	OracleURL string `mapstructure:"oracle-url"`
	// OracleDenylist names GOOS values on which the oracle tier is never
	// enabled, regardless of URL.
	OracleDenylist []string `mapstructure:"oracle-denylist"`

	DealStorePath string `mapstructure:"deal-store-path"`
	LogLevel      string `mapstructure:"log-level"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("default-tier", "intermediate")
	v.SetDefault("intermediate-depth", 8)
	v.SetDefault("advanced-depth", 16)
	v.SetDefault("search-budget", 5*time.Second)
	v.SetDefault("tt-mem-fraction", 0.1)
	v.SetDefault("oracle-url", "")
	v.SetDefault("oracle-denylist", []string{"windows"})
	v.SetDefault("deal-store-path", "bridgetutor.db")
	v.SetDefault("log-level", "info")

	v.SetConfigName("bridgetutor")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("bridgetutor")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in settings without touching files or env.
func Default() *Config {
	return &Config{
		DefaultTier:       "intermediate",
		IntermediateDepth: 8,
		AdvancedDepth:     16,
		SearchBudget:      5 * time.Second,
		TTMemFraction:     0.1,
		OracleDenylist:    []string{"windows"},
		DealStorePath:     "bridgetutor.db",
		LogLevel:          "info",
	}
}
