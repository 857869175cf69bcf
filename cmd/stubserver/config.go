package main

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type rateLimits struct {
	Enabled bool    `mapstructure:"rate_limits_enabled"`
	Rate    float64 `mapstructure:"rate_limits_average"`
	Burst   int     `mapstructure:"rate_limits_burst"`
}

type metricsConfig struct {
	Enabled bool `mapstructure:"metrics_enabled"`
	Port    int  `mapstructure:"metrics_port"`
}

type tokenConfig struct {
	Secret            string `mapstructure:"token_secret"`
	AccessTTLSeconds  int    `mapstructure:"token_access_ttl_seconds"`
	RefreshTTLSeconds int    `mapstructure:"token_refresh_ttl_seconds"`
}

type stubServerConfig struct {
	Host       string        `mapstructure:"host"`
	Port       int           `mapstructure:"port"`
	Debug      bool          `mapstructure:"debug"`
	SeedFile   string        `mapstructure:"seed_file"`
	Tokens     tokenConfig   `mapstructure:",squash"`
	RateLimits rateLimits    `mapstructure:",squash"`
	Metrics    metricsConfig `mapstructure:",squash"`
}

// getConfig reads the stub server configuration from STUBSERVER_* environment
// variables, falling back to defaults suitable for local development.
func getConfig() (stubServerConfig, error) {
	var config stubServerConfig
	prefix := "stubserver"
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8000)
	v.SetDefault("debug", false)
	v.SetDefault("seed_file", "")
	v.SetDefault("token_secret", "stubserver-dev-secret")
	v.SetDefault("token_access_ttl_seconds", 300)
	v.SetDefault("token_refresh_ttl_seconds", 86400)
	v.SetDefault("rate_limits_enabled", false)
	v.SetDefault("rate_limits_average", 5)
	v.SetDefault("rate_limits_burst", 10)
	v.SetDefault("metrics_enabled", false)
	v.SetDefault("metrics_port", 9100)
	envKeysMap := map[string]interface{}{}
	if err := mapstructure.Decode(config, &envKeysMap); err != nil {
		return stubServerConfig{}, err
	}
	for k := range envKeysMap {
		if bindErr := v.BindEnv(k); bindErr != nil {
			return stubServerConfig{}, bindErr
		}
	}
	if err := v.Unmarshal(&config); err != nil {
		return stubServerConfig{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if config.Tokens.Secret == "" {
		return stubServerConfig{}, fmt.Errorf("the token secret cannot be empty")
	}
	return config, nil
}
