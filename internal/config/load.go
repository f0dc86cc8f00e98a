package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the CIRC_
// prefix with underscores for nesting (CIRC_SERVER_PORT, CIRC_AUTH_JWT_SECRET)
// and take precedence over file values. Returns a populated Config or an
// error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("CIRC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file is fine, env vars and defaults carry the day
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("storage.dir", "data")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("smtp.port", 587)

	// viper only honors AutomaticEnv for keys it already knows about, so
	// bind the secret-bearing keys explicitly
	for _, key := range []string{
		"server.port", "server.log_level", "storage.dir",
		"auth.jwt_secret", "auth.token_lifetime_minutes",
		"auth.refresh_token_lifetime_minutes", "auth.bcrypt_cost",
		"smtp.host", "smtp.port", "smtp.username", "smtp.password", "smtp.from",
	} {
		_ = v.BindEnv(key)
	}
}
