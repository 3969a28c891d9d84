package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/joestump/joe-prompts/internal/logging"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	Log struct {
		Level  string
		Format string
	}
	// KeepVersions is the number of historical versions retained per prompt.
	// Zero keeps all of them.
	KeepVersions int
}

// Load reads config from environment (JOEP_ prefix) and optional joe-prompts.yaml.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("JOEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("joe-prompts")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// The config file is optional; a malformed one is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("versions.keep", 20)

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Format = strings.ToLower(v.GetString("log.format"))
	cfg.KeepVersions = v.GetInt("versions.keep")

	if cfg.DB.Driver == "" {
		return nil, fmt.Errorf("JOEP_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if !slices.Contains([]string{"sqlite3", "mysql", "postgres"}, cfg.DB.Driver) {
		return nil, fmt.Errorf("JOEP_DB_DRIVER must be sqlite3, mysql, or postgres, got %q", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("JOEP_DB_DSN is required")
	}
	if cfg.KeepVersions < 0 {
		return nil, fmt.Errorf("JOEP_VERSIONS_KEEP must not be negative, got %d", cfg.KeepVersions)
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return nil, fmt.Errorf("JOEP_LOG_FORMAT must be text or json, got %q", cfg.Log.Format)
	}

	return cfg, nil
}
