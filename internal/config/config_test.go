package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JOEP_DB_DRIVER", "sqlite3")
	t.Setenv("JOEP_DB_DSN", "prompts.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "sqlite3", cfg.DB.Driver)
	assert.Equal(t, "prompts.db", cfg.DB.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 20, cfg.KeepVersions)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JOEP_DB_DRIVER", "postgres")
	t.Setenv("JOEP_DB_DSN", "postgres://localhost/prompts")
	t.Setenv("JOEP_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("JOEP_LOG_LEVEL", "DEBUG")
	t.Setenv("JOEP_LOG_FORMAT", "json")
	t.Setenv("JOEP_VERSIONS_KEEP", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Zero(t, cfg.KeepVersions)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "missing driver", env: map[string]string{"JOEP_DB_DSN": "x"}, want: "JOEP_DB_DRIVER is required"},
		{name: "bad driver", env: map[string]string{"JOEP_DB_DRIVER": "oracle", "JOEP_DB_DSN": "x"}, want: "JOEP_DB_DRIVER must be"},
		{name: "missing dsn", env: map[string]string{"JOEP_DB_DRIVER": "mysql"}, want: "JOEP_DB_DSN is required"},
		{name: "negative keep", env: map[string]string{"JOEP_DB_DRIVER": "mysql", "JOEP_DB_DSN": "x", "JOEP_VERSIONS_KEEP": "-1"}, want: "JOEP_VERSIONS_KEEP"},
		{name: "bad level", env: map[string]string{"JOEP_DB_DRIVER": "mysql", "JOEP_DB_DSN": "x", "JOEP_LOG_LEVEL": "loud"}, want: "unknown log level"},
		{name: "bad format", env: map[string]string{"JOEP_DB_DRIVER": "mysql", "JOEP_DB_DSN": "x", "JOEP_LOG_FORMAT": "xml"}, want: "JOEP_LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := load(viper.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "db:\n  driver: sqlite3\n  dsn: file.db\nversions:\n  keep: 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "joe-prompts.yaml"), []byte(yaml), 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", cfg.DB.Driver)
	assert.Equal(t, "file.db", cfg.DB.DSN)
	assert.Equal(t, 5, cfg.KeepVersions)
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "joe-prompts.yaml"), []byte("db: [unclosed"), 0o644))
	t.Chdir(dir)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}
