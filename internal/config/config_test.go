package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
}

func TestLayering_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote-drafter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
store:
  driver: postgres
  database_url: postgres://file/db
ai:
  model: gpt-4.1
  timeout: 15s
`), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.MergeFile(path))
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
		"SERVER_PORT": "9100",
		"AI_TIMEOUT":  "90s",
		"LOG_PRETTY":  "true",
	})))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://file/db", cfg.Store.DatabaseURL)
	assert.Equal(t, "gpt-4.1", cfg.AI.Model)
	assert.Equal(t, 90*time.Second, cfg.AI.Timeout)
	assert.True(t, cfg.Log.Pretty)
	// Untouched keys keep their defaults.
	assert.Equal(t, "data/drafts", cfg.Store.DraftDir)
	assert.Equal(t, "logos", cfg.Blob.Bucket)
}

func TestApplyEnv_RejectsBadValues(t *testing.T) {
	assert.Error(t, DefaultConfig().ApplyEnv(envMap(map[string]string{"AI_TIMEOUT": "soon"})))
	assert.Error(t, DefaultConfig().ApplyEnv(envMap(map[string]string{"LOG_PRETTY": "maybe"})))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"memory driver", func(c *Config) { c.Store.Driver = DriverMemory }, true},
		{"postgres without url", func(c *Config) { c.Store.Driver = DriverPostgres }, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }, false},
		{"empty port", func(c *Config) { c.Server.Port = "" }, false},
		{"zero timeout", func(c *Config) { c.AI.Timeout = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestOrigins(t *testing.T) {
	s := ServerConfig{AllowedOrigins: " http://a.test , ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, s.Origins())
	assert.Nil(t, ServerConfig{}.Origins())
}

func TestMergeFile_Missing(t *testing.T) {
	assert.Error(t, DefaultConfig().MergeFile(filepath.Join(t.TempDir(), "nope.yaml")))
}
