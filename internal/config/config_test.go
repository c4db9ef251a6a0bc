package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("HEARTQUEST_JWT_SECRET", "")
	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, []string{"*"}, cfg.Origins)
	assert.Equal(t, int64(100<<20), cfg.MaxUpload)
	assert.Equal(t, "memory-images", cfg.Supabase.Bucket)
	assert.Equal(t, "gpt-4o-mini", cfg.Narration.Model)
	assert.Equal(t, 8*time.Second, cfg.Narration.Timeout)
	assert.False(t, cfg.NarrationEnabled())
	assert.False(t, cfg.AuthEnabled())
}

func TestLoadEnvAndFlags(t *testing.T) {
	t.Setenv("HEARTQUEST_ADDR", ":9000")
	t.Setenv("HEARTQUEST_DATA_DIR", "/var/lib/heartquest")
	t.Setenv("HEARTQUEST_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("HEARTQUEST_JWT_SECRET", "s3cret")

	cfg, err := Load(":7000", "")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "/var/lib/heartquest", cfg.DataDir)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins)
	assert.True(t, cfg.NarrationEnabled())
	assert.True(t, cfg.AuthEnabled())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad duration", map[string]string{"HEARTQUEST_NARRATION_TIMEOUT": "soon"}, "parse env"},
		{"unknown backend", map[string]string{"HEARTQUEST_BACKEND": "mongo"}, "unknown backend"},
		{"supabase without key", map[string]string{"HEARTQUEST_BACKEND": "supabase", "SUPABASE_URL": "https://x.supabase.co"}, "SUPABASE_SERVICE_ROLE_KEY"},
		{"zero upload limit", map[string]string{"HEARTQUEST_MAX_UPLOAD": "0"}, "upload limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
