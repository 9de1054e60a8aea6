package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"DATABASE_URL", "METASTORE_DATABASE_URL", "PORT", "METASTORE_PORT",
		"BIND_ADDRESS", "METASTORE_BIND_ADDRESS", "METASTORE_LOG_LEVEL",
		"METASTORE_LOG_FORMAT", "METASTORE_DEFAULT_PROJECT", "METASTORE_KINDS",
		"METASTORE_TRUSTED_PROXIES", "METASTORE_AUDIT_ENABLED",
		"METASTORE_AUDIT_DATABASE_URL", "METASTORE_HTTP_READ_TIMEOUT",
		"METASTORE_HTTP_WRITE_TIMEOUT",
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
	t.Setenv("METASTORE_CONFIG_PATH", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("METASTORE_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddress())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "default", cfg.DefaultProject)
	assert.True(t, cfg.AuditEnabled)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout())
	assert.Equal(t, SourceDefault, cfg.Source("port"))
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	writeConfig(t, `
port: 9090
log_level: debug
audit_enabled: false
kinds: [artifact, function]
trusted_proxies: ["10.0.0.0/8"]
`)
	t.Setenv("PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://meta:secret@db:5432/meta")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, SourceEnvironment, cfg.Source("port"))
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, SourceFile, cfg.Source("log_level"))
	assert.False(t, cfg.AuditEnabled)
	assert.Equal(t, SourceFile, cfg.Source("audit_enabled"))
	assert.Equal(t, []string{"artifact", "function"}, cfg.Kinds)
	assert.True(t, cfg.IsTrustedProxy("10.1.2.3"))
	assert.False(t, cfg.IsTrustedProxy("192.168.1.1"))
	assert.Equal(t, SourceEnvironment, cfg.Source("database_url"))
}

func TestMetastoreEnvWinsOverGeneric(t *testing.T) {
	clearEnv(t)
	t.Setenv("METASTORE_CONFIG_PATH", t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://generic/db")
	t.Setenv("METASTORE_DATABASE_URL", "sqlite:///tmp/meta.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite:///tmp/meta.db", cfg.DatabaseURL)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	writeConfig(t, "port: [not a number")
	_, err := Load()
	assert.Error(t, err)

	writeConfig(t, "port: 1")
	t.Setenv("PORT", "eighty")
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MetastoreConfig)
		kinds  []string
	}{
		{"log level", func(c *MetastoreConfig) { c.LogLevel = "chatty" }, nil},
		{"log format", func(c *MetastoreConfig) { c.LogFormat = "xml" }, nil},
		{"port", func(c *MetastoreConfig) { c.Port = 70000 }, nil},
		{"proxy", func(c *MetastoreConfig) { c.TrustedProxies = []string{"not-an-ip"} }, nil},
		{"project", func(c *MetastoreConfig) { c.DefaultProject = "" }, nil},
		{"kind", func(c *MetastoreConfig) { c.Kinds = []string{"model"} }, []string{"artifact"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefault()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate(tt.kinds...))
		})
	}
}

func TestAttributesRedactPasswords(t *testing.T) {
	cfg := newDefault()
	cfg.DatabaseURL = "postgres://meta:secret@db:5432/meta"

	for _, attr := range cfg.Attributes() {
		assert.NotContains(t, attr.Value, "secret", attr.Name)
	}
	assert.Contains(t, cfg.FormatText(), "postgres://meta:***@db:5432/meta")

	out, err := cfg.FormatJSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "database_url"`)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "postgres://u:***@h/db", RedactURL("postgres://u:p@h/db"))
	assert.Equal(t, "postgres://u@h/db", RedactURL("postgres://u@h/db"))
	assert.Equal(t, "sqlite:///tmp/x.db", RedactURL("sqlite:///tmp/x.db"))
	assert.Equal(t, "", RedactURL(""))
}

func TestWatchReloads(t *testing.T) {
	clearEnv(t)
	dir := writeConfig(t, "log_level: info\n")
	path := filepath.Join(dir, ConfigFileName)

	debounce := watchDebounce
	watchDebounce = 20 * time.Millisecond
	t.Cleanup(func() { watchDebounce = debounce })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu      sync.Mutex
		applied []string
	)
	lastApplied := func() string {
		mu.Lock()
		defer mu.Unlock()
		if len(applied) == 0 {
			return ""
		}
		return applied[len(applied)-1]
	}

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *MetastoreConfig) {
			mu.Lock()
			applied = append(applied, cfg.LogLevel)
			mu.Unlock()
		})
	}()

	// The watcher registers asynchronously; keep rewriting until it fires.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("log_level: debug\n"), 0o600)
		time.Sleep(4 * watchDebounce)
		return lastApplied() == "debug"
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "debug", Get().LogLevel)

	// A truncate followed by the real content is applied once, never as
	// the empty file's defaults
	mu.Lock()
	applied = nil
	mu.Unlock()
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o600))

	require.Eventually(t, func() bool {
		return lastApplied() == "warn"
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "warn", Get().LogLevel)

	mu.Lock()
	assert.NotContains(t, applied, "info")
	mu.Unlock()

	cancel()
	assert.NoError(t, <-done)
}
