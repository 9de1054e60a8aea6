package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowConfiguration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metastore.yml"),
		[]byte("database_url: postgres://meta:s3cret@db/meta\n"), 0o600))
	t.Setenv("METASTORE_CONFIG_PATH", dir)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("METASTORE_DATABASE_URL", "")

	var out bytes.Buffer
	require.NoError(t, showConfiguration(&out, "text"))
	assert.Contains(t, out.String(), "postgres://meta:***@db/meta")
	assert.NotContains(t, out.String(), "s3cret")

	out.Reset()
	require.NoError(t, showConfiguration(&out, "json"))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, filepath.Join(dir, "metastore.yml"), doc["config_file"])
	assert.NotContains(t, out.String(), "s3cret")
}
