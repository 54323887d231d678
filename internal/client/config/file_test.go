package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_parseFile_Formats(t *testing.T) {
	jsonPath := writeTempFile(t, "cfg.json", `{
		"server_url": "https://books.example:9000",
		"spinner_interval": "50ms",
		"request_timeout": 2000000000
	}`)
	yamlPath := writeTempFile(t, "cfg.yml", "server_url: https://books.example:9000\nspinner_interval: 50ms\nrequest_timeout: 2s\n")

	for _, path := range []string{jsonPath, yamlPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			cfg := &Config{}
			cfg.LoadDefaults()
			require.NoError(t, parseFile(cfg, []string{"-config", path}))

			assert.Equal(t, "https://books.example:9000", cfg.ServerURL)
			assert.Equal(t, 50*time.Millisecond, cfg.SpinnerInterval)
			assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
			assert.Equal(t, 20, cfg.PageSize, "absent keys keep earlier values")
		})
	}
}

func Test_parseFile_NoFlagNoChanges(t *testing.T) {
	cfg := &Config{ServerURL: "http://defaults:1234", PageSize: 7}
	require.NoError(t, parseFile(cfg, []string{"-a", "http://x"}))

	assert.Equal(t, "http://defaults:1234", cfg.ServerURL)
	assert.Equal(t, 7, cfg.PageSize)
}

func Test_parseFile_Errors(t *testing.T) {
	bad := writeTempFile(t, "bad.json", `{ this is not valid json`)

	require.Error(t, parseFile(&Config{}, []string{"-c", bad}))
	require.Error(t, parseFile(&Config{}, []string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}))
}
