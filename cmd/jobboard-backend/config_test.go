package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsFromSharedConfig(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	configPath := filepath.Join(home, ".config", "jobboard", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))
	require.NoError(t, os.WriteFile(configPath, []byte(`
server_url: http://127.0.0.1:9010
backend:
  sqlite_path: /tmp/from-config.db
  data_dir: /tmp/from-config-board
  drag_policy: Drop
cli:
  output: text
`), 0o644))

	defaults, err := loadRuntimeDefaults(home, func(string) string { return "" })
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9010", defaults.Addr)
	require.Equal(t, "/tmp/from-config.db", defaults.Backend.SQLitePath)
	require.Equal(t, "/tmp/from-config-board", defaults.Backend.DataDir)
	require.Equal(t, "drop", defaults.Backend.DragPolicy)
	require.Equal(t, filepath.Join(home, ".local", "state", "jobboard", "resumes.db"), defaults.Backend.ResumeDBPath)
}

func TestLoadDefaultsAppliesEnvironment(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"JOBBOARD_SERVER_URL":  "http://127.0.0.1:9555",
		"JOBBOARD_SQLITE_PATH": "/tmp/env.db",
		"JOBBOARD_TIMEZONE":    "UTC",
	}
	defaults, err := loadRuntimeDefaults(t.TempDir(), func(key string) string { return env[key] })
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9555", defaults.Addr)
	require.Equal(t, "/tmp/env.db", defaults.Backend.SQLitePath)
	require.Equal(t, "UTC", defaults.Backend.Timezone)
}

func TestAddrFromServerURLFallsBack(t *testing.T) {
	t.Parallel()

	require.Equal(t, defaultListenAddr, addrFromServerURL("http://example.com"))
	require.Equal(t, defaultListenAddr, addrFromServerURL("::bad"))
}
