package jobboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/simonjohansson/jobboard/pkg/boardconfig"
	"github.com/stretchr/testify/require"
)

func TestMergeConfigPrecedence(t *testing.T) {
	t.Parallel()

	defaults := Config{
		ServerURL: "http://127.0.0.1:8080",
		Output:    OutputText,
		Backend:   boardconfig.BackendConfig{DataDir: "/tmp/default-board", SQLitePath: "/tmp/default.db", DragPolicy: "hover"},
	}
	fileCfg := Config{
		ServerURL: "http://from-file:8080",
		Output:    OutputText,
		Backend:   boardconfig.BackendConfig{DataDir: "/tmp/file-board", SQLitePath: "/tmp/file.db"},
	}
	envCfg := Config{
		ServerURL: "http://from-env:8080",
		Output:    OutputJSON,
		Backend:   boardconfig.BackendConfig{SQLitePath: "/tmp/env.db", DragPolicy: "drop"},
	}
	flagCfg := Config{
		ServerURL: "http://from-flag:8080",
		Output:    OutputText,
	}

	got := MergeConfig(defaults, fileCfg, envCfg, flagCfg)
	require.Equal(t, "http://from-flag:8080", got.ServerURL)
	require.Equal(t, OutputText, got.Output)
	require.Equal(t, "/tmp/file-board", got.Backend.DataDir)
	require.Equal(t, "/tmp/env.db", got.Backend.SQLitePath)
	require.Equal(t, "drop", got.Backend.DragPolicy)
}

func TestLoadOrInitConfigWritesMissingFields(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	cfgDir := filepath.Join(home, ".config", "jobboard")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(`
server_url: http://seed
cli:
  output: json
`), 0o644))

	got, err := LoadOrInitConfig(home)
	require.NoError(t, err)
	require.Equal(t, "http://seed", got.ServerURL)
	require.Equal(t, OutputJSON, got.Output)
	require.Equal(t, "hover", got.Backend.DragPolicy)
	require.Equal(t, filepath.Join(cfgDir, "config.yaml"), ConfigPath(home))

	roundTrip, err := LoadConfigFile(filepath.Join(cfgDir, "config.yaml"))
	require.NoError(t, err)
	require.Equal(t, got, roundTrip)
}

func TestParseEnvConfig(t *testing.T) {
	t.Parallel()

	got := ParseEnvConfig([]string{
		"JOBBOARD_SERVER_URL=http://env:9999",
		"JOBBOARD_OUTPUT=json",
		"JOBBOARD_DATA_DIR=/tmp/env-board",
		"JOBBOARD_SQLITE_PATH=/tmp/env.db",
		"JOBBOARD_DRAG_POLICY=drop",
		"JOBBOARD_TIMEZONE=Europe/Stockholm",
		"PATH=/usr/bin",
		"malformed",
	})
	require.Equal(t, "http://env:9999", got.ServerURL)
	require.Equal(t, OutputJSON, got.Output)
	require.Equal(t, "/tmp/env-board", got.Backend.DataDir)
	require.Equal(t, "/tmp/env.db", got.Backend.SQLitePath)
	require.Equal(t, "drop", got.Backend.DragPolicy)
	require.Equal(t, "Europe/Stockholm", got.Backend.Timezone)
}

func TestParseEnvConfigIgnoresInvalidOutput(t *testing.T) {
	t.Parallel()

	got := ParseEnvConfig([]string{"JOBBOARD_OUTPUT=xml"})
	require.Equal(t, Output(""), got.Output)
}

func TestFormatErrorJSON(t *testing.T) {
	t.Parallel()

	raw := FormatError(OutputJSON, 400, "bad request")
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	require.Equal(t, float64(400), body["status"])
	require.Equal(t, "bad request", body["error"])
}

func TestSaveConfigFileWritesScopedFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	err := SaveConfigFile(path, Config{
		ServerURL: "http://127.0.0.1:9999",
		Output:    OutputJSON,
		Backend: boardconfig.BackendConfig{
			DataDir:      "/tmp/board",
			SQLitePath:   "/tmp/projection.db",
			ResumeDBPath: "/tmp/resumes.db",
			DragPolicy:   "DROP",
		},
	})
	require.NoError(t, err)

	loaded, err := LoadConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:9999", loaded.ServerURL)
	require.Equal(t, OutputJSON, loaded.Output)
	require.Equal(t, "/tmp/board", loaded.Backend.DataDir)
	require.Equal(t, "/tmp/resumes.db", loaded.Backend.ResumeDBPath)
	require.Equal(t, "drop", loaded.Backend.DragPolicy)
}
