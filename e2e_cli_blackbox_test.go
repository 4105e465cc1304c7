package jobboard_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/simonjohansson/jobboard/internal/server"
	"github.com/stretchr/testify/require"
)

func TestJobboardShowsHelpByDefault(t *testing.T) {
	bin := buildJobboardBinary(t)

	result := runJobboard(t, bin)
	require.Equal(t, 0, result.exitCode, result.combined)
	require.Contains(t, result.stdout, "Usage:")
	require.Contains(t, result.stdout, "jobboard [command]")
	for _, name := range []string{"serve", "board", "card", "analytics", "watch", "primer"} {
		require.Contains(t, result.stdout, name)
	}
}

func TestJobboardPrimerCommandSupportsJSON(t *testing.T) {
	bin := buildJobboardBinary(t)

	result := runJobboard(t, bin, "--output", "json", "primer")
	require.Equal(t, 0, result.exitCode, result.combined)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(result.stdout)), &payload), result.stdout)
	require.Equal(t, "jobboard", payload["name"])
	require.Equal(t, "machine", payload["mode"])
}

func TestJobboardCardFlowAgainstInProcessServer(t *testing.T) {
	bin := buildJobboardBinary(t)

	dataDir := t.TempDir()
	app, err := server.New(server.Options{
		DataDir:      dataDir,
		SQLitePath:   filepath.Join(dataDir, "projection.db"),
		ResumeDBPath: filepath.Join(dataDir, "resumes.db"),
		Location:     time.UTC,
		Logger:       newTestLogger(t, "backend"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	httpServer := httptest.NewServer(app.Handler())
	t.Cleanup(httpServer.Close)

	added := runJobboard(t, bin, "--server-url", httpServer.URL, "--output", "json",
		"card", "add", "--column", "applied", "--company", "Acme", "--role", "SRE")
	require.Equal(t, 0, added.exitCode, added.combined)
	var outcome struct {
		Card struct {
			ID string `json:"id"`
		} `json:"card"`
	}
	require.NoError(t, json.Unmarshal([]byte(added.stdout), &outcome))
	require.NotEmpty(t, outcome.Card.ID)

	moved := runJobboard(t, bin, "--server-url", httpServer.URL, "card", "status", "--id", outcome.Card.ID, "--column", "technical")
	require.Equal(t, 0, moved.exitCode, moved.combined)
	require.Contains(t, moved.stdout, "card.moved")

	shown := runJobboard(t, bin, "--server-url", httpServer.URL, "board", "show")
	require.Equal(t, 0, shown.exitCode, shown.combined)
	require.Contains(t, shown.stdout, "Technical (1)")
	require.Contains(t, shown.stdout, "Acme / SRE")

	bad := runJobboard(t, bin, "--server-url", httpServer.URL, "--output", "json", "analytics", "velocity", "--window", "fortnight")
	require.Equal(t, 1, bad.exitCode)
	require.Contains(t, bad.stderr, `"status":400`)
}

func TestJobboardWatchExitsOnInterrupt(t *testing.T) {
	bin := buildJobboardBinary(t)

	dataDir := t.TempDir()
	app, err := server.New(server.Options{
		DataDir:      dataDir,
		SQLitePath:   filepath.Join(dataDir, "projection.db"),
		ResumeDBPath: filepath.Join(dataDir, "resumes.db"),
		Logger:       newTestLogger(t, "backend"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	httpServer := httptest.NewServer(app.Handler())
	t.Cleanup(httpServer.Close)

	cmd := exec.Command(bin, "--server-url", httpServer.URL, "--output", "json", "watch")
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir())
	stdout := &syncBuffer{}
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Start())

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
	}()

	connected := func() bool { return strings.Contains(stdout.String(), "resync.required") }
	if !assertEventually(connected, 5*time.Second) {
		_ = cmd.Process.Kill()
		<-waitCh
		require.Fail(t, "watch did not connect", stderr.String())
	}

	require.NoError(t, cmd.Process.Signal(os.Interrupt))

	select {
	case err := <-waitCh:
		require.NoError(t, err, stdout.String()+stderr.String())
	case <-time.After(2 * time.Second):
		_ = cmd.Process.Kill()
		<-waitCh
		require.Fail(t, "watch did not exit after interrupt")
	}
}

func assertEventually(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}
