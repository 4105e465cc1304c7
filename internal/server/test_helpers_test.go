package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/simonjohansson/jobboard/internal/server"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (dataDir string, sqlitePath string, httpServer *httptest.Server) {
	t.Helper()
	dataDir = t.TempDir()
	sqlitePath = filepath.Join(dataDir, "projection.db")
	app, err := server.New(testOptions(dataDir, sqlitePath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	httpServer = httptest.NewServer(app.Handler())
	t.Cleanup(httpServer.Close)
	return dataDir, sqlitePath, httpServer
}

const (
	waitFor = 2 * time.Second
	tick    = 20 * time.Millisecond
)

func testOptions(dataDir, sqlitePath string) server.Options {
	return server.Options{
		DataDir:      dataDir,
		SQLitePath:   sqlitePath,
		ResumeDBPath: filepath.Join(dataDir, "resumes.db"),
		Location:     time.UTC,
	}
}

func newHTTPTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	httpServer := httptest.NewServer(handler)
	t.Cleanup(httpServer.Close)
	return httpServer
}

func doJSON(t *testing.T, url, method string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func doRaw(t *testing.T, url, method, payload, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBufferString(payload))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeMap(t *testing.T, reader io.Reader) map[string]any {
	t.Helper()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	var out map[string]any
	err = json.Unmarshal(data, &out)
	require.NoError(t, err)
	return out
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func readBody(t *testing.T, reader io.Reader) []byte {
	t.Helper()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	return data
}

// quickAdd creates a card through the API and returns its id.
func quickAdd(t *testing.T, baseURL, column, company string) string {
	t.Helper()
	resp := doJSON(t, baseURL+"/columns/"+column+"/cards", http.MethodPost, map[string]string{"company": company})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeMap(t, resp.Body)
	card, ok := body["card"].(map[string]any)
	require.True(t, ok)
	return card["id"].(string)
}

// columnOf finds the column holding cardID in a decoded board payload.
func columnOf(t *testing.T, board any, cardID string) string {
	t.Helper()
	columns, ok := board.([]any)
	require.True(t, ok)
	for _, raw := range columns {
		col := raw.(map[string]any)
		for _, item := range col["items"].([]any) {
			if item.(map[string]any)["id"] == cardID {
				return col["id"].(string)
			}
		}
	}
	return ""
}
