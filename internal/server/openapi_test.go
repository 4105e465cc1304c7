package server_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAPIYamlEndpoint(t *testing.T) {
	t.Parallel()

	_, _, httpServer := newTestServer(t)

	resp := doJSON(t, httpServer.URL+"/openapi.yaml", http.MethodGet, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, strings.Contains(resp.Header.Get("Content-Type"), "yaml"))

	raw := string(readBody(t, resp.Body))
	require.Contains(t, raw, "openapi:")
	for _, path := range []string{"/board:", "/cards/{card}:", "/drag/over:", "/smart-drop/confirm:", "/analytics/velocity:", "/ws:"} {
		require.Contains(t, raw, path)
	}
}
