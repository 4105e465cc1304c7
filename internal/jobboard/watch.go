package jobboard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func BuildWebsocketURL(serverURL string, column string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid server url")
	}

	wsScheme := "ws"
	if parsed.Scheme == "https" {
		wsScheme = "wss"
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("server url must start with http:// or https://")
	}

	wsURL := &url.URL{
		Scheme: wsScheme,
		Host:   parsed.Host,
		Path:   "/ws",
	}

	if value := strings.TrimSpace(column); value != "" {
		q := wsURL.Query()
		q.Set("column", value)
		wsURL.RawQuery = q.Encode()
	}

	return wsURL.String(), nil
}

func newWatchCommand(cfg *Config, stdout io.Writer) *cobra.Command {
	watchCmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"events", "stream"},
		Short:   "Stream board events over websocket.",
		Long:    "Connect to the backend websocket and print board events until interrupted.",
		Example: strings.TrimSpace(`jobboard watch
jobboard watch --column offer
jobboard events -c interview --output json`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			column, _ := cmd.Flags().GetString("column")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return streamEvents(ctx, cfg, strings.TrimSpace(column), stdout)
		},
	}

	watchCmd.Flags().StringP("column", "c", "", "Only print events touching this column")
	return watchCmd
}

func streamEvents(ctx context.Context, cfg *Config, column string, stdout io.Writer) error {
	wsURL, err := BuildWebsocketURL(cfg.ServerURL, column)
	if err != nil {
		return &cliError{status: http.StatusBadRequest, message: err.Error()}
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return &cliError{status: http.StatusBadGateway, message: err.Error()}
	}
	defer conn.Close()

	// ReadJSON does not observe ctx; closing the socket unblocks it.
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "interrupt"),
			time.Now().Add(500*time.Millisecond),
		)
		_ = conn.Close()
	}()

	for {
		var event map[string]any
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return &cliError{status: http.StatusBadGateway, message: err.Error()}
		}

		line, err := FormatWatchLine(cfg.Output, event)
		if err != nil {
			return &cliError{status: http.StatusInternalServerError, message: err.Error()}
		}
		if _, err := fmt.Fprintln(stdout, line); err != nil {
			return &cliError{status: http.StatusInternalServerError, message: err.Error()}
		}
	}
}
