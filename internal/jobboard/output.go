package jobboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type Output string

const (
	OutputText Output = "text"
	OutputJSON Output = "json"
)

type cliError struct {
	status  int
	message string
	rawJSON []byte
}

func (e *cliError) Error() string {
	return e.message
}

func isValidOutput(v string) bool {
	return v == string(OutputText) || v == string(OutputJSON)
}

func FormatError(output Output, status int, message string) string {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = http.StatusText(status)
	}

	if output == OutputJSON {
		raw, _ := json.Marshal(map[string]any{
			"status": status,
			"error":  msg,
		})
		return string(raw)
	}

	return fmt.Sprintf("error (%d): %s", status, msg)
}

func handleResponse(output Output, stdout io.Writer, resp *http.Response, reqErr error) error {
	if reqErr != nil {
		return &cliError{status: http.StatusBadGateway, message: reqErr.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &cliError{status: http.StatusInternalServerError, message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(extractErrorMessage(raw))
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if output == OutputJSON && json.Valid(raw) {
			return &cliError{status: resp.StatusCode, message: msg, rawJSON: compactJSON(raw)}
		}
		return &cliError{status: resp.StatusCode, message: msg}
	}

	trimmed := strings.TrimSpace(string(raw))
	if output == OutputJSON {
		switch {
		case trimmed == "":
			_, _ = fmt.Fprintln(stdout, "{}")
		case json.Valid(raw):
			_, _ = fmt.Fprintln(stdout, string(compactJSON(raw)))
		default:
			encoded, _ := json.Marshal(map[string]any{"result": trimmed})
			_, _ = fmt.Fprintln(stdout, string(encoded))
		}
		return nil
	}

	if trimmed == "" {
		_, _ = fmt.Fprintln(stdout, "ok")
		return nil
	}
	if text, ok := summarizeText(raw); ok {
		_, _ = fmt.Fprintln(stdout, text)
		return nil
	}
	_, _ = fmt.Fprintln(stdout, trimmed)
	return nil
}

// summarizeText renders the board and outcome payloads as readable lines. Other
// payloads are printed verbatim.
func summarizeText(raw []byte) (string, bool) {
	var payload struct {
		Columns []struct {
			ID    string           `json:"id"`
			Title string           `json:"title"`
			Items []map[string]any `json:"items"`
		} `json:"columns"`
		Card *struct {
			ID      string `json:"id"`
			Company string `json:"company"`
			Role    string `json:"role"`
		} `json:"card"`
		Events []struct {
			Type string `json:"type"`
		} `json:"events"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", false
	}

	var lines []string
	switch {
	case len(payload.Columns) > 0:
		for _, col := range payload.Columns {
			lines = append(lines, fmt.Sprintf("%s (%d)", col.Title, len(col.Items)))
			for _, item := range col.Items {
				line := fmt.Sprintf("  %v  %v", item["id"], item["company"])
				if role, _ := item["role"].(string); role != "" {
					line += " / " + role
				}
				lines = append(lines, line)
			}
		}
	case payload.Card != nil:
		line := fmt.Sprintf("%s  %s", payload.Card.ID, payload.Card.Company)
		if payload.Card.Role != "" {
			line += " / " + payload.Card.Role
		}
		lines = append(lines, line)
		for _, event := range payload.Events {
			lines = append(lines, "  "+event.Type)
		}
	default:
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

func extractErrorMessage(raw []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}

	for _, key := range []string{"detail", "title", "error"} {
		if value, ok := obj[key].(string); ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func compactJSON(raw []byte) []byte {
	var out bytes.Buffer
	if err := json.Compact(&out, raw); err != nil {
		return raw
	}
	return out.Bytes()
}

func asCLIError(err error, target **cliError) bool {
	return errors.As(err, target)
}

func FormatWatchLine(output Output, event map[string]any) (string, error) {
	if output == OutputJSON {
		raw, err := json.Marshal(event)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	parts := make([]string, 0, 5)
	for _, key := range []string{"type", "card_id", "from_column_id", "column_id", "resume_id", "message"} {
		value, ok := event[key]
		if !ok || fmt.Sprintf("%v", value) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", strings.TrimSuffix(key, "_id"), value))
	}
	if len(parts) == 0 {
		return "(event)", nil
	}

	return strings.Join(parts, " "), nil
}
