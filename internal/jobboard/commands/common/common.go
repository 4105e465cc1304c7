package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Runtime interface {
	ServerURL() string
	Output() string
}

type HandleResponseFunc func(output string, stdout io.Writer, resp *http.Response, reqErr error) error

type WrapErrorFunc func(status int, message string) error

// Client issues JSON requests against the board API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

func NewClient(runtime Runtime) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(runtime.ServerURL()))
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("server url must start with http:// or https://")
	}
	if parsed.Host == "" {
		return nil, errors.New("invalid server url")
	}
	return &Client{baseURL: parsed, http: &http.Client{Timeout: 30 * time.Second}}, nil
}

// Do sends body as JSON when non-nil. A []byte body is sent verbatim.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, ok := body.([]byte)
		if !ok {
			var err error
			raw, err = json.Marshal(body)
			if err != nil {
				return nil, err
			}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// PathEscape keeps user-supplied ids from breaking out of their path segment.
func PathEscape(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, part := range parts {
		escaped[i] = url.PathEscape(strings.TrimSpace(part))
	}
	return "/" + strings.Join(escaped, "/")
}
