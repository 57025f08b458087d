package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is a thin JSON client for the hosted session-log service. Callers
// treat every method as best-effort; the Tracker owns retries.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL, or nil when baseURL is empty so
// the tracker runs with mirroring disabled.
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// LogStart registers a new session and returns its id. A client-side id is
// generated up front so a response without one still yields a usable handle.
func (c *Client) LogStart(sess Session) (string, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(http.MethodPost, "/sessions", sess, &resp); err != nil {
		return "", err
	}
	if resp.ID != "" {
		return resp.ID, nil
	}
	return sess.ID, nil
}

func (c *Client) UpdateSession(id string, patch Patch) error {
	return c.do(http.MethodPatch, "/sessions/"+id, patch, nil)
}

func (c *Client) RequestInsight(id string) error {
	return c.do(http.MethodPost, "/sessions/"+id+"/insight", nil, nil)
}

func (c *Client) do(method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
