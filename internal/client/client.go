// Package client is the HTTP transport to the task/auth API. It attaches
// the stored bearer token to every request, decodes error bodies into
// *domain.RemoteError, and signals rejected sessions to a single
// subscriber registered by the composition root.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/msomdec/taskboard/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client talks to the task/auth API.
type Client struct {
	baseURL string
	http    *http.Client
	storage domain.KeyValueStore

	mu                sync.Mutex
	onUnauthenticated func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the API rooted at baseURL (for example
// "http://localhost:8080/api"). The bearer token is read from storage
// on every request.
func New(baseURL string, storage domain.KeyValueStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		storage: storage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnUnauthenticated registers the subscriber invoked when the API rejects
// the session. Registering again replaces the previous subscriber.
func (c *Client) OnUnauthenticated(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthenticated = fn
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := &domain.RemoteError{Status: resp.StatusCode}
		var eb errorBody
		if data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && json.Unmarshal(data, &eb) == nil {
			remoteErr.Message = eb.Error
			if remoteErr.Message == "" {
				remoteErr.Message = eb.Message
			}
		}
		if resp.StatusCode == http.StatusUnauthorized {
			c.rejectSession(ctx)
		}
		return remoteErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.storage == nil {
		return "", nil
	}
	data, err := c.storage.Get(ctx, domain.StorageKeyToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return string(data), nil
}

// rejectSession clears the persisted session and notifies the subscriber.
// It runs once per rejected response.
func (c *Client) rejectSession(ctx context.Context) {
	if c.storage != nil {
		for _, key := range []string{domain.StorageKeyToken, domain.StorageKeyUser} {
			if err := c.storage.Delete(ctx, key); err != nil {
				slog.Error("clear rejected session", "key", key, "error", err)
			}
		}
	}

	c.mu.Lock()
	fn := c.onUnauthenticated
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
