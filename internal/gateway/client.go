// Package gateway is the HTTP client for the manufacturing REST API. It
// attaches the bearer token from the caller's session and transparently
// refreshes it once when the API answers 401.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Resource collection paths relative to the API base.
const (
	Clientes       = "clientes"
	Productos      = "productos"
	MateriasPrimas = "materias-primas"
	Pedidos        = "pedidos"
	LineasPedido   = "lineas-pedido"

	tokenPath   = "token/"
	refreshPath = "token/refresh/"
)

// DefaultBaseURL points at a local development backend.
const DefaultBaseURL = "http://127.0.0.1:8000/api"

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *Metrics
}

// Client is the process-wide API client. It holds no per-user state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *Metrics
}

// NewClient constructs a Client.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: base, httpClient: httpClient, logger: logger, metrics: opts.Metrics}
}

// Login exchanges credentials for an access/refresh token pair.
func (c *Client) Login(ctx context.Context, username, password string) (Tokens, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return Tokens{}, err
	}
	status, data, err := c.send(ctx, http.MethodPost, tokenPath, nil, body, "")
	if err != nil {
		return Tokens{}, err
	}
	if status < 200 || status >= 300 {
		return Tokens{}, &HTTPError{Method: http.MethodPost, Path: tokenPath, Status: status, Body: string(data)}
	}
	var tokens Tokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return Tokens{}, fmt.Errorf("gateway: decode token response: %w", err)
	}
	if tokens.Access == "" {
		return Tokens{}, fmt.Errorf("gateway: token response without access token")
	}
	return tokens, nil
}

// WithSession binds the client to the caller's token store.
func (c *Client) WithSession(store TokenStore) *Gateway {
	return &Gateway{client: c, store: store}
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body []byte, token string) (int, []byte, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(path, "error", time.Since(start))
		c.logger.Warn("api request failed", slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		return 0, nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	c.metrics.observe(path, strconv.Itoa(resp.StatusCode), time.Since(start))
	c.logger.Debug("api request", slog.String("method", method), slog.String("path", path), slog.Int("status", resp.StatusCode))
	return resp.StatusCode, data, nil
}

// Gateway is a request-scoped view of the Client bound to one session. It is
// safe for concurrent use by the goroutines serving that request.
type Gateway struct {
	client  *Client
	store   TokenStore
	mu      sync.Mutex
	refresh singleflight.Group
}

// List decodes the collection at resource into out.
func (g *Gateway) List(ctx context.Context, resource string, out any) error {
	return g.do(ctx, http.MethodGet, collectionPath(resource), nil, nil, listTarget{out})
}

// Get decodes a single entity.
func (g *Gateway) Get(ctx context.Context, resource string, id int64, out any) error {
	return g.do(ctx, http.MethodGet, itemPath(resource, id), nil, nil, out)
}

// Create posts payload to the collection.
func (g *Gateway) Create(ctx context.Context, resource string, payload, out any) error {
	return g.do(ctx, http.MethodPost, collectionPath(resource), nil, payload, out)
}

// Update replaces the entity with payload.
func (g *Gateway) Update(ctx context.Context, resource string, id int64, payload, out any) error {
	return g.do(ctx, http.MethodPut, itemPath(resource, id), nil, payload, out)
}

// Delete removes the entity.
func (g *Gateway) Delete(ctx context.Context, resource string, id int64) error {
	return g.do(ctx, http.MethodDelete, itemPath(resource, id), nil, nil, nil)
}

// Query issues a GET against a custom collection action such as
// "productos/alertas/" and decodes a list response into out.
func (g *Gateway) Query(ctx context.Context, path string, params url.Values, out any) error {
	return g.do(ctx, http.MethodGet, path, params, nil, listTarget{out})
}

func (g *Gateway) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("gateway: encode %s %s: %w", method, path, err)
		}
		body = encoded
	}

	token := g.accessToken()
	status, data, err := g.client.send(ctx, method, path, query, body, token)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && path != refreshPath {
		fresh, err := g.refreshAccess(ctx, token)
		if err != nil {
			return err
		}
		// Single retry; a second 401 is returned as-is.
		status, data, err = g.client.send(ctx, method, path, query, body, fresh)
		if err != nil {
			return err
		}
	}
	if status < 200 || status >= 300 {
		return &HTTPError{Method: method, Path: path, Status: status, Body: string(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := decode(data, out); err != nil {
		return fmt.Errorf("gateway: decode %s %s: %w", method, path, err)
	}
	return nil
}

// refreshAccess exchanges the refresh token for a new access token. Concurrent
// callers that saw the same stale token share one refresh call.
func (g *Gateway) refreshAccess(ctx context.Context, stale string) (string, error) {
	if g.store == nil {
		return "", ErrSessionExpired
	}
	v, err, _ := g.refresh.Do("refresh", func() (any, error) {
		g.mu.Lock()
		current := g.store.AccessToken()
		refresh := g.store.RefreshToken()
		g.mu.Unlock()

		if current != "" && current != stale {
			return current, nil
		}
		if refresh == "" {
			g.expire("missing refresh token")
			return "", ErrSessionExpired
		}

		body, err := json.Marshal(map[string]string{"refresh": refresh})
		if err != nil {
			return "", err
		}
		status, data, err := g.client.send(ctx, http.MethodPost, refreshPath, nil, body, "")
		if err != nil {
			g.expire("refresh request failed")
			return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		if status < 200 || status >= 300 {
			g.expire("refresh rejected")
			return "", fmt.Errorf("%w: refresh returned %d", ErrSessionExpired, status)
		}
		var tokens Tokens
		if err := json.Unmarshal(data, &tokens); err != nil || tokens.Access == "" {
			g.expire("refresh response without access token")
			return "", ErrSessionExpired
		}

		g.mu.Lock()
		g.store.SetAccessToken(tokens.Access)
		g.mu.Unlock()
		g.client.metrics.refreshed("success")
		return tokens.Access, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (g *Gateway) accessToken() string {
	if g.store == nil {
		return ""
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.AccessToken()
}

func (g *Gateway) expire(reason string) {
	g.client.metrics.refreshed("failure")
	g.client.logger.Info("api session expired", slog.String("reason", reason))
	g.mu.Lock()
	defer g.mu.Unlock()
	g.store.Clear()
}

func collectionPath(resource string) string {
	return strings.Trim(resource, "/") + "/"
}

func itemPath(resource string, id int64) string {
	return strings.Trim(resource, "/") + "/" + strconv.FormatInt(id, 10) + "/"
}

// listTarget marks list responses, which may come bare or wrapped in a
// paginated envelope.
type listTarget struct {
	out any
}

func decode(data []byte, out any) error {
	target, ok := out.(listTarget)
	if !ok {
		return json.Unmarshal(data, out)
	}
	if target.out == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return err
		}
		if len(envelope.Results) > 0 {
			return json.Unmarshal(envelope.Results, target.out)
		}
	}
	return json.Unmarshal(trimmed, target.out)
}
