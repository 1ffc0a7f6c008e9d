// Package report converts rendered HTML documents to PDF through Gotenberg.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// ErrNotConfigured is returned when no Gotenberg endpoint is set.
var ErrNotConfigured = errors.New("report: gotenberg endpoint required")

// Gotenberg posts HTML to the chromium route of a Gotenberg instance.
type Gotenberg struct {
	Endpoint string
	Client   *http.Client
}

// NewGotenberg builds a converter for endpoint. An empty endpoint yields nil.
func NewGotenberg(endpoint string, client *http.Client) *Gotenberg {
	endpoint = strings.TrimRight(endpoint, "/")
	if endpoint == "" {
		return nil
	}
	return &Gotenberg{Endpoint: endpoint, Client: client}
}

// RenderHTML converts document to PDF bytes.
func (g *Gotenberg) RenderHTML(ctx context.Context, filename, document string) ([]byte, error) {
	if g == nil || g.Endpoint == "" {
		return nil, ErrNotConfigured
	}
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	// Gotenberg requires the entry file to be called index.html.
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, document); err != nil {
		return nil, err
	}
	if err := writer.WriteField("waitDelay", "500ms"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if filename != "" {
		req.Header.Set("Gotenberg-Output-Filename", filename)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gotenberg request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, string(data))
	}
	return io.ReadAll(resp.Body)
}

// Ping checks that the Gotenberg service answers its health route.
func (g *Gotenberg) Ping(ctx context.Context) error {
	if g == nil || g.Endpoint == "" {
		return ErrNotConfigured
	}
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.Endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}
