// Package remote fetches the division tree as a JSON document over HTTP.
package remote

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"canestats/internal/core"
	"canestats/internal/dataset"
)

type Loader struct {
	url    string
	client *http.Client
}

var _ dataset.Loader = (*Loader)(nil)

// New returns a loader for url. A nil client gets a pooled client with
// bounded timeouts.
func New(url string, client *http.Client) *Loader {
	if client == nil {
		client = newHTTPClient()
	}
	return &Loader{url: url, client: client}
}

func (l *Loader) Source() string { return "remote" }

func (l *Loader) Load(ctx context.Context) ([]core.Division, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch dataset: unexpected status %d: %s", resp.StatusCode, body)
	}

	divisions, err := core.DecodeDivisions(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", l.url, err)
	}
	return divisions, nil
}

func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}
