// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package fetch retrieves issuer certificates, OCSP responses and CRLs over
// HTTP using pooled buffers.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/version"
)

// DefaultMaxBodySize bounds a single response body.
const DefaultMaxBodySize = 10 << 20

// ErrUnsupportedScheme is returned for URLs that are not http or https,
// such as ldap distribution points.
var ErrUnsupportedScheme = errors.New("fetch: unsupported URL scheme")

// StatusError reports a non 200 HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s returned status %d", e.URL, e.Code)
}

// HTTPConfig holds HTTP client configuration for certificate operations.
// Timeout is read once, when the client is first needed; later changes do
// not affect a client already in use.
type HTTPConfig struct {
	Timeout     time.Duration // HTTP request timeout
	Version     string        // Application version for User-Agent
	UserAgent   string        // Custom User-Agent string, if empty will be constructed from Version
	MaxBodySize int64         // Response size limit, zero means DefaultMaxBodySize

	once   sync.Once
	client *http.Client
}

// NewHTTPConfig creates a new HTTP configuration with a 10 second timeout.
func NewHTTPConfig(ver string) *HTTPConfig {
	if ver == "" {
		ver = version.Version
	}
	return &HTTPConfig{
		Timeout: 10 * time.Second,
		Version: ver,
	}
}

// WithClient returns a configuration that sends requests through a copy of
// client whose timeout is set to timeout. A non-positive timeout keeps the
// default of [NewHTTPConfig].
func WithClient(client *http.Client, timeout time.Duration) *HTTPConfig {
	c := NewHTTPConfig("")
	if timeout > 0 {
		c.Timeout = timeout
	}
	if client != nil {
		cp := *client
		cp.Timeout = c.Timeout
		c.client = &cp
		c.once.Do(func() {})
	}
	return c
}

// GetUserAgent returns the User-Agent string, constructing it if not set.
func (c *HTTPConfig) GetUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return fmt.Sprintf("%s/%s (+https://github.com/H0llyW00dzZ/x509-chain-verifier)", version.Name, c.Version)
}

// Client returns the HTTP client, creating it with Timeout on first use.
// The returned client is never modified afterwards.
//
// Thread Safety: Safe for concurrent use.
func (c *HTTPConfig) Client() *http.Client {
	c.once.Do(func() {
		c.client = &http.Client{Timeout: c.Timeout}
	})
	return c.client
}

// Get downloads url.
func (c *HTTPConfig) Get(ctx context.Context, url string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, "", nil)
}

// Post sends body to url with the given content type.
func (c *HTTPConfig) Post(ctx context.Context, url, contentType string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, url, contentType, body)
}

func (c *HTTPConfig) do(ctx context.Context, method, url, contentType string, body []byte) ([]byte, error) {
	if !hasHTTPScheme(url) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, url)
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, fmt.Errorf("fetch: failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.GetUserAgent())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	limit := c.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	data, err := gc.ReadAll(gc.Default, resp.Body, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch: failed to read %s: %w", url, err)
	}
	return data, nil
}

func hasHTTPScheme(url string) bool {
	l := strings.ToLower(url)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
