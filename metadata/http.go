// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package metadata fetches display metadata for assets from third party
// indexers: token names from Dexie and NFT names and images from MintGarden.
// All lookups are best effort and are kept apart from parse results.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds each request.
	DefaultTimeout = 15 * time.Second

	maxResponseSize = 16 << 20
)

// ErrNotFound is returned when an indexer has no entry for an asset.
var ErrNotFound = errors.New("metadata: not found")

// HTTPConfig holds the settings shared by the indexer clients.
type HTTPConfig struct {
	// URL is the API root.
	URL string

	// Timeout bounds each request.  Zero means DefaultTimeout.
	Timeout time.Duration

	// HTTPClient replaces the default client.
	HTTPClient *http.Client
}

func (c *HTTPConfig) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (c *HTTPConfig) baseURL(def string) string {
	if c.URL == "" {
		return def
	}
	return strings.TrimRight(c.URL, "/")
}

// getJSON fetches url and decodes the body into v.
func getJSON(ctx context.Context, client *http.Client, url string,
	v interface{}) error {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	log.Tracef("GET %s", url)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("metadata: GET %s: HTTP %d", url,
			resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxResponseSize)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("metadata: GET %s: %w", url, err)
	}
	return nil
}
