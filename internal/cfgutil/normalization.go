// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL returns the normalized form of an endpoint URL, adding the
// default scheme when none is given and dropping any trailing slash.  An
// error is returned if the result has no host or an unsupported scheme.
func NormalizeURL(raw, defaultScheme string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = defaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q in %q", u.Scheme,
			raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}

	u.Path = strings.TrimRight(u.Path, "/")
	return u.String(), nil
}

// WebsocketURL derives the websocket endpoint served next to an HTTP API
// endpoint, replacing the scheme and appending path.
func WebsocketURL(apiURL, path string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q in %q", u.Scheme,
			apiURL)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/" +
		strings.TrimLeft(path, "/")
	return u.String(), nil
}
