// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metadata

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultDexieURL is the public Dexie API.
	DefaultDexieURL = "https://api.dexie.space"

	// DefaultTokenTTL is how long a fetched token list is used before it
	// is refreshed.
	DefaultTokenTTL = time.Hour
)

// Token describes a CAT listed on Dexie.
type Token struct {
	// ID is the asset id as hex without a prefix.
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Denom uint64 `json:"denom"`
	Icon  string `json:"icon"`
}

// DexieConfig holds the settings of a Dexie client.
type DexieConfig struct {
	HTTPConfig

	// TTL is how long the token list is cached.  Zero means
	// DefaultTokenTTL.
	TTL time.Duration
}

// Dexie looks up token metadata.  The full token list is fetched at once and
// cached; concurrent lookups share a single fetch.
type Dexie struct {
	url  string
	http *http.Client
	ttl  time.Duration

	group singleflight.Group

	mtx       sync.RWMutex
	tokens    map[string]Token
	fetchedAt time.Time
}

// NewDexie returns a Dexie client.
func NewDexie(cfg *DexieConfig) *Dexie {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	return &Dexie{
		url:  cfg.baseURL(DefaultDexieURL),
		http: cfg.client(),
		ttl:  ttl,
	}
}

// normalizeAssetID lower cases an asset id and strips a 0x prefix.
func normalizeAssetID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.TrimPrefix(id, "0x")
}

// Tokens returns every listed token keyed by asset id.
func (d *Dexie) Tokens(ctx context.Context) (map[string]Token, error) {
	d.mtx.RLock()
	tokens, fetchedAt := d.tokens, d.fetchedAt
	d.mtx.RUnlock()

	if tokens != nil && time.Since(fetchedAt) < d.ttl {
		return tokens, nil
	}

	v, err, _ := d.group.Do("tokens", func() (interface{}, error) {
		return d.fetch(ctx)
	})
	if err != nil {
		// Fall back to the last list fetched.
		if tokens != nil {
			log.Warnf("Using stale token list: %v", err)
			return tokens, nil
		}
		return nil, err
	}
	return v.(map[string]Token), nil
}

func (d *Dexie) fetch(ctx context.Context) (map[string]Token, error) {
	var resp struct {
		Tokens []Token `json:"tokens"`
	}
	if err := getJSON(ctx, d.http, d.url+"/v1/tokens", &resp); err != nil {
		return nil, err
	}
	if resp.Tokens == nil {
		return nil, errors.New("metadata: dexie: invalid tokens")
	}

	tokens := make(map[string]Token, len(resp.Tokens))
	for _, t := range resp.Tokens {
		tokens[normalizeAssetID(t.ID)] = t
	}

	log.Debugf("Fetched %d tokens from Dexie", len(tokens))

	d.mtx.Lock()
	d.tokens = tokens
	d.fetchedAt = time.Now()
	d.mtx.Unlock()

	return tokens, nil
}

// Token returns the metadata of the token with the given asset id, which may
// carry a 0x prefix.
func (d *Dexie) Token(ctx context.Context,
	assetID string) (fn.Option[Token], error) {

	tokens, err := d.Tokens(ctx)
	if err != nil {
		return fn.None[Token](), err
	}

	t, ok := tokens[normalizeAssetID(assetID)]
	if !ok {
		return fn.None[Token](), nil
	}
	return fn.Some(t), nil
}
