// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xchdev/explorer/address"
	"github.com/xchdev/explorer/wire"
	"golang.org/x/time/rate"
)

const (
	// DefaultMintGardenURL is the public MintGarden API.
	DefaultMintGardenURL = "https://api.mintgarden.io"

	// DefaultMintGardenRate is the request rate MintGarden is queried
	// at, in requests per second.
	DefaultMintGardenRate = 2

	// DefaultNFTCacheSize is the number of NFTs kept in memory.
	DefaultNFTCacheSize = 1024
)

// NFT is the MintGarden view of an NFT.
type NFT struct {
	ID        string   `json:"id"`
	EncodedID string   `json:"encoded_id"`
	Data      *NFTData `json:"data,omitempty"`
}

// NFTData holds the off chain data of an NFT.
type NFTData struct {
	ThumbnailURI string `json:"thumbnail_uri,omitempty"`
	PreviewURI   string `json:"preview_uri,omitempty"`
	MetadataJSON *struct {
		Name string `json:"name,omitempty"`
	} `json:"metadata_json,omitempty"`
}

// Name returns the name of the NFT, or the empty string.
func (n *NFT) Name() string {
	if n.Data == nil || n.Data.MetadataJSON == nil {
		return ""
	}
	return n.Data.MetadataJSON.Name
}

// MintGardenConfig holds the settings of a MintGarden client.
type MintGardenConfig struct {
	HTTPConfig

	// RequestsPerSecond limits the request rate.  Zero means
	// DefaultMintGardenRate.
	RequestsPerSecond float64

	// CacheSize is the number of NFTs cached.  Zero means
	// DefaultNFTCacheSize.
	CacheSize int
}

// MintGarden looks up NFT metadata.  Requests are rate limited and results
// are cached by launcher id.
type MintGarden struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
	cache   *lru.Cache[wire.Bytes32, *NFT]
}

// NewMintGarden returns a MintGarden client.
func NewMintGarden(cfg *MintGardenConfig) (*MintGarden, error) {
	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = DefaultMintGardenRate
	}
	size := cfg.CacheSize
	if size == 0 {
		size = DefaultNFTCacheSize
	}

	cache, err := lru.New[wire.Bytes32, *NFT](size)
	if err != nil {
		return nil, err
	}

	return &MintGarden{
		url:     cfg.baseURL(DefaultMintGardenURL),
		http:    cfg.client(),
		limiter: rate.NewLimiter(rate.Limit(rps), max(1, int(rps))),
		cache:   cache,
	}, nil
}

// ParseLauncherID accepts a launcher id as an nft1 address or as hex.
func ParseLauncherID(s string) (wire.Bytes32, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), address.PrefixNFT+"1") {
		return address.DecodeHash(s, address.PrefixNFT)
	}
	return wire.ParseBytes32(s)
}

// NFT returns the metadata of the NFT with the given launcher id.
func (m *MintGarden) NFT(ctx context.Context,
	launcherID wire.Bytes32) (*NFT, error) {

	if nft, ok := m.cache.Get(launcherID); ok {
		return nft, nil
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	encoded := address.EncodeHash(launcherID, address.PrefixNFT)
	var nft NFT
	err := getJSON(
		ctx, m.http, m.url+"/nfts/"+url.PathEscape(encoded), &nft,
	)
	if err != nil {
		return nil, fmt.Errorf("metadata: nft %s: %w", encoded, err)
	}

	m.cache.Add(launcherID, &nft)
	return &nft, nil
}
