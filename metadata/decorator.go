// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metadata

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchdev/explorer/address"
	"github.com/xchdev/explorer/parser"
	"github.com/xchdev/explorer/wire"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of lookups a Decorator runs at once.
const DefaultConcurrency = 4

// TokenSource looks up CAT metadata by asset id.
type TokenSource interface {
	Token(ctx context.Context, assetID string) (fn.Option[Token], error)
}

// NFTSource looks up NFT metadata by launcher id.
type NFTSource interface {
	NFT(ctx context.Context, launcherID wire.Bytes32) (*NFT, error)
}

// Decoration holds the metadata found for the assets of a parse result,
// keyed by the asset id the parser reported.
type Decoration struct {
	Tokens map[string]Token `json:"tokens"`
	NFTs   map[string]*NFT  `json:"nfts"`
}

// Decorator finds metadata for the assets in parse results.  Either source
// may be nil, in which case those assets are not looked up.
type Decorator struct {
	Tokens TokenSource
	NFTs   NFTSource

	// Concurrency bounds the lookups in flight.  Zero means
	// DefaultConcurrency.
	Concurrency int
}

// Decorate looks up the assets spent and created by a bundle.
func (d *Decorator) Decorate(ctx context.Context,
	psb *parser.ParsedSpendBundle) (*Decoration, error) {

	coins := make([]parser.ParsedCoin, 0, len(psb.CoinSpends))
	for i := range psb.CoinSpends {
		coins = append(coins, psb.CoinSpends[i].Coin)
	}
	coins = append(coins, psb.Outputs()...)

	return d.DecorateCoins(ctx, coins)
}

// DecorateCoins looks up the assets of the given coins.  Failed lookups are
// logged and left out; only cancellation of ctx is reported.
func (d *Decorator) DecorateCoins(ctx context.Context,
	coins []parser.ParsedCoin) (*Decoration, error) {

	cats, nfts := assetIDs(coins)

	dec := &Decoration{
		Tokens: make(map[string]Token),
		NFTs:   make(map[string]*NFT),
	}
	var mtx sync.Mutex

	limit := d.Concurrency
	if limit == 0 {
		limit = DefaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	if d.Tokens != nil {
		for _, id := range cats {
			id := id
			g.Go(func() error {
				token, err := d.Tokens.Token(gctx, id)
				if err != nil {
					return lookupFailed(gctx, id, err)
				}
				token.WhenSome(func(t Token) {
					mtx.Lock()
					dec.Tokens[id] = t
					mtx.Unlock()
				})
				return nil
			})
		}
	}

	if d.NFTs != nil {
		for _, id := range nfts {
			id := id
			g.Go(func() error {
				launcherID, err := address.DecodeHash(
					id, address.PrefixNFT,
				)
				if err != nil {
					return lookupFailed(gctx, id, err)
				}
				nft, err := d.NFTs.NFT(gctx, launcherID)
				if err != nil {
					return lookupFailed(gctx, id, err)
				}
				mtx.Lock()
				dec.NFTs[id] = nft
				mtx.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dec, nil
}

// lookupFailed logs a failed lookup and swallows the error unless the
// context is done.
func lookupFailed(ctx context.Context, id string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, ErrNotFound) {
		log.Debugf("No metadata for %s", id)
		return nil
	}
	log.Warnf("Unable to fetch metadata for %s: %v", id, err)
	return nil
}

// assetIDs returns the distinct CAT and NFT asset ids among coins, sorted.
func assetIDs(coins []parser.ParsedCoin) ([]string, []string) {
	cats := make(map[string]struct{})
	nfts := make(map[string]struct{})
	for _, c := range coins {
		switch c.Type {
		case parser.CoinCAT:
			cats[c.AssetID] = struct{}{}
		case parser.CoinNFT:
			nfts[c.AssetID] = struct{}{}
		}
	}
	return sortedKeys(cats), sortedKeys(nfts)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
