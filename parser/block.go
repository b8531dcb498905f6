// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parser

import (
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchdev/explorer/wire"
)

// ParsedBlockSpends is the coin flow of a block.
type ParsedBlockSpends struct {
	SpendBundle *ParsedSpendBundle `json:"spend_bundle"`

	// Additions are the reward coins followed by every coin created by
	// the block's spends.
	Additions []ParsedCoin `json:"additions"`

	// Removals are the coins spent in the block.
	Removals []ParsedCoin `json:"removals"`
}

// ParseBlockSpends renders the spends of a block.  Block spends have
// already been validated, so they are wrapped in a bundle with an empty
// signature and checked as a self contained set.
func ParseBlockSpends(rewardCoins []wire.Coin, spends []wire.CoinSpend,
	opts ...Option) (*ParsedBlockSpends, error) {

	bundle := &wire.SpendBundle{
		CoinSpends:          spends,
		AggregatedSignature: wire.InfinitySignature,
	}
	psb, err := ParseSpendBundle(bundle, true, opts...)
	if err != nil {
		return nil, err
	}

	additions := make([]ParsedCoin, 0, len(rewardCoins))
	for _, coin := range rewardCoins {
		additions = append(additions, ParseCoin(
			coin, CoinReward, AssetXCH, fn.None[wire.Bytes32](),
		))
	}
	additions = append(additions, psb.Outputs()...)

	removals := make([]ParsedCoin, 0, len(psb.CoinSpends))
	for i := range psb.CoinSpends {
		removals = append(removals, psb.CoinSpends[i].Coin)
	}

	return &ParsedBlockSpends{
		SpendBundle: psb,
		Additions:   additions,
		Removals:    removals,
	}, nil
}
