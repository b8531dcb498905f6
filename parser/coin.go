// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parser

import (
	"strconv"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchdev/explorer/wire"
)

// CoinType is the asset class a coin was recognised as.
type CoinType string

// Coin types.
const (
	CoinUnknown CoinType = "unknown"
	CoinReward  CoinType = "reward"
	CoinCAT     CoinType = "cat"
	CoinNFT     CoinType = "nft"
	CoinDID     CoinType = "did"
	CoinVault   CoinType = "vault"
)

// AssetXCH is the asset id of coins that are not recognised as anything
// else.
const AssetXCH = "xch"

// ParsedCoin is a coin rendered for display.
type ParsedCoin struct {
	CoinID         string   `json:"coin_id"`
	ParentCoinInfo string   `json:"parent_coin_info"`
	PuzzleHash     string   `json:"puzzle_hash"`
	Amount         string   `json:"amount"`
	Type           CoinType `json:"type"`
	AssetID        string   `json:"asset_id"`

	// Hint is the hex of a 32 byte first memo, without a 0x prefix.
	Hint *string `json:"hint,omitempty"`
}

// ParseCoin renders a coin with the given classification.
func ParseCoin(coin wire.Coin, typ CoinType, assetID string,
	hint fn.Option[wire.Bytes32]) ParsedCoin {

	pc := ParsedCoin{
		CoinID:         coin.ID().String(),
		ParentCoinInfo: coin.ParentCoinInfo.String(),
		PuzzleHash:     coin.PuzzleHash.String(),
		Amount:         strconv.FormatUint(coin.Amount, 10),
		Type:           typ,
		AssetID:        assetID,
	}
	hint.WhenSome(func(h wire.Bytes32) {
		s := h.Hex()
		pc.Hint = &s
	})

	return pc
}

func noHint() fn.Option[wire.Bytes32] {
	return fn.None[wire.Bytes32]()
}
