// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package puzzles

import (
	"github.com/xchdev/explorer/wire"
)

// Templates holds the mod hashes (or, for uncurried puzzles, the puzzle
// hashes) the recognizers match against.
type Templates struct {
	P2DelegatedOrHidden    wire.Bytes32
	P2Delegated            wire.Bytes32
	CAT                    wire.Bytes32
	SettlementPayment      wire.Bytes32
	SingletonLauncher      wire.Bytes32
	SingletonTopLayer      wire.Bytes32
	NFTStateLayer          wire.Bytes32
	NFTOwnershipLayer      wire.Bytes32
	RoyaltyTransferProgram wire.Bytes32
	P2SingletonOrDelayed   wire.Bytes32
	DIDInnerPuzzle         wire.Bytes32
}

// mustHash parses a hard coded hash.
func mustHash(s string) wire.Bytes32 {
	h, err := wire.ParseBytes32(s)
	if err != nil {
		panic(err)
	}
	return h
}

// mainnetTemplates are the hashes of the standard puzzles deployed on
// mainnet and testnet alike.
var mainnetTemplates = Templates{
	P2DelegatedOrHidden:    mustHash("e9aaa49f45bad5c889b86ee3341550c155cfdd10c3a6757de618d20612fffd52"),
	P2Delegated:            mustHash("542cde70d1102cd1b763220990873efc8ab15625ded7eae22cc11e21ef2e2f7c"),
	CAT:                    mustHash("37bef360ee858133b69d595a906dc45d01af50379dad515eb9518abb7c1d2a7a"),
	SettlementPayment:      mustHash("cfbfdeed5c4ca2de3d0bf520b9cb4bb7743a359bd2e6a188d19ce7dffc21d3e7"),
	SingletonLauncher:      mustHash("eff07522495060c066f66f32acc2a77e3a3e737aca8baea4d1a64ea4cdc13da9"),
	SingletonTopLayer:      mustHash("7faa3253bfddd1e0decb0906b2dc6247bbc4cf608f58345d173adb63e8b47c9f"),
	NFTStateLayer:          mustHash("a04d9f57764f54a43e4030befb4d80026e870519aaa66334aef8304f5d0393c2"),
	NFTOwnershipLayer:      mustHash("c5abea79afaa001b5427dfa0c8cf42ca6f38f5841b78f9b3c252733eb2de2726"),
	RoyaltyTransferProgram: mustHash("025dee0fb1e9fa110302a7e9bfb6e381ca09618e2778b0184fa5c6b275cfce1f"),
	P2SingletonOrDelayed:   mustHash("adb656e0211e2ab4f42069a4c5efc80dc907e7062be08bf1628c8e5b6d94d25b"),
	DIDInnerPuzzle:         mustHash("33143d2bef64f14036742673afd158126b94284b4530a28c354fac202b0c910e"),
}

// DefaultTemplates returns a copy of the standard puzzle hashes.
func DefaultTemplates() *Templates {
	t := mainnetTemplates
	return &t
}

// name returns the layer name for a puzzle, or "" if no template matches.
// Settlement payments and launchers are matched on their puzzle hash since
// they are never curried.
func (t *Templates) name(p *Puzzle) string {
	switch {
	case p.ModHash == t.P2DelegatedOrHidden:
		return "P2_DELEGATED_PUZZLE_OR_HIDDEN_PUZZLE"
	case p.ModHash == t.P2Delegated:
		return "P2_DELEGATED_PUZZLE"
	case p.ModHash == t.CAT:
		return "CAT_V2"
	case p.PuzzleHash == t.SettlementPayment:
		return "SETTLEMENT_PAYMENT"
	case p.PuzzleHash == t.SingletonLauncher:
		return "SINGLETON_LAUNCHER"
	case p.ModHash == t.SingletonTopLayer:
		return "SINGLETON_TOP_LAYER_V1_1"
	case p.ModHash == t.NFTStateLayer:
		return "NFT_STATE_LAYER"
	case p.ModHash == t.NFTOwnershipLayer:
		return "NFT_OWNERSHIP_LAYER"
	case p.ModHash == t.RoyaltyTransferProgram:
		return "NFT_OWNERSHIP_TRANSFER_PROGRAM_ONE_WAY_CLAIM_WITH_ROYALTIES"
	case p.ModHash == t.P2SingletonOrDelayed:
		return "P2_SINGLETON_OR_DELAYED_PUZZLE_HASH"
	case p.ModHash == t.DIDInnerPuzzle:
		return "DID_INNER_PUZZLE"
	}
	return ""
}
