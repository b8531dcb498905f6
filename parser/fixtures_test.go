// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xchdev/explorer/clvm"
	"github.com/xchdev/explorer/conditions"
	"github.com/xchdev/explorer/puzzles"
	"github.com/xchdev/explorer/wire"
)

// passthroughMod returns a mod that, once curried with n arguments, outputs
// its solution.  The tag only makes each mod hash differently.
func passthroughMod(tag string, n int) *clvm.SExp {
	path := uint64(1)<<(n+1) - 1
	return clvm.NewList(
		clvm.NewUint(5),
		clvm.NewList(
			clvm.NewUint(4),
			clvm.NewUint(path),
			clvm.NewPair(clvm.NewUint(1), clvm.NewString(tag)),
		),
	)
}

var (
	p2Mod        = passthroughMod("p2", 1)
	catMod       = passthroughMod("cat", 3)
	singletonMod = passthroughMod("singleton", 2)
	stateMod     = passthroughMod("state", 4)
	ownershipMod = passthroughMod("ownership", 4)
	royaltyMod   = passthroughMod("royalty", 3)
	didMod       = passthroughMod("did", 5)
	launcherMod  = clvm.NewList(clvm.NewString("launcher"))
)

func hashOf(s *clvm.SExp) wire.Bytes32 {
	return wire.Bytes32(clvm.TreeHash(s))
}

func testTemplates() *puzzles.Templates {
	return &puzzles.Templates{
		P2DelegatedOrHidden:    hashOf(p2Mod),
		CAT:                    hashOf(catMod),
		SingletonLauncher:      hashOf(launcherMod),
		SingletonTopLayer:      hashOf(singletonMod),
		NFTStateLayer:          hashOf(stateMod),
		NFTOwnershipLayer:      hashOf(ownershipMod),
		RoyaltyTransferProgram: hashOf(royaltyMod),
		DIDInnerPuzzle:         hashOf(didMod),
	}
}

func withTestTemplates(opts ...Option) []Option {
	return append([]Option{WithTemplates(testTemplates())}, opts...)
}

func fill(b byte) wire.Bytes32 {
	var h wire.Bytes32
	for i := range h {
		h[i] = b
	}
	return h
}

func atom(b []byte) *clvm.SExp {
	return clvm.NewAtom(b)
}

func hashAtom(h wire.Bytes32) *clvm.SExp {
	return clvm.NewAtom(h[:])
}

func publicKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 48)
}

func cond(op conditions.Opcode, args ...*clvm.SExp) *clvm.SExp {
	return clvm.NewPair(clvm.NewUint(uint64(op)), clvm.NewList(args...))
}

func createCoin(ph wire.Bytes32, amount uint64,
	memos ...*clvm.SExp) *clvm.SExp {

	args := []*clvm.SExp{hashAtom(ph), clvm.NewUint(amount)}
	if len(memos) > 0 {
		args = append(args, clvm.NewList(memos...))
	}
	return cond(conditions.OpCreateCoin, args...)
}

func standardPuzzle(key byte) *clvm.SExp {
	return clvm.Curry(p2Mod, atom(publicKey(key)))
}

func catPuzzle(assetID wire.Bytes32, inner *clvm.SExp) *clvm.SExp {
	return clvm.Curry(
		catMod, hashAtom(hashOf(catMod)), hashAtom(assetID), inner,
	)
}

func singletonStruct(launcherID wire.Bytes32) *clvm.SExp {
	return clvm.NewPair(
		hashAtom(hashOf(singletonMod)),
		clvm.NewPair(hashAtom(launcherID), hashAtom(hashOf(launcherMod))),
	)
}

func singletonPuzzle(launcherID wire.Bytes32, inner *clvm.SExp) *clvm.SExp {
	return clvm.Curry(singletonMod, singletonStruct(launcherID), inner)
}

func nftPuzzle(launcherID wire.Bytes32) *clvm.SExp {
	transfer := clvm.Curry(
		royaltyMod, singletonStruct(launcherID), hashAtom(fill(0x77)),
		clvm.NewUint(300),
	)
	ownership := clvm.Curry(
		ownershipMod, hashAtom(hashOf(ownershipMod)), clvm.Nil, transfer,
		standardPuzzle(0x01),
	)
	state := clvm.Curry(
		stateMod, hashAtom(hashOf(stateMod)), clvm.Nil,
		hashAtom(fill(0x66)), ownership,
	)
	return singletonPuzzle(launcherID, state)
}

func didPuzzle(launcherID wire.Bytes32) *clvm.SExp {
	inner := clvm.Curry(
		didMod, standardPuzzle(0x01), clvm.Nil, clvm.NewUint(0),
		singletonStruct(launcherID), clvm.Nil,
	)
	return singletonPuzzle(launcherID, inner)
}

// newSpend returns the spend of a coin locked by puzzle, with a solution
// that makes the puzzle output conds.
func newSpend(parent wire.Bytes32, amount uint64, puzzle *clvm.SExp,
	conds ...*clvm.SExp) wire.CoinSpend {

	return wire.CoinSpend{
		Coin: wire.Coin{
			ParentCoinInfo: parent,
			PuzzleHash:     hashOf(puzzle),
			Amount:         amount,
		},
		PuzzleReveal: clvm.Serialize(puzzle),
		Solution:     clvm.Serialize(clvm.NewList(conds...)),
	}
}

func newBundle(spends ...wire.CoinSpend) *wire.SpendBundle {
	return &wire.SpendBundle{
		CoinSpends:          spends,
		AggregatedSignature: wire.InfinitySignature,
	}
}

func parseBundle(t *testing.T, selfContained bool,
	spends ...wire.CoinSpend) *ParsedSpendBundle {

	t.Helper()

	psb, err := ParseSpendBundle(
		newBundle(spends...), selfContained, withTestTemplates()...,
	)
	require.NoError(t, err)
	require.Len(t, psb.CoinSpends, len(spends))
	return psb
}

func requireArg(t *testing.T, pc ParsedCondition, key, value string) {
	t.Helper()

	arg, ok := pc.Args.Get(key)
	require.True(t, ok, "missing arg %q in %v", key, pc.Args.Keys())
	require.Equal(t, value, arg.Value, "arg %q", key)
}

func requireWarning(t *testing.T, pc ParsedCondition, want string) {
	t.Helper()

	if want == "" {
		require.True(t, pc.Warning.IsNone(), "unexpected warning %q",
			pc.Warning.UnwrapOr(""))
		return
	}
	require.Equal(t, want, pc.Warning.UnwrapOr(""))
}
