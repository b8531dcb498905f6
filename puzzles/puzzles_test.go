// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package puzzles

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xchdev/explorer/address"
	"github.com/xchdev/explorer/clvm"
	"github.com/xchdev/explorer/wire"
)

// stand-in mods, distinct programs whose tree hashes are registered in
// testTemplates.
var (
	p2Mod          = clvm.NewList(clvm.NewString("p2 delegated or hidden"))
	p2DelegatedMod = clvm.NewList(clvm.NewString("p2 delegated"))
	catMod         = clvm.NewList(clvm.NewString("cat v2"))
	settlement     = clvm.NewList(clvm.NewString("settlement payment"))
	launcher       = clvm.NewList(clvm.NewString("singleton launcher"))
	singletonMod   = clvm.NewList(clvm.NewString("singleton top layer"))
	stateMod       = clvm.NewList(clvm.NewString("nft state layer"))
	ownershipMod   = clvm.NewList(clvm.NewString("nft ownership layer"))
	royaltyMod     = clvm.NewList(clvm.NewString("royalty transfer"))
	p2SingletonMod = clvm.NewList(clvm.NewString("p2 singleton"))
	didMod         = clvm.NewList(clvm.NewString("did inner puzzle"))
)

func hashOf(s *clvm.SExp) wire.Bytes32 {
	return wire.Bytes32(clvm.TreeHash(s))
}

func testTemplates() *Templates {
	return &Templates{
		P2DelegatedOrHidden:    hashOf(p2Mod),
		P2Delegated:            hashOf(p2DelegatedMod),
		CAT:                    hashOf(catMod),
		SettlementPayment:      hashOf(settlement),
		SingletonLauncher:      hashOf(launcher),
		SingletonTopLayer:      hashOf(singletonMod),
		NFTStateLayer:          hashOf(stateMod),
		NFTOwnershipLayer:      hashOf(ownershipMod),
		RoyaltyTransferProgram: hashOf(royaltyMod),
		P2SingletonOrDelayed:   hashOf(p2SingletonMod),
		DIDInnerPuzzle:         hashOf(didMod),
	}
}

func fill(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func atom(b []byte) *clvm.SExp {
	return clvm.NewAtom(b)
}

func hashAtom(h wire.Bytes32) *clvm.SExp {
	return clvm.NewAtom(h[:])
}

func standardPuzzle(key byte) *clvm.SExp {
	return clvm.Curry(p2Mod, atom(fill(key, 48)))
}

func singletonPuzzle(launcherID wire.Bytes32, inner *clvm.SExp) *clvm.SExp {
	t := testTemplates()
	structure := clvm.NewPair(
		hashAtom(t.SingletonTopLayer),
		clvm.NewPair(hashAtom(launcherID), hashAtom(t.SingletonLauncher)),
	)
	return clvm.Curry(singletonMod, structure, inner)
}

func testMetadata() *clvm.SExp {
	return clvm.NewList(
		clvm.NewPair(clvm.NewString("u"), clvm.NewList(
			clvm.NewString("https://a.example/1.png"),
			clvm.NewString("https://b.example/1.png"),
		)),
		clvm.NewPair(clvm.NewString("h"), atom(fill(0xaa, 32))),
		clvm.NewPair(clvm.NewString("mu"), clvm.Nil),
		clvm.NewPair(clvm.NewString("sn"), clvm.NewUint(3)),
		clvm.NewPair(clvm.NewString("st"), clvm.NewUint(10)),
		clvm.NewPair(clvm.NewString("zz"), clvm.NewString("ignored")),
	)
}

func nftPuzzle(launcherID wire.Bytes32, owner []byte,
	metadata *clvm.SExp) *clvm.SExp {

	t := testTemplates()
	royalty := clvm.Curry(royaltyMod,
		clvm.NewAtom(launcherID[:]),
		atom(fill(0xcc, 32)),
		clvm.NewUint(300),
	)
	ownership := clvm.Curry(ownershipMod,
		hashAtom(t.NFTOwnershipLayer),
		atom(owner),
		royalty,
		standardPuzzle(0x01),
	)
	state := clvm.Curry(stateMod,
		hashAtom(t.NFTStateLayer),
		metadata,
		atom(fill(0xdd, 32)),
		ownership,
	)
	return singletonPuzzle(launcherID, state)
}

func TestNew(t *testing.T) {
	t.Parallel()

	plain := New(p2Mod)
	require.False(t, plain.Curried)
	require.Equal(t, plain.PuzzleHash, plain.ModHash)
	require.True(t, plain.Arg(0).IsNone())

	curried := New(standardPuzzle(0x02))
	require.True(t, curried.Curried)
	require.Equal(t, hashOf(p2Mod), curried.ModHash)
	require.NotEqual(t, curried.PuzzleHash, curried.ModHash)
	require.Len(t, curried.Args, 1)
	require.True(t, curried.Arg(0).IsSome())
}

func TestParseCAT(t *testing.T) {
	t.Parallel()

	tpl := testTemplates()
	var assetID wire.Bytes32
	copy(assetID[:], fill(0x42, 32))

	inner := standardPuzzle(0x03)
	cat := New(clvm.Curry(catMod, hashAtom(tpl.CAT), hashAtom(assetID),
		inner))

	parsed := tpl.ParseCAT(cat)
	require.True(t, parsed.IsSome())
	info := parsed.UnwrapOr(CATInfo{})
	require.Equal(t, assetID, info.AssetID)
	require.Equal(t, hashOf(inner), info.InnerPuzzle.PuzzleHash)

	// A short asset id is not a CAT.
	bad := New(clvm.Curry(catMod, hashAtom(tpl.CAT), atom([]byte{1}),
		inner))
	require.True(t, tpl.ParseCAT(bad).IsNone())

	// Neither is the inner puzzle on its own.
	require.True(t, tpl.ParseCAT(New(inner)).IsNone())
}

func TestParseSingletons(t *testing.T) {
	t.Parallel()

	tpl := testTemplates()
	var launcherID wire.Bytes32
	copy(launcherID[:], fill(0x77, 32))

	testCases := []struct {
		name      string
		puzzle    *clvm.SExp
		singleton bool
		nft       bool
		did       bool
	}{
		{
			name:   "standard",
			puzzle: standardPuzzle(0x01),
		},
		{
			name: "vault",
			puzzle: singletonPuzzle(
				launcherID, standardPuzzle(0x01),
			),
			singleton: true,
		},
		{
			name: "nft",
			puzzle: nftPuzzle(
				launcherID, fill(0x55, 32), testMetadata(),
			),
			singleton: true,
			nft:       true,
		},
		{
			name: "did",
			puzzle: singletonPuzzle(launcherID, clvm.Curry(didMod,
				standardPuzzle(0x01), clvm.Nil, clvm.NewUint(1),
				clvm.Nil, clvm.Nil,
			)),
			singleton: true,
			did:       true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := New(tc.puzzle)
			require.Equal(t, tc.singleton, tpl.ParseSingleton(p).IsSome())
			require.Equal(t, tc.nft, tpl.ParseNFT(p).IsSome())
			require.Equal(t, tc.did, tpl.ParseDID(p).IsSome())

			tpl.ParseSingleton(p).WhenSome(func(s SingletonInfo) {
				require.Equal(t, launcherID, s.LauncherID)
				require.Equal(t, tpl.SingletonLauncher,
					s.LauncherPuzzleHash)
			})
			tpl.ParseNFT(p).WhenSome(func(n NFTInfo) {
				require.Equal(t, launcherID, n.LauncherID)
				require.True(t, n.CurrentOwner.IsSome())
			})
		})
	}
}

func TestParseNFTMetadata(t *testing.T) {
	t.Parallel()

	parsed := ParseNFTMetadata(testMetadata())
	require.True(t, parsed.IsSome())
	md := parsed.UnwrapOr(NFTMetadata{})
	require.Equal(t, []string{
		"https://a.example/1.png", "https://b.example/1.png",
	}, md.DataURIs)
	require.Equal(t, fill(0xaa, 32), md.DataHash.UnwrapOr(nil))
	require.Empty(t, md.MetadataURIs)
	require.True(t, md.MetadataHash.IsNone())
	require.Equal(t, uint64(3), md.EditionNumber)
	require.Equal(t, uint64(10), md.EditionTotal)

	// Editions default to 1 of 1.
	parsed = ParseNFTMetadata(clvm.Nil)
	require.True(t, parsed.IsSome())
	md = parsed.UnwrapOr(NFTMetadata{})
	require.Equal(t, uint64(1), md.EditionNumber)
	require.Equal(t, uint64(1), md.EditionTotal)

	testCases := []struct {
		name     string
		metadata *clvm.SExp
	}{
		{
			name:     "atom",
			metadata: clvm.NewString("metadata"),
		},
		{
			name:     "entry is not a pair",
			metadata: clvm.NewList(clvm.NewString("u")),
		},
		{
			name: "uri is a pair",
			metadata: clvm.NewList(clvm.NewPair(clvm.NewString("u"),
				clvm.NewList(clvm.NewList(clvm.NewUint(1))))),
		},
		{
			name: "negative edition",
			metadata: clvm.NewList(clvm.NewPair(clvm.NewString("sn"),
				atom([]byte{0xff}))),
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.True(t, ParseNFTMetadata(tc.metadata).IsNone())
		})
	}
}

func argKeys(l *ParsedLayer) []string {
	keys := make([]string, 0, len(l.Args))
	for _, a := range l.Args {
		keys = append(keys, a.Key)
	}
	return keys
}

func TestParseLayerNFT(t *testing.T) {
	t.Parallel()

	tpl := testTemplates()
	var launcherID wire.Bytes32
	copy(launcherID[:], fill(0x77, 32))

	layer := ParseLayer(New(nftPuzzle(launcherID, nil, testMetadata())),
		tpl)
	require.Equal(t, "SINGLETON_TOP_LAYER_V1_1", layer.Name)
	require.Equal(t, tpl.SingletonTopLayer.String(), layer.ModHash)
	require.Equal(t, []string{
		"mod_hash", "launcher_id", "launcher_puzzle_hash",
	}, argKeys(&layer))

	id, ok := layer.Arg("launcher_id")
	require.True(t, ok)
	require.Equal(t, launcherID.String(), id.Value)
	require.Equal(t, CoinID, id.Kind)

	state, ok := layer.Child("inner_puzzle")
	require.True(t, ok)
	require.Equal(t, "NFT_STATE_LAYER", state.Name)
	require.Equal(t, []string{
		"mod_hash", "data_hash", "data_uris", "edition_number",
		"edition_total", "metadata_updater_puzzle_hash",
	}, argKeys(state))

	uris, _ := state.Arg("data_uris")
	require.Equal(t,
		"https://a.example/1.png, https://b.example/1.png", uris.Value)
	require.Equal(t, NonCopiable, uris.Kind)

	ownership, ok := state.Child("inner_puzzle")
	require.True(t, ok)
	require.Equal(t, "NFT_OWNERSHIP_LAYER", ownership.Name)
	owner, ok := ownership.Arg("current_owner")
	require.True(t, ok)
	require.Equal(t, "None", owner.Value)
	require.Equal(t, NonCopiable, owner.Kind)

	royalty, ok := ownership.Child("transfer_program")
	require.True(t, ok)
	require.Equal(t,
		"NFT_OWNERSHIP_TRANSFER_PROGRAM_ONE_WAY_CLAIM_WITH_ROYALTIES",
		royalty.Name)

	var royaltyHash wire.Bytes32
	copy(royaltyHash[:], fill(0xcc, 32))
	addr, _ := royalty.Arg("royalty_address")
	require.Equal(t, address.EncodeHash(royaltyHash, address.PrefixXCH),
		addr.Value)
	bps, _ := royalty.Arg("royalty_basis_points")
	require.Equal(t, "300", bps.Value)

	p2, ok := ownership.Child("inner_puzzle")
	require.True(t, ok)
	require.Equal(t, "P2_DELEGATED_PUZZLE_OR_HIDDEN_PUZZLE", p2.Name)
	key, _ := p2.Arg("synthetic_public_key")
	require.Equal(t, hexValue(fill(0x01, 48)), key.Value)
}

func TestParseLayerFlat(t *testing.T) {
	t.Parallel()

	tpl := testTemplates()
	var assetID wire.Bytes32
	copy(assetID[:], fill(0x42, 32))

	testCases := []struct {
		name     string
		puzzle   *clvm.SExp
		expected string
		args     map[string]string
	}{
		{
			name:     "unknown",
			puzzle:   clvm.NewList(clvm.NewString("anything")),
			expected: "Unknown",
		},
		{
			name:     "p2 hidden without key",
			puzzle:   clvm.Curry(p2Mod),
			expected: "P2_DELEGATED_PUZZLE_OR_HIDDEN_PUZZLE",
			args: map[string]string{
				"synthetic_public_key": "Missing",
			},
		},
		{
			name:     "settlement payment",
			puzzle:   settlement,
			expected: "SETTLEMENT_PAYMENT",
		},
		{
			name:     "launcher",
			puzzle:   launcher,
			expected: "SINGLETON_LAUNCHER",
		},
		{
			name: "cat",
			puzzle: clvm.Curry(catMod, hashAtom(tpl.CAT),
				hashAtom(assetID), settlement),
			expected: "CAT_V2",
			args: map[string]string{
				"asset_id": assetID.String(),
			},
		},
		{
			name: "p2 singleton or delayed",
			puzzle: clvm.Curry(p2SingletonMod,
				hashAtom(tpl.SingletonTopLayer),
				atom(fill(0x77, 32)),
				hashAtom(tpl.SingletonLauncher),
				clvm.NewUint(3600),
				atom(fill(0x99, 32)),
			),
			expected: "P2_SINGLETON_OR_DELAYED_PUZZLE_HASH",
			args: map[string]string{
				"launcher_id":         hexValue(fill(0x77, 32)),
				"seconds_delay":       "3600",
				"delayed_puzzle_hash": hexValue(fill(0x99, 32)),
			},
		},
		{
			name: "nft state with raw metadata",
			puzzle: clvm.Curry(stateMod, hashAtom(tpl.NFTStateLayer),
				clvm.NewString("raw"), atom(fill(0xdd, 32)),
				settlement),
			expected: "NFT_STATE_LAYER",
			args: map[string]string{
				"metadata": `"raw"`,
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := New(tc.puzzle)
			layer := ParseLayer(p, tpl)
			require.Equal(t, tc.expected, layer.Name)

			modHash, ok := layer.Arg("mod_hash")
			require.True(t, ok)
			require.Equal(t, p.ModHash.String(), modHash.Value)
			require.Equal(t, Copiable, modHash.Kind)

			for key, value := range tc.args {
				arg, ok := layer.Arg(key)
				require.True(t, ok, key)
				require.Equal(t, value, arg.Value, key)
			}
		})
	}
}

// Serialized standard mods as deployed on mainnet.
const (
	standardModHex = "ff02ffff01ff02ffff03ff0bffff01ff02ffff03ffff09ff05ffff1dff0bffff" +
	"1effff0bff0bffff02ff06ffff04ff02ffff04ff17ff8080808080808080ffff" +
	"01ff02ff17ff2f80ffff01ff088080ff0180ffff01ff04ffff04ff04ffff04ff" +
	"05ffff04ffff02ff06ffff04ff02ffff04ff17ff80808080ff80808080ffff02" +
	"ff17ff2f808080ff0180ffff04ffff01ff32ff02ffff03ffff07ff0580ffff01" +
	"ff0bffff0102ffff02ff06ffff04ff02ffff04ff09ff80808080ffff02ff06ff" +
	"ff04ff02ffff04ff0dff8080808080ffff01ff0bffff0101ff058080ff0180ff" +
	"018080"

	p2DelegatedModHex = "ff02ffff01ff04ffff04ff04ffff04ff05ffff04ffff02ff06ffff04ff02ffff" +
	"04ff0bff80808080ff80808080ffff02ff0bff178080ffff04ffff01ff32ff02" +
	"ffff03ffff07ff0580ffff01ff0bffff0102ffff02ff06ffff04ff02ffff04ff" +
	"09ff80808080ffff02ff06ffff04ff02ffff04ff0dff8080808080ffff01ff0b" +
	"ffff0101ff058080ff0180ff018080"

	settlementModHex = "ff02ffff01ff02ff0affff04ff02ffff04ff03ff80808080ffff04ffff01ffff" +
	"333effff02ffff03ff05ffff01ff04ffff04ff0cffff04ffff02ff1effff04ff" +
	"02ffff04ff09ff80808080ff808080ffff02ff16ffff04ff02ffff04ff19ffff" +
	"04ffff02ff0affff04ff02ffff04ff0dff80808080ff808080808080ff8080ff" +
	"0180ffff02ffff03ff05ffff01ff02ffff03ffff15ff29ff8080ffff01ff04ff" +
	"ff04ff08ff0980ffff02ff16ffff04ff02ffff04ff0dffff04ff0bff80808080" +
	"8080ffff01ff088080ff0180ffff010b80ff0180ff02ffff03ffff07ff0580ff" +
	"ff01ff0bffff0102ffff02ff1effff04ff02ffff04ff09ff80808080ffff02ff" +
	"1effff04ff02ffff04ff0dff8080808080ffff01ff0bffff0101ff058080ff01" +
	"80ff018080"

	launcherModHex = "ff02ffff01ff04ffff04ff04ffff04ff05ffff04ff0bff80808080ffff04ffff" +
	"04ff0affff04ffff02ff0effff04ff02ffff04ffff04ff05ffff04ff0bffff04" +
	"ff17ff80808080ff80808080ff808080ff808080ffff04ffff01ff33ff3cff02" +
	"ffff03ffff07ff0580ffff01ff0bffff0102ffff02ff0effff04ff02ffff04ff" +
	"09ff80808080ffff02ff0effff04ff02ffff04ff0dff8080808080ffff01ff0b" +
	"ffff0101ff058080ff0180ff018080"
)

// g1Generator is the compressed BLS12-381 G1 generator.
const g1Generator = "97f1d3a73197d7942695638c4fa9ac0fc3688c4f9774b905" +
	"a14e3a3f171bac586c55e83ff97a1aeffb3af00adb22c6bb"

func modFromHex(t *testing.T, s string) *clvm.SExp {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	node, err := clvm.Deserialize(b, false)
	require.NoError(t, err)
	return node
}

// TestDefaultTemplates checks the default template hashes against the tree
// hashes of the deployed mods, and that those mods are recognized.
func TestDefaultTemplates(t *testing.T) {
	t.Parallel()

	tpl := DefaultTemplates()
	key, err := hex.DecodeString(g1Generator)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		mod      string
		expected wire.Bytes32
		curry    []*clvm.SExp
		layer    string
		args     map[string]string
	}{
		{
			name:     "standard",
			mod:      standardModHex,
			expected: tpl.P2DelegatedOrHidden,
			curry:    []*clvm.SExp{atom(key)},
			layer:    "P2_DELEGATED_PUZZLE_OR_HIDDEN_PUZZLE",
			args: map[string]string{
				"synthetic_public_key": "0x" + g1Generator,
			},
		},
		{
			name:     "p2 delegated",
			mod:      p2DelegatedModHex,
			expected: tpl.P2Delegated,
			curry:    []*clvm.SExp{atom(key)},
			layer:    "P2_DELEGATED_PUZZLE",
			args: map[string]string{
				"public_key": "0x" + g1Generator,
			},
		},
		{
			name:     "settlement payment",
			mod:      settlementModHex,
			expected: tpl.SettlementPayment,
			layer:    "SETTLEMENT_PAYMENT",
		},
		{
			name:     "singleton launcher",
			mod:      launcherModHex,
			expected: tpl.SingletonLauncher,
			layer:    "SINGLETON_LAUNCHER",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mod := modFromHex(t, tc.mod)
			require.Equal(t, tc.expected, hashOf(mod))

			// Uncurried mods are matched on their puzzle hash.
			p := New(mod)
			if len(tc.curry) > 0 {
				p = New(clvm.Curry(mod, tc.curry...))
				require.Equal(t, tc.expected, p.ModHash)
			} else {
				require.Equal(t, tc.expected, p.PuzzleHash)
			}

			layer := ParseLayer(p, tpl)
			require.Equal(t, tc.layer, layer.Name)
			for key, value := range tc.args {
				arg, ok := layer.Arg(key)
				require.True(t, ok, key)
				require.Equal(t, value, arg.Value, key)
			}

			require.True(t, tpl.ParseCAT(p).IsNone())
			require.True(t, tpl.ParseSingleton(p).IsNone())
			require.True(t, tpl.ParseNFT(p).IsNone())
			require.True(t, tpl.ParseDID(p).IsNone())
		})
	}
}

// TestStandardPuzzleHash checks the puzzle hash of a curried standard
// puzzle against a known answer, computed both from the program and from
// hashes alone.
func TestStandardPuzzleHash(t *testing.T) {
	t.Parallel()

	key, err := hex.DecodeString(g1Generator)
	require.NoError(t, err)

	expected, err := wire.ParseBytes32(
		"697caaadca0a0d6664c5f81611a4304448744eb70801fbf4516440e1df52487c",
	)
	require.NoError(t, err)

	p := New(clvm.Curry(modFromHex(t, standardModHex), atom(key)))
	require.Equal(t, expected, p.PuzzleHash)

	tpl := DefaultTemplates()
	hash := clvm.CurryTreeHash(clvm.Hash(tpl.P2DelegatedOrHidden),
		clvm.TreeHashAtom(key))
	require.Equal(t, expected, wire.Bytes32(hash))
}
