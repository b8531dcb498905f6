// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parser

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xchdev/explorer/conditions"
	"github.com/xchdev/explorer/offer"
	"github.com/xchdev/explorer/wire"
)

func detectBundle() *wire.SpendBundle {
	creator, asserter := announcementSpends([]byte("m"))
	return &wire.SpendBundle{
		CoinSpends:          []wire.CoinSpend{creator, asserter},
		AggregatedSignature: wire.G2Element{0xc0, 0x01},
	}
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// TestDetectInput checks each accepted input format.
func TestDetectInput(t *testing.T) {
	t.Parallel()

	sb := detectBundle()
	offerString, err := offer.Encode(sb, 0)
	require.NoError(t, err)

	spend := sb.CoinSpends[0]
	spendsOnly := &wire.SpendBundle{
		CoinSpends:          sb.CoinSpends,
		AggregatedSignature: wire.InfinitySignature,
	}
	single := &wire.SpendBundle{
		CoinSpends:          []wire.CoinSpend{spend},
		AggregatedSignature: wire.InfinitySignature,
	}

	testCases := []struct {
		name          string
		input         string
		kind          InputKind
		bundle        *wire.SpendBundle
		selfContained bool
		coin          *wire.Coin
	}{
		{
			name:          "offer",
			input:         "\n" + offerString + "\n",
			kind:          InputOffer,
			bundle:        sb,
			selfContained: true,
		},
		{
			name:          "hex bundle",
			input:         `"0x` + hex.EncodeToString(sb.Serialize()) + `"`,
			kind:          InputHexBundle,
			bundle:        sb,
			selfContained: true,
		},
		{
			name:          "coin spend list",
			input:         mustJSON(t, sb.CoinSpends),
			kind:          InputCoinSpendList,
			bundle:        spendsOnly,
			selfContained: true,
		},
		{
			name: "wrapped bundle",
			input: mustJSON(t, map[string]interface{}{
				"spend_bundle": sb,
			}),
			kind:          InputWrappedBundle,
			bundle:        sb,
			selfContained: true,
		},
		{
			name:          "bundle",
			input:         mustJSON(t, sb),
			kind:          InputBundle,
			bundle:        sb,
			selfContained: true,
		},
		{
			name:   "coin spend",
			input:  mustJSON(t, spend),
			kind:   InputCoinSpend,
			bundle: single,
		},
		{
			name:  "coin",
			input: mustJSON(t, spend.Coin),
			kind:  InputCoin,
			coin:  &spend.Coin,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			d := DetectInput([]byte(testCase.input))
			require.True(t, d.IsSome())

			got := d.UnwrapOr(Detected{})
			require.Equal(t, testCase.kind, got.Kind)
			require.Equal(t, testCase.bundle, got.Bundle)
			require.Equal(t, testCase.selfContained, got.SelfContained)
			require.Equal(t, testCase.coin, got.Coin)
		})
	}
}

// TestDetectInputRejects checks that unrecognised input yields nothing.
func TestDetectInputRejects(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
	}{
		{name: "empty", input: "  "},
		{name: "garbage", input: "hello world"},
		{name: "number", input: "42"},
		{name: "bad hex", input: `"0xzz"`},
		{name: "truncated bundle", input: `"0x00000001"`},
		{name: "unknown object", input: `{"foo": 1}`},
		{name: "bad coin", input: `{"parent_coin_info": "0x01"}`},
		{name: "null", input: "null"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			d := DetectInput([]byte(testCase.input))
			require.True(t, d.IsNone())
		})
	}
}

// TestDetectLargeAmounts checks that amounts beyond the float range are
// read exactly, whether given as numbers or strings, with or without hex
// prefixes.
func TestDetectLargeAmounts(t *testing.T) {
	t.Parallel()

	parent := fill(0x01)
	puzzleHash := fill(0x02)
	want := wire.Coin{
		ParentCoinInfo: parent,
		PuzzleHash:     puzzleHash,
		Amount:         math.MaxUint64,
	}

	for _, amount := range []string{
		"18446744073709551615", `"18446744073709551615"`,
	} {
		input := fmt.Sprintf(`{"parent_coin_info": "%s", `+
			`"puzzle_hash": "%s", "amount": %s}`, parent.Hex(),
			puzzleHash.String(), amount)

		d := DetectInput([]byte(input))
		require.True(t, d.IsSome(), amount)
		got := d.UnwrapOr(Detected{})
		require.Equal(t, &want, got.Coin)
	}
}

// TestCrossFormatDeterminism checks that a bundle given as JSON parses to
// the same result as the offer holding it.
func TestCrossFormatDeterminism(t *testing.T) {
	t.Parallel()

	sb := detectBundle()
	sb.CoinSpends = append(sb.CoinSpends, newSpend(
		fill(0x09), 5, standardPuzzle(0x09), createCoin(fill(0x0a), 5),
		cond(conditions.OpReserveFee, atom([]byte{1})),
	))
	offerString, err := offer.Encode(sb, 0)
	require.NoError(t, err)

	parse := func(input string) []byte {
		d := DetectInput([]byte(input))
		require.True(t, d.IsSome())
		got := d.UnwrapOr(Detected{})

		psb, err := ParseSpendBundle(
			got.Bundle, got.SelfContained, withTestTemplates()...,
		)
		require.NoError(t, err)
		b, err := json.Marshal(psb)
		require.NoError(t, err)
		return b
	}

	require.JSONEq(
		t, string(parse(offerString)), string(parse(mustJSON(t, sb))),
	)
}
