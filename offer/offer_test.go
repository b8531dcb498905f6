// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package offer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
	"github.com/xchdev/explorer/address"
	"github.com/xchdev/explorer/clvm"
	"github.com/xchdev/explorer/wire"
)

func testBundle() *wire.SpendBundle {
	puzzle := clvm.Serialize(clvm.NewList(
		clvm.NewUint(1), clvm.NewString("puzzle"),
	))
	solution := clvm.Serialize(clvm.NewList(clvm.NewUint(51)))

	sb := &wire.SpendBundle{
		CoinSpends: []wire.CoinSpend{{
			Coin: wire.Coin{
				ParentCoinInfo: wire.Bytes32{1},
				PuzzleHash:     wire.Bytes32{2},
				Amount:         1001,
			},
			PuzzleReveal: puzzle,
			Solution:     solution,
		}, {
			Coin: wire.Coin{
				ParentCoinInfo: wire.Bytes32{3},
				PuzzleHash:     wire.Bytes32{4},
				Amount:         0,
			},
			PuzzleReveal: puzzle,
			Solution:     solution,
		}},
		AggregatedSignature: wire.InfinitySignature,
	}
	return sb
}

func compressed(t *testing.T, version uint16, payload, dict []byte) string {
	t.Helper()

	var buf bytes.Buffer
	buf.Write([]byte{byte(version >> 8), byte(version)})
	w, err := zlib.NewWriterLevelDict(&buf, zlib.DefaultCompression, dict)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	s, err := address.Encode(buf.Bytes(), Prefix)
	require.NoError(t, err)
	return s
}

// TestRoundTrip ensures that offers decode to the bundle they were encoded
// from, with and without a dictionary.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	RegisterDictionary(1, testBundle().CoinSpends[0].PuzzleReveal)

	testCases := []struct {
		name    string
		version uint16
	}{
		{name: "no dictionary", version: 0},
		{name: "first dictionary", version: 1},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			sb := testBundle()
			s, err := Encode(sb, testCase.version)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(s, Prefix+"1"))

			got, err := Decode(s)
			require.NoError(t, err)
			require.Equal(t, sb, got)
			require.Equal(t, sb.Hash(), got.Hash())

			got, err = Decode("  " + strings.ToUpper(s) + "\n")
			require.NoError(t, err)
			require.Equal(t, sb, got)
		})
	}
}

// TestDecodeErrors ensures that each way an offer can be malformed is
// reported with its own error code.
func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	wrongPrefix, err := address.Encode([]byte{0, 0, 1}, "xch")
	require.NoError(t, err)
	noVersion, err := address.Encode([]byte{0}, Prefix)
	require.NoError(t, err)
	badZlib, err := address.Encode([]byte{0, 0, 1, 2, 3}, Prefix)
	require.NoError(t, err)

	testCases := []struct {
		name  string
		offer string
		code  ErrorCode
	}{
		{
			name:  "not bech32",
			offer: "offer1notbech32",
			code:  ErrEncoding,
		},
		{
			name:  "wrong prefix",
			offer: wrongPrefix,
			code:  ErrEncoding,
		},
		{
			name:  "missing version",
			offer: noVersion,
			code:  ErrEncoding,
		},
		{
			name:  "unregistered version",
			offer: compressed(t, 0x7fff, []byte{1}, nil),
			code:  ErrUnknownVersion,
		},
		{
			name:  "invalid zlib",
			offer: badZlib,
			code:  ErrCompression,
		},
		{
			name:  "not a spend bundle",
			offer: compressed(t, 0, []byte{0, 0, 0, 9}, nil),
			code:  ErrSpendBundle,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode(testCase.offer)
			require.Error(t, err)
			require.True(
				t, IsError(err, testCase.code),
				"got %v, want %v", err, testCase.code,
			)
		})
	}
}

// TestEncodeUnknownVersion ensures that encoding with a version that has no
// dictionary fails rather than producing an undecodable offer.
func TestEncodeUnknownVersion(t *testing.T) {
	t.Parallel()

	_, err := Encode(testBundle(), 0x7ffe)
	require.True(t, IsError(err, ErrUnknownVersion))
}
