// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package address encodes 32-byte hashes and identifiers as bech32m
// strings, the form Chia uses for addresses, NFT and DID ids and vaults.
package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/xchdev/explorer/wire"
)

// Human readable prefixes used by the explorer.
const (
	PrefixXCH   = "xch"
	PrefixTXCH  = "txch"
	PrefixNFT   = "nft"
	PrefixDID   = "did:chia:"
	PrefixVault = "vault"
)

var (
	// ErrNotBech32m is returned when a string uses the original bech32
	// checksum rather than bech32m.
	ErrNotBech32m = errors.New("address: not a bech32m string")

	// ErrPrefixMismatch is returned when a decoded string has an
	// unexpected prefix.
	ErrPrefixMismatch = errors.New("address: prefix mismatch")
)

// Encode returns the bech32m encoding of data with the given prefix.
func Encode(data []byte, prefix string) (string, error) {
	conv, err := bech32.ConvertBits(data, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.EncodeM(prefix, conv)
}

// EncodeHash is Encode for a 32-byte hash.  Encoding a hash never fails, so
// any error is reported as an empty string.
func EncodeHash(h wire.Bytes32, prefix string) string {
	s, err := Encode(h[:], prefix)
	if err != nil {
		return ""
	}
	return s
}

// Decode decodes a bech32m string of any length, returning its prefix and
// payload.
func Decode(s string) (string, []byte, error) {
	hrp, data, version, err := decodeNoLimit(s)
	if err != nil {
		return "", nil, err
	}
	if version != bech32.VersionM {
		return "", nil, ErrNotBech32m
	}

	conv, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	return hrp, conv, nil
}

// DecodeHash decodes a bech32m encoded 32-byte hash and checks its prefix.
func DecodeHash(s, prefix string) (wire.Bytes32, error) {
	var h wire.Bytes32

	hrp, data, err := Decode(s)
	if err != nil {
		return h, err
	}
	if hrp != prefix {
		return h, fmt.Errorf("%w: got %q, want %q", ErrPrefixMismatch,
			hrp, prefix)
	}
	if len(data) != len(h) {
		return h, fmt.Errorf("address: payload is %d bytes, want 32",
			len(data))
	}
	copy(h[:], data)
	return h, nil
}

// decodeNoLimit decodes without the 90 character limit of addresses, which
// offers exceed, and reports the checksum version.  The library accepts
// either checksum, so the version is recovered by re-encoding.
func decodeNoLimit(s string) (string, []byte, bech32.Version, error) {
	hrp, data, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return "", nil, bech32.VersionUnknown, err
	}

	m, err := bech32.EncodeM(hrp, data)
	if err != nil {
		return "", nil, bech32.VersionUnknown, err
	}
	if m == strings.ToLower(s) {
		return hrp, data, bech32.VersionM, nil
	}
	return hrp, data, bech32.Version0, nil
}
