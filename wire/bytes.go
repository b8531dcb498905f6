// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidHex is returned when a hex field cannot be decoded.
	ErrInvalidHex = errors.New("wire: invalid hex")

	// ErrInvalidLength is returned when a fixed size field has the wrong
	// number of bytes.
	ErrInvalidLength = errors.New("wire: invalid length")

	// ErrTruncated is returned when a streamable encoding ends early.
	ErrTruncated = errors.New("wire: truncated input")
)

// DecodeHex decodes a hex string with an optional 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return b, nil
}

// decodeFixed decodes a hex string of exactly len(dst) bytes into dst.
func decodeFixed(dst []byte, s string) error {
	b, err := DecodeHex(s)
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength,
			len(b), len(dst))
	}
	copy(dst, b)
	return nil
}

// unmarshalHexString decodes a JSON string holding hex.
func unmarshalHexString(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}
	return s, nil
}

// Bytes32 is a 32-byte hash or identifier.
type Bytes32 [32]byte

// ParseBytes32 decodes a hex string with an optional 0x prefix.
func ParseBytes32(s string) (Bytes32, error) {
	var b Bytes32
	err := decodeFixed(b[:], s)
	return b, err
}

// String returns the 0x prefixed hex encoding.
func (b Bytes32) String() string {
	return "0x" + hex.EncodeToString(b[:])
}

// Hex returns the hex encoding without prefix.
func (b Bytes32) Hex() string {
	return hex.EncodeToString(b[:])
}

// MarshalJSON encodes the value as a 0x prefixed hex string.
func (b Bytes32) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON decodes a hex string with an optional 0x prefix.
func (b *Bytes32) UnmarshalJSON(data []byte) error {
	s, err := unmarshalHexString(data)
	if err != nil {
		return err
	}
	return decodeFixed(b[:], s)
}

// G2Element is a compressed BLS12-381 G2 point, the form of an aggregated
// signature.
type G2Element [96]byte

// InfinitySignature is the empty aggregate signature.
var InfinitySignature = G2Element{0xc0}

// String returns the 0x prefixed hex encoding.
func (g G2Element) String() string {
	return "0x" + hex.EncodeToString(g[:])
}

// MarshalJSON encodes the value as a 0x prefixed hex string.
func (g G2Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

// UnmarshalJSON decodes a hex string with an optional 0x prefix.
func (g *G2Element) UnmarshalJSON(data []byte) error {
	s, err := unmarshalHexString(data)
	if err != nil {
		return err
	}
	return decodeFixed(g[:], s)
}
