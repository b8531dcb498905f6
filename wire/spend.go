// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/xchdev/explorer/clvm"
)

// Program is a serialized CLVM program.
type Program []byte

// Parse deserializes the program.
func (p Program) Parse(allowBackrefs bool) (*clvm.SExp, error) {
	return clvm.Deserialize(p, allowBackrefs)
}

// TreeHash returns the tree hash of the program, which for a puzzle reveal
// is its puzzle hash.
func (p Program) TreeHash() (Bytes32, error) {
	node, err := clvm.Deserialize(p, true)
	if err != nil {
		return Bytes32{}, err
	}
	return Bytes32(clvm.TreeHash(node)), nil
}

// String returns the 0x prefixed hex encoding.
func (p Program) String() string {
	return "0x" + hex.EncodeToString(p)
}

// MarshalJSON encodes the program as a 0x prefixed hex string.
func (p Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a hex string with an optional 0x prefix.
func (p *Program) UnmarshalJSON(data []byte) error {
	s, err := unmarshalHexString(data)
	if err != nil {
		return err
	}
	b, err := DecodeHex(s)
	if err != nil {
		return err
	}
	*p = b
	return nil
}

// Validate checks that the signature is a valid compressed G2 point.
func (g G2Element) Validate() error {
	var p bls12381.G2Affine
	if _, err := p.SetBytes(g[:]); err != nil {
		return fmt.Errorf("wire: invalid signature: %w", err)
	}
	return nil
}

// CoinSpend reveals the puzzle of a coin together with the solution it is
// spent with.
type CoinSpend struct {
	Coin         Coin    `json:"coin"`
	PuzzleReveal Program `json:"puzzle_reveal"`
	Solution     Program `json:"solution"`
}

// SpendBundle is a set of coin spends and their aggregated signature.
type SpendBundle struct {
	CoinSpends          []CoinSpend `json:"coin_spends"`
	AggregatedSignature G2Element   `json:"aggregated_signature"`
}

// Serialize returns the streamable encoding of the bundle: the number of
// spends as a big-endian u32, each spend as its coin followed by the puzzle
// reveal and solution bytes, then the signature.
func (sb *SpendBundle) Serialize() []byte {
	var b []byte
	b = binary.BigEndian.AppendUint32(b, uint32(len(sb.CoinSpends)))
	for i := range sb.CoinSpends {
		cs := &sb.CoinSpends[i]
		b = appendCoin(b, &cs.Coin)
		b = append(b, cs.PuzzleReveal...)
		b = append(b, cs.Solution...)
	}
	return append(b, sb.AggregatedSignature[:]...)
}

// Hash returns the bundle's identifier, the SHA-256 of its streamable
// encoding.
func (sb *SpendBundle) Hash() Bytes32 {
	return Bytes32(clvm.Sha256(sb.Serialize()))
}

// ParseSpendBundle decodes the streamable encoding of a bundle.  Trailing
// bytes are rejected.
func ParseSpendBundle(b []byte) (*SpendBundle, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("%w: spend count", ErrTruncated)
	}
	count := binary.BigEndian.Uint32(b)
	b = b[4:]

	// Each spend takes at least a coin and two one byte programs.
	if uint64(count)*(coinSize+2) > uint64(len(b)) {
		return nil, fmt.Errorf("%w: %d spends", ErrTruncated, count)
	}

	sb := &SpendBundle{CoinSpends: make([]CoinSpend, 0, count)}
	for i := uint32(0); i < count; i++ {
		coin, rest, err := readCoin(b)
		if err != nil {
			return nil, err
		}
		puzzle, rest, err := readProgram(rest)
		if err != nil {
			return nil, fmt.Errorf("spend %d puzzle reveal: %w", i, err)
		}
		solution, rest, err := readProgram(rest)
		if err != nil {
			return nil, fmt.Errorf("spend %d solution: %w", i, err)
		}
		b = rest

		sb.CoinSpends = append(sb.CoinSpends, CoinSpend{
			Coin:         coin,
			PuzzleReveal: puzzle,
			Solution:     solution,
		})
	}

	if len(b) != len(sb.AggregatedSignature) {
		return nil, fmt.Errorf("%w: %d bytes left for the signature",
			ErrInvalidLength, len(b))
	}
	copy(sb.AggregatedSignature[:], b)

	return sb, nil
}

// readProgram splits one serialized program off the start of b.
func readProgram(b []byte) (Program, []byte, error) {
	n, err := clvm.SerializedLength(b, true)
	if err != nil {
		return nil, nil, err
	}
	return Program(append([]byte(nil), b[:n]...)), b[n:], nil
}
