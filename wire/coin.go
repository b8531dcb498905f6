// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xchdev/explorer/clvm"
)

// Coin is an unspent value record.  Its identity is derived from its three
// fields, so two coins with the same fields are the same coin.
type Coin struct {
	ParentCoinInfo Bytes32 `json:"parent_coin_info"`
	PuzzleHash     Bytes32 `json:"puzzle_hash"`
	Amount         uint64  `json:"amount"`
}

// CoinID computes the identifier of the coin with the given fields.  The
// amount is hashed in its CLVM integer form: empty for zero, big-endian
// without redundant leading bytes, and with a leading zero byte when the top
// bit of the first significant byte is set.
func CoinID(parent, puzzleHash Bytes32, amount uint64) Bytes32 {
	return Bytes32(clvm.Sha256(
		parent[:], puzzleHash[:], clvm.Uint64ToBytes(amount),
	))
}

// ID returns the coin's identifier.
func (c *Coin) ID() Bytes32 {
	return CoinID(c.ParentCoinInfo, c.PuzzleHash, c.Amount)
}

// coinJSON mirrors Coin with an amount that is parsed by hand.
type coinJSON struct {
	ParentCoinInfo Bytes32         `json:"parent_coin_info"`
	PuzzleHash     Bytes32         `json:"puzzle_hash"`
	Amount         json.RawMessage `json:"amount"`
}

// UnmarshalJSON decodes a coin.  The amount may be a JSON number of any size
// or a decimal string, and is never routed through a float.
func (c *Coin) UnmarshalJSON(data []byte) error {
	var aux coinJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	amount, err := ParseAmount(aux.Amount)
	if err != nil {
		return err
	}

	c.ParentCoinInfo = aux.ParentCoinInfo
	c.PuzzleHash = aux.PuzzleHash
	c.Amount = amount
	return nil
}

// ParseAmount decodes a JSON amount given either as a number or as a
// decimal string.
func ParseAmount(raw json.RawMessage) (uint64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, fmt.Errorf("wire: missing amount")
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
	}

	amount, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wire: invalid amount %q: %w", s, err)
	}
	return amount, nil
}

// coinSize is the streamable size of a coin.
const coinSize = 32 + 32 + 8

// appendCoin appends the streamable encoding of c.
func appendCoin(b []byte, c *Coin) []byte {
	b = append(b, c.ParentCoinInfo[:]...)
	b = append(b, c.PuzzleHash[:]...)
	return binary.BigEndian.AppendUint64(b, c.Amount)
}

// readCoin decodes a streamable coin from the start of b.
func readCoin(b []byte) (Coin, []byte, error) {
	var c Coin
	if len(b) < coinSize {
		return c, nil, fmt.Errorf("%w: coin", ErrTruncated)
	}
	copy(c.ParentCoinInfo[:], b[:32])
	copy(c.PuzzleHash[:], b[32:64])
	c.Amount = binary.BigEndian.Uint64(b[64:72])
	return c, b[coinSize:], nil
}
