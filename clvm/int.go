// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clvm

import (
	"math/big"
)

var bigOne = big.NewInt(1)

// IntToBytes returns the minimal big-endian two's complement encoding of n.
// Zero encodes as the empty byte string.
func IntToBytes(n *big.Int) []byte {
	switch n.Sign() {
	case 0:
		return []byte{}

	case 1:
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0x00}, b...)
		}
		return b
	}

	// For a negative n the encoding width is the smallest l with
	// -2^(8l-1) <= n, and the bytes are those of 2^(8l) + n.
	m := new(big.Int).Neg(n)
	m.Sub(m, bigOne)
	width := m.BitLen()/8 + 1

	t := new(big.Int).Lsh(bigOne, uint(width*8))
	t.Add(t, n)
	return t.Bytes()
}

// BytesToInt decodes a big-endian two's complement byte string.
func BytesToInt(b []byte) *big.Int {
	n := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(bigOne, uint(len(b)*8)))
	}
	return n
}

// Uint64ToBytes returns the canonical atom encoding of v.
func Uint64ToBytes(v uint64) []byte {
	if v == 0 {
		return []byte{}
	}

	var buf [9]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte(v)
		v >>= 8
	}
	if buf[i]&0x80 != 0 {
		i--
		buf[i] = 0
	}
	return append([]byte(nil), buf[i:]...)
}

// BytesToUint64 decodes an atom as a non-negative integer that fits in 64
// bits.  Redundant leading zero bytes are tolerated up to a width of nine
// bytes.
func BytesToUint64(b []byte) (uint64, bool) {
	if len(b) == 0 {
		return 0, true
	}
	if b[0]&0x80 != 0 {
		return 0, false
	}
	if len(b) > 9 || (len(b) == 9 && b[0] != 0) {
		return 0, false
	}

	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, true
}

// smallInt decodes an atom into an int when it fits comfortably, returning
// false otherwise.  It is used for operator arguments such as shift counts
// and substring offsets.
func smallInt(b []byte) (int64, bool) {
	if len(b) > 4 {
		return 0, false
	}
	n := BytesToInt(b)
	return n.Int64(), true
}
