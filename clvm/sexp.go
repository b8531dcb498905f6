// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clvm

import (
	"bytes"
	"math/big"
)

// SExp is a node of a CLVM value.  A node is either an atom (a byte string,
// possibly empty) or a pair of two nodes.  Nodes are immutable once built and
// may be shared, which is what back-referenced serializations produce.
type SExp struct {
	atom  []byte
	left  *SExp
	right *SExp
}

// Nil is the empty atom.  It doubles as false and as the empty list.
var Nil = &SExp{atom: []byte{}}

// One is the atom 0x01.  It doubles as true.
var One = &SExp{atom: []byte{0x01}}

// NewAtom returns an atom node holding a copy of b.
func NewAtom(b []byte) *SExp {
	if len(b) == 0 {
		return Nil
	}
	return &SExp{atom: append([]byte(nil), b...)}
}

// newAtomNoCopy wraps b without copying it.  The caller must not modify b.
func newAtomNoCopy(b []byte) *SExp {
	if len(b) == 0 {
		return Nil
	}
	return &SExp{atom: b}
}

// NewPair returns the pair (left . right).
func NewPair(left, right *SExp) *SExp {
	return &SExp{left: left, right: right}
}

// NewList builds a proper nil terminated list of items.
func NewList(items ...*SExp) *SExp {
	list := Nil
	for i := len(items) - 1; i >= 0; i-- {
		list = NewPair(items[i], list)
	}
	return list
}

// NewInt returns the canonical atom encoding of n.
func NewInt(n *big.Int) *SExp {
	return newAtomNoCopy(IntToBytes(n))
}

// NewUint returns the canonical atom encoding of v.
func NewUint(v uint64) *SExp {
	return newAtomNoCopy(Uint64ToBytes(v))
}

// NewString returns an atom holding the bytes of s.
func NewString(s string) *SExp {
	return newAtomNoCopy([]byte(s))
}

// IsPair reports whether the node is a pair.
func (s *SExp) IsPair() bool {
	return s.left != nil
}

// IsAtom reports whether the node is an atom.
func (s *SExp) IsAtom() bool {
	return s.left == nil
}

// IsNil reports whether the node is the empty atom.
func (s *SExp) IsNil() bool {
	return s.left == nil && len(s.atom) == 0
}

// Atom returns the bytes of an atom node, and false for a pair.  The returned
// slice must not be modified.
func (s *SExp) Atom() ([]byte, bool) {
	if s.IsPair() {
		return nil, false
	}
	return s.atom, true
}

// Pair returns both halves of a pair node, and false for an atom.
func (s *SExp) Pair() (*SExp, *SExp, bool) {
	if s.IsAtom() {
		return nil, nil, false
	}
	return s.left, s.right, true
}

// First returns the left half of a pair, or nil for an atom.
func (s *SExp) First() *SExp {
	return s.left
}

// Rest returns the right half of a pair, or nil for an atom.
func (s *SExp) Rest() *SExp {
	return s.right
}

// Bool reports whether the node is truthy, i.e. anything but the empty atom.
func (s *SExp) Bool() bool {
	return !s.IsNil()
}

// BigInt decodes an atom as a signed big-endian two's complement integer.
func (s *SExp) BigInt() (*big.Int, bool) {
	if s.IsPair() {
		return nil, false
	}
	return BytesToInt(s.atom), true
}

// Uint64 decodes an atom as an unsigned 64-bit integer.  Negative values and
// values that do not fit are rejected.
func (s *SExp) Uint64() (uint64, bool) {
	if s.IsPair() {
		return 0, false
	}
	return BytesToUint64(s.atom)
}

// ToList collects the elements of a proper list.  It fails when the list is
// terminated by anything other than nil.
func (s *SExp) ToList() ([]*SExp, bool) {
	var items []*SExp
	node := s
	for node.IsPair() {
		items = append(items, node.left)
		node = node.right
	}
	if !node.IsNil() {
		return nil, false
	}
	return items, true
}

// Items collects the elements of a possibly improper list, ignoring whatever
// atom terminates it.
func (s *SExp) Items() []*SExp {
	var items []*SExp
	for node := s; node.IsPair(); node = node.right {
		items = append(items, node.left)
	}
	return items
}

// At returns the n-th element of a list, or false when the list is shorter.
func (s *SExp) At(n int) (*SExp, bool) {
	node := s
	for i := 0; i < n; i++ {
		if !node.IsPair() {
			return nil, false
		}
		node = node.right
	}
	if !node.IsPair() {
		return nil, false
	}
	return node.left, true
}

// Equal reports whether two nodes are structurally identical.
func (s *SExp) Equal(o *SExp) bool {
	type frame struct{ a, b *SExp }

	stack := []frame{{s, o}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.a == f.b {
			continue
		}
		if f.a.IsPair() != f.b.IsPair() {
			return false
		}
		if f.a.IsAtom() {
			if !bytes.Equal(f.a.atom, f.b.atom) {
				return false
			}
			continue
		}
		stack = append(stack, frame{f.a.left, f.b.left})
		stack = append(stack, frame{f.a.right, f.b.right})
	}
	return true
}

// String returns the disassembled form of the node.
func (s *SExp) String() string {
	return Disassemble(s)
}
