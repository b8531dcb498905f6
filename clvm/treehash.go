// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clvm

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Hash is a 32-byte SHA-256 digest.
type Hash [32]byte

// Sha256 hashes the concatenation of the given byte strings.
func Sha256(parts ...[]byte) Hash {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	buf := make([]byte, 0, n)
	for _, p := range parts {
		buf = append(buf, p...)
	}

	var h Hash
	copy(h[:], chainhash.HashB(buf))
	return h
}

// TreeHashAtom returns the tree hash of an atom.
func TreeHashAtom(atom []byte) Hash {
	return Sha256([]byte{0x01}, atom)
}

// TreeHashPair returns the tree hash of a pair given the tree hashes of its
// halves.
func TreeHashPair(left, right Hash) Hash {
	return Sha256([]byte{0x02}, left[:], right[:])
}

// TreeHash computes the standard CLVM tree hash of the node.  Shared
// sub-trees are hashed once.
func TreeHash(s *SExp) Hash {
	memo := make(map[*SExp]Hash)

	type frame struct {
		node    *SExp
		visited bool
	}

	stack := []frame{{node: s}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := memo[f.node]; ok {
			continue
		}
		if f.node.IsAtom() {
			memo[f.node] = TreeHashAtom(f.node.atom)
			continue
		}
		if f.visited {
			memo[f.node] = TreeHashPair(
				memo[f.node.left], memo[f.node.right],
			)
			continue
		}

		stack = append(stack, frame{node: f.node, visited: true})
		stack = append(stack, frame{node: f.node.right})
		stack = append(stack, frame{node: f.node.left})
	}

	return memo[s]
}
