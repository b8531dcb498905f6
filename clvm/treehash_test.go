// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clvm

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTreeHash checks the atom and pair hashing rules.
func TestTreeHash(t *testing.T) {
	t.Parallel()

	// The tree hash of nil is sha256(0x01).
	nilHash := TreeHash(Nil)
	require.Equal(t,
		"4bf5122f344554c53bde2ebb8cd2b7e3d1600ad631c385a5d7cce23c7785459a",
		hex.EncodeToString(nilHash[:]),
	)

	one := NewUint(1)
	oneHash := sha256.Sum256([]byte{0x01, 0x01})
	require.Equal(t, Hash(oneHash), TreeHash(one))

	pair := NewPair(one, Nil)
	buf := append([]byte{0x02}, oneHash[:]...)
	buf = append(buf, nilHash[:]...)
	require.Equal(t, Hash(sha256.Sum256(buf)), TreeHash(pair))
}

// TestTreeHashShared checks that a tree with shared sub-trees hashes the
// same as its unshared copy.
func TestTreeHashShared(t *testing.T) {
	t.Parallel()

	leaf := NewList(NewString("abc"), NewUint(7))
	shared := NewPair(leaf, leaf)
	copied := NewPair(
		NewList(NewString("abc"), NewUint(7)),
		NewList(NewString("abc"), NewUint(7)),
	)
	require.Equal(t, TreeHash(copied), TreeHash(shared))
}

// TestCurry checks that currying round trips through Uncurry and that the
// curried tree hash can be computed from hashes alone.
func TestCurry(t *testing.T) {
	t.Parallel()

	mod := NewList(NewUint(opApply), NewUint(5), NewUint(7))
	args := []*SExp{
		NewString("first"),
		NewList(NewUint(1), NewUint(2)),
		Nil,
	}

	curried := Curry(mod, args...)

	gotMod, gotArgs, ok := Uncurry(curried)
	require.True(t, ok)
	require.True(t, mod.Equal(gotMod))
	require.Len(t, gotArgs, len(args))
	for i := range args {
		require.True(t, args[i].Equal(gotArgs[i]))
	}

	argHashes := make([]Hash, len(args))
	for i, arg := range args {
		argHashes[i] = TreeHash(arg)
	}
	require.Equal(t, TreeHash(curried),
		CurryTreeHash(TreeHash(mod), argHashes...))

	// No curried arguments at all.
	bare := Curry(mod)
	_, bareArgs, ok := Uncurry(bare)
	require.True(t, ok)
	require.Empty(t, bareArgs)
	require.Equal(t, TreeHash(bare), CurryTreeHash(TreeHash(mod)))
}

// TestUncurryRejects checks programs that are not in curried form.
func TestUncurryRejects(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		prog *SExp
	}{
		{
			name: "atom",
			prog: NewUint(1),
		},
		{
			name: "wrong operator",
			prog: NewList(NewUint(opCons), NewPair(NewUint(opQuote),
				Nil), NewUint(1)),
		},
		{
			name: "unquoted mod",
			prog: NewList(NewUint(opApply), NewUint(2), NewUint(1)),
		},
		{
			name: "environment not ending in 1",
			prog: NewList(NewUint(opApply), NewPair(NewUint(opQuote),
				Nil), NewUint(3)),
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, _, ok := Uncurry(tc.prog)
			require.False(t, ok)
		})
	}
}
