// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clvm

var (
	opQuoteAtom = []byte{opQuote}
	opApplyAtom = []byte{opApply}
	opConsAtom  = []byte{opCons}
)

// Curry binds args to mod, producing the program
// (a (q . mod) (c (q . arg0) (c (q . arg1) ... 1))).
func Curry(mod *SExp, args ...*SExp) *SExp {
	quote := NewAtom(opQuoteAtom)
	cons := NewAtom(opConsAtom)

	env := One
	for i := len(args) - 1; i >= 0; i-- {
		env = NewList(cons, NewPair(quote, args[i]), env)
	}

	return NewList(NewAtom(opApplyAtom), NewPair(quote, mod), env)
}

// Uncurry reverses Curry.  It reports false when the program is not in
// curried form.
func Uncurry(prog *SExp) (*SExp, []*SExp, bool) {
	items, ok := prog.ToList()
	if !ok || len(items) != 3 || !isAtom(items[0], opApply) {
		return nil, nil, false
	}

	quoted := items[1]
	if !quoted.IsPair() || !isAtom(quoted.left, opQuote) {
		return nil, nil, false
	}
	mod := quoted.right

	var args []*SExp
	env := items[2]
	for !isAtom(env, 1) {
		parts, ok := env.ToList()
		if !ok || len(parts) != 3 || !isAtom(parts[0], opCons) {
			return nil, nil, false
		}
		arg := parts[1]
		if !arg.IsPair() || !isAtom(arg.left, opQuote) {
			return nil, nil, false
		}
		args = append(args, arg.right)
		env = parts[2]
	}

	return mod, args, true
}

// CurryTreeHash returns the tree hash of mod curried with args, given only
// the tree hashes involved.
func CurryTreeHash(modHash Hash, argHashes ...Hash) Hash {
	quoteHash := TreeHashAtom(opQuoteAtom)
	applyHash := TreeHashAtom(opApplyAtom)
	consHash := TreeHashAtom(opConsAtom)
	nilHash := TreeHashAtom(nil)

	env := TreeHashAtom([]byte{0x01})
	for i := len(argHashes) - 1; i >= 0; i-- {
		quoted := TreeHashPair(quoteHash, argHashes[i])
		env = TreeHashPair(consHash, TreeHashPair(
			quoted, TreeHashPair(env, nilHash),
		))
	}

	quotedMod := TreeHashPair(quoteHash, modHash)
	return TreeHashPair(applyHash, TreeHashPair(
		quotedMod, TreeHashPair(env, nilHash),
	))
}

// isAtom reports whether node is the single byte atom v.
func isAtom(node *SExp, v byte) bool {
	return node.IsAtom() && len(node.atom) == 1 && node.atom[0] == v
}
