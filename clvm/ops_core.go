// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clvm

import (
	"bytes"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// operatorFunc runs a native operator on its evaluated arguments.  budget is
// what is left of the run's cost budget.
type operatorFunc func(args *SExp, budget uint64) (uint64, *SExp, error)

// operators maps operator atoms to their implementations.
var operators map[string]operatorFunc

func init() {
	operators = map[string]operatorFunc{
		string([]byte{opIf}):       opIfFunc,
		string([]byte{opCons}):     opConsFunc,
		string([]byte{opFirst}):    opFirstFunc,
		string([]byte{opRest}):     opRestFunc,
		string([]byte{opListp}):    opListpFunc,
		string([]byte{opRaise}):    opRaiseFunc,
		string([]byte{opEq}):       opEqFunc,
		string([]byte{opGrBytes}):  opGrBytesFunc,
		string([]byte{opSha256}):   opSha256Func,
		string([]byte{opSubstr}):   opSubstrFunc,
		string([]byte{opStrlen}):   opStrlenFunc,
		string([]byte{opConcat}):   opConcatFunc,
		string([]byte{opAdd}):      opAddFunc,
		string([]byte{opSubtract}): opSubtractFunc,
		string([]byte{opMultiply}): opMultiplyFunc,
		string([]byte{opDiv}):      opDivFunc,
		string([]byte{opDivmod}):   opDivmodFunc,
		string([]byte{opGr}):       opGrFunc,
		string([]byte{opAsh}):      opAshFunc,
		string([]byte{opLsh}):      opLshFunc,
		string([]byte{opLogand}):   opLogandFunc,
		string([]byte{opLogior}):   opLogiorFunc,
		string([]byte{opLogxor}):   opLogxorFunc,
		string([]byte{opLognot}):   opLognotFunc,
		string([]byte{opNot}):      opNotFunc,
		string([]byte{opAny}):      opAnyFunc,
		string([]byte{opAll}):      opAllFunc,
		string([]byte{opModpow}):   opModpowFunc,
		string([]byte{opMod}):      opModFunc,

		string([]byte{opPointAdd}):           opPointAddFunc,
		string([]byte{opPubkeyForExp}):       opPubkeyForExpFunc,
		string([]byte{opG1Subtract}):         opG1SubtractFunc,
		string([]byte{opG1Multiply}):         opG1MultiplyFunc,
		string([]byte{opG1Negate}):           opG1NegateFunc,
		string([]byte{opG2Add}):              opG2AddFunc,
		string([]byte{opG2Subtract}):         opG2SubtractFunc,
		string([]byte{opG2Multiply}):         opG2MultiplyFunc,
		string([]byte{opG2Negate}):           opG2NegateFunc,
		string([]byte{opG1Map}):              opG1MapFunc,
		string([]byte{opG2Map}):              opG2MapFunc,
		string([]byte{opBLSPairingIdentity}): opBLSPairingIdentityFunc,
		string([]byte{opBLSVerify}):          opBLSVerifyFunc,

		string([]byte{opSoftfork}):  opSoftforkFunc,
		string([]byte{opCoinID}):    opCoinIDFunc,
		string([]byte{opKeccak256}): opKeccak256Func,
		string(opSecp256k1Verify):   opSecp256k1VerifyFunc,
		string(opSecp256r1Verify):   opSecp256r1VerifyFunc,
	}
}

// boolAtom maps a Go bool to the CLVM truth values.
func boolAtom(b bool) *SExp {
	if b {
		return One
	}
	return Nil
}

// atomArgs collects the arguments of a variadic operator, all of which must
// be atoms.
func atomArgs(args *SExp, name string) ([][]byte, error) {
	items, ok := args.ToList()
	if !ok {
		return nil, evalErrf(args, "%s: bad argument list", name)
	}
	atoms := make([][]byte, 0, len(items))
	for _, item := range items {
		atom, err := atomArg(item, name)
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, atom)
	}
	return atoms, nil
}

// exactAtoms collects exactly n atom arguments.
func exactAtoms(args *SExp, name string, n int) ([][]byte, error) {
	items, err := exactArgs(args, name, n)
	if err != nil {
		return nil, err
	}
	atoms := make([][]byte, n)
	for i, item := range items {
		if atoms[i], err = atomArg(item, name); err != nil {
			return nil, err
		}
	}
	return atoms, nil
}

func opIfFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	items, err := exactArgs(args, "i", 3)
	if err != nil {
		return 0, nil, err
	}
	if items[0].Bool() {
		return ifCost, items[1], nil
	}
	return ifCost, items[2], nil
}

func opConsFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	items, err := exactArgs(args, "c", 2)
	if err != nil {
		return 0, nil, err
	}
	return consCost, NewPair(items[0], items[1]), nil
}

func opFirstFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	items, err := exactArgs(args, "f", 1)
	if err != nil {
		return 0, nil, err
	}
	if !items[0].IsPair() {
		return 0, nil, evalErr(items[0], "first of non-cons")
	}
	return firstCost, items[0].left, nil
}

func opRestFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	items, err := exactArgs(args, "r", 1)
	if err != nil {
		return 0, nil, err
	}
	if !items[0].IsPair() {
		return 0, nil, evalErr(items[0], "rest of non-cons")
	}
	return restCost, items[0].right, nil
}

func opListpFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	items, err := exactArgs(args, "l", 1)
	if err != nil {
		return 0, nil, err
	}
	return listpCost, boolAtom(items[0].IsPair()), nil
}

func opRaiseFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	// A single atom argument is raised on its own, anything else is
	// raised as the whole argument list.
	node := args
	if items, ok := args.ToList(); ok && len(items) == 1 &&
		items[0].IsAtom() {

		node = items[0]
	}
	return 0, nil, &EvalError{Node: node, Msg: "raise", Err: ErrRaise}
}

func opEqFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	atoms, err := exactAtoms(args, "=", 2)
	if err != nil {
		return 0, nil, err
	}
	cost := uint64(eqBaseCost) +
		uint64(len(atoms[0])+len(atoms[1]))*eqCostPerByte
	return cost, boolAtom(bytes.Equal(atoms[0], atoms[1])), nil
}

func opGrBytesFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	atoms, err := exactAtoms(args, ">s", 2)
	if err != nil {
		return 0, nil, err
	}
	cost := uint64(grsBaseCost) +
		uint64(len(atoms[0])+len(atoms[1]))*grsCostPerByte
	return cost, boolAtom(bytes.Compare(atoms[0], atoms[1]) > 0), nil
}

func opSha256Func(args *SExp, budget uint64) (uint64, *SExp, error) {
	atoms, err := atomArgs(args, "sha256")
	if err != nil {
		return 0, nil, err
	}

	cost := uint64(sha256BaseCost)
	var byteCount uint64
	for _, atom := range atoms {
		cost += sha256CostPerArg
		byteCount += uint64(len(atom))
		err := checkCost(cost+byteCount*sha256CostPerByte, budget)
		if err != nil {
			return 0, nil, err
		}
	}
	cost += byteCount * sha256CostPerByte

	digest := Sha256(atoms...)
	result := NewAtom(digest[:])
	return mallocCost(cost, result), result, nil
}

func opSubstrFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	items, ok := args.ToList()
	if !ok || len(items) < 2 || len(items) > 3 {
		return 0, nil, evalErr(args, "substr takes exactly 2 or 3 "+
			"arguments")
	}
	s, err := atomArg(items[0], "substr")
	if err != nil {
		return 0, nil, err
	}

	start, err := int32Arg(items[1], "substr")
	if err != nil {
		return 0, nil, err
	}
	end := int64(len(s))
	if len(items) == 3 {
		if end, err = int32Arg(items[2], "substr"); err != nil {
			return 0, nil, err
		}
	}
	if end > int64(len(s)) || start > end || start < 0 {
		return 0, nil, evalErr(args, "invalid indices for substr")
	}

	return substrCost, newAtomNoCopy(s[start:end]), nil
}

// int32Arg decodes an operator argument that must fit in four bytes.
func int32Arg(node *SExp, name string) (int64, error) {
	atom, err := atomArg(node, name)
	if err != nil {
		return 0, err
	}
	n, ok := smallInt(atom)
	if !ok {
		return 0, evalErrf(node, "%s requires int32 args", name)
	}
	return n, nil
}

func opStrlenFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	atoms, err := exactAtoms(args, "strlen", 1)
	if err != nil {
		return 0, nil, err
	}
	n := len(atoms[0])
	cost := uint64(strlenBaseCost) + uint64(n)*strlenCostPerByte
	result := NewUint(uint64(n))
	return mallocCost(cost, result), result, nil
}

func opConcatFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	atoms, err := atomArgs(args, "concat")
	if err != nil {
		return 0, nil, err
	}

	cost := uint64(concatBaseCost)
	var total int
	for _, atom := range atoms {
		cost += concatCostPerArg
		total += len(atom)
		if err := checkCost(cost, budget); err != nil {
			return 0, nil, err
		}
	}
	cost += uint64(total) * concatCostPerByte
	if err := checkCost(cost, budget); err != nil {
		return 0, nil, err
	}

	buf := make([]byte, 0, total)
	for _, atom := range atoms {
		buf = append(buf, atom...)
	}
	result := newAtomNoCopy(buf)
	return mallocCost(cost, result), result, nil
}

func opNotFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	items, err := exactArgs(args, "not", 1)
	if err != nil {
		return 0, nil, err
	}
	return boolBaseCost, boolAtom(!items[0].Bool()), nil
}

func opAnyFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	items, ok := args.ToList()
	if !ok {
		return 0, nil, evalErr(args, "any: bad argument list")
	}
	cost := uint64(boolBaseCost) + uint64(len(items))*boolCostPerArg
	for _, item := range items {
		if item.Bool() {
			return cost, One, nil
		}
	}
	return cost, Nil, nil
}

func opAllFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	items, ok := args.ToList()
	if !ok {
		return 0, nil, evalErr(args, "all: bad argument list")
	}
	cost := uint64(boolBaseCost) + uint64(len(items))*boolCostPerArg
	for _, item := range items {
		if !item.Bool() {
			return cost, Nil, nil
		}
	}
	return cost, One, nil
}

func opCoinIDFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	atoms, err := exactAtoms(args, "coinid", 3)
	if err != nil {
		return 0, nil, err
	}
	if len(atoms[0]) != 32 {
		return 0, nil, evalErr(args, "coinid: invalid parent coin id "+
			"(must be 32 bytes)")
	}
	if len(atoms[1]) != 32 {
		return 0, nil, evalErr(args, "coinid: invalid puzzle hash "+
			"(must be 32 bytes)")
	}

	amount, ok := BytesToUint64(atoms[2])
	if !ok || !bytes.Equal(Uint64ToBytes(amount), atoms[2]) {
		return 0, nil, evalErr(args, "coinid: invalid amount")
	}

	buf := make([]byte, 0, 64+len(atoms[2]))
	buf = append(buf, atoms[0]...)
	buf = append(buf, atoms[1]...)
	buf = append(buf, atoms[2]...)

	return coinIDCost, NewAtom(chainhash.HashB(buf)), nil
}

// opSoftforkFunc charges the cost declared by its first argument.  The
// guarded program is not evaluated and the result is always nil.
func opSoftforkFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	if !args.IsPair() {
		return 0, nil, evalErr(args, "softfork takes at least 1 "+
			"argument")
	}
	atom, err := atomArg(args.left, "softfork")
	if err != nil {
		return 0, nil, err
	}
	n := BytesToInt(atom)
	if n.Sign() <= 0 {
		return 0, nil, evalErr(args, "softfork: cost must be > 0")
	}
	if !n.IsUint64() {
		return 0, nil, ErrCostExceeded
	}

	cost := n.Uint64()
	if err := checkCost(cost, budget); err != nil {
		return 0, nil, err
	}
	return cost, Nil, nil
}

// opUnknown prices an operator the interpreter does not implement.  The last
// byte of the operator selects a cost function and the preceding bytes a
// multiplier.  The result is always nil.
func opUnknown(operator, args *SExp, budget uint64) (uint64, *SExp, error) {
	op := operator.atom
	if len(op) == 0 || (len(op) >= 2 && op[0] == 0xff && op[1] == 0xff) {
		return 0, nil, evalErr(operator, "reserved operator")
	}
	if len(op) > 5 {
		return 0, nil, evalErr(operator, "invalid operator")
	}

	var multiplier uint64
	for _, b := range op[:len(op)-1] {
		multiplier = multiplier<<8 | uint64(b)
	}
	multiplier++

	var cost uint64
	switch (op[len(op)-1] & 0xc0) >> 6 {
	case 0:
		cost = 1

	case 1:
		atoms, err := atomArgs(args, "unknown op")
		if err != nil {
			return 0, nil, err
		}
		cost = arithBaseCost
		var byteCount uint64
		for _, atom := range atoms {
			cost += arithCostPerArg
			byteCount += uint64(len(atom))
			if err := checkCost(cost, budget); err != nil {
				return 0, nil, err
			}
		}
		cost += byteCount * arithCostPerByte

	case 2:
		atoms, err := atomArgs(args, "unknown op")
		if err != nil {
			return 0, nil, err
		}
		cost = mulBaseCost
		if len(atoms) > 0 {
			l0 := uint64(len(atoms[0]))
			for _, atom := range atoms[1:] {
				l1 := uint64(len(atom))
				cost += mulCostPerOp
				cost += (l0 + l1) * mulLinearCostPerByte
				cost += (l0 * l1) / mulSquareCostPerByteDivider
				l0 += l1
				if err := checkCost(cost, budget); err != nil {
					return 0, nil, err
				}
			}
		}

	case 3:
		atoms, err := atomArgs(args, "unknown op")
		if err != nil {
			return 0, nil, err
		}
		cost = concatBaseCost
		var length uint64
		for _, atom := range atoms {
			cost += concatCostPerArg
			length += uint64(len(atom))
			if err := checkCost(cost, budget); err != nil {
				return 0, nil, err
			}
		}
		cost += length * concatCostPerByte
	}

	if err := checkCost(cost, budget); err != nil {
		return 0, nil, err
	}
	cost *= multiplier
	if cost >= 1<<32 {
		return 0, nil, evalErr(operator, "invalid operator")
	}

	log.Debugf("Charged unknown operator 0x%x cost %d", op, cost)

	return cost, Nil, nil
}
