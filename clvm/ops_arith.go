// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clvm

import (
	"math/big"
)

// maxShift bounds the shift amount accepted by ash and lsh.
const maxShift = 65535

// intArgs decodes every argument as a signed integer, also returning the
// atom lengths used for costing.
func intArgs(args *SExp, name string) ([]*big.Int, []int, error) {
	atoms, err := atomArgs(args, name)
	if err != nil {
		return nil, nil, err
	}
	ints := make([]*big.Int, len(atoms))
	sizes := make([]int, len(atoms))
	for i, atom := range atoms {
		ints[i] = BytesToInt(atom)
		sizes[i] = len(atom)
	}
	return ints, sizes, nil
}

// exactInts is intArgs for operators with a fixed arity.
func exactInts(args *SExp, name string, n int) ([]*big.Int, []int, error) {
	if _, err := exactArgs(args, name, n); err != nil {
		return nil, nil, err
	}
	return intArgs(args, name)
}

// limbs returns the number of bytes needed for the magnitude of n.
func limbs(n *big.Int) uint64 {
	return uint64((n.BitLen() + 7) / 8)
}

// floorDivMod divides rounding toward negative infinity, so the remainder
// takes the sign of the divisor.
func floorDivMod(a, b *big.Int) (*big.Int, *big.Int) {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 && r.Sign() != b.Sign() {
		q.Sub(q, bigOne)
		r.Add(r, b)
	}
	return q, r
}

func opAddFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	return arith(args, budget, "+", func(total, v *big.Int, first bool) {
		total.Add(total, v)
	})
}

func opSubtractFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	return arith(args, budget, "-", func(total, v *big.Int, first bool) {
		if first {
			total.Add(total, v)
			return
		}
		total.Sub(total, v)
	})
}

// arith implements the linearly priced variadic operators.
func arith(args *SExp, budget uint64, name string,
	step func(total, v *big.Int, first bool)) (uint64, *SExp, error) {

	ints, sizes, err := intArgs(args, name)
	if err != nil {
		return 0, nil, err
	}

	cost := uint64(arithBaseCost)
	var byteCount uint64
	total := new(big.Int)
	for i, v := range ints {
		cost += arithCostPerArg
		byteCount += uint64(sizes[i])
		if err := checkCost(cost+byteCount*arithCostPerByte,
			budget); err != nil {

			return 0, nil, err
		}
		step(total, v, i == 0)
	}
	cost += byteCount * arithCostPerByte

	result := NewInt(total)
	return mallocCost(cost, result), result, nil
}

func opMultiplyFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	ints, sizes, err := intArgs(args, "*")
	if err != nil {
		return 0, nil, err
	}

	cost := uint64(mulBaseCost)
	if len(ints) == 0 {
		return mallocCost(cost, One), One, nil
	}

	total := new(big.Int).Set(ints[0])
	l0 := uint64(sizes[0])
	for i := 1; i < len(ints); i++ {
		l1 := uint64(sizes[i])
		cost += mulCostPerOp
		cost += (l0 + l1) * mulLinearCostPerByte
		cost += (l0 * l1) / mulSquareCostPerByteDivider
		if err := checkCost(cost, budget); err != nil {
			return 0, nil, err
		}

		total.Mul(total, ints[i])
		l0 = limbs(total)
	}

	result := NewInt(total)
	return mallocCost(cost, result), result, nil
}

func opDivFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	ints, sizes, err := exactInts(args, "/", 2)
	if err != nil {
		return 0, nil, err
	}
	cost := uint64(divBaseCost) + uint64(sizes[0]+sizes[1])*divCostPerByte
	if ints[1].Sign() == 0 {
		return 0, nil, evalErr(args, "div with 0")
	}

	q, _ := floorDivMod(ints[0], ints[1])
	result := NewInt(q)
	return mallocCost(cost, result), result, nil
}

func opDivmodFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	ints, sizes, err := exactInts(args, "divmod", 2)
	if err != nil {
		return 0, nil, err
	}
	cost := uint64(divmodBaseCost) +
		uint64(sizes[0]+sizes[1])*divmodCostPerByte
	if ints[1].Sign() == 0 {
		return 0, nil, evalErr(args, "divmod with 0")
	}

	q, r := floorDivMod(ints[0], ints[1])
	qNode, rNode := NewInt(q), NewInt(r)
	cost = mallocCost(mallocCost(cost, qNode), rNode)
	return cost, NewPair(qNode, rNode), nil
}

func opModFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	ints, sizes, err := exactInts(args, "mod", 2)
	if err != nil {
		return 0, nil, err
	}
	cost := uint64(divBaseCost) + uint64(sizes[0]+sizes[1])*divCostPerByte
	if ints[1].Sign() == 0 {
		return 0, nil, evalErr(args, "mod with 0")
	}

	_, r := floorDivMod(ints[0], ints[1])
	result := NewInt(r)
	return mallocCost(cost, result), result, nil
}

func opGrFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	ints, sizes, err := exactInts(args, ">", 2)
	if err != nil {
		return 0, nil, err
	}
	cost := uint64(grBaseCost) + uint64(sizes[0]+sizes[1])*grCostPerByte
	return cost, boolAtom(ints[0].Cmp(ints[1]) > 0), nil
}

// shiftArgs decodes the value and shift amount of ash and lsh.
func shiftArgs(args *SExp, name string) ([]byte, int64, error) {
	items, err := exactArgs(args, name, 2)
	if err != nil {
		return nil, 0, err
	}
	value, err := atomArg(items[0], name)
	if err != nil {
		return nil, 0, err
	}
	shift, err := int32Arg(items[1], name)
	if err != nil {
		return nil, 0, err
	}
	if shift > maxShift || shift < -maxShift {
		return nil, 0, evalErr(items[1], "shift too large")
	}
	return value, shift, nil
}

func opAshFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	value, shift, err := shiftArgs(args, "ash")
	if err != nil {
		return 0, nil, err
	}

	n := BytesToInt(value)
	if shift >= 0 {
		n.Lsh(n, uint(shift))
	} else {
		// Rsh on a negative big.Int rounds toward negative infinity.
		n.Rsh(n, uint(-shift))
	}

	result := NewInt(n)
	cost := uint64(ashiftBaseCost) +
		uint64(len(value)+len(result.atom))*ashiftCostPerByte
	return mallocCost(cost, result), result, nil
}

func opLshFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	value, shift, err := shiftArgs(args, "lsh")
	if err != nil {
		return 0, nil, err
	}

	// The value is treated as unsigned.
	n := new(big.Int).SetBytes(value)
	if shift >= 0 {
		n.Lsh(n, uint(shift))
	} else {
		n.Rsh(n, uint(-shift))
	}

	result := NewInt(n)
	cost := uint64(lshiftBaseCost) +
		uint64(len(value)+len(result.atom))*lshiftCostPerByte
	return mallocCost(cost, result), result, nil
}

// logic implements the bitwise variadic operators.
func logic(args *SExp, budget uint64, name string, init int64,
	step func(total, v *big.Int)) (uint64, *SExp, error) {

	ints, sizes, err := intArgs(args, name)
	if err != nil {
		return 0, nil, err
	}

	cost := uint64(logBaseCost)
	var byteCount uint64
	total := big.NewInt(init)
	for i, v := range ints {
		cost += logCostPerArg
		byteCount += uint64(sizes[i])
		if err := checkCost(cost+byteCount*logCostPerByte,
			budget); err != nil {

			return 0, nil, err
		}
		step(total, v)
	}
	cost += byteCount * logCostPerByte

	result := NewInt(total)
	return mallocCost(cost, result), result, nil
}

func opLogandFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	return logic(args, budget, "logand", -1, func(total, v *big.Int) {
		total.And(total, v)
	})
}

func opLogiorFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	return logic(args, budget, "logior", 0, func(total, v *big.Int) {
		total.Or(total, v)
	})
}

func opLogxorFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	return logic(args, budget, "logxor", 0, func(total, v *big.Int) {
		total.Xor(total, v)
	})
}

func opLognotFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	atoms, err := exactAtoms(args, "lognot", 1)
	if err != nil {
		return 0, nil, err
	}
	n := BytesToInt(atoms[0])
	n.Not(n)

	result := NewInt(n)
	cost := uint64(lognotBaseCost) +
		uint64(len(atoms[0]))*lognotCostPerByte
	return mallocCost(cost, result), result, nil
}

// opModpowFunc computes base^exp mod m.  The result takes the sign of the
// modulus.
func opModpowFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	ints, sizes, err := exactInts(args, "modpow", 3)
	if err != nil {
		return 0, nil, err
	}
	base, exp, mod := ints[0], ints[1], ints[2]

	cost := uint64(modpowBaseCost)
	cost += uint64(sizes[0]) * modpowCostPerByteBase
	cost += uint64(sizes[1]*sizes[1]) * modpowCostPerByteExponent
	if err := checkCost(cost, budget); err != nil {
		return 0, nil, err
	}
	cost += uint64(sizes[2]*sizes[2]) * modpowCostPerByteMod
	if err := checkCost(cost, budget); err != nil {
		return 0, nil, err
	}

	if exp.Sign() < 0 {
		return 0, nil, evalErr(args, "modpow with negative exponent")
	}
	if mod.Sign() == 0 {
		return 0, nil, evalErr(args, "modpow with 0 modulus")
	}

	abs := new(big.Int).Abs(mod)
	reduced := new(big.Int).Mod(base, abs)
	r := new(big.Int).Exp(reduced, exp, abs)
	if mod.Sign() < 0 && r.Sign() != 0 {
		r.Add(r, mod)
	}

	result := NewInt(r)
	return mallocCost(cost, result), result, nil
}
