// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clvm

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

var (
	// DSTG1 is the default domain separation tag of g1_map.
	DSTG1 = []byte("BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_AUG_")

	// DSTG2 is the default domain separation tag of g2_map and the tag
	// used by the augmented signature scheme of bls_verify.
	DSTG2 = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_AUG_")

	groupOrder = fr.Modulus()
)

// maxDSTLength is the longest domain separation tag hash-to-curve accepts.
const maxDSTLength = 255

// g1Arg decodes a compressed G1 point argument.
func g1Arg(node *SExp, name string) (*bls12381.G1Affine, error) {
	atom, err := atomArg(node, name)
	if err != nil {
		return nil, err
	}
	if len(atom) != bls12381.SizeOfG1AffineCompressed {
		return nil, evalErrf(node, "%s: atom is not G1 size, 48 bytes",
			name)
	}
	var p bls12381.G1Affine
	if _, err := p.SetBytes(atom); err != nil {
		return nil, evalErrf(node, "%s: atom is not a G1 point", name)
	}
	return &p, nil
}

// g2Arg decodes a compressed G2 point argument.
func g2Arg(node *SExp, name string) (*bls12381.G2Affine, error) {
	atom, err := atomArg(node, name)
	if err != nil {
		return nil, err
	}
	if len(atom) != bls12381.SizeOfG2AffineCompressed {
		return nil, evalErrf(node, "%s: atom is not G2 size, 96 bytes",
			name)
	}
	var p bls12381.G2Affine
	if _, err := p.SetBytes(atom); err != nil {
		return nil, evalErrf(node, "%s: atom is not a G2 point", name)
	}
	return &p, nil
}

// scalarArg decodes an integer argument reduced into the scalar field.
func scalarArg(node *SExp, name string) (*big.Int, int, error) {
	atom, err := atomArg(node, name)
	if err != nil {
		return nil, 0, err
	}
	n := BytesToInt(atom)
	n.Mod(n, groupOrder)
	return n, len(atom), nil
}

func g1Result(cost uint64, p *bls12381.G1Affine) (uint64, *SExp, error) {
	b := p.Bytes()
	result := NewAtom(b[:])
	return mallocCost(cost, result), result, nil
}

func g2Result(cost uint64, p *bls12381.G2Affine) (uint64, *SExp, error) {
	b := p.Bytes()
	result := NewAtom(b[:])
	return mallocCost(cost, result), result, nil
}

// g1Fold adds the G1 points in args, subtracting all but the first when
// subtract is set.
func g1Fold(args *SExp, budget uint64, name string, base, perArg uint64,
	subtract bool) (uint64, *SExp, error) {

	items, ok := args.ToList()
	if !ok {
		return 0, nil, evalErrf(args, "%s: bad argument list", name)
	}

	cost := base
	var total bls12381.G1Affine
	for i, item := range items {
		cost += perArg
		if err := checkCost(cost, budget); err != nil {
			return 0, nil, err
		}
		p, err := g1Arg(item, name)
		if err != nil {
			return 0, nil, err
		}
		if i > 0 && subtract {
			total.Sub(&total, p)
		} else {
			total.Add(&total, p)
		}
	}

	return g1Result(cost, &total)
}

func opPointAddFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	return g1Fold(args, budget, "point_add", pointAddBaseCost,
		pointAddCostPerArg, false)
}

func opG1SubtractFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	return g1Fold(args, budget, "g1_subtract", g1SubtractBaseCost,
		g1SubtractCostPerArg, true)
}

func opPubkeyForExpFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	items, err := exactArgs(args, "pubkey_for_exp", 1)
	if err != nil {
		return 0, nil, err
	}
	exp, size, err := scalarArg(items[0], "pubkey_for_exp")
	if err != nil {
		return 0, nil, err
	}
	cost := uint64(pubkeyBaseCost) + uint64(size)*pubkeyCostPerByte

	_, _, g1, _ := bls12381.Generators()
	var p bls12381.G1Affine
	p.ScalarMultiplication(&g1, exp)

	return g1Result(cost, &p)
}

func opG1MultiplyFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	items, err := exactArgs(args, "g1_multiply", 2)
	if err != nil {
		return 0, nil, err
	}
	p, err := g1Arg(items[0], "g1_multiply")
	if err != nil {
		return 0, nil, err
	}
	k, size, err := scalarArg(items[1], "g1_multiply")
	if err != nil {
		return 0, nil, err
	}
	cost := uint64(g1MultiplyBaseCost) + uint64(size)*g1MultiplyCostPerByte
	if err := checkCost(cost, budget); err != nil {
		return 0, nil, err
	}

	var r bls12381.G1Affine
	r.ScalarMultiplication(p, k)
	return g1Result(cost, &r)
}

func opG1NegateFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	items, err := exactArgs(args, "g1_negate", 1)
	if err != nil {
		return 0, nil, err
	}
	p, err := g1Arg(items[0], "g1_negate")
	if err != nil {
		return 0, nil, err
	}
	var r bls12381.G1Affine
	r.Neg(p)
	return g1Result(g1NegateCost, &r)
}

// g2Fold is g1Fold over G2.
func g2Fold(args *SExp, budget uint64, name string,
	subtract bool) (uint64, *SExp, error) {

	items, ok := args.ToList()
	if !ok {
		return 0, nil, evalErrf(args, "%s: bad argument list", name)
	}

	cost := uint64(g2AddBaseCost)
	var total bls12381.G2Affine
	for i, item := range items {
		cost += g2AddCostPerArg
		if err := checkCost(cost, budget); err != nil {
			return 0, nil, err
		}
		p, err := g2Arg(item, name)
		if err != nil {
			return 0, nil, err
		}
		if i > 0 && subtract {
			total.Sub(&total, p)
		} else {
			total.Add(&total, p)
		}
	}

	return g2Result(cost, &total)
}

func opG2AddFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	return g2Fold(args, budget, "g2_add", false)
}

func opG2SubtractFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	return g2Fold(args, budget, "g2_subtract", true)
}

func opG2MultiplyFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	items, err := exactArgs(args, "g2_multiply", 2)
	if err != nil {
		return 0, nil, err
	}
	p, err := g2Arg(items[0], "g2_multiply")
	if err != nil {
		return 0, nil, err
	}
	k, size, err := scalarArg(items[1], "g2_multiply")
	if err != nil {
		return 0, nil, err
	}
	cost := uint64(g2MultiplyBaseCost) + uint64(size)*g2MultiplyCostPerByte
	if err := checkCost(cost, budget); err != nil {
		return 0, nil, err
	}

	var r bls12381.G2Affine
	r.ScalarMultiplication(p, k)
	return g2Result(cost, &r)
}

func opG2NegateFunc(args *SExp, _ uint64) (uint64, *SExp, error) {
	items, err := exactArgs(args, "g2_negate", 1)
	if err != nil {
		return 0, nil, err
	}
	p, err := g2Arg(items[0], "g2_negate")
	if err != nil {
		return 0, nil, err
	}
	var r bls12381.G2Affine
	r.Neg(p)
	return g2Result(g2NegateCost, &r)
}

// mapArgs decodes the message and optional domain separation tag of the
// hash-to-curve operators.
func mapArgs(args *SExp, name string, defaultDST []byte) ([]byte, []byte,
	error) {

	items, ok := args.ToList()
	if !ok || len(items) < 1 || len(items) > 2 {
		return nil, nil, evalErrf(args, "%s takes exactly 1 or 2 "+
			"arguments", name)
	}
	msg, err := atomArg(items[0], name)
	if err != nil {
		return nil, nil, err
	}
	dst := defaultDST
	if len(items) == 2 {
		if dst, err = atomArg(items[1], name); err != nil {
			return nil, nil, err
		}
	}
	if len(dst) > maxDSTLength {
		return nil, nil, evalErrf(args, "%s: dst too long", name)
	}
	return msg, dst, nil
}

func opG1MapFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	msg, dst, err := mapArgs(args, "g1_map", DSTG1)
	if err != nil {
		return 0, nil, err
	}
	cost := uint64(mapToG1BaseCost) +
		uint64(len(msg))*mapToG1CostPerByte +
		uint64(len(dst))*mapToG1CostPerDSTByte
	if err := checkCost(cost, budget); err != nil {
		return 0, nil, err
	}

	p, err := bls12381.HashToG1(msg, dst)
	if err != nil {
		return 0, nil, evalErrf(args, "g1_map: %v", err)
	}
	return g1Result(cost, &p)
}

func opG2MapFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	msg, dst, err := mapArgs(args, "g2_map", DSTG2)
	if err != nil {
		return 0, nil, err
	}
	cost := uint64(mapToG2BaseCost) +
		uint64(len(msg))*mapToG2CostPerByte +
		uint64(len(dst))*mapToG2CostPerDSTByte
	if err := checkCost(cost, budget); err != nil {
		return 0, nil, err
	}

	p, err := bls12381.HashToG2(msg, dst)
	if err != nil {
		return 0, nil, evalErrf(args, "g2_map: %v", err)
	}
	return g2Result(cost, &p)
}

// opBLSPairingIdentityFunc takes alternating G1 and G2 points and succeeds
// when the product of their pairings is the identity.
func opBLSPairingIdentityFunc(args *SExp, budget uint64) (uint64, *SExp,
	error) {

	items, ok := args.ToList()
	if !ok || len(items)%2 != 0 {
		return 0, nil, evalErr(args, "bls_pairing_identity: odd "+
			"number of arguments")
	}

	cost := uint64(pairingBaseCost)
	var (
		g1s []bls12381.G1Affine
		g2s []bls12381.G2Affine
	)
	for i := 0; i < len(items); i += 2 {
		cost += pairingCostPerArg
		if err := checkCost(cost, budget); err != nil {
			return 0, nil, err
		}
		p, err := g1Arg(items[i], "bls_pairing_identity")
		if err != nil {
			return 0, nil, err
		}
		q, err := g2Arg(items[i+1], "bls_pairing_identity")
		if err != nil {
			return 0, nil, err
		}
		g1s = append(g1s, *p)
		g2s = append(g2s, *q)
	}

	if len(g1s) > 0 {
		ok, err := bls12381.PairingCheck(g1s, g2s)
		if err != nil || !ok {
			return 0, nil, evalErr(args, "bls_pairing_identity failed")
		}
	}
	return cost, Nil, nil
}

// opBLSVerifyFunc checks an aggregate signature over (public key, message)
// pairs using the augmented scheme, where each message is prefixed with its
// public key before hashing.
func opBLSVerifyFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	items, ok := args.ToList()
	if !ok || len(items) < 1 || len(items)%2 != 1 {
		return 0, nil, evalErr(args, "bls_verify: bad arguments")
	}

	cost := uint64(pairingBaseCost)
	if err := checkCost(cost, budget); err != nil {
		return 0, nil, err
	}
	sig, err := g2Arg(items[0], "bls_verify")
	if err != nil {
		return 0, nil, err
	}

	_, _, g1, _ := bls12381.Generators()
	var negG1 bls12381.G1Affine
	negG1.Neg(&g1)

	g1s := []bls12381.G1Affine{negG1}
	g2s := []bls12381.G2Affine{*sig}
	for i := 1; i < len(items); i += 2 {
		pk, err := g1Arg(items[i], "bls_verify")
		if err != nil {
			return 0, nil, err
		}
		msg, err := atomArg(items[i+1], "bls_verify")
		if err != nil {
			return 0, nil, err
		}

		cost += pairingCostPerArg + mapToG2BaseCost +
			uint64(len(msg))*mapToG2CostPerByte +
			uint64(len(DSTG2))*mapToG2CostPerDSTByte
		if err := checkCost(cost, budget); err != nil {
			return 0, nil, err
		}

		pkBytes := pk.Bytes()
		aug := append(pkBytes[:], msg...)
		h, err := bls12381.HashToG2(aug, DSTG2)
		if err != nil {
			return 0, nil, evalErrf(args, "bls_verify: %v", err)
		}

		g1s = append(g1s, *pk)
		g2s = append(g2s, h)
	}

	if ok, err := bls12381.PairingCheck(g1s, g2s); err != nil || !ok {
		return 0, nil, evalErr(args, "bls_verify failed")
	}
	return cost, Nil, nil
}
