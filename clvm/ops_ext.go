// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clvm

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

func opKeccak256Func(args *SExp, budget uint64) (uint64, *SExp, error) {
	atoms, err := atomArgs(args, "keccak256")
	if err != nil {
		return 0, nil, err
	}

	cost := uint64(keccak256BaseCost)
	var byteCount uint64
	h := sha3.NewLegacyKeccak256()
	for _, atom := range atoms {
		cost += keccak256CostPerArg
		byteCount += uint64(len(atom))
		err := checkCost(cost+byteCount*keccak256CostPerByte, budget)
		if err != nil {
			return 0, nil, err
		}
		h.Write(atom)
	}
	cost += byteCount * keccak256CostPerByte

	result := newAtomNoCopy(h.Sum(nil))
	return mallocCost(cost, result), result, nil
}

// secpArgs decodes the (pubkey message signature) arguments shared by both
// secp verification operators.
func secpArgs(args *SExp, name string) ([]byte, []byte, []byte, error) {
	atoms, err := exactAtoms(args, name, 3)
	if err != nil {
		return nil, nil, nil, err
	}
	pub, msg, sig := atoms[0], atoms[1], atoms[2]
	if len(pub) != 33 {
		return nil, nil, nil, evalErrf(args, "%s: pubkey is not valid",
			name)
	}
	if len(msg) != 32 {
		return nil, nil, nil, evalErrf(args, "%s: message digest is "+
			"not 32 bytes", name)
	}
	if len(sig) != 64 {
		return nil, nil, nil, evalErrf(args, "%s: signature is not "+
			"valid", name)
	}
	return pub, msg, sig, nil
}

func opSecp256k1VerifyFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	const name = "secp256k1_verify"

	cost := uint64(secp256k1VerifyCost)
	if err := checkCost(cost, budget); err != nil {
		return 0, nil, err
	}
	pubBytes, msg, sigBytes, err := secpArgs(args, name)
	if err != nil {
		return 0, nil, err
	}

	pub, err := secp256k1.ParsePubKey(pubBytes)
	if err != nil {
		return 0, nil, evalErrf(args, "%s: pubkey is not valid", name)
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sigBytes[:32]); overflow {
		return 0, nil, evalErrf(args, "%s: signature is not valid", name)
	}
	if overflow := s.SetByteSlice(sigBytes[32:]); overflow {
		return 0, nil, evalErrf(args, "%s: signature is not valid", name)
	}

	sig := secpecdsa.NewSignature(&r, &s)
	if !sig.Verify(msg, pub) {
		return 0, nil, evalErrf(args, "%s failed", name)
	}
	return cost, Nil, nil
}

func opSecp256r1VerifyFunc(args *SExp, budget uint64) (uint64, *SExp, error) {
	const name = "secp256r1_verify"

	cost := uint64(secp256r1VerifyCost)
	if err := checkCost(cost, budget); err != nil {
		return 0, nil, err
	}
	pubBytes, msg, sigBytes, err := secpArgs(args, name)
	if err != nil {
		return 0, nil, err
	}

	curve := elliptic.P256()
	x, y := elliptic.UnmarshalCompressed(curve, pubBytes)
	if x == nil {
		return 0, nil, evalErrf(args, "%s: pubkey is not valid", name)
	}
	pub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}

	r := new(big.Int).SetBytes(sigBytes[:32])
	s := new(big.Int).SetBytes(sigBytes[32:])
	if !ecdsa.Verify(pub, msg, r, s) {
		return 0, nil, evalErrf(args, "%s failed", name)
	}
	return cost, Nil, nil
}
