// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clvm

// Operator opcodes.  Most are a single byte; the secp operators use four
// byte atoms.
const (
	opQuote              = 0x01
	opApply              = 0x02
	opIf                 = 0x03
	opCons               = 0x04
	opFirst              = 0x05
	opRest               = 0x06
	opListp              = 0x07
	opRaise              = 0x08
	opEq                 = 0x09
	opGrBytes            = 0x0a
	opSha256             = 0x0b
	opSubstr             = 0x0c
	opStrlen             = 0x0d
	opConcat             = 0x0e
	opAdd                = 0x10
	opSubtract           = 0x11
	opMultiply           = 0x12
	opDiv                = 0x13
	opDivmod             = 0x14
	opGr                 = 0x15
	opAsh                = 0x16
	opLsh                = 0x17
	opLogand             = 0x18
	opLogior             = 0x19
	opLogxor             = 0x1a
	opLognot             = 0x1b
	opPointAdd           = 0x1d
	opPubkeyForExp       = 0x1e
	opNot                = 0x20
	opAny                = 0x21
	opAll                = 0x22
	opSoftfork           = 0x24
	opCoinID             = 0x30
	opG1Subtract         = 0x31
	opG1Multiply         = 0x32
	opG1Negate           = 0x33
	opG2Add              = 0x34
	opG2Subtract         = 0x35
	opG2Multiply         = 0x36
	opG2Negate           = 0x37
	opG1Map              = 0x38
	opG2Map              = 0x39
	opBLSPairingIdentity = 0x3a
	opBLSVerify          = 0x3b
	opModpow             = 0x3c
	opMod                = 0x3d
	opKeccak256          = 0x3e
)

var (
	opSecp256k1Verify = []byte{0x13, 0xd6, 0x1f, 0x00}
	opSecp256r1Verify = []byte{0x1c, 0x3a, 0x8f, 0x00}
)

// Cost schedule, matching the reference interpreter.
const (
	quoteCost = 20
	applyCost = 90
	opCost    = 1

	traverseBaseCost        = 40
	traverseCostPerZeroByte = 4
	traverseCostPerBit      = 4

	ifCost    = 33
	consCost  = 50
	firstCost = 30
	restCost  = 30
	listpCost = 19

	mallocCostPerByte = 10

	eqBaseCost    = 117
	eqCostPerByte = 1

	grsBaseCost    = 117
	grsCostPerByte = 1

	grBaseCost    = 498
	grCostPerByte = 2

	sha256BaseCost    = 87
	sha256CostPerArg  = 134
	sha256CostPerByte = 2

	substrCost = 1

	strlenBaseCost    = 173
	strlenCostPerByte = 1

	concatBaseCost    = 142
	concatCostPerArg  = 135
	concatCostPerByte = 3

	arithBaseCost    = 99
	arithCostPerArg  = 320
	arithCostPerByte = 3

	mulBaseCost                 = 92
	mulCostPerOp                = 885
	mulLinearCostPerByte        = 6
	mulSquareCostPerByteDivider = 128

	divBaseCost    = 988
	divCostPerByte = 4

	divmodBaseCost    = 1116
	divmodCostPerByte = 6

	ashiftBaseCost    = 596
	ashiftCostPerByte = 3

	lshiftBaseCost    = 277
	lshiftCostPerByte = 3

	logBaseCost    = 100
	logCostPerArg  = 264
	logCostPerByte = 3

	lognotBaseCost    = 331
	lognotCostPerByte = 3

	boolBaseCost   = 200
	boolCostPerArg = 300

	pointAddBaseCost   = 101094
	pointAddCostPerArg = 1343980

	pubkeyBaseCost    = 1325730
	pubkeyCostPerByte = 38

	coinIDCost = 800

	g1SubtractBaseCost    = 101094
	g1SubtractCostPerArg  = 1343980
	g1MultiplyBaseCost    = 705500
	g1MultiplyCostPerByte = 10
	g1NegateCost          = 1396

	g2AddBaseCost         = 80000
	g2AddCostPerArg       = 1950000
	g2MultiplyBaseCost    = 2100000
	g2MultiplyCostPerByte = 5
	g2NegateCost          = 2164

	mapToG1BaseCost       = 195000
	mapToG1CostPerByte    = 4
	mapToG1CostPerDSTByte = 4
	mapToG2BaseCost       = 815000
	mapToG2CostPerByte    = 4
	mapToG2CostPerDSTByte = 4

	pairingBaseCost   = 3000000
	pairingCostPerArg = 1200000

	modpowBaseCost            = 17000
	modpowCostPerByteBase     = 38
	modpowCostPerByteExponent = 3
	modpowCostPerByteMod      = 21

	keccak256BaseCost    = 50
	keccak256CostPerArg  = 160
	keccak256CostPerByte = 2

	secp256k1VerifyCost = 1300000
	secp256r1VerifyCost = 1850000
)

// checkCost fails once an operator's running cost passes its budget.
func checkCost(cost, budget uint64) error {
	if cost > budget {
		return ErrCostExceeded
	}
	return nil
}

// mallocCost charges for the bytes of a freshly allocated atom.
func mallocCost(cost uint64, atom *SExp) uint64 {
	return cost + uint64(len(atom.atom))*mallocCostPerByte
}
