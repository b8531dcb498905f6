// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package conditions decodes the condition lists that puzzles output when
// they are run, and the mode byte of the message conditions.
package conditions

import "fmt"

// Opcode identifies a condition by the integer in its first position.
type Opcode uint8

// These constants define the condition opcodes.  The AGG_SIG variants are
// listed in the order they are matched in.
const (
	OpRemark                      Opcode = 1
	OpAggSigParent                Opcode = 43
	OpAggSigPuzzle                Opcode = 44
	OpAggSigAmount                Opcode = 45
	OpAggSigPuzzleAmount          Opcode = 46
	OpAggSigParentAmount          Opcode = 47
	OpAggSigParentPuzzle          Opcode = 48
	OpAggSigUnsafe                Opcode = 49
	OpAggSigMe                    Opcode = 50
	OpCreateCoin                  Opcode = 51
	OpReserveFee                  Opcode = 52
	OpCreateCoinAnnouncement      Opcode = 60
	OpAssertCoinAnnouncement      Opcode = 61
	OpCreatePuzzleAnnouncement    Opcode = 62
	OpAssertPuzzleAnnouncement    Opcode = 63
	OpAssertConcurrentSpend       Opcode = 64
	OpAssertConcurrentPuzzle      Opcode = 65
	OpSendMessage                 Opcode = 66
	OpReceiveMessage              Opcode = 67
	OpAssertMyCoinID              Opcode = 70
	OpAssertMyParentID            Opcode = 71
	OpAssertMyPuzzleHash          Opcode = 72
	OpAssertMyAmount              Opcode = 73
	OpAssertMyBirthSeconds        Opcode = 74
	OpAssertMyBirthHeight         Opcode = 75
	OpAssertEphemeral             Opcode = 76
	OpAssertSecondsRelative       Opcode = 80
	OpAssertSecondsAbsolute       Opcode = 81
	OpAssertHeightRelative        Opcode = 82
	OpAssertHeightAbsolute        Opcode = 83
	OpAssertBeforeSecondsRelative Opcode = 84
	OpAssertBeforeSecondsAbsolute Opcode = 85
	OpAssertBeforeHeightRelative  Opcode = 86
	OpAssertBeforeHeightAbsolute  Opcode = 87
	OpSoftfork                    Opcode = 90
)

// opcodeStrings is a map of opcodes back to their constant names for pretty
// printing.
var opcodeStrings = map[Opcode]string{
	OpRemark:                      "REMARK",
	OpAggSigParent:                "AGG_SIG_PARENT",
	OpAggSigPuzzle:                "AGG_SIG_PUZZLE",
	OpAggSigAmount:                "AGG_SIG_AMOUNT",
	OpAggSigPuzzleAmount:          "AGG_SIG_PUZZLE_AMOUNT",
	OpAggSigParentAmount:          "AGG_SIG_PARENT_AMOUNT",
	OpAggSigParentPuzzle:          "AGG_SIG_PARENT_PUZZLE",
	OpAggSigUnsafe:                "AGG_SIG_UNSAFE",
	OpAggSigMe:                    "AGG_SIG_ME",
	OpCreateCoin:                  "CREATE_COIN",
	OpReserveFee:                  "RESERVE_FEE",
	OpCreateCoinAnnouncement:      "CREATE_COIN_ANNOUNCEMENT",
	OpAssertCoinAnnouncement:      "ASSERT_COIN_ANNOUNCEMENT",
	OpCreatePuzzleAnnouncement:    "CREATE_PUZZLE_ANNOUNCEMENT",
	OpAssertPuzzleAnnouncement:    "ASSERT_PUZZLE_ANNOUNCEMENT",
	OpAssertConcurrentSpend:       "ASSERT_CONCURRENT_SPEND",
	OpAssertConcurrentPuzzle:      "ASSERT_CONCURRENT_PUZZLE",
	OpSendMessage:                 "SEND_MESSAGE",
	OpReceiveMessage:              "RECEIVE_MESSAGE",
	OpAssertMyCoinID:              "ASSERT_MY_COIN_ID",
	OpAssertMyParentID:            "ASSERT_MY_PARENT_ID",
	OpAssertMyPuzzleHash:          "ASSERT_MY_PUZZLE_HASH",
	OpAssertMyAmount:              "ASSERT_MY_AMOUNT",
	OpAssertMyBirthSeconds:        "ASSERT_MY_BIRTH_SECONDS",
	OpAssertMyBirthHeight:         "ASSERT_MY_BIRTH_HEIGHT",
	OpAssertEphemeral:             "ASSERT_EPHEMERAL",
	OpAssertSecondsRelative:       "ASSERT_SECONDS_RELATIVE",
	OpAssertSecondsAbsolute:       "ASSERT_SECONDS_ABSOLUTE",
	OpAssertHeightRelative:        "ASSERT_HEIGHT_RELATIVE",
	OpAssertHeightAbsolute:        "ASSERT_HEIGHT_ABSOLUTE",
	OpAssertBeforeSecondsRelative: "ASSERT_BEFORE_SECONDS_RELATIVE",
	OpAssertBeforeSecondsAbsolute: "ASSERT_BEFORE_SECONDS_ABSOLUTE",
	OpAssertBeforeHeightRelative:  "ASSERT_BEFORE_HEIGHT_RELATIVE",
	OpAssertBeforeHeightAbsolute:  "ASSERT_BEFORE_HEIGHT_ABSOLUTE",
	OpSoftfork:                    "SOFTFORK",
}

// String returns the Opcode as the name used by the node software.
func (o Opcode) String() string {
	if s, ok := opcodeStrings[o]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Opcode (%d)", uint8(o))
}

// Known reports whether the opcode is a condition this package decodes.
func (o Opcode) Known() bool {
	_, ok := opcodeStrings[o]
	return ok
}

// IsAggSig reports whether the opcode is one of the AGG_SIG variants.
func (o Opcode) IsAggSig() bool {
	return o >= OpAggSigParent && o <= OpAggSigMe
}

// IsTimelock reports whether the opcode is one of the relative or absolute
// height and seconds locks.
func (o Opcode) IsTimelock() bool {
	return o >= OpAssertSecondsRelative && o <= OpAssertBeforeHeightAbsolute
}

// IsHeight reports whether a timelock or birth assertion is on height
// rather than seconds.
func (o Opcode) IsHeight() bool {
	switch o {
	case OpAssertMyBirthHeight, OpAssertHeightRelative,
		OpAssertHeightAbsolute, OpAssertBeforeHeightRelative,
		OpAssertBeforeHeightAbsolute:

		return true
	}
	return false
}
