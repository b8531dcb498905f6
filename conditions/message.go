// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package conditions

// MessageSide selects which half of a message mode is decoded.
type MessageSide uint8

const (
	// Sender selects the upper three bits of the mode.
	Sender MessageSide = iota

	// Receiver selects the lower three bits of the mode.
	Receiver
)

// String returns the side as the prefix used for rendered fields.
func (s MessageSide) String() string {
	if s == Sender {
		return "sender"
	}
	return "receiver"
}

// Mode bits of one side of a message.
const (
	modeParent = 0b100
	modePuzzle = 0b010
	modeAmount = 0b001
)

// MessageFlags describes which parts of a coin one side of a message
// commits to.
type MessageFlags struct {
	Parent bool
	Puzzle bool
	Amount bool
}

// DecodeMessageMode extracts the flags of one side from a message mode.
// The sender uses bits 3 to 5 and the receiver bits 0 to 2.
func DecodeMessageMode(mode uint8, side MessageSide) MessageFlags {
	bits := mode & 0b111
	if side == Sender {
		bits = (mode >> 3) & 0b111
	}

	return MessageFlags{
		Parent: bits&modeParent != 0,
		Puzzle: bits&modePuzzle != 0,
		Amount: bits&modeAmount != 0,
	}
}

// All reports whether the side commits to the whole coin, in which case it
// is identified by coin id alone.
func (f MessageFlags) All() bool {
	return f.Parent && f.Puzzle && f.Amount
}

// Count returns the number of data items the side consumes.
func (f MessageFlags) Count() int {
	if f.All() {
		return 1
	}

	n := 0
	for _, set := range []bool{f.Parent, f.Puzzle, f.Amount} {
		if set {
			n++
		}
	}
	return n
}
