// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package clvm implements the Chia Lisp virtual machine value model and the
pieces of the VM the explorer needs to look inside spends.

Values are represented by SExp, an immutable binary tree whose leaves are
byte strings.  The package provides

  - the canonical serialization, with optional back-reference support
  - the standard tree hash and curried tree hash computation
  - currying and uncurrying of programs
  - an interpreter with the consensus cost schedule, used to run a puzzle
    against its solution and collect the conditions it outputs
  - a disassembler producing the conventional textual form

Running a puzzle:

	puzzle, err := clvm.Deserialize(puzzleBytes, true)
	...
	solution, err := clvm.Deserialize(solutionBytes, true)
	...
	red, err := clvm.Run(puzzle, solution, clvm.MaxBlockCost, 0)
	...
	for _, cond := range red.Result.Items() {
		...
	}
*/
package clvm
