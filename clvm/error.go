// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clvm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSerialization is returned when program bytes cannot be
	// decoded.
	ErrInvalidSerialization = errors.New("clvm: invalid serialization")

	// ErrBackrefsDisabled is returned when a serialization uses
	// back-references while they are not allowed.
	ErrBackrefsDisabled = errors.New("clvm: back-references not allowed")

	// ErrCostExceeded is returned when execution goes over its cost budget.
	ErrCostExceeded = errors.New("clvm: cost exceeded")

	// ErrRaise is wrapped by the error produced by the x operator.
	ErrRaise = errors.New("clvm: raise")
)

// EvalError describes a failure while evaluating a program.  Node is the
// value the failing operation was looking at.
type EvalError struct {
	Node *SExp
	Msg  string
	Err  error
}

// Error satisfies the error interface.
func (e *EvalError) Error() string {
	if e.Node == nil {
		return "clvm: " + e.Msg
	}
	return fmt.Sprintf("clvm: %s: %s", e.Msg, Disassemble(e.Node))
}

// Unwrap returns the sentinel wrapped by the error, if any.
func (e *EvalError) Unwrap() error {
	return e.Err
}

func evalErr(node *SExp, msg string) error {
	return &EvalError{Node: node, Msg: msg}
}

func evalErrf(node *SExp, format string, args ...interface{}) error {
	return &EvalError{Node: node, Msg: fmt.Sprintf(format, args...)}
}
