// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package offer

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrEncoding indicates that the offer is not a bech32m string with
	// the offer prefix.
	ErrEncoding ErrorCode = iota

	// ErrUnknownVersion indicates that no compression dictionary is
	// registered for the version the offer declares.
	ErrUnknownVersion

	// ErrCompression indicates that the compressed payload could not be
	// inflated, or was larger than MaxDecompressedSize.
	ErrCompression

	// ErrSpendBundle indicates that the inflated payload is not a
	// serialized spend bundle.
	ErrSpendBundle
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrEncoding:       "ErrEncoding",
	ErrUnknownVersion: "ErrUnknownVersion",
	ErrCompression:    "ErrCompression",
	ErrSpendBundle:    "ErrSpendBundle",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error provides a single type for errors that can happen while decoding
// and encoding offers.
type Error struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
	Err         error     // Underlying error
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying error.
func (e Error) Unwrap() error {
	return e.Err
}

func offerError(c ErrorCode, desc string, err error) Error {
	return Error{ErrorCode: c, Description: desc, Err: err}
}

// IsError returns whether err is an Error with a matching error code.
func IsError(err error, code ErrorCode) bool {
	var e Error
	return errors.As(err, &e) && e.ErrorCode == code
}
