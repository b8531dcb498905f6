// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package unit provides a set of types for dealing with chia units.
package unit

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	// MojosPerXCH is the number of mojos in one XCH.
	MojosPerXCH = 1_000_000_000_000

	// MojosPerCAT is the number of mojos in one unit of a CAT.
	MojosPerCAT = 1_000

	xchDecimals = 12
	catDecimals = 3
)

// ErrInvalidAmount is returned when an amount string cannot be parsed.
var ErrInvalidAmount = errors.New("unit: invalid amount")

// Mojo is an amount in the smallest unit of value.
type Mojo uint64

// String returns the amount as grouped mojos.
func (m Mojo) String() string {
	return humanize.BigComma(new(big.Int).SetUint64(uint64(m))) + " mojos"
}

// XCH returns the amount in XCH without trailing zeros.
func (m Mojo) XCH() string {
	return formatDecimal(uint64(m), xchDecimals)
}

// CAT returns the amount as units of a CAT without trailing zeros.
func (m Mojo) CAT() string {
	return formatDecimal(uint64(m), catDecimals)
}

// Format renders the amount in the unit of its asset: XCH for "xch" and
// CAT units for anything else.
func (m Mojo) Format(asset, code string) string {
	if asset == "xch" {
		return m.XCH() + " XCH"
	}
	if code == "" {
		code = "CAT"
	}
	return m.CAT() + " " + code
}

// formatDecimal renders v scaled down by 10^decimals.
func formatDecimal(v uint64, decimals int) string {
	s := new(big.Rat).SetFrac(
		new(big.Int).SetUint64(v),
		new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil),
	).FloatString(decimals)

	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// ParseXCH parses a decimal XCH amount into mojos.
func ParseXCH(s string) (Mojo, error) {
	return parseDecimal(s, MojosPerXCH)
}

// ParseCAT parses a decimal CAT amount into mojos.
func ParseCAT(s string) (Mojo, error) {
	return parseDecimal(s, MojosPerCAT)
}

func parseDecimal(s string, scale int64) (Mojo, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok || r.Sign() < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	r.Mul(r, big.NewRat(scale, 1))
	if !r.IsInt() || !r.Num().IsUint64() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Mojo(r.Num().Uint64()), nil
}
