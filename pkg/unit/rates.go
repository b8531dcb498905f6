// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package unit

import (
	"math/big"

	"github.com/dustin/go-humanize"
)

const (
	// CostPerKilo is the number of cost units in a kilo-cost.
	CostPerKilo = 1000

	// floatStringPrecision is the number of decimal places to use when
	// converting a fee rate to a string.
	floatStringPrecision = 2
)

// Cost is the CLVM cost of a spend or bundle.
type Cost uint64

// String returns the grouped cost.
func (c Cost) String() string {
	return humanize.BigComma(new(big.Int).SetUint64(uint64(c))) + " cost"
}

// MojoPerCost represents a fee rate in mojo/cost. The fee rate is encoded as a
// big.Rat to allow for fractional fee rates.
type MojoPerCost struct {
	*big.Rat
}

// NewMojoPerCost creates a new fee rate in mojo/cost. The given fee and cost
// are used to calculate the fee rate.
func NewMojoPerCost(fee Mojo, cost Cost) MojoPerCost {
	if cost == 0 {
		return MojoPerCost{big.NewRat(0, 1)}
	}

	return MojoPerCost{new(big.Rat).SetFrac(
		new(big.Int).SetUint64(uint64(fee)),
		new(big.Int).SetUint64(uint64(cost)),
	)}
}

// FeeForCost calculates the fee resulting from this fee rate and the given
// cost, rounded down.
func (m MojoPerCost) FeeForCost(cost Cost) Mojo {
	fee := m.fee(cost)
	return Mojo(new(big.Int).Quo(fee.Num(), fee.Denom()).Uint64())
}

// FeeForCostRoundUp calculates the fee resulting from this fee rate and the
// given cost, rounding up to the nearest mojo.
func (m MojoPerCost) FeeForCostRoundUp(cost Cost) Mojo {
	fee := m.fee(cost)

	// The ceiling is (numerator + denominator - 1) / denominator.
	num := new(big.Int).Add(fee.Num(), fee.Denom())
	num.Sub(num, big.NewInt(1))
	num.Quo(num, fee.Denom())

	return Mojo(num.Uint64())
}

func (m MojoPerCost) fee(cost Cost) *big.Rat {
	return new(big.Rat).Mul(
		m.Rat, new(big.Rat).SetInt(new(big.Int).SetUint64(uint64(cost))),
	)
}

// FeePerKCost converts the current fee rate from mojo/cost to mojo/kcost.
func (m MojoPerCost) FeePerKCost() MojoPerKCost {
	return MojoPerKCost{
		new(big.Rat).Mul(m.Rat, big.NewRat(CostPerKilo, 1)),
	}
}

// String returns a human-readable string of the fee rate.
func (m MojoPerCost) String() string {
	return m.FloatString(floatStringPrecision) + " mojo/cost"
}

// Equal returns true if the fee rate is equal to the other fee rate.
func (m MojoPerCost) Equal(other MojoPerCost) bool {
	return m.Cmp(other.Rat) == 0
}

// GreaterThan returns true if the fee rate is greater than the other fee rate.
func (m MojoPerCost) GreaterThan(other MojoPerCost) bool {
	return m.Cmp(other.Rat) > 0
}

// LessThan returns true if the fee rate is less than the other fee rate.
func (m MojoPerCost) LessThan(other MojoPerCost) bool {
	return m.Cmp(other.Rat) < 0
}

// MojoPerKCost represents a fee rate in mojo per thousand cost.
type MojoPerKCost struct {
	*big.Rat
}

// FeePerCost converts the current fee rate from mojo/kcost to mojo/cost.
func (m MojoPerKCost) FeePerCost() MojoPerCost {
	return MojoPerCost{
		new(big.Rat).Mul(m.Rat, big.NewRat(1, CostPerKilo)),
	}
}

// String returns a human-readable string of the fee rate.
func (m MojoPerKCost) String() string {
	return m.FloatString(floatStringPrecision) + " mojo/kcost"
}
