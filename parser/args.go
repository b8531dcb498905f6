// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parser

import (
	"fmt"

	"github.com/xchdev/explorer/puzzles"
)

// ArgKind tells a presentation layer how a rendered value may be used.  It
// is shared with the layer decoder.
type ArgKind = puzzles.ArgKind

// Argument kinds.
const (
	CoinID      = puzzles.CoinID
	Copiable    = puzzles.Copiable
	NonCopiable = puzzles.NonCopiable
)

// missing is rendered in place of an expected atom that is absent.
const missing = "Missing"

// Arg is one rendered argument of a condition.
type Arg struct {
	Key   string  `json:"key"`
	Value string  `json:"value"`
	Kind  ArgKind `json:"kind"`
}

// Args is an insertion ordered set of arguments.
type Args []Arg

// Get returns the argument with the given key.
func (a Args) Get(key string) (Arg, bool) {
	for _, arg := range a {
		if arg.Key == key {
			return arg, true
		}
	}
	return Arg{}, false
}

// Keys returns the argument keys in order.
func (a Args) Keys() []string {
	keys := make([]string, len(a))
	for i, arg := range a {
		keys[i] = arg.Key
	}
	return keys
}

// set replaces the value of an existing key in place, or appends it.
func (a *Args) set(key, value string, kind ArgKind) {
	for i := range *a {
		if (*a)[i].Key == key {
			(*a)[i].Value = value
			(*a)[i].Kind = kind
			return
		}
	}
	*a = append(*a, Arg{Key: key, Value: value, Kind: kind})
}

// setMissing records an absent value.
func (a *Args) setMissing(key string) {
	a.set(key, missing, NonCopiable)
}

// Category groups conditions by what they do.
type Category uint8

// Condition categories.
const (
	CategoryOutput Category = iota
	CategoryAssertion
	CategoryTimelock
	CategoryAnnouncement
	CategoryMessage
	CategoryAggSig
	CategoryOther
)

var categoryStrings = map[Category]string{
	CategoryOutput:       "output",
	CategoryAssertion:    "assertion",
	CategoryTimelock:     "timelock",
	CategoryAnnouncement: "announcement",
	CategoryMessage:      "message",
	CategoryAggSig:       "agg_sig",
	CategoryOther:        "other",
}

// String returns the Category as a human-readable name.
func (c Category) String() string {
	if s := categoryStrings[c]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown Category (%d)", uint8(c))
}

// MarshalText encodes the category as its name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
