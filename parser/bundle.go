// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parser

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/xchdev/explorer/clvm"
	"github.com/xchdev/explorer/puzzles"
	"github.com/xchdev/explorer/wire"
)

// Options control how spends are run and recognised.
type Options struct {
	// MaxCost bounds the execution cost of each spend.
	MaxCost uint64

	// AllowBackrefs accepts serialized programs that use back
	// references.
	AllowBackrefs bool

	// FailFast makes a spend that fails to run fail the whole parse.
	FailFast bool

	// Templates holds the mod hashes puzzles are recognised by.
	Templates *puzzles.Templates
}

// Option is a functional option for the parse entry points.
type Option func(*Options)

// WithMaxCost sets the execution cost limit of each spend.
func WithMaxCost(cost uint64) Option {
	return func(o *Options) {
		o.MaxCost = cost
	}
}

// WithBackrefs allows back references in serialized programs.
func WithBackrefs() Option {
	return func(o *Options) {
		o.AllowBackrefs = true
	}
}

// WithFailFast makes the parse fail on the first spend that cannot be run.
func WithFailFast() Option {
	return func(o *Options) {
		o.FailFast = true
	}
}

// WithTemplates replaces the puzzle templates.
func WithTemplates(t *puzzles.Templates) Option {
	return func(o *Options) {
		o.Templates = t
	}
}

func newOptions(opts []Option) *Options {
	o := &Options{
		MaxCost: clvm.MaxBlockCost,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Templates == nil {
		o.Templates = puzzles.DefaultTemplates()
	}
	return o
}

// ParsedSpendBundle is a spend bundle rendered for display.
type ParsedSpendBundle struct {
	CoinSpends          []ParsedCoinSpend `json:"coin_spends"`
	AggregatedSignature string            `json:"aggregated_signature"`
	Fee                 string            `json:"fee"`
	TotalCost           string            `json:"total_cost"`
	Hash                string            `json:"hash"`

	totalCost uint64
}

// RawTotalCost returns the summed cost of every spend as a number.
func (p *ParsedSpendBundle) RawTotalCost() uint64 {
	return p.totalCost
}

// Outputs returns the coins created by every spend, in order.
func (p *ParsedSpendBundle) Outputs() []ParsedCoin {
	var out []ParsedCoin
	for i := range p.CoinSpends {
		out = append(out, p.CoinSpends[i].Outputs...)
	}
	return out
}

// buildContext runs every spend and collects what they say about each
// other.
func buildContext(spends []wire.CoinSpend, selfContained bool,
	o *Options) ([]ExecutedSpend, *Context, error) {

	executed := make([]ExecutedSpend, 0, len(spends))
	b := NewContextBuilder(selfContained)
	for _, cs := range spends {
		es, err := executeSpend(cs, o)
		if err != nil {
			return nil, nil, err
		}
		if err := b.AddSpend(cs.Coin, es.Decoded); err != nil {
			return nil, nil, err
		}
		executed = append(executed, es)
	}

	ctx := b.Freeze()
	log.Tracef("Bundle context: %v", newLogClosure(func() string {
		return spew.Sdump(ctx)
	}))

	return executed, ctx, nil
}

// ParseSpendBundle runs every spend of a bundle and renders the bundle.  A
// self contained bundle is expected to carry every spend its conditions
// refer to, and is checked for dangling references.
//
// A spend that fails to run is reported on its ParsedCoinSpend unless
// WithFailFast is given, in which case an Error with code ErrExecution or
// ErrDeserialize is returned.
func ParseSpendBundle(bundle *wire.SpendBundle, selfContained bool,
	opts ...Option) (*ParsedSpendBundle, error) {

	o := newOptions(opts)

	executed, ctx, err := buildContext(bundle.CoinSpends, selfContained, o)
	if err != nil {
		return nil, err
	}

	psb := &ParsedSpendBundle{
		CoinSpends:          make([]ParsedCoinSpend, 0, len(executed)),
		AggregatedSignature: bundle.AggregatedSignature.String(),
		Fee:                 "0",
		Hash:                bundle.Hash().String(),
	}
	for i := range executed {
		pcs := ParseCoinSpend(&executed[i], ctx, o.Templates)
		psb.totalCost += pcs.cost
		psb.CoinSpends = append(psb.CoinSpends, pcs)
	}
	psb.TotalCost = formatCost(psb.totalCost)

	log.Debugf("Parsed bundle %v: %d spends, cost %v", psb.Hash,
		len(psb.CoinSpends), psb.TotalCost)

	return psb, nil
}

// InspectCoin renders the spend of a single coin on its own.  Nothing else
// in its bundle is known, so dangling references are not reported.
func InspectCoin(spend wire.CoinSpend, opts ...Option) (*ParsedCoinSpend,
	error) {

	o := newOptions(opts)

	executed, ctx, err := buildContext(
		[]wire.CoinSpend{spend}, false, o,
	)
	if err != nil {
		return nil, err
	}

	pcs := ParseCoinSpend(&executed[0], ctx, o.Templates)
	return &pcs, nil
}
