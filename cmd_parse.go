// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"

	"github.com/jessevdk/go-flags"
	"github.com/xchdev/explorer/metadata"
	"github.com/xchdev/explorer/parser"
	"github.com/xchdev/explorer/wire"
)

// parseResult is the output of the parse and offer commands.  Exactly one
// of SpendBundle and CoinSpend is set.
type parseResult struct {
	Input       string                    `json:"input"`
	SpendBundle *parser.ParsedSpendBundle `json:"spend_bundle,omitempty"`
	CoinSpend   *parser.ParsedCoinSpend   `json:"coin_spend,omitempty"`
	Summary     *spendSummary             `json:"summary,omitempty"`
	Metadata    *metadata.Decoration      `json:"metadata,omitempty"`
}

// spends returns the parsed spends of the result.
func (r *parseResult) spends() []parser.ParsedCoinSpend {
	if r.SpendBundle != nil {
		return r.SpendBundle.CoinSpends
	}
	return []parser.ParsedCoinSpend{*r.CoinSpend}
}

// coins returns every coin spent and created in the result.
func (r *parseResult) coins() []parser.ParsedCoin {
	var coins []parser.ParsedCoin
	for _, pcs := range r.spends() {
		coins = append(coins, pcs.Coin)
		coins = append(coins, pcs.Outputs...)
	}
	return coins
}

// finish adds metadata and the summary to the result, then writes it.
func (a *app) finish(ctx context.Context, r *parseResult,
	summary bool) error {

	dec, err := a.decorate(ctx, r.coins())
	if err != nil {
		return err
	}
	r.Metadata = dec

	if summary {
		r.Summary, err = summarize(r.spends(), dec)
		if err != nil {
			return err
		}
	}

	return a.writeJSON(r)
}

type parseCommand struct {
	Summary bool `long:"summary" description:"Add the amounts spent and created per asset, the cost and the implied fee"`

	app *app
}

func newParseCommand(a *app) *parseCommand {
	return &parseCommand{app: a}
}

func (x *parseCommand) Register(p *flags.Parser) error {
	_, err := p.AddCommand(
		"parse",
		"Parse a spend bundle, offer, coin spend or coin",
		"Read an input from the argument, the file it names or "+
			"standard input, recognize its format and run every "+
			"spend it holds; a bare coin has its spend fetched "+
			"from the coinset endpoint",
		x,
	)
	return err
}

func (x *parseCommand) Execute(args []string) error {
	if err := x.app.start(); err != nil {
		return err
	}
	return x.run(x.app.ctx, args)
}

func (x *parseCommand) run(ctx context.Context, args []string) error {
	raw, err := x.app.readInput(args)
	if err != nil {
		return err
	}

	detected, err := parser.DetectInput(raw).UnwrapOrErr(
		errUnrecognizedInput,
	)
	if err != nil {
		return err
	}
	log.Infof("Recognized input as %v", detected.Kind)

	opts := x.app.cfg.parseOptions()
	result := &parseResult{Input: detected.Kind.String()}

	if detected.Kind == parser.InputCoin {
		result.CoinSpend, err = x.inspect(ctx, detected.Coin, opts)
		if err != nil {
			return err
		}
		return x.app.finish(ctx, result, x.Summary)
	}

	result.SpendBundle, err = parser.ParseSpendBundle(
		detected.Bundle, detected.SelfContained, opts...,
	)
	if err != nil {
		return err
	}
	return x.app.finish(ctx, result, x.Summary)
}

// inspect fetches and parses the spend of a coin.
func (x *parseCommand) inspect(ctx context.Context, coin *wire.Coin,
	opts []parser.Option) (*parser.ParsedCoinSpend, error) {

	client, err := x.app.cfg.coinsetClient()
	if err != nil {
		return nil, err
	}

	_, spend, err := fetchSpend(ctx, client, coin.ID())
	if err != nil {
		return nil, err
	}
	return parser.InspectCoin(*spend, opts...)
}
