// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/xchdev/explorer/offer"
	"github.com/xchdev/explorer/parser"
)

type offerCommand struct {
	Encode  bool   `long:"encode" description:"Encode a spend bundle into an offer instead of parsing an offer"`
	Version uint16 `long:"offerversion" description:"Version, and so dictionary, to compress an encoded offer with"`
	Summary bool   `long:"summary" description:"Add the amounts spent and created per asset, the cost and the implied fee"`

	app *app
}

func newOfferCommand(a *app) *offerCommand {
	return &offerCommand{app: a}
}

func (x *offerCommand) Register(p *flags.Parser) error {
	_, err := p.AddCommand(
		"offer",
		"Parse an offer file",
		"Decode an offer string and parse its spend bundle as a self "+
			"contained bundle; with --encode, read a spend bundle "+
			"and print its offer string instead",
		x,
	)
	return err
}

func (x *offerCommand) Execute(args []string) error {
	if err := x.app.start(); err != nil {
		return err
	}
	return x.run(x.app.ctx, args)
}

func (x *offerCommand) run(ctx context.Context, args []string) error {
	raw, err := x.app.readInput(args)
	if err != nil {
		return err
	}

	if x.Encode {
		return x.encode(raw)
	}

	sb, err := offer.Decode(string(raw))
	if err != nil {
		return err
	}

	psb, err := parser.ParseSpendBundle(
		sb, true, x.app.cfg.parseOptions()...,
	)
	if err != nil {
		return err
	}

	result := &parseResult{
		Input:       parser.InputOffer.String(),
		SpendBundle: psb,
	}
	return x.app.finish(ctx, result, x.Summary)
}

// encode prints the offer string of a spend bundle.
func (x *offerCommand) encode(raw []byte) error {
	detected, err := parser.DetectInput(raw).UnwrapOrErr(
		errUnrecognizedInput,
	)
	if err != nil {
		return err
	}
	if detected.Bundle == nil {
		return fmt.Errorf("cannot encode a %v as an offer",
			detected.Kind)
	}

	s, err := offer.Encode(detected.Bundle, x.Version)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(x.app.out, s)
	return err
}
