// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"

	"github.com/jessevdk/go-flags"
	"github.com/xchdev/explorer/metadata"
	"github.com/xchdev/explorer/parser"
	"github.com/xchdev/explorer/wire"
	"golang.org/x/sync/errgroup"
)

// coinResult is the output of the coin command.  Spend is only set for
// spent coins.
type coinResult struct {
	Record   *wire.CoinRecord        `json:"record"`
	Spend    *parser.ParsedCoinSpend `json:"spend,omitempty"`
	Children []wire.CoinRecord       `json:"children"`
	Metadata *metadata.Decoration    `json:"metadata,omitempty"`
}

type coinCommand struct {
	app *app
}

func newCoinCommand(a *app) *coinCommand {
	return &coinCommand{app: a}
}

func (x *coinCommand) Register(p *flags.Parser) error {
	_, err := p.AddCommand(
		"coin",
		"Inspect a coin",
		"Fetch the record of a coin by id, parse its spend on its own "+
			"when it has been spent, and list the coins it created",
		x,
	)
	return err
}

func (x *coinCommand) Execute(args []string) error {
	if err := x.app.start(); err != nil {
		return err
	}
	return x.run(x.app.ctx, args)
}

func (x *coinCommand) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("expected a coin id")
	}
	coinID, err := parseID(args[0])
	if err != nil {
		return err
	}

	client, err := x.app.cfg.coinsetClient()
	if err != nil {
		return err
	}

	result := &coinResult{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, spend, err := fetchSpend(gctx, client, coinID)
		switch {
		case errors.Is(err, errCoinUnspent):
			result.Record = rec
			return nil

		case err != nil:
			return err
		}
		result.Record = rec

		result.Spend, err = parser.InspectCoin(
			*spend, x.app.cfg.parseOptions()...,
		)
		return err
	})
	g.Go(func() error {
		var err error
		result.Children, err = client.CoinRecordsByParentIDs(
			gctx, []wire.Bytes32{coinID}, true,
		)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if result.Children == nil {
		result.Children = []wire.CoinRecord{}
	}

	var coins []parser.ParsedCoin
	if result.Spend != nil {
		coins = append(coins, result.Spend.Coin)
		coins = append(coins, result.Spend.Outputs...)
	}
	result.Metadata, err = x.app.decorate(ctx, coins)
	if err != nil {
		return err
	}

	return x.app.writeJSON(result)
}
