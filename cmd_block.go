// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"strconv"

	"github.com/jessevdk/go-flags"
	"github.com/xchdev/explorer/coinset"
	"github.com/xchdev/explorer/metadata"
	"github.com/xchdev/explorer/parser"
	"github.com/xchdev/explorer/wire"
	"golang.org/x/sync/errgroup"
)

// blockResult is the output of the block command.
type blockResult struct {
	Block    *wire.BlockRecord         `json:"block"`
	Spends   *parser.ParsedBlockSpends `json:"spends"`
	Metadata *metadata.Decoration      `json:"metadata,omitempty"`

	// The node's records of the coins added and removed, with --records.
	AdditionRecords []wire.CoinRecord `json:"addition_records,omitempty"`
	RemovalRecords  []wire.CoinRecord `json:"removal_records,omitempty"`
}

type blockCommand struct {
	Records bool `long:"records" description:"Add the full node's records of the coins the block added and removed"`

	app *app
}

func newBlockCommand(a *app) *blockCommand {
	return &blockCommand{app: a}
}

func (x *blockCommand) Register(p *flags.Parser) error {
	_, err := p.AddCommand(
		"block",
		"Show the coin flow of a block",
		"Fetch a block by height or header hash together with its "+
			"spends, and parse them along with the reward coins "+
			"the block incorporates",
		x,
	)
	return err
}

func (x *blockCommand) Execute(args []string) error {
	if err := x.app.start(); err != nil {
		return err
	}
	return x.run(x.app.ctx, args)
}

func (x *blockCommand) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("expected a block height or header hash")
	}

	client, err := x.app.cfg.coinsetClient()
	if err != nil {
		return err
	}

	rec, spends, err := fetchBlock(ctx, client, args[0])
	if err != nil {
		return err
	}
	log.Debugf("Block %d has %d spends and %d reward claims", rec.Height,
		len(spends), len(rec.RewardClaimsIncorporated))

	parsed, err := parser.ParseBlockSpends(
		rec.RewardClaimsIncorporated, spends,
		x.app.cfg.parseOptions()...,
	)
	if err != nil {
		return err
	}

	coins := append([]parser.ParsedCoin(nil), parsed.Removals...)
	coins = append(coins, parsed.Additions...)
	dec, err := x.app.decorate(ctx, coins)
	if err != nil {
		return err
	}

	result := &blockResult{
		Block:    rec,
		Spends:   parsed,
		Metadata: dec,
	}
	if x.Records && rec.IsTransactionBlock() {
		result.AdditionRecords, result.RemovalRecords, err =
			client.AdditionsAndRemovals(ctx, rec.HeaderHash)
		if err != nil {
			return err
		}
	}

	return x.app.writeJSON(result)
}

// fetchBlock returns the record and spends of the block named by a height or
// header hash.  A hash lets both be fetched at once.
func fetchBlock(ctx context.Context, client *coinset.Client,
	id string) (*wire.BlockRecord, []wire.CoinSpend, error) {

	if height, err := strconv.ParseUint(id, 10, 32); err == nil {
		rec, err := client.BlockRecordByHeight(ctx, uint32(height))
		if err != nil {
			return nil, nil, err
		}
		if !rec.IsTransactionBlock() {
			return rec, nil, nil
		}

		spends, err := client.BlockSpends(ctx, rec.HeaderHash)
		if err != nil {
			return nil, nil, err
		}
		return rec, spends, nil
	}

	hash, err := parseID(id)
	if err != nil {
		return nil, nil, err
	}

	var (
		rec    *wire.BlockRecord
		spends []wire.CoinSpend
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rec, err = client.BlockRecord(gctx, hash)
		return err
	})
	g.Go(func() error {
		var err error
		spends, err = client.BlockSpends(gctx, hash)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return rec, spends, nil
}
