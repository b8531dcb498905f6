// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/xchdev/explorer/coinset"
	"github.com/xchdev/explorer/metadata"
	"github.com/xchdev/explorer/parser"
	"github.com/xchdev/explorer/pkg/unit"
	"github.com/xchdev/explorer/wire"
)

// maxInputSize bounds the input read from a file or standard input.
const maxInputSize = 64 << 20

var (
	// errUnrecognizedInput is returned when an input is none of the
	// formats the parser knows.
	errUnrecognizedInput = errors.New("input is not an offer, spend " +
		"bundle, coin spend or coin")

	// errCoinUnspent is returned when the spend of an unspent coin is
	// asked for.
	errCoinUnspent = errors.New("coin is unspent")
)

// command is a CLI command that registers itself on the parser.
type command interface {
	flags.Commander

	Register(parser *flags.Parser) error
}

// commands returns every command of the CLI.
func (a *app) commands() []command {
	return []command{
		newParseCommand(a),
		newOfferCommand(a),
		newBlockCommand(a),
		newCoinCommand(a),
		newPeakCommand(a),
		newTokensCommand(a),
	}
}

// readInput returns the single input argument.  No argument or "-" reads
// standard input, an existing file is read, and anything else is the input
// itself.
func (a *app) readInput(args []string) ([]byte, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("expected a single input, got %d",
			len(args))
	}

	if len(args) == 0 || args[0] == "-" {
		return readLimited(a.in)
	}

	arg := args[0]
	if f, err := os.Open(arg); err == nil {
		defer f.Close()

		log.Debugf("Reading input from %s", arg)
		return readLimited(f)
	}

	return []byte(arg), nil
}

func readLimited(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxInputSize {
		return nil, fmt.Errorf("input exceeds %d bytes", maxInputSize)
	}
	return b, nil
}

// writeJSON writes v to the output, indented when it is a terminal.
func (a *app) writeJSON(v interface{}) error {
	var (
		b   []byte
		err error
	)
	if a.pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(a.out, "%s\n", b)
	return err
}

// decorate looks up metadata for the given coins.  Nil is returned when
// decoration is disabled.
func (a *app) decorate(ctx context.Context,
	coins []parser.ParsedCoin) (*metadata.Decoration, error) {

	d, err := a.cfg.decorator()
	if err != nil || d == nil {
		return nil, err
	}
	return d.DecorateCoins(ctx, coins)
}

// parseID decodes a hex coin id, block hash or asset id.
func parseID(s string) (wire.Bytes32, error) {
	return wire.ParseBytes32(strings.TrimSpace(s))
}

// fetchSpend returns the spend of a coin from the full node.
func fetchSpend(ctx context.Context, client *coinset.Client,
	coinID wire.Bytes32) (*wire.CoinRecord, *wire.CoinSpend, error) {

	rec, err := client.CoinRecord(ctx, coinID)
	if err != nil {
		return nil, nil, err
	}
	if !rec.IsSpent() {
		return rec, nil, fmt.Errorf("%w: %v", errCoinUnspent, coinID)
	}

	spend, err := client.PuzzleAndSolution(ctx, coinID, rec.SpentBlockIndex)
	if err != nil {
		return rec, nil, err
	}
	return rec, spend, nil
}

// assetFlow is the amount of an asset spent and created.
type assetFlow struct {
	Spent   string `json:"spent"`
	Created string `json:"created"`
}

// spendSummary totals the amounts, cost and implied fee of a set of spends.
type spendSummary struct {
	Spends  int                  `json:"spends"`
	Failed  int                  `json:"failed,omitempty"`
	Outputs int                  `json:"outputs"`
	Cost    string               `json:"cost"`
	Fee     string               `json:"fee,omitempty"`
	FeeRate string               `json:"fee_rate,omitempty"`
	Assets  map[string]assetFlow `json:"assets"`
}

// assetTotal accumulates the amounts of one asset.
type assetTotal struct {
	typ     parser.CoinType
	spent   unit.Mojo
	created unit.Mojo
}

// format renders an amount of the asset.  Decorated CATs use their ticker.
func (t *assetTotal) format(assetID string, amount unit.Mojo,
	dec *metadata.Decoration) string {

	switch {
	case assetID == parser.AssetXCH:
		return amount.Format(parser.AssetXCH, "")

	case t.typ == parser.CoinCAT:
		var code string
		if dec != nil {
			code = dec.Tokens[assetID].Code
		}
		return amount.Format(assetID, code)

	default:
		return amount.String()
	}
}

func coinAmount(c *parser.ParsedCoin) (unit.Mojo, error) {
	amount, err := strconv.ParseUint(c.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("coin %s: invalid amount %q", c.CoinID,
			c.Amount)
	}
	return unit.Mojo(amount), nil
}

// summarize totals a set of parsed spends.  The fee is the XCH spent that
// is not created again, and is left out when more XCH is created than spent.
func summarize(spends []parser.ParsedCoinSpend,
	dec *metadata.Decoration) (*spendSummary, error) {

	s := &spendSummary{
		Spends: len(spends),
		Assets: make(map[string]assetFlow),
	}
	totals := make(map[string]*assetTotal)
	total := func(c *parser.ParsedCoin) *assetTotal {
		t, ok := totals[c.AssetID]
		if !ok {
			t = &assetTotal{typ: c.Type}
			totals[c.AssetID] = t
		}
		return t
	}

	var cost uint64
	for i := range spends {
		pcs := &spends[i]
		cost += pcs.RawCost()
		if pcs.Error != "" {
			s.Failed++
		}

		amount, err := coinAmount(&pcs.Coin)
		if err != nil {
			return nil, err
		}
		total(&pcs.Coin).spent += amount

		for j := range pcs.Outputs {
			out := &pcs.Outputs[j]
			amount, err := coinAmount(out)
			if err != nil {
				return nil, err
			}
			total(out).created += amount
			s.Outputs++
		}
	}
	s.Cost = unit.Cost(cost).String()

	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		t := totals[id]
		s.Assets[id] = assetFlow{
			Spent:   t.format(id, t.spent, dec),
			Created: t.format(id, t.created, dec),
		}
	}

	if xch, ok := totals[parser.AssetXCH]; ok && xch.spent >= xch.created {
		fee := xch.spent - xch.created
		s.Fee = fee.Format(parser.AssetXCH, "")
		if cost > 0 {
			s.FeeRate = unit.NewMojoPerCost(fee, unit.Cost(cost)).String()
		}
	}

	return s, nil
}
