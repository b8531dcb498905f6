// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parser

import (
	"encoding/hex"
	"math/big"

	"github.com/dustin/go-humanize"
	"github.com/xchdev/explorer/address"
	"github.com/xchdev/explorer/clvm"
	"github.com/xchdev/explorer/conditions"
	"github.com/xchdev/explorer/puzzles"
	"github.com/xchdev/explorer/wire"
)

// Cost schedule charged on top of the execution cost of a spend.
const (
	CostPerByte    = 12_000
	CreateCoinCost = 1_800_000
	AggSigCost     = 1_200_000
)

// ExecutedSpend is a coin spend after its puzzle has been run against its
// solution.
type ExecutedSpend struct {
	Spend wire.CoinSpend

	// Puzzle and Solution are nil when the program bytes could not be
	// deserialized.
	Puzzle   *puzzles.Puzzle
	Solution *clvm.SExp

	// Conditions is the raw condition list output by the puzzle, and
	// Decoded holds the typed form of each, or nil where a condition
	// could not be decoded.
	Conditions []*clvm.SExp
	Decoded    []conditions.Condition

	// Cost is the execution cost plus the byte and condition charges.
	Cost uint64

	// Err is set when the spend failed to run.  The spend then has no
	// conditions and is only charged for its bytes.
	Err error
}

// byteCost returns the charge for the serialized size of a spend.
func byteCost(spend *wire.CoinSpend) uint64 {
	return CostPerByte *
		uint64(len(spend.PuzzleReveal)+len(spend.Solution))
}

// ExecuteSpend runs a single coin spend.
func ExecuteSpend(spend wire.CoinSpend, opts ...Option) (ExecutedSpend,
	error) {

	return executeSpend(spend, newOptions(opts))
}

// executeSpend runs a spend.  A failure is recorded on the returned spend,
// and only returned as an error when the options ask to fail fast.
func executeSpend(spend wire.CoinSpend, o *Options) (ExecutedSpend, error) {
	es := ExecutedSpend{
		Spend: spend,
		Cost:  byteCost(&spend),
	}
	coinID := spend.Coin.ID()

	fail := func(code ErrorCode, desc string, err error) (ExecutedSpend,
		error) {

		perr := parserError(code, desc, err)
		if o.FailFast {
			return ExecutedSpend{}, perr
		}
		log.Debugf("Spend of coin %v failed: %v", coinID, perr)
		es.Err = perr
		return es, nil
	}

	program, err := spend.PuzzleReveal.Parse(o.AllowBackrefs)
	if err != nil {
		return fail(ErrDeserialize, "cannot deserialize puzzle reveal "+
			"of coin "+coinID.String(), err)
	}
	es.Puzzle = puzzles.New(program)

	solution, err := spend.Solution.Parse(o.AllowBackrefs)
	if err != nil {
		return fail(ErrDeserialize, "cannot deserialize solution of "+
			"coin "+coinID.String(), err)
	}
	es.Solution = solution

	red, err := clvm.Run(program, solution, o.MaxCost, 0)
	if err != nil {
		return fail(ErrExecution, "cannot run puzzle of coin "+
			coinID.String(), err)
	}

	// An output that is not a list yields no conditions.
	list, _ := red.Result.ToList()
	es.Conditions = list
	es.Decoded = make([]conditions.Condition, len(list))

	cost := es.Cost + red.Cost
	for i, raw := range list {
		c, err := conditions.Decode(raw)
		if err != nil {
			continue
		}
		es.Decoded[i] = c

		switch {
		case c.Opcode() == conditions.OpCreateCoin:
			cost += CreateCoinCost
		case c.Opcode().IsAggSig():
			cost += AggSigCost
		}
	}
	es.Cost = cost

	log.Tracef("Ran coin %v: %d conditions, cost %d", coinID, len(list),
		cost)

	return es, nil
}

// ParsedCoinSpend is a coin spend rendered for display.
type ParsedCoinSpend struct {
	Coin         ParsedCoin          `json:"coin"`
	PuzzleReveal string              `json:"puzzle_reveal"`
	Solution     string              `json:"solution"`
	Cost         string              `json:"cost"`
	Conditions   []ParsedCondition   `json:"conditions"`
	Layer        puzzles.ParsedLayer `json:"layer"`
	Outputs      []ParsedCoin        `json:"outputs"`

	FastForwardable bool   `json:"fast_forwardable"`
	Error           string `json:"error,omitempty"`

	cost uint64
}

// RawCost returns the cost of the spend as a number.
func (p *ParsedCoinSpend) RawCost() uint64 {
	return p.cost
}

func formatCost(cost uint64) string {
	return humanize.BigComma(new(big.Int).SetUint64(cost))
}

// classify returns the coin type and asset id of a spent puzzle.  Each
// recognizer overrides the ones before it.
func classify(p *puzzles.Puzzle, tpl *puzzles.Templates) (CoinType, string,
	bool) {

	typ, assetID, isCAT := CoinUnknown, AssetXCH, false
	if p == nil {
		return typ, assetID, isCAT
	}

	tpl.ParseCAT(p).WhenSome(func(cat puzzles.CATInfo) {
		typ, assetID, isCAT = CoinCAT, cat.AssetID.String(), true
	})
	tpl.ParseSingleton(p).WhenSome(func(s puzzles.SingletonInfo) {
		typ = CoinVault
		assetID = address.EncodeHash(s.LauncherID, address.PrefixVault)
	})
	tpl.ParseNFT(p).WhenSome(func(nft puzzles.NFTInfo) {
		typ = CoinNFT
		assetID = address.EncodeHash(nft.LauncherID, address.PrefixNFT)
	})
	tpl.ParseDID(p).WhenSome(func(did puzzles.DIDInfo) {
		typ = CoinDID
		assetID = address.EncodeHash(did.LauncherID, address.PrefixDID)
	})

	return typ, assetID, isCAT
}

// ffExempt is the number of leading conditions a singleton outputs for
// itself, which are not considered when deciding fast forwarding.
const ffExempt = 2

// IsFastForwardable reports whether a singleton spend could be rebased onto
// a later version of the same singleton.
func IsFastForwardable(spend *ExecutedSpend, ctx *Context,
	tpl *puzzles.Templates) bool {

	coin := spend.Spend.Coin
	coinID := coin.ID()

	switch {
	case spend.Puzzle == nil:
		return false
	case spend.Puzzle.ModHash != tpl.SingletonTopLayer:
		return false
	case coin.Amount%2 != 1:
		return false
	case ctx.CoinCreated(coinID) || ctx.CoinAsserted(coinID):
		return false
	}

	if len(spend.Decoded) <= ffExempt {
		return false
	}

	identical := false
	for _, c := range spend.Decoded[ffExempt:] {
		if c == nil {
			continue
		}

		switch c := c.(type) {
		case *conditions.AssertMyCoinID,
			*conditions.AssertMyParentID,
			*conditions.AssertMyBirthHeight,
			*conditions.AssertMyBirthSeconds,
			*conditions.AssertEphemeral,
			*conditions.CreateCoinAnnouncement:

			return false

		case *conditions.Timelock:
			switch c.Op {
			case conditions.OpAssertHeightRelative,
				conditions.OpAssertSecondsRelative,
				conditions.OpAssertBeforeHeightRelative,
				conditions.OpAssertBeforeSecondsRelative:

				return false
			}

		case *conditions.AggSig:
			switch c.Op {
			case conditions.OpAggSigMe,
				conditions.OpAggSigParent,
				conditions.OpAggSigParentAmount,
				conditions.OpAggSigParentPuzzle:

				return false
			}

		case *conditions.SendMessage:
			flags := conditions.DecodeMessageMode(
				c.Mode, conditions.Sender,
			)
			if flags.Parent {
				return false
			}

		case *conditions.ReceiveMessage:
			flags := conditions.DecodeMessageMode(
				c.Mode, conditions.Receiver,
			)
			if flags.Parent {
				return false
			}

		case *conditions.CreateCoin:
			if c.PuzzleHash == coin.PuzzleHash &&
				c.Amount == coin.Amount {

				identical = true
			}
		}
	}

	return identical
}

// ParseCoinSpend renders an executed spend against the context of the
// bundle it belongs to.
func ParseCoinSpend(spend *ExecutedSpend, ctx *Context,
	tpl *puzzles.Templates) ParsedCoinSpend {

	coin := spend.Spend.Coin
	coinID := coin.ID()
	typ, assetID, isCAT := classify(spend.Puzzle, tpl)
	ff := IsFastForwardable(spend, ctx, tpl)

	pcs := ParsedCoinSpend{
		Coin:            ParseCoin(coin, typ, assetID, noHint()),
		PuzzleReveal:    hex.EncodeToString(spend.Spend.PuzzleReveal),
		Solution:        hex.EncodeToString(spend.Spend.Solution),
		Cost:            formatCost(spend.Cost),
		Conditions:      make([]ParsedCondition, 0, len(spend.Conditions)),
		Outputs:         []ParsedCoin{},
		FastForwardable: ff,
		cost:            spend.Cost,
	}
	if spend.Err != nil {
		pcs.Error = spend.Err.Error()
	}

	if spend.Puzzle != nil {
		pcs.Layer = puzzles.ParseLayer(spend.Puzzle, tpl)
	} else {
		pcs.Layer = puzzles.UnknownLayer(coin.PuzzleHash)
	}

	for _, raw := range spend.Conditions {
		pcs.Conditions = append(
			pcs.Conditions, ClassifyCondition(coin, raw, ctx, ff),
		)
	}

	for _, c := range spend.Decoded {
		cc, ok := c.(*conditions.CreateCoin)
		if !ok {
			continue
		}

		child := wire.Coin{
			ParentCoinInfo: coinID,
			PuzzleHash:     cc.PuzzleHash,
			Amount:         cc.Amount,
		}
		if child.Amount%2 == 1 || isCAT {
			pcs.Outputs = append(pcs.Outputs, ParseCoin(
				child, typ, assetID, cc.Hint(),
			))
		} else {
			pcs.Outputs = append(pcs.Outputs, ParseCoin(
				child, CoinUnknown, AssetXCH, cc.Hint(),
			))
		}
	}

	return pcs
}
