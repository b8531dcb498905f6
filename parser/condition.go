// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parser

import (
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchdev/explorer/clvm"
	"github.com/xchdev/explorer/conditions"
	"github.com/xchdev/explorer/wire"
)

// ParsedCondition is a condition rendered for display.
type ParsedCondition struct {
	// Opcode is the decimal form of the condition's first atom, or empty
	// when there is none.
	Opcode   string
	Name     string
	Category Category
	Args     Args
	Warning  fn.Option[string]
}

// MarshalJSON encodes the condition with a null warning when there is
// none.
func (p ParsedCondition) MarshalJSON() ([]byte, error) {
	var warning *string
	p.Warning.WhenSome(func(w string) {
		warning = &w
	})

	return json.Marshal(struct {
		Opcode   string   `json:"opcode"`
		Name     string   `json:"name"`
		Category Category `json:"category"`
		Args     Args     `json:"args"`
		Warning  *string  `json:"warning"`
	}{
		Opcode:   p.Opcode,
		Name:     p.Name,
		Category: p.Category,
		Args:     p.Args,
		Warning:  warning,
	})
}

// Warnings given for cross reference failures.
const (
	warnNotAsserted        = "Not asserted"
	warnNoAnnouncement     = "Announcement does not exist"
	warnCoinNotSpent       = "Coin not spent"
	warnPuzzleNotSpent     = "Puzzle not spent"
	warnFastForward        = "This spend will need to be fast forwarded"
	warnParentMismatch     = "Parent ID does not match, and this spend cannot be fast forwarded"
	warnPuzzleHashMismatch = "Puzzle hash does not match"
	warnAmountMismatch     = "Amount does not match"
	warnNotEphemeral       = "Coin not created ephemerally in this bundle"
)

const unknownName = "UNKNOWN"

func hexArg(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// opcodeString renders the first atom of a condition as an integer.
func opcodeString(cond *clvm.SExp) string {
	first, _, ok := cond.Pair()
	if !ok {
		return ""
	}
	n, ok := first.BigInt()
	if !ok {
		return ""
	}
	return n.String()
}

// ClassifyCondition renders one condition output by the puzzle of coin.
// Conditions that do not decode are named UNKNOWN.
func ClassifyCondition(coin wire.Coin, cond *clvm.SExp, ctx *Context,
	fastForwardable bool) ParsedCondition {

	pc := ParsedCondition{
		Opcode:   opcodeString(cond),
		Name:     unknownName,
		Category: CategoryOther,
		Warning:  fn.None[string](),
	}

	c, err := conditions.Decode(cond)
	if err != nil {
		log.Tracef("Condition %v not decoded: %v", newLogClosure(func() string {
			return clvm.Disassemble(cond)
		}), err)
		return pc
	}
	pc.Name = c.Opcode().String()

	warn := func(w string) {
		pc.Warning = fn.Some(w)
	}
	args := &pc.Args
	coinID := coin.ID()

	switch c := c.(type) {
	case *conditions.Remark:
		args.set("rest", clvm.Disassemble(c.Rest), NonCopiable)

	case *conditions.AggSig:
		pc.Category = CategoryAggSig
		args.set("public_key", hexArg(c.PublicKey), Copiable)
		args.set("message", hexArg(c.Message), Copiable)

	case *conditions.CreateCoin:
		pc.Category = CategoryOutput
		child := wire.CoinID(coinID, c.PuzzleHash, c.Amount)
		args.set("coin_id", child.String(), CoinID)
		args.set("puzzle_hash", c.PuzzleHash.String(), Copiable)
		args.set("amount", strconv.FormatUint(c.Amount, 10), NonCopiable)
		c.Memos.WhenSome(func(memos *clvm.SExp) {
			args.set("memos", clvm.Disassemble(memos), NonCopiable)
		})

	case *conditions.ReserveFee:
		pc.Category = CategoryOutput
		args.set("amount", strconv.FormatUint(c.Amount, 10), NonCopiable)

	case *conditions.CreateCoinAnnouncement:
		pc.Category = CategoryAnnouncement
		id := CoinAnnouncementID(coinID, c.Message)
		args.set("coin_id", coinID.String(), CoinID)
		args.set("message", hexArg(c.Message), Copiable)
		args.set("announcement_id", id.String(), Copiable)

		if ctx.SelfContained() && !ctx.CoinAnnouncementAsserted(id) {
			warn(warnNotAsserted)
		}

	case *conditions.AssertCoinAnnouncement:
		pc.Category = CategoryAnnouncement
		id := c.AnnouncementID

		origin := ctx.AnnouncementCoinID(id)
		origin.WhenSome(func(h wire.Bytes32) {
			args.set("coin_id", h.String(), CoinID)
		})
		if origin.IsNone() && ctx.SelfContained() {
			warn(warnNoAnnouncement)
		}
		ctx.AnnouncementMessage(id).WhenSome(func(m []byte) {
			args.set("message", hexArg(m), Copiable)
		})
		args.set("announcement_id", id.String(), Copiable)

	case *conditions.CreatePuzzleAnnouncement:
		pc.Category = CategoryAnnouncement
		id := PuzzleAnnouncementID(coin.PuzzleHash, c.Message)
		args.set("puzzle_hash", coin.PuzzleHash.String(), Copiable)
		args.set("message", hexArg(c.Message), Copiable)
		args.set("announcement_id", id.String(), Copiable)

		if ctx.SelfContained() && !ctx.PuzzleAnnouncementAsserted(id) {
			warn(warnNotAsserted)
		}

	case *conditions.AssertPuzzleAnnouncement:
		pc.Category = CategoryAnnouncement
		id := c.AnnouncementID

		origin := ctx.AnnouncementPuzzleHash(id)
		origin.WhenSome(func(h wire.Bytes32) {
			args.set("puzzle_hash", h.String(), Copiable)
		})
		if origin.IsNone() && ctx.SelfContained() {
			warn(warnNoAnnouncement)
		}
		ctx.AnnouncementMessage(id).WhenSome(func(m []byte) {
			args.set("message", hexArg(m), Copiable)
		})
		args.set("announcement_id", id.String(), Copiable)

	case *conditions.AssertConcurrentSpend:
		pc.Category = CategoryAssertion
		args.set("coin_id", c.CoinID.String(), CoinID)
		if ctx.SelfContained() && !ctx.CoinSpent(c.CoinID) {
			warn(warnCoinNotSpent)
		}

	case *conditions.AssertConcurrentPuzzle:
		pc.Category = CategoryAssertion
		args.set("puzzle_hash", c.PuzzleHash.String(), Copiable)
		if ctx.SelfContained() && !ctx.PuzzleSpent(c.PuzzleHash) {
			warn(warnPuzzleNotSpent)
		}

	case *conditions.SendMessage:
		pc.Category = CategoryMessage
		args.set("mode", strconv.Itoa(int(c.Mode)), NonCopiable)
		args.set("message", hexArg(c.Message), Copiable)
		insertCoinSide(args, conditions.DecodeMessageMode(
			c.Mode, conditions.Sender), coin, conditions.Sender)
		insertDataSide(args, conditions.DecodeMessageMode(
			c.Mode, conditions.Receiver), c.Data, conditions.Receiver)

	case *conditions.ReceiveMessage:
		pc.Category = CategoryMessage
		args.set("mode", strconv.Itoa(int(c.Mode)), NonCopiable)
		args.set("message", hexArg(c.Message), Copiable)
		insertDataSide(args, conditions.DecodeMessageMode(
			c.Mode, conditions.Sender), c.Data, conditions.Sender)
		insertCoinSide(args, conditions.DecodeMessageMode(
			c.Mode, conditions.Receiver), coin, conditions.Receiver)

	case *conditions.AssertMyCoinID:
		pc.Category = CategoryAssertion
		args.set("coin_id", c.CoinID.String(), CoinID)

	case *conditions.AssertMyParentID:
		pc.Category = CategoryAssertion
		args.set("parent_id", c.ParentID.String(), CoinID)
		if c.ParentID != coin.ParentCoinInfo {
			if fastForwardable {
				warn(warnFastForward)
			} else {
				warn(warnParentMismatch)
			}
		}

	case *conditions.AssertMyPuzzleHash:
		pc.Category = CategoryAssertion
		args.set("puzzle_hash", c.PuzzleHash.String(), Copiable)
		if c.PuzzleHash != coin.PuzzleHash {
			warn(warnPuzzleHashMismatch)
		}

	case *conditions.AssertMyAmount:
		pc.Category = CategoryAssertion
		args.set("amount", strconv.FormatUint(c.Amount, 10), NonCopiable)
		if c.Amount != coin.Amount {
			warn(warnAmountMismatch)
		}

	case *conditions.AssertMyBirthSeconds:
		pc.Category = CategoryAssertion
		args.set("seconds", strconv.FormatUint(c.Seconds, 10),
			NonCopiable)

	case *conditions.AssertMyBirthHeight:
		pc.Category = CategoryAssertion
		args.set("height", strconv.FormatUint(uint64(c.Height), 10),
			NonCopiable)

	case *conditions.AssertEphemeral:
		pc.Category = CategoryAssertion
		if ctx.SelfContained() && !ctx.CoinCreated(coinID) {
			warn(warnNotEphemeral)
		}

	case *conditions.Timelock:
		pc.Category = CategoryTimelock
		key := "seconds"
		if c.Op.IsHeight() {
			key = "height"
		}
		args.set(key, strconv.FormatUint(c.Value, 10), NonCopiable)

	case *conditions.Softfork:
		args.set("cost", strconv.FormatUint(c.Cost, 10), NonCopiable)
		args.set("rest", clvm.Disassemble(c.Rest), NonCopiable)

	default:
		log.Errorf("Unhandled condition %v", c.Opcode())
		pc.Name = unknownName
	}

	return pc
}

// insertCoinSide renders one side of a message that is the spent coin.
func insertCoinSide(args *Args, flags conditions.MessageFlags, coin wire.Coin,
	side conditions.MessageSide) {

	prefix := side.String()
	if flags.All() {
		args.set(prefix+"_coin_id", coin.ID().String(), CoinID)
		return
	}

	if flags.Parent {
		args.set(prefix+"_parent_coin_id", coin.ParentCoinInfo.String(),
			CoinID)
	}
	if flags.Puzzle {
		args.set(prefix+"_puzzle_hash", coin.PuzzleHash.String(),
			Copiable)
	}
	if flags.Amount {
		args.set(prefix+"_amount", strconv.FormatUint(coin.Amount, 10),
			NonCopiable)
	}
}

// insertDataSide renders the other side of a message from the data atoms
// of the condition.  The atoms are positional over the set flags, in the
// order parent, puzzle, amount.
func insertDataSide(args *Args, flags conditions.MessageFlags,
	data []*clvm.SExp, side conditions.MessageSide) {

	prefix := side.String()
	at := func(i int) *clvm.SExp {
		if i < len(data) {
			return data[i]
		}
		return nil
	}

	if flags.All() {
		insertAtom(args, prefix+"_coin_id", at(0), CoinID)
		return
	}

	i := 0
	if flags.Parent {
		insertAtom(args, prefix+"_parent_coin_id", at(i), CoinID)
		i++
	}
	if flags.Puzzle {
		insertAtom(args, prefix+"_puzzle_hash", at(i), Copiable)
		i++
	}
	if flags.Amount {
		key := prefix + "_amount"
		node := at(i)
		if node == nil {
			args.setMissing(key)
			return
		}
		n, ok := node.BigInt()
		if !ok {
			args.setMissing(key)
			return
		}
		args.set(key, n.String(), NonCopiable)
	}
}

// insertAtom renders an atom as hex, or Missing when there is none.
func insertAtom(args *Args, key string, node *clvm.SExp, kind ArgKind) {
	if node == nil {
		args.setMissing(key)
		return
	}
	b, ok := node.Atom()
	if !ok {
		args.setMissing(key)
		return
	}
	args.set(key, hexArg(b), kind)
}
