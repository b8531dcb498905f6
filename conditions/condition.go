// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package conditions

import (
	"errors"
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchdev/explorer/clvm"
	"github.com/xchdev/explorer/wire"
)

var (
	// ErrUnknownCondition is returned for a condition whose first element
	// is not a known opcode.
	ErrUnknownCondition = errors.New("conditions: unknown condition")

	// ErrMalformedCondition is returned when a known opcode carries
	// arguments of the wrong shape.
	ErrMalformedCondition = errors.New("conditions: malformed condition")
)

// Condition is a decoded condition.  The concrete type is one of the
// records in this package.
type Condition interface {
	Opcode() Opcode
}

// Remark carries arbitrary data and has no effect.
type Remark struct {
	Rest *clvm.SExp
}

// AggSig requires a signature by PublicKey over Message plus whatever the
// variant appends.
type AggSig struct {
	Op        Opcode
	PublicKey []byte
	Message   []byte
}

// CreateCoin creates a child of the spent coin.
type CreateCoin struct {
	PuzzleHash wire.Bytes32
	Amount     uint64
	Memos      fn.Option[*clvm.SExp]
}

// Hint returns the first memo if it is 32 bytes long, which wallets use to
// find coins sent to them.
func (c *CreateCoin) Hint() fn.Option[wire.Bytes32] {
	var hint wire.Bytes32

	memos := c.Memos.UnwrapOr(clvm.Nil)
	first, ok := memos.At(0)
	if !ok {
		return fn.None[wire.Bytes32]()
	}
	b, ok := first.Atom()
	if !ok || len(b) != len(hint) {
		return fn.None[wire.Bytes32]()
	}
	copy(hint[:], b)
	return fn.Some(hint)
}

// ReserveFee asserts that the bundle leaves at least Amount as fee.
type ReserveFee struct {
	Amount uint64
}

// CreateCoinAnnouncement announces sha256(coin_id || message).
type CreateCoinAnnouncement struct {
	Message []byte
}

// AssertCoinAnnouncement asserts a coin announcement made in the same
// block.
type AssertCoinAnnouncement struct {
	AnnouncementID wire.Bytes32
}

// CreatePuzzleAnnouncement announces sha256(puzzle_hash || message).
type CreatePuzzleAnnouncement struct {
	Message []byte
}

// AssertPuzzleAnnouncement asserts a puzzle announcement made in the same
// block.
type AssertPuzzleAnnouncement struct {
	AnnouncementID wire.Bytes32
}

// AssertConcurrentSpend asserts that a coin is spent in the same block.
type AssertConcurrentSpend struct {
	CoinID wire.Bytes32
}

// AssertConcurrentPuzzle asserts that a coin with the puzzle hash is spent
// in the same block.
type AssertConcurrentPuzzle struct {
	PuzzleHash wire.Bytes32
}

// SendMessage sends Message to the coin described by Mode and Data.
type SendMessage struct {
	Mode    uint8
	Message []byte
	Data    []*clvm.SExp
}

// ReceiveMessage receives Message from the coin described by Mode and
// Data.
type ReceiveMessage struct {
	Mode    uint8
	Message []byte
	Data    []*clvm.SExp
}

// AssertMyCoinID asserts the id of the spent coin.
type AssertMyCoinID struct {
	CoinID wire.Bytes32
}

// AssertMyParentID asserts the parent of the spent coin.
type AssertMyParentID struct {
	ParentID wire.Bytes32
}

// AssertMyPuzzleHash asserts the puzzle hash of the spent coin.
type AssertMyPuzzleHash struct {
	PuzzleHash wire.Bytes32
}

// AssertMyAmount asserts the amount of the spent coin.
type AssertMyAmount struct {
	Amount uint64
}

// AssertMyBirthSeconds asserts the timestamp the spent coin was created
// at.
type AssertMyBirthSeconds struct {
	Seconds uint64
}

// AssertMyBirthHeight asserts the height the spent coin was created at.
type AssertMyBirthHeight struct {
	Height uint32
}

// AssertEphemeral asserts that the spent coin was created in the same
// block.
type AssertEphemeral struct{}

// Timelock is any of the eight relative or absolute height and seconds
// locks.  Value is seconds or a height depending on Op.
type Timelock struct {
	Op    Opcode
	Value uint64
}

// Softfork charges Cost and leaves Rest to future consensus rules.
type Softfork struct {
	Cost uint64
	Rest *clvm.SExp
}

// Opcode implements the Condition interface.
func (*Remark) Opcode() Opcode {
	return OpRemark
}

func (c *AggSig) Opcode() Opcode {
	return c.Op
}

func (*CreateCoin) Opcode() Opcode {
	return OpCreateCoin
}

func (*ReserveFee) Opcode() Opcode {
	return OpReserveFee
}

func (*CreateCoinAnnouncement) Opcode() Opcode {
	return OpCreateCoinAnnouncement
}

func (*AssertCoinAnnouncement) Opcode() Opcode {
	return OpAssertCoinAnnouncement
}

func (*CreatePuzzleAnnouncement) Opcode() Opcode {
	return OpCreatePuzzleAnnouncement
}

func (*AssertPuzzleAnnouncement) Opcode() Opcode {
	return OpAssertPuzzleAnnouncement
}

func (*AssertConcurrentSpend) Opcode() Opcode {
	return OpAssertConcurrentSpend
}

func (*AssertConcurrentPuzzle) Opcode() Opcode {
	return OpAssertConcurrentPuzzle
}

func (*SendMessage) Opcode() Opcode {
	return OpSendMessage
}

func (*ReceiveMessage) Opcode() Opcode {
	return OpReceiveMessage
}

func (*AssertMyCoinID) Opcode() Opcode {
	return OpAssertMyCoinID
}

func (*AssertMyParentID) Opcode() Opcode {
	return OpAssertMyParentID
}

func (*AssertMyPuzzleHash) Opcode() Opcode {
	return OpAssertMyPuzzleHash
}

func (*AssertMyAmount) Opcode() Opcode {
	return OpAssertMyAmount
}

func (*AssertMyBirthSeconds) Opcode() Opcode {
	return OpAssertMyBirthSeconds
}

func (*AssertMyBirthHeight) Opcode() Opcode {
	return OpAssertMyBirthHeight
}

func (*AssertEphemeral) Opcode() Opcode {
	return OpAssertEphemeral
}

func (c *Timelock) Opcode() Opcode {
	return c.Op
}

func (*Softfork) Opcode() Opcode {
	return OpSoftfork
}

// argReader walks the arguments of a condition, remembering the first
// failure.  Arguments past the ones read are ignored.
type argReader struct {
	op   Opcode
	node *clvm.SExp
	err  error
}

func (r *argReader) fail(name, reason string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %v %s %s", ErrMalformedCondition,
			r.op, name, reason)
	}
}

func (r *argReader) next(name string) *clvm.SExp {
	if r.err != nil {
		return clvm.Nil
	}
	first, rest, ok := r.node.Pair()
	if !ok {
		r.fail(name, "is missing")
		return clvm.Nil
	}
	r.node = rest
	return first
}

func (r *argReader) atom(name string) []byte {
	b, ok := r.next(name).Atom()
	if !ok {
		r.fail(name, "is not an atom")
	}
	return b
}

func (r *argReader) bytes32(name string) wire.Bytes32 {
	var h wire.Bytes32
	b := r.atom(name)
	if r.err == nil && len(b) != len(h) {
		r.fail(name, fmt.Sprintf("is %d bytes", len(b)))
	}
	copy(h[:], b)
	return h
}

func (r *argReader) uint64(name string) uint64 {
	v, ok := r.next(name).Uint64()
	if !ok {
		r.fail(name, "is not a u64")
	}
	return v
}

func (r *argReader) uint32(name string) uint32 {
	v := r.uint64(name)
	if v > 0xffffffff {
		r.fail(name, "is not a u32")
	}
	return uint32(v)
}

// rest returns the unread arguments.
func (r *argReader) rest() *clvm.SExp {
	return r.node
}

// publicKeySize is the size of a compressed G1 point.
const publicKeySize = 48

// opcodeOf returns the opcode of a condition, the small integer in its
// first position.
func opcodeOf(cond *clvm.SExp) (Opcode, bool) {
	first, _, ok := cond.Pair()
	if !ok {
		return 0, false
	}
	v, ok := first.Uint64()
	if !ok || v > 0xff {
		return 0, false
	}
	return Opcode(v), true
}

// Decode decodes a single condition, (opcode . args).
func Decode(cond *clvm.SExp) (Condition, error) {
	op, ok := opcodeOf(cond)
	if !ok || !op.Known() {
		return nil, ErrUnknownCondition
	}

	r := &argReader{op: op, node: cond.Rest()}

	var c Condition
	switch op {
	case OpRemark:
		c = &Remark{Rest: r.rest()}

	case OpAggSigParent, OpAggSigPuzzle, OpAggSigAmount,
		OpAggSigPuzzleAmount, OpAggSigParentAmount,
		OpAggSigParentPuzzle, OpAggSigUnsafe, OpAggSigMe:

		pk := r.atom("public_key")
		if r.err == nil && len(pk) != publicKeySize {
			r.fail("public_key", fmt.Sprintf("is %d bytes", len(pk)))
		}
		c = &AggSig{Op: op, PublicKey: pk, Message: r.atom("message")}

	case OpCreateCoin:
		cc := &CreateCoin{
			PuzzleHash: r.bytes32("puzzle_hash"),
			Amount:     r.uint64("amount"),
			Memos:      fn.None[*clvm.SExp](),
		}
		if memos, _, ok := r.rest().Pair(); ok {
			cc.Memos = fn.Some(memos)
		}
		c = cc

	case OpReserveFee:
		c = &ReserveFee{Amount: r.uint64("amount")}

	case OpCreateCoinAnnouncement:
		c = &CreateCoinAnnouncement{Message: r.atom("message")}

	case OpAssertCoinAnnouncement:
		c = &AssertCoinAnnouncement{
			AnnouncementID: r.bytes32("announcement_id"),
		}

	case OpCreatePuzzleAnnouncement:
		c = &CreatePuzzleAnnouncement{Message: r.atom("message")}

	case OpAssertPuzzleAnnouncement:
		c = &AssertPuzzleAnnouncement{
			AnnouncementID: r.bytes32("announcement_id"),
		}

	case OpAssertConcurrentSpend:
		c = &AssertConcurrentSpend{CoinID: r.bytes32("coin_id")}

	case OpAssertConcurrentPuzzle:
		c = &AssertConcurrentPuzzle{PuzzleHash: r.bytes32("puzzle_hash")}

	case OpSendMessage, OpReceiveMessage:
		mode := r.uint64("mode")
		if r.err == nil && mode > 0xff {
			r.fail("mode", "is not a u8")
		}
		msg := r.atom("message")
		data := r.rest().Items()
		if op == OpSendMessage {
			c = &SendMessage{Mode: uint8(mode), Message: msg, Data: data}
		} else {
			c = &ReceiveMessage{Mode: uint8(mode), Message: msg,
				Data: data}
		}

	case OpAssertMyCoinID:
		c = &AssertMyCoinID{CoinID: r.bytes32("coin_id")}

	case OpAssertMyParentID:
		c = &AssertMyParentID{ParentID: r.bytes32("parent_id")}

	case OpAssertMyPuzzleHash:
		c = &AssertMyPuzzleHash{PuzzleHash: r.bytes32("puzzle_hash")}

	case OpAssertMyAmount:
		c = &AssertMyAmount{Amount: r.uint64("amount")}

	case OpAssertMyBirthSeconds:
		c = &AssertMyBirthSeconds{Seconds: r.uint64("seconds")}

	case OpAssertMyBirthHeight:
		c = &AssertMyBirthHeight{Height: r.uint32("height")}

	case OpAssertEphemeral:
		c = &AssertEphemeral{}

	case OpAssertSecondsRelative, OpAssertSecondsAbsolute,
		OpAssertBeforeSecondsRelative, OpAssertBeforeSecondsAbsolute:

		c = &Timelock{Op: op, Value: r.uint64("seconds")}

	case OpAssertHeightRelative, OpAssertHeightAbsolute,
		OpAssertBeforeHeightRelative, OpAssertBeforeHeightAbsolute:

		c = &Timelock{Op: op, Value: uint64(r.uint32("height"))}

	case OpSoftfork:
		c = &Softfork{Cost: r.uint64("cost"), Rest: r.rest()}

	default:
		return nil, ErrUnknownCondition
	}

	if r.err != nil {
		return nil, r.err
	}
	return c, nil
}

// DecodeList decodes every condition in a list, skipping the ones that
// fail to decode.
func DecodeList(list *clvm.SExp) []Condition {
	var out []Condition
	for _, item := range list.Items() {
		c, err := Decode(item)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}
