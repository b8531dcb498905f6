// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parser

import (
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchdev/explorer/clvm"
	"github.com/xchdev/explorer/conditions"
	"github.com/xchdev/explorer/wire"
)

type hashSet map[wire.Bytes32]struct{}

func (s hashSet) add(h wire.Bytes32) {
	s[h] = struct{}{}
}

func (s hashSet) has(h wire.Bytes32) bool {
	_, ok := s[h]
	return ok
}

// Context is what every spend in a bundle learns about the others.  It is
// read only, and can only be obtained from ContextBuilder.Freeze.
type Context struct {
	selfContained bool

	announcementCoinIDs      map[wire.Bytes32]wire.Bytes32
	announcementPuzzleHashes map[wire.Bytes32]wire.Bytes32
	announcementMessages     map[wire.Bytes32][]byte

	coinAnnouncementAssertions   hashSet
	puzzleAnnouncementAssertions hashSet

	spentCoinIDs      hashSet
	spentPuzzleHashes hashSet
	createdCoinIDs    hashSet
	assertedCoinIDs   hashSet
}

// SelfContained reports whether the bundle is expected to carry every
// spend its conditions refer to.  Cross reference warnings are only given
// for self contained bundles.
func (c *Context) SelfContained() bool {
	return c.selfContained
}

// AnnouncementCoinID returns the coin that made a coin announcement.
func (c *Context) AnnouncementCoinID(id wire.Bytes32) fn.Option[wire.Bytes32] {
	v, ok := c.announcementCoinIDs[id]
	if !ok {
		return fn.None[wire.Bytes32]()
	}
	return fn.Some(v)
}

// AnnouncementPuzzleHash returns the puzzle hash that made a puzzle
// announcement.
func (c *Context) AnnouncementPuzzleHash(
	id wire.Bytes32) fn.Option[wire.Bytes32] {

	v, ok := c.announcementPuzzleHashes[id]
	if !ok {
		return fn.None[wire.Bytes32]()
	}
	return fn.Some(v)
}

// AnnouncementMessage returns the message of an announcement.
func (c *Context) AnnouncementMessage(id wire.Bytes32) fn.Option[[]byte] {
	v, ok := c.announcementMessages[id]
	if !ok {
		return fn.None[[]byte]()
	}
	return fn.Some(v)
}

// CoinAnnouncementAsserted reports whether any spend asserts the coin
// announcement.
func (c *Context) CoinAnnouncementAsserted(id wire.Bytes32) bool {
	return c.coinAnnouncementAssertions.has(id)
}

// PuzzleAnnouncementAsserted reports whether any spend asserts the puzzle
// announcement.
func (c *Context) PuzzleAnnouncementAsserted(id wire.Bytes32) bool {
	return c.puzzleAnnouncementAssertions.has(id)
}

// CoinSpent reports whether the coin is spent in the bundle.
func (c *Context) CoinSpent(id wire.Bytes32) bool {
	return c.spentCoinIDs.has(id)
}

// PuzzleSpent reports whether a coin with the puzzle hash is spent in the
// bundle.
func (c *Context) PuzzleSpent(puzzleHash wire.Bytes32) bool {
	return c.spentPuzzleHashes.has(puzzleHash)
}

// CoinCreated reports whether the coin is created in the bundle.
func (c *Context) CoinCreated(id wire.Bytes32) bool {
	return c.createdCoinIDs.has(id)
}

// CoinAsserted reports whether any spend asserts that the coin is spent
// concurrently.
func (c *Context) CoinAsserted(id wire.Bytes32) bool {
	return c.assertedCoinIDs.has(id)
}

// ContextBuilder collects the context of a bundle one spend at a time.
type ContextBuilder struct {
	ctx *Context
}

// NewContextBuilder returns an empty builder.
func NewContextBuilder(selfContained bool) *ContextBuilder {
	return &ContextBuilder{
		ctx: &Context{
			selfContained:                selfContained,
			announcementCoinIDs:          make(map[wire.Bytes32]wire.Bytes32),
			announcementPuzzleHashes:     make(map[wire.Bytes32]wire.Bytes32),
			announcementMessages:         make(map[wire.Bytes32][]byte),
			coinAnnouncementAssertions:   make(hashSet),
			puzzleAnnouncementAssertions: make(hashSet),
			spentCoinIDs:                 make(hashSet),
			spentPuzzleHashes:            make(hashSet),
			createdCoinIDs:               make(hashSet),
			assertedCoinIDs:              make(hashSet),
		},
	}
}

// CoinAnnouncementID returns sha256(coin_id || message).
func CoinAnnouncementID(coinID wire.Bytes32, message []byte) wire.Bytes32 {
	return wire.Bytes32(clvm.Sha256(coinID[:], message))
}

// PuzzleAnnouncementID returns sha256(puzzle_hash || message).
func PuzzleAnnouncementID(puzzleHash wire.Bytes32,
	message []byte) wire.Bytes32 {

	return wire.Bytes32(clvm.Sha256(puzzleHash[:], message))
}

// AddSpend records a spent coin and the conditions its puzzle output.  A
// spend that failed to run is added with no conditions.
func (b *ContextBuilder) AddSpend(coin wire.Coin,
	conds []conditions.Condition) error {

	if b.ctx == nil {
		return parserError(ErrContextFrozen,
			"spend added to a frozen context", nil)
	}
	ctx := b.ctx

	coinID := coin.ID()
	ctx.spentCoinIDs.add(coinID)
	ctx.spentPuzzleHashes.add(coin.PuzzleHash)

	for _, c := range conds {
		switch c := c.(type) {
		case *conditions.CreateCoinAnnouncement:
			id := CoinAnnouncementID(coinID, c.Message)
			ctx.announcementCoinIDs[id] = coinID
			ctx.announcementMessages[id] = c.Message

		case *conditions.CreatePuzzleAnnouncement:
			id := PuzzleAnnouncementID(coin.PuzzleHash, c.Message)
			ctx.announcementPuzzleHashes[id] = coin.PuzzleHash
			ctx.announcementMessages[id] = c.Message

		case *conditions.AssertCoinAnnouncement:
			ctx.coinAnnouncementAssertions.add(c.AnnouncementID)

		case *conditions.AssertPuzzleAnnouncement:
			ctx.puzzleAnnouncementAssertions.add(c.AnnouncementID)

		case *conditions.CreateCoin:
			ctx.createdCoinIDs.add(
				wire.CoinID(coinID, c.PuzzleHash, c.Amount),
			)

		case *conditions.AssertConcurrentSpend:
			ctx.assertedCoinIDs.add(c.CoinID)
		}
	}

	return nil
}

// Freeze returns the finished context.  The builder cannot be used
// afterwards.
func (b *ContextBuilder) Freeze() *Context {
	ctx := b.ctx
	b.ctx = nil

	if ctx == nil {
		log.Warnf("Context builder frozen twice")
		return NewContextBuilder(false).Freeze()
	}

	log.Debugf("Froze context: %d spent coins, %d created, %d "+
		"announcements", len(ctx.spentCoinIDs), len(ctx.createdCoinIDs),
		len(ctx.announcementMessages))

	return ctx
}
