// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package puzzles

import (
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchdev/explorer/clvm"
	"github.com/xchdev/explorer/wire"
)

// Puzzle is a puzzle program together with its hash and, when the program
// is curried, its uncurried mod and arguments.
type Puzzle struct {
	Program    *clvm.SExp
	PuzzleHash wire.Bytes32

	// ModHash is the tree hash of the uncurried mod, or the puzzle hash
	// when the program is not curried.
	ModHash wire.Bytes32
	Mod     *clvm.SExp
	Args    []*clvm.SExp
	Curried bool
}

// New hashes and uncurries a puzzle program.
func New(program *clvm.SExp) *Puzzle {
	p := &Puzzle{
		Program:    program,
		PuzzleHash: wire.Bytes32(clvm.TreeHash(program)),
		Mod:        program,
	}
	p.ModHash = p.PuzzleHash

	mod, args, ok := clvm.Uncurry(program)
	if ok {
		p.Mod = mod
		p.Args = args
		p.Curried = true
		p.ModHash = wire.Bytes32(clvm.TreeHash(mod))
	}

	return p
}

// Arg returns the i'th curried argument.
func (p *Puzzle) Arg(i int) fn.Option[*clvm.SExp] {
	if i < 0 || i >= len(p.Args) {
		return fn.None[*clvm.SExp]()
	}
	return fn.Some(p.Args[i])
}

// atomArg returns the i'th curried argument if it is an atom.
func (p *Puzzle) atomArg(i int) ([]byte, bool) {
	if i < 0 || i >= len(p.Args) {
		return nil, false
	}
	return p.Args[i].Atom()
}

// hashArg returns the i'th curried argument if it is a 32-byte atom.
func (p *Puzzle) hashArg(i int) (wire.Bytes32, bool) {
	var h wire.Bytes32
	b, ok := p.atomArg(i)
	if !ok || len(b) != len(h) {
		return h, false
	}
	copy(h[:], b)
	return h, true
}

// CATInfo describes a CAT v2 outer puzzle.
type CATInfo struct {
	AssetID     wire.Bytes32
	InnerPuzzle *Puzzle
}

// ParseCAT recognizes a CAT v2 puzzle, curried with
// (mod_hash, asset_id, inner_puzzle).
func (t *Templates) ParseCAT(p *Puzzle) fn.Option[CATInfo] {
	if !p.Curried || p.ModHash != t.CAT || len(p.Args) != 3 {
		return fn.None[CATInfo]()
	}
	assetID, ok := p.hashArg(1)
	if !ok {
		return fn.None[CATInfo]()
	}

	return fn.Some(CATInfo{
		AssetID:     assetID,
		InnerPuzzle: New(p.Args[2]),
	})
}

// SingletonInfo describes a singleton top layer.
type SingletonInfo struct {
	LauncherID         wire.Bytes32
	LauncherPuzzleHash wire.Bytes32
	InnerPuzzle        *Puzzle
}

// singletonStruct splits (mod_hash . (launcher_id . launcher_puzzle_hash)).
func singletonStruct(s *clvm.SExp) ([]byte, []byte, bool) {
	_, rest, ok := s.Pair()
	if !ok {
		return nil, nil, false
	}
	first, second, ok := rest.Pair()
	if !ok {
		return nil, nil, false
	}
	launcherID, ok := first.Atom()
	if !ok {
		return nil, nil, false
	}
	launcherPuzzleHash, _ := second.Atom()
	return launcherID, launcherPuzzleHash, true
}

// ParseSingleton recognizes a singleton top layer v1.1 puzzle, curried with
// (singleton_struct, inner_puzzle).
func (t *Templates) ParseSingleton(p *Puzzle) fn.Option[SingletonInfo] {
	info, ok := t.parseSingleton(p)
	if !ok {
		return fn.None[SingletonInfo]()
	}
	return fn.Some(info)
}

func (t *Templates) parseSingleton(p *Puzzle) (SingletonInfo, bool) {
	var info SingletonInfo
	if !p.Curried || p.ModHash != t.SingletonTopLayer || len(p.Args) != 2 {
		return info, false
	}

	launcherID, launcherPuzzleHash, ok := singletonStruct(p.Args[0])
	if !ok || len(launcherID) != 32 {
		return info, false
	}

	info.InnerPuzzle = New(p.Args[1])
	copy(info.LauncherID[:], launcherID)
	if len(launcherPuzzleHash) == 32 {
		copy(info.LauncherPuzzleHash[:], launcherPuzzleHash)
	}
	return info, true
}

// NFTInfo describes an NFT: a singleton wrapping the state layer and the
// ownership layer.
type NFTInfo struct {
	LauncherID                wire.Bytes32
	Metadata                  *clvm.SExp
	MetadataUpdaterPuzzleHash wire.Bytes32
	CurrentOwner              fn.Option[wire.Bytes32]
	InnerPuzzle               *Puzzle
}

// ParseNFT recognizes an NFT puzzle.
func (t *Templates) ParseNFT(p *Puzzle) fn.Option[NFTInfo] {
	singleton, ok := t.parseSingleton(p)
	if !ok {
		return fn.None[NFTInfo]()
	}

	state := singleton.InnerPuzzle
	if !state.Curried || state.ModHash != t.NFTStateLayer ||
		len(state.Args) != 4 {

		return fn.None[NFTInfo]()
	}
	updater, ok := state.hashArg(2)
	if !ok {
		return fn.None[NFTInfo]()
	}

	ownership := New(state.Args[3])
	if !ownership.Curried || ownership.ModHash != t.NFTOwnershipLayer ||
		len(ownership.Args) != 4 {

		return fn.None[NFTInfo]()
	}

	owner := fn.None[wire.Bytes32]()
	if h, ok := ownership.hashArg(1); ok {
		owner = fn.Some(h)
	}

	return fn.Some(NFTInfo{
		LauncherID:                singleton.LauncherID,
		Metadata:                  state.Args[1],
		MetadataUpdaterPuzzleHash: updater,
		CurrentOwner:              owner,
		InnerPuzzle:               New(ownership.Args[3]),
	})
}

// DIDInfo describes a DID: a singleton wrapping the DID inner puzzle,
// curried with (inner_puzzle, recovery_list_hash, num_verifications,
// singleton_struct, metadata).
type DIDInfo struct {
	LauncherID  wire.Bytes32
	Metadata    *clvm.SExp
	InnerPuzzle *Puzzle
}

// ParseDID recognizes a DID puzzle.
func (t *Templates) ParseDID(p *Puzzle) fn.Option[DIDInfo] {
	singleton, ok := t.parseSingleton(p)
	if !ok {
		return fn.None[DIDInfo]()
	}

	did := singleton.InnerPuzzle
	if !did.Curried || did.ModHash != t.DIDInnerPuzzle ||
		len(did.Args) != 5 {

		return fn.None[DIDInfo]()
	}

	return fn.Some(DIDInfo{
		LauncherID:  singleton.LauncherID,
		Metadata:    did.Args[4],
		InnerPuzzle: New(did.Args[0]),
	})
}
