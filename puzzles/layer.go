// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package puzzles

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/xchdev/explorer/address"
	"github.com/xchdev/explorer/clvm"
	"github.com/xchdev/explorer/wire"
)

// ArgKind tells a presentation layer how a rendered value may be used.
type ArgKind uint8

const (
	// CoinID values are coin ids that can be linked to.
	CoinID ArgKind = iota

	// Copiable values are hashes and keys worth copying.
	Copiable

	// NonCopiable values are plain text.
	NonCopiable
)

var argKindStrings = map[ArgKind]string{
	CoinID:      "coin_id",
	Copiable:    "copiable",
	NonCopiable: "non_copiable",
}

// String returns the ArgKind as a human-readable name.
func (k ArgKind) String() string {
	s := argKindStrings[k]
	if s != "" {
		return s
	}
	return "unknown"
}

// MarshalText encodes the kind as its name.
func (k ArgKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// LayerArg is one rendered argument of a puzzle layer.
type LayerArg struct {
	Key   string  `json:"key"`
	Value string  `json:"value"`
	Kind  ArgKind `json:"kind"`
}

// NamedLayer is a child layer together with the argument name it was
// curried under.
type NamedLayer struct {
	Key   string      `json:"key"`
	Layer ParsedLayer `json:"layer"`
}

// ParsedLayer is the decoded outer layer of a puzzle and, recursively, the
// layers it wraps.
type ParsedLayer struct {
	Name     string       `json:"name"`
	ModHash  string       `json:"mod_hash"`
	Args     []LayerArg   `json:"args"`
	Children []NamedLayer `json:"children"`
}

// Arg returns the value of the named argument.
func (l *ParsedLayer) Arg(key string) (LayerArg, bool) {
	for _, a := range l.Args {
		if a.Key == key {
			return a, true
		}
	}
	return LayerArg{}, false
}

// Child returns the named child layer.
func (l *ParsedLayer) Child(key string) (*ParsedLayer, bool) {
	for i := range l.Children {
		if l.Children[i].Key == key {
			return &l.Children[i].Layer, true
		}
	}
	return nil, false
}

func hexValue(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// layerBuilder accumulates the arguments and children of one layer.
type layerBuilder struct {
	p     *Puzzle
	t     *Templates
	layer ParsedLayer
}

func (b *layerBuilder) add(key, value string, kind ArgKind) {
	b.layer.Args = append(b.layer.Args, LayerArg{
		Key:   key,
		Value: value,
		Kind:  kind,
	})
}

// addHex adds the i'th curried argument as hex when it is an atom.
func (b *layerBuilder) addHex(key string, i int, kind ArgKind) {
	if v, ok := b.p.atomArg(i); ok {
		b.add(key, hexValue(v), kind)
	}
}

// addInt adds the i'th curried argument as a decimal integer.
func (b *layerBuilder) addInt(key string, i int) {
	if i >= len(b.p.Args) {
		return
	}
	if n, ok := b.p.Args[i].BigInt(); ok {
		b.add(key, n.String(), NonCopiable)
	}
}

// addChild decodes the i'th curried argument as a nested puzzle.
func (b *layerBuilder) addChild(key string, i int) {
	if i >= len(b.p.Args) {
		return
	}
	b.layer.Children = append(b.layer.Children, NamedLayer{
		Key:   key,
		Layer: ParseLayer(New(b.p.Args[i]), b.t),
	})
}

// UnknownLayer is the layer shown for a puzzle reveal that could not be
// deserialized.
func UnknownLayer(puzzleHash wire.Bytes32) ParsedLayer {
	return ParsedLayer{
		Name:    "Unknown",
		ModHash: puzzleHash.String(),
		Args: []LayerArg{{
			Key:   "mod_hash",
			Value: puzzleHash.String(),
			Kind:  Copiable,
		}},
	}
}

// ParseLayer decodes the layer tree of a puzzle.  Unrecognized puzzles
// produce a layer named "Unknown" carrying only the mod hash.
func ParseLayer(p *Puzzle, t *Templates) ParsedLayer {
	b := &layerBuilder{
		p: p,
		t: t,
		layer: ParsedLayer{
			Name:    t.name(p),
			ModHash: p.ModHash.String(),
		},
	}
	if b.layer.Name == "" {
		b.layer.Name = "Unknown"
	}
	b.add("mod_hash", p.ModHash.String(), Copiable)

	switch {
	case p.ModHash == t.P2DelegatedOrHidden:
		key := "Missing"
		if v, ok := p.atomArg(0); ok {
			key = hexValue(v)
		}
		b.add("synthetic_public_key", key, Copiable)

	case p.ModHash == t.P2Delegated:
		b.addHex("public_key", 0, Copiable)

	case p.ModHash == t.CAT:
		b.addHex("asset_id", 1, Copiable)
		b.addChild("inner_puzzle", 2)

	case p.PuzzleHash == t.SettlementPayment,
		p.PuzzleHash == t.SingletonLauncher:

		// Not curried, nothing beyond the name to show.

	case p.ModHash == t.SingletonTopLayer:
		b.addSingletonStruct()
		b.addChild("inner_puzzle", 1)

	case p.ModHash == t.NFTStateLayer:
		b.addNFTMetadata()
		b.addHex("metadata_updater_puzzle_hash", 2, Copiable)
		b.addChild("inner_puzzle", 3)

	case p.ModHash == t.NFTOwnershipLayer:
		if v, ok := p.atomArg(1); ok {
			if len(v) == 0 {
				b.add("current_owner", "None", NonCopiable)
			} else {
				b.add("current_owner", hexValue(v), Copiable)
			}
		}
		b.addChild("transfer_program", 2)
		b.addChild("inner_puzzle", 3)

	case p.ModHash == t.RoyaltyTransferProgram:
		if v, ok := p.atomArg(1); ok {
			addr, err := address.Encode(v, address.PrefixXCH)
			if err == nil {
				b.add("royalty_address", addr, Copiable)
			}
		}
		b.addInt("royalty_basis_points", 2)

	case p.ModHash == t.P2SingletonOrDelayed:
		b.addHex("launcher_id", 1, CoinID)
		b.addInt("seconds_delay", 3)
		b.addHex("delayed_puzzle_hash", 4, Copiable)
	}

	return b.layer
}

// addSingletonStruct renders the launcher id and launcher puzzle hash
// from the curried (mod_hash . (launcher_id . launcher_puzzle_hash)).
func (b *layerBuilder) addSingletonStruct() {
	if len(b.p.Args) == 0 {
		return
	}
	_, rest, ok := b.p.Args[0].Pair()
	if !ok {
		return
	}
	id, ph, ok := rest.Pair()
	if !ok {
		return
	}

	if v, ok := id.Atom(); ok {
		b.add("launcher_id", hexValue(v), CoinID)
	}
	if v, ok := ph.Atom(); ok {
		b.add("launcher_puzzle_hash", hexValue(v), Copiable)
	}
}

// addNFTMetadata renders the metadata curried into an NFT state layer,
// falling back to its disassembly when it cannot be decoded.
func (b *layerBuilder) addNFTMetadata() {
	if len(b.p.Args) < 2 {
		return
	}
	program := b.p.Args[1]

	parsed := ParseNFTMetadata(program)
	if parsed.IsNone() {
		b.add("metadata", clvm.Disassemble(program), NonCopiable)
		return
	}
	md := parsed.UnwrapOr(NFTMetadata{})

	md.DataHash.WhenSome(func(h []byte) {
		b.add("data_hash", hexValue(h), Copiable)
	})
	if len(md.DataURIs) > 0 {
		b.add("data_uris", strings.Join(md.DataURIs, ", "), NonCopiable)
	}
	md.MetadataHash.WhenSome(func(h []byte) {
		b.add("metadata_hash", hexValue(h), Copiable)
	})
	if len(md.MetadataURIs) > 0 {
		b.add("metadata_uris", strings.Join(md.MetadataURIs, ", "),
			NonCopiable)
	}
	md.LicenseHash.WhenSome(func(h []byte) {
		b.add("license_hash", hexValue(h), Copiable)
	})
	if len(md.LicenseURIs) > 0 {
		b.add("license_uris", strings.Join(md.LicenseURIs, ", "),
			NonCopiable)
	}
	b.add("edition_number", strconv.FormatUint(md.EditionNumber, 10),
		NonCopiable)
	b.add("edition_total", strconv.FormatUint(md.EditionTotal, 10),
		NonCopiable)
}
