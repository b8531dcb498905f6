// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package puzzles

import (
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchdev/explorer/clvm"
)

// NFTMetadata is the decoded form of the metadata curried into an NFT
// state layer.
type NFTMetadata struct {
	EditionNumber uint64
	EditionTotal  uint64
	DataURIs      []string
	DataHash      fn.Option[[]byte]
	MetadataURIs  []string
	MetadataHash  fn.Option[[]byte]
	LicenseURIs   []string
	LicenseHash   fn.Option[[]byte]
}

// ParseNFTMetadata decodes a list of (key . value) pairs.  Unknown keys are
// ignored.  None is returned when the structure or a known value is
// malformed.
func ParseNFTMetadata(s *clvm.SExp) fn.Option[NFTMetadata] {
	md := NFTMetadata{
		EditionNumber: 1,
		EditionTotal:  1,
	}

	items, ok := s.ToList()
	if !ok {
		return fn.None[NFTMetadata]()
	}

	for _, item := range items {
		k, v, ok := item.Pair()
		if !ok {
			return fn.None[NFTMetadata]()
		}
		key, ok := k.Atom()
		if !ok {
			return fn.None[NFTMetadata]()
		}

		switch string(key) {
		case "u":
			md.DataURIs, ok = stringList(v)
		case "h":
			md.DataHash, ok = hashValue(v)
		case "mu":
			md.MetadataURIs, ok = stringList(v)
		case "mh":
			md.MetadataHash, ok = hashValue(v)
		case "lu":
			md.LicenseURIs, ok = stringList(v)
		case "lh":
			md.LicenseHash, ok = hashValue(v)
		case "sn":
			md.EditionNumber, ok = v.Uint64()
		case "st":
			md.EditionTotal, ok = v.Uint64()
		}
		if !ok {
			log.Debugf("Malformed NFT metadata value for key %q",
				key)
			return fn.None[NFTMetadata]()
		}
	}

	return fn.Some(md)
}

func stringList(s *clvm.SExp) ([]string, bool) {
	items, ok := s.ToList()
	if !ok {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		b, ok := item.Atom()
		if !ok {
			return nil, false
		}
		out = append(out, string(b))
	}
	return out, true
}

func hashValue(s *clvm.SExp) (fn.Option[[]byte], bool) {
	b, ok := s.Atom()
	if !ok {
		return fn.None[[]byte](), false
	}
	return fn.Some(b), true
}
