// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package offer decodes and encodes offer files.
//
// An offer is the bech32m encoding, with the prefix "offer", of a big-endian
// uint16 version followed by a zlib stream.  The stream inflates to a
// serialized spend bundle and is compressed against a preset dictionary
// that grows with each version: the dictionary of version n is the
// concatenation of the segments registered for versions 1 through n.
// Version 0 uses no dictionary.
package offer

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/xchdev/explorer/address"
	"github.com/xchdev/explorer/wire"
)

// Prefix is the human readable part of an offer string.
const Prefix = "offer"

// MaxDecompressedSize bounds the inflated size of an offer.
const MaxDecompressedSize = 16 << 20

var (
	dictMtx  sync.RWMutex
	segments = make(map[uint16][]byte)
)

// RegisterDictionary registers the dictionary segment introduced by a
// version.  Registering a version twice replaces its segment.
func RegisterDictionary(version uint16, segment []byte) {
	if version == 0 {
		return
	}

	dictMtx.Lock()
	defer dictMtx.Unlock()

	segments[version] = append([]byte(nil), segment...)
	log.Debugf("Registered offer dictionary segment for version %d "+
		"(%d bytes)", version, len(segment))
}

// dictionary returns the preset dictionary of a version.
func dictionary(version uint16) ([]byte, error) {
	dictMtx.RLock()
	defer dictMtx.RUnlock()

	var dict []byte
	for v := uint16(1); v <= version && v != 0; v++ {
		seg, ok := segments[v]
		if !ok {
			return nil, offerError(ErrUnknownVersion,
				fmt.Sprintf("no dictionary for version %d", v), nil)
		}
		dict = append(dict, seg...)
	}
	return dict, nil
}

// Decode returns the spend bundle of an offer string.  Surrounding
// whitespace is ignored.
func Decode(s string) (*wire.SpendBundle, error) {
	hrp, data, err := address.Decode(strings.TrimSpace(s))
	if err != nil {
		return nil, offerError(ErrEncoding, "invalid offer string", err)
	}
	if hrp != Prefix {
		return nil, offerError(ErrEncoding,
			fmt.Sprintf("unexpected prefix %q", hrp), nil)
	}
	if len(data) < 2 {
		return nil, offerError(ErrEncoding, "missing version", nil)
	}

	version := binary.BigEndian.Uint16(data)
	dict, err := dictionary(version)
	if err != nil {
		return nil, err
	}

	raw, err := inflate(data[2:], dict)
	if err != nil {
		return nil, err
	}

	sb, err := wire.ParseSpendBundle(raw)
	if err != nil {
		return nil, offerError(ErrSpendBundle,
			"offer does not hold a spend bundle", err)
	}

	log.Debugf("Decoded version %d offer with %d spends", version,
		len(sb.CoinSpends))

	return sb, nil
}

func inflate(compressed, dict []byte) ([]byte, error) {
	r, err := zlib.NewReaderDict(bytes.NewReader(compressed), dict)
	if err != nil {
		return nil, offerError(ErrCompression, "invalid zlib header", err)
	}
	defer r.Close()

	raw, err := io.ReadAll(io.LimitReader(r, MaxDecompressedSize+1))
	if err != nil {
		return nil, offerError(ErrCompression, "cannot inflate offer",
			err)
	}
	if len(raw) > MaxDecompressedSize {
		return nil, offerError(ErrCompression,
			"offer exceeds maximum size", nil)
	}
	return raw, nil
}

// Encode returns the offer string of a spend bundle, compressed with the
// dictionary of the given version.
func Encode(sb *wire.SpendBundle, version uint16) (string, error) {
	dict, err := dictionary(version)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, version)

	w, err := zlib.NewWriterLevelDict(&buf, zlib.BestCompression, dict)
	if err != nil {
		return "", offerError(ErrCompression, "cannot create writer", err)
	}
	if _, err := w.Write(sb.Serialize()); err != nil {
		return "", offerError(ErrCompression, "cannot compress offer",
			err)
	}
	if err := w.Close(); err != nil {
		return "", offerError(ErrCompression, "cannot compress offer",
			err)
	}

	s, err := address.Encode(buf.Bytes(), Prefix)
	if err != nil {
		return "", offerError(ErrEncoding, "cannot encode offer", err)
	}
	return s, nil
}
