// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchdev/explorer/offer"
	"github.com/xchdev/explorer/wire"
)

// InputKind is the format an input was recognised as.
type InputKind uint8

// Input formats, in the order they are tried.
const (
	InputOffer InputKind = iota
	InputHexBundle
	InputCoinSpendList
	InputWrappedBundle
	InputBundle
	InputCoinSpend
	InputCoin
)

var inputKindStrings = map[InputKind]string{
	InputOffer:         "offer",
	InputHexBundle:     "hex spend bundle",
	InputCoinSpendList: "coin spend list",
	InputWrappedBundle: "wrapped spend bundle",
	InputBundle:        "spend bundle",
	InputCoinSpend:     "coin spend",
	InputCoin:          "coin",
}

// String returns the InputKind as a human-readable name.
func (k InputKind) String() string {
	if s := inputKindStrings[k]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown InputKind (%d)", uint8(k))
}

// Detected is a recognised input.  Every kind but InputCoin carries a
// bundle; InputCoin carries only the coin.
type Detected struct {
	Kind InputKind

	Bundle        *wire.SpendBundle
	SelfContained bool

	Coin *wire.Coin
}

type spendBundleJSON struct {
	CoinSpends          []wire.CoinSpend `json:"coin_spends"`
	AggregatedSignature wire.G2Element   `json:"aggregated_signature"`
}

func (s *spendBundleJSON) bundle() *wire.SpendBundle {
	return &wire.SpendBundle{
		CoinSpends:          s.CoinSpends,
		AggregatedSignature: s.AggregatedSignature,
	}
}

// DetectInput recognises pasted input.  It is tried as an offer, then as
// JSON holding one of: a hex serialized bundle, a list of coin spends, an
// object wrapping a bundle under spend_bundle, a bundle, a coin spend, or a
// coin.  None is returned when nothing matches.
func DetectInput(raw []byte) fn.Option[Detected] {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return fn.None[Detected]()
	}

	sb, err := offer.Decode(string(raw))
	if err == nil {
		return fn.Some(Detected{
			Kind:          InputOffer,
			Bundle:        sb,
			SelfContained: true,
		})
	}
	log.Tracef("Input is not an offer: %v", err)

	d, err := detectJSON(raw)
	if err != nil {
		log.Debugf("Unrecognised input: %v", err)
		return fn.None[Detected]()
	}
	return fn.Some(d)
}

func detectJSON(raw []byte) (Detected, error) {
	// Amounts stay json.Numbers so large values never pass through a
	// float.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return Detected{}, err
	}

	switch v := v.(type) {
	case string:
		b, err := wire.DecodeHex(v)
		if err != nil {
			return Detected{}, err
		}
		sb, err := wire.ParseSpendBundle(b)
		if err != nil {
			return Detected{}, err
		}
		return Detected{
			Kind:          InputHexBundle,
			Bundle:        sb,
			SelfContained: true,
		}, nil

	case []interface{}:
		var spends []wire.CoinSpend
		if err := json.Unmarshal(raw, &spends); err != nil {
			return Detected{}, err
		}
		return Detected{
			Kind: InputCoinSpendList,
			Bundle: &wire.SpendBundle{
				CoinSpends:          spends,
				AggregatedSignature: wire.InfinitySignature,
			},
			SelfContained: true,
		}, nil

	case map[string]interface{}:
		return detectObject(raw, v)
	}

	return Detected{}, fmt.Errorf("unexpected JSON value %T", v)
}

func detectObject(raw []byte, obj map[string]interface{}) (Detected,
	error) {

	has := func(key string) bool {
		_, ok := obj[key]
		return ok
	}

	switch {
	case has("spend_bundle"):
		var wrapped struct {
			SpendBundle spendBundleJSON `json:"spend_bundle"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return Detected{}, err
		}
		return Detected{
			Kind:          InputWrappedBundle,
			Bundle:        wrapped.SpendBundle.bundle(),
			SelfContained: true,
		}, nil

	case has("coin_spends"):
		var sb spendBundleJSON
		if err := json.Unmarshal(raw, &sb); err != nil {
			return Detected{}, err
		}
		return Detected{
			Kind:          InputBundle,
			Bundle:        sb.bundle(),
			SelfContained: true,
		}, nil

	case has("coin"):
		var cs wire.CoinSpend
		if err := json.Unmarshal(raw, &cs); err != nil {
			return Detected{}, err
		}
		return Detected{
			Kind: InputCoinSpend,
			Bundle: &wire.SpendBundle{
				CoinSpends:          []wire.CoinSpend{cs},
				AggregatedSignature: wire.InfinitySignature,
			},
		}, nil

	case has("parent_coin_info"):
		var coin wire.Coin
		if err := json.Unmarshal(raw, &coin); err != nil {
			return Detected{}, err
		}
		return Detected{
			Kind: InputCoin,
			Coin: &coin,
		}, nil
	}

	return Detected{}, fmt.Errorf("unrecognised JSON object")
}
