// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
	"github.com/xchdev/explorer/address"
	"github.com/xchdev/explorer/parser"
	"github.com/xchdev/explorer/wire"
)

func fill(b byte) wire.Bytes32 {
	var h wire.Bytes32
	for i := range h {
		h[i] = b
	}
	return h
}

const tokensReply = `{"tokens": [` +
	`{"id": "AB01", "code": "SBX", "name": "Spacebucks", "denom": 1000, ` +
	`"icon": "https://icons/sbx.png"}, ` +
	`{"id": "cd02", "code": "DBX", "name": "dexie bucks", "denom": 1000}]}`

// countingServer serves reply and counts requests.
func countingServer(t *testing.T, status int, reply string) (string,
	*int32) {

	t.Helper()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			if status != 0 {
				w.WriteHeader(status)
			}
			fmt.Fprint(w, reply)
		},
	))
	t.Cleanup(srv.Close)

	return srv.URL, &hits
}

// TestDexieToken checks token lookups and that the list is fetched once.
func TestDexieToken(t *testing.T) {
	t.Parallel()

	url, hits := countingServer(t, 0, tokensReply)
	d := NewDexie(&DexieConfig{HTTPConfig: HTTPConfig{URL: url}})

	testCases := []struct {
		name    string
		assetID string
		code    string
	}{
		{name: "prefixed upper", assetID: "0xAb01", code: "SBX"},
		{name: "bare", assetID: "cd02", code: "DBX"},
		{name: "unlisted", assetID: "0xee03"},
	}

	for _, testCase := range testCases {
		token, err := d.Token(context.Background(), testCase.assetID)
		require.NoError(t, err, testCase.name)
		if testCase.code == "" {
			require.True(t, token.IsNone(), testCase.name)
			continue
		}
		require.Equal(
			t, testCase.code, token.UnwrapOr(Token{}).Code,
			testCase.name,
		)
	}

	require.EqualValues(t, 1, atomic.LoadInt32(hits))
}

// TestDexieConcurrentFetch checks that concurrent lookups share one fetch.
func TestDexieConcurrentFetch(t *testing.T) {
	t.Parallel()

	var hits int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			<-release
			fmt.Fprint(w, tokensReply)
		},
	))
	defer srv.Close()

	d := NewDexie(&DexieConfig{HTTPConfig: HTTPConfig{URL: srv.URL}})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens, err := d.Tokens(context.Background())
			require.NoError(t, err)
			require.Len(t, tokens, 2)
		}()
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&hits) == 1
	}, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

// TestDexieStale checks that an expired list is refreshed, and kept when
// the refresh fails.
func TestDexieStale(t *testing.T) {
	t.Parallel()

	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if fail.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, tokensReply)
		},
	))
	defer srv.Close()

	d := NewDexie(&DexieConfig{
		HTTPConfig: HTTPConfig{URL: srv.URL},
		TTL:        time.Nanosecond,
	})

	tokens, err := d.Tokens(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	fail.Store(true)
	tokens, err = d.Tokens(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens, 2)
}

// TestDexieErrors checks the failures of a first fetch.
func TestDexieErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		status int
		reply  string
	}{
		{name: "http error", status: http.StatusBadGateway},
		{name: "malformed", reply: `{"tokens": [`},
		{name: "missing tokens", reply: `{"tokens": null}`},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			url, _ := countingServer(t, testCase.status, testCase.reply)
			d := NewDexie(&DexieConfig{
				HTTPConfig: HTTPConfig{URL: url},
			})

			token, err := d.Token(context.Background(), "ab01")
			require.Error(t, err)
			require.True(t, token.IsNone())
		})
	}
}

// TestMintGardenNFT checks NFT lookups by launcher id and their cache.
func TestMintGardenNFT(t *testing.T) {
	t.Parallel()

	launcherID := fill(0x0f)
	encoded := address.EncodeHash(launcherID, address.PrefixNFT)

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			if r.URL.Path != "/nfts/"+encoded {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			fmt.Fprintf(w, `{"id": "%s", "encoded_id": "%s", `+
				`"data": {"thumbnail_uri": "https://t", `+
				`"metadata_json": {"name": "Frog #1"}}}`,
				launcherID.Hex(), encoded)
		},
	))
	defer srv.Close()

	m, err := NewMintGarden(&MintGardenConfig{
		HTTPConfig:        HTTPConfig{URL: srv.URL},
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		nft, err := m.NFT(context.Background(), launcherID)
		require.NoError(t, err)
		require.Equal(t, "Frog #1", nft.Name())
		require.Equal(t, encoded, nft.EncodedID)
	}
	require.EqualValues(t, 1, atomic.LoadInt32(&hits))

	_, err = m.NFT(context.Background(), fill(0x10))
	require.ErrorIs(t, err, ErrNotFound)

	var empty NFT
	require.Empty(t, empty.Name())
}

// TestMintGardenRateLimit checks that a canceled wait for the limiter
// fails the lookup.
func TestMintGardenRateLimit(t *testing.T) {
	t.Parallel()

	url, hits := countingServer(t, 0, `{"id": "x"}`)
	m, err := NewMintGarden(&MintGardenConfig{
		HTTPConfig:        HTTPConfig{URL: url},
		RequestsPerSecond: 0.001,
	})
	require.NoError(t, err)

	_, err = m.NFT(context.Background(), fill(0x01))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(
		context.Background(), 10*time.Millisecond,
	)
	defer cancel()
	_, err = m.NFT(ctx, fill(0x02))
	require.Error(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(hits))
}

// TestParseLauncherID checks both accepted launcher id forms.
func TestParseLauncherID(t *testing.T) {
	t.Parallel()

	id := fill(0x42)
	testCases := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "address", input: address.EncodeHash(id, "nft"), valid: true},
		{name: "hex", input: id.Hex(), valid: true},
		{name: "prefixed hex", input: " " + id.String() + " ", valid: true},
		{name: "wrong prefix", input: address.EncodeHash(id, "xch")},
		{name: "short", input: "0x42"},
	}

	for _, testCase := range testCases {
		got, err := ParseLauncherID(testCase.input)
		if !testCase.valid {
			require.Error(t, err, testCase.name)
			continue
		}
		require.NoError(t, err, testCase.name)
		require.Equal(t, id, got, testCase.name)
	}
}

type fakeTokens struct {
	tokens map[string]Token
	err    error
}

func (f *fakeTokens) Token(_ context.Context,
	assetID string) (fn.Option[Token], error) {

	if f.err != nil {
		return fn.None[Token](), f.err
	}
	t, ok := f.tokens[normalizeAssetID(assetID)]
	if !ok {
		return fn.None[Token](), nil
	}
	return fn.Some(t), nil
}

type fakeNFTs struct {
	mtx     sync.Mutex
	lookups []wire.Bytes32
	nfts    map[wire.Bytes32]*NFT
}

func (f *fakeNFTs) NFT(_ context.Context, id wire.Bytes32) (*NFT, error) {
	f.mtx.Lock()
	f.lookups = append(f.lookups, id)
	f.mtx.Unlock()

	nft, ok := f.nfts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return nft, nil
}

// TestDecorateCoins checks that each distinct asset is looked up once and
// that failures are left out.
func TestDecorateCoins(t *testing.T) {
	t.Parallel()

	catID := fill(0xca)
	nftID := fill(0x0f)
	missingNFT := fill(0x10)
	nftAsset := address.EncodeHash(nftID, address.PrefixNFT)

	coins := []parser.ParsedCoin{
		{Type: parser.CoinCAT, AssetID: catID.String()},
		{Type: parser.CoinCAT, AssetID: catID.String()},
		{Type: parser.CoinCAT, AssetID: fill(0xcb).String()},
		{Type: parser.CoinNFT, AssetID: nftAsset},
		{Type: parser.CoinNFT, AssetID: nftAsset},
		{
			Type:    parser.CoinNFT,
			AssetID: address.EncodeHash(missingNFT, address.PrefixNFT),
		},
		{Type: parser.CoinUnknown, AssetID: parser.AssetXCH},
		{Type: parser.CoinDID, AssetID: "did:chia:1abc"},
	}

	nfts := &fakeNFTs{nfts: map[wire.Bytes32]*NFT{
		nftID: {ID: nftID.Hex(), EncodedID: nftAsset},
	}}
	d := &Decorator{
		Tokens: &fakeTokens{tokens: map[string]Token{
			catID.Hex(): {ID: catID.Hex(), Code: "SBX"},
		}},
		NFTs:        nfts,
		Concurrency: 2,
	}

	dec, err := d.DecorateCoins(context.Background(), coins)
	require.NoError(t, err)

	require.Len(t, dec.Tokens, 1)
	require.Equal(t, "SBX", dec.Tokens[catID.String()].Code)
	require.Len(t, dec.NFTs, 1)
	require.Equal(t, nftAsset, dec.NFTs[nftAsset].EncodedID)
	require.ElementsMatch(
		t, []wire.Bytes32{nftID, missingNFT}, nfts.lookups,
	)
}

// TestDecorateFailures checks that source errors are swallowed and that
// cancellation is not.
func TestDecorateFailures(t *testing.T) {
	t.Parallel()

	coins := []parser.ParsedCoin{
		{Type: parser.CoinCAT, AssetID: fill(0xca).String()},
	}
	d := &Decorator{
		Tokens: &fakeTokens{err: errors.New("unreachable")},
	}

	dec, err := d.DecorateCoins(context.Background(), coins)
	require.NoError(t, err)
	require.Empty(t, dec.Tokens)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.DecorateCoins(ctx, coins)
	require.ErrorIs(t, err, context.Canceled)

	// Without sources nothing is looked up.
	dec, err = (&Decorator{}).DecorateCoins(context.Background(), coins)
	require.NoError(t, err)
	require.Empty(t, dec.Tokens)
	require.Empty(t, dec.NFTs)
}
