// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinset

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xchdev/explorer/wire"
)

func fill(b byte) wire.Bytes32 {
	var h wire.Bytes32
	for i := range h {
		h[i] = b
	}
	return h
}

// rpcHandler answers a single method, recording the decoded request.
type rpcHandler struct {
	t      *testing.T
	method string
	status int
	reply  string

	mtx sync.Mutex
	req map[string]interface{}
}

// request returns the last decoded request.
func (h *rpcHandler) request() map[string]interface{} {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.req
}

func (h *rpcHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	require.Equal(h.t, http.MethodPost, r.Method)
	require.Equal(h.t, "/"+h.method, r.URL.Path)
	require.Equal(h.t, "application/json", r.Header.Get("Content-Type"))

	req := make(map[string]interface{})
	require.NoError(h.t, json.NewDecoder(r.Body).Decode(&req))
	h.mtx.Lock()
	h.req = req
	h.mtx.Unlock()

	if h.status != 0 {
		w.WriteHeader(h.status)
	}
	_, _ = w.Write([]byte(h.reply))
}

func newTestClient(t *testing.T, h *rpcHandler) *Client {
	t.Helper()

	h.t = t
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(&Config{URL: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

// TestNewRequiresURL checks that a client needs an endpoint.
func TestNewRequiresURL(t *testing.T) {
	t.Parallel()

	_, err := New(&Config{})
	require.ErrorIs(t, err, ErrNoURL)
}

// TestCoinRecord checks the request and decoding of a coin record.
func TestCoinRecord(t *testing.T) {
	t.Parallel()

	h := &rpcHandler{
		method: "get_coin_record_by_name",
		reply: `{"success": true, "coin_record": {"coin": {` +
			`"parent_coin_info": "` + fill(0x01).String() + `", ` +
			`"puzzle_hash": "` + fill(0x02).String() + `", ` +
			`"amount": 18446744073709551615}, ` +
			`"confirmed_block_index": 10, "spent_block_index": 12, ` +
			`"spent": true, "coinbase": false, "timestamp": 1700000000}}`,
	}
	c := newTestClient(t, h)

	id := fill(0xaa)
	rec, err := c.CoinRecord(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, id.String(), h.request()["name"])

	require.Equal(t, fill(0x01), rec.Coin.ParentCoinInfo)
	require.Equal(t, uint64(18446744073709551615), rec.Coin.Amount)
	require.Equal(t, uint32(10), rec.ConfirmedBlockIndex)
	require.True(t, rec.IsSpent())
}

// TestErrors checks how failed requests are reported.
func TestErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		status   int
		reply    string
		notFound bool
		rpcError bool
	}{
		{
			name:     "not found",
			reply:    `{"success": false, "error": "Coin record not found"}`,
			notFound: true,
		},
		{
			name:     "node error",
			reply:    `{"success": false, "error": "invalid name"}`,
			rpcError: true,
		},
		{
			name:     "missing message",
			reply:    `{"success": false}`,
			rpcError: true,
		},
		{
			name:     "http error",
			status:   http.StatusBadGateway,
			reply:    "bad gateway",
			rpcError: true,
		},
		{
			name:  "malformed",
			reply: `{"success": tru`,
		},
		{
			name:     "missing record",
			reply:    `{"success": true}`,
			notFound: true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, &rpcHandler{
				method: "get_coin_record_by_name",
				status: testCase.status,
				reply:  testCase.reply,
			})

			_, err := c.CoinRecord(context.Background(), fill(0x01))
			require.Error(t, err)
			require.Equal(
				t, testCase.notFound, errors.Is(err, ErrNotFound),
				"got %v", err,
			)

			var rpcErr *RPCError
			require.Equal(
				t, testCase.rpcError, errors.As(err, &rpcErr),
				"got %v", err,
			)
			if testCase.rpcError {
				require.Equal(
					t, "get_coin_record_by_name", rpcErr.Method,
				)
			}
		})
	}
}

// TestBlockSpends checks that block spends decode into coin spends.
func TestBlockSpends(t *testing.T) {
	t.Parallel()

	spend := wire.CoinSpend{
		Coin: wire.Coin{
			ParentCoinInfo: fill(0x01),
			PuzzleHash:     fill(0x02),
			Amount:         3,
		},
		PuzzleReveal: wire.Program{0x01},
		Solution:     wire.Program{0x80},
	}
	reply, err := json.Marshal(map[string]interface{}{
		"success":      true,
		"block_spends": []wire.CoinSpend{spend},
	})
	require.NoError(t, err)

	h := &rpcHandler{method: "get_block_spends", reply: string(reply)}
	c := newTestClient(t, h)

	spends, err := c.BlockSpends(context.Background(), fill(0xbb))
	require.NoError(t, err)
	require.Equal(t, fill(0xbb).String(), h.request()["header_hash"])
	require.Equal(t, []wire.CoinSpend{spend}, spends)
}

// TestBlockRecordByHeight checks block record decoding, including the
// fields only transaction blocks carry.
func TestBlockRecordByHeight(t *testing.T) {
	t.Parallel()

	h := &rpcHandler{
		method: "get_block_record_by_height",
		reply: `{"success": true, "block_record": {` +
			`"header_hash": "` + fill(0x0b).String() + `", ` +
			`"prev_hash": "` + fill(0x0a).String() + `", ` +
			`"height": 5000000, "timestamp": 1700000000, ` +
			`"fees": 100, "reward_claims_incorporated": [{` +
			`"parent_coin_info": "` + fill(0x01).String() + `", ` +
			`"puzzle_hash": "` + fill(0x02).String() + `", ` +
			`"amount": 250000000000}]}}`,
	}
	c := newTestClient(t, h)

	rec, err := c.BlockRecordByHeight(context.Background(), 5000000)
	require.NoError(t, err)
	require.EqualValues(t, 5000000, h.request()["height"])

	require.Equal(t, fill(0x0b), rec.HeaderHash)
	require.True(t, rec.IsTransactionBlock())
	require.Len(t, rec.RewardClaimsIncorporated, 1)
	require.Equal(
		t, uint64(250000000000), rec.RewardClaimsIncorporated[0].Amount,
	)
}

// TestPuzzleAndSolution checks the spend lookup of a coin.
func TestPuzzleAndSolution(t *testing.T) {
	t.Parallel()

	h := &rpcHandler{
		method: "get_puzzle_and_solution",
		reply: `{"success": true, "coin_solution": {"coin": {` +
			`"parent_coin_info": "` + fill(0x01).String() + `", ` +
			`"puzzle_hash": "` + fill(0x02).String() + `", ` +
			`"amount": 1}, "puzzle_reveal": "0x01", "solution": "0x80"}}`,
	}
	c := newTestClient(t, h)

	spend, err := c.PuzzleAndSolution(context.Background(), fill(0x03), 7)
	require.NoError(t, err)
	require.Equal(t, fill(0x03).String(), h.request()["coin_id"])
	require.EqualValues(t, 7, h.request()["height"])
	require.Equal(t, wire.Program{0x01}, spend.PuzzleReveal)
	require.Equal(t, wire.Program{0x80}, spend.Solution)
}

// TestBlockchainState checks the peak and netspace of the chain state.
func TestBlockchainState(t *testing.T) {
	t.Parallel()

	h := &rpcHandler{
		method: "get_blockchain_state",
		reply: `{"success": true, "blockchain_state": {` +
			`"peak": {"height": 42}, "sync": {"synced": true}, ` +
			`"difficulty": 1000, "mempool_size": 3, ` +
			`"space": 30000000000000000000000}}`,
	}
	c := newTestClient(t, h)

	state, err := c.BlockchainState(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint32(42), state.PeakHeight())
	require.True(t, state.Sync.Synced)
	require.Equal(t, "30000000000000000000000", state.Space.String())

	var empty BlockchainState
	require.Zero(t, empty.PeakHeight())
}

// TestAdditionsAndRemovals checks both lists are returned.
func TestAdditionsAndRemovals(t *testing.T) {
	t.Parallel()

	record := `{"coin": {"parent_coin_info": "` + fill(0x01).String() +
		`", "puzzle_hash": "` + fill(0x02).String() + `", "amount": 1}}`
	h := &rpcHandler{
		method: "get_additions_and_removals",
		reply: `{"success": true, "additions": [` + record + `, ` +
			record + `], "removals": [` + record + `]}`,
	}
	c := newTestClient(t, h)

	additions, removals, err := c.AdditionsAndRemovals(
		context.Background(), fill(0x0b),
	)
	require.NoError(t, err)
	require.Len(t, additions, 2)
	require.Len(t, removals, 1)
}

// TestCoinRecordsByParentIDs checks the request of the children lookup.
func TestCoinRecordsByParentIDs(t *testing.T) {
	t.Parallel()

	h := &rpcHandler{
		method: "get_coin_records_by_parent_ids",
		reply:  `{"success": true, "coin_records": []}`,
	}
	c := newTestClient(t, h)

	records, err := c.CoinRecordsByParentIDs(
		context.Background(), []wire.Bytes32{fill(0x01)}, true,
	)
	require.NoError(t, err)
	require.Empty(t, records)
	require.Equal(
		t, []interface{}{fill(0x01).String()}, h.request()["parent_ids"],
	)
	require.Equal(t, true, h.request()["include_spent_coins"])
}

// TestCanceledContext checks that a canceled request fails.
func TestCanceledContext(t *testing.T) {
	t.Parallel()

	c, err := New(&Config{
		URL:               "http://127.0.0.1:1",
		RequestsPerSecond: 1,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.BlockchainState(ctx)
	require.Error(t, err)
}
