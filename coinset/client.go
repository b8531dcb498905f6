// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package coinset is a client for the full node RPC API served by
// coinset.org and by the Chia full node itself.  Every method is a JSON POST
// to /<method> that answers with an object carrying a success flag.
package coinset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xchdev/explorer/wire"
	"golang.org/x/time/rate"
)

const (
	// DefaultURL is the public mainnet endpoint.
	DefaultURL = "https://api.coinset.org"

	// TestnetURL is the public testnet11 endpoint.
	TestnetURL = "https://testnet11.api.coinset.org"

	// DefaultTimeout bounds each request.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize bounds the body read from a response.
	maxResponseSize = 64 << 20
)

var (
	// ErrNotFound is returned when the node has no record of the
	// requested item.
	ErrNotFound = errors.New("coinset: not found")

	// ErrNoURL is returned by New when the config has no endpoint.
	ErrNoURL = errors.New("coinset: no endpoint configured")
)

// RPCError is an error reported by the node.
type RPCError struct {
	Method  string
	Status  int
	Message string
}

// Error satisfies the error interface.
func (e *RPCError) Error() string {
	if e.Status != 0 && e.Status != http.StatusOK {
		return fmt.Sprintf("coinset: %s: HTTP %d: %s", e.Method,
			e.Status, e.Message)
	}
	return fmt.Sprintf("coinset: %s: %s", e.Method, e.Message)
}

// Config holds the client settings.
type Config struct {
	// URL is the endpoint root, such as https://api.coinset.org.
	URL string

	// Timeout bounds each request.  Zero means DefaultTimeout.
	Timeout time.Duration

	// RequestsPerSecond limits the request rate.  Zero means no limit.
	RequestsPerSecond float64

	// HTTPClient replaces the default client.
	HTTPClient *http.Client
}

// Client talks to a full node RPC endpoint.  It is safe for concurrent use.
type Client struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
}

// New returns a client for the configured endpoint.
func New(cfg *Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrNoURL
	}

	c := &Client{
		url:  strings.TrimRight(cfg.URL, "/"),
		http: cfg.HTTPClient,
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return c, nil
}

// response is the envelope every method answers with.
type response struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// call posts req to method and decodes the answer into resp, which must
// embed response.
func (c *Client) call(ctx context.Context, method string, req,
	resp interface{}) error {

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.url+"/"+method, bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.Tracef("POST %s %s", method, body)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("coinset: %s: %w", method, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("coinset: %s: %w", method, err)
	}

	var env response
	if err := json.Unmarshal(raw, &env); err != nil {
		if httpResp.StatusCode != http.StatusOK {
			return &RPCError{
				Method:  method,
				Status:  httpResp.StatusCode,
				Message: strings.TrimSpace(string(raw)),
			}
		}
		return fmt.Errorf("coinset: %s: invalid response: %w", method,
			err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "request failed"
		}
		if isNotFound(msg) {
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		return &RPCError{
			Method:  method,
			Status:  httpResp.StatusCode,
			Message: msg,
		}
	}

	if err := json.Unmarshal(raw, resp); err != nil {
		return fmt.Errorf("coinset: %s: invalid response: %w", method,
			err)
	}
	return nil
}

// isNotFound recognises the messages the node gives for missing records.
func isNotFound(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "does not exist")
}

type headerHashRequest struct {
	HeaderHash wire.Bytes32 `json:"header_hash"`
}

// BlockSpends returns the coin spends of a block in order.
func (c *Client) BlockSpends(ctx context.Context,
	headerHash wire.Bytes32) ([]wire.CoinSpend, error) {

	var resp struct {
		response
		BlockSpends []wire.CoinSpend `json:"block_spends"`
	}
	err := c.call(ctx, "get_block_spends", headerHashRequest{headerHash},
		&resp)
	if err != nil {
		return nil, err
	}
	return resp.BlockSpends, nil
}

// CoinRecord returns the record of a coin.
func (c *Client) CoinRecord(ctx context.Context,
	coinID wire.Bytes32) (*wire.CoinRecord, error) {

	req := struct {
		Name wire.Bytes32 `json:"name"`
	}{coinID}

	var resp struct {
		response
		CoinRecord *wire.CoinRecord `json:"coin_record"`
	}
	if err := c.call(ctx, "get_coin_record_by_name", req, &resp); err != nil {
		return nil, err
	}
	if resp.CoinRecord == nil {
		return nil, fmt.Errorf("%w: coin %v", ErrNotFound, coinID)
	}
	return resp.CoinRecord, nil
}

// CoinRecordsByParentIDs returns the records of the children of the given
// coins.
func (c *Client) CoinRecordsByParentIDs(ctx context.Context,
	parentIDs []wire.Bytes32,
	includeSpent bool) ([]wire.CoinRecord, error) {

	req := struct {
		ParentIDs         []wire.Bytes32 `json:"parent_ids"`
		IncludeSpentCoins bool           `json:"include_spent_coins"`
	}{parentIDs, includeSpent}

	var resp struct {
		response
		CoinRecords []wire.CoinRecord `json:"coin_records"`
	}
	err := c.call(ctx, "get_coin_records_by_parent_ids", req, &resp)
	if err != nil {
		return nil, err
	}
	return resp.CoinRecords, nil
}

type blockRecordResponse struct {
	response
	BlockRecord *wire.BlockRecord `json:"block_record"`
}

// BlockRecord returns the record of the block with the given header hash.
func (c *Client) BlockRecord(ctx context.Context,
	headerHash wire.Bytes32) (*wire.BlockRecord, error) {

	var resp blockRecordResponse
	err := c.call(ctx, "get_block_record", headerHashRequest{headerHash},
		&resp)
	if err != nil {
		return nil, err
	}
	if resp.BlockRecord == nil {
		return nil, fmt.Errorf("%w: block %v", ErrNotFound, headerHash)
	}
	return resp.BlockRecord, nil
}

// BlockRecordByHeight returns the record of the block at a height of the
// main chain.
func (c *Client) BlockRecordByHeight(ctx context.Context,
	height uint32) (*wire.BlockRecord, error) {

	req := struct {
		Height uint32 `json:"height"`
	}{height}

	var resp blockRecordResponse
	err := c.call(ctx, "get_block_record_by_height", req, &resp)
	if err != nil {
		return nil, err
	}
	if resp.BlockRecord == nil {
		return nil, fmt.Errorf("%w: block at height %d", ErrNotFound,
			height)
	}
	return resp.BlockRecord, nil
}

// PuzzleAndSolution returns the spend of a coin that was spent at the
// given height.
func (c *Client) PuzzleAndSolution(ctx context.Context, coinID wire.Bytes32,
	height uint32) (*wire.CoinSpend, error) {

	req := struct {
		CoinID wire.Bytes32 `json:"coin_id"`
		Height uint32       `json:"height"`
	}{coinID, height}

	var resp struct {
		response
		CoinSolution *wire.CoinSpend `json:"coin_solution"`
	}
	err := c.call(ctx, "get_puzzle_and_solution", req, &resp)
	if err != nil {
		return nil, err
	}
	if resp.CoinSolution == nil {
		return nil, fmt.Errorf("%w: spend of coin %v", ErrNotFound,
			coinID)
	}
	return resp.CoinSolution, nil
}

// SyncState is the sync status of the node.
type SyncState struct {
	Synced        bool   `json:"synced"`
	SyncMode      bool   `json:"sync_mode"`
	SyncTipHeight uint32 `json:"sync_tip_height"`
	SyncProgress  uint32 `json:"sync_progress_height"`
}

// BlockchainState is the node's view of the chain.
type BlockchainState struct {
	Peak        *wire.BlockRecord `json:"peak"`
	Sync        SyncState         `json:"sync"`
	Difficulty  uint64            `json:"difficulty"`
	MempoolSize uint64            `json:"mempool_size"`

	// Space is the estimated netspace in bytes, which may exceed 64
	// bits.
	Space json.Number `json:"space"`
}

// PeakHeight returns the height of the peak, or zero when there is none.
func (s *BlockchainState) PeakHeight() uint32 {
	if s.Peak == nil {
		return 0
	}
	return s.Peak.Height
}

// BlockchainState returns the node's view of the chain.
func (c *Client) BlockchainState(ctx context.Context) (*BlockchainState,
	error) {

	var resp struct {
		response
		BlockchainState *BlockchainState `json:"blockchain_state"`
	}
	err := c.call(ctx, "get_blockchain_state", struct{}{}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.BlockchainState == nil {
		return nil, &RPCError{
			Method:  "get_blockchain_state",
			Message: "missing blockchain_state",
		}
	}
	return resp.BlockchainState, nil
}

// AdditionsAndRemovals returns the coins created and spent by a block.
func (c *Client) AdditionsAndRemovals(ctx context.Context,
	headerHash wire.Bytes32) ([]wire.CoinRecord, []wire.CoinRecord, error) {

	var resp struct {
		response
		Additions []wire.CoinRecord `json:"additions"`
		Removals  []wire.CoinRecord `json:"removals"`
	}
	err := c.call(ctx, "get_additions_and_removals",
		headerHashRequest{headerHash}, &resp)
	if err != nil {
		return nil, nil, err
	}
	return resp.Additions, resp.Removals, nil
}
