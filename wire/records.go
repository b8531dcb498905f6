// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

// CoinRecord is the full node's view of a coin: the coin itself and the
// heights at which it was created and spent.  A SpentBlockIndex of zero
// means the coin is unspent.
type CoinRecord struct {
	Coin                Coin   `json:"coin"`
	ConfirmedBlockIndex uint32 `json:"confirmed_block_index"`
	SpentBlockIndex     uint32 `json:"spent_block_index"`
	Spent               bool   `json:"spent"`
	Coinbase            bool   `json:"coinbase"`
	Timestamp           uint64 `json:"timestamp"`
}

// IsSpent reports whether the coin has been spent.
func (r *CoinRecord) IsSpent() bool {
	return r.Spent || r.SpentBlockIndex != 0
}

// BlockRecord summarizes a block.  Timestamp and Fees are only present on
// transaction blocks.
type BlockRecord struct {
	HeaderHash               Bytes32  `json:"header_hash"`
	PrevHash                 Bytes32  `json:"prev_hash"`
	Height                   uint32   `json:"height"`
	TotalIters               uint64   `json:"total_iters"`
	FarmerPuzzleHash         Bytes32  `json:"farmer_puzzle_hash"`
	PoolPuzzleHash           Bytes32  `json:"pool_puzzle_hash"`
	Timestamp                *uint64  `json:"timestamp"`
	Fees                     *uint64  `json:"fees"`
	PrevTransactionBlockHash *Bytes32 `json:"prev_transaction_block_hash"`
	RewardClaimsIncorporated []Coin   `json:"reward_claims_incorporated"`
}

// IsTransactionBlock reports whether the block carries transactions.
func (r *BlockRecord) IsTransactionBlock() bool {
	return r.Timestamp != nil
}
