// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire defines the Chia data types the explorer exchanges with full
// nodes and users: coins, coin spends, spend bundles and the node's coin and
// block records, with their JSON and streamable encodings.
package wire
