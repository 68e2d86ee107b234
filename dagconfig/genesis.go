// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"github.com/dagledger/fullnode/codec"
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/vertex"
)

// Genesis builds the three fixed genesis vertices (one block, two
// transactions) for s, grounded on hathor-core's transaction/genesis.py.
// They are resident in storage and never written; storage.Store treats
// them specially rather than reading them back from disk.
func (s *Settings) Genesis() (block *vertex.Vertex, tx1 *vertex.Vertex, tx2 *vertex.Vertex) {
	block = &vertex.Vertex{
		Kind:      vertex.KindRegularBlock,
		Nonce:     encodeNonce(1653984),
		Timestamp: s.GenesisTimestamp,
		Weight:    s.MinBlockWeight,
		Parents:   nil,
		Outputs: []vertex.TxOutput{
			{Value: s.GenesisTokens, Script: s.GenesisOutputScript},
		},
	}

	tx1 = &vertex.Vertex{
		Kind:      vertex.KindRegularTx,
		Nonce:     encodeNonce(8932),
		Timestamp: s.GenesisTimestamp + 1,
		Weight:    s.MinTxWeight,
	}

	tx2 = &vertex.Vertex{
		Kind:      vertex.KindRegularTx,
		Nonce:     encodeNonce(8949),
		Timestamp: s.GenesisTimestamp + 2,
		Weight:    s.MinTxWeight,
	}

	for _, v := range []*vertex.Vertex{block, tx1, tx2} {
		if h, err := codec.Hash(v); err == nil {
			v.Hash = h
		}
	}

	return block, tx1, tx2
}

// GenesisHashes returns the three genesis vertices' content-addresses. A
// full implementation derives these from Genesis() via the codec package;
// callers needing only the identifiers (e.g. to seed storage without
// constructing the vertices) can use this instead.
func GenesisHashesFrom(block, tx1, tx2 *vertex.Vertex) []hashutil.Hash {
	return []hashutil.Hash{block.Hash, tx1.Hash, tx2.Hash}
}

func encodeNonce(n uint64) []byte {
	b := make([]byte, 16)
	for i := 15; i >= 8; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	return b
}
