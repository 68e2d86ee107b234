package codec

import (
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/vertex"
)

// SigHash computes the digest that OP_CHECKSIG, OP_CHECKMULTISIG and
// OP_CHECKDATASIG verify against: the double-SHA256 of v's canonical
// encoding with every input's ScriptSig cleared, per spec.md §4.2. Clearing
// ScriptSig is what lets a signature cover its own transaction without
// signing itself.
func SigHash(v *vertex.Vertex) (hashutil.Hash, error) {
	stripped := v.Clone()
	for i := range stripped.Inputs {
		stripped.Inputs[i].ScriptSig = nil
	}
	return Hash(stripped)
}
