package txscript

import "github.com/dagledger/fullnode/vertex"

// ScriptExtras carries the transaction context an opcode needs beyond the
// data stack: the spending transaction, the specific input being satisfied,
// and the transaction whose output is being spent. Oracle and timestamp
// opcodes read from Tx; OP_FIND_P2PKH and OP_CHECKSIG need all three.
type ScriptExtras struct {
	Tx       *vertex.Vertex
	TxInIdx  int
	SpentTx  *vertex.Vertex
}
