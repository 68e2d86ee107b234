// Package vertex defines the DAG's single entity kind: a vertex that is
// either a block or a transaction, interleaved in one graph. Deep
// inheritance (BaseTransaction -> Block/Transaction/TokenCreationTx) is
// re-expressed as a tagged variant: one shared Vertex struct carrying a Kind
// tag plus kind-specific payload fields, dispatched on the tag rather than
// through a type hierarchy.
package vertex

import (
	"github.com/dagledger/fullnode/hashutil"
)

// Kind tags which of the four vertex flavors a Vertex is.
type Kind uint8

const (
	// KindRegularBlock is a normally mined block: one block parent plus two
	// transaction parents.
	KindRegularBlock Kind = iota
	// KindMergeMinedBlock is a block mined together with an auxiliary
	// proof-of-work chain; it carries a non-nil AuxPoW.
	KindMergeMinedBlock
	// KindRegularTx is an ordinary value-transfer transaction.
	KindRegularTx
	// KindTokenCreationTx is a transaction that additionally mints a new
	// custom token, carrying a token name and symbol.
	KindTokenCreationTx
)

// String returns the kind's spec name.
func (k Kind) String() string {
	switch k {
	case KindRegularBlock:
		return "REGULAR_BLOCK"
	case KindMergeMinedBlock:
		return "MERGE_MINED_BLOCK"
	case KindRegularTx:
		return "REGULAR_TX"
	case KindTokenCreationTx:
		return "TOKEN_CREATION_TX"
	default:
		return "UNKNOWN"
	}
}

// IsBlock reports whether the kind is one of the two block flavors.
func (k Kind) IsBlock() bool {
	return k == KindRegularBlock || k == KindMergeMinedBlock
}

// TxInput references an output being spent: a previous vertex's hash, the
// index of the output within it, and the unlocking script.
type TxInput struct {
	TxID       hashutil.Hash
	OutputIndex uint8
	ScriptSig  []byte
}

// authorityMintMask is the high bit of TokenData that marks an output as a
// mint/melt authority rather than a value transfer.
const authorityMintMask = 0x80

// tokenIndexMask selects the low 7 bits of TokenData, the index into the
// vertex's Tokens slice (0 always means the implicit native token).
const tokenIndexMask = 0x7f

// TxOutput is a spendable value locked by a script, optionally tagged with a
// custom token and mint/melt authority.
type TxOutput struct {
	Value     uint64
	Script    []byte
	TokenData uint8
}

// TokenIndex returns the low 7 bits of TokenData: 0 for the native token,
// otherwise 1-based index into the vertex's Tokens slice.
func (o TxOutput) TokenIndex() uint8 {
	return o.TokenData & tokenIndexMask
}

// IsAuthority reports whether this output carries mint/melt authority
// instead of being a plain value transfer.
func (o TxOutput) IsAuthority() bool {
	return o.TokenData&authorityMintMask != 0
}

// AuxPoW carries the merge-mining proof for a MERGE_MINED_BLOCK vertex.
type AuxPoW struct {
	ParentBlockHeader []byte
	CoinbaseBranch    [][]byte
	BlockchainBranch  [][]byte
}

// Vertex is the single entity of the ledger, common to blocks and
// transactions. Fields that only apply to one kind (Data, AuxPoW,
// TokenName/TokenSymbol) are zero-valued when irrelevant.
type Vertex struct {
	Hash      hashutil.Hash
	Nonce     []byte
	Timestamp int64
	Kind      Kind
	Weight    float64
	Parents   []hashutil.Hash
	Inputs    []TxInput
	Outputs   []TxOutput
	Tokens    []hashutil.Hash

	// Data is only meaningful for blocks; at most 100 bytes.
	Data []byte
	// AuxPoW is only meaningful for KindMergeMinedBlock.
	AuxPoW *AuxPoW

	// TokenName and TokenSymbol are only meaningful for KindTokenCreationTx.
	TokenName   string
	TokenSymbol string
}

// IsBlock reports whether v is a block (regular or merge-mined).
func (v *Vertex) IsBlock() bool {
	return v.Kind.IsBlock()
}

// BlockParent returns the block-chain parent of a block vertex: by
// convention the first entry in Parents. Panics if v is not a block.
func (v *Vertex) BlockParent() hashutil.Hash {
	if !v.IsBlock() {
		panic("vertex: BlockParent called on a non-block vertex")
	}
	return v.Parents[0]
}

// TxParents returns the two transaction parents of a block vertex.
func (v *Vertex) TxParents() []hashutil.Hash {
	if !v.IsBlock() {
		panic("vertex: TxParents called on a non-block vertex")
	}
	return v.Parents[1:]
}

// Clone returns a deep copy of v, so callers can mutate the result without
// affecting the storage-owned original (see the storage package's
// copy-on-read discipline).
func (v *Vertex) Clone() *Vertex {
	clone := *v
	clone.Nonce = append([]byte(nil), v.Nonce...)
	clone.Parents = append([]hashutil.Hash(nil), v.Parents...)
	clone.Inputs = append([]TxInput(nil), v.Inputs...)
	for i, in := range clone.Inputs {
		clone.Inputs[i].ScriptSig = append([]byte(nil), in.ScriptSig...)
	}
	clone.Outputs = append([]TxOutput(nil), v.Outputs...)
	for i, out := range clone.Outputs {
		clone.Outputs[i].Script = append([]byte(nil), out.Script...)
	}
	clone.Tokens = append([]hashutil.Hash(nil), v.Tokens...)
	clone.Data = append([]byte(nil), v.Data...)
	if v.AuxPoW != nil {
		auxCopy := *v.AuxPoW
		clone.AuxPoW = &auxCopy
	}
	return &clone
}
