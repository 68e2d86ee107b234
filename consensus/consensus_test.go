package consensus

import (
	"encoding/binary"
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/dagledger/fullnode/codec"
	"github.com/dagledger/fullnode/daa"
	"github.com/dagledger/fullnode/dagconfig"
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/txscript"
	"github.com/dagledger/fullnode/vertex"
)

var errNotFound = errors.New("consensus: not found in test store")

type memEntry struct {
	v    *vertex.Vertex
	meta *vertex.Metadata
}

// memStore is an in-memory Store fake, the consensus-package analogue of the
// validator package's fakeStore, extended with the mutation methods
// ProcessVertex needs.
type memStore struct {
	data map[hashutil.Hash]*memEntry
}

func newMemStore() *memStore {
	return &memStore{data: make(map[hashutil.Hash]*memEntry)}
}

func (s *memStore) Put(v *vertex.Vertex, meta *vertex.Metadata) error {
	s.data[v.Hash] = &memEntry{v: v, meta: meta}
	return nil
}

func (s *memStore) Get(hash hashutil.Hash) (*vertex.Vertex, *vertex.Metadata, error) {
	e, ok := s.data[hash]
	if !ok {
		return nil, nil, errNotFound
	}
	return e.v, e.meta, nil
}

func (s *memStore) GetMetadata(hash hashutil.Hash) (*vertex.Metadata, error) {
	e, ok := s.data[hash]
	if !ok {
		return nil, errNotFound
	}
	return e.meta, nil
}

func (s *memStore) PutMetadata(hash hashutil.Hash, meta *vertex.Metadata) error {
	e, ok := s.data[hash]
	if !ok {
		return errNotFound
	}
	e.meta = meta
	return nil
}

func (s *memStore) Exists(hash hashutil.Hash) bool {
	_, ok := s.data[hash]
	return ok
}

// meetsWeight mirrors the validator package's unexported weightToTarget plus
// its PoW comparison, so tests can mine a vertex to a chosen weight without
// reaching across the package boundary.
func meetsWeight(hash hashutil.Hash, weight float64) bool {
	exp := 256 - weight
	intPart, fracPart := math.Modf(exp)
	mantissa := math.Pow(2, fracPart)
	f := new(big.Float).SetPrec(200).SetMantExp(big.NewFloat(mantissa), int(intPart))
	target, _ := f.Int(nil)
	return new(big.Int).SetBytes(hash[:]).Cmp(target) < 0
}

// mine finds a nonce satisfying v's own Weight and sets v.Hash accordingly.
// Must be called only after every other field (including ScriptSig) is in
// its final form, since Nonce is the only field this loop varies.
func mine(t *testing.T, v *vertex.Vertex) {
	t.Helper()
	v.Nonce = make([]byte, 8)
	for i := uint64(0); ; i++ {
		binary.BigEndian.PutUint64(v.Nonce, i)
		h, err := codec.Hash(v)
		if err != nil {
			t.Fatalf("codec.Hash: %v", err)
		}
		if meetsWeight(h, v.Weight) {
			v.Hash = h
			return
		}
	}
}

// buildSettings returns unit-test settings whose genesis output is locked to
// a fresh keypair (so end-to-end tests can actually spend it), with the
// weight floors zeroed and a near-zero DAA floor so hand-picked block/tx
// weights aren't rejected before a scenario gets to exercise consensus.
func buildSettings(t *testing.T) (*dagconfig.Settings, *btcec.PrivateKey, []byte) {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	hash160 := hashutil.Hash160(priv.PubKey().SerializeCompressed())

	settings := dagconfig.UnittestSettings()
	settings.GenesisOutputScript = txscript.P2PKHScript(hash160)
	settings.MinTxWeight = 0
	settings.MinTxWeightK = 0
	settings.MinTxWeightCoefficient = 0
	settings.DAA = &daa.HTR{MinWeight: 0.01}
	return settings, priv, hash160
}

func newTestConsensus(t *testing.T) (*Consensus, *memStore, *dagconfig.Settings, *btcec.PrivateKey, []byte, *vertex.Vertex, *vertex.Vertex, *vertex.Vertex) {
	t.Helper()
	settings, priv, hash160 := buildSettings(t)
	block, tx1, tx2 := settings.Genesis()

	store := newMemStore()
	if err := store.Put(block, vertex.NewMetadata(block.Weight)); err != nil {
		t.Fatalf("seed block: %v", err)
	}
	if err := store.Put(tx1, vertex.NewMetadata(tx1.Weight)); err != nil {
		t.Fatalf("seed tx1: %v", err)
	}
	if err := store.Put(tx2, vertex.NewMetadata(tx2.Weight)); err != nil {
		t.Fatalf("seed tx2: %v", err)
	}

	cons := New(settings, store)
	return cons, store, settings, priv, hash160, block, tx1, tx2
}

// TestSimpleSpendExecutesImmediately covers spec.md §8's "simple spend"
// scenario: a lone transaction spending genesis's output validates, is
// executed with no conflicts, records itself as the output's spender, and
// stays unconfirmed (no block has run yet).
func TestSimpleSpendExecutesImmediately(t *testing.T) {
	cons, store, _, priv, hash160, block, tx1, tx2 := newTestConsensus(t)

	spend := &vertex.Vertex{
		Kind:      vertex.KindRegularTx,
		Timestamp: block.Timestamp + 10,
		Weight:    0,
		Parents:   []hashutil.Hash{block.Hash, tx1.Hash, tx2.Hash},
		Inputs:    []vertex.TxInput{{TxID: block.Hash, OutputIndex: 0}},
		Outputs:   []vertex.TxOutput{{Value: block.Outputs[0].Value, Script: txscript.P2PKHScript(hash160)}},
	}
	digest, err := codec.SigHash(spend)
	if err != nil {
		t.Fatalf("SigHash: %v", err)
	}
	sig := ecdsa.Sign(priv, digest[:])
	spend.Inputs[0].ScriptSig = txscript.P2PKHSigScript(sig.Serialize(), priv.PubKey().SerializeCompressed())
	h, err := codec.Hash(spend)
	if err != nil {
		t.Fatalf("codec.Hash: %v", err)
	}
	spend.Hash = h

	if err := cons.ProcessVertex(spend); err != nil {
		t.Fatalf("ProcessVertex(spend): %v", err)
	}

	if got := cons.State(spend.Hash); got != Executed {
		t.Fatalf("spend state = %v, want Executed", got)
	}

	blockMeta, err := store.GetMetadata(block.Hash)
	if err != nil {
		t.Fatalf("GetMetadata(block): %v", err)
	}
	if !blockMeta.SpentOutputs[0].Has(spend.Hash) {
		t.Fatalf("expected genesis block's output 0 to record spend as a spender")
	}

	spendMeta, err := store.GetMetadata(spend.Hash)
	if err != nil {
		t.Fatalf("GetMetadata(spend): %v", err)
	}
	if spendMeta.FirstBlock != nil {
		t.Fatalf("expected spend to remain unconfirmed, got first_block %s", spendMeta.FirstBlock)
	}
}

// runDoubleSpendScenario builds two conflicting spends of genesis's output
// (spendA at weight 5, spendB at weight 0, so spendA wins the conflict on
// arrival), then a block confirming spendB at blockWeight. It covers spec.md
// §8's "double spend + revert" scenario (blockWeight heavy enough to make
// spendB's accumulated weight overtake spendA's) and its "low-weight confirm,
// no revert" counterpart (blockWeight too light to do so) as one
// parameterized helper, since both share every step but the final weight.
func runDoubleSpendScenario(t *testing.T, blockWeight float64, expectFlip bool) {
	cons, store, settings, priv, hash160, block, tx1, tx2 := newTestConsensus(t)

	buildSpend := func(weight float64, ts int64) *vertex.Vertex {
		v := &vertex.Vertex{
			Kind:      vertex.KindRegularTx,
			Timestamp: ts,
			Weight:    weight,
			Parents:   []hashutil.Hash{block.Hash, tx1.Hash, tx2.Hash},
			Inputs:    []vertex.TxInput{{TxID: block.Hash, OutputIndex: 0}},
			Outputs:   []vertex.TxOutput{{Value: block.Outputs[0].Value, Script: txscript.P2PKHScript(hash160)}},
		}
		digest, err := codec.SigHash(v)
		if err != nil {
			t.Fatalf("SigHash: %v", err)
		}
		sig := ecdsa.Sign(priv, digest[:])
		v.Inputs[0].ScriptSig = txscript.P2PKHSigScript(sig.Serialize(), priv.PubKey().SerializeCompressed())
		mine(t, v)
		return v
	}

	spendA := buildSpend(5, block.Timestamp+10)
	spendB := buildSpend(0, block.Timestamp+11)

	if err := cons.ProcessVertex(spendA); err != nil {
		t.Fatalf("ProcessVertex(spendA): %v", err)
	}
	if err := cons.ProcessVertex(spendB); err != nil {
		t.Fatalf("ProcessVertex(spendB): %v", err)
	}

	blockB := &vertex.Vertex{
		Kind:      vertex.KindRegularBlock,
		Timestamp: spendB.Timestamp + 10,
		Weight:    blockWeight,
		Parents:   []hashutil.Hash{block.Hash, spendB.Hash, tx1.Hash},
		Outputs:   []vertex.TxOutput{{Value: settings.Subsidy(1), Script: settings.GenesisOutputScript}},
	}
	mine(t, blockB)

	if err := cons.ProcessVertex(blockB); err != nil {
		t.Fatalf("ProcessVertex(blockB): %v", err)
	}

	// blockB is the only block ever built on top of genesis here, so it
	// always becomes the new head regardless of which side of the
	// spendA/spendB conflict it confirms.
	if got := cons.BestHead(); got != blockB.Hash {
		t.Fatalf("best head = %s, want blockB %s", got, blockB.Hash)
	}

	wantSpendAState, wantSpendBState := Executed, ValidatedVoided
	if expectFlip {
		wantSpendAState, wantSpendBState = ValidatedVoided, Executed
	}
	if got := cons.State(spendA.Hash); got != wantSpendAState {
		t.Fatalf("spendA state = %v, want %v", got, wantSpendAState)
	}
	if got := cons.State(spendB.Hash); got != wantSpendBState {
		t.Fatalf("spendB state = %v, want %v", got, wantSpendBState)
	}

	// A voided tx is voided by itself, not by the winner of the conflict
	// (test_dont_revert_block_high_weight in the Python suite asserts
	// meta.voided_by == {conflicting_tx.hash} for the losing side).
	loserHash := spendA.Hash
	if expectFlip {
		loserHash = spendB.Hash
	}
	loserMeta, err := store.GetMetadata(loserHash)
	if err != nil {
		t.Fatalf("GetMetadata(loser): %v", err)
	}
	if !loserMeta.VoidedBy.Has(loserHash) {
		t.Fatalf("expected loser %s to be voided by itself, got %v", loserHash, loserMeta.VoidedBy.Slice())
	}

	blockMeta, err := store.GetMetadata(blockB.Hash)
	if err != nil {
		t.Fatalf("GetMetadata(blockB): %v", err)
	}
	if expectFlip {
		if !blockMeta.IsExecuted() {
			t.Fatalf("expected blockB executed, voided_by %v", blockMeta.VoidedBy.Slice())
		}
	} else if !blockMeta.VoidedBy.Has(spendB.Hash) {
		t.Fatalf("expected blockB voided_by spendB, got %v", blockMeta.VoidedBy.Slice())
	}
}

func TestDoubleSpendHeavyBlockFlipsConflict(t *testing.T) {
	runDoubleSpendScenario(t, 6, true)
}

func TestDoubleSpendLightBlockDoesNotFlipConflict(t *testing.T) {
	runDoubleSpendScenario(t, 2, false)
}

// TestTwinDetection covers spec.md §8's twin scenario: two transactions
// identical except for the order of their parents hash differently (parent
// order is part of the encoded bytes) but are recorded as twins of each
// other via the order-independent canonical key.
func TestTwinDetection(t *testing.T) {
	cons, store, _, _, _, block, tx1, tx2 := newTestConsensus(t)

	build := func(parents []hashutil.Hash) *vertex.Vertex {
		v := &vertex.Vertex{
			Kind:      vertex.KindRegularTx,
			Timestamp: block.Timestamp + 10,
			Weight:    0,
			Parents:   parents,
		}
		h, err := codec.Hash(v)
		if err != nil {
			t.Fatalf("codec.Hash: %v", err)
		}
		v.Hash = h
		return v
	}

	t1 := build([]hashutil.Hash{block.Hash, tx1.Hash, tx2.Hash})
	t2 := build([]hashutil.Hash{block.Hash, tx2.Hash, tx1.Hash})
	if t1.Hash == t2.Hash {
		t.Fatalf("expected swapped parent order to change the hash")
	}

	if err := cons.ProcessVertex(t1); err != nil {
		t.Fatalf("ProcessVertex(t1): %v", err)
	}
	if err := cons.ProcessVertex(t2); err != nil {
		t.Fatalf("ProcessVertex(t2): %v", err)
	}

	m1, err := store.GetMetadata(t1.Hash)
	if err != nil {
		t.Fatalf("GetMetadata(t1): %v", err)
	}
	m2, err := store.GetMetadata(t2.Hash)
	if err != nil {
		t.Fatalf("GetMetadata(t2): %v", err)
	}
	if !m1.Twins.Has(t2.Hash) {
		t.Fatalf("expected t1 to record t2 as a twin")
	}
	if !m2.Twins.Has(t1.Hash) {
		t.Fatalf("expected t2 to record t1 as a twin")
	}
}
