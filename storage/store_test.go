package storage

import (
	"os"
	"testing"

	"github.com/dagledger/fullnode/dagconfig"
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/vertex"
)

func openTestStore(t *testing.T) *LevelDB {
	t.Helper()
	dir, err := os.MkdirTemp("", "dagledger-storage-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := OpenLevelDB(dir, dagconfig.UnittestSettings())
	if err != nil {
		t.Fatalf("OpenLevelDB: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleVertex(settings *dagconfig.Settings, nonce byte) *vertex.Vertex {
	block, tx1, tx2 := settings.Genesis()
	v := &vertex.Vertex{
		Kind:      vertex.KindRegularTx,
		Nonce:     []byte{nonce},
		Timestamp: block.Timestamp + 10,
		Weight:    settings.MinTxWeight,
		Parents:   []hashutil.Hash{block.Hash, tx1.Hash, tx2.Hash},
		Outputs:   []vertex.TxOutput{{Value: 1, Script: settings.GenesisOutputScript}},
	}
	return v
}

func TestGenesisResidentAndImmutable(t *testing.T) {
	s := openTestStore(t)
	settings := dagconfig.UnittestSettings()
	block, _, _ := settings.Genesis()

	if !s.Exists(block.Hash) {
		t.Fatal("genesis block should exist without being written")
	}
	got, meta, err := s.Get(block.Hash)
	if err != nil {
		t.Fatalf("Get genesis: %v", err)
	}
	if got.Hash != block.Hash {
		t.Fatalf("got wrong vertex for genesis hash")
	}
	if !meta.IsExecuted() {
		t.Fatal("genesis metadata should be executed")
	}

	if err := s.Delete(block.Hash); err != ErrGenesisImmutable {
		t.Fatalf("expected ErrGenesisImmutable, got %v", err)
	}
}

func TestPutMetadataOnGenesis(t *testing.T) {
	s := openTestStore(t)
	settings := dagconfig.UnittestSettings()
	block, _, _ := settings.Genesis()

	meta, err := s.GetMetadata(block.Hash)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	spender := hashutil.DoubleSHA256([]byte("spender"))
	meta.AddSpender(0, spender)
	if err := s.PutMetadata(block.Hash, meta); err != nil {
		t.Fatalf("PutMetadata on genesis: %v", err)
	}

	gotMeta, err := s.GetMetadata(block.Hash)
	if err != nil {
		t.Fatalf("GetMetadata after update: %v", err)
	}
	if !gotMeta.SpentOutputs[0].Has(spender) {
		t.Fatalf("expected genesis metadata update to persist, got %+v", gotMeta.SpentOutputs)
	}

	if _, _, err := s.Get(block.Hash); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := s.Put(block, vertex.NewMetadata(block.Weight)); err != ErrGenesisImmutable {
		t.Fatalf("expected genesis vertex bytes to stay immutable, got %v", err)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	settings := dagconfig.UnittestSettings()
	v := sampleVertex(settings, 1)
	v.Hash = hashutil.DoubleSHA256([]byte{1, 2, 3})
	meta := vertex.NewMetadata(v.Weight)

	if err := s.Put(v, meta); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !s.Exists(v.Hash) {
		t.Fatal("expected Exists to be true after Put")
	}

	got, gotMeta, err := s.Get(v.Hash)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Timestamp != v.Timestamp || len(got.Outputs) != len(v.Outputs) {
		t.Fatalf("round-tripped vertex mismatch: %+v vs %+v", got, v)
	}
	if gotMeta.AccumulatedWeight != meta.AccumulatedWeight {
		t.Fatalf("round-tripped metadata mismatch")
	}
}

func TestGetMissingReturnsTransactionDoesNotExist(t *testing.T) {
	s := openTestStore(t)
	_, _, err := s.Get(hashutil.DoubleSHA256([]byte("missing")))
	if err != ErrTransactionDoesNotExist {
		t.Fatalf("expected ErrTransactionDoesNotExist, got %v", err)
	}
}

func TestPutMetadataInPlace(t *testing.T) {
	s := openTestStore(t)
	settings := dagconfig.UnittestSettings()
	v := sampleVertex(settings, 2)
	v.Hash = hashutil.DoubleSHA256([]byte{4, 5, 6})
	meta := vertex.NewMetadata(v.Weight)
	if err := s.Put(v, meta); err != nil {
		t.Fatalf("Put: %v", err)
	}

	meta.AccumulatedWeight = 99
	meta.VoidedBy.Add(v.Hash)
	if err := s.PutMetadata(v.Hash, meta); err != nil {
		t.Fatalf("PutMetadata: %v", err)
	}

	_, gotMeta, err := s.Get(v.Hash)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotMeta.AccumulatedWeight != 99 || !gotMeta.VoidedBy.Has(v.Hash) {
		t.Fatalf("metadata update did not persist: %+v", gotMeta)
	}
}

func TestIterAllVisitsGenesisAndPersisted(t *testing.T) {
	s := openTestStore(t)
	settings := dagconfig.UnittestSettings()
	v := sampleVertex(settings, 3)
	v.Hash = hashutil.DoubleSHA256([]byte{7, 8, 9})
	if err := s.Put(v, vertex.NewMetadata(v.Weight)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	seen := hashutil.NewHashSet()
	if err := s.IterAll(func(got *vertex.Vertex, _ *vertex.Metadata) error {
		seen.Add(got.Hash)
		return nil
	}); err != nil {
		t.Fatalf("IterAll: %v", err)
	}

	block, tx1, tx2 := settings.Genesis()
	for _, want := range []hashutil.Hash{block.Hash, tx1.Hash, tx2.Hash, v.Hash} {
		if !seen.Has(want) {
			t.Fatalf("IterAll did not visit %s", want)
		}
	}
}
