package txscript

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/dagledger/fullnode/codec"
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/vertex"
)

func TestP2PKHSpend(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	pubKeyBytes := priv.PubKey().SerializeCompressed()
	hash160 := hashutil.Hash160(pubKeyBytes)

	tx := &vertex.Vertex{
		Kind:      vertex.KindRegularTx,
		Timestamp: 1,
		Parents:   []hashutil.Hash{hashutil.ZeroHash, hashutil.ZeroHash},
		Inputs: []vertex.TxInput{
			{TxID: hashutil.ZeroHash, OutputIndex: 0},
		},
		Outputs: []vertex.TxOutput{
			{Value: 10, Script: P2PKHScript(hash160)},
		},
	}

	digest, err := codec.SigHash(tx)
	if err != nil {
		t.Fatalf("SigHash: %v", err)
	}
	sig := ecdsa.Sign(priv, digest[:])
	tx.Inputs[0].ScriptSig = P2PKHSigScript(sig.Serialize(), pubKeyBytes)

	pkScript := P2PKHScript(hash160)
	extras := &ScriptExtras{Tx: tx, TxInIdx: 0}
	if err := Verify(tx.Inputs[0].ScriptSig, pkScript, extras); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestP2PKHSpendWrongKeyFails(t *testing.T) {
	priv, _ := btcec.NewPrivateKey()
	other, _ := btcec.NewPrivateKey()
	hash160 := hashutil.Hash160(priv.PubKey().SerializeCompressed())

	tx := &vertex.Vertex{
		Kind:      vertex.KindRegularTx,
		Timestamp: 1,
		Inputs:    []vertex.TxInput{{TxID: hashutil.ZeroHash}},
		Outputs:   []vertex.TxOutput{{Value: 1, Script: P2PKHScript(hash160)}},
	}
	digest, _ := codec.SigHash(tx)
	sig := ecdsa.Sign(other, digest[:])
	tx.Inputs[0].ScriptSig = P2PKHSigScript(sig.Serialize(), other.PubKey().SerializeCompressed())

	extras := &ScriptExtras{Tx: tx, TxInIdx: 0}
	err := Verify(tx.Inputs[0].ScriptSig, P2PKHScript(hash160), extras)
	if err == nil {
		t.Fatal("expected verification failure for mismatched key/hash160")
	}
}

func TestCheckMultiSig2of3(t *testing.T) {
	priv1, _ := btcec.NewPrivateKey()
	priv2, _ := btcec.NewPrivateKey()
	priv3, _ := btcec.NewPrivateKey()

	tx := &vertex.Vertex{
		Kind:      vertex.KindRegularTx,
		Timestamp: 1,
		Inputs:    []vertex.TxInput{{TxID: hashutil.ZeroHash}},
		Outputs:   []vertex.TxOutput{{Value: 1, Script: []byte{0x00}}},
	}
	digest, _ := codec.SigHash(tx)
	sig1 := ecdsa.Sign(priv1, digest[:])
	sig3 := ecdsa.Sign(priv3, digest[:])

	redeem := NewScriptBuilder().
		AddData(sig1.Serialize()).
		AddData(sig3.Serialize()).
		AddData([]byte{2}).
		AddData(priv1.PubKey().SerializeCompressed()).
		AddData(priv2.PubKey().SerializeCompressed()).
		AddData(priv3.PubKey().SerializeCompressed()).
		AddData([]byte{3}).
		AddOp(OpCheckMultiSig).
		Script()

	extras := &ScriptExtras{Tx: tx, TxInIdx: 0}
	if err := NewEngine(redeem, extras).Execute(); err != nil {
		t.Fatalf("expected 2-of-3 multisig to verify, got %v", err)
	}
}

func TestCheckDataSigOracle(t *testing.T) {
	oracle, _ := btcec.NewPrivateKey()
	data := []byte{4, 0x00, 0x00, 0x03, 0xe8}
	digest := hashutil.DoubleSHA256(data)
	sig := ecdsa.Sign(oracle, digest[:])

	script := NewScriptBuilder().
		AddData(data).
		AddData(sig.Serialize()).
		AddData(oracle.PubKey().SerializeCompressed()).
		AddOp(OpCheckDataSig).
		Script()

	e := NewEngine(script, &ScriptExtras{})
	if err := e.Execute(); err != nil {
		t.Fatalf("oracle data sig should verify, got %v", err)
	}
}

func TestOracleIntervalMatch(t *testing.T) {
	blob := append([]byte{4}, PackUint32(1000)...)

	b := NewScriptBuilder().
		AddData(blob).
		AddInt32(0).
		AddData([]byte("key1")).
		AddInt32(1000).
		AddData([]byte("key2")).
		AddInt32(1005).
		AddData([]byte("key2")). // default key, unused in this scenario
		AddData([]byte{2}).
		AddOp(OpDataMatchInterval)

	e := NewEngine(b.Script(), &ScriptExtras{})
	// Run everything except the final truthy check, since the opcode leaves
	// a key string (not a canonical boolean) on the stack.
	pos := 0
	script := b.Script()
	for pos < len(script) {
		op := script[pos]
		pos++
		if op >= OpData1 && op <= OpData75 {
			n := int(op)
			e.stack.push(script[pos : pos+n])
			pos += n
			continue
		}
		fn, ok := opTable[op]
		if !ok {
			t.Fatalf("unhandled opcode %x in test script", op)
		}
		if err := fn(&e.stack, e.extras); err != nil {
			t.Fatalf("opcode execution failed: %v", err)
		}
	}

	got, err := e.stack.pop()
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if string(got) != "key1" {
		t.Fatalf("OP_DATA_MATCH_INTERVAL selected %q, want key1", got)
	}
}

func TestGreaterThanTimestamp(t *testing.T) {
	tx := &vertex.Vertex{Timestamp: 1234568}
	extras := &ScriptExtras{Tx: tx}

	s := stack{}
	s.push(PackUint32(1234567))
	if err := opGreaterThanTimestamp(&s, extras); err != nil {
		t.Fatalf("expected pass when timestamp > timelock, got %v", err)
	}

	tx.Timestamp = 1234567
	s = stack{}
	s.push(PackUint32(1234567))
	if err := opGreaterThanTimestamp(&s, extras); err == nil {
		t.Fatal("expected TimeLocked when timestamp == timelock")
	}
}
