package codec

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/vertex"
)

func sampleTx() *vertex.Vertex {
	return &vertex.Vertex{
		Kind:      vertex.KindRegularTx,
		Nonce:     make([]byte, NonceSize),
		Timestamp: 1_600_000_000,
		Weight:    18.5,
		Parents:   []hashutil.Hash{hashutil.ZeroHash},
		Inputs: []vertex.TxInput{
			{TxID: hashutil.ZeroHash, OutputIndex: 0, ScriptSig: []byte{0x01, 0x02}},
		},
		Outputs: []vertex.TxOutput{
			{Value: 100, Script: []byte{0x76, 0xa9}, TokenData: 0},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	v := sampleTx()
	b, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if spew.Sdump(got) != spew.Sdump(v) {
		t.Fatalf("round trip mismatch:\nwant %s\ngot  %s", spew.Sdump(v), spew.Sdump(got))
	}
}

func TestTrailingBytesRejected(t *testing.T) {
	v := sampleTx()
	b, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b = append(b, 0x00)
	if _, err := Decode(b); err == nil {
		t.Fatal("expected ErrTrailingBytes, got nil")
	} else if de, ok := err.(DecodeError); !ok || de.Code != ErrTrailingBytes {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
}

func TestTruncatedRejected(t *testing.T) {
	v := sampleTx()
	b, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(b[:len(b)-1]); err == nil {
		t.Fatal("expected ErrTruncated, got nil")
	}
}

func TestValueEncodingBoundary(t *testing.T) {
	small := writeValue(nil, maxSmallValue)
	if len(small) != 4 {
		t.Fatalf("expected 4-byte encoding for max small value, got %d bytes", len(small))
	}
	large := writeValue(nil, maxSmallValue+1)
	if len(large) != 8 {
		t.Fatalf("expected 8-byte encoding for maxSmallValue+1, got %d bytes", len(large))
	}

	c := &cursor{buf: small}
	v, err := c.readValue()
	if err != nil || v != maxSmallValue {
		t.Fatalf("readValue(small) = %d, %v; want %d, nil", v, err, maxSmallValue)
	}

	c = &cursor{buf: large}
	v, err = c.readValue()
	if err != nil || v != maxSmallValue+1 {
		t.Fatalf("readValue(large) = %d, %v; want %d, nil", v, err, maxSmallValue+1)
	}
}

func TestNonCanonicalValueEncodingRejected(t *testing.T) {
	// Hand-craft an 8-byte encoding of a value that fits in 4 bytes.
	buf := writeValue(nil, 1000)
	// Force it into the wide form by re-deriving the 8-byte form directly.
	wide := make([]byte, 8)
	wide[0] = 0x80
	wide[7] = 0xe8 // 1000 = 0x3e8
	wide[6] = 0x03
	c := &cursor{buf: wide}
	if _, err := c.readValue(); err == nil {
		t.Fatal("expected ErrNonCanonicalValueEncoding, got nil")
	} else if de, ok := err.(DecodeError); !ok || de.Code != ErrNonCanonicalValueEncoding {
		t.Fatalf("expected ErrNonCanonicalValueEncoding, got %v", err)
	}
	_ = buf
}

func TestBlockDataSizeBoundary(t *testing.T) {
	b := &vertex.Vertex{
		Kind:      vertex.KindRegularBlock,
		Nonce:     make([]byte, NonceSize),
		Timestamp: 1,
		Weight:    21.0,
		Parents:   []hashutil.Hash{hashutil.ZeroHash, hashutil.ZeroHash, hashutil.ZeroHash},
		Data:      make([]byte, MaxBlockDataSize),
	}
	if _, err := Encode(b); err != nil {
		t.Fatalf("expected exactly MaxBlockDataSize to be accepted, got %v", err)
	}

	b.Data = make([]byte, MaxBlockDataSize+1)
	if _, err := Encode(b); err == nil {
		t.Fatal("expected ErrOversizedField for MaxBlockDataSize+1, got nil")
	}
}

func TestHashAndVerify(t *testing.T) {
	v := sampleTx()
	h, err := Hash(v)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	v.Hash = h
	ok, err := Verify(v)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify returned false for a freshly hashed vertex")
	}

	v.Hash[0] ^= 0xff
	ok, err = Verify(v)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("Verify returned true for a tampered hash")
	}
}

func TestSigHashClearsScriptSig(t *testing.T) {
	v := sampleTx()
	before := v.Inputs[0].ScriptSig
	h1, err := SigHash(v)
	if err != nil {
		t.Fatalf("SigHash: %v", err)
	}
	if len(v.Inputs[0].ScriptSig) != len(before) {
		t.Fatal("SigHash mutated the original vertex's ScriptSig")
	}

	v2 := sampleTx()
	v2.Inputs[0].ScriptSig = []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE}
	h2, err := SigHash(v2)
	if err != nil {
		t.Fatalf("SigHash: %v", err)
	}
	if h1 != h2 {
		t.Fatal("SigHash must be invariant to ScriptSig contents")
	}
}
