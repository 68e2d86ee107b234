package codec

import (
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/vertex"
)

// Hash computes the content-address of v: SHA256d over its canonical byte
// encoding, per spec.md §3's invariant that a vertex's hash is derived
// entirely from its serialized bytes.
func Hash(v *vertex.Vertex) (hashutil.Hash, error) {
	b, err := Encode(v)
	if err != nil {
		return hashutil.Hash{}, err
	}
	return hashutil.DoubleSHA256(b), nil
}

// Verify reports whether v.Hash matches the hash of v's canonical encoding.
func Verify(v *vertex.Vertex) (bool, error) {
	h, err := Hash(v)
	if err != nil {
		return false, err
	}
	return h == v.Hash, nil
}
