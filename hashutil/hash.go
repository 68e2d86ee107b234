// Package hashutil provides the content-addressing primitives shared by every
// other package: the 32-byte vertex identifier and the hash functions used to
// derive it.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // ripemd160 is required by the P2PKH address scheme
)

// Size is the length in bytes of a vertex hash.
const Size = 32

// Hash is the content-addressed identifier of a vertex: SHA256d of its
// canonical serialization. It is a value type so it can be used as a map key
// and compared with ==.
type Hash [Size]byte

// ZeroHash is the hash with all zero bytes.
var ZeroHash Hash

// String returns the hex encoding of the hash, most-significant byte first.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, h[:])
	return b
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// HashFromBytes builds a Hash from a byte slice of exactly Size bytes.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != Size {
		return h, errInvalidHashLength(len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HashFromString parses a hex-encoded hash, most-significant byte first.
func HashFromString(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	return HashFromBytes(b)
}

type errInvalidHashLength int

func (e errInvalidHashLength) Error() string {
	return "invalid hash length: " + hex.EncodeToString([]byte{byte(e)})
}

// DoubleSHA256 returns SHA256(SHA256(b)), the hash used to content-address
// every vertex.
func DoubleSHA256(b []byte) Hash {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second
}

// Hash160 returns RIPEMD160(SHA256(b)), used by OP_HASH160 and by P2PKH
// address derivation.
func Hash160(b []byte) []byte {
	sum := sha256.Sum256(b)
	ripemd := ripemd160.New()
	ripemd.Write(sum[:]) //nolint:errcheck // ripemd160.Write never errors
	return ripemd.Sum(nil)
}

// SortHashes sorts hashes lexicographically by their byte representation,
// used wherever a deterministic hash ordering is required (e.g. set
// serialization, tie-breaking in time-ordered indices).
func SortHashes(hashes []Hash) {
	sort.Slice(hashes, func(i, j int) bool {
		return hashLess(hashes[i], hashes[j])
	})
}

func hashLess(a, b Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// HashSet is a small ordered-iteration set of hashes, used for voided_by,
// conflict_with, twins and children, all of which are stored as sets but
// need deterministic iteration for hashing/propagation/tests.
type HashSet map[Hash]struct{}

// NewHashSet builds a HashSet from the given hashes.
func NewHashSet(hashes ...Hash) HashSet {
	s := make(HashSet, len(hashes))
	for _, h := range hashes {
		s[h] = struct{}{}
	}
	return s
}

// Add inserts h into the set.
func (s HashSet) Add(h Hash) {
	s[h] = struct{}{}
}

// Remove deletes h from the set.
func (s HashSet) Remove(h Hash) {
	delete(s, h)
}

// Has reports whether h is a member of the set.
func (s HashSet) Has(h Hash) bool {
	_, ok := s[h]
	return ok
}

// Slice returns the set's members in deterministic (sorted) order.
func (s HashSet) Slice() []Hash {
	out := make([]Hash, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	SortHashes(out)
	return out
}

// Clone returns a shallow copy of the set.
func (s HashSet) Clone() HashSet {
	out := make(HashSet, len(s))
	for h := range s {
		out[h] = struct{}{}
	}
	return out
}

// Union returns a new set containing the members of both sets.
func (s HashSet) Union(other HashSet) HashSet {
	out := s.Clone()
	for h := range other {
		out[h] = struct{}{}
	}
	return out
}
