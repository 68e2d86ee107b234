package indices

import (
	"sync"

	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/txscript"
	"github.com/dagledger/fullnode/vertex"
)

// AddressIndex maps an output script's recognizable address (the P2PKH
// hash160 it pays, currently the only address-shaped script this node
// recognizes) to the vertices that reference it, either by spending an
// output locked to it or by paying it.
type AddressIndex struct {
	mu      sync.RWMutex
	byAddr  map[string]hashutil.HashSet
}

// NewAddressIndex returns an empty by-address index.
func NewAddressIndex() *AddressIndex {
	return &AddressIndex{byAddr: make(map[string]hashutil.HashSet)}
}

// addressKey extracts the string form of the P2PKH hash160 a script pays,
// or "" if the script isn't a recognized P2PKH output script.
func addressKey(script []byte) string {
	hash160, ok := txscript.ExtractP2PKHHash(script)
	if !ok {
		return ""
	}
	return string(hash160)
}

// Index records every address referenced by v's outputs (as a recipient)
// into the index.
func (a *AddressIndex) Index(v *vertex.Vertex) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, out := range v.Outputs {
		key := addressKey(out.Script)
		if key == "" {
			continue
		}
		set, ok := a.byAddr[key]
		if !ok {
			set = hashutil.NewHashSet()
			a.byAddr[key] = set
		}
		set.Add(v.Hash)
	}
}

// IndexSpend records that spenderHash spends an output locked to
// spentOutputScript's address, so lookups by that address also surface
// vertices that spend from it, not just vertices that pay into it.
func (a *AddressIndex) IndexSpend(spenderHash hashutil.Hash, spentOutputScript []byte) {
	key := addressKey(spentOutputScript)
	if key == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	set, ok := a.byAddr[key]
	if !ok {
		set = hashutil.NewHashSet()
		a.byAddr[key] = set
	}
	set.Add(spenderHash)
}

// Lookup returns the hashes of vertices that involve the given P2PKH
// hash160 as an input or output address.
func (a *AddressIndex) Lookup(hash160 []byte) []hashutil.Hash {
	a.mu.RLock()
	defer a.mu.RUnlock()

	set, ok := a.byAddr[string(hash160)]
	if !ok {
		return nil
	}
	return set.Slice()
}
