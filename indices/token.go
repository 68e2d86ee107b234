package indices

import (
	"sync"

	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/vertex"
)

// TokenInfo is the per-token-uid bookkeeping the by-token index maintains.
type TokenInfo struct {
	Name         string
	Symbol       string
	TotalMinted  uint64
	TotalMelted  uint64
}

// TokenIndex maintains, per token-uid (the hash identifying a custom
// token), its declared name/symbol and running mint/melt totals.
type TokenIndex struct {
	mu     sync.RWMutex
	tokens map[hashutil.Hash]*TokenInfo
}

// NewTokenIndex returns an empty by-token index.
func NewTokenIndex() *TokenIndex {
	return &TokenIndex{tokens: make(map[hashutil.Hash]*TokenInfo)}
}

// IndexCreation registers a KindTokenCreationTx's declared name and symbol
// under its own hash, the token-uid convention spec.md §3 uses.
func (t *TokenIndex) IndexCreation(v *vertex.Vertex) {
	if v.Kind != vertex.KindTokenCreationTx {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	info, ok := t.tokens[v.Hash]
	if !ok {
		info = &TokenInfo{}
		t.tokens[v.Hash] = info
	}
	info.Name = v.TokenName
	info.Symbol = v.TokenSymbol
}

// RecordMint adds amount to tokenUID's total minted.
func (t *TokenIndex) RecordMint(tokenUID hashutil.Hash, amount uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	info := t.ensureLocked(tokenUID)
	info.TotalMinted += amount
}

// RecordMelt adds amount to tokenUID's total melted.
func (t *TokenIndex) RecordMelt(tokenUID hashutil.Hash, amount uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	info := t.ensureLocked(tokenUID)
	info.TotalMelted += amount
}

func (t *TokenIndex) ensureLocked(tokenUID hashutil.Hash) *TokenInfo {
	info, ok := t.tokens[tokenUID]
	if !ok {
		info = &TokenInfo{}
		t.tokens[tokenUID] = info
	}
	return info
}

// Get returns the token-uid's info, or ok=false if never seen.
func (t *TokenIndex) Get(tokenUID hashutil.Hash) (TokenInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	info, ok := t.tokens[tokenUID]
	if !ok {
		return TokenInfo{}, false
	}
	return *info, true
}
