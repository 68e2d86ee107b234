package consensus

import (
	"github.com/dagledger/fullnode/hashutil"
)

// State is one of the four per-vertex consensus states of spec.md §4.8.
type State int

const (
	// Unknown is returned for a hash never seen by storage.
	Unknown State = iota
	// PersistedUnvalidated never actually occurs for a hash Store.Exists
	// reports true for, since this engine only ever persists a vertex once
	// it has already passed validation; it is kept as a named state to
	// mirror the state machine spec.md §4.8 describes end to end.
	PersistedUnvalidated
	// ValidatedVoided is a persisted, validated vertex with a non-empty
	// VoidedBy.
	ValidatedVoided
	// Executed is a persisted, validated vertex with an empty VoidedBy.
	Executed
)

func (s State) String() string {
	switch s {
	case Unknown:
		return "UNKNOWN"
	case PersistedUnvalidated:
		return "PERSISTED_UNVALIDATED"
	case ValidatedVoided:
		return "VALIDATED_VOIDED"
	case Executed:
		return "EXECUTED"
	default:
		return "UNKNOWN"
	}
}

// State reports the current consensus state of hash.
func (c *Consensus) State(hash hashutil.Hash) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.Store.Exists(hash) {
		return Unknown
	}
	meta, err := c.Store.GetMetadata(hash)
	if err != nil {
		return Unknown
	}
	if meta.IsExecuted() {
		return Executed
	}
	return ValidatedVoided
}
