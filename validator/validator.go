// Package validator implements the ordered, eight-step validation pipeline
// of spec.md §4.7: structural shape, proof of work, parent/timestamp
// checks, input resolution, script execution, the value balance equation,
// the dynamic minimum-weight rule, and (for blocks) the subsidy check.
// It is grounded in the teacher's blockvalidator chain-of-checks style
// (ValidatePruningPointViolationAndProofOfWorkAndDifficulty calling one
// check function after another, short-circuiting on the first failure).
package validator

import (
	"github.com/dagledger/fullnode/dagconfig"
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/logger"
	"github.com/dagledger/fullnode/vertex"
)

var log = logger.Get(logger.SubsystemTags.VLDT)

// Source resolves a vertex and its metadata by hash.
type Source interface {
	Get(hash hashutil.Hash) (*vertex.Vertex, *vertex.Metadata, error)
}

// Validator runs the full validation pipeline against a Source.
type Validator struct {
	Settings *dagconfig.Settings
	Store    Source
}

// New constructs a Validator.
func New(settings *dagconfig.Settings, store Source) *Validator {
	return &Validator{Settings: settings, Store: store}
}

// Validate runs every step of spec.md §4.7 against v, in order,
// short-circuiting on the first failure. requiredBlockWeight is the
// minimum weight the DAA demands of a block at v's position in the chain;
// it is ignored when v is a transaction.
func (val *Validator) Validate(v *vertex.Vertex, requiredBlockWeight float64) error {
	if err := val.checkStructural(v); err != nil {
		return err
	}
	if err := val.checkPoW(v); err != nil {
		return err
	}
	if err := val.checkParentsAndTimestamp(v); err != nil {
		return err
	}

	if len(v.Parents) == 0 {
		// Genesis: no inputs, no scripts, no reward rule to check.
		return nil
	}

	refs, err := val.resolveSpentRefs(v)
	if err != nil {
		return err
	}
	if err := val.checkInputs(v, refs); err != nil {
		return err
	}
	if err := val.checkScripts(v, refs); err != nil {
		return err
	}
	if !v.IsBlock() {
		if err := val.checkSum(v, refs); err != nil {
			return err
		}
	}
	if err := val.checkWeight(v, requiredBlockWeight); err != nil {
		return err
	}
	if v.IsBlock() {
		if err := val.checkReward(v); err != nil {
			return err
		}
	}

	log.Debug().Str("hash", v.Hash.String()).Msg("vertex validated")
	return nil
}
