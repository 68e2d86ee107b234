package validator

import "github.com/dagledger/fullnode/vertex"

// checkReward implements spec.md §4.7 step 8: a block's output sum must
// equal exactly the halving-schedule subsidy for its height, paid in the
// native token with no authority outputs.
func (val *Validator) checkReward(v *vertex.Vertex) error {
	if len(v.Parents) == 0 {
		return nil // genesis: fixed supply, not subject to the subsidy schedule
	}

	_, parentMeta, err := val.Store.Get(v.BlockParent())
	if err != nil {
		return validationError(ErrParentDoesNotExist, "block parent %s not found: %v", v.BlockParent(), err)
	}
	height := parentMeta.Height + 1
	subsidy := val.Settings.Subsidy(height)

	var outSum uint64
	for _, out := range v.Outputs {
		if out.IsAuthority() {
			return validationError(ErrRewardMismatch, "block reward output may not carry mint/melt authority")
		}
		if out.TokenIndex() != nativeToken {
			return validationError(ErrRewardMismatch, "block reward must be paid entirely in the native token")
		}
		outSum += out.Value
	}
	if outSum != subsidy {
		return validationError(ErrRewardMismatch, "block reward output sum %d does not match expected subsidy %d for height %d", outSum, subsidy, height)
	}
	return nil
}
