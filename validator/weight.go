package validator

import (
	"github.com/dagledger/fullnode/vertex"
)

// totalValue sums every non-authority native-token output value, the
// figure the dynamic minimum-weight formula scales against.
func totalValue(v *vertex.Vertex) uint64 {
	var total uint64
	for _, out := range v.Outputs {
		if out.IsAuthority() || out.TokenIndex() != nativeToken {
			continue
		}
		total += out.Value
	}
	return total
}

// checkWeight implements spec.md §4.7 step 7. Blocks are held to the
// required weight the caller computed from the DAA (requiredBlockWeight);
// transactions are held to the dynamic minimum scaled by their total
// value.
func (val *Validator) checkWeight(v *vertex.Vertex, requiredBlockWeight float64) error {
	if v.IsBlock() {
		if v.Weight < requiredBlockWeight {
			return validationError(ErrWeightTooLow, "block weight %.4f below required %.4f", v.Weight, requiredBlockWeight)
		}
		return nil
	}

	minWeight := val.Settings.DynamicMinTxWeight(totalValue(v))
	if v.Weight < minWeight {
		return validationError(ErrWeightTooLow, "tx weight %.4f below dynamic minimum %.4f", v.Weight, minWeight)
	}
	return nil
}
