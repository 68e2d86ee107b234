package validator

import (
	"math"
	"math/big"

	"github.com/dagledger/fullnode/vertex"
)

// targetPrecision is the big.Float precision used to compute a PoW target
// from a fractional weight. 200 bits comfortably covers float64's 52-bit
// mantissa with headroom to spare.
const targetPrecision = 200

// weightToTarget returns the largest hash value that satisfies weight:
// 2^(256-weight), computed as mantissa*2^exponent to preserve the
// fractional part of weight that a plain bit shift would lose.
func weightToTarget(weight float64) *big.Int {
	exp := 256 - weight
	intPart, fracPart := math.Modf(exp)
	mantissa := math.Pow(2, fracPart) // in [1, 2)

	f := new(big.Float).SetPrec(targetPrecision).SetMantExp(big.NewFloat(mantissa), int(intPart))
	target, _ := f.Int(nil)
	return target
}

// checkPoW implements spec.md §4.7 step 2: the vertex's hash, read as a
// big-endian integer, must be strictly less than 2^(256-weight).
func (val *Validator) checkPoW(v *vertex.Vertex) error {
	hashInt := new(big.Int).SetBytes(v.Hash[:])
	target := weightToTarget(v.Weight)
	if hashInt.Cmp(target) >= 0 {
		return validationError(ErrPowError, "hash %s does not meet weight %.2f", v.Hash, v.Weight)
	}
	return nil
}
