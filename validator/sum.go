package validator

import (
	"math"

	"github.com/dagledger/fullnode/vertex"
)

// nativeToken is the implicit token index (0) the balance equation uses
// when a vertex declares no custom tokens.
const nativeToken = uint8(0)

// checkSum implements spec.md §4.7 step 6 and SPEC_FULL.md's token
// deposit/melt addendum: per non-native token, a value surplus on the
// output side is a mint (requiring an authority reference and a deposit
// charged in the native token) and a deficit is a melt (requiring an
// authority reference and refunding the deposit in the native token). The
// native token itself must then balance exactly once deposits and refunds
// are folded in.
func (val *Validator) checkSum(v *vertex.Vertex, refs []spentRef) error {
	type totals struct {
		in, out        uint64
		authorityUsed  bool
	}
	byToken := make(map[uint8]*totals)

	ensure := func(t uint8) *totals {
		tt, ok := byToken[t]
		if !ok {
			tt = &totals{}
			byToken[t] = tt
		}
		return tt
	}

	for _, ref := range refs {
		t := ref.output.TokenIndex()
		tt := ensure(t)
		if ref.output.IsAuthority() {
			tt.authorityUsed = true
			continue
		}
		tt.in += ref.output.Value
	}
	for _, out := range v.Outputs {
		t := out.TokenIndex()
		tt := ensure(t)
		if out.IsAuthority() {
			tt.authorityUsed = true
			continue
		}
		tt.out += out.Value
	}

	var depositFee, refund uint64
	for t, tt := range byToken {
		if t == nativeToken {
			continue
		}
		switch {
		case tt.out > tt.in:
			mint := tt.out - tt.in
			if !tt.authorityUsed {
				return validationError(ErrInputOutputMismatch, "token %d: %d minted with no authority reference", t, mint)
			}
			depositFee += uint64(math.Floor(float64(mint) * val.Settings.TokenDepositPercentage))
		case tt.in > tt.out:
			melt := tt.in - tt.out
			if !tt.authorityUsed {
				return validationError(ErrInputOutputMismatch, "token %d: %d melted with no authority reference", t, melt)
			}
			refund += uint64(math.Floor(float64(melt) * val.Settings.TokenDepositPercentage))
		}
	}

	native := ensure(nativeToken)
	if native.in+refund != native.out+depositFee {
		return validationError(ErrInputOutputMismatch,
			"native balance mismatch: in=%d refund=%d out=%d depositFee=%d",
			native.in, refund, native.out, depositFee)
	}
	return nil
}
