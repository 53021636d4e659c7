package reward

import (
	"math/big"

	nativecommon "basketincentives/native/common"
)

// MaxInefficiency is the saturation value of the curve once dsqr reaches 1.0.
// It is large enough that any non-zero factor drives the incentive into the
// amount clamp.
var MaxInefficiency = new(big.Int).Mul(nativecommon.Wad(), nativecommon.Wad())

// Inefficiency maps dsqr onto d/(1-d). The curve is convex and grows without
// bound as d approaches 1.0.
func Inefficiency(dsqr *big.Int) *big.Int {
	d := nativecommon.ClampZero(dsqr)
	one := nativecommon.Wad()
	if d.Cmp(one) >= 0 {
		return new(big.Int).Set(MaxInefficiency)
	}
	return nativecommon.WadDiv(d, one.Sub(one, d))
}

// incentive prices a move from dsqr `from` to dsqr `to` with the intensity
// factor. It returns zero unless the move goes from a higher to a lower
// inefficiency.
func incentive(factor, from, to *big.Int) *big.Int {
	diff := new(big.Int).Sub(Inefficiency(from), Inefficiency(to))
	if diff.Sign() <= 0 {
		return big.NewInt(0)
	}
	return nativecommon.WadMul(nativecommon.ClampZero(factor), diff)
}

// clampIncentive bounds value by amount and by amount*perc.
func clampIncentive(value, amount, perc *big.Int) *big.Int {
	out := nativecommon.Min(value, amount)
	return nativecommon.Min(out, nativecommon.WadMul(amount, nativecommon.ClampZero(perc)))
}
