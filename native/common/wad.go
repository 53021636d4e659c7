package common

import "math/big"

// WadDecimals is the number of decimals carried by every fixed-point quantity
// in the basket: balances, weights, percentages and multipliers alike.
const WadDecimals = 18

var wad = new(big.Int).Exp(big.NewInt(10), big.NewInt(WadDecimals), nil)

// Wad returns a fresh copy of 1.0 in fixed-point representation.
func Wad() *big.Int {
	return new(big.Int).Set(wad)
}

// WadFromInt scales a whole number into fixed point.
func WadFromInt(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), wad)
}

// WadMul multiplies two fixed-point values and truncates towards zero.
func WadMul(a, b *big.Int) *big.Int {
	if a == nil || b == nil {
		return big.NewInt(0)
	}
	product := new(big.Int).Mul(a, b)
	return product.Quo(product, wad)
}

// WadDiv divides two fixed-point values and truncates towards zero. A zero
// divisor yields zero.
func WadDiv(a, b *big.Int) *big.Int {
	if a == nil || b == nil || b.Sign() == 0 {
		return big.NewInt(0)
	}
	numerator := new(big.Int).Mul(a, wad)
	return numerator.Quo(numerator, b)
}

// Clone copies x, mapping nil to zero.
func Clone(x *big.Int) *big.Int {
	if x == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(x)
}

// Min returns a copy of the smaller operand.
func Min(a, b *big.Int) *big.Int {
	a, b = Clone(a), Clone(b)
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// Max returns a copy of the larger operand.
func Max(a, b *big.Int) *big.Int {
	a, b = Clone(a), Clone(b)
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// ClampZero returns x, or zero when x is negative.
func ClampZero(x *big.Int) *big.Int {
	if x == nil || x.Sign() < 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Set(x)
}
