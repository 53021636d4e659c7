package config

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// FixedDecimals is the scale of every fixed-point quantity in the
// configuration.
const FixedDecimals = 18

var (
	ErrInvalidDecimal = errors.New("config: invalid decimal")
	ErrFixedOverflow  = errors.New("config: decimal exceeds 256 bits")

	fixedScale = uint256.NewInt(1_000_000_000_000_000_000)
)

// ParseFixed converts an unsigned decimal such as "0.25" or "1000" into an
// 18-decimal fixed-point integer. An empty string parses as zero.
func ParseFixed(value string) (*big.Int, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), "_", "")
	if value == "" {
		return big.NewInt(0), nil
	}
	whole, frac, _ := strings.Cut(value, ".")
	if whole == "" {
		whole = "0"
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecimal, value)
	}
	if len(frac) > FixedDecimals {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidDecimal, value, FixedDecimals)
	}

	wholeInt, err := uint256.FromDecimal(whole)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrFixedOverflow, value)
	}
	scaled, overflow := new(uint256.Int).MulOverflow(wholeInt, fixedScale)
	if overflow {
		return nil, fmt.Errorf("%w: %q", ErrFixedOverflow, value)
	}
	if frac != "" {
		fracInt, err := uint256.FromDecimal(frac + strings.Repeat("0", FixedDecimals-len(frac)))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDecimal, value)
		}
		if _, overflow := scaled.AddOverflow(scaled, fracInt); overflow {
			return nil, fmt.Errorf("%w: %q", ErrFixedOverflow, value)
		}
	}
	return scaled.ToBig(), nil
}

// FormatFixed renders an 18-decimal fixed-point integer as a decimal string
// without trailing zeros.
func FormatFixed(value *big.Int) string {
	if value == nil {
		return "0"
	}
	abs := new(big.Int).Abs(value)
	scale := fixedScale.ToBig()
	whole, frac := new(big.Int).QuoRem(abs, scale, new(big.Int))
	out := whole.String()
	if frac.Sign() != 0 {
		digits := frac.String()
		digits = strings.Repeat("0", FixedDecimals-len(digits)) + digits
		out += "." + strings.TrimRight(digits, "0")
	}
	if value.Sign() < 0 {
		out = "-" + out
	}
	return out
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
