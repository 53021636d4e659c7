package reward

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "basketincentives/native/common"
)

// Mode selects how a signed amount relates to the balances reported by the
// ledger.
type Mode uint8

const (
	// ModeDefault treats ledger balances as the state before the change.
	ModeDefault Mode = iota
	// ModeBridgeCredited treats ledger balances as already including the
	// change, so the state before is reconstructed by subtracting it.
	ModeBridgeCredited
)

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeBridgeCredited:
		return "bridge"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ModeFor maps the bridge flag used by deposit callers onto a Mode.
func ModeFor(bridge bool) Mode {
	if bridge {
		return ModeBridgeCredited
	}
	return ModeDefault
}

// Deviation is the average squared deviation of basket weights from their
// targets before and after a hypothetical balance change.
type Deviation struct {
	Before *big.Int
	After  *big.Int
}

// basketState is a balance vector in registry order plus the basket total.
type basketState struct {
	balances []*big.Int
	total    *big.Int
}

// weight returns balance/total for the asset at idx, or zero for an empty basket.
func (s basketState) weight(idx int) *big.Int {
	if s.total == nil || s.total.Sign() <= 0 {
		return big.NewInt(0)
	}
	return nativecommon.WadDiv(s.balances[idx], s.total)
}

// dsqr computes (1/N) * sum((weight_i - target_i)^2) over the registry.
func (s basketState) dsqr(targets []*big.Int) *big.Int {
	n := len(s.balances)
	if n == 0 {
		return big.NewInt(0)
	}
	sum := big.NewInt(0)
	for i := 0; i < n; i++ {
		diff := new(big.Int).Sub(s.weight(i), nativecommon.Clone(targets[i]))
		sum.Add(sum, nativecommon.WadMul(diff, diff))
	}
	return sum.Quo(sum, big.NewInt(int64(n)))
}

// shift applies delta to the asset at idx. The balance is clamped at zero and
// the total moves by the effective change so the two stay consistent.
func (s basketState) shift(idx int, delta *big.Int) basketState {
	next := basketState{
		balances: make([]*big.Int, len(s.balances)),
		total:    nativecommon.Clone(s.total),
	}
	for i, b := range s.balances {
		next.balances[i] = nativecommon.Clone(b)
	}
	old := next.balances[idx]
	updated := nativecommon.ClampZero(new(big.Int).Add(old, delta))
	next.total = nativecommon.ClampZero(next.total.Add(next.total, new(big.Int).Sub(updated, old)))
	next.balances[idx] = updated
	return next
}

func readBasket(ledger Ledger, cfg *Config) (basketState, error) {
	if ledger == nil {
		return basketState{}, ErrLedgerNotConfigured
	}
	state := basketState{balances: make([]*big.Int, len(cfg.Assets))}
	for i, asset := range cfg.Assets {
		balance, err := ledger.BasketBalance(asset)
		if err != nil {
			return basketState{}, fmt.Errorf("reward: read balance of %s: %w", asset.Hex(), err)
		}
		state.balances[i] = nativecommon.ClampZero(balance)
	}
	total, err := ledger.BasketTotal()
	if err != nil {
		return basketState{}, fmt.Errorf("reward: read basket total: %w", err)
	}
	state.total = nativecommon.ClampZero(total)
	return state, nil
}

// evaluate returns the basket state before and after applying signedAmount to
// the asset at idx, following mode.
func evaluate(ledger Ledger, cfg *Config, idx int, signedAmount *big.Int, mode Mode) (basketState, basketState, error) {
	current, err := readBasket(ledger, cfg)
	if err != nil {
		return basketState{}, basketState{}, err
	}
	delta := nativecommon.Clone(signedAmount)
	if mode == ModeBridgeCredited {
		return current.shift(idx, new(big.Int).Neg(delta)), current, nil
	}
	return current, current.shift(idx, delta), nil
}

// AverageDeviation computes dsqr before and after moving signedAmount into
// (positive) or out of (negative) the asset. The asset must be present in the
// registry. It has no side effects.
func AverageDeviation(ledger Ledger, cfg *Config, asset common.Address, signedAmount *big.Int, mode Mode) (Deviation, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	idx := cfg.indexOf(asset)
	if idx < 0 {
		return Deviation{}, ErrUnknownAsset
	}
	before, after, err := evaluate(ledger, cfg, idx, signedAmount, mode)
	if err != nil {
		return Deviation{}, err
	}
	return Deviation{Before: before.dsqr(cfg.Weights), After: after.dsqr(cfg.Weights)}, nil
}
