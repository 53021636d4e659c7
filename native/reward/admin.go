package reward

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"basketincentives/core/events"
	nativecommon "basketincentives/native/common"
)

func (e *Engine) requireOwner(caller common.Address) error {
	if caller != e.owner {
		return ErrUnauthorized
	}
	return nil
}

// commit applies change to a copy of the live configuration, persists the
// copy (when a store is wired) and then publishes it. Writers hold writeMu
// for the whole sequence so concurrent setters cannot drop each other's
// changes. A failed write leaves the previous configuration in place.
func (e *Engine) commit(change func(*Config)) (*Config, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	next := e.config().Clone()
	change(next)
	if e.store != nil {
		if err := e.store.PutRewardConfig(next); err != nil {
			return nil, fmt.Errorf("reward: persist config: %w", err)
		}
	}
	e.mu.Lock()
	e.cfg = next
	e.mu.Unlock()
	return next, nil
}

// SetTargetWeights replaces the whole registry with assets and their
// weights. Weights are not required to sum to 1.0.
func (e *Engine) SetTargetWeights(caller common.Address, assets []common.Address, weights []*big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if len(assets) != len(weights) {
		return ErrLengthMismatch
	}
	seen := make(map[common.Address]struct{}, len(assets))
	for i, asset := range assets {
		if asset == (common.Address{}) {
			return ErrInvalidAsset
		}
		if _, dup := seen[asset]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateAsset, asset.Hex())
		}
		seen[asset] = struct{}{}
		if weights[i] == nil || weights[i].Sign() < 0 {
			return ErrInvalidAmount
		}
	}
	next, err := e.commit(func(c *Config) {
		c.Assets = append([]common.Address(nil), assets...)
		c.Weights = make([]*big.Int, len(weights))
		for i, w := range weights {
			c.Weights[i] = new(big.Int).Set(w)
		}
	})
	if err != nil {
		return err
	}
	e.logger.Info("target weights updated", "caller", caller.Hex(), "assets", len(assets))
	e.emitter.Emit(events.RewardTargetsUpdated{Caller: caller, Assets: next.Assets, Weights: next.Weights})
	return nil
}

func (e *Engine) setParam(caller common.Address, name string, value *big.Int, apply func(*Config, *big.Int)) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if value == nil || value.Sign() < 0 {
		return ErrInvalidAmount
	}
	v := new(big.Int).Set(value)
	if _, err := e.commit(func(c *Config) { apply(c, v) }); err != nil {
		return err
	}
	e.logger.Info("parameter updated", "caller", caller.Hex(), "param", name, "value", value.String())
	e.emitter.Emit(events.RewardParamsUpdated{Caller: caller, Param: name, Value: nativecommon.Clone(value)})
	return nil
}

// SetFactor assigns the intensity factor.
func (e *Engine) SetFactor(caller common.Address, factor *big.Int) error {
	return e.setParam(caller, "factor", factor, func(c *Config, v *big.Int) { c.Factor = v })
}

// SetMaxRewardPerc assigns the reward cap as a fraction of the deposit
// amount (1e18 = 100%).
func (e *Engine) SetMaxRewardPerc(caller common.Address, perc *big.Int) error {
	return e.setParam(caller, "maxRewardPerc", perc, func(c *Config, v *big.Int) { c.MaxRewardPerc = v })
}

// SetMaxPenaltyPerc assigns the penalty cap as a fraction of the withdrawal
// amount (1e18 = 100%).
func (e *Engine) SetMaxPenaltyPerc(caller common.Address, perc *big.Int) error {
	return e.setParam(caller, "maxPenaltyPerc", perc, func(c *Config, v *big.Int) { c.MaxPenaltyPerc = v })
}
