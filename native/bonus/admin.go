package bonus

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"basketincentives/core/events"
)

func (e *Engine) requireOwner(caller common.Address) error {
	if caller != e.owner {
		return ErrUnauthorized
	}
	return nil
}

// update applies mutate to a copy of the parameters, persists it when a
// store is wired and only then publishes it. writeMu is held throughout so
// concurrent setters never overwrite each other.
func (e *Engine) update(caller common.Address, name, rendered string, mutate func(*Params)) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	next := e.current().Clone()
	mutate(next)
	if e.store != nil {
		if err := e.store.PutBonusParams(next); err != nil {
			return fmt.Errorf("bonus: persist params: %w", err)
		}
	}
	e.mu.Lock()
	e.params = next
	e.mu.Unlock()
	e.logger.Info("parameter updated", "caller", caller.Hex(), "param", name, "value", rendered)
	e.emitter.Emit(events.BonusParamsUpdated{Caller: caller, Param: name, Value: rendered})
	return nil
}

func (e *Engine) setQuantity(caller common.Address, name string, value *big.Int, assign func(*Params, *big.Int)) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if value == nil || value.Sign() < 0 {
		return ErrInvalidAmount
	}
	v := new(big.Int).Set(value)
	return e.update(caller, name, v.String(), func(p *Params) { assign(p, v) })
}

func (e *Engine) SetAmountMultiplier(caller common.Address, value *big.Int) error {
	return e.setQuantity(caller, "amountMultiplier", value, func(p *Params, v *big.Int) { p.AmountMultiplier = v })
}

func (e *Engine) SetRewardMultiplier(caller common.Address, value *big.Int) error {
	return e.setQuantity(caller, "rewardMultiplier", value, func(p *Params, v *big.Int) { p.RewardMultiplier = v })
}

func (e *Engine) SetMinimumAmount(caller common.Address, value *big.Int) error {
	return e.setQuantity(caller, "minimumAmount", value, func(p *Params, v *big.Int) { p.MinimumAmount = v })
}

func (e *Engine) SetMaximumBonus(caller common.Address, value *big.Int) error {
	return e.setQuantity(caller, "maximumBonus", value, func(p *Params, v *big.Int) { p.MaximumBonus = v })
}

func (e *Engine) SetPaused(caller common.Address, paused bool) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	return e.update(caller, "paused", strconv.FormatBool(paused), func(p *Params) { p.Paused = paused })
}

// SetAssets replaces the eligible asset set.
func (e *Engine) SetAssets(caller common.Address, assets []common.Address) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	seen := make(map[common.Address]struct{}, len(assets))
	rendered := make([]string, 0, len(assets))
	for _, asset := range assets {
		if asset == (common.Address{}) {
			return ErrInvalidAsset
		}
		if _, dup := seen[asset]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateAsset, asset.Hex())
		}
		seen[asset] = struct{}{}
		rendered = append(rendered, strings.ToLower(asset.Hex()))
	}
	list := append([]common.Address(nil), assets...)
	return e.update(caller, "assets", strings.Join(rendered, ","), func(p *Params) { p.Assets = list })
}
