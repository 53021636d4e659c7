package reward

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"basketincentives/core/events"
	nativecommon "basketincentives/native/common"
	"basketincentives/observability/metrics"
)

func (e *Engine) reserveBalance() (*big.Int, error) {
	if e.reserve == nil {
		return nil, ErrReserveNotConfigured
	}
	balance, err := e.reserve.TokenBalance(e.reserveToken, e.reserveAddr)
	if err != nil {
		return nil, fmt.Errorf("reward: read reserve: %w", err)
	}
	return nativecommon.ClampZero(balance), nil
}

// ReserveBalance returns the amount of reward token currently held.
func (e *Engine) ReserveBalance() (*big.Int, error) {
	return e.reserveBalance()
}

// SendRewardForDeposit pays the reward for a deposit to recipient. Only the
// vault may call it. The payout is clamped to the reserve balance read at
// call time and the amount actually sent is returned.
func (e *Engine) SendRewardForDeposit(caller, asset, recipient common.Address, amount *big.Int, bridgeMode bool) (*big.Int, error) {
	if caller != e.vault {
		return nil, ErrNotAllowed
	}
	reward, err := e.RewardForDeposit(asset, amount, bridgeMode)
	if err != nil {
		return nil, err
	}
	balance, err := e.reserveBalance()
	if err != nil {
		return nil, err
	}
	reward = nativecommon.Min(reward, balance)
	if reward.Sign() == 0 {
		metrics.Incentives().ObserveSkipped(moduleName, "zero_reward")
		return reward, nil
	}
	if err := e.reserve.TransferToken(e.reserveToken, e.reserveAddr, recipient, reward); err != nil {
		return nil, fmt.Errorf("reward: transfer: %w", err)
	}
	metrics.Incentives().ObserveReward(asset.Hex(), reward)
	if remaining, err := e.reserveBalance(); err == nil {
		metrics.Incentives().SetReserve(moduleName, remaining)
	}
	e.logger.Info("reward paid", "asset", asset.Hex(), "recipient", recipient.Hex(),
		"amount", amount.String(), "reward", reward.String(), "bridge", bridgeMode)
	e.emitter.Emit(events.RewardPaid{
		Asset:     asset,
		Recipient: recipient,
		Amount:    new(big.Int).Set(amount),
		Reward:    reward,
		Bridge:    bridgeMode,
	})
	return reward, nil
}

// RecordPenalty prices a withdrawal on behalf of the vault and reports the
// penalty the vault must route into the reserve.
func (e *Engine) RecordPenalty(caller, asset common.Address, amount *big.Int) (*big.Int, error) {
	if caller != e.vault {
		return nil, ErrNotAllowed
	}
	penalty, err := e.PenaltyForWithdrawal(asset, amount)
	if err != nil {
		return nil, err
	}
	if penalty.Sign() == 0 {
		metrics.Incentives().ObserveSkipped(moduleName, "zero_penalty")
		return penalty, nil
	}
	metrics.Incentives().ObservePenalty(asset.Hex(), penalty)
	e.logger.Info("penalty assessed", "asset", asset.Hex(), "amount", amount.String(), "penalty", penalty.String())
	e.emitter.Emit(events.RewardPenalty{Asset: asset, Amount: new(big.Int).Set(amount), Penalty: penalty})
	return penalty, nil
}

// ExtractFunds sends amount of token from the reserve holder to the owner.
func (e *Engine) ExtractFunds(caller, token common.Address, amount *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if e.reserve == nil {
		return ErrReserveNotConfigured
	}
	balance, err := e.reserve.TokenBalance(token, e.reserveAddr)
	if err != nil {
		return fmt.Errorf("reward: read reserve: %w", err)
	}
	if balance == nil || balance.Cmp(amount) < 0 {
		return ErrInsufficientReserve
	}
	if err := e.reserve.TransferToken(token, e.reserveAddr, e.owner, amount); err != nil {
		return fmt.Errorf("reward: transfer: %w", err)
	}
	e.logger.Info("funds extracted", "token", token.Hex(), "amount", amount.String())
	e.emitter.Emit(events.FundsExtracted{Module: moduleName, Token: token, Recipient: e.owner, Amount: new(big.Int).Set(amount)})
	return nil
}
