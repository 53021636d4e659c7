package bonus

import (
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"basketincentives/core/events"
	nativecommon "basketincentives/native/common"
	"basketincentives/observability/metrics"
)

const moduleName = "bonus"

// Engine pays a separately funded top-up on deposits. The top-up is bounded
// so that reward plus bonus never exceeds the penalty for withdrawing the
// same amount again.
type Engine struct {
	mu      sync.RWMutex
	writeMu sync.Mutex
	params  *Params

	owner common.Address
	vault common.Address

	incentives IncentiveSource
	store      ConfigStore
	emitter    events.Emitter
	logger     *slog.Logger

	reserve Reserve
	token   common.Address
	holder  common.Address
}

// NewEngine creates a bonus engine with zero parameters and no eligible
// assets, layered on incentives.
func NewEngine(owner, vault common.Address, incentives IncentiveSource) *Engine {
	return &Engine{
		params:     (&Params{}).Clone(),
		owner:      owner,
		vault:      vault,
		incentives: incentives,
		emitter:    events.NoopEmitter{},
		logger:     slog.Default().With("module", moduleName),
	}
}

// SetReserve configures the bonus token and the address holding the bonus
// reserve.
func (e *Engine) SetReserve(reserve Reserve, token, holder common.Address) {
	if e == nil {
		return
	}
	e.reserve = reserve
	e.token = token
	e.holder = holder
}

func (e *Engine) SetStore(store ConfigStore) {
	if e == nil {
		return
	}
	e.store = store
}

func (e *Engine) SetEmitter(emitter events.Emitter) {
	if e == nil {
		return
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	e.emitter = emitter
}

func (e *Engine) SetLogger(logger *slog.Logger) {
	if e == nil || logger == nil {
		return
	}
	e.logger = logger.With("module", moduleName)
}

// Load replaces the in-memory parameters with the persisted ones, if any.
func (e *Engine) Load() (bool, error) {
	if e == nil || e.store == nil {
		return false, nil
	}
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	params, ok, err := e.store.BonusParams()
	if err != nil || !ok {
		return false, err
	}
	e.mu.Lock()
	e.params = params.Clone()
	e.mu.Unlock()
	return true, nil
}

// Save persists the current parameters.
func (e *Engine) Save() error {
	if e == nil || e.store == nil {
		return nil
	}
	return e.store.PutBonusParams(e.current())
}

func (e *Engine) current() *Params {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params
}

func (e *Engine) Owner() common.Address { return e.owner }

func (e *Engine) Vault() common.Address { return e.vault }

func (e *Engine) Version() string { return Version }

// Params returns a copy of the current parameters.
func (e *Engine) Params() *Params { return e.current().Clone() }

func (e *Engine) AmountMultiplier() *big.Int { return nativecommon.Clone(e.current().AmountMultiplier) }

func (e *Engine) RewardMultiplier() *big.Int { return nativecommon.Clone(e.current().RewardMultiplier) }

func (e *Engine) MinimumAmount() *big.Int { return nativecommon.Clone(e.current().MinimumAmount) }

func (e *Engine) MaximumBonus() *big.Int { return nativecommon.Clone(e.current().MaximumBonus) }

func (e *Engine) Paused() bool { return e.current().Paused }

func (e *Engine) Assets() []common.Address {
	return append([]common.Address(nil), e.current().Assets...)
}

// ReserveBalance returns the bonus token currently held by the reserve.
func (e *Engine) ReserveBalance() (*big.Int, error) {
	return e.balanceOf(e.token)
}

func (e *Engine) balanceOf(token common.Address) (*big.Int, error) {
	if e.reserve == nil {
		return nil, ErrReserveNotConfigured
	}
	balance, err := e.reserve.TokenBalance(token, e.holder)
	if err != nil {
		return nil, fmt.Errorf("bonus: read reserve: %w", err)
	}
	return nativecommon.ClampZero(balance), nil
}

// PredictedBonus returns the bonus a deposit of amount into asset would
// receive right now. Ineligible assets, a paused layer and amounts under the
// minimum yield zero. The result never exceeds the maximum bonus, the
// reserve balance, or the penalty for withdrawing amount minus the reward
// for depositing it.
func (e *Engine) PredictedBonus(asset common.Address, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	params := e.current()
	if !params.IsEligible(asset) || params.Paused || amount.Cmp(params.MinimumAmount) < 0 {
		return big.NewInt(0), nil
	}
	if e.incentives == nil {
		return nil, ErrIncentivesNotWired
	}
	reward, err := e.incentives.RewardForDeposit(asset, amount, false)
	if err != nil {
		return nil, fmt.Errorf("bonus: expected reward: %w", err)
	}
	reward = nativecommon.ClampZero(reward)
	raw := nativecommon.WadMul(params.AmountMultiplier, amount)
	raw.Add(raw, nativecommon.WadMul(params.RewardMultiplier, reward))
	bonus := nativecommon.Min(nativecommon.ClampZero(raw), params.MaximumBonus)

	balance, err := e.balanceOf(e.token)
	if err != nil {
		return nil, err
	}
	bonus = nativecommon.Min(bonus, balance)

	penalty, err := e.incentives.PenaltyForWithdrawal(asset, amount)
	if err != nil {
		return nil, fmt.Errorf("bonus: counterpart penalty: %w", err)
	}
	headroom := nativecommon.ClampZero(new(big.Int).Sub(nativecommon.ClampZero(penalty), reward))
	return nativecommon.Min(bonus, headroom), nil
}

// SendBonus pays the predicted bonus for a deposit to recipient. Only the
// vault may call it. The amount actually sent is returned.
func (e *Engine) SendBonus(caller, asset, recipient common.Address, amount *big.Int) (*big.Int, error) {
	if caller != e.vault {
		return nil, ErrNotAllowed
	}
	bonus, err := e.PredictedBonus(asset, amount)
	if err != nil {
		return nil, err
	}
	if bonus.Sign() == 0 {
		metrics.Incentives().ObserveSkipped(moduleName, "zero_bonus")
		e.logger.Debug("bonus skipped", "asset", asset.Hex(), "amount", amount.String())
		return bonus, nil
	}
	if err := e.reserve.TransferToken(e.token, e.holder, recipient, bonus); err != nil {
		return nil, fmt.Errorf("bonus: transfer: %w", err)
	}
	metrics.Incentives().ObserveBonus(asset.Hex(), bonus)
	if remaining, err := e.balanceOf(e.token); err == nil {
		metrics.Incentives().SetReserve(moduleName, remaining)
	}
	e.logger.Info("bonus paid", "asset", asset.Hex(), "recipient", recipient.Hex(),
		"amount", amount.String(), "bonus", bonus.String())
	e.emitter.Emit(events.BonusPaid{
		Asset:     asset,
		Recipient: recipient,
		Amount:    new(big.Int).Set(amount),
		Bonus:     bonus,
	})
	return bonus, nil
}

// ExtractFunds sends amount of token from the bonus reserve to the owner.
func (e *Engine) ExtractFunds(caller, token common.Address, amount *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	balance, err := e.balanceOf(token)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientReserve
	}
	if err := e.reserve.TransferToken(token, e.holder, e.owner, amount); err != nil {
		return fmt.Errorf("bonus: transfer: %w", err)
	}
	e.logger.Info("funds extracted", "token", token.Hex(), "amount", amount.String())
	e.emitter.Emit(events.FundsExtracted{Module: moduleName, Token: token, Recipient: e.owner, Amount: new(big.Int).Set(amount)})
	return nil
}
