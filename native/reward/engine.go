package reward

import (
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"basketincentives/core/events"
	nativecommon "basketincentives/native/common"
)

const moduleName = "reward"

// Engine prices deposits and withdrawals of basket assets according to how
// they move the basket towards or away from its target weights. Rewards are
// paid from the engine's own reserve and penalties are routed back into it.
type Engine struct {
	mu      sync.RWMutex
	writeMu sync.Mutex
	cfg     *Config

	owner common.Address
	vault common.Address

	ledger  Ledger
	pauses  nativecommon.PauseView
	store   ConfigStore
	emitter events.Emitter
	logger  *slog.Logger

	reserve      Reserve
	reserveToken common.Address
	reserveAddr  common.Address
}

// NewEngine creates an engine with an empty registry and zero parameters.
// owner gates configuration, vault is the only caller allowed to trigger
// payouts.
func NewEngine(owner, vault common.Address) *Engine {
	return &Engine{
		cfg:     (&Config{}).Clone(),
		owner:   owner,
		vault:   vault,
		emitter: events.NoopEmitter{},
		logger:  slog.Default().With("module", moduleName),
	}
}

// NewSuccessor creates an engine seeded with the factor, both caps and the
// full target weight registry of predecessor, read once at construction.
func NewSuccessor(owner, vault common.Address, predecessor Predecessor) (*Engine, error) {
	if predecessor == nil {
		return nil, ErrNilPredecessor
	}
	e := NewEngine(owner, vault)
	assets := predecessor.Assets()
	cfg := &Config{
		Assets:         append([]common.Address(nil), assets...),
		Weights:        make([]*big.Int, len(assets)),
		Factor:         nativecommon.Clone(predecessor.Factor()),
		MaxRewardPerc:  nativecommon.Clone(predecessor.MaxRewardPerc()),
		MaxPenaltyPerc: nativecommon.Clone(predecessor.MaxPenaltyPerc()),
	}
	for i, asset := range assets {
		cfg.Weights[i] = nativecommon.Clone(predecessor.TargetWeight(asset))
	}
	e.cfg = cfg
	e.logger.Info("configuration migrated from predecessor",
		"assets", len(assets),
		"factor", cfg.Factor.String(),
		"maxRewardPerc", cfg.MaxRewardPerc.String(),
		"maxPenaltyPerc", cfg.MaxPenaltyPerc.String())
	return e, nil
}

// SetLedger wires the basket ledger the engine reads balances from.
func (e *Engine) SetLedger(ledger Ledger) {
	if e == nil {
		return
	}
	e.ledger = ledger
}

// SetPauses wires the pause view consulted for paused basket assets.
func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetStore wires the persistence used by the owner setters. It does not load
// anything; call Load for that.
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

// SetReserve configures the token the engine pays rewards in and the address
// holding the engine's reserve.
func (e *Engine) SetReserve(reserve Reserve, token, holder common.Address) {
	if e == nil {
		return
	}
	e.reserve = reserve
	e.reserveToken = token
	e.reserveAddr = holder
}

// Load replaces the in-memory configuration with the persisted one, if any.
func (e *Engine) Load() (bool, error) {
	if e == nil || e.store == nil {
		return false, nil
	}
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	cfg, ok, err := e.store.RewardConfig()
	if err != nil || !ok {
		return false, err
	}
	e.mu.Lock()
	e.cfg = cfg.Clone()
	e.mu.Unlock()
	return true, nil
}

// Save persists the current configuration. Successors call it once after
// migration so the copied registry survives restarts.
func (e *Engine) Save() error {
	if e == nil || e.store == nil {
		return nil
	}
	return e.store.PutRewardConfig(e.config())
}

func (e *Engine) config() *Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

func (e *Engine) Owner() common.Address { return e.owner }

func (e *Engine) Vault() common.Address { return e.vault }

func (e *Engine) Version() string { return Version }

// Config returns a copy of the current configuration.
func (e *Engine) Config() *Config { return e.config().Clone() }

func (e *Engine) Assets() []common.Address {
	return append([]common.Address(nil), e.config().Assets...)
}

func (e *Engine) TargetWeight(asset common.Address) *big.Int {
	return e.config().TargetWeight(asset)
}

func (e *Engine) Factor() *big.Int { return nativecommon.Clone(e.config().Factor) }

func (e *Engine) MaxRewardPerc() *big.Int { return nativecommon.Clone(e.config().MaxRewardPerc) }

func (e *Engine) MaxPenaltyPerc() *big.Int { return nativecommon.Clone(e.config().MaxPenaltyPerc) }

// isKnown reports whether the asset is registered here and, when a ledger is
// wired, still listed by the basket.
func (e *Engine) isKnown(cfg *Config, asset common.Address) (bool, error) {
	if !cfg.HasAsset(asset) {
		return false, nil
	}
	if e.ledger == nil {
		return true, nil
	}
	listed, err := e.ledger.IsBasketAsset(asset)
	if err != nil {
		return false, fmt.Errorf("reward: read listing of %s: %w", asset.Hex(), err)
	}
	return listed, nil
}

// AverageDeviation is the engine-bound form of the package function.
func (e *Engine) AverageDeviation(asset common.Address, signedAmount *big.Int, mode Mode) (Deviation, error) {
	return AverageDeviation(e.ledger, e.config(), asset, signedAmount, mode)
}

// RewardForDeposit prices a deposit of amount into asset. Unknown and paused
// assets, zero amounts and deposits that do not strictly reduce dsqr yield
// zero. So does a deposit that leaves the asset above its own target weight.
// With bridgeMode the ledger is assumed to already include the deposit.
func (e *Engine) RewardForDeposit(asset common.Address, amount *big.Int, bridgeMode bool) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	cfg := e.config()
	if amount.Sign() == 0 {
		return big.NewInt(0), nil
	}
	known, err := e.isKnown(cfg, asset)
	if err != nil {
		return nil, err
	}
	if !known {
		return big.NewInt(0), nil
	}
	if err := nativecommon.GuardAsset(e.pauses, asset); err != nil {
		e.logger.Debug("reward skipped", "asset", asset.Hex(), "reason", "asset_paused")
		return big.NewInt(0), nil
	}
	idx := cfg.indexOf(asset)
	before, after, err := evaluate(e.ledger, cfg, idx, amount, ModeFor(bridgeMode))
	if err != nil {
		return nil, err
	}
	dsqrBefore, dsqrAfter := before.dsqr(cfg.Weights), after.dsqr(cfg.Weights)
	if dsqrAfter.Cmp(dsqrBefore) >= 0 {
		return big.NewInt(0), nil
	}
	if after.weight(idx).Cmp(nativecommon.Clone(cfg.Weights[idx])) > 0 {
		e.logger.Debug("reward skipped", "asset", asset.Hex(), "reason", "overshoots_target")
		return big.NewInt(0), nil
	}
	raw := incentive(cfg.Factor, dsqrBefore, dsqrAfter)
	return clampIncentive(raw, amount, cfg.MaxRewardPerc), nil
}

// PenaltyForWithdrawal prices a withdrawal of amount from asset. Unknown
// assets, zero amounts and withdrawals that do not strictly increase dsqr
// yield zero.
func (e *Engine) PenaltyForWithdrawal(asset common.Address, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	cfg := e.config()
	if amount.Sign() == 0 {
		return big.NewInt(0), nil
	}
	known, err := e.isKnown(cfg, asset)
	if err != nil {
		return nil, err
	}
	if !known {
		return big.NewInt(0), nil
	}
	idx := cfg.indexOf(asset)
	before, after, err := evaluate(e.ledger, cfg, idx, new(big.Int).Neg(amount), ModeDefault)
	if err != nil {
		return nil, err
	}
	dsqrBefore, dsqrAfter := before.dsqr(cfg.Weights), after.dsqr(cfg.Weights)
	if dsqrAfter.Cmp(dsqrBefore) <= 0 {
		return big.NewInt(0), nil
	}
	raw := incentive(cfg.Factor, dsqrAfter, dsqrBefore)
	return clampIncentive(raw, amount, cfg.MaxPenaltyPerc), nil
}
