package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"basketincentives/native/bonus"
	nativecommon "basketincentives/native/common"
	"basketincentives/native/reward"
)

var (
	rewardConfigKey = []byte("incentives/reward/config")
	bonusParamsKey  = []byte("incentives/bonus/params")
)

type storedRewardConfig struct {
	Assets         []common.Address
	Weights        []*big.Int
	Factor         *big.Int
	MaxRewardPerc  *big.Int
	MaxPenaltyPerc *big.Int
}

type storedBonusParams struct {
	AmountMultiplier *big.Int
	RewardMultiplier *big.Int
	MinimumAmount    *big.Int
	MaximumBonus     *big.Int
	Paused           bool
	Assets           []common.Address
}

// PutRewardConfig persists the reward engine configuration.
func (m *Manager) PutRewardConfig(cfg *reward.Config) error {
	c := cfg.Clone()
	record := storedRewardConfig{
		Assets:         c.Assets,
		Weights:        c.Weights,
		Factor:         c.Factor,
		MaxRewardPerc:  c.MaxRewardPerc,
		MaxPenaltyPerc: c.MaxPenaltyPerc,
	}
	return m.KVPut(rewardConfigKey, record)
}

// RewardConfig loads the persisted reward engine configuration.
func (m *Manager) RewardConfig() (*reward.Config, bool, error) {
	var record storedRewardConfig
	ok, err := m.KVGet(rewardConfigKey, &record)
	if err != nil || !ok {
		return nil, false, err
	}
	cfg := &reward.Config{
		Assets:         record.Assets,
		Weights:        record.Weights,
		Factor:         record.Factor,
		MaxRewardPerc:  record.MaxRewardPerc,
		MaxPenaltyPerc: record.MaxPenaltyPerc,
	}
	return cfg.Clone(), true, nil
}

// PutBonusParams persists the bonus engine parameters.
func (m *Manager) PutBonusParams(params *bonus.Params) error {
	p := params.Clone()
	record := storedBonusParams{
		AmountMultiplier: p.AmountMultiplier,
		RewardMultiplier: p.RewardMultiplier,
		MinimumAmount:    p.MinimumAmount,
		MaximumBonus:     p.MaximumBonus,
		Paused:           p.Paused,
		Assets:           p.Assets,
	}
	return m.KVPut(bonusParamsKey, record)
}

// BonusParams loads the persisted bonus engine parameters.
func (m *Manager) BonusParams() (*bonus.Params, bool, error) {
	var record storedBonusParams
	ok, err := m.KVGet(bonusParamsKey, &record)
	if err != nil || !ok {
		return nil, false, err
	}
	params := &bonus.Params{
		AmountMultiplier: record.AmountMultiplier,
		RewardMultiplier: record.RewardMultiplier,
		MinimumAmount:    record.MinimumAmount,
		MaximumBonus:     record.MaximumBonus,
		Paused:           record.Paused,
		Assets:           record.Assets,
	}
	return params.Clone(), true, nil
}

var (
	_ reward.Ledger          = (*Manager)(nil)
	_ reward.Reserve         = (*Manager)(nil)
	_ reward.ConfigStore     = (*Manager)(nil)
	_ bonus.Reserve          = (*Manager)(nil)
	_ bonus.ConfigStore      = (*Manager)(nil)
	_ nativecommon.PauseView = (*Manager)(nil)
)
