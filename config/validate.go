package config

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"basketincentives/native/bonus"
	"basketincentives/native/reward"
)

// Resolved is the validated, typed form of Config.
type Resolved struct {
	Owner         common.Address
	Vault         common.Address
	Token         common.Address
	RewardReserve common.Address
	BonusReserve  common.Address
	Reward        *reward.Config
	Bonus         *bonus.Params
}

func parseAddress(field, value string, required bool) (common.Address, error) {
	if value == "" {
		if required {
			return common.Address{}, fmt.Errorf("%s: address required", field)
		}
		return common.Address{}, nil
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", field, value)
	}
	return common.HexToAddress(value), nil
}

// parseAsset is parseAddress for asset lists, where the zero address is
// never valid.
func parseAsset(field, value string) (common.Address, error) {
	asset, err := parseAddress(field, value, true)
	if err != nil {
		return common.Address{}, err
	}
	if asset == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%s: zero address is not a valid asset", field)
	}
	return asset, nil
}

func parseQuantity(field, value string) (*big.Int, error) {
	v, err := ParseFixed(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

// Validate reports the first problem that would prevent Resolve from
// succeeding.
func Validate(cfg *Config) error {
	_, err := Resolve(cfg)
	return err
}

// Resolve parses addresses and quantities. Owner and Vault are required,
// the reserve holders default to the vault.
func Resolve(cfg *Config) (*Resolved, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is missing")
	}
	var (
		out Resolved
		err error
	)
	switch cfg.Backend {
	case "", BackendLevelDB, BackendBolt:
	default:
		return nil, fmt.Errorf("Backend: unsupported storage backend %q", cfg.Backend)
	}
	if out.Owner, err = parseAddress("Owner", cfg.Owner, true); err != nil {
		return nil, err
	}
	if out.Vault, err = parseAddress("Vault", cfg.Vault, true); err != nil {
		return nil, err
	}
	if out.Token, err = parseAddress("Token", cfg.Token, false); err != nil {
		return nil, err
	}
	if out.RewardReserve, err = parseAddress("RewardReserve", cfg.RewardReserve, false); err != nil {
		return nil, err
	}
	if out.RewardReserve == (common.Address{}) {
		out.RewardReserve = out.Vault
	}
	if out.BonusReserve, err = parseAddress("BonusReserve", cfg.BonusReserve, false); err != nil {
		return nil, err
	}
	if out.BonusReserve == (common.Address{}) {
		out.BonusReserve = out.Vault
	}

	rc := &reward.Config{}
	if rc.Factor, err = parseQuantity("Reward.Factor", cfg.Reward.Factor); err != nil {
		return nil, err
	}
	if rc.MaxRewardPerc, err = parseQuantity("Reward.MaxRewardPerc", cfg.Reward.MaxRewardPerc); err != nil {
		return nil, err
	}
	if rc.MaxPenaltyPerc, err = parseQuantity("Reward.MaxPenaltyPerc", cfg.Reward.MaxPenaltyPerc); err != nil {
		return nil, err
	}
	seen := make(map[common.Address]struct{}, len(cfg.Reward.Targets))
	for i, target := range cfg.Reward.Targets {
		field := fmt.Sprintf("Reward.Targets[%d]", i)
		asset, err := parseAsset(field+".Asset", target.Asset)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[asset]; dup {
			return nil, fmt.Errorf("%s: duplicate asset %s", field, asset.Hex())
		}
		seen[asset] = struct{}{}
		weight, err := parseQuantity(field+".Weight", target.Weight)
		if err != nil {
			return nil, err
		}
		rc.Assets = append(rc.Assets, asset)
		rc.Weights = append(rc.Weights, weight)
	}
	out.Reward = rc

	bp := &bonus.Params{Paused: cfg.Bonus.Paused}
	if bp.AmountMultiplier, err = parseQuantity("Bonus.AmountMultiplier", cfg.Bonus.AmountMultiplier); err != nil {
		return nil, err
	}
	if bp.RewardMultiplier, err = parseQuantity("Bonus.RewardMultiplier", cfg.Bonus.RewardMultiplier); err != nil {
		return nil, err
	}
	if bp.MinimumAmount, err = parseQuantity("Bonus.MinimumAmount", cfg.Bonus.MinimumAmount); err != nil {
		return nil, err
	}
	if bp.MaximumBonus, err = parseQuantity("Bonus.MaximumBonus", cfg.Bonus.MaximumBonus); err != nil {
		return nil, err
	}
	eligible := make(map[common.Address]struct{}, len(cfg.Bonus.Assets))
	for i, raw := range cfg.Bonus.Assets {
		asset, err := parseAsset(fmt.Sprintf("Bonus.Assets[%d]", i), raw)
		if err != nil {
			return nil, err
		}
		if _, dup := eligible[asset]; dup {
			return nil, fmt.Errorf("Bonus.Assets[%d]: duplicate asset %s", i, asset.Hex())
		}
		eligible[asset] = struct{}{}
		bp.Assets = append(bp.Assets, asset)
	}
	out.Bonus = bp
	return &out, nil
}
