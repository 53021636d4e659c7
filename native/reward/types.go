package reward

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "basketincentives/native/common"
)

// Version identifies the pricing rules implemented by this package.
const Version = "3.0"

// Ledger is the read-only view of the basket the engine prices against.
// Balances and totals are fixed-point quantities already normalised to 18
// decimals by the basket.
type Ledger interface {
	BasketBalance(asset common.Address) (*big.Int, error)
	BasketTotal() (*big.Int, error)
	IsBasketAsset(asset common.Address) (bool, error)
}

// Reserve moves the incentive token held by the module.
type Reserve interface {
	TokenBalance(token, holder common.Address) (*big.Int, error)
	TransferToken(token, from, to common.Address, amount *big.Int) error
}

// ConfigStore persists the engine configuration between runs.
type ConfigStore interface {
	PutRewardConfig(cfg *Config) error
	RewardConfig() (*Config, bool, error)
}

// Predecessor is the read surface a successor engine copies its
// configuration from. *Engine satisfies it.
type Predecessor interface {
	Assets() []common.Address
	TargetWeight(asset common.Address) *big.Int
	Factor() *big.Int
	MaxRewardPerc() *big.Int
	MaxPenaltyPerc() *big.Int
}

// Config is the target weight registry plus the global tuning parameters.
// Assets and Weights are parallel; the order of Assets is the registry order.
// A published Config is never mutated, setters swap in a modified clone.
type Config struct {
	Assets         []common.Address
	Weights        []*big.Int
	Factor         *big.Int
	MaxRewardPerc  *big.Int
	MaxPenaltyPerc *big.Int
}

// Clone returns a deep copy with nil quantities normalised to zero.
func (c *Config) Clone() *Config {
	if c == nil {
		return (&Config{}).Clone()
	}
	clone := &Config{
		Assets:         append([]common.Address(nil), c.Assets...),
		Weights:        make([]*big.Int, len(c.Weights)),
		Factor:         nativecommon.Clone(c.Factor),
		MaxRewardPerc:  nativecommon.Clone(c.MaxRewardPerc),
		MaxPenaltyPerc: nativecommon.Clone(c.MaxPenaltyPerc),
	}
	for i, w := range c.Weights {
		clone.Weights[i] = nativecommon.Clone(w)
	}
	return clone
}

func (c *Config) indexOf(asset common.Address) int {
	if c == nil {
		return -1
	}
	for i, a := range c.Assets {
		if a == asset {
			return i
		}
	}
	return -1
}

// HasAsset reports whether the asset is in the target weight registry.
func (c *Config) HasAsset(asset common.Address) bool {
	return c.indexOf(asset) >= 0
}

// TargetWeight returns the configured weight, or zero for unknown assets.
func (c *Config) TargetWeight(asset common.Address) *big.Int {
	idx := c.indexOf(asset)
	if idx < 0 || idx >= len(c.Weights) {
		return big.NewInt(0)
	}
	return nativecommon.Clone(c.Weights[idx])
}
