package bonus

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "basketincentives/native/common"
)

// Version identifies the bonus rules implemented by this package.
const Version = "1.0"

// IncentiveSource is the pricing surface of the reward engine the bonus is
// layered on. *reward.Engine satisfies it.
type IncentiveSource interface {
	RewardForDeposit(asset common.Address, amount *big.Int, bridgeMode bool) (*big.Int, error)
	PenaltyForWithdrawal(asset common.Address, amount *big.Int) (*big.Int, error)
}

// Reserve moves the bonus token held by the module.
type Reserve interface {
	TokenBalance(token, holder common.Address) (*big.Int, error)
	TransferToken(token, from, to common.Address, amount *big.Int) error
}

// ConfigStore persists the bonus parameters between runs.
type ConfigStore interface {
	PutBonusParams(params *Params) error
	BonusParams() (*Params, bool, error)
}

// Params holds the bonus formula coefficients, the thresholds and the
// eligible asset set. Multipliers are 18-decimal fixed point.
type Params struct {
	AmountMultiplier *big.Int
	RewardMultiplier *big.Int
	MinimumAmount    *big.Int
	MaximumBonus     *big.Int
	Paused           bool
	Assets           []common.Address
}

// Clone returns a deep copy with nil quantities normalised to zero.
func (p *Params) Clone() *Params {
	if p == nil {
		return (&Params{}).Clone()
	}
	return &Params{
		AmountMultiplier: nativecommon.Clone(p.AmountMultiplier),
		RewardMultiplier: nativecommon.Clone(p.RewardMultiplier),
		MinimumAmount:    nativecommon.Clone(p.MinimumAmount),
		MaximumBonus:     nativecommon.Clone(p.MaximumBonus),
		Paused:           p.Paused,
		Assets:           append([]common.Address(nil), p.Assets...),
	}
}

// IsEligible reports whether deposits of asset may receive a bonus.
func (p *Params) IsEligible(asset common.Address) bool {
	if p == nil {
		return false
	}
	for _, a := range p.Assets {
		if a == asset {
			return true
		}
	}
	return false
}
