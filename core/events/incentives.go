package events

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// TypeRewardTargetsUpdated is emitted when the owner replaces the target
	// weight registry.
	TypeRewardTargetsUpdated = "reward.targets.updated"
	// TypeRewardParamsUpdated is emitted when a global tuning parameter
	// (factor or one of the caps) changes.
	TypeRewardParamsUpdated = "reward.params.updated"
	// TypeRewardPaid is emitted when a deposit reward leaves the reserve.
	TypeRewardPaid = "reward.paid"
	// TypeRewardPenalty is emitted when a withdrawal penalty is assessed.
	TypeRewardPenalty = "reward.penalty"
	// TypeBonusParamsUpdated is emitted on every bonus configuration change.
	TypeBonusParamsUpdated = "bonus.params.updated"
	// TypeBonusPaid is emitted when a bonus leaves the bonus reserve.
	TypeBonusPaid = "bonus.paid"
)

// RewardTargetsUpdated captures a full replacement of the target weights.
type RewardTargetsUpdated struct {
	Caller  common.Address
	Assets  []common.Address
	Weights []*big.Int
}

func (RewardTargetsUpdated) EventType() string { return TypeRewardTargetsUpdated }

func (e RewardTargetsUpdated) Attributes() map[string]string {
	return map[string]string{
		"caller":  addressString(e.Caller),
		"assets":  addressList(e.Assets),
		"weights": amountList(e.Weights),
		"count":   strconv.Itoa(len(e.Assets)),
	}
}

// RewardParamsUpdated captures a single tuning parameter assignment.
type RewardParamsUpdated struct {
	Caller common.Address
	Param  string
	Value  *big.Int
}

func (RewardParamsUpdated) EventType() string { return TypeRewardParamsUpdated }

func (e RewardParamsUpdated) Attributes() map[string]string {
	return map[string]string{
		"caller": addressString(e.Caller),
		"param":  strings.TrimSpace(e.Param),
		"value":  amountString(e.Value),
	}
}

// RewardPaid describes a deposit reward transferred to the depositor.
type RewardPaid struct {
	Asset     common.Address
	Recipient common.Address
	Amount    *big.Int
	Reward    *big.Int
	Bridge    bool
}

func (RewardPaid) EventType() string { return TypeRewardPaid }

func (e RewardPaid) Attributes() map[string]string {
	return map[string]string{
		"asset":     addressString(e.Asset),
		"recipient": addressString(e.Recipient),
		"amount":    amountString(e.Amount),
		"reward":    amountString(e.Reward),
		"bridge":    strconv.FormatBool(e.Bridge),
	}
}

// RewardPenalty describes a withdrawal penalty routed into the reserve.
type RewardPenalty struct {
	Asset   common.Address
	Amount  *big.Int
	Penalty *big.Int
}

func (RewardPenalty) EventType() string { return TypeRewardPenalty }

func (e RewardPenalty) Attributes() map[string]string {
	return map[string]string{
		"asset":   addressString(e.Asset),
		"amount":  amountString(e.Amount),
		"penalty": amountString(e.Penalty),
	}
}

// FundsExtracted is emitted when the owner withdraws idle reserve. Module is
// either "reward" or "bonus" and prefixes the event type.
type FundsExtracted struct {
	Module    string
	Token     common.Address
	Recipient common.Address
	Amount    *big.Int
}

func (e FundsExtracted) EventType() string {
	module := strings.TrimSpace(e.Module)
	if module == "" {
		module = "unknown"
	}
	return module + ".funds.extracted"
}

func (e FundsExtracted) Attributes() map[string]string {
	return map[string]string{
		"token":     addressString(e.Token),
		"recipient": addressString(e.Recipient),
		"amount":    amountString(e.Amount),
	}
}

// BonusParamsUpdated captures a bonus configuration assignment. Value is the
// rendered new value since the parameters are not all numeric.
type BonusParamsUpdated struct {
	Caller common.Address
	Param  string
	Value  string
}

func (BonusParamsUpdated) EventType() string { return TypeBonusParamsUpdated }

func (e BonusParamsUpdated) Attributes() map[string]string {
	return map[string]string{
		"caller": addressString(e.Caller),
		"param":  strings.TrimSpace(e.Param),
		"value":  e.Value,
	}
}

// BonusPaid describes a bonus transferred after a deposit.
type BonusPaid struct {
	Asset     common.Address
	Recipient common.Address
	Amount    *big.Int
	Bonus     *big.Int
}

func (BonusPaid) EventType() string { return TypeBonusPaid }

func (e BonusPaid) Attributes() map[string]string {
	return map[string]string{
		"asset":     addressString(e.Asset),
		"recipient": addressString(e.Recipient),
		"amount":    amountString(e.Amount),
		"bonus":     amountString(e.Bonus),
	}
}
