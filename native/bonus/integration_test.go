package bonus

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "basketincentives/native/common"
	"basketincentives/native/reward"
)

type staticLedger map[common.Address]*big.Int

func (l staticLedger) BasketBalance(asset common.Address) (*big.Int, error) {
	return nativecommon.Clone(l[asset]), nil
}

func (l staticLedger) BasketTotal() (*big.Int, error) {
	total := big.NewInt(0)
	for _, b := range l {
		total.Add(total, b)
	}
	return total, nil
}

func (l staticLedger) IsBasketAsset(asset common.Address) (bool, error) {
	_, ok := l[asset]
	return ok, nil
}

func TestBonusNeverExceedsRoundTripPenalty(t *testing.T) {
	assets := []common.Address{
		common.HexToAddress("0x0000000000000000000000000000000000000100"),
		common.HexToAddress("0x0000000000000000000000000000000000000101"),
		common.HexToAddress("0x0000000000000000000000000000000000000102"),
	}
	ledger := staticLedger{
		assets[0]: whole(100),
		assets[1]: whole(3_000),
		assets[2]: whole(1_900),
	}
	core := reward.NewEngine(owner, vault)
	core.SetLedger(ledger)
	if err := core.SetTargetWeights(owner, assets, []*big.Int{bps(3_000), bps(4_000), bps(3_000)}); err != nil {
		t.Fatal(err)
	}
	for _, err := range []error{
		core.SetFactor(owner, whole(500)),
		core.SetMaxRewardPerc(owner, bps(500)),
		core.SetMaxPenaltyPerc(owner, bps(1_000)),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}

	res := newMockReserve()
	res.fund(xusd, holder, whole(1_000_000))
	e := NewEngine(owner, vault, core)
	e.SetReserve(res, xusd, holder)
	if err := e.SetAssets(owner, assets); err != nil {
		t.Fatal(err)
	}
	mustConfigure(e, bonusParams{one(), bps(2_000), big.NewInt(0), whole(1_000_000), false})

	for _, asset := range assets {
		for _, amount := range []int64{1, 50, 400, 1_500, 5_000} {
			qty := whole(amount)
			bonus, err := e.PredictedBonus(asset, qty)
			if err != nil {
				t.Fatalf("predict: %v", err)
			}
			rewardAmt, _ := core.RewardForDeposit(asset, qty, false)
			penalty, _ := core.PenaltyForWithdrawal(asset, qty)
			headroom := nativecommon.ClampZero(new(big.Int).Sub(penalty, rewardAmt))
			if bonus.Sign() < 0 || bonus.Cmp(headroom) > 0 {
				t.Fatalf("asset %s amount %d: bonus %s exceeds headroom %s", asset.Hex(), amount, bonus, headroom)
			}
		}
	}
}
