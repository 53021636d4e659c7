package bonus

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "basketincentives/native/common"
)

var (
	owner     = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	vault     = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	stranger  = common.HexToAddress("0x00000000000000000000000000000000000000f2")
	depositor = common.HexToAddress("0x00000000000000000000000000000000000000f3")
	xusd      = common.HexToAddress("0x00000000000000000000000000000000000000e0")
	holder    = common.HexToAddress("0x00000000000000000000000000000000000000e2")
	eligible  = common.HexToAddress("0x0000000000000000000000000000000000000100")
	foreign   = common.HexToAddress("0x0000000000000000000000000000000000000999")
)

func one() *big.Int { return nativecommon.Wad() }

func whole(n int64) *big.Int { return nativecommon.WadFromInt(n) }

// bps returns n basis points of one unit.
func bps(n int64) *big.Int {
	v := new(big.Int).Mul(one(), big.NewInt(n))
	return v.Quo(v, big.NewInt(10_000))
}

type fixedIncentives struct {
	reward  *big.Int
	penalty *big.Int
	err     error
}

func (f *fixedIncentives) RewardForDeposit(common.Address, *big.Int, bool) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return new(big.Int).Set(f.reward), nil
}

func (f *fixedIncentives) PenaltyForWithdrawal(common.Address, *big.Int) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return new(big.Int).Set(f.penalty), nil
}

type mockReserve struct {
	balances map[[2]common.Address]*big.Int
}

func newMockReserve() *mockReserve {
	return &mockReserve{balances: make(map[[2]common.Address]*big.Int)}
}

func (m *mockReserve) fund(token, who common.Address, amount *big.Int) {
	m.balances[[2]common.Address{token, who}] = new(big.Int).Set(amount)
}

func (m *mockReserve) TokenBalance(token, who common.Address) (*big.Int, error) {
	if b, ok := m.balances[[2]common.Address{token, who}]; ok {
		return new(big.Int).Set(b), nil
	}
	return big.NewInt(0), nil
}

func (m *mockReserve) TransferToken(token, from, to common.Address, amount *big.Int) error {
	fromBal, _ := m.TokenBalance(token, from)
	if fromBal.Cmp(amount) < 0 {
		return errors.New("insufficient balance")
	}
	toBal, _ := m.TokenBalance(token, to)
	m.fund(token, from, fromBal.Sub(fromBal, amount))
	m.fund(token, to, toBal.Add(toBal, amount))
	return nil
}

type memoryStore struct {
	params *Params
	err    error
}

func (s *memoryStore) PutBonusParams(p *Params) error {
	if s.err != nil {
		return s.err
	}
	s.params = p.Clone()
	return nil
}

func (s *memoryStore) BonusParams() (*Params, bool, error) {
	if s.params == nil {
		return nil, false, nil
	}
	return s.params.Clone(), true, nil
}

// newTestEngine mirrors the default fixture: one eligible asset, zero
// expected reward, a one million unit penalty and a funded reserve.
func newTestEngine() (*Engine, *fixedIncentives, *mockReserve) {
	source := &fixedIncentives{reward: big.NewInt(0), penalty: whole(1_000_000)}
	res := newMockReserve()
	res.fund(xusd, holder, whole(1_000_000))
	e := NewEngine(owner, vault, source)
	e.SetReserve(res, xusd, holder)
	if err := e.SetAssets(owner, []common.Address{eligible}); err != nil {
		panic(err)
	}
	return e, source, res
}

type bonusParams struct {
	reward, amount, minimum, maximum *big.Int
	paused                           bool
}

func mustConfigure(e *Engine, p bonusParams) {
	for _, err := range []error{
		e.SetRewardMultiplier(owner, p.reward),
		e.SetAmountMultiplier(owner, p.amount),
		e.SetMinimumAmount(owner, p.minimum),
		e.SetMaximumBonus(owner, p.maximum),
		e.SetPaused(owner, p.paused),
	} {
		if err != nil {
			panic(err)
		}
	}
}
