package reward

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "basketincentives/native/common"
)

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	vault    = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	stranger = common.HexToAddress("0x00000000000000000000000000000000000000f2")
	xusd     = common.HexToAddress("0x00000000000000000000000000000000000000e0")
	reserve  = common.HexToAddress("0x00000000000000000000000000000000000000e1")
)

func asset(i int) common.Address {
	return common.BigToAddress(big.NewInt(int64(0x100 + i)))
}

// units converts a decimal string into an 18-decimal fixed-point integer.
func units(t testing.TB, s string) *big.Int {
	t.Helper()
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		t.Fatalf("invalid decimal %q", s)
	}
	r.Mul(r, new(big.Rat).SetInt(nativecommon.Wad()))
	if !r.IsInt() {
		t.Fatalf("decimal %q has more than 18 fractional digits", s)
	}
	return new(big.Int).Set(r.Num())
}

func floatUnits(v float64) *big.Int {
	micro := big.NewInt(int64(math.Round(v * 1_000_000)))
	return micro.Mul(micro, big.NewInt(1_000_000_000_000))
}

func toFloat(x *big.Int) float64 {
	f := new(big.Float).SetInt(x)
	out, _ := f.Quo(f, new(big.Float).SetInt(nativecommon.Wad())).Float64()
	return out
}

func requireClose(t *testing.T, label string, got *big.Int, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: got nil, want %v", label, want)
	}
	if diff := math.Abs(toFloat(got) - want); diff > 1e-7 {
		t.Fatalf("%s: got %v, want %v", label, toFloat(got), want)
	}
}

type mockLedger struct {
	balances map[common.Address]*big.Int
	total    *big.Int
	delisted map[common.Address]bool
	err      error
	listErr  error
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		balances: make(map[common.Address]*big.Int),
		total:    big.NewInt(0),
		delisted: make(map[common.Address]bool),
	}
}

func (m *mockLedger) BasketBalance(asset common.Address) (*big.Int, error) {
	if m.err != nil {
		return nil, m.err
	}
	if b, ok := m.balances[asset]; ok {
		return new(big.Int).Set(b), nil
	}
	return big.NewInt(0), nil
}

func (m *mockLedger) BasketTotal() (*big.Int, error) {
	if m.err != nil {
		return nil, m.err
	}
	return new(big.Int).Set(m.total), nil
}

func (m *mockLedger) IsBasketAsset(asset common.Address) (bool, error) {
	if m.listErr != nil {
		return false, m.listErr
	}
	return !m.delisted[asset], nil
}

// load sets the balances in registry order and recomputes the total.
func (m *mockLedger) load(balances []*big.Int) {
	m.balances = make(map[common.Address]*big.Int, len(balances))
	m.total = big.NewInt(0)
	for i, b := range balances {
		m.balances[asset(i)] = new(big.Int).Set(b)
		m.total.Add(m.total, b)
	}
}

type mockReserve struct {
	balances map[[2]common.Address]*big.Int
	failing  bool
}

func newMockReserve() *mockReserve {
	return &mockReserve{balances: make(map[[2]common.Address]*big.Int)}
}

func (m *mockReserve) fund(token, holder common.Address, amount *big.Int) {
	m.balances[[2]common.Address{token, holder}] = new(big.Int).Set(amount)
}

func (m *mockReserve) TokenBalance(token, holder common.Address) (*big.Int, error) {
	if b, ok := m.balances[[2]common.Address{token, holder}]; ok {
		return new(big.Int).Set(b), nil
	}
	return big.NewInt(0), nil
}

func (m *mockReserve) TransferToken(token, from, to common.Address, amount *big.Int) error {
	if m.failing {
		return errors.New("transfer rejected")
	}
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
	cfg    *Config
	writes int
	err    error
}

func (s *memoryStore) PutRewardConfig(cfg *Config) error {
	if s.err != nil {
		return s.err
	}
	s.writes++
	s.cfg = cfg.Clone()
	return nil
}

func (s *memoryStore) RewardConfig() (*Config, bool, error) {
	if s.cfg == nil {
		return nil, false, nil
	}
	return s.cfg.Clone(), true, nil
}

// newTestEngine returns an engine whose caps never bind, mirroring the
// calibration setup of the fixture table.
func newTestEngine(t *testing.T, ledger *mockLedger, factor float64, targets []float64) *Engine {
	t.Helper()
	e := NewEngine(owner, vault)
	e.SetLedger(ledger)
	assets := make([]common.Address, len(targets))
	weights := make([]*big.Int, len(targets))
	for i, w := range targets {
		assets[i] = asset(i)
		weights[i] = floatUnits(w)
	}
	if err := e.SetTargetWeights(owner, assets, weights); err != nil {
		t.Fatalf("set target weights: %v", err)
	}
	if err := e.SetFactor(owner, floatUnits(factor)); err != nil {
		t.Fatalf("set factor: %v", err)
	}
	hundred := units(t, "100")
	if err := e.SetMaxRewardPerc(owner, hundred); err != nil {
		t.Fatalf("set max reward: %v", err)
	}
	if err := e.SetMaxPenaltyPerc(owner, hundred); err != nil {
		t.Fatalf("set max penalty: %v", err)
	}
	return e
}

func floatsToUnits(values []float64) []*big.Int {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		out[i] = floatUnits(v)
	}
	return out
}
