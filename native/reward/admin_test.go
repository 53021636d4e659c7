package reward

import (
	"errors"
	"math/big"
	"reflect"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"basketincentives/core/events"
)

func TestSettersRequireOwner(t *testing.T) {
	e := NewEngine(owner, vault)
	one := big.NewInt(1)
	checks := map[string]error{
		"SetTargetWeights":  e.SetTargetWeights(stranger, []common.Address{asset(0)}, []*big.Int{one}),
		"SetFactor":         e.SetFactor(stranger, one),
		"SetMaxRewardPerc":  e.SetMaxRewardPerc(stranger, one),
		"SetMaxPenaltyPerc": e.SetMaxPenaltyPerc(stranger, one),
		"ExtractFunds":      e.ExtractFunds(stranger, xusd, one),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
	if len(e.Assets()) != 0 || e.Factor().Sign() != 0 {
		t.Fatalf("unauthorized calls must not change state")
	}
}

func TestSetTargetWeightsValidation(t *testing.T) {
	e := NewEngine(owner, vault)
	one := big.NewInt(1)
	if err := e.SetTargetWeights(owner, []common.Address{asset(0), asset(1)}, []*big.Int{one}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if err := e.SetTargetWeights(owner, []common.Address{asset(0), asset(0)}, []*big.Int{one, one}); !errors.Is(err, ErrDuplicateAsset) {
		t.Fatalf("expected ErrDuplicateAsset, got %v", err)
	}
	if err := e.SetTargetWeights(owner, []common.Address{{}}, []*big.Int{one}); !errors.Is(err, ErrInvalidAsset) {
		t.Fatalf("expected ErrInvalidAsset, got %v", err)
	}
	if err := e.SetTargetWeights(owner, []common.Address{asset(0)}, []*big.Int{big.NewInt(-1)}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := e.SetFactor(owner, nil); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for nil factor, got %v", err)
	}
	if len(e.Assets()) != 0 {
		t.Fatalf("rejected updates must leave the registry empty")
	}
}

func TestSetTargetWeightsReplacesRegistry(t *testing.T) {
	recorder := &events.Recorder{}
	e := NewEngine(owner, vault)
	e.SetEmitter(recorder)

	first := []common.Address{asset(0), asset(1), asset(2)}
	if err := e.SetTargetWeights(owner, first, floatsToUnits([]float64{0.5, 0.3, 0.2})); err != nil {
		t.Fatalf("set targets: %v", err)
	}
	// Weights need not sum to one.
	second := []common.Address{asset(3), asset(1)}
	weights := floatsToUnits([]float64{0.9, 0.9})
	if err := e.SetTargetWeights(owner, second, weights); err != nil {
		t.Fatalf("replace targets: %v", err)
	}
	weights[0].SetInt64(0)

	if got := e.Assets(); !reflect.DeepEqual(got, second) {
		t.Fatalf("expected registry %v, got %v", second, got)
	}
	if e.TargetWeight(asset(0)).Sign() != 0 {
		t.Fatalf("replaced asset must no longer have a weight")
	}
	if e.TargetWeight(asset(3)).Cmp(floatUnits(0.9)) != 0 {
		t.Fatalf("registry must not alias caller slices")
	}
	if got := len(recorder.OfType(events.TypeRewardTargetsUpdated)); got != 2 {
		t.Fatalf("expected 2 target events, got %d", got)
	}
}

func TestParamSettersAndGetters(t *testing.T) {
	recorder := &events.Recorder{}
	e := NewEngine(owner, vault)
	e.SetEmitter(recorder)
	if err := e.SetFactor(owner, big.NewInt(11)); err != nil {
		t.Fatal(err)
	}
	if err := e.SetMaxRewardPerc(owner, big.NewInt(22)); err != nil {
		t.Fatal(err)
	}
	if err := e.SetMaxPenaltyPerc(owner, big.NewInt(33)); err != nil {
		t.Fatal(err)
	}
	if e.Factor().Int64() != 11 || e.MaxRewardPerc().Int64() != 22 || e.MaxPenaltyPerc().Int64() != 33 {
		t.Fatalf("unexpected params: %s %s %s", e.Factor(), e.MaxRewardPerc(), e.MaxPenaltyPerc())
	}
	e.Factor().SetInt64(99)
	if e.Factor().Int64() != 11 {
		t.Fatalf("getters must return copies")
	}
	params := recorder.OfType(events.TypeRewardParamsUpdated)
	if len(params) != 3 {
		t.Fatalf("expected 3 param events, got %d", len(params))
	}
	if attrs := params[1].Attributes(); attrs["param"] != "maxRewardPerc" || attrs["value"] != "22" {
		t.Fatalf("unexpected event attributes: %v", attrs)
	}
	if e.Version() != "3.0" {
		t.Fatalf("unexpected version %s", e.Version())
	}
}

func TestFailedPersistLeavesConfigUntouched(t *testing.T) {
	store := &memoryStore{}
	e := NewEngine(owner, vault)
	e.SetStore(store)
	if err := e.SetFactor(owner, big.NewInt(5)); err != nil {
		t.Fatalf("set factor: %v", err)
	}
	store.err = errors.New("disk full")
	if err := e.SetFactor(owner, big.NewInt(6)); err == nil {
		t.Fatalf("expected persistence failure")
	}
	if e.Factor().Int64() != 5 {
		t.Fatalf("expected factor to remain 5, got %s", e.Factor())
	}
}

func TestLoadRestoresPersistedConfig(t *testing.T) {
	store := &memoryStore{}
	first := NewEngine(owner, vault)
	first.SetStore(store)
	if err := first.SetTargetWeights(owner, []common.Address{asset(0), asset(1)}, floatsToUnits([]float64{0.6, 0.4})); err != nil {
		t.Fatal(err)
	}
	if err := first.SetFactor(owner, big.NewInt(42)); err != nil {
		t.Fatal(err)
	}

	second := NewEngine(owner, vault)
	second.SetStore(store)
	ok, err := second.Load()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(second.Config(), first.Config()) {
		t.Fatalf("loaded config differs: %+v vs %+v", second.Config(), first.Config())
	}

	empty := NewEngine(owner, vault)
	empty.SetStore(&memoryStore{})
	if ok, err := empty.Load(); ok || err != nil {
		t.Fatalf("expected nothing to load, got ok=%v err=%v", ok, err)
	}
}

func TestSuccessorMigratesConfiguration(t *testing.T) {
	predecessor := NewEngine(owner, vault)
	assets := []common.Address{asset(2), asset(0), asset(1)}
	if err := predecessor.SetTargetWeights(owner, assets, floatsToUnits([]float64{0.05, 0.49, 0.15})); err != nil {
		t.Fatal(err)
	}
	if err := predecessor.SetFactor(owner, floatUnits(2000000)); err != nil {
		t.Fatal(err)
	}
	if err := predecessor.SetMaxRewardPerc(owner, floatUnits(0.025)); err != nil {
		t.Fatal(err)
	}
	if err := predecessor.SetMaxPenaltyPerc(owner, floatUnits(0.1)); err != nil {
		t.Fatal(err)
	}

	successor, err := NewSuccessor(stranger, vault, predecessor)
	if err != nil {
		t.Fatalf("new successor: %v", err)
	}
	if !reflect.DeepEqual(successor.Assets(), assets) {
		t.Fatalf("expected assets in original order %v, got %v", assets, successor.Assets())
	}
	for _, a := range assets {
		if successor.TargetWeight(a).Cmp(predecessor.TargetWeight(a)) != 0 {
			t.Fatalf("weight mismatch for %s", a.Hex())
		}
	}
	if successor.Factor().Cmp(predecessor.Factor()) != 0 ||
		successor.MaxRewardPerc().Cmp(predecessor.MaxRewardPerc()) != 0 ||
		successor.MaxPenaltyPerc().Cmp(predecessor.MaxPenaltyPerc()) != 0 {
		t.Fatalf("global params not migrated")
	}
	if successor.Owner() != stranger {
		t.Fatalf("successor keeps its own owner")
	}

	// Later predecessor changes are not re-synced.
	if err := predecessor.SetFactor(owner, big.NewInt(1)); err != nil {
		t.Fatal(err)
	}
	if successor.Factor().Cmp(floatUnits(2000000)) != 0 {
		t.Fatalf("successor must not follow predecessor updates")
	}

	store := &memoryStore{}
	successor.SetStore(store)
	if err := successor.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.writes != 1 || len(store.cfg.Assets) != 3 {
		t.Fatalf("expected migrated config to be persisted, got %+v", store.cfg)
	}

	if _, err := NewSuccessor(owner, vault, nil); !errors.Is(err, ErrNilPredecessor) {
		t.Fatalf("expected ErrNilPredecessor, got %v", err)
	}
}

func TestConcurrentSettersKeepEveryChange(t *testing.T) {
	e := NewEngine(owner, vault)
	store := &memoryStore{}
	e.SetStore(store)

	const rounds = 200
	var wg sync.WaitGroup
	setters := []func(common.Address, *big.Int) error{e.SetFactor, e.SetMaxRewardPerc, e.SetMaxPenaltyPerc}
	for _, set := range setters {
		wg.Add(1)
		go func(set func(common.Address, *big.Int) error) {
			defer wg.Done()
			for i := int64(1); i <= rounds; i++ {
				if err := set(owner, big.NewInt(i)); err != nil {
					t.Errorf("setter: %v", err)
					return
				}
			}
		}(set)
	}
	wg.Wait()

	for name, got := range map[string]*big.Int{
		"factor":         e.Factor(),
		"maxRewardPerc":  e.MaxRewardPerc(),
		"maxPenaltyPerc": e.MaxPenaltyPerc(),
	} {
		if got.Int64() != rounds {
			t.Fatalf("%s lost an update: got %s", name, got)
		}
	}
	persisted, _, err := store.RewardConfig()
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if persisted.Factor.Int64() != rounds || persisted.MaxRewardPerc.Int64() != rounds || persisted.MaxPenaltyPerc.Int64() != rounds {
		t.Fatalf("persisted config lost an update: %+v", persisted)
	}
}
