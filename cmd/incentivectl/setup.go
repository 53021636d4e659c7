package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"

	"basketincentives/config"
	"basketincentives/core/events"
	"basketincentives/core/state"
	"basketincentives/native/bonus"
	nativecommon "basketincentives/native/common"
	"basketincentives/native/reward"
	"basketincentives/storage"
)

type node struct {
	db       storage.Database
	state    *state.Manager
	reward   *reward.Engine
	bonus    *bonus.Engine
	recorder *events.Recorder
	settings *config.Resolved
}

// openDatabase picks the backend for cfg. Without a DataDir everything stays
// in memory for the lifetime of the run.
func openDatabase(cfg *config.Config) (storage.Database, error) {
	if cfg.DataDir == "" {
		return storage.NewMemDB(), nil
	}
	if cfg.Backend == config.BackendBolt {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		path := filepath.Join(cfg.DataDir, "incentives.db")
		db, err := storage.NewBoltDB(path)
		if err != nil {
			return nil, fmt.Errorf("open bolt %s: %w", path, err)
		}
		return db, nil
	}
	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", cfg.DataDir, err)
	}
	return db, nil
}

// applySnapshot lists every snapshot asset and overwrites the basket and
// reserve balances it names. The snapshot lands in one batch or not at all.
func applySnapshot(mgr *state.Manager, snap *config.Snapshot) error {
	assets, err := snap.Assets()
	if err != nil {
		return err
	}
	reserves, err := snap.ReserveBalances()
	if err != nil {
		return err
	}
	return mgr.Update(func(tx *state.Manager) error {
		for _, entry := range assets {
			if err := tx.ListBasketAsset(entry.Asset); err != nil {
				return err
			}
			if err := tx.SetBasketBalance(entry.Asset, entry.Balance); err != nil {
				return err
			}
			if err := tx.SetPaused(nativecommon.AssetPauseKey(entry.Asset), entry.Paused); err != nil {
				return err
			}
		}
		for _, entry := range reserves {
			if err := tx.SetTokenBalance(entry.Token, entry.Holder, entry.Balance); err != nil {
				return err
			}
		}
		return nil
	})
}

func configureReward(e *reward.Engine, owner common.Address, cfg *reward.Config) error {
	if err := e.SetTargetWeights(owner, cfg.Assets, cfg.Weights); err != nil {
		return err
	}
	if err := e.SetFactor(owner, cfg.Factor); err != nil {
		return err
	}
	if err := e.SetMaxRewardPerc(owner, cfg.MaxRewardPerc); err != nil {
		return err
	}
	return e.SetMaxPenaltyPerc(owner, cfg.MaxPenaltyPerc)
}

func configureBonus(e *bonus.Engine, owner common.Address, p *bonus.Params) error {
	if err := e.SetAssets(owner, p.Assets); err != nil {
		return err
	}
	if err := e.SetAmountMultiplier(owner, p.AmountMultiplier); err != nil {
		return err
	}
	if err := e.SetRewardMultiplier(owner, p.RewardMultiplier); err != nil {
		return err
	}
	if err := e.SetMinimumAmount(owner, p.MinimumAmount); err != nil {
		return err
	}
	if err := e.SetMaximumBonus(owner, p.MaximumBonus); err != nil {
		return err
	}
	return e.SetPaused(owner, p.Paused)
}

// newNode wires both engines over a state manager. With reuse set, a
// configuration already persisted in the data directory wins over the file.
// Stamping the schema version, applying the snapshot and configuring both
// engines happen in one state update, so a failed start leaves the data
// directory untouched.
func newNode(cfg *config.Config, snap *config.Snapshot, reuse bool, logger *slog.Logger) (*node, error) {
	settings, err := config.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	n := &node{db: db, state: state.NewManager(db), recorder: &events.Recorder{}, settings: settings}

	n.reward = reward.NewEngine(settings.Owner, settings.Vault)
	n.reward.SetLogger(logger)
	n.reward.SetLedger(n.state)
	n.reward.SetPauses(n.state)
	n.reward.SetReserve(n.state, settings.Token, settings.RewardReserve)
	n.reward.SetEmitter(n.recorder)

	n.bonus = bonus.NewEngine(settings.Owner, settings.Vault, n.reward)
	n.bonus.SetLogger(logger)
	n.bonus.SetReserve(n.state, settings.Token, settings.BonusReserve)
	n.bonus.SetEmitter(n.recorder)

	loadedReward, loadedBonus := false, false
	err = n.state.Update(func(tx *state.Manager) error {
		n.reward.SetStore(tx)
		n.bonus.SetStore(tx)
		if err := tx.EnsureStateVersion(false); err != nil {
			return err
		}
		if snap != nil {
			if err := applySnapshot(tx, snap); err != nil {
				return fmt.Errorf("apply snapshot: %w", err)
			}
		}
		if reuse {
			var err error
			if loadedReward, err = n.reward.Load(); err != nil {
				return fmt.Errorf("load reward config: %w", err)
			}
			if loadedBonus, err = n.bonus.Load(); err != nil {
				return fmt.Errorf("load bonus params: %w", err)
			}
		}
		if !loadedReward {
			if err := configureReward(n.reward, settings.Owner, settings.Reward); err != nil {
				return fmt.Errorf("configure reward: %w", err)
			}
		}
		if !loadedBonus {
			if err := configureBonus(n.bonus, settings.Owner, settings.Bonus); err != nil {
				return fmt.Errorf("configure bonus: %w", err)
			}
		}
		return nil
	})
	n.reward.SetStore(n.state)
	n.bonus.SetStore(n.state)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("engines ready", "rewardFromStore", loadedReward, "bonusFromStore", loadedBonus)
	return n, nil
}

func (n *node) Close() {
	if n != nil && n.db != nil {
		n.db.Close()
	}
}
