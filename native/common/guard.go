package common

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var ErrPaused = errors.New("paused")

// PauseView reports whether a pausable key (a module name or an asset key) is
// currently halted.
type PauseView interface {
	IsPaused(key string) bool
}

// AssetPauseKey returns the pause key used for a single basket asset.
func AssetPauseKey(asset common.Address) string {
	return "asset:" + strings.ToLower(asset.Hex())
}

func Guard(p PauseView, key string) error {
	if p == nil || key == "" {
		return nil
	}
	if p.IsPaused(key) {
		return ErrPaused
	}
	return nil
}

// GuardAsset is Guard applied to the asset's pause key.
func GuardAsset(p PauseView, asset common.Address) error {
	return Guard(p, AssetPauseKey(asset))
}

// PauseSet is a static PauseView, useful for snapshots and tests.
type PauseSet map[string]bool

func (s PauseSet) IsPaused(key string) bool {
	if s == nil {
		return false
	}
	return s[key]
}
