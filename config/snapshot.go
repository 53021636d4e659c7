package config

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Snapshot is a point-in-time view of the basket and the reserves, used to
// evaluate incentives offline.
type Snapshot struct {
	Basket   []SnapshotAsset   `yaml:"basket"`
	Reserves []SnapshotReserve `yaml:"reserves"`
}

type SnapshotAsset struct {
	Asset   string `yaml:"asset"`
	Balance string `yaml:"balance"`
	Paused  bool   `yaml:"paused"`
}

type SnapshotReserve struct {
	Token   string `yaml:"token"`
	Holder  string `yaml:"holder"`
	Balance string `yaml:"balance"`
}

// AssetBalance is a resolved basket entry.
type AssetBalance struct {
	Asset   common.Address
	Balance *big.Int
	Paused  bool
}

// ReserveBalance is a resolved reserve entry.
type ReserveBalance struct {
	Token   common.Address
	Holder  common.Address
	Balance *big.Int
}

// LoadSnapshot reads a YAML basket snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot path required")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	var snap Snapshot
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Assets resolves the basket entries in file order.
func (s *Snapshot) Assets() ([]AssetBalance, error) {
	out := make([]AssetBalance, 0, len(s.Basket))
	seen := make(map[common.Address]struct{}, len(s.Basket))
	for i, entry := range s.Basket {
		field := fmt.Sprintf("basket[%d]", i)
		asset, err := parseAddress(field+".asset", entry.Asset, true)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[asset]; dup {
			return nil, fmt.Errorf("%s: duplicate asset %s", field, asset.Hex())
		}
		seen[asset] = struct{}{}
		balance, err := parseQuantity(field+".balance", entry.Balance)
		if err != nil {
			return nil, err
		}
		out = append(out, AssetBalance{Asset: asset, Balance: balance, Paused: entry.Paused})
	}
	return out, nil
}

// ReserveBalances resolves the reserve entries in file order.
func (s *Snapshot) ReserveBalances() ([]ReserveBalance, error) {
	out := make([]ReserveBalance, 0, len(s.Reserves))
	for i, entry := range s.Reserves {
		field := fmt.Sprintf("reserves[%d]", i)
		token, err := parseAddress(field+".token", entry.Token, true)
		if err != nil {
			return nil, err
		}
		holder, err := parseAddress(field+".holder", entry.Holder, true)
		if err != nil {
			return nil, err
		}
		balance, err := parseQuantity(field+".balance", entry.Balance)
		if err != nil {
			return nil, err
		}
		out = append(out, ReserveBalance{Token: token, Holder: holder, Balance: balance})
	}
	return out, nil
}
