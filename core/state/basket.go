package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	basketAssetsKey     = []byte("basket/assets")
	basketBalancePrefix = []byte("basket/balance/")
)

func basketBalanceKey(asset common.Address) []byte {
	return prefixedKey(basketBalancePrefix, asset.Bytes())
}

func (m *Manager) basketAssets() ([]common.Address, error) {
	var list []common.Address
	if _, err := m.get(basketAssetsKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// BasketAssets returns the listed basket assets in listing order.
func (m *Manager) BasketAssets() ([]common.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.basketAssets()
}

// ListBasketAsset adds asset to the basket listing. Listing an asset twice is
// a no-op.
func (m *Manager) ListBasketAsset(asset common.Address) error {
	if asset == (common.Address{}) {
		return fmt.Errorf("state: basket asset must not be the zero address")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list, err := m.basketAssets()
	if err != nil {
		return err
	}
	for _, existing := range list {
		if existing == asset {
			return nil
		}
	}
	return m.put(basketAssetsKey, append(list, asset))
}

// DelistBasketAsset removes asset from the listing. Its balance stays
// recorded but no longer counts towards the basket total.
func (m *Manager) DelistBasketAsset(asset common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, err := m.basketAssets()
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, existing := range list {
		if existing != asset {
			kept = append(kept, existing)
		}
	}
	return m.put(basketAssetsKey, kept)
}

// SetBasketBalance records the normalised basket holding of asset.
func (m *Manager) SetBasketBalance(asset common.Address, amount *big.Int) error {
	value, err := checkQuantity(amount)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.put(basketBalanceKey(asset), value)
}

// BasketBalance returns the recorded holding of asset, zero when unknown.
func (m *Manager) BasketBalance(asset common.Address) (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readQuantity(basketBalanceKey(asset))
}

// BasketTotal sums the holdings of all listed assets.
func (m *Manager) BasketTotal() (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list, err := m.basketAssets()
	if err != nil {
		return nil, err
	}
	total := big.NewInt(0)
	for _, asset := range list {
		balance, err := m.readQuantity(basketBalanceKey(asset))
		if err != nil {
			return nil, err
		}
		total.Add(total, balance)
	}
	return total, nil
}

// IsBasketAsset reports whether asset is currently listed.
func (m *Manager) IsBasketAsset(asset common.Address) (bool, error) {
	list, err := m.BasketAssets()
	if err != nil {
		return false, err
	}
	for _, existing := range list {
		if existing == asset {
			return true, nil
		}
	}
	return false, nil
}
