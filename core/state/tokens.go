package state

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	tokenBalancePrefix = []byte("token/balance/")

	ErrInsufficientBalance = errors.New("state: insufficient token balance")
)

func tokenBalanceKey(token, holder common.Address) []byte {
	return prefixedKey(tokenBalancePrefix, token.Bytes(), holder.Bytes())
}

// SetTokenBalance overwrites the balance holder has of token.
func (m *Manager) SetTokenBalance(token, holder common.Address, amount *big.Int) error {
	value, err := checkQuantity(amount)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.put(tokenBalanceKey(token, holder), value)
}

// TokenBalance returns the balance holder has of token, zero when unknown.
func (m *Manager) TokenBalance(token, holder common.Address) (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readQuantity(tokenBalanceKey(token, holder))
}

// TransferToken moves amount of token between two holders. Both balances are
// checked before either is written and both writes land in one batch.
func (m *Manager) TransferToken(token, from, to common.Address, amount *big.Int) error {
	value, err := checkQuantity(amount)
	if err != nil {
		return err
	}
	if from == to || value.Sign() == 0 {
		return nil
	}
	return m.Update(func(tx *Manager) error {
		fromBal, err := tx.readQuantity(tokenBalanceKey(token, from))
		if err != nil {
			return err
		}
		if fromBal.Cmp(value) < 0 {
			return ErrInsufficientBalance
		}
		toBal, err := tx.readQuantity(tokenBalanceKey(token, to))
		if err != nil {
			return err
		}
		toBal.Add(toBal, value)
		if _, err := checkQuantity(toBal); err != nil {
			return err
		}
		if err := tx.put(tokenBalanceKey(token, from), fromBal.Sub(fromBal, value)); err != nil {
			return err
		}
		return tx.put(tokenBalanceKey(token, to), toBal)
	})
}
