package state

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	ErrNegativeQuantity = errors.New("state: negative quantity")
	ErrQuantityOverflow = errors.New("state: quantity exceeds 256 bits")
)

// checkQuantity normalises nil to zero and enforces the unsigned 256-bit range
// every stored balance must fit in.
func checkQuantity(amount *big.Int) (*big.Int, error) {
	if amount == nil {
		return big.NewInt(0), nil
	}
	if amount.Sign() < 0 {
		return nil, ErrNegativeQuantity
	}
	if _, overflow := uint256.FromBig(amount); overflow {
		return nil, ErrQuantityOverflow
	}
	return new(big.Int).Set(amount), nil
}

func (m *Manager) readQuantity(key []byte) (*big.Int, error) {
	amount := new(big.Int)
	ok, err := m.get(key, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return amount, nil
}
