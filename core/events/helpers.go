package events

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func addressString(addr common.Address) string {
	if addr == (common.Address{}) {
		return ""
	}
	return strings.ToLower(addr.Hex())
}

func addressList(addrs []common.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		parts = append(parts, addressString(addr))
	}
	return strings.Join(parts, ",")
}

func amountList(values []*big.Int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, amountString(v))
	}
	return strings.Join(parts, ",")
}
