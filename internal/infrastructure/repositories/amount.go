package repositories

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

func amountToString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func amountFromString(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return v
}

func addressKey(a common.Address) string {
	return a.Hex()
}
