package entities

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// MaxUint256 is used as the "unlimited" allowance value.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// CloneAmount copies v, treating nil as zero.
func CloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// ParseAmount parses a non-negative base-10 integer that fits in 256 bits.
func ParseAmount(raw string) (*big.Int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok || v.Sign() < 0 || v.Cmp(MaxUint256) > 0 {
		return nil, false
	}
	return v, true
}

// IsUnlimited reports whether an allowance is the max sentinel.
func IsUnlimited(v *big.Int) bool {
	return v != nil && v.Cmp(MaxUint256) == 0
}

// NativeCurrency is the ledger key for the chain's native coin, following the
// common 0xEeee... placeholder convention.
var NativeCurrency = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")
