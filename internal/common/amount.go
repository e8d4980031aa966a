package common

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToDecimal scales a raw on-chain integer amount by the token decimals.
func ToDecimal(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}
