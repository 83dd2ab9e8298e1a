package sendflow

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// isBalanceSufficient reports whether balance covers amount plus the gas
// total. Works for negative amounts too, which arise when a max-mode amount
// went below zero.
func isBalanceSufficient(amount, gasTotal, balance *big.Int) bool {
	if balance == nil {
		balance = new(big.Int)
	}
	total := new(big.Int).Add(orZero(amount), orZero(gasTotal))
	return total.Cmp(balance) <= 0
}

// isTokenBalanceSufficient compares a minimal-unit amount against a
// whole-token balance adjusted by the token's decimals.
func isTokenBalanceSufficient(amount, tokenBalance *big.Int, decimals int) bool {
	adjusted := new(big.Int).Mul(orZero(tokenBalance), decimalsMultiplier(decimals))
	return orZero(amount).Cmp(adjusted) <= 0
}

func decimalsMultiplier(decimals int) *big.Int {
	if decimals <= 0 {
		return big.NewInt(1)
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// isValidHexAddress reports whether the input is a 0x-prefixed hex account
// address.
func isValidHexAddress(input string) bool {
	return strings.HasPrefix(input, "0x") && common.IsHexAddress(input)
}

func addressesEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}
