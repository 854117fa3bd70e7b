// Package amm mirrors the integer arithmetic of a constant-product pair and
// router so liquidity changes can be quoted off-chain. Every division
// truncates toward zero exactly like the EVM's uint256 division.
package amm

import (
	"errors"
	"math/big"
)

// ErrDivideByZero is returned when a ratio is requested against an empty reserve.
var ErrDivideByZero = errors.New("division by zero")

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// SqrtFloor returns floor(sqrt(n)) using the Babylonian iteration of the
// pair contract's Math.sqrt. It panics if n is negative.
func SqrtFloor(n *big.Int) *big.Int {
	if n.Sign() < 0 {
		panic("amm: square root of negative number")
	}
	if n.Cmp(three) <= 0 {
		if n.Sign() == 0 {
			return new(big.Int)
		}
		return big.NewInt(1)
	}

	y := new(big.Int).Set(n)
	z := new(big.Int).Rsh(n, 1)
	z.Add(z, one)

	tmp := new(big.Int)
	for z.Cmp(y) < 0 {
		y.Set(z)
		// z = (n/z + z) / 2
		tmp.Quo(n, z)
		tmp.Add(tmp, z)
		z.Quo(tmp, two)
	}
	return y
}

// QuoteRatio returns floor(amountA * reserveB / reserveA).
func QuoteRatio(amountA, reserveA, reserveB *big.Int) (*big.Int, error) {
	if reserveA.Sign() == 0 {
		return nil, ErrDivideByZero
	}
	out := new(big.Int).Mul(amountA, reserveB)
	return out.Quo(out, reserveA), nil
}

// Min returns a copy of the smaller of a and b.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) < 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
