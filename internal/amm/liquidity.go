package amm

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrInsufficientLiquidity mirrors the router and pair reverts for empty
// reserves and zero-liquidity mints or burns.
var ErrInsufficientLiquidity = errors.New("insufficient liquidity")

// BasisPoints is 100% expressed in basis points.
const BasisPoints = 10_000

// DefaultMinimumLiquidity is the LP amount permanently locked by the first
// deposit: 1000 * 10^18.
func DefaultMinimumLiquidity() *big.Int {
	return new(big.Int).Mul(big.NewInt(1000), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// Pool is a read-only snapshot of a pair, ordered as (A, B) by the caller.
type Pool struct {
	ReserveA    *big.Int
	ReserveB    *big.Int
	TotalSupply *big.Int
	KLast       *big.Int
	FeeOn       bool
}

// Empty reports whether the pool has never received a deposit.
func (p Pool) Empty() bool {
	return p.ReserveA.Sign() == 0 && p.ReserveB.Sign() == 0
}

// Fee estimates the protocol-fee mint for the snapshot.
func (p Pool) Fee() FeeState {
	return EstimateFee(p.ReserveA, p.ReserveB, p.KLast, p.TotalSupply, p.FeeOn)
}

// OptimalAmounts picks the deposit the router would actually pull: the
// desired amount of one side and the pool-ratio amount of the other.
func OptimalAmounts(desiredA, desiredB, reserveA, reserveB *big.Int) (*big.Int, *big.Int, error) {
	if reserveA.Sign() == 0 || reserveB.Sign() == 0 {
		return nil, nil, fmt.Errorf("%w: one side of the pool is empty", ErrInsufficientLiquidity)
	}

	optimalB, err := QuoteRatio(desiredA, reserveA, reserveB)
	if err != nil {
		return nil, nil, err
	}
	if optimalB.Cmp(desiredB) <= 0 {
		return new(big.Int).Set(desiredA), optimalB, nil
	}

	optimalA, err := QuoteRatio(desiredB, reserveB, reserveA)
	if err != nil {
		return nil, nil, err
	}
	return optimalA, new(big.Int).Set(desiredB), nil
}

// MintedLiquidity returns the LP tokens minted for depositing (amountA,
// amountB) into pool. For an empty pool minimumLiquidity is subtracted from
// sqrt(amountA*amountB) and stays locked in the pair.
func MintedLiquidity(amountA, amountB *big.Int, pool Pool, minimumLiquidity *big.Int) (*big.Int, FeeState, error) {
	if pool.Empty() {
		root := SqrtFloor(new(big.Int).Mul(amountA, amountB))
		if root.Cmp(minimumLiquidity) <= 0 {
			return nil, FeeState{FeeOn: pool.FeeOn, LiquidityMinted: new(big.Int)},
				fmt.Errorf("%w: first deposit does not exceed minimum liquidity %s", ErrInsufficientLiquidity, minimumLiquidity)
		}
		return root.Sub(root, minimumLiquidity), FeeState{FeeOn: pool.FeeOn, LiquidityMinted: new(big.Int)}, nil
	}

	if pool.ReserveA.Sign() == 0 || pool.ReserveB.Sign() == 0 {
		return nil, FeeState{}, fmt.Errorf("%w: one side of the pool is empty", ErrInsufficientLiquidity)
	}

	fee := pool.Fee()
	supply := EffectiveSupply(pool.TotalSupply, fee)

	liquidityA := new(big.Int).Mul(amountA, supply)
	liquidityA.Quo(liquidityA, pool.ReserveA)
	liquidityB := new(big.Int).Mul(amountB, supply)
	liquidityB.Quo(liquidityB, pool.ReserveB)

	liquidity := Min(liquidityA, liquidityB)
	if liquidity.Sign() <= 0 {
		return nil, fee, fmt.Errorf("%w: deposit mints no liquidity", ErrInsufficientLiquidity)
	}
	return liquidity, fee, nil
}

// BurnedAmounts returns the token amounts paid out for burning lpAmount.
func BurnedAmounts(lpAmount *big.Int, pool Pool) (*big.Int, *big.Int, FeeState, error) {
	if pool.Empty() {
		return nil, nil, FeeState{}, fmt.Errorf("%w: pool has no reserves", ErrInsufficientLiquidity)
	}
	if pool.TotalSupply != nil && lpAmount.Cmp(pool.TotalSupply) > 0 {
		return nil, nil, FeeState{}, fmt.Errorf("%w: burn of %s exceeds LP supply %s", ErrInsufficientLiquidity, lpAmount, pool.TotalSupply)
	}

	fee := pool.Fee()
	supply := EffectiveSupply(pool.TotalSupply, fee)
	if supply.Sign() == 0 {
		return nil, nil, fee, fmt.Errorf("%w: pool has no LP supply", ErrInsufficientLiquidity)
	}

	amountA, amountB := ProRata(lpAmount, pool.ReserveA, pool.ReserveB, supply)
	if amountA.Sign() == 0 || amountB.Sign() == 0 {
		return nil, nil, fee, fmt.Errorf("%w: burn returns nothing", ErrInsufficientLiquidity)
	}
	return amountA, amountB, fee, nil
}

// ProRata returns the share of each reserve owned by lpAmount out of supply.
// A zero supply yields zero amounts.
func ProRata(lpAmount, reserveA, reserveB, supply *big.Int) (*big.Int, *big.Int) {
	if supply.Sign() == 0 {
		return new(big.Int), new(big.Int)
	}
	amountA := new(big.Int).Mul(reserveA, lpAmount)
	amountA.Quo(amountA, supply)
	amountB := new(big.Int).Mul(reserveB, lpAmount)
	amountB.Quo(amountB, supply)
	return amountA, amountB
}

// ApplySlippage returns floor(amount * (10000 - bps) / 10000).
func ApplySlippage(amount *big.Int, bps uint32) *big.Int {
	if bps >= BasisPoints {
		return new(big.Int)
	}
	out := new(big.Int).Mul(amount, big.NewInt(int64(BasisPoints-bps)))
	return out.Quo(out, big.NewInt(BasisPoints))
}
