package amm

import "math/big"

var five = big.NewInt(5)

// FeeState is the protocol-fee share the pair would mint to the fee recipient
// before processing a liquidity change.
type FeeState struct {
	FeeOn           bool
	LiquidityMinted *big.Int
}

// EstimateFee replicates the pair's _mintFee step: one sixth of the growth in
// sqrt(k) since kLast is minted as LP to the fee recipient.
func EstimateFee(reserveA, reserveB, kLast, totalSupply *big.Int, feeOn bool) FeeState {
	state := FeeState{FeeOn: feeOn, LiquidityMinted: new(big.Int)}
	if !feeOn || kLast == nil || kLast.Sign() == 0 {
		return state
	}

	rootK := SqrtFloor(new(big.Int).Mul(reserveA, reserveB))
	rootKLast := SqrtFloor(kLast)
	if rootK.Cmp(rootKLast) <= 0 {
		return state
	}

	numerator := new(big.Int).Sub(rootK, rootKLast)
	numerator.Mul(numerator, totalSupply)
	denominator := new(big.Int).Mul(rootK, five)
	denominator.Add(denominator, rootKLast)

	liquidity := numerator.Quo(numerator, denominator)
	if liquidity.Sign() > 0 {
		state.LiquidityMinted = liquidity
	}
	return state
}

// EffectiveSupply returns totalSupply plus the fee liquidity the pair mints
// ahead of the caller's own mint or burn.
func EffectiveSupply(totalSupply *big.Int, fee FeeState) *big.Int {
	supply := new(big.Int).Set(totalSupply)
	if fee.LiquidityMinted != nil {
		supply.Add(supply, fee.LiquidityMinted)
	}
	return supply
}
