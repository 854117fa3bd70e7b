package quote

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"liquidityQuote/internal/model"
	"liquidityQuote/internal/units"
)

// Model renders the quote with display-unit amounts.
func (q AddQuote) Model() model.AddLiquidityQuote {
	return model.AddLiquidityQuote{
		Pair:         hexOrEmpty(q.Pair),
		TokenA:       q.TokenA.Hex(),
		TokenB:       q.TokenB.Hex(),
		AmountA:      units.Format(q.AmountA, q.DecimalsA),
		AmountB:      units.Format(q.AmountB, q.DecimalsB),
		LPTokensOut:  units.Format(q.LPTokensOut, LPDecimals),
		AmountAMin:   formatOptional(q.AmountAMin, q.DecimalsA),
		AmountBMin:   formatOptional(q.AmountBMin, q.DecimalsB),
		FirstDeposit: q.FirstDeposit,
		FeeOn:        q.FeeOn,
		FeeLiquidity: units.Format(q.FeeLiquidity, LPDecimals),
	}
}

// Record returns the persisted form of the quote in minor units.
func (q AddQuote) Record() model.QuoteRecord {
	return model.QuoteRecord{
		Kind:         model.QuoteKindAdd,
		Pair:         hexOrEmpty(q.Pair),
		TokenA:       q.TokenA.Hex(),
		TokenB:       q.TokenB.Hex(),
		AmountA:      intString(q.AmountA),
		AmountB:      intString(q.AmountB),
		LPTokens:     intString(q.LPTokensOut),
		FeeOn:        q.FeeOn,
		FeeLiquidity: intString(q.FeeLiquidity),
		FirstDeposit: q.FirstDeposit,
	}
}

func (q RemoveQuote) Model() model.RemoveLiquidityQuote {
	return model.RemoveLiquidityQuote{
		Pair:         q.Pair.Hex(),
		TokenA:       q.TokenA.Hex(),
		TokenB:       q.TokenB.Hex(),
		LPTokensIn:   units.Format(q.LPTokensIn, LPDecimals),
		AmountAOut:   units.Format(q.AmountAOut, q.DecimalsA),
		AmountBOut:   units.Format(q.AmountBOut, q.DecimalsB),
		AmountAMin:   formatOptional(q.AmountAMin, q.DecimalsA),
		AmountBMin:   formatOptional(q.AmountBMin, q.DecimalsB),
		FeeOn:        q.FeeOn,
		FeeLiquidity: units.Format(q.FeeLiquidity, LPDecimals),
	}
}

func (q RemoveQuote) Record() model.QuoteRecord {
	return model.QuoteRecord{
		Kind:         model.QuoteKindRemove,
		Pair:         q.Pair.Hex(),
		TokenA:       q.TokenA.Hex(),
		TokenB:       q.TokenB.Hex(),
		AmountA:      intString(q.AmountAOut),
		AmountB:      intString(q.AmountBOut),
		LPTokens:     intString(q.LPTokensIn),
		FeeOn:        q.FeeOn,
		FeeLiquidity: intString(q.FeeLiquidity),
	}
}

func (p Position) Model() model.LiquidityPosition {
	return model.LiquidityPosition{
		Pair:        p.Pair.Hex(),
		Account:     p.Account.Hex(),
		TokenA:      p.TokenA,
		TokenB:      p.TokenB,
		ReserveA:    units.Format(p.ReserveA, p.DecimalsA),
		ReserveB:    units.Format(p.ReserveB, p.DecimalsB),
		LPBalance:   units.Format(p.LPBalance, LPDecimals),
		TotalSupply: units.Format(p.TotalSupply, LPDecimals),
		PoolShare:   units.Ratio(p.LPBalance, p.TotalSupply, 8),
		AmountA:     units.Format(p.AmountA, p.DecimalsA),
		AmountB:     units.Format(p.AmountB, p.DecimalsB),
	}
}

func hexOrEmpty(addr common.Address) string {
	if addr == (common.Address{}) {
		return ""
	}
	return addr.Hex()
}

func formatOptional(v *big.Int, decimals uint8) string {
	if v == nil {
		return ""
	}
	return units.Format(v, decimals)
}

func intString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
