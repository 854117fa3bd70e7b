package model

// AddLiquidityQuote is the boundary form of an add-liquidity preview. Amounts
// are decimal strings scaled by each token's decimals.
type AddLiquidityQuote struct {
	Pair         string `json:"pair,omitempty"`
	TokenA       string `json:"token_a"`
	TokenB       string `json:"token_b"`
	AmountA      string `json:"amount_a"`
	AmountB      string `json:"amount_b"`
	LPTokensOut  string `json:"lp_tokens_out"`
	AmountAMin   string `json:"amount_a_min,omitempty"`
	AmountBMin   string `json:"amount_b_min,omitempty"`
	FirstDeposit bool   `json:"first_deposit"`
	FeeOn        bool   `json:"fee_on"`
	FeeLiquidity string `json:"fee_liquidity"`
}

// RemoveLiquidityQuote is the boundary form of a remove-liquidity preview.
type RemoveLiquidityQuote struct {
	Pair         string `json:"pair"`
	TokenA       string `json:"token_a"`
	TokenB       string `json:"token_b"`
	LPTokensIn   string `json:"lp_tokens_in"`
	AmountAOut   string `json:"amount_a_out"`
	AmountBOut   string `json:"amount_b_out"`
	AmountAMin   string `json:"amount_a_min,omitempty"`
	AmountBMin   string `json:"amount_b_min,omitempty"`
	FeeOn        bool   `json:"fee_on"`
	FeeLiquidity string `json:"fee_liquidity"`
}

// LiquidityPosition describes an account's LP holding in a pair.
type LiquidityPosition struct {
	Pair        string    `json:"pair"`
	Account     string    `json:"account"`
	TokenA      TokenMeta `json:"token_a"`
	TokenB      TokenMeta `json:"token_b"`
	ReserveA    string    `json:"reserve_a"`
	ReserveB    string    `json:"reserve_b"`
	LPBalance   string    `json:"lp_balance"`
	TotalSupply string    `json:"total_supply"`
	PoolShare   string    `json:"pool_share"`
	AmountA     string    `json:"amount_a"`
	AmountB     string    `json:"amount_b"`
}
