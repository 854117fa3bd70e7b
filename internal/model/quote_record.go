package model

// Quote kinds stored in QuoteRecord.Kind.
const (
	QuoteKindAdd    = "add"
	QuoteKindRemove = "remove"
)

// QuoteRecord is the persisted form of an issued quote. Amounts are integer
// strings in minor units so records stay exact.
type QuoteRecord struct {
	ChainID      uint64 `json:"chain_id"`
	Kind         string `json:"kind"`
	Pair         string `json:"pair"`
	TokenA       string `json:"token_a"`
	TokenB       string `json:"token_b"`
	AmountA      string `json:"amount_a"`
	AmountB      string `json:"amount_b"`
	LPTokens     string `json:"lp_tokens"`
	FeeOn        bool   `json:"fee_on"`
	FeeLiquidity string `json:"fee_liquidity"`
	FirstDeposit bool   `json:"first_deposit"`
	QuotedAt     string `json:"quoted_at"`
}
