package model

// TokenMeta captures the ERC20 metadata needed to render a quote.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol,omitempty"`
}
