// Package quotetest provides an in-memory Uniswap V2 deployment for tests.
package quotetest

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Read operation names passed to hooks and failure injection.
const (
	OpGetPair     = "getPair"
	OpToken0      = "token0"
	OpGetReserves = "getReserves"
	OpTotalSupply = "totalSupply"
	OpKLast       = "kLast"
	OpFeeTo       = "feeTo"
	OpDecimals    = "decimals"
	OpSymbol      = "symbol"
	OpBalanceOf   = "balanceOf"
)

var ErrUnknownToken = errors.New("quotetest: unknown token")

// Pair is the stored state of one deployed pair.
type Pair struct {
	Token0      common.Address
	Token1      common.Address
	Reserve0    *big.Int
	Reserve1    *big.Int
	TotalSupply *big.Int
	KLast       *big.Int
}

type failure struct {
	remaining int
	err       error
}

// Chain implements the quote engine's chain-read capability from memory.
// Tokens without explicit decimals report 18.
type Chain struct {
	mu       sync.Mutex
	pairs    map[common.Address]Pair
	byTokens map[[2]common.Address]common.Address
	decimals map[common.Address]uint8
	symbols  map[common.Address]string
	balances map[[2]common.Address]*big.Int
	feeTo    common.Address
	failures map[string]*failure
	calls    map[string]int
	hook     func(ctx context.Context, op string) error
}

func New() *Chain {
	return &Chain{
		pairs:    make(map[common.Address]Pair),
		byTokens: make(map[[2]common.Address]common.Address),
		decimals: make(map[common.Address]uint8),
		symbols:  make(map[common.Address]string),
		balances: make(map[[2]common.Address]*big.Int),
		failures: make(map[string]*failure),
		calls:    make(map[string]int),
	}
}

// AddPair registers a deployed pair. Lookups work in either token order.
func (c *Chain) AddPair(address common.Address, p Pair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pairs[address] = p
	c.byTokens[tokenKey(p.Token0, p.Token1)] = address
}

func (c *Chain) SetReserves(pair common.Address, reserve0, reserve1 *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pairs[pair]
	p.Reserve0, p.Reserve1 = reserve0, reserve1
	c.pairs[pair] = p
}

func (c *Chain) SetDecimals(token common.Address, decimals uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decimals[token] = decimals
}

func (c *Chain) SetSymbol(token common.Address, symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.symbols[token] = symbol
}

func (c *Chain) SetBalance(token, owner common.Address, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[[2]common.Address{token, owner}] = amount
}

// SetFeeTo sets the factory fee recipient. The zero address disables fees.
func (c *Chain) SetFeeTo(addr common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feeTo = addr
}

// FailNext makes the next n reads of op return err.
func (c *Chain) FailNext(op string, n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[op] = &failure{remaining: n, err: err}
}

// SetHook installs fn to run before every read. A non-nil return fails the read.
func (c *Chain) SetHook(fn func(ctx context.Context, op string) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hook = fn
}

// Calls returns how many times op was attempted.
func (c *Chain) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

func (c *Chain) GetPairAddress(ctx context.Context, _, tokenA, tokenB common.Address) (common.Address, error) {
	if err := c.enter(ctx, OpGetPair); err != nil {
		return common.Address{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byTokens[tokenKey(tokenA, tokenB)], nil
}

func (c *Chain) GetToken0(ctx context.Context, pair common.Address) (common.Address, error) {
	if err := c.enter(ctx, OpToken0); err != nil {
		return common.Address{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pairs[pair].Token0, nil
}

func (c *Chain) GetReserves(ctx context.Context, pair common.Address) (*big.Int, *big.Int, error) {
	if err := c.enter(ctx, OpGetReserves); err != nil {
		return nil, nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pairs[pair]
	return orZero(p.Reserve0), orZero(p.Reserve1), nil
}

func (c *Chain) GetTotalSupply(ctx context.Context, pair common.Address) (*big.Int, error) {
	if err := c.enter(ctx, OpTotalSupply); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return orZero(c.pairs[pair].TotalSupply), nil
}

func (c *Chain) GetKLast(ctx context.Context, pair common.Address) (*big.Int, error) {
	if err := c.enter(ctx, OpKLast); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return orZero(c.pairs[pair].KLast), nil
}

func (c *Chain) GetFeeRecipient(ctx context.Context, _ common.Address) (common.Address, error) {
	if err := c.enter(ctx, OpFeeTo); err != nil {
		return common.Address{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feeTo, nil
}

func (c *Chain) GetTokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	if err := c.enter(ctx, OpDecimals); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.decimals[token]; ok {
		return d, nil
	}
	return 18, nil
}

func (c *Chain) GetTokenSymbol(ctx context.Context, token common.Address) (string, error) {
	if err := c.enter(ctx, OpSymbol); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	symbol, ok := c.symbols[token]
	if !ok {
		return "", ErrUnknownToken
	}
	return symbol, nil
}

func (c *Chain) GetBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	if err := c.enter(ctx, OpBalanceOf); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return orZero(c.balances[[2]common.Address{token, owner}]), nil
}

func (c *Chain) enter(ctx context.Context, op string) error {
	c.mu.Lock()
	c.calls[op]++
	hook := c.hook
	var injected error
	if f, ok := c.failures[op]; ok && f.remaining > 0 {
		f.remaining--
		injected = f.err
	}
	c.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, op); err != nil {
			return err
		}
	}
	if injected != nil {
		return injected
	}
	return ctx.Err()
}

func tokenKey(a, b common.Address) [2]common.Address {
	for i := range a {
		if a[i] != b[i] {
			if a[i] > b[i] {
				a, b = b, a
			}
			break
		}
	}
	return [2]common.Address{a, b}
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
