// Package dex reads Uniswap V2 factory, pair, and ERC20 state over JSON-RPC.
package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"liquidityQuote/internal/chain"
	"liquidityQuote/internal/quote"
)

var (
	_ quote.ChainReader  = (*CallReader)(nil)
	_ quote.BlockPinner  = (*CallReader)(nil)
	_ quote.SymbolReader = (*CallReader)(nil)
	_ quote.BlockPinner  = (*SlotReader)(nil)
)

// CallReader reads V2 state with eth_call. A reader with a nil block reads
// latest state; Pinned returns one bound to a block number.
type CallReader struct {
	client *chain.Client
	block  *big.Int
}

func NewCallReader(client *chain.Client) *CallReader {
	return &CallReader{client: client}
}

// Block returns the pinned block number, or nil for latest.
func (r *CallReader) Block() *big.Int {
	return r.block
}

// Pinned returns a reader bound to the current head block.
func (r *CallReader) Pinned(ctx context.Context) (quote.ChainReader, error) {
	block, err := r.head(ctx)
	if err != nil {
		return nil, err
	}
	return &CallReader{client: r.client, block: block}, nil
}

func (r *CallReader) head(ctx context.Context) (*big.Int, error) {
	n, err := r.client.LatestBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}
	return new(big.Int).SetUint64(n), nil
}

func (r *CallReader) GetPairAddress(ctx context.Context, factory, tokenA, tokenB common.Address) (common.Address, error) {
	parsed, err := V2FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := r.call(ctx, factory, parsed, "getPair", tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}

func (r *CallReader) GetFeeRecipient(ctx context.Context, factory common.Address) (common.Address, error) {
	parsed, err := V2FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := r.call(ctx, factory, parsed, "feeTo")
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}

func (r *CallReader) GetToken0(ctx context.Context, pair common.Address) (common.Address, error) {
	values, err := r.callPair(ctx, pair, "token0")
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}

func (r *CallReader) GetReserves(ctx context.Context, pair common.Address) (*big.Int, *big.Int, error) {
	values, err := r.callPair(ctx, pair, "getReserves")
	if err != nil {
		return nil, nil, err
	}
	if len(values) < 2 {
		return nil, nil, fmt.Errorf("getReserves: expected 3 values, got %d", len(values))
	}
	reserve0, err := asBigInt(values[0])
	if err != nil {
		return nil, nil, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return nil, nil, fmt.Errorf("reserve1: %w", err)
	}
	return reserve0, reserve1, nil
}

func (r *CallReader) GetTotalSupply(ctx context.Context, pair common.Address) (*big.Int, error) {
	values, err := r.callPair(ctx, pair, "totalSupply")
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

func (r *CallReader) GetKLast(ctx context.Context, pair common.Address) (*big.Int, error) {
	values, err := r.callPair(ctx, pair, "kLast")
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

func (r *CallReader) GetTokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	parsed, err := erc20ABIStringInstance()
	if err != nil {
		return 0, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	values, err := r.call(ctx, token, parsed, "decimals")
	if err != nil {
		return 0, err
	}
	return asUint8(values[0])
}

// GetBalance returns owner's balance of token. Pair addresses work too since
// every pair is an ERC20 LP token.
func (r *CallReader) GetBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	parsed, err := erc20ABIStringInstance()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	values, err := r.call(ctx, token, parsed, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// GetTokenSymbol tries the string symbol() first and falls back to bytes32.
func (r *CallReader) GetTokenSymbol(ctx context.Context, token common.Address) (string, error) {
	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return "", fmt.Errorf("parse erc20 string abi: %w", err)
	}
	if values, err := r.call(ctx, token, stringABI, "symbol"); err == nil {
		if symbol, ok := values[0].(string); ok {
			return symbol, nil
		}
	}

	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return "", fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}
	values, err := r.call(ctx, token, bytes32ABI, "symbol")
	if err != nil {
		return "", err
	}
	symbol, ok := bytes32ToString(values[0])
	if !ok {
		return "", fmt.Errorf("unsupported symbol type %T", values[0])
	}
	return symbol, nil
}

func (r *CallReader) callPair(ctx context.Context, pair common.Address, method string) ([]interface{}, error) {
	parsed, err := V2PairABI()
	if err != nil {
		return nil, fmt.Errorf("parse pair abi: %w", err)
	}
	return r.call(ctx, pair, parsed, method)
}

func (r *CallReader) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := r.client.CallContract(ctx, msg, r.block)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("call %s: empty response from %s", method, to.Hex())
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: no values", method)
	}
	return values, nil
}
