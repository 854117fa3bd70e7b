package quote

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"liquidityQuote/internal/amm"
	"liquidityQuote/internal/metrics"
)

// ChainReader is the read-only view of a Uniswap V2 deployment the engine
// needs. Reserves are returned in the pair's own (token0, token1) order.
type ChainReader interface {
	GetPairAddress(ctx context.Context, factory, tokenA, tokenB common.Address) (common.Address, error)
	GetToken0(ctx context.Context, pair common.Address) (common.Address, error)
	GetReserves(ctx context.Context, pair common.Address) (*big.Int, *big.Int, error)
	GetTotalSupply(ctx context.Context, pair common.Address) (*big.Int, error)
	GetKLast(ctx context.Context, pair common.Address) (*big.Int, error)
	GetFeeRecipient(ctx context.Context, factory common.Address) (common.Address, error)
	GetTokenDecimals(ctx context.Context, token common.Address) (uint8, error)
	GetBalance(ctx context.Context, token, owner common.Address) (*big.Int, error)
}

// BlockPinner is implemented by readers that can return a copy of themselves
// bound to a single block, so one snapshot never mixes two blocks.
type BlockPinner interface {
	Pinned(ctx context.Context) (ChainReader, error)
}

// SymbolReader is implemented by readers that can resolve token symbols.
type SymbolReader interface {
	GetTokenSymbol(ctx context.Context, token common.Address) (string, error)
}

type ReaderConfig struct {
	Factory         common.Address
	FeeOffAddresses []common.Address
	MaxRetries      int
	RetryBackoff    time.Duration
}

// Snapshot is the pair state for one quote, oriented to the caller's
// (tokenA, tokenB) order.
type Snapshot struct {
	Pair        common.Address
	TokenA      common.Address
	TokenB      common.Address
	DecimalsA   uint8
	DecimalsB   uint8
	ReserveA    *big.Int
	ReserveB    *big.Int
	TotalSupply *big.Int
	KLast       *big.Int
	FeeTo       common.Address
	FeeOn       bool

	chain ChainReader
}

// Exists reports whether the factory has deployed the pair.
func (s Snapshot) Exists() bool {
	return s.Pair != (common.Address{})
}

// Pool returns the math view of the snapshot.
func (s Snapshot) Pool() amm.Pool {
	return amm.Pool{
		ReserveA:    s.ReserveA,
		ReserveB:    s.ReserveB,
		TotalSupply: s.TotalSupply,
		KLast:       s.KLast,
		FeeOn:       s.FeeOn,
	}
}

// ReserveReader fetches pair snapshots with retries, reading independent
// values concurrently.
type ReserveReader struct {
	cfg      ReaderConfig
	chain    ChainReader
	decimals *TokenDecimalsCache
	feeOff   map[common.Address]struct{}
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewReserveReader(cfg ReaderConfig, chain ChainReader, logger *zap.Logger, m *metrics.Metrics) *ReserveReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	feeOff := map[common.Address]struct{}{(common.Address{}): {}}
	for _, addr := range cfg.FeeOffAddresses {
		feeOff[addr] = struct{}{}
	}
	return &ReserveReader{
		cfg:      cfg,
		chain:    chain,
		decimals: NewTokenDecimalsCache(),
		feeOff:   feeOff,
		logger:   logger,
		metrics:  m,
	}
}

// ValidatePair rejects zero and identical token addresses.
func ValidatePair(tokenA, tokenB common.Address) error {
	if tokenA == (common.Address{}) || tokenB == (common.Address{}) {
		return fmt.Errorf("%w: zero address", ErrInvalidAddress)
	}
	if tokenA == tokenB {
		return fmt.Errorf("%w: %s", ErrIdenticalAddresses, tokenA.Hex())
	}
	return nil
}

// Read returns the current state of the (tokenA, tokenB) pair. A pair the
// factory has not deployed is not an error: the snapshot has a zero Pair and
// zero reserves.
func (r *ReserveReader) Read(ctx context.Context, tokenA, tokenB common.Address) (Snapshot, error) {
	if err := ValidatePair(tokenA, tokenB); err != nil {
		return Snapshot{}, err
	}

	chain, err := r.pin(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	pair, err := fetch(ctx, r, "getPair", func(ctx context.Context) (common.Address, error) {
		return chain.GetPairAddress(ctx, r.cfg.Factory, tokenA, tokenB)
	})
	if err != nil {
		return Snapshot{}, err
	}

	var (
		decimalsA, decimalsB uint8
		token0, feeTo        common.Address
		reserve0, reserve1   *big.Int
		totalSupply, kLast   *big.Int
	)
	deployed := pair != (common.Address{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		decimalsA, err = r.tokenDecimals(gctx, chain, tokenA)
		return err
	})
	g.Go(func() (err error) {
		decimalsB, err = r.tokenDecimals(gctx, chain, tokenB)
		return err
	})
	if deployed {
		g.Go(func() (err error) {
			token0, err = fetch(gctx, r, "token0", func(ctx context.Context) (common.Address, error) {
				return chain.GetToken0(ctx, pair)
			})
			return err
		})
		g.Go(func() error {
			type reserves struct{ r0, r1 *big.Int }
			out, err := fetch(gctx, r, "getReserves", func(ctx context.Context) (reserves, error) {
				r0, r1, err := chain.GetReserves(ctx, pair)
				return reserves{r0, r1}, err
			})
			reserve0, reserve1 = out.r0, out.r1
			return err
		})
		g.Go(func() (err error) {
			totalSupply, err = fetch(gctx, r, "totalSupply", func(ctx context.Context) (*big.Int, error) {
				return chain.GetTotalSupply(ctx, pair)
			})
			return err
		})
		g.Go(func() (err error) {
			kLast, err = fetch(gctx, r, "kLast", func(ctx context.Context) (*big.Int, error) {
				return chain.GetKLast(ctx, pair)
			})
			return err
		})
		g.Go(func() (err error) {
			feeTo, err = fetch(gctx, r, "feeTo", func(ctx context.Context) (common.Address, error) {
				return chain.GetFeeRecipient(ctx, r.cfg.Factory)
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Pair:        pair,
		TokenA:      tokenA,
		TokenB:      tokenB,
		DecimalsA:   decimalsA,
		DecimalsB:   decimalsB,
		ReserveA:    new(big.Int),
		ReserveB:    new(big.Int),
		TotalSupply: new(big.Int),
		KLast:       new(big.Int),
		chain:       chain,
	}

	if !deployed {
		r.logger.Debug("pair not deployed",
			zap.String("token_a", tokenA.Hex()),
			zap.String("token_b", tokenB.Hex()),
		)
		return snap, nil
	}

	switch token0 {
	case tokenA:
		snap.ReserveA, snap.ReserveB = reserve0, reserve1
	case tokenB:
		snap.ReserveA, snap.ReserveB = reserve1, reserve0
	default:
		return Snapshot{}, &ChainReadError{
			Op:  "token0",
			Err: fmt.Errorf("pair %s token0 %s matches neither requested token", pair.Hex(), token0.Hex()),
		}
	}
	if totalSupply != nil {
		snap.TotalSupply = totalSupply
	}
	if kLast != nil {
		snap.KLast = kLast
	}
	snap.FeeTo = feeTo
	_, off := r.feeOff[feeTo]
	snap.FeeOn = !off

	r.logger.Debug("pair snapshot read",
		zap.String("pair", pair.Hex()),
		zap.String("reserve_a", snap.ReserveA.String()),
		zap.String("reserve_b", snap.ReserveB.String()),
		zap.String("total_supply", snap.TotalSupply.String()),
		zap.Bool("fee_on", snap.FeeOn),
	)
	return snap, nil
}

// Balance returns owner's balance of token, read at the same block as snap
// when the reader supports pinning.
func (r *ReserveReader) Balance(ctx context.Context, snap Snapshot, token, owner common.Address) (*big.Int, error) {
	chain := snap.chain
	if chain == nil {
		chain = r.chain
	}
	return fetch(ctx, r, "balanceOf", func(ctx context.Context) (*big.Int, error) {
		return chain.GetBalance(ctx, token, owner)
	})
}

// Symbol resolves a token symbol. Readers without symbol support and failed
// lookups both yield an empty string.
func (r *ReserveReader) Symbol(ctx context.Context, token common.Address) string {
	symbols, ok := r.chain.(SymbolReader)
	if !ok {
		return ""
	}
	symbol, err := symbols.GetTokenSymbol(ctx, token)
	if err != nil {
		r.logger.Debug("token symbol unavailable", zap.String("token", token.Hex()), zap.Error(err))
		return ""
	}
	return symbol
}

func (r *ReserveReader) pin(ctx context.Context) (ChainReader, error) {
	pinner, ok := r.chain.(BlockPinner)
	if !ok {
		return r.chain, nil
	}
	return fetch(ctx, r, "blockNumber", pinner.Pinned)
}

func (r *ReserveReader) tokenDecimals(ctx context.Context, chain ChainReader, token common.Address) (uint8, error) {
	if decimals, ok := r.decimals.Get(token); ok {
		return decimals, nil
	}
	decimals, err := fetch(ctx, r, "decimals", func(ctx context.Context) (uint8, error) {
		return chain.GetTokenDecimals(ctx, token)
	})
	if err != nil {
		return 0, err
	}
	r.decimals.Set(token, decimals)
	return decimals, nil
}

// fetch runs one chain read with retries. Failures become ChainReadError
// unless ctx itself ended, in which case the context error is returned as is.
func fetch[T any](ctx context.Context, r *ReserveReader, op string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	start := time.Now()
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			if ctx.Err() == nil {
				r.logger.Warn("chain read failed", zap.String("op", op), zap.Error(err))
			}
			return err
		}
		out = v
		return nil
	})
	r.metrics.ObserveChainRead(op, time.Since(start), err)
	if err != nil {
		var zero T
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		return zero, &ChainReadError{Op: op, Err: err}
	}
	return out, nil
}
