// Package quote turns pair snapshots read from chain into add-liquidity,
// remove-liquidity, and position previews. Nothing here signs or submits a
// transaction.
package quote

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"liquidityQuote/internal/amm"
	"liquidityQuote/internal/metrics"
	"liquidityQuote/internal/model"
	"liquidityQuote/internal/units"
)

// LPDecimals is the fixed decimals of every V2 pair token.
const LPDecimals uint8 = 18

type Config struct {
	// MinimumLiquidity is locked by the first deposit. Nil means 1000e18.
	MinimumLiquidity *big.Int
	// SlippageBps, when non-zero, adds minimum-amount bounds to quotes.
	SlippageBps uint32
}

type Engine struct {
	cfg     Config
	reader  *ReserveReader
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewEngine(cfg Config, reader *ReserveReader, logger *zap.Logger, m *metrics.Metrics) *Engine {
	if cfg.MinimumLiquidity == nil {
		cfg.MinimumLiquidity = amm.DefaultMinimumLiquidity()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, reader: reader, logger: logger, metrics: m}
}

// AddQuote previews an add-liquidity call. AmountA and AmountB are the
// amounts the router would pull, which may be lower than desired on one side.
type AddQuote struct {
	Pair         common.Address
	TokenA       common.Address
	TokenB       common.Address
	DecimalsA    uint8
	DecimalsB    uint8
	AmountA      *big.Int
	AmountB      *big.Int
	AmountAMin   *big.Int
	AmountBMin   *big.Int
	LPTokensOut  *big.Int
	FirstDeposit bool
	FeeOn        bool
	FeeLiquidity *big.Int
}

// RemoveQuote previews a remove-liquidity call.
type RemoveQuote struct {
	Pair         common.Address
	TokenA       common.Address
	TokenB       common.Address
	DecimalsA    uint8
	DecimalsB    uint8
	LPTokensIn   *big.Int
	AmountAOut   *big.Int
	AmountBOut   *big.Int
	AmountAMin   *big.Int
	AmountBMin   *big.Int
	FeeOn        bool
	FeeLiquidity *big.Int
}

// Position is an account's redeemable share of a pair.
type Position struct {
	Pair        common.Address
	Account     common.Address
	TokenA      model.TokenMeta
	TokenB      model.TokenMeta
	DecimalsA   uint8
	DecimalsB   uint8
	ReserveA    *big.Int
	ReserveB    *big.Int
	LPBalance   *big.Int
	TotalSupply *big.Int
	AmountA     *big.Int
	AmountB     *big.Int
}

// QuoteAddLiquidity previews depositing up to desiredA of tokenA and desiredB
// of tokenB. Amounts are decimal strings in each token's display units.
// Unlike QuoteRemoveLiquidity and Position, a pair the factory has not
// deployed is not ErrPoolNotFound: it is quoted as its first deposit.
func (e *Engine) QuoteAddLiquidity(ctx context.Context, tokenA, tokenB common.Address, desiredA, desiredB string) (q AddQuote, err error) {
	defer func() { e.metrics.ObserveQuote(model.QuoteKindAdd, ErrorKind(err)) }()

	if err = units.ValidatePositive(desiredA); err != nil {
		return AddQuote{}, fmt.Errorf("amount a: %w", err)
	}
	if err = units.ValidatePositive(desiredB); err != nil {
		return AddQuote{}, fmt.Errorf("amount b: %w", err)
	}

	snap, err := e.reader.Read(ctx, tokenA, tokenB)
	if err != nil {
		return AddQuote{}, err
	}

	amountA, err := units.ParsePositive(desiredA, snap.DecimalsA)
	if err != nil {
		return AddQuote{}, fmt.Errorf("amount a: %w", err)
	}
	amountB, err := units.ParsePositive(desiredB, snap.DecimalsB)
	if err != nil {
		return AddQuote{}, fmt.Errorf("amount b: %w", err)
	}

	pool := snap.Pool()
	q = AddQuote{
		Pair:      snap.Pair,
		TokenA:    tokenA,
		TokenB:    tokenB,
		DecimalsA: snap.DecimalsA,
		DecimalsB: snap.DecimalsB,
		FeeOn:     snap.FeeOn,
	}
	if pool.Empty() {
		q.FirstDeposit = true
		q.AmountA, q.AmountB = amountA, amountB
	} else {
		q.AmountA, q.AmountB, err = amm.OptimalAmounts(amountA, amountB, pool.ReserveA, pool.ReserveB)
		if err != nil {
			return AddQuote{}, err
		}
	}

	lp, fee, err := amm.MintedLiquidity(q.AmountA, q.AmountB, pool, e.cfg.MinimumLiquidity)
	if err != nil {
		return AddQuote{}, err
	}
	q.LPTokensOut = lp
	q.FeeLiquidity = fee.LiquidityMinted
	if e.cfg.SlippageBps > 0 {
		q.AmountAMin = amm.ApplySlippage(q.AmountA, e.cfg.SlippageBps)
		q.AmountBMin = amm.ApplySlippage(q.AmountB, e.cfg.SlippageBps)
	}

	e.logger.Debug("add liquidity quoted",
		zap.String("pair", q.Pair.Hex()),
		zap.String("amount_a", q.AmountA.String()),
		zap.String("amount_b", q.AmountB.String()),
		zap.String("lp_out", lp.String()),
		zap.Bool("first_deposit", q.FirstDeposit),
	)
	return q, nil
}

// QuoteRemoveLiquidity previews burning lpAmount LP tokens, given in 18-decimal
// display units.
func (e *Engine) QuoteRemoveLiquidity(ctx context.Context, tokenA, tokenB common.Address, lpAmount string) (q RemoveQuote, err error) {
	defer func() { e.metrics.ObserveQuote(model.QuoteKindRemove, ErrorKind(err)) }()

	lp, err := units.ParsePositive(lpAmount, LPDecimals)
	if err != nil {
		return RemoveQuote{}, fmt.Errorf("lp amount: %w", err)
	}

	snap, err := e.readExisting(ctx, tokenA, tokenB)
	if err != nil {
		return RemoveQuote{}, err
	}

	outA, outB, fee, err := amm.BurnedAmounts(lp, snap.Pool())
	if err != nil {
		return RemoveQuote{}, err
	}

	q = RemoveQuote{
		Pair:         snap.Pair,
		TokenA:       tokenA,
		TokenB:       tokenB,
		DecimalsA:    snap.DecimalsA,
		DecimalsB:    snap.DecimalsB,
		LPTokensIn:   lp,
		AmountAOut:   outA,
		AmountBOut:   outB,
		FeeOn:        snap.FeeOn,
		FeeLiquidity: fee.LiquidityMinted,
	}
	if e.cfg.SlippageBps > 0 {
		q.AmountAMin = amm.ApplySlippage(outA, e.cfg.SlippageBps)
		q.AmountBMin = amm.ApplySlippage(outB, e.cfg.SlippageBps)
	}

	e.logger.Debug("remove liquidity quoted",
		zap.String("pair", q.Pair.Hex()),
		zap.String("lp_in", lp.String()),
		zap.String("amount_a_out", outA.String()),
		zap.String("amount_b_out", outB.String()),
	)
	return q, nil
}

// Position reports what account's LP balance in the pair would redeem for
// right now, with the pending protocol fee applied.
func (e *Engine) Position(ctx context.Context, tokenA, tokenB, account common.Address) (Position, error) {
	if account == (common.Address{}) {
		return Position{}, fmt.Errorf("%w: zero account", ErrInvalidAddress)
	}

	snap, err := e.readExisting(ctx, tokenA, tokenB)
	if err != nil {
		return Position{}, err
	}

	var (
		balance          *big.Int
		symbolA, symbolB string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		balance, err = e.reader.Balance(gctx, snap, snap.Pair, account)
		return err
	})
	g.Go(func() error {
		symbolA = e.reader.Symbol(gctx, tokenA)
		return nil
	})
	g.Go(func() error {
		symbolB = e.reader.Symbol(gctx, tokenB)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Position{}, err
	}

	pool := snap.Pool()
	supply := amm.EffectiveSupply(pool.TotalSupply, pool.Fee())
	amountA, amountB := amm.ProRata(balance, pool.ReserveA, pool.ReserveB, supply)

	return Position{
		Pair:        snap.Pair,
		Account:     account,
		TokenA:      model.TokenMeta{Address: tokenA.Hex(), Decimals: snap.DecimalsA, Symbol: symbolA},
		TokenB:      model.TokenMeta{Address: tokenB.Hex(), Decimals: snap.DecimalsB, Symbol: symbolB},
		DecimalsA:   snap.DecimalsA,
		DecimalsB:   snap.DecimalsB,
		ReserveA:    pool.ReserveA,
		ReserveB:    pool.ReserveB,
		LPBalance:   balance,
		TotalSupply: supply,
		AmountA:     amountA,
		AmountB:     amountB,
	}, nil
}

func (e *Engine) readExisting(ctx context.Context, tokenA, tokenB common.Address) (Snapshot, error) {
	snap, err := e.reader.Read(ctx, tokenA, tokenB)
	if err != nil {
		return Snapshot{}, err
	}
	if !snap.Exists() {
		return Snapshot{}, fmt.Errorf("%w: %s/%s", ErrPoolNotFound, tokenA.Hex(), tokenB.Hex())
	}
	return snap, nil
}
