package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"liquidityQuote/internal/chain"
	"liquidityQuote/internal/config"
	"liquidityQuote/internal/dex"
	"liquidityQuote/internal/metrics"
	"liquidityQuote/internal/quote"
	"liquidityQuote/internal/storage"
	"liquidityQuote/internal/storage/postgres"
)

// quoter is everything a command needs to issue quotes.
type quoter struct {
	engine   *quote.Engine
	recorder *storage.Recorder
	metrics  *metrics.Metrics
	closers  []func()
}

func (q *quoter) Close() {
	for i := len(q.closers) - 1; i >= 0; i-- {
		q.closers[i]()
	}
}

func newQuoter(ctx context.Context, cfg config.Config, logger *zap.Logger, reg prometheus.Registerer) (*quoter, error) {
	factory, err := config.ParseAddress(cfg.Factory)
	if err != nil {
		return nil, fmt.Errorf("factory: %w", err)
	}
	feeOff, err := config.ParseAddresses(cfg.FeeOffAddresses)
	if err != nil {
		return nil, fmt.Errorf("fee-off-address: %w", err)
	}

	q := &quoter{}
	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	q.closers = append(q.closers, chainClient.Close)

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		q.Close()
		return nil, fmt.Errorf("chain id: %w", err)
	}

	var reader quote.ChainReader
	switch cfg.ReadMode {
	case config.ReadModeStorage:
		reader = dex.NewSlotReader(chainClient)
	default:
		reader = dex.NewCallReader(chainClient)
	}

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
		q.metrics = m
	}

	reserveReader := quote.NewReserveReader(quote.ReaderConfig{
		Factory:         factory,
		FeeOffAddresses: feeOff,
		MaxRetries:      cfg.MaxRetries,
		RetryBackoff:    cfg.RetryBackoff,
	}, reader, logger, m)
	q.engine = quote.NewEngine(quote.Config{
		MinimumLiquidity: cfg.MinimumLiquidity,
		SlippageBps:      cfg.SlippageBps,
	}, reserveReader, logger, m)

	var sinks []storage.Storage
	if cfg.RecordJSONL != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.RecordJSONL))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			q.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		q.closers = append(q.closers, store.Close)
		if err := store.EnsureSchema(ctx); err != nil {
			q.Close()
			return nil, err
		}
		sinks = append(sinks, store)
	}
	q.recorder = storage.NewRecorder(chainID.Uint64(), logger, sinks...)

	logger.Info("quoter ready",
		zap.Uint64("chain_id", chainID.Uint64()),
		zap.String("factory", factory.Hex()),
		zap.String("read_mode", cfg.ReadMode),
		zap.Int("fee_off_addresses", len(feeOff)),
		zap.Uint32("slippage_bps", cfg.SlippageBps),
		zap.Bool("recording", q.recorder.Enabled()),
	)
	return q, nil
}
