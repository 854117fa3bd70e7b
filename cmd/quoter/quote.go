package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityQuote/internal/config"
)

func runAdd(cmd *cobra.Command, _ []string) error {
	return withQuoter(cmd, func(ctx context.Context, q *quoter) error {
		tokenA, tokenB, err := tokenFlags(cmd)
		if err != nil {
			return err
		}
		amountA, _ := cmd.Flags().GetString("amount-a")
		amountB, _ := cmd.Flags().GetString("amount-b")

		add, err := q.engine.QuoteAddLiquidity(ctx, tokenA, tokenB, amountA, amountB)
		if err != nil {
			return err
		}
		q.recorder.Record(ctx, add.Record())
		return writeJSON(cmd.OutOrStdout(), add.Model())
	})
}

func runRemove(cmd *cobra.Command, _ []string) error {
	return withQuoter(cmd, func(ctx context.Context, q *quoter) error {
		tokenA, tokenB, err := tokenFlags(cmd)
		if err != nil {
			return err
		}
		lpAmount, _ := cmd.Flags().GetString("lp-amount")

		remove, err := q.engine.QuoteRemoveLiquidity(ctx, tokenA, tokenB, lpAmount)
		if err != nil {
			return err
		}
		q.recorder.Record(ctx, remove.Record())
		return writeJSON(cmd.OutOrStdout(), remove.Model())
	})
}

func runPosition(cmd *cobra.Command, _ []string) error {
	return withQuoter(cmd, func(ctx context.Context, q *quoter) error {
		tokenA, tokenB, err := tokenFlags(cmd)
		if err != nil {
			return err
		}
		accountFlag, _ := cmd.Flags().GetString("account")
		account, err := config.ParseAddress(accountFlag)
		if err != nil {
			return fmt.Errorf("account: %w", err)
		}

		p, err := q.engine.Position(ctx, tokenA, tokenB, account)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), p.Model())
	})
}

// withQuoter loads config and runs fn with a connected quoter until the
// process is interrupted.
func withQuoter(cmd *cobra.Command, fn func(ctx context.Context, q *quoter) error) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	q, err := newQuoter(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer q.Close()

	if err := fn(ctx, q); err != nil {
		logger.Error("quote failed", zap.Error(err))
		return err
	}
	return nil
}

func tokenFlags(cmd *cobra.Command) (common.Address, common.Address, error) {
	a, _ := cmd.Flags().GetString("token-a")
	b, _ := cmd.Flags().GetString("token-b")
	tokenA, err := config.ParseAddress(a)
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("token-a: %w", err)
	}
	tokenB, err := config.ParseAddress(b)
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("token-b: %w", err)
	}
	return tokenA, tokenB, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
