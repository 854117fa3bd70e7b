package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quoter",
		Short:        "Uniswap V2 liquidity quote engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Quote adding liquidity to a pair",
		RunE:  runAdd,
	}
	addCommonFlags(addCmd.Flags())
	addCmd.Flags().String("token-a", "", "token A address")
	addCmd.Flags().String("token-b", "", "token B address")
	addCmd.Flags().String("amount-a", "", "desired amount of token A (display units)")
	addCmd.Flags().String("amount-b", "", "desired amount of token B (display units)")
	root.AddCommand(addCmd)

	removeCmd := &cobra.Command{
		Use:   "remove",
		Short: "Quote removing liquidity from a pair",
		RunE:  runRemove,
	}
	addCommonFlags(removeCmd.Flags())
	removeCmd.Flags().String("token-a", "", "token A address")
	removeCmd.Flags().String("token-b", "", "token B address")
	removeCmd.Flags().String("lp-amount", "", "LP tokens to burn (18 decimals)")
	root.AddCommand(removeCmd)

	positionCmd := &cobra.Command{
		Use:   "position",
		Short: "Show an account's redeemable share of a pair",
		RunE:  runPosition,
	}
	addCommonFlags(positionCmd.Flags())
	positionCmd.Flags().String("token-a", "", "token A address")
	positionCmd.Flags().String("token-b", "", "token B address")
	positionCmd.Flags().String("account", "", "LP holder address")
	root.AddCommand(positionCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve quotes over HTTP",
		RunE:  runServe,
	}
	addCommonFlags(serveCmd.Flags())
	serveCmd.Flags().String("addr", ":8080", "HTTP listen address")
	serveCmd.Flags().Duration("request-timeout", 15*time.Second, "per-request quote timeout")
	root.AddCommand(serveCmd)

	return root
}

func addCommonFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "EVM JSON-RPC URL")
	flags.String("factory", "", "Uniswap V2 factory address (defaults to mainnet)")
	flags.String("read-mode", "call", "pair state read mode (call, storage)")
	flags.StringSlice("fee-off-address", nil, "feeTo addresses treated as protocol fee disabled (comma-separated)")
	flags.String("minimum-liquidity", "1000000000000000000000", "LP locked by a first deposit, in minor units")
	flags.Uint32("slippage-bps", 0, "slippage tolerance for minimum amounts, in basis points")
	flags.Int("max-retries", 3, "maximum retry attempts per chain read")
	flags.Duration("retry-backoff", 200*time.Millisecond, "initial retry backoff")
	flags.String("record-jsonl", "", "append issued quotes to this JSONL file")
	flags.String("pg-dsn", "", "Postgres DSN for recording issued quotes")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
