package config

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Read modes for pair state.
const (
	ReadModeCall    = "call"
	ReadModeStorage = "storage"
)

// DefaultFactory is the Uniswap V2 factory on Ethereum mainnet.
const DefaultFactory = "0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f"

// Config holds configuration shared by every quoting command.
type Config struct {
	RPCURL           string
	Factory          string
	ReadMode         string
	FeeOffAddresses  []string
	MinimumLiquidity *big.Int
	SlippageBps      uint32
	MaxRetries       int
	RetryBackoff     time.Duration
	RecordJSONL      string
	PGDSN            string
	LogLevel         string
}

// ServeConfig adds the HTTP listener settings used by the serve command.
type ServeConfig struct {
	Config
	Addr           string
	RequestTimeout time.Duration
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}
	return fromViper(v)
}

// LoadServe is Load plus the serve-only keys.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ServeConfig{}, err
	}
	cfg, err := fromViper(v)
	if err != nil {
		return ServeConfig{}, err
	}
	serve := ServeConfig{
		Config:         cfg,
		Addr:           v.GetString("addr"),
		RequestTimeout: v.GetDuration("request-timeout"),
	}
	if serve.Addr == "" {
		return ServeConfig{}, fmt.Errorf("addr is required")
	}
	return serve, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("QUOTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("factory", DefaultFactory)
	v.SetDefault("read-mode", ReadModeCall)
	v.SetDefault("minimum-liquidity", "1000000000000000000000")
	v.SetDefault("slippage-bps", 0)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 200*time.Millisecond)
	v.SetDefault("addr", ":8080")
	v.SetDefault("request-timeout", 15*time.Second)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		RPCURL:          v.GetString("rpc"),
		Factory:         v.GetString("factory"),
		ReadMode:        strings.ToLower(strings.TrimSpace(v.GetString("read-mode"))),
		FeeOffAddresses: getStringSlice(v, "fee-off-address"),
		SlippageBps:     v.GetUint32("slippage-bps"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		RecordJSONL:     v.GetString("record-jsonl"),
		PGDSN:           v.GetString("pg-dsn"),
		LogLevel:        v.GetString("log-level"),
	}

	minimum, ok := new(big.Int).SetString(strings.TrimSpace(v.GetString("minimum-liquidity")), 10)
	if !ok || minimum.Sign() < 0 {
		return Config{}, fmt.Errorf("minimum-liquidity must be a non-negative integer, got %q", v.GetString("minimum-liquidity"))
	}
	cfg.MinimumLiquidity = minimum

	if cfg.RPCURL == "" {
		return Config{}, fmt.Errorf("rpc is required")
	}
	if _, err := ParseAddress(cfg.Factory); err != nil {
		return Config{}, fmt.Errorf("factory: %w", err)
	}
	if _, err := ParseAddresses(cfg.FeeOffAddresses); err != nil {
		return Config{}, fmt.Errorf("fee-off-address: %w", err)
	}
	switch cfg.ReadMode {
	case ReadModeCall, ReadModeStorage:
	default:
		return Config{}, fmt.Errorf("read-mode must be %q or %q, got %q", ReadModeCall, ReadModeStorage, cfg.ReadMode)
	}
	if cfg.SlippageBps >= 10_000 {
		return Config{}, fmt.Errorf("slippage-bps must be below 10000, got %d", cfg.SlippageBps)
	}
	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
