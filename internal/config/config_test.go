package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("QUOTER_RPC", "http://localhost:8545")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", cfg.RPCURL)
	assert.Equal(t, DefaultFactory, cfg.Factory)
	assert.Equal(t, ReadModeCall, cfg.ReadMode)
	assert.Equal(t, "1000000000000000000000", cfg.MinimumLiquidity.String())
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.FeeOffAddresses)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("QUOTER_RPC", "http://env:8545")
	t.Setenv("QUOTER_SLIPPAGE_BPS", "30")
	t.Setenv("QUOTER_FEE_OFF_ADDRESS", "0x3D041510f58665a17D722EE2BC73Ae409BB8715b, ")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.String("read-mode", "", "")
	require.NoError(t, flags.Parse([]string{"--rpc", "http://flag:8545", "--read-mode", "STORAGE"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "http://flag:8545", cfg.RPCURL)
	assert.Equal(t, ReadModeStorage, cfg.ReadMode)
	assert.Equal(t, uint32(30), cfg.SlippageBps)
	assert.Equal(t, []string{"0x3D041510f58665a17D722EE2BC73Ae409BB8715b"}, cfg.FeeOffAddresses)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quoter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rpc: http://file:8545
minimum-liquidity: "1000"
fee-off-address:
  - "0x00000000000000000000000000000000000fee00"
record-jsonl: ./data/quotes.jsonl
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://file:8545", cfg.RPCURL)
	assert.Equal(t, int64(1000), cfg.MinimumLiquidity.Int64())
	assert.Len(t, cfg.FeeOffAddresses, 1)
	assert.Equal(t, "./data/quotes.jsonl", cfg.RecordJSONL)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing rpc", env: map[string]string{}},
		{name: "bad factory", env: map[string]string{"QUOTER_FACTORY": "0x1234"}},
		{name: "bad read mode", env: map[string]string{"QUOTER_READ_MODE": "trace"}},
		{name: "bad minimum", env: map[string]string{"QUOTER_MINIMUM_LIQUIDITY": "1e21"}},
		{name: "slippage too high", env: map[string]string{"QUOTER_SLIPPAGE_BPS": "10000"}},
		{name: "bad fee-off address", env: map[string]string{"QUOTER_FEE_OFF_ADDRESS": "treasury"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("QUOTER_RPC", "")
			if tt.name != "missing rpc" {
				t.Setenv("QUOTER_RPC", "http://localhost:8545")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadServe(t *testing.T) {
	t.Setenv("QUOTER_RPC", "http://localhost:8545")
	t.Setenv("QUOTER_ADDR", "127.0.0.1:9000")

	cfg, err := LoadServe("", nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "http://localhost:8545", cfg.RPCURL)
}

func TestParseAddresses(t *testing.T) {
	addrs, err := ParseAddresses([]string{" 0x00000000000000000000000000000000000000aa ", ""})
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.Equal(t, common.HexToAddress("0xaa"), addrs[0])

	_, err = ParseAddresses([]string{"nope"})
	assert.Error(t, err)

	_, err = ParseAddress("")
	assert.Error(t, err)
}
