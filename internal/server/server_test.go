package server

import (
	"context"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"

	"liquidityQuote/internal/metrics"
	"liquidityQuote/internal/quote"
	"liquidityQuote/internal/quote/quotetest"
	"liquidityQuote/internal/storage"
)

var (
	factory = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	tokenA  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenB  = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	pairAB  = common.HexToAddress("0x00000000000000000000000000000000000000ab")
	holder  = common.HexToAddress("0x0000000000000000000000000000000000000c0d")
)

func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

type fixture struct {
	chain    *quotetest.Chain
	server   *Server
	registry *prometheus.Registry
	records  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	chain := quotetest.New()
	chain.SetDecimals(tokenA, 0)
	chain.SetDecimals(tokenB, 0)
	chain.SetSymbol(tokenA, "AAA")
	chain.AddPair(pairAB, quotetest.Pair{
		Token0:      tokenA,
		Token1:      tokenB,
		Reserve0:    big.NewInt(1000),
		Reserve1:    big.NewInt(2000),
		TotalSupply: e18(1000),
	})
	chain.SetBalance(pairAB, holder, e18(250))

	logger := zaptest.NewLogger(t)
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	reader := quote.NewReserveReader(quote.ReaderConfig{
		Factory:      factory,
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	}, chain, logger, m)
	engine := quote.NewEngine(quote.Config{SlippageBps: 50}, reader, logger, m)

	records := filepath.Join(t.TempDir(), "quotes.jsonl")
	srv := New(engine, Options{
		Logger:         logger,
		Metrics:        m,
		Gatherer:       registry,
		Recorder:       storage.NewRecorder(1, logger, storage.NewJsonlStorage(records)),
		RequestTimeout: 5 * time.Second,
	})
	return &fixture{chain: chain, server: srv, registry: registry, records: records}
}

func (f *fixture) request(path string, params url.Values, header http.Header) (int, string, error) {
	req := httptest.NewRequest(http.MethodGet, path+"?"+params.Encode(), nil)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := f.server.App().Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), err
}

func (f *fixture) get(t *testing.T, path string, params url.Values, header http.Header) (int, string) {
	t.Helper()
	status, body, err := f.request(path, params, header)
	require.NoError(t, err)
	return status, body
}

func pairParams(extra ...string) url.Values {
	v := url.Values{}
	v.Set("token_a", tokenA.Hex())
	v.Set("token_b", tokenB.Hex())
	for i := 0; i+1 < len(extra); i += 2 {
		v.Set(extra[i], extra[i+1])
	}
	return v
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	status, body := f.get(t, "/healthz", url.Values{}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", gjson.Get(body, "status").String())
}

func TestQuoteAdd(t *testing.T) {
	f := newFixture(t)

	status, body := f.get(t, "/quote/add", pairParams("amount_a", "500", "amount_b", "2000"), nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "500", gjson.Get(body, "amount_a").String())
	assert.Equal(t, "1000", gjson.Get(body, "amount_b").String())
	assert.Equal(t, "500", gjson.Get(body, "lp_tokens_out").String())
	assert.Equal(t, "497", gjson.Get(body, "amount_a_min").String())
	assert.False(t, gjson.Get(body, "first_deposit").Bool())
	assert.Equal(t, pairAB.Hex(), gjson.Get(body, "pair").String())

	data, err := os.ReadFile(f.records)
	require.NoError(t, err)
	assert.Equal(t, "add", gjson.GetBytes(data, "kind").String())
	assert.Equal(t, "500000000000000000000", gjson.GetBytes(data, "lp_tokens").String())
	assert.Equal(t, int64(1), gjson.GetBytes(data, "chain_id").Int())
}

func TestQuoteRemove(t *testing.T) {
	f := newFixture(t)

	status, body := f.get(t, "/quote/remove", pairParams("lp_amount", "100"), nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "100", gjson.Get(body, "lp_tokens_in").String())
	assert.Equal(t, "100", gjson.Get(body, "amount_a_out").String())
	assert.Equal(t, "200", gjson.Get(body, "amount_b_out").String())
}

func TestPosition(t *testing.T) {
	f := newFixture(t)

	status, body := f.get(t, "/position", pairParams("account", holder.Hex()), nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "250", gjson.Get(body, "lp_balance").String())
	assert.Equal(t, "0.25", gjson.Get(body, "pool_share").String())
	assert.Equal(t, "250", gjson.Get(body, "amount_a").String())
	assert.Equal(t, "500", gjson.Get(body, "amount_b").String())
	assert.Equal(t, "AAA", gjson.Get(body, "token_a.symbol").String())
}

func TestErrorStatuses(t *testing.T) {
	other := common.HexToAddress("0x00000000000000000000000000000000000000cc")

	tests := []struct {
		name   string
		path   string
		params url.Values
		setup  func(*quotetest.Chain)
		status int
		kind   string
	}{
		{
			name:   "invalid amount",
			path:   "/quote/add",
			params: pairParams("amount_a", "abc", "amount_b", "1"),
			status: http.StatusBadRequest,
			kind:   "invalid_amount",
		},
		{
			name:   "missing token",
			path:   "/quote/remove",
			params: url.Values{"token_a": {tokenA.Hex()}, "lp_amount": {"1"}},
			status: http.StatusBadRequest,
			kind:   "invalid_address",
		},
		{
			name:   "identical tokens",
			path:   "/quote/add",
			params: url.Values{"token_a": {tokenA.Hex()}, "token_b": {tokenA.Hex()}, "amount_a": {"1"}, "amount_b": {"1"}},
			status: http.StatusBadRequest,
			kind:   "identical_addresses",
		},
		{
			name:   "pool not found",
			path:   "/quote/remove",
			params: url.Values{"token_a": {tokenA.Hex()}, "token_b": {other.Hex()}, "lp_amount": {"1"}},
			status: http.StatusNotFound,
			kind:   "pool_not_found",
		},
		{
			name:   "insufficient liquidity",
			path:   "/quote/remove",
			params: pairParams("lp_amount", "5000"),
			status: http.StatusUnprocessableEntity,
			kind:   "insufficient_liquidity",
		},
		{
			name:   "chain read failure",
			path:   "/quote/add",
			params: pairParams("amount_a", "1", "amount_b", "2"),
			setup: func(c *quotetest.Chain) {
				c.FailNext(quotetest.OpGetReserves, 10, errors.New("upstream 503"))
			},
			status: http.StatusBadGateway,
			kind:   "chain_read_failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f.chain)
			}
			status, body := f.get(t, tt.path, tt.params, nil)
			assert.Equal(t, tt.status, status, body)
			assert.Equal(t, tt.kind, gjson.Get(body, "error").String())
			assert.NotEmpty(t, gjson.Get(body, "message").String())
		})
	}

	f := newFixture(t)
	status, body := f.get(t, "/nope", url.Values{}, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "request_error", gjson.Get(body, "error").String())
}

func TestSessionHeaderSupersedesOlderQuote(t *testing.T) {
	f := newFixture(t)
	var calls atomic.Int32
	blocked := make(chan struct{})
	f.chain.SetHook(func(ctx context.Context, op string) error {
		if op != quotetest.OpGetReserves || calls.Add(1) != 1 {
			return nil
		}
		close(blocked)
		<-ctx.Done()
		return ctx.Err()
	})
	header := http.Header{SessionHeader: {"tab-1"}}

	type result struct {
		status int
		body   string
		err    error
	}
	first := make(chan result, 1)
	go func() {
		status, body, err := f.request("/quote/add", pairParams("amount_a", "1", "amount_b", "2"), header)
		first <- result{status, body, err}
	}()

	<-blocked
	status, body := f.get(t, "/quote/add", pairParams("amount_a", "500", "amount_b", "1000"), header)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "500", gjson.Get(body, "lp_tokens_out").String())

	select {
	case r := <-first:
		require.NoError(t, r.err)
		assert.Equal(t, http.StatusConflict, r.status, r.body)
		assert.Equal(t, "superseded", gjson.Get(r.body, "error").String())
	case <-time.After(5 * time.Second):
		t.Fatal("first request never returned")
	}
	assert.Zero(t, f.server.sessions.Len())
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	_, _ = f.get(t, "/quote/add", pairParams("amount_a", "500", "amount_b", "1000"), nil)
	_, _ = f.get(t, "/quote/remove", url.Values{"token_a": {tokenA.Hex()}, "token_b": {holder.Hex()}, "lp_amount": {"1"}}, nil)

	status, body := f.get(t, "/metrics", url.Values{}, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `liquidity_quote_quotes_total{kind="add",outcome="ok"} 1`)
	assert.Contains(t, body, `liquidity_quote_quotes_total{kind="remove",outcome="pool_not_found"} 1`)
	assert.Contains(t, body, "liquidity_quote_chain_read_seconds")
}
