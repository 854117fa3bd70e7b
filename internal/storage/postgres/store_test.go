package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidityQuote/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("QUOTER_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("QUOTER_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func TestNewStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	assert.Error(t, err)
}

func TestPutQuoteBatchRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	pair := "0xtest" + time.Now().Format("150405.000000000")

	records := []model.QuoteRecord{
		{
			ChainID: 1, Kind: model.QuoteKindAdd, Pair: pair, TokenA: "0xa", TokenB: "0xb",
			AmountA: "1000000000000000000000", AmountB: "2000", LPTokens: "3000000000000000000000",
			FeeLiquidity: "0", FirstDeposit: true, QuotedAt: "2024-05-01T12:00:00Z",
		},
		{
			ChainID: 1, Kind: model.QuoteKindRemove, Pair: pair, TokenA: "0xa", TokenB: "0xb",
			AmountA: "10", AmountB: "20", LPTokens: "5", FeeOn: true, FeeLiquidity: "7",
			QuotedAt: "2024-05-01T12:00:01Z",
		},
	}
	require.NoError(t, store.PutQuoteBatch(ctx, records))

	got, ok, err := store.LatestQuote(ctx, 1, pair)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, records[1], got)

	_, ok, err = store.LatestQuote(ctx, 1, pair+"-missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutQuoteBatchRejectsBadTimestamp(t *testing.T) {
	store := newTestStore(t)
	err := store.PutQuoteBatch(context.Background(), []model.QuoteRecord{{Kind: model.QuoteKindAdd, QuotedAt: "yesterday"}})
	assert.Error(t, err)
}
