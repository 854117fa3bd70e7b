package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityQuote/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Store provides Postgres persistence for issued quotes.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the quote table and index if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutQuoteBatch inserts quote records in one round trip.
func (s *Store) PutQuoteBatch(ctx context.Context, records []model.QuoteRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		quotedAt, err := time.Parse(time.RFC3339, r.QuotedAt)
		if err != nil {
			return fmt.Errorf("quoted_at %q: %w", r.QuotedAt, err)
		}
		batch.Queue(`
			INSERT INTO liquidity_quotes (
				chain_id, kind, pair_address, token_a, token_b, amount_a, amount_b,
				lp_tokens, fee_on, fee_liquidity, first_deposit, quoted_at
			) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric, $9, $10::numeric, $11, $12)
		`,
			int64(r.ChainID),
			r.Kind,
			r.Pair,
			r.TokenA,
			r.TokenB,
			numeric(r.AmountA),
			numeric(r.AmountB),
			numeric(r.LPTokens),
			r.FeeOn,
			numeric(r.FeeLiquidity),
			r.FirstDeposit,
			quotedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LatestQuote returns the most recent quote recorded for a pair.
func (s *Store) LatestQuote(ctx context.Context, chainID uint64, pair string) (model.QuoteRecord, bool, error) {
	if pair == "" {
		return model.QuoteRecord{}, false, fmt.Errorf("pair address required")
	}
	var (
		r        model.QuoteRecord
		quotedAt time.Time
	)
	row := s.pool.QueryRow(ctx, `
		SELECT chain_id, kind, pair_address, token_a, token_b,
			amount_a::text, amount_b::text, lp_tokens::text,
			fee_on, fee_liquidity::text, first_deposit, quoted_at
		FROM liquidity_quotes
		WHERE chain_id = $1 AND pair_address = $2
		ORDER BY quoted_at DESC, id DESC
		LIMIT 1
	`, int64(chainID), pair)
	if err := row.Scan(
		&r.ChainID, &r.Kind, &r.Pair, &r.TokenA, &r.TokenB,
		&r.AmountA, &r.AmountB, &r.LPTokens,
		&r.FeeOn, &r.FeeLiquidity, &r.FirstDeposit, &quotedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.QuoteRecord{}, false, nil
		}
		return model.QuoteRecord{}, false, err
	}
	r.QuotedAt = quotedAt.UTC().Format(time.RFC3339)
	return r, true, nil
}

func numeric(v string) string {
	if v == "" {
		return "0"
	}
	return v
}
