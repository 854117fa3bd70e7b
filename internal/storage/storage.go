package storage

import (
	"context"

	"liquidityQuote/internal/model"
)

// Storage defines a sink for issued quotes.
type Storage interface {
	PutQuoteBatch(ctx context.Context, records []model.QuoteRecord) error
}
