package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"liquidityQuote/internal/model"
)

// Recorder stamps quote records with the chain and time and writes them to
// every configured sink. Sink failures are logged and never fail a quote.
type Recorder struct {
	chainID uint64
	sinks   []Storage
	logger  *zap.Logger
	now     func() time.Time
}

func NewRecorder(chainID uint64, logger *zap.Logger, sinks ...Storage) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	var kept []Storage
	for _, sink := range sinks {
		if sink != nil {
			kept = append(kept, sink)
		}
	}
	return &Recorder{chainID: chainID, sinks: kept, logger: logger, now: time.Now}
}

// Enabled reports whether any sink is configured.
func (r *Recorder) Enabled() bool {
	return r != nil && len(r.sinks) > 0
}

func (r *Recorder) Record(ctx context.Context, records ...model.QuoteRecord) {
	if !r.Enabled() || len(records) == 0 {
		return
	}
	quotedAt := r.now().UTC().Format(time.RFC3339)
	stamped := make([]model.QuoteRecord, len(records))
	for i, record := range records {
		record.ChainID = r.chainID
		if record.QuotedAt == "" {
			record.QuotedAt = quotedAt
		}
		stamped[i] = record
	}
	for _, sink := range r.sinks {
		if err := sink.PutQuoteBatch(ctx, stamped); err != nil {
			r.logger.Warn("record quotes failed", zap.Int("count", len(stamped)), zap.Error(err))
		}
	}
}
