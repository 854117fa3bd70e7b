// Package server exposes the quote engine over HTTP.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"liquidityQuote/internal/metrics"
	"liquidityQuote/internal/quote"
	"liquidityQuote/internal/storage"
)

// SessionHeader names the consumer whose older in-flight quotes are dropped
// when a newer one arrives.
const SessionHeader = "X-Quote-Session"

// Quoter is the part of quote.Engine the HTTP surface calls.
type Quoter interface {
	QuoteAddLiquidity(ctx context.Context, tokenA, tokenB common.Address, desiredA, desiredB string) (quote.AddQuote, error)
	QuoteRemoveLiquidity(ctx context.Context, tokenA, tokenB common.Address, lpAmount string) (quote.RemoveQuote, error)
	Position(ctx context.Context, tokenA, tokenB, account common.Address) (quote.Position, error)
}

type Options struct {
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Recorder       *storage.Recorder
	RequestTimeout time.Duration
}

type Server struct {
	app      *fiber.App
	quoter   Quoter
	sessions *quote.Sessions
	recorder *storage.Recorder
	logger   *zap.Logger
	metrics  *metrics.Metrics
	timeout  time.Duration
}

func New(quoter Quoter, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		quoter:   quoter,
		sessions: quote.NewSessions(),
		recorder: opts.Recorder,
		logger:   logger,
		metrics:  opts.Metrics,
		timeout:  opts.RequestTimeout,
	}
	s.app = fiber.New(fiber.Config{
		AppName:      "quoter",
		ErrorHandler: s.handleError,
	})

	s.app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/quote/add", s.handleAdd)
	s.app.Get("/quote/remove", s.handleRemove)
	s.app.Get("/position", s.handlePosition)
	if opts.Gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves on addr until ctx is done, then shuts down.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()
	s.logger.Info("http server listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	}

	s.logger.Info("http server shutting down")
	return s.app.ShutdownWithTimeout(5 * time.Second)
}

// runQuote applies the request timeout and, when the caller names a session,
// drops the result if a newer request from that session started meanwhile.
func runQuote[T any](s *Server, c fiber.Ctx, key string, fn func(context.Context) (T, error)) (T, error) {
	ctx := c.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	id := c.Get(SessionHeader)
	if id == "" {
		return fn(ctx)
	}
	session := s.sessions.Acquire(id)
	defer s.sessions.Release(id)

	out, err := quote.Do(ctx, session, key, fn)
	if errors.Is(err, quote.ErrSuperseded) {
		s.metrics.ObserveSuperseded()
		s.logger.Debug("quote superseded", zap.String("session", id), zap.String("key", key))
	}
	return out, err
}
