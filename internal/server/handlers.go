package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"

	"liquidityQuote/internal/quote"
)

type addRequest struct {
	TokenA  string `query:"token_a"`
	TokenB  string `query:"token_b"`
	AmountA string `query:"amount_a"`
	AmountB string `query:"amount_b"`
}

type removeRequest struct {
	TokenA   string `query:"token_a"`
	TokenB   string `query:"token_b"`
	LPAmount string `query:"lp_amount"`
}

type positionRequest struct {
	TokenA  string `query:"token_a"`
	TokenB  string `query:"token_b"`
	Account string `query:"account"`
}

func (s *Server) handleAdd(c fiber.Ctx) error {
	var req addRequest
	if err := c.Bind().Query(&req); err != nil {
		return ErrInvalidQueryParameters
	}
	tokenA, tokenB, err := parsePair(req.TokenA, req.TokenB)
	if err != nil {
		return err
	}

	key := quote.QuoteKey("add", tokenA.Hex(), tokenB.Hex(), req.AmountA, req.AmountB)
	q, err := runQuote(s, c, key, func(ctx context.Context) (quote.AddQuote, error) {
		return s.quoter.QuoteAddLiquidity(ctx, tokenA, tokenB, req.AmountA, req.AmountB)
	})
	if err != nil {
		return err
	}

	s.recorder.Record(c.Context(), q.Record())
	return c.JSON(q.Model())
}

func (s *Server) handleRemove(c fiber.Ctx) error {
	var req removeRequest
	if err := c.Bind().Query(&req); err != nil {
		return ErrInvalidQueryParameters
	}
	tokenA, tokenB, err := parsePair(req.TokenA, req.TokenB)
	if err != nil {
		return err
	}

	key := quote.QuoteKey("remove", tokenA.Hex(), tokenB.Hex(), req.LPAmount)
	q, err := runQuote(s, c, key, func(ctx context.Context) (quote.RemoveQuote, error) {
		return s.quoter.QuoteRemoveLiquidity(ctx, tokenA, tokenB, req.LPAmount)
	})
	if err != nil {
		return err
	}

	s.recorder.Record(c.Context(), q.Record())
	return c.JSON(q.Model())
}

func (s *Server) handlePosition(c fiber.Ctx) error {
	var req positionRequest
	if err := c.Bind().Query(&req); err != nil {
		return ErrInvalidQueryParameters
	}
	tokenA, tokenB, err := parsePair(req.TokenA, req.TokenB)
	if err != nil {
		return err
	}
	account, err := parseAddress("account", req.Account)
	if err != nil {
		return err
	}

	key := quote.QuoteKey("position", tokenA.Hex(), tokenB.Hex(), account.Hex())
	p, err := runQuote(s, c, key, func(ctx context.Context) (quote.Position, error) {
		return s.quoter.Position(ctx, tokenA, tokenB, account)
	})
	if err != nil {
		return err
	}
	return c.JSON(p.Model())
}

func parsePair(tokenA, tokenB string) (common.Address, common.Address, error) {
	a, err := parseAddress("token_a", tokenA)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	b, err := parseAddress("token_b", tokenB)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return a, b, nil
}

func parseAddress(field, value string) (common.Address, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return common.Address{}, fmt.Errorf("%w: %s is required", quote.ErrInvalidAddress, field)
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%w: %s", quote.ErrInvalidAddress, field)
	}
	return common.HexToAddress(value), nil
}
