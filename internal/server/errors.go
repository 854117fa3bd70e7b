package server

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"liquidityQuote/internal/quote"
)

// ErrInvalidQueryParameters indicates that the request query string could not
// be parsed into the expected structure.
var ErrInvalidQueryParameters = fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var kindStatus = map[string]int{
	"invalid_amount":         fiber.StatusBadRequest,
	"invalid_address":        fiber.StatusBadRequest,
	"identical_addresses":    fiber.StatusBadRequest,
	"pool_not_found":         fiber.StatusNotFound,
	"superseded":             fiber.StatusConflict,
	"insufficient_liquidity": fiber.StatusUnprocessableEntity,
	"chain_read_failure":     fiber.StatusBadGateway,
	"canceled":               fiber.StatusGatewayTimeout,
}

func (s *Server) handleError(c fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(errorBody{Error: "request_error", Message: fiberErr.Message})
	}

	kind := quote.ErrorKind(err)
	status, ok := kindStatus[kind]
	if !ok {
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: kind, Message: "internal error"})
	}

	if status >= fiber.StatusInternalServerError {
		s.logger.Warn("request failed", zap.String("path", c.Path()), zap.String("kind", kind), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.String("path", c.Path()), zap.String("kind", kind), zap.Error(err))
	}
	return c.Status(status).JSON(errorBody{Error: kind, Message: err.Error()})
}
