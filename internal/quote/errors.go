package quote

import (
	"context"
	"errors"
	"fmt"

	"liquidityQuote/internal/amm"
	"liquidityQuote/internal/units"
)

var (
	// ErrPoolNotFound means the factory has no pair for the requested tokens.
	ErrPoolNotFound = errors.New("pool not found")
	// ErrInsufficientLiquidity covers empty pools and zero-liquidity mints or burns.
	ErrInsufficientLiquidity = amm.ErrInsufficientLiquidity
	// ErrInvalidAmount covers zero, negative, and unparseable amounts.
	ErrInvalidAmount = units.ErrInvalidAmount
	// ErrChainRead matches every ChainReadError.
	ErrChainRead = errors.New("chain read failure")
	// ErrIdenticalAddresses is returned when both sides of a pair are the same token.
	ErrIdenticalAddresses = errors.New("identical token addresses")
	// ErrInvalidAddress is returned for malformed or zero addresses.
	ErrInvalidAddress = errors.New("invalid address")
)

// ChainReadError wraps a transport failure from the chain-read capability.
type ChainReadError struct {
	Op  string
	Err error
}

func (e *ChainReadError) Error() string {
	return fmt.Sprintf("chain read %s: %v", e.Op, e.Err)
}

func (e *ChainReadError) Unwrap() error {
	return e.Err
}

// Is reports ErrChainRead so callers can match the kind without the type.
func (e *ChainReadError) Is(target error) bool {
	return target == ErrChainRead
}

// ErrorKind classifies err into a stable label for logs, metrics and API bodies.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSuperseded):
		return "superseded"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrPoolNotFound):
		return "pool_not_found"
	case errors.Is(err, ErrInsufficientLiquidity):
		return "insufficient_liquidity"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrIdenticalAddresses):
		return "identical_addresses"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, ErrChainRead):
		return "chain_read_failure"
	default:
		return "internal"
	}
}
