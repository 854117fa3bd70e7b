package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"liquidityQuote/internal/chain"
	"liquidityQuote/internal/quote"
)

// UniswapV2Pair storage layout.
const (
	slotTotalSupply = 0
	slotToken0      = 6
	slotReserves    = 8
	slotKLast       = 11
)

var reserveMask = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 112), uint256.NewInt(1))

// SlotReader reads pair state straight from storage with eth_getStorageAt and
// falls back to eth_call for factory and token reads. It only works against
// pairs compiled from the canonical UniswapV2Pair source.
type SlotReader struct {
	*CallReader
}

func NewSlotReader(client *chain.Client) *SlotReader {
	return &SlotReader{CallReader: NewCallReader(client)}
}

func (r *SlotReader) Pinned(ctx context.Context) (quote.ChainReader, error) {
	block, err := r.head(ctx)
	if err != nil {
		return nil, err
	}
	return &SlotReader{CallReader: &CallReader{client: r.client, block: block}}, nil
}

func (r *SlotReader) GetToken0(ctx context.Context, pair common.Address) (common.Address, error) {
	word, err := r.word(ctx, pair, slotToken0)
	if err != nil {
		return common.Address{}, err
	}
	return common.Address(word.Bytes20()), nil
}

// GetReserves unpacks reserve0 | reserve1 << 112 | blockTimestampLast << 224.
func (r *SlotReader) GetReserves(ctx context.Context, pair common.Address) (*big.Int, *big.Int, error) {
	word, err := r.word(ctx, pair, slotReserves)
	if err != nil {
		return nil, nil, err
	}
	reserve0 := new(uint256.Int).And(word, reserveMask)
	reserve1 := new(uint256.Int).Rsh(word, 112)
	reserve1.And(reserve1, reserveMask)
	return reserve0.ToBig(), reserve1.ToBig(), nil
}

func (r *SlotReader) GetTotalSupply(ctx context.Context, pair common.Address) (*big.Int, error) {
	word, err := r.word(ctx, pair, slotTotalSupply)
	if err != nil {
		return nil, err
	}
	return word.ToBig(), nil
}

func (r *SlotReader) GetKLast(ctx context.Context, pair common.Address) (*big.Int, error) {
	word, err := r.word(ctx, pair, slotKLast)
	if err != nil {
		return nil, err
	}
	return word.ToBig(), nil
}

func (r *SlotReader) word(ctx context.Context, account common.Address, slot uint64) (*uint256.Int, error) {
	key := common.BigToHash(new(big.Int).SetUint64(slot))
	raw, err := r.client.StorageAt(ctx, account, key, r.block)
	if err != nil {
		return nil, fmt.Errorf("storage slot %d: %w", slot, err)
	}
	if len(raw) > 32 {
		return nil, fmt.Errorf("storage slot %d: %d-byte word", slot, len(raw))
	}
	return new(uint256.Int).SetBytes(raw), nil
}
