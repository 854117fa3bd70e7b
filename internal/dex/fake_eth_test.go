package dex

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"

	"liquidityQuote/internal/chain"
)

// fakeEth serves the eth_ namespace from canned call responses and storage.
type fakeEth struct {
	mu        sync.Mutex
	head      uint64
	responses map[common.Address]map[[4]byte][]byte
	storage   map[common.Address]map[common.Hash]common.Hash
	blocks    []int64
}

type callArgs struct {
	To    *common.Address `json:"to"`
	Data  *hexutil.Bytes  `json:"data"`
	Input *hexutil.Bytes  `json:"input"`
}

func newFakeEth(head uint64) *fakeEth {
	return &fakeEth{
		head:      head,
		responses: make(map[common.Address]map[[4]byte][]byte),
		storage:   make(map[common.Address]map[common.Hash]common.Hash),
	}
}

func (f *fakeEth) Call(args callArgs, block rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	input := args.Input
	if input == nil {
		input = args.Data
	}
	if args.To == nil || input == nil || len(*input) < 4 {
		return nil, errors.New("bad call")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(block)
	var selector [4]byte
	copy(selector[:], (*input)[:4])
	return f.responses[*args.To][selector], nil
}

func (f *fakeEth) GetStorageAt(account common.Address, slot common.Hash, block rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(block)
	word := f.storage[account][slot]
	return word[:], nil
}

func (f *fakeEth) BlockNumber() hexutil.Uint64 {
	return hexutil.Uint64(f.head)
}

func (f *fakeEth) ChainId() *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(1))
}

func (f *fakeEth) record(block rpc.BlockNumberOrHash) {
	if n, ok := block.Number(); ok {
		f.blocks = append(f.blocks, n.Int64())
	}
}

func (f *fakeEth) respond(t *testing.T, to common.Address, parsed abi.ABI, method string, values ...interface{}) {
	t.Helper()
	m, ok := parsed.Methods[method]
	require.True(t, ok, method)
	out, err := m.Outputs.Pack(values...)
	require.NoError(t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.responses[to] == nil {
		f.responses[to] = make(map[[4]byte][]byte)
	}
	var selector [4]byte
	copy(selector[:], m.ID)
	f.responses[to][selector] = out
}

func (f *fakeEth) setStorage(account common.Address, slot uint64, word *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storage[account] == nil {
		f.storage[account] = make(map[common.Hash]common.Hash)
	}
	f.storage[account][common.BigToHash(new(big.Int).SetUint64(slot))] = common.BigToHash(word)
}

func (f *fakeEth) seenBlocks() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.blocks...)
}

func dialFake(t *testing.T, fake *fakeEth) *chain.Client {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", fake))
	client := chain.NewClientFromRPC(rpc.DialInProc(server))
	t.Cleanup(func() {
		client.Close()
		server.Stop()
	})
	return client
}
