package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	pkgrpc "github.com/goran-ethernal/GnosisPayIndexor/pkg/rpc"
)

// ErrCallFailed is returned when an individual call inside a multicall batch reverted.
var ErrCallFailed = errors.New("multicall: call reverted")

// Call is a single read inside a Multicall3 aggregate3 batch.
type Call struct {
	Target common.Address
	Data   []byte
}

// CallResult holds the outcome of one Call.
type CallResult struct {
	Success    bool
	ReturnData []byte
}

// call3 mirrors Multicall3.Call3 for ABI packing.
type call3 struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

// Multicaller batches read-only calls through a Multicall3 deployment.
type Multicaller struct {
	client  pkgrpc.EthClient
	address common.Address
}

// NewMulticaller creates a Multicaller for the Multicall3 contract at address.
func NewMulticaller(client pkgrpc.EthClient, address common.Address) *Multicaller {
	return &Multicaller{client: client, address: address}
}

// Aggregate executes calls at the given block. Failing calls are reported per
// result instead of reverting the whole batch.
func (m *Multicaller) Aggregate(ctx context.Context, calls []Call, block uint64) ([]CallResult, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	parsed, err := loadABIs()
	if err != nil {
		return nil, err
	}

	packed := make([]call3, len(calls))
	for i, c := range calls {
		packed[i] = call3{Target: c.Target, AllowFailure: true, CallData: c.Data}
	}

	data, err := parsed.multicall.Pack("aggregate3", packed)
	if err != nil {
		return nil, fmt.Errorf("pack aggregate3: %w", err)
	}

	resp, err := m.client.CallContract(ctx, ethereum.CallMsg{To: &m.address, Data: data}, block)
	if err != nil {
		return nil, fmt.Errorf("call aggregate3: %w", err)
	}

	values, err := parsed.multicall.Unpack("aggregate3", resp)
	if err != nil {
		return nil, fmt.Errorf("unpack aggregate3: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("aggregate3 return size %d", len(values))
	}

	results := *abi.ConvertType(values[0], new([]CallResult)).(*[]CallResult)
	if len(results) != len(calls) {
		return nil, fmt.Errorf("aggregate3 returned %d results for %d calls", len(results), len(calls))
	}

	return results, nil
}

// unpackSingle decodes the only return value of method from a successful call result.
func unpackSingle[T any](contract abi.ABI, method string, res CallResult) (T, error) {
	var zero T
	if !res.Success {
		return zero, fmt.Errorf("%s: %w", method, ErrCallFailed)
	}

	values, err := contract.Unpack(method, res.ReturnData)
	if err != nil {
		return zero, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) != 1 {
		return zero, fmt.Errorf("%s return size %d", method, len(values))
	}

	v, ok := values[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s unexpected type %T", method, values[0])
	}
	return v, nil
}
