package fetcher

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	erc20TransferTopics  = 3  // signature + from + to
	erc20TransferData    = 32 // uint256 value
	erc721TransferTopics = 4  // signature + from + to + tokenId
	spendTopics          = 1
	spendValues          = 4
)

// ErrDecode marks a log that does not match the expected event shape.
var ErrDecode = errors.New("failed to decode log")

var (
	// TransferTopic is shared by ERC-20 and ERC-721 Transfer events.
	TransferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

	// SpendTopic is emitted by the spender module for every card spend.
	SpendTopic = crypto.Keccak256Hash([]byte("Spend(address,address,address,uint256)"))
)

const spendEventABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "asset", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "account", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "receiver", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "Spend",
    "type": "event"
  }
]`

var spendEvent = mustEvent(spendEventABIJSON, "Spend")

func mustEvent(def, name string) abi.Event {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("invalid %s event ABI: %v", name, err))
	}
	return parsed.Events[name]
}

func metaOf(log *types.Log) LogMeta {
	return LogMeta{
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash,
		TxHash:      log.TxHash,
		LogIndex:    log.Index,
		Address:     log.Address,
	}
}

func decodeError(log *types.Log, format string, args ...any) error {
	return fmt.Errorf("%w at block %d, tx %s, index %d: %s",
		ErrDecode, log.BlockNumber, log.TxHash.Hex(), log.Index, fmt.Sprintf(format, args...))
}

// decodeSpend decodes Spend(address asset, address account, address receiver, uint256 amount).
func decodeSpend(log *types.Log) (Event, error) {
	if len(log.Topics) != spendTopics || log.Topics[0] != SpendTopic {
		return nil, decodeError(log, "invalid Spend event: expected %d topics, got %d", spendTopics, len(log.Topics))
	}

	values, err := spendEvent.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, decodeError(log, "invalid Spend data: %v", err)
	}
	if len(values) != spendValues {
		return nil, decodeError(log, "invalid Spend data: expected %d values, got %d", spendValues, len(values))
	}

	asset, ok1 := values[0].(common.Address)
	account, ok2 := values[1].(common.Address)
	receiver, ok3 := values[2].(common.Address)
	amount, ok4 := values[3].(*big.Int)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, decodeError(log, "invalid Spend data: unexpected value types")
	}

	return &SpendEvent{
		LogMeta:  metaOf(log),
		Asset:    asset,
		Account:  account,
		Receiver: receiver,
		Amount:   amount,
	}, nil
}

// parseERC20Transfer parses Transfer(address indexed from, address indexed to, uint256 value).
func parseERC20Transfer(log *types.Log) (from, to common.Address, value *big.Int, err error) {
	if len(log.Topics) != erc20TransferTopics || log.Topics[0] != TransferTopic {
		return from, to, nil, decodeError(log, "invalid Transfer event: expected %d topics, got %d",
			erc20TransferTopics, len(log.Topics))
	}
	if len(log.Data) != erc20TransferData {
		return from, to, nil, decodeError(log, "invalid Transfer event: expected %d bytes of data, got %d",
			erc20TransferData, len(log.Data))
	}

	from = common.BytesToAddress(log.Topics[1].Bytes())
	to = common.BytesToAddress(log.Topics[2].Bytes())
	value = new(big.Int).SetBytes(log.Data)

	return from, to, value, nil
}

func decodeRefund(log *types.Log) (Event, error) {
	from, to, value, err := parseERC20Transfer(log)
	if err != nil {
		return nil, err
	}
	return &RefundEvent{LogMeta: metaOf(log), Token: log.Address, From: from, To: to, Amount: value}, nil
}

func decodeGnoTransfer(log *types.Log) (Event, error) {
	from, to, value, err := parseERC20Transfer(log)
	if err != nil {
		return nil, err
	}
	return &GnoTransferEvent{LogMeta: metaOf(log), From: from, To: to, Amount: value}, nil
}

func decodeRewardDistribution(log *types.Log) (Event, error) {
	from, to, value, err := parseERC20Transfer(log)
	if err != nil {
		return nil, err
	}
	return &RewardDistributionEvent{LogMeta: metaOf(log), From: from, To: to, Amount: value}, nil
}

// decodeOgNftClaim parses an ERC-721 mint: Transfer(address(0), to, tokenId), all indexed.
func decodeOgNftClaim(log *types.Log) (Event, error) {
	if len(log.Topics) != erc721TransferTopics || log.Topics[0] != TransferTopic {
		return nil, decodeError(log, "invalid ERC-721 Transfer event: expected %d topics, got %d",
			erc721TransferTopics, len(log.Topics))
	}
	if len(log.Data) != 0 {
		return nil, decodeError(log, "invalid ERC-721 Transfer event: unexpected %d bytes of data", len(log.Data))
	}

	from := common.BytesToAddress(log.Topics[1].Bytes())
	if from != (common.Address{}) {
		return nil, decodeError(log, "not a mint: from %s", from.Hex())
	}

	return &OgNftClaimEvent{
		LogMeta:   metaOf(log),
		Recipient: common.BytesToAddress(log.Topics[2].Bytes()),
		TokenID:   log.Topics[3].Big(),
	}, nil
}
