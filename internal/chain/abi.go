package chain

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// balanceOf(address) is shared by ERC-20 and ERC-721 contracts.
const tokenABIJSON = `[
  {"inputs": [{"internalType": "address", "name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const aggregatorABIJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}], "stateMutability": "view", "type": "function"},
  {
    "inputs": [],
    "name": "latestRoundData",
    "outputs": [
      {"internalType": "uint80", "name": "roundId", "type": "uint80"},
      {"internalType": "int256", "name": "answer", "type": "int256"},
      {"internalType": "uint256", "name": "startedAt", "type": "uint256"},
      {"internalType": "uint256", "name": "updatedAt", "type": "uint256"},
      {"internalType": "uint80", "name": "answeredInRound", "type": "uint80"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const safeABIJSON = `[
  {"inputs": [], "name": "getOwners", "outputs": [{"internalType": "address[]", "name": "", "type": "address[]"}], "stateMutability": "view", "type": "function"},
  {
    "inputs": [
      {"internalType": "address", "name": "start", "type": "address"},
      {"internalType": "uint256", "name": "pageSize", "type": "uint256"}
    ],
    "name": "getModulesPaginated",
    "outputs": [
      {"internalType": "address[]", "name": "array", "type": "address[]"},
      {"internalType": "address", "name": "next", "type": "address"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const delayModuleABIJSON = `[
  {"inputs": [], "name": "avatar", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const multicall3ABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          {"internalType": "address", "name": "target", "type": "address"},
          {"internalType": "bool", "name": "allowFailure", "type": "bool"},
          {"internalType": "bytes", "name": "callData", "type": "bytes"}
        ],
        "internalType": "struct Multicall3.Call3[]",
        "name": "calls",
        "type": "tuple[]"
      }
    ],
    "name": "aggregate3",
    "outputs": [
      {
        "components": [
          {"internalType": "bool", "name": "success", "type": "bool"},
          {"internalType": "bytes", "name": "returnData", "type": "bytes"}
        ],
        "internalType": "struct Multicall3.Result[]",
        "name": "returnData",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "payable",
    "type": "function"
  }
]`

type contractABIs struct {
	token      abi.ABI
	aggregator abi.ABI
	safe       abi.ABI
	delay      abi.ABI
	multicall  abi.ABI
}

var (
	abis     contractABIs
	abisOnce sync.Once
	abisErr  error
)

func loadABIs() (*contractABIs, error) {
	abisOnce.Do(func() {
		for _, def := range []struct {
			name string
			json string
			dst  *abi.ABI
		}{
			{"token", tokenABIJSON, &abis.token},
			{"aggregator", aggregatorABIJSON, &abis.aggregator},
			{"safe", safeABIJSON, &abis.safe},
			{"delay module", delayModuleABIJSON, &abis.delay},
			{"multicall3", multicall3ABIJSON, &abis.multicall},
		} {
			parsed, err := abi.JSON(strings.NewReader(def.json))
			if err != nil {
				abisErr = fmt.Errorf("failed to parse %s ABI: %w", def.name, err)
				return
			}
			*def.dst = parsed
		}
	})
	return &abis, abisErr
}
