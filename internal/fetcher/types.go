package fetcher

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Kind identifies the decoded event type.
type Kind string

const (
	KindSpend              Kind = "spend"
	KindRefund             Kind = "refund"
	KindGnoTransfer        Kind = "gno_transfer"
	KindRewardDistribution Kind = "reward_distribution"
	KindOgNftClaim         Kind = "og_nft_claim"
)

func (k Kind) String() string {
	return string(k)
}

// order breaks ties between events decoded from the same log by different fetchers.
func (k Kind) order() int {
	switch k {
	case KindSpend:
		return 0
	case KindRefund:
		return 1
	case KindGnoTransfer:
		return 2 //nolint:mnd
	case KindRewardDistribution:
		return 3 //nolint:mnd
	default:
		return 4 //nolint:mnd
	}
}

// LogMeta locates the log an event was decoded from.
type LogMeta struct {
	BlockNumber uint64
	BlockHash   common.Hash
	TxHash      common.Hash
	LogIndex    uint
	Address     common.Address
}

// Event is a strictly decoded log of one Kind.
type Event interface {
	Kind() Kind
	Meta() LogMeta
}

// SpendEvent is a card spend emitted by the spender module.
// Account is the delay module acting for the Safe.
type SpendEvent struct {
	LogMeta
	Asset    common.Address
	Account  common.Address
	Receiver common.Address
	Amount   *big.Int
}

// RefundEvent is a payment token transfer from the spend receiver back to a Safe.
type RefundEvent struct {
	LogMeta
	Token  common.Address
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// GnoTransferEvent is any GNO token transfer.
type GnoTransferEvent struct {
	LogMeta
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// RewardDistributionEvent is a GNO transfer from the rewards distributor Safe.
type RewardDistributionEvent struct {
	LogMeta
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// OgNftClaimEvent is a mint of the OG NFT collection.
type OgNftClaimEvent struct {
	LogMeta
	Recipient common.Address
	TokenID   *big.Int
}

func (e *SpendEvent) Kind() Kind              { return KindSpend }
func (e *RefundEvent) Kind() Kind             { return KindRefund }
func (e *GnoTransferEvent) Kind() Kind        { return KindGnoTransfer }
func (e *RewardDistributionEvent) Kind() Kind { return KindRewardDistribution }
func (e *OgNftClaimEvent) Kind() Kind         { return KindOgNftClaim }

func (m LogMeta) Meta() LogMeta { return m }
