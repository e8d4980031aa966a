package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	pkgrpc "github.com/goran-ethernal/GnosisPayIndexor/pkg/rpc"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	modulesPageSize    = 10
	safeCheckCacheSize = 10_000
	safeCheckCacheTTL  = time.Hour

	// NegativeRecheckBlocks bounds how far past a failed check the outcome is reused.
	// About an hour of Gnosis chain blocks.
	NegativeRecheckBlocks = 720
)

var (
	// ErrNoAvatar is returned when a module does not point at a Safe.
	ErrNoAvatar = errors.New("module has no avatar")

	// sentinelModules is the linked-list head used by Safe module pagination.
	sentinelModules = common.HexToAddress("0x0000000000000000000000000000000000000001")
)

// SafeResolver resolves Gnosis Pay Safes and their owners.
type SafeResolver interface {
	// SafeForModule returns the Safe (avatar) controlled by the given module.
	SafeForModule(ctx context.Context, module common.Address, block uint64) (common.Address, error)

	// Owners returns the owner set of the Safe at block.
	Owners(ctx context.Context, safe common.Address, block uint64) ([]common.Address, error)

	// IsGnosisPaySafe applies the on-chain heuristic: the account has code and one of its
	// enabled modules is a delay module whose avatar is the account.
	IsGnosisPaySafe(ctx context.Context, account common.Address, block uint64) (bool, error)
}

var _ SafeResolver = (*ModuleSafeResolver)(nil)

// ModuleSafeResolver implements SafeResolver using Safe and delay module contract reads.
type ModuleSafeResolver struct {
	client     pkgrpc.EthClient
	multicall  *Multicaller
	codeHashes map[common.Hash]struct{}
	checked    *expirable.LRU[common.Address, safeCheck]
	log        *logger.Logger
}

// safeCheck is the outcome of the heuristic for an account at block.
type safeCheck struct {
	ok    bool
	block uint64
}

// covers reports whether the outcome still holds at block. A Safe stays a Safe once its
// delay module is enabled, while an account may become one at any later block.
func (c safeCheck) covers(block uint64) bool {
	if block < c.block {
		return false
	}
	return c.ok || block-c.block <= NegativeRecheckBlocks
}

// NewModuleSafeResolver creates a resolver. An empty codeHashes set accepts any delay module.
func NewModuleSafeResolver(
	client pkgrpc.EthClient,
	multicall common.Address,
	codeHashes []common.Hash,
	log *logger.Logger,
) (*ModuleSafeResolver, error) {
	if client == nil {
		return nil, errors.New("rpc client is required")
	}
	if _, err := loadABIs(); err != nil {
		return nil, err
	}

	hashes := make(map[common.Hash]struct{}, len(codeHashes))
	for _, h := range codeHashes {
		hashes[h] = struct{}{}
	}

	return &ModuleSafeResolver{
		client:     client,
		multicall:  NewMulticaller(client, multicall),
		codeHashes: hashes,
		checked:    expirable.NewLRU[common.Address, safeCheck](safeCheckCacheSize, nil, safeCheckCacheTTL),
		log:        log,
	}, nil
}

// SafeForModule returns the Safe (avatar) controlled by the given module.
func (r *ModuleSafeResolver) SafeForModule(ctx context.Context, module common.Address, block uint64) (common.Address, error) {
	parsed, err := loadABIs()
	if err != nil {
		return common.Address{}, err
	}

	data, err := parsed.delay.Pack("avatar")
	if err != nil {
		return common.Address{}, fmt.Errorf("pack avatar: %w", err)
	}

	resp, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &module, Data: data}, block)
	if err != nil {
		return common.Address{}, fmt.Errorf("call avatar on %s: %w", module.Hex(), err)
	}

	avatar, err := unpackSingle[common.Address](parsed.delay, "avatar", CallResult{Success: true, ReturnData: resp})
	if err != nil {
		return common.Address{}, err
	}
	if avatar == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%s: %w", module.Hex(), ErrNoAvatar)
	}

	return avatar, nil
}

// Owners returns the owner set of the Safe at block.
func (r *ModuleSafeResolver) Owners(ctx context.Context, safe common.Address, block uint64) ([]common.Address, error) {
	parsed, err := loadABIs()
	if err != nil {
		return nil, err
	}

	data, err := parsed.safe.Pack("getOwners")
	if err != nil {
		return nil, fmt.Errorf("pack getOwners: %w", err)
	}

	resp, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &safe, Data: data}, block)
	if err != nil {
		return nil, fmt.Errorf("call getOwners on %s: %w", safe.Hex(), err)
	}

	return unpackSingle[[]common.Address](parsed.safe, "getOwners", CallResult{Success: true, ReturnData: resp})
}

// IsGnosisPaySafe applies the on-chain heuristic. A positive outcome is reused for every
// later block; a negative one only for the next NegativeRecheckBlocks blocks.
func (r *ModuleSafeResolver) IsGnosisPaySafe(ctx context.Context, account common.Address, block uint64) (bool, error) {
	if check, cached := r.checked.Get(account); cached && check.covers(block) {
		return check.ok, nil
	}

	ok, err := r.isGnosisPaySafe(ctx, account, block)
	if err != nil {
		return false, err
	}

	r.checked.Add(account, safeCheck{ok: ok, block: block})
	return ok, nil
}

func (r *ModuleSafeResolver) isGnosisPaySafe(ctx context.Context, account common.Address, block uint64) (bool, error) {
	code, err := r.client.CodeAt(ctx, account)
	if err != nil {
		return false, fmt.Errorf("failed to get code of %s: %w", account.Hex(), err)
	}
	if len(code) == 0 {
		return false, nil
	}

	parsed, err := loadABIs()
	if err != nil {
		return false, err
	}

	data, err := parsed.safe.Pack("getModulesPaginated", sentinelModules, big.NewInt(modulesPageSize))
	if err != nil {
		return false, fmt.Errorf("pack getModulesPaginated: %w", err)
	}

	results, err := r.multicall.Aggregate(ctx, []Call{{Target: account, Data: data}}, block)
	if err != nil {
		return false, err
	}
	if !results[0].Success {
		// not a Safe
		return false, nil
	}

	values, err := parsed.safe.Unpack("getModulesPaginated", results[0].ReturnData)
	if err != nil {
		// contracts with a fallback may return garbage for unknown selectors
		return false, nil //nolint:nilerr
	}
	modules, ok := values[0].([]common.Address)
	if !ok || len(modules) == 0 {
		return false, nil
	}

	avatarData, err := parsed.delay.Pack("avatar")
	if err != nil {
		return false, fmt.Errorf("pack avatar: %w", err)
	}

	calls := make([]Call, len(modules))
	for i, module := range modules {
		calls[i] = Call{Target: module, Data: avatarData}
	}

	avatars, err := r.multicall.Aggregate(ctx, calls, block)
	if err != nil {
		return false, err
	}

	for i, module := range modules {
		avatar, err := unpackSingle[common.Address](parsed.delay, "avatar", avatars[i])
		if err != nil || avatar != account {
			continue
		}

		match, err := r.matchesCodeHash(ctx, module)
		if err != nil {
			return false, err
		}
		if match {
			r.log.Debugw("safe detected", "account", account.Hex(), "module", module.Hex())
			return true, nil
		}
	}

	return false, nil
}

func (r *ModuleSafeResolver) matchesCodeHash(ctx context.Context, module common.Address) (bool, error) {
	if len(r.codeHashes) == 0 {
		return true, nil
	}

	code, err := r.client.CodeAt(ctx, module)
	if err != nil {
		return false, fmt.Errorf("failed to get code of module %s: %w", module.Hex(), err)
	}

	_, ok := r.codeHashes[crypto.Keccak256Hash(code)]
	return ok, nil
}
