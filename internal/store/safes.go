package store

import (
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
	"github.com/shopspring/decimal"

	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
)

// GetSafe returns the Safe at addr together with its owners.
func (q queries) GetSafe(addr common.Address) (*Safe, error) {
	var s Safe
	if err := meddler.QueryRow(q.q, &s, `SELECT * FROM safes WHERE address = ?`,
		intcommon.NormalizeAddress(addr)); err != nil {
		return nil, notFound(err, "safe %s", addr.Hex())
	}

	owners, err := q.GetSafeOwners(addr)
	if err != nil {
		return nil, err
	}
	s.Owners = owners

	return &s, nil
}

// SafeExists reports whether addr is a known Safe.
func (q queries) SafeExists(addr common.Address) (bool, error) {
	ok, err := q.exists(`SELECT 1 FROM safes WHERE address = ?`, intcommon.NormalizeAddress(addr))
	if err != nil {
		return false, fmt.Errorf("failed to check safe %s: %w", addr.Hex(), err)
	}
	return ok, nil
}

// EnsureSafe creates the Safe at addr if it does not exist yet and reports whether it was created.
func (q queries) EnsureSafe(addr common.Address, seenAtBlock uint64) (bool, error) {
	res, err := q.q.Exec(`INSERT OR IGNORE INTO safes (address, first_seen_block) VALUES (?, ?)`,
		intcommon.NormalizeAddress(addr), seenAtBlock)
	if err != nil {
		return false, fmt.Errorf("failed to upsert safe %s: %w", addr.Hex(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to upsert safe %s: %w", addr.Hex(), err)
	}
	return n > 0, nil
}

// GetSafeOwners returns the owners of the Safe at addr, sorted.
func (q queries) GetSafeOwners(addr common.Address) ([]common.Address, error) {
	rows, err := q.q.Query(`SELECT owner FROM safe_owners WHERE safe_address = ? ORDER BY owner`,
		intcommon.NormalizeAddress(addr))
	if err != nil {
		return nil, fmt.Errorf("failed to get owners of safe %s: %w", addr.Hex(), err)
	}
	defer rows.Close()

	var owners []common.Address
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, common.HexToAddress(owner))
	}

	return owners, rows.Err()
}

// SetSafeOwners replaces the owner set of the Safe at addr and reports whether it changed.
func (q queries) SetSafeOwners(addr common.Address, owners []common.Address) (bool, error) {
	current, err := q.GetSafeOwners(addr)
	if err != nil {
		return false, err
	}

	if sameOwners(current, owners) {
		return false, nil
	}

	safe := intcommon.NormalizeAddress(addr)
	if _, err := q.q.Exec(`DELETE FROM safe_owners WHERE safe_address = ?`, safe); err != nil {
		return false, fmt.Errorf("failed to clear owners of safe %s: %w", addr.Hex(), err)
	}

	for _, owner := range owners {
		if _, err := q.q.Exec(`INSERT OR IGNORE INTO safe_owners (safe_address, owner) VALUES (?, ?)`,
			safe, intcommon.NormalizeAddress(owner)); err != nil {
			return false, fmt.Errorf("failed to insert owner %s of safe %s: %w", owner.Hex(), addr.Hex(), err)
		}
	}

	return true, nil
}

// FindSafesByOwner returns every Safe whose owner set contains owner.
func (q queries) FindSafesByOwner(owner common.Address) ([]common.Address, error) {
	rows, err := q.q.Query(`SELECT safe_address FROM safe_owners WHERE owner = ? ORDER BY safe_address`,
		intcommon.NormalizeAddress(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to find safes of owner %s: %w", owner.Hex(), err)
	}
	defer rows.Close()

	var safes []common.Address
	for rows.Next() {
		var safe string
		if err := rows.Scan(&safe); err != nil {
			return nil, fmt.Errorf("failed to scan safe: %w", err)
		}
		safes = append(safes, common.HexToAddress(safe))
	}

	return safes, rows.Err()
}

// SetOgNftHolder updates the OG NFT flag of the Safe at addr.
func (q queries) SetOgNftHolder(addr common.Address, holder bool) error {
	if _, err := q.q.Exec(`UPDATE safes SET is_og_nft_holder = ? WHERE address = ?`,
		holder, intcommon.NormalizeAddress(addr)); err != nil {
		return fmt.Errorf("failed to update og nft flag of safe %s: %w", addr.Hex(), err)
	}
	return nil
}

// UpdateSafeGnoBalance records the GNO balance observed at block, unless a later balance is already stored.
func (q queries) UpdateSafeGnoBalance(addr common.Address, balance decimal.Decimal, block uint64) error {
	if _, err := q.q.Exec(`UPDATE safes SET gno_balance = ?, gno_balance_block = ?
		WHERE address = ? AND gno_balance_block <= ?`,
		balance.String(), block, intcommon.NormalizeAddress(addr), block); err != nil {
		return fmt.Errorf("failed to update gno balance of safe %s: %w", addr.Hex(), err)
	}
	return nil
}

// RecomputeSafeNetUSDVolume recomputes the Safe's net USD volume from its full transaction set.
func (q queries) RecomputeSafeNetUSDVolume(addr common.Address) (decimal.Decimal, error) {
	txs, err := q.ListTransactionsBySafe(addr, 0)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.SignedAmountUSD())
	}

	if _, err := q.q.Exec(`UPDATE safes SET net_usd_volume = ? WHERE address = ?`,
		total.String(), intcommon.NormalizeAddress(addr)); err != nil {
		return decimal.Zero, fmt.Errorf("failed to update net usd volume of safe %s: %w", addr.Hex(), err)
	}

	return total, nil
}

func sameOwners(a, b []common.Address) bool {
	if len(a) != len(b) {
		return false
	}
	norm := func(in []common.Address) []string {
		out := make([]string, len(in))
		for i, addr := range in {
			out[i] = intcommon.NormalizeAddress(addr)
		}
		slices.Sort(out)
		return out
	}
	return slices.Equal(norm(a), norm(b))
}
