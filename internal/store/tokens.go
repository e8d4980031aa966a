package store

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"

	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
)

// SeedTokens inserts the tokens missing from the registry and returns how many were added.
// Existing tokens are never modified.
func (q queries) SeedTokens(tokens []*Token) (int, error) {
	added := 0
	for _, t := range tokens {
		res, err := q.q.Exec(`INSERT OR IGNORE INTO tokens (address, symbol, name, decimals, chain_id, oracle_address)
			VALUES (?, ?, ?, ?, ?, ?)`,
			intcommon.NormalizeAddress(t.Address), t.Symbol, t.Name, t.Decimals, t.ChainID, nullableAddress(t.OracleAddress))
		if err != nil {
			return added, fmt.Errorf("failed to seed token %s: %w", t.Symbol, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, nil
}

// GetToken returns the registry token at addr.
func (q queries) GetToken(addr common.Address) (*Token, error) {
	var t Token
	if err := meddler.QueryRow(q.q, &t, `SELECT * FROM tokens WHERE address = ?`,
		intcommon.NormalizeAddress(addr)); err != nil {
		return nil, notFound(err, "token %s", addr.Hex())
	}
	return &t, nil
}

// ListTokens returns the whole token registry ordered by symbol.
func (q queries) ListTokens() ([]*Token, error) {
	var tokens []*Token
	if err := meddler.QueryAll(q.q, &tokens, `SELECT * FROM tokens ORDER BY symbol`); err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return tokens, nil
}

func nullableAddress(addr *common.Address) any {
	if addr == nil {
		return nil
	}
	return intcommon.NormalizeAddress(*addr)
}
