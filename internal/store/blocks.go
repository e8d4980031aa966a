package store

import (
	"fmt"

	"github.com/russross/meddler"
)

// GetBlock returns the stored block with the given number.
func (q queries) GetBlock(number uint64) (*Block, error) {
	var b Block
	if err := meddler.QueryRow(q.q, &b, `SELECT * FROM blocks WHERE number = ?`, number); err != nil {
		return nil, notFound(err, "block %d", number)
	}
	return &b, nil
}

// InsertBlock stores b unless a block with the same number already exists. Blocks are immutable.
func (q queries) InsertBlock(b *Block) error {
	_, err := q.q.Exec(`INSERT OR IGNORE INTO blocks (number, hash, timestamp, week_id) VALUES (?, ?, ?, ?)`,
		b.Number, b.Hash.Hex(), b.Timestamp, string(b.WeekID))
	if err != nil {
		return fmt.Errorf("failed to insert block %d: %w", b.Number, err)
	}
	return nil
}
