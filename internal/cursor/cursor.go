// Package cursor tracks the block range the indexer fetches next.
package cursor

import (
	"context"
	"sync"

	"github.com/goran-ethernal/GnosisPayIndexor/internal/metrics"
)

// State is the phase of the indexing loop.
type State string

const (
	// StateBootstrapping is set until Start positions the cursor.
	StateBootstrapping State = "bootstrapping"
	// StateCatchingUp hands out ranges while the cursor trails the head.
	StateCatchingUp State = "catching_up"
	// StateCooldown waits for the head to move before the next range.
	StateCooldown State = "cooldown"
	// StateLive is set once every block up to the head is processed.
	StateLive State = "live"
)

// Snapshot is a consistent copy of the cursor state.
type Snapshot struct {
	State            State  `json:"state"`
	FetchBlockSize   uint64 `json:"fetch_block_size"`
	LatestChainBlock uint64 `json:"latest_chain_block"`
	FromBlock        uint64 `json:"from_block"`
	ToBlock          uint64 `json:"to_block"`
	DistanceToHead   uint64 `json:"distance_to_head"`
}

// Cursor is the single owner of the indexing range. The block watcher moves the
// chain head through SetLatestBlock; the indexing loop uses every other method.
type Cursor struct {
	mu sync.Mutex

	fetchBlockSize   uint64
	cooldownDistance uint64

	state  State
	latest uint64
	from   uint64
	to     uint64

	// closed and replaced whenever latest moves
	headChanged chan struct{}
}

// New creates a cursor in the Bootstrapping state.
func New(fetchBlockSize, cooldownDistance uint64) *Cursor {
	return &Cursor{
		fetchBlockSize:   fetchBlockSize,
		cooldownDistance: cooldownDistance,
		state:            StateBootstrapping,
		headChanged:      make(chan struct{}),
	}
}

// Start leaves Bootstrapping and positions the cursor at fromBlock.
func (c *Cursor) Start(fromBlock uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.from = fromBlock
	if fromBlock > 0 {
		c.to = fromBlock - 1
	}
	c.state = StateCatchingUp
	c.publishLocked()
}

// Next returns the range to fetch: [from, min(from+fetchBlockSize, latest)].
// It reports false when from is beyond the chain head.
func (c *Cursor) Next() (from, to uint64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.from > c.latest {
		c.state = StateCooldown
		return 0, 0, false
	}

	to = min(c.from+c.fetchBlockSize, c.latest)
	return c.from, to, true
}

// Advance marks [from, to] as processed. Ranges must be advanced in order;
// a stale or out-of-bounds range is ignored and reported false.
func (c *Cursor) Advance(from, to uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if from != c.from || to < from || to > c.latest {
		return false
	}

	c.to = to
	c.from = to + 1
	c.state = StateCatchingUp
	if c.latest == c.to {
		c.state = StateLive
	}
	c.publishLocked()

	return true
}

// CooldownTarget reports whether the cursor is close enough to the head to pause,
// and the block to wait for before fetching again.
func (c *Cursor) CooldownTarget() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.distanceLocked() > c.cooldownDistance {
		return 0, false
	}

	c.state = StateCooldown
	return c.to + c.cooldownDistance, true
}

// SetLatestBlock moves the chain head forward and wakes every waiter.
// Lower or equal numbers are ignored.
func (c *Cursor) SetLatestBlock(n uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n <= c.latest {
		return false
	}

	c.latest = n
	close(c.headChanged)
	c.headChanged = make(chan struct{})
	c.publishLocked()

	return true
}

// LatestBlock returns the last observed chain head.
func (c *Cursor) LatestBlock() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// WaitForBlock blocks until the chain head reaches target or ctx is done.
func (c *Cursor) WaitForBlock(ctx context.Context, target uint64) error {
	for {
		c.mu.Lock()
		if c.latest >= target {
			if c.state == StateCooldown {
				c.state = StateCatchingUp
			}
			c.mu.Unlock()
			return nil
		}
		changed := c.headChanged
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

// Snapshot returns a copy of the current state.
func (c *Cursor) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		State:            c.state,
		FetchBlockSize:   c.fetchBlockSize,
		LatestChainBlock: c.latest,
		FromBlock:        c.from,
		ToBlock:          c.to,
		DistanceToHead:   c.distanceLocked(),
	}
}

func (c *Cursor) distanceLocked() uint64 {
	if c.latest < c.to {
		return 0
	}
	return c.latest - c.to
}

func (c *Cursor) publishLocked() {
	metrics.CursorSet(c.latest, c.from, c.to)
}
