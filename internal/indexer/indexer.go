// Package indexer drives the indexing pipeline: it owns the cursor loop, bootstraps the
// aggregate store and holds the single-writer lease while it runs.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/broadcast"
	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/cursor"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/db"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/fetcher"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/metrics"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/processor"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
	"golang.org/x/sync/errgroup"
)

// walCheckpointInterval is the number of indexed ranges between WAL checkpoints.
const walCheckpointInterval = 100

// EventSource returns the decoded logs of a block range ordered by (block, log index).
type EventSource interface {
	FetchAll(ctx context.Context, fromBlock, toBlock uint64) ([]fetcher.Event, error)
}

// EventProcessor applies decoded logs to the aggregate store.
type EventProcessor interface {
	Process(ctx context.Context, ev fetcher.Event) (*processor.Result, error)
	Reconcile(ctx context.Context, weeks []intcommon.WeekID) (int64, error)
}

// HeadWatcher keeps the cursor's view of the chain head current.
type HeadWatcher interface {
	Prime(ctx context.Context) error
	Run(ctx context.Context) error
}

var (
	_ EventSource    = (*fetcher.Set)(nil)
	_ EventProcessor = (*processor.Processor)(nil)
	_ HeadWatcher    = (*cursor.Watcher)(nil)
)

// Config holds the startup parameters of the indexing loop.
type Config struct {
	// Resume continues from the stored high-water mark instead of reindexing from StartBlock.
	Resume     bool
	StartBlock uint64
	LeaseTTL   time.Duration
	// Tokens is the registry seeded into the store at bootstrap.
	Tokens []*store.Token
	// DBPath feeds the database size gauge; empty skips the measurement.
	DBPath string
}

// Indexer runs the cursor loop: fetch a range, process it in log order, publish the
// committed records, reconcile rewards and advance.
type Indexer struct {
	cfg         Config
	store       *store.Store
	cursor      *cursor.Cursor
	watcher     HeadWatcher
	source      EventSource
	processor   EventProcessor
	broadcaster broadcast.Broadcaster
	holder      string
	log         *logger.Logger

	ranges int
}

// New creates a new indexer. A nil broadcaster drops every event.
func New(
	cfg Config,
	st *store.Store,
	cur *cursor.Cursor,
	watcher HeadWatcher,
	source EventSource,
	proc EventProcessor,
	broadcaster broadcast.Broadcaster,
	log *logger.Logger,
) (*Indexer, error) {
	switch {
	case st == nil:
		return nil, errors.New("store is required")
	case cur == nil:
		return nil, errors.New("cursor is required")
	case watcher == nil:
		return nil, errors.New("head watcher is required")
	case source == nil:
		return nil, errors.New("event source is required")
	case proc == nil:
		return nil, errors.New("processor is required")
	case cfg.LeaseTTL <= 0:
		return nil, errors.New("lease ttl must be positive")
	}

	if broadcaster == nil {
		broadcaster = broadcast.Noop{}
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &Indexer{
		cfg:         cfg,
		store:       st,
		cursor:      cur,
		watcher:     watcher,
		source:      source,
		processor:   proc,
		broadcaster: broadcaster,
		holder:      uuid.NewString(),
		log:         log,
	}, nil
}

// HolderID returns the lease holder id of this instance.
func (i *Indexer) HolderID() string {
	return i.holder
}

// Status returns the current cursor position.
func (i *Indexer) Status() cursor.Snapshot {
	return i.cursor.Snapshot()
}

// Run acquires the lease, bootstraps the store and indexes until ctx is done or a
// range fails after its retry budget.
func (i *Indexer) Run(ctx context.Context) error {
	if err := i.acquireLease(ctx); err != nil {
		return err
	}
	defer i.releaseLease()

	from, err := i.bootstrap(ctx)
	if err != nil {
		return err
	}
	i.cursor.Start(from)

	if err := i.watcher.Prime(ctx); err != nil {
		return fmt.Errorf("failed to read chain head: %w", err)
	}

	metrics.ComponentHealthSet(intcommon.ComponentIndexer, true)
	defer metrics.ComponentHealthSet(intcommon.ComponentIndexer, false)

	i.log.Infow("indexing started",
		"from_block", from,
		"latest_block", i.cursor.LatestBlock(),
		"lease_holder", i.holder,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return i.watcher.Run(gctx) })
	g.Go(func() error { return i.renewLease(gctx) })
	g.Go(func() error { return i.loop(gctx) })

	err = g.Wait()
	i.maintain()

	if ctx.Err() != nil {
		i.log.Info("indexing stopped")
		return ctx.Err()
	}
	return err
}

func (i *Indexer) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		from, to, ok := i.cursor.Next()
		if !ok {
			if err := i.cursor.WaitForBlock(ctx, i.cursor.Snapshot().FromBlock); err != nil {
				return err
			}
			continue
		}

		if err := i.indexRange(ctx, from, to); err != nil {
			metrics.ErrorsInc(intcommon.ComponentIndexer, "critical")
			return err
		}

		if !i.cursor.Advance(from, to) {
			return fmt.Errorf("cursor rejected range [%d, %d]", from, to)
		}

		i.ranges++
		if i.ranges%walCheckpointInterval == 0 {
			i.maintain()
		}

		if target, wait := i.cursor.CooldownTarget(); wait {
			metrics.CooldownWaitInc()
			i.log.Debugw("near chain head, waiting", "to_block", to, "target_block", target)
			if err := i.cursor.WaitForBlock(ctx, target); err != nil {
				return err
			}
		}
	}
}

// indexRange fetches and processes one block range. Only fetch and reconciliation
// failures abort the range; per-log processing errors are reported and skipped.
func (i *Indexer) indexRange(ctx context.Context, from, to uint64) error {
	start := time.Now()

	events, err := i.source.FetchAll(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to fetch logs for blocks [%d, %d]: %w", from, to, err)
	}

	indexed := make(map[fetcher.Kind]int)
	var rewardWeeks []intcommon.WeekID

	for _, ev := range events {
		res, err := i.processor.Process(ctx, ev)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			i.report(ev, err)
			continue
		}

		if res.Outcome != processor.OutcomeProcessed {
			continue
		}

		indexed[ev.Kind()]++
		if res.RewardWeek != "" && !slices.Contains(rewardWeeks, res.RewardWeek) {
			rewardWeeks = append(rewardWeeks, res.RewardWeek)
		}
		i.publish(ctx, res)
	}

	if len(rewardWeeks) > 0 {
		if _, err := i.processor.Reconcile(ctx, rewardWeeks); err != nil {
			return fmt.Errorf("failed to reconcile rewards for weeks %v: %w", rewardWeeks, err)
		}
	}

	logMetrics(indexed, start, from, to)

	i.log.Debugw("range indexed",
		"from_block", from,
		"to_block", to,
		"logs", len(events),
		"duration", time.Since(start),
	)

	return nil
}

// maintain checkpoints the WAL and refreshes the database size gauge. It returns the
// measured size, or zero when it was not measured.
func (i *Indexer) maintain() int64 {
	if _, err := db.WALCheckpoint(i.store.DB()); err != nil {
		i.log.Warnw("failed to checkpoint WAL", "error", err)
	}

	if i.cfg.DBPath == "" {
		return 0
	}

	size, err := db.DBTotalSize(i.cfg.DBPath)
	if err != nil {
		i.log.Warnw("failed to measure database size", "path", i.cfg.DBPath, "error", err)
		return 0
	}
	i.log.Debugw("database maintained", "size_bytes", size, "ranges", i.ranges)
	return size
}

func (i *Indexer) report(ev fetcher.Event, err error) {
	meta := ev.Meta()

	if processor.IsAlreadyProcessed(err) {
		i.log.Warnw("log already processed",
			"kind", ev.Kind(),
			"tx_hash", meta.TxHash.Hex(),
			"block", meta.BlockNumber,
			"log_index", meta.LogIndex,
		)
		return
	}

	metrics.ErrorsInc(intcommon.ComponentProcessor, "error")
	i.log.Errorw("failed to process log",
		"kind", ev.Kind(),
		"code", processor.CodeOf(err),
		"tx_hash", meta.TxHash.Hex(),
		"block", meta.BlockNumber,
		"log_index", meta.LogIndex,
		"error", err,
	)
}

// publish notifies subscribers about committed records. Failures are logged and dropped.
func (i *Indexer) publish(ctx context.Context, res *processor.Result) {
	if res.Transaction != nil {
		ev := broadcast.NewTransactionEvent(res.Transaction, res.WeekReward)
		i.send(ctx, broadcast.SubjectTransactionNew, ev)
		i.send(ctx, broadcast.TransactionSubject(res.Transaction), ev)
	}
	if res.WeekMetrics != nil {
		i.send(ctx, broadcast.SubjectWeekMetricsUpdated, broadcast.NewWeekMetricsEvent(res.WeekMetrics))
	}
}

func (i *Indexer) send(ctx context.Context, subject string, payload any) {
	if err := i.broadcaster.Publish(ctx, subject, payload); err != nil {
		metrics.ErrorsInc(intcommon.ComponentBroadcaster, "warning")
		i.log.Warnw("failed to publish event", "subject", subject, "error", err)
	}
}

// logMetrics records metrics for one indexed range.
func logMetrics(indexed map[fetcher.Kind]int, start time.Time, from, to uint64) {
	for kind, n := range indexed {
		metrics.LogsIndexedInc(kind.String(), n)
	}

	blocks := to - from + 1
	metrics.BlocksProcessedInc(blocks)
	metrics.LastIndexedBlockSet(to)

	elapsed := time.Since(start)
	metrics.RangeProcessingTimeLog(elapsed)

	seconds := elapsed.Seconds()
	if seconds == 0 {
		seconds = 1 // prevent division by zero
	}
	metrics.IndexingRateLog(float64(blocks) / seconds)
}
