package indexer

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/broadcast"
	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/cursor"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/fetcher"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/processor"
	rpcmocks "github.com/goran-ethernal/GnosisPayIndexor/internal/rpc/mocks"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store/storetest"
	"github.com/goran-ethernal/GnosisPayIndexor/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	safeA = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	eure  = common.HexToAddress("0xcB444e90D8198415266c6a2724b7900fb12FC56E")

	testTokens = []*store.Token{{Address: eure, Symbol: "EURe", Name: "Monerium EURe", Decimals: 18, ChainID: 100}}
)

type fakeWatcher struct {
	cursor *cursor.Cursor
	head   uint64
}

func (w *fakeWatcher) Prime(context.Context) error {
	w.cursor.SetLatestBlock(w.head)
	return nil
}

func (w *fakeWatcher) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type fakeSource struct {
	mu     sync.Mutex
	events []fetcher.Event
	err    error
	ranges [][2]uint64
}

func (s *fakeSource) FetchAll(_ context.Context, from, to uint64) ([]fetcher.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ranges = append(s.ranges, [2]uint64{from, to})
	if s.err != nil {
		return nil, s.err
	}

	var out []fetcher.Event
	for _, ev := range s.events {
		if n := ev.Meta().BlockNumber; n >= from && n <= to {
			out = append(out, ev)
		}
	}
	return out, nil
}

type outcome struct {
	res *processor.Result
	err error
}

type fakeProcessor struct {
	mu         sync.Mutex
	outcomes   map[common.Hash]outcome
	processed  []common.Hash
	reconciled [][]intcommon.WeekID
}

func (p *fakeProcessor) Process(_ context.Context, ev fetcher.Event) (*processor.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	hash := ev.Meta().TxHash
	p.processed = append(p.processed, hash)

	o, ok := p.outcomes[hash]
	if !ok {
		return &processor.Result{Kind: ev.Kind(), Outcome: processor.OutcomeSkipped}, nil
	}
	return o.res, o.err
}

func (p *fakeProcessor) Reconcile(_ context.Context, weeks []intcommon.WeekID) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.reconciled = append(p.reconciled, weeks)
	return int64(len(weeks)), nil
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (b *recordingBroadcaster) Publish(_ context.Context, subject string, _ any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subjects = append(b.subjects, subject)
	return b.err
}

func (b *recordingBroadcaster) Close() error { return nil }

func meta(block uint64, logIndex uint, hash string) fetcher.LogMeta {
	return fetcher.LogMeta{BlockNumber: block, LogIndex: logIndex, TxHash: common.HexToHash(hash)}
}

func txResult(kind fetcher.Kind, typ store.TransactionType, hash string) outcome {
	return outcome{res: &processor.Result{
		Kind:    kind,
		Outcome: processor.OutcomeProcessed,
		Safe:    safeA,
		Transaction: &store.Transaction{
			ID:          common.HexToHash(hash),
			Type:        typ,
			SafeAddress: safeA,
			AmountToken: eure,
			Amount:      decimal.NewFromInt(10),
			AmountUSD:   decimal.NewFromInt(11),
		},
		WeekReward:  &store.WeekCashbackReward{NetUSDVolume: decimal.NewFromInt(11)},
		WeekMetrics: &store.WeekMetricsSnapshot{ID: "2025-01-05", NetUSDVolume: decimal.NewFromInt(11)},
	}}
}

type harness struct {
	indexer     *Indexer
	store       *store.Store
	cursor      *cursor.Cursor
	source      *fakeSource
	processor   *fakeProcessor
	broadcaster *recordingBroadcaster
}

func newHarness(t *testing.T, cfg Config, head uint64) *harness {
	t.Helper()

	h := &harness{
		store:       storetest.New(t),
		cursor:      cursor.New(100, 10),
		source:      &fakeSource{},
		processor:   &fakeProcessor{outcomes: make(map[common.Hash]outcome)},
		broadcaster: &recordingBroadcaster{},
	}

	if cfg.LeaseTTL == 0 {
		cfg.LeaseTTL = time.Minute
	}
	if cfg.Tokens == nil {
		cfg.Tokens = testTokens
	}

	idx, err := New(cfg, h.store, h.cursor, &fakeWatcher{cursor: h.cursor, head: head},
		h.source, h.processor, h.broadcaster, logger.NewNopLogger())
	require.NoError(t, err)
	h.indexer = idx

	return h
}

func (h *harness) start(t *testing.T) (context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.indexer.Run(ctx) }()

	t.Cleanup(cancel)
	return cancel, done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("indexer did not stop")
		return nil
	}
}

func TestIndexer_Run(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Config{StartBlock: 100}, 300)

	h.source.events = []fetcher.Event{
		&fetcher.SpendEvent{LogMeta: meta(150, 0, "0x01")},
		&fetcher.RefundEvent{LogMeta: meta(160, 2, "0x02")},
		&fetcher.SpendEvent{LogMeta: meta(170, 1, "0x03")},
		&fetcher.RewardDistributionEvent{LogMeta: meta(250, 0, "0x04")},
		&fetcher.GnoTransferEvent{LogMeta: meta(260, 3, "0x05")},
		&fetcher.OgNftClaimEvent{LogMeta: meta(270, 0, "0x06")},
	}

	h.processor.outcomes[common.HexToHash("0x01")] = txResult(fetcher.KindSpend, store.TransactionSpend, "0x01")
	h.processor.outcomes[common.HexToHash("0x02")] = txResult(fetcher.KindRefund, store.TransactionRefund, "0x02")
	h.processor.outcomes[common.HexToHash("0x03")] = outcome{err: &processor.ProcessError{
		Code: processor.CodeAlreadyProcessed, Kind: fetcher.KindSpend, Err: errors.New("transaction exists"),
	}}
	h.processor.outcomes[common.HexToHash("0x04")] = outcome{res: &processor.Result{
		Kind:       fetcher.KindRewardDistribution,
		Outcome:    processor.OutcomeProcessed,
		RewardWeek: "2025-01-05",
	}}
	h.processor.outcomes[common.HexToHash("0x06")] = outcome{err: &processor.ProcessError{
		Code: processor.CodeConsistency, Kind: fetcher.KindOgNftClaim, Err: errors.New("2 safes share the owner"),
	}}

	cancel, done := h.start(t)

	require.Eventually(t, func() bool {
		return h.indexer.Status().ToBlock == 300
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, wait(t, done), context.Canceled)

	require.Equal(t, [][2]uint64{{100, 200}, {201, 300}}, h.source.ranges)

	require.Equal(t, []common.Hash{
		common.HexToHash("0x01"), common.HexToHash("0x02"), common.HexToHash("0x03"),
		common.HexToHash("0x04"), common.HexToHash("0x05"), common.HexToHash("0x06"),
	}, h.processor.processed)

	require.Equal(t, [][]intcommon.WeekID{{"2025-01-05"}}, h.processor.reconciled)

	require.Equal(t, []string{
		broadcast.SubjectTransactionNew, broadcast.SubjectSpendNew, broadcast.SubjectWeekMetricsUpdated,
		broadcast.SubjectTransactionNew, broadcast.SubjectRefundNew, broadcast.SubjectWeekMetricsUpdated,
	}, h.broadcaster.subjects)

	tokens, err := h.store.ListTokens()
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	// the lease is released on shutdown
	require.NoError(t, h.store.AcquireLease(context.Background(), "other", time.Minute, time.Now()))
}

func TestIndexer_Maintain(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Config{StartBlock: 100}, 300)
	require.Zero(t, h.indexer.maintain(), "no path, no measurement")

	var path string
	require.NoError(t, h.store.DB().QueryRow(
		"SELECT file FROM pragma_database_list WHERE name = 'main'").Scan(&path))
	require.NotEmpty(t, path)

	h.indexer.cfg.DBPath = path
	require.Positive(t, h.indexer.maintain())

	h.indexer.cfg.DBPath = path + ".missing"
	require.Zero(t, h.indexer.maintain())
}

func TestIndexer_PublishFailuresDoNotStopIndexing(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Config{StartBlock: 100}, 150)
	h.broadcaster.err = errors.New("nats: connection closed")
	h.source.events = []fetcher.Event{&fetcher.SpendEvent{LogMeta: meta(120, 0, "0x01")}}
	h.processor.outcomes[common.HexToHash("0x01")] = txResult(fetcher.KindSpend, store.TransactionSpend, "0x01")

	cancel, done := h.start(t)

	require.Eventually(t, func() bool {
		return h.indexer.Status().ToBlock == 150
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, wait(t, done), context.Canceled)
	require.Len(t, h.broadcaster.subjects, 3)
}

func TestIndexer_FetchFailureStopsIndexing(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Config{StartBlock: 100}, 300)
	fetchErr := errors.New("retry budget exhausted")
	h.source.err = fetchErr

	_, done := h.start(t)

	err := wait(t, done)
	require.ErrorIs(t, err, fetchErr)
	require.ErrorContains(t, err, "failed to fetch logs for blocks [100, 200]")

	// the cursor did not advance past the failed range
	require.Equal(t, uint64(99), h.indexer.Status().ToBlock)
}

func TestIndexer_LeaseHeldByAnotherInstance(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Config{StartBlock: 100}, 300)
	require.NoError(t, h.store.AcquireLease(context.Background(), "other", time.Minute, time.Now()))

	_, done := h.start(t)

	require.ErrorIs(t, wait(t, done), store.ErrLeaseHeld)
	require.Empty(t, h.source.ranges)
}

func TestIndexer_LostLeaseStopsIndexing(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Config{StartBlock: 100, LeaseTTL: 30 * time.Millisecond}, 150)

	_, done := h.start(t)

	require.Eventually(t, func() bool {
		return h.indexer.Status().ToBlock == 150
	}, 5*time.Second, 10*time.Millisecond)

	// another instance takes over after our lease expired
	require.NoError(t, h.store.AcquireLease(context.Background(), "other", time.Hour, time.Now().Add(time.Hour)))

	require.ErrorIs(t, wait(t, done), store.ErrLeaseHeld)
}

func TestIndexer_Bootstrap(t *testing.T) {
	t.Parallel()

	insertTx := func(t *testing.T, s *store.Store, block uint64) {
		t.Helper()

		_, err := s.SeedTokens(testTokens)
		require.NoError(t, err)
		_, err = s.EnsureSafe(safeA, 1)
		require.NoError(t, err)
		require.NoError(t, s.InsertTransaction(&store.Transaction{
			ID:            common.HexToHash("0xaa"),
			Type:          store.TransactionSpend,
			BlockNumber:   block,
			WeekID:        "2025-01-05",
			SafeAddress:   safeA,
			AmountToken:   eure,
			AmountRaw:     big.NewInt(1),
			GnoBalanceRaw: big.NewInt(0),
		}))
	}

	tests := []struct {
		name       string
		cfg        Config
		storedTxAt uint64
		expected   uint64
		wiped      bool
	}{
		{name: "fresh start wipes aggregates", cfg: Config{StartBlock: 100}, storedTxAt: 500, expected: 100, wiped: true},
		{name: "resume from high-water mark", cfg: Config{Resume: true, StartBlock: 100}, storedTxAt: 500, expected: 499},
		{name: "resume never goes below start block", cfg: Config{Resume: true, StartBlock: 600}, storedTxAt: 500,
			expected: 600},
		{name: "resume with empty store", cfg: Config{Resume: true, StartBlock: 100}, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, tt.cfg, 1000)
			if tt.storedTxAt > 0 {
				insertTx(t, h.store, tt.storedTxAt)
			}

			from, err := h.indexer.bootstrap(context.Background())
			require.NoError(t, err)
			require.Equal(t, tt.expected, from)

			exists, err := h.store.TransactionExists(common.HexToHash("0xaa"))
			require.NoError(t, err)
			require.Equal(t, tt.storedTxAt > 0 && !tt.wiped, exists)

			tokens, err := h.store.ListTokens()
			require.NoError(t, err)
			require.Len(t, tokens, 1)
		})
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	st := storetest.New(t)
	cur := cursor.New(10, 1)
	w := &fakeWatcher{cursor: cur}
	src := &fakeSource{}
	proc := &fakeProcessor{}
	cfg := Config{LeaseTTL: time.Minute}

	tests := []struct {
		name string
		err  string
		new  func() (*Indexer, error)
	}{
		{"no store", "store is required", func() (*Indexer, error) { return New(cfg, nil, cur, w, src, proc, nil, nil) }},
		{"no cursor", "cursor is required", func() (*Indexer, error) { return New(cfg, st, nil, w, src, proc, nil, nil) }},
		{"no watcher", "head watcher is required", func() (*Indexer, error) {
			return New(cfg, st, cur, nil, src, proc, nil, nil)
		}},
		{"no source", "event source is required", func() (*Indexer, error) {
			return New(cfg, st, cur, w, nil, proc, nil, nil)
		}},
		{"no processor", "processor is required", func() (*Indexer, error) {
			return New(cfg, st, cur, w, src, nil, nil, nil)
		}},
		{"no lease ttl", "lease ttl must be positive", func() (*Indexer, error) {
			return New(Config{}, st, cur, w, src, proc, nil, nil)
		}},
	}

	for _, tt := range tests {
		_, err := tt.new()
		require.ErrorContains(t, err, tt.err, tt.name)
	}

	idx, err := New(cfg, st, cur, w, src, proc, nil, nil)
	require.NoError(t, err)
	require.IsType(t, broadcast.Noop{}, idx.broadcaster)
	require.NotEmpty(t, idx.HolderID())
}

func TestVerifyChainID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		node    uint64
		nodeErr error
		wantErr string
	}{
		{name: "same chain", node: 100},
		{name: "other chain", node: 1, wantErr: "node serves chain 1, configured chain_id is 100"},
		{name: "node unreachable", nodeErr: errors.New("connection refused"), wantErr: "failed to read chain id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := rpcmocks.NewEthClient(t)
			client.EXPECT().ChainID(mock.Anything).Return(tt.node, tt.nodeErr).Once()

			err := VerifyChainID(context.Background(), client, config.GnosisChainID)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRegistryTokens(t *testing.T) {
	t.Parallel()

	tokens := RegistryTokens([]config.TokenConfig{
		{Address: "0xcB444e90D8198415266c6a2724b7900fb12FC56E", Symbol: "EURe", Name: "Monerium EURe", Decimals: 18,
			Oracle: "0xab70BCB260073d036d1660201e9d5405F5829b7a"},
		{Address: "0x2a22f9c3b484c3629090FeED35F17Ff8F88f76F0", Symbol: "USDC.e", Name: "Bridged USDC", Decimals: 6},
	}, 100)

	require.Len(t, tokens, 2)
	require.Equal(t, eure, tokens[0].Address)
	require.Equal(t, uint64(100), tokens[0].ChainID)
	require.NotNil(t, tokens[0].OracleAddress)
	require.Equal(t, common.HexToAddress("0xab70BCB260073d036d1660201e9d5405F5829b7a"), *tokens[0].OracleAddress)
	require.Nil(t, tokens[1].OracleAddress)
	require.Equal(t, uint8(6), tokens[1].Decimals)
}
