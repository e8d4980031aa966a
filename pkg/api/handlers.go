package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/cursor"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/pricecache"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/rewards"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
)

const (
	healthCheckTimeout = 2 * time.Second

	defaultTransactionLimit = 50
	maxTransactionLimit     = 500
)

// StatusProvider reports the indexing position.
type StatusProvider interface {
	Status() cursor.Snapshot
}

// PriceProvider returns the latest USD prices of the token registry.
type PriceProvider interface {
	TokenPrices(ctx context.Context) ([]pricecache.TokenPrice, error)
}

// Dependencies are the collaborators the API reads from.
type Dependencies struct {
	Store      *store.Store
	Status     StatusProvider
	Prices     PriceProvider
	Calculator *rewards.Calculator
	// GNOToken is the token whose price override reprices rewards.
	GNOToken common.Address
}

// Handler handles HTTP requests for the API.
type Handler struct {
	store      *store.Store
	status     StatusProvider
	prices     PriceProvider
	calculator *rewards.Calculator
	gnoToken   common.Address
	log        *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(deps Dependencies, log *logger.Logger) *Handler {
	return &Handler{
		store:      deps.Store,
		status:     deps.Status,
		prices:     deps.Prices,
		calculator: deps.Calculator,
		gnoToken:   deps.GNOToken,
		log:        log,
	}
}

// Health returns the health status of the indexer.
// @Summary Health check
// @Description Check the database connection and report the indexing cursor
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} HealthResponse "Database is unreachable"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Database:  "ok",
	}
	if h.status != nil {
		snapshot := h.status.Status()
		response.Cursor = &snapshot
	}

	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		h.log.Warnw("health check database ping failed", "error", err)
		response.Status = "unhealthy"
		response.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, response)
}

// ListWeeks returns the indexed weeks.
// @Summary List indexed weeks
// @Description Get every indexed week with its chain-wide net USD volume, newest first
// @Tags Weeks
// @Produce json
// @Success 200 {array} WeekResponse "Indexed weeks"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /weeks [get]
func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.store.ListWeekMetrics()
	if err != nil {
		h.log.Errorf("Failed to list weeks: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list weeks")
		return
	}

	response := make([]WeekResponse, 0, len(weeks))
	for _, m := range weeks {
		response = append(response, WeekResponse{
			WeekID:           m.ID,
			NetUSDVolume:     m.NetUSDVolume,
			TransactionCount: m.TransactionCount,
		})
	}

	respondJSON(w, http.StatusOK, response)
}

// GetWeekRewards returns the reward preview of a week.
// @Summary Preview week rewards
// @Description Recompute the cashback of every Safe active in a week, optionally excluding transactions and overriding token USD prices
// @Tags Weeks
// @Produce json
// @Param week path string true "Week id (YYYY-MM-DD, a Sunday)"
// @Param exclude query string false "Comma separated transaction ids to leave out"
// @Param price query string false "Comma separated <token>:<usd> price overrides"
// @Success 200 {object} WeekRewardsResponse "Reward preview"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /weeks/{week}/rewards [get]
func (h *Handler) GetWeekRewards(w http.ResponseWriter, r *http.Request) {
	params, err := parsePreviewParams(r.PathValue("week"), r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	response, err := h.previewWeek(params)
	if err != nil {
		h.log.Errorf("Failed to preview rewards of week %s: %v", params.week, err)
		respondError(w, http.StatusInternalServerError, "failed to compute week rewards")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetTokenPrices returns the latest oracle prices of the token registry.
// @Summary Token prices
// @Description Get the USD price of every registry token at the latest block, cached for one minute
// @Tags Tokens
// @Produce json
// @Success 200 {array} TokenPriceResponse "Token prices"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /token-prices [get]
func (h *Handler) GetTokenPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.prices.TokenPrices(r.Context())
	if err != nil {
		h.log.Errorf("Failed to get token prices: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to get token prices")
		return
	}

	response := make([]TokenPriceResponse, 0, len(prices))
	for _, p := range prices {
		response = append(response, TokenPriceResponse{
			Address:     p.Address,
			Symbol:      p.Symbol,
			PriceUSD:    p.PriceUSD,
			BlockNumber: p.BlockNumber,
		})
	}

	respondJSON(w, http.StatusOK, response)
}

// GetSafe returns a Safe with its weekly rewards and recent transactions.
// @Summary Get a Safe
// @Description Get a Gnosis Pay Safe with its owners, weekly rewards and most recent transactions
// @Tags Safes
// @Produce json
// @Param address path string true "Safe address"
// @Param limit query int false "Maximum number of transactions to return" default(50)
// @Success 200 {object} SafeResponse "Safe details"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 404 {object} ErrorResponse "Safe not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /safes/{address} [get]
func (h *Handler) GetSafe(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if !intcommon.IsHexAddress(address) {
		respondError(w, http.StatusBadRequest, "invalid safe address")
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	addr := common.HexToAddress(address)
	safe, err := h.store.GetSafe(addr)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "safe not found")
		return
	}
	if err != nil {
		h.log.Errorf("Failed to get safe %s: %v", address, err)
		respondError(w, http.StatusInternalServerError, "failed to get safe")
		return
	}

	weeks, err := h.store.ListSafeWeekRewards(addr)
	if err != nil {
		h.log.Errorf("Failed to list week rewards of safe %s: %v", address, err)
		respondError(w, http.StatusInternalServerError, "failed to get safe")
		return
	}

	txs, err := h.store.ListTransactionsBySafe(addr, limit)
	if err != nil {
		h.log.Errorf("Failed to list transactions of safe %s: %v", address, err)
		respondError(w, http.StatusInternalServerError, "failed to get safe")
		return
	}

	respondJSON(w, http.StatusOK, newSafeResponse(safe, weeks, txs))
}

// GetSafeWeek returns the reward row of a Safe in one week with its transactions,
// balance snapshots and payouts.
// @Summary Get a Safe week
// @Description Get the reward row of a Safe in one week with the transactions, GNO balance snapshots and payouts behind it
// @Tags Safes
// @Produce json
// @Param address path string true "Safe address"
// @Param week path string true "Week id (YYYY-MM-DD, a Sunday)"
// @Success 200 {object} SafeWeekDetailResponse "Safe week"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 404 {object} ErrorResponse "No activity of the Safe in the week"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /safes/{address}/weeks/{week} [get]
func (h *Handler) GetSafeWeek(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if !intcommon.IsHexAddress(address) {
		respondError(w, http.StatusBadRequest, "invalid safe address")
		return
	}
	week, err := intcommon.ParseWeekID(r.PathValue("week"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	addr := common.HexToAddress(address)
	row, err := h.store.GetWeekReward(week, addr)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "no activity of the safe in this week")
		return
	}
	if err != nil {
		h.log.Errorf("Failed to get week %s of safe %s: %v", week, address, err)
		respondError(w, http.StatusInternalServerError, "failed to get safe week")
		return
	}

	txs, err := h.store.ListTransactionsBySafeWeek(addr, week)
	if err != nil {
		h.log.Errorf("Failed to list transactions of safe %s in week %s: %v", address, week, err)
		respondError(w, http.StatusInternalServerError, "failed to get safe week")
		return
	}

	snapshots, err := h.store.ListSnapshotsBySafeWeek(addr, week)
	if err != nil {
		h.log.Errorf("Failed to list snapshots of safe %s in week %s: %v", address, week, err)
		respondError(w, http.StatusInternalServerError, "failed to get safe week")
		return
	}

	payouts, err := h.store.ListDistributionsByRewardWeek(week)
	if err != nil {
		h.log.Errorf("Failed to list distributions of week %s: %v", week, err)
		respondError(w, http.StatusInternalServerError, "failed to get safe week")
		return
	}

	response := SafeWeekDetailResponse{
		SafeAddress:      intcommon.NormalizeAddress(addr),
		SafeWeekResponse: newSafeWeekResponse(row),
		Transactions:     make([]TransactionResponse, 0, len(txs)),
		Snapshots:        make([]SnapshotResponse, 0, len(snapshots)),
		Distributions:    []DistributionResponse{},
	}
	for _, tx := range txs {
		response.Transactions = append(response.Transactions, newTransactionResponse(tx))
	}
	for _, s := range snapshots {
		response.Snapshots = append(response.Snapshots, SnapshotResponse{
			BlockNumber:    s.BlockNumber,
			BlockTimestamp: s.BlockTimestamp,
			Balance:        s.Balance,
		})
	}
	for _, d := range payouts {
		if d.SafeAddress == addr {
			response.Distributions = append(response.Distributions, newDistributionResponse(d))
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// ListWeekDistributions returns the payouts made for a week.
// @Summary List week payouts
// @Description Get the on-chain cashback payouts credited to a week, in chain order
// @Tags Weeks
// @Produce json
// @Param week path string true "Week id (YYYY-MM-DD, a Sunday)"
// @Success 200 {array} DistributionResponse "Payouts"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /weeks/{week}/distributions [get]
func (h *Handler) ListWeekDistributions(w http.ResponseWriter, r *http.Request) {
	week, err := intcommon.ParseWeekID(r.PathValue("week"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	payouts, err := h.store.ListDistributionsByRewardWeek(week)
	if err != nil {
		h.log.Errorf("Failed to list distributions of week %s: %v", week, err)
		respondError(w, http.StatusInternalServerError, "failed to list distributions")
		return
	}

	response := make([]DistributionResponse, 0, len(payouts))
	for _, d := range payouts {
		response = append(response, newDistributionResponse(d))
	}

	respondJSON(w, http.StatusOK, response)
}

// GetTransaction returns a processed Spend or Refund.
// @Summary Get a transaction
// @Description Get a processed Spend or Refund by transaction hash
// @Tags Transactions
// @Produce json
// @Param id path string true "Transaction hash"
// @Success 200 {object} TransactionResponse "Transaction"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /transactions/{id} [get]
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !intcommon.IsHexHash(id) {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	tx, err := h.store.GetTransaction(common.HexToHash(id))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		h.log.Errorf("Failed to get transaction %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}

	respondJSON(w, http.StatusOK, newTransactionResponse(tx))
}

func parseLimit(value string) (int, error) {
	if value == "" {
		return defaultTransactionLimit, nil
	}

	limit, err := strconv.Atoi(value)
	if err != nil || limit < 1 || limit > maxTransactionLimit {
		return 0, errors.New("limit must be an integer between 1 and 500")
	}
	return limit, nil
}

func newSafeResponse(safe *store.Safe, weeks []*store.WeekCashbackReward, txs []*store.Transaction) SafeResponse {
	response := SafeResponse{
		Address:         intcommon.NormalizeAddress(safe.Address),
		Owners:          make([]string, 0, len(safe.Owners)),
		IsOgNftHolder:   safe.IsOgNftHolder,
		NetUSDVolume:    safe.NetUSDVolume,
		GnoBalance:      safe.GnoBalance,
		GnoBalanceBlock: safe.GnoBalanceBlock,
		FirstSeenBlock:  safe.FirstSeenBlock,
		Weeks:           make([]SafeWeekResponse, 0, len(weeks)),
		Transactions:    make([]TransactionResponse, 0, len(txs)),
	}

	for _, owner := range safe.Owners {
		response.Owners = append(response.Owners, intcommon.NormalizeAddress(owner))
	}

	for _, wk := range weeks {
		response.Weeks = append(response.Weeks, newSafeWeekResponse(wk))
	}

	for _, tx := range txs {
		response.Transactions = append(response.Transactions, newTransactionResponse(tx))
	}

	return response
}

func newSafeWeekResponse(wk *store.WeekCashbackReward) SafeWeekResponse {
	return SafeWeekResponse{
		WeekID:           wk.WeekID,
		NetUSDVolume:     wk.NetUSDVolume,
		CarriedUSDVolume: wk.CarriedUSDVolume,
		MinGnoBalance:    wk.MinGnoBalance,
		MaxGnoBalance:    wk.MaxGnoBalance,
		EstimatedReward:  wk.EstimatedReward,
		EarnedReward:     wk.EarnedReward,
	}
}

func newTransactionResponse(tx *store.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             tx.ID.Hex(),
		SafeAddress:    intcommon.NormalizeAddress(tx.SafeAddress),
		Type:           string(tx.Type),
		BlockNumber:    tx.BlockNumber,
		BlockTimestamp: tx.BlockTimestamp,
		WeekID:         tx.WeekID,
		AmountToken:    intcommon.NormalizeAddress(tx.AmountToken),
		Amount:         tx.Amount,
		AmountUSD:      tx.AmountUSD,
		GnoBalance:     tx.GnoBalance,
		GnoUSDPrice:    tx.GnoUSDPrice,
	}
}

func newDistributionResponse(d *store.RewardDistribution) DistributionResponse {
	return DistributionResponse{
		ID:           d.ID.Hex(),
		SafeAddress:  intcommon.NormalizeAddress(d.SafeAddress),
		BlockNumber:  d.BlockNumber,
		WeekID:       d.WeekID,
		RewardWeekID: d.RewardWeekID,
		Amount:       d.Amount,
	}
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")

	// Encode JSON first to catch any errors before writing status
	encoded, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)

	// Headers already sent, a failed write can only be dropped
	_, _ = w.Write(encoded)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	respondJSON(w, status, response)
}
