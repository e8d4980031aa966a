package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"

	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
)

const (
	// GnosisChainID is the chain id of Gnosis Chain.
	GnosisChainID = 100

	// DefaultMulticallAddress is the Multicall3 deployment shared by most EVM chains.
	DefaultMulticallAddress = "0xcA11bde05977b3631167028862bE2a173976CA11"

	// DefaultGNOTokenAddress is the GNO token on Gnosis Chain.
	DefaultGNOTokenAddress = "0x9C58BAcC331c9aa871AFD802DB6379a98e80CEdb"

	RewardFormulaStepped      = "stepped"
	RewardFormulaInterpolated = "interpolated"
)

// Config represents the complete configuration for the indexer.
type Config struct {
	// RPC contains the blockchain RPC endpoints
	RPC RPCConfig `yaml:"rpc" json:"rpc" toml:"rpc"`

	// DB contains the aggregate store database configuration
	DB DatabaseConfig `yaml:"db" json:"db" toml:"db"`

	// Indexer contains the block cursor and fetch configuration
	Indexer IndexerConfig `yaml:"indexer" json:"indexer" toml:"indexer"`

	// Contracts contains the addresses of the contracts whose logs are indexed
	Contracts ContractsConfig `yaml:"contracts" json:"contracts" toml:"contracts"`

	// Tokens overrides the default payment token registry
	Tokens []TokenConfig `yaml:"tokens,omitempty" json:"tokens,omitempty" toml:"tokens,omitempty"`

	// Rewards selects the cashback reward formula
	Rewards RewardsConfig `yaml:"rewards" json:"rewards" toml:"rewards"`

	// Logging contains logging configuration
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" toml:"logging,omitempty"`

	// Metrics contains Prometheus metrics configuration
	Metrics *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty" toml:"metrics,omitempty"`

	// API contains the read API configuration
	API *APIConfig `yaml:"api,omitempty" json:"api,omitempty" toml:"api,omitempty"`

	// NATS contains the real-time publish configuration
	NATS *NATSConfig `yaml:"nats,omitempty" json:"nats,omitempty" toml:"nats,omitempty"`

	// Redis contains the token price cache configuration
	Redis *RedisConfig `yaml:"redis,omitempty" json:"redis,omitempty" toml:"redis,omitempty"`
}

// RPCConfig represents the blockchain RPC configuration.
type RPCConfig struct {
	// HTTPURL is the JSON-RPC HTTP endpoint
	HTTPURL string `yaml:"http_url" json:"http_url" toml:"http_url"`

	// WSURL is the optional WebSocket endpoint used to subscribe to new heads.
	// When empty the latest block is polled over HTTP.
	WSURL string `yaml:"ws_url,omitempty" json:"ws_url,omitempty" toml:"ws_url,omitempty"`

	// RequestsPerSecond limits the outgoing RPC request rate (0 = unlimited)
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" toml:"requests_per_second"`

	// Burst is the number of requests allowed to exceed the rate momentarily
	Burst int `yaml:"burst" json:"burst" toml:"burst"`

	// Retry contains RPC retry configuration with exponential backoff
	Retry *RetryConfig `yaml:"retry,omitempty" json:"retry,omitempty" toml:"retry,omitempty"`
}

// ApplyDefaults sets default values for optional RPC configuration fields.
func (r *RPCConfig) ApplyDefaults() {
	if r.RequestsPerSecond > 0 && r.Burst == 0 {
		r.Burst = int(r.RequestsPerSecond)
		if r.Burst < 1 {
			r.Burst = 1
		}
	}

	if r.Retry != nil {
		r.Retry.ApplyDefaults()
	}
}

// Validate checks if the RPC configuration is valid.
func (r *RPCConfig) Validate() error {
	if r.HTTPURL == "" {
		return fmt.Errorf("rpc.http_url is required")
	}
	if r.WSURL != "" && !strings.HasPrefix(r.WSURL, "ws://") && !strings.HasPrefix(r.WSURL, "wss://") {
		return fmt.Errorf("rpc.ws_url must start with ws:// or wss://")
	}
	if r.RequestsPerSecond < 0 {
		return fmt.Errorf("rpc.requests_per_second must not be negative")
	}
	return nil
}

// RetryConfig represents RPC retry configuration with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial request)
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts"`

	// InitialBackoff is the initial backoff duration before first retry
	InitialBackoff intcommon.Duration `yaml:"initial_backoff" json:"initial_backoff" toml:"initial_backoff"`

	// MaxBackoff is the maximum backoff duration
	MaxBackoff intcommon.Duration `yaml:"max_backoff" json:"max_backoff" toml:"max_backoff"`

	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64 `yaml:"backoff_multiplier" json:"backoff_multiplier" toml:"backoff_multiplier"`
}

// ApplyDefaults sets default values for retry configuration.
func (r *RetryConfig) ApplyDefaults() {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 5
	}
	if r.InitialBackoff.Duration == 0 {
		r.InitialBackoff = intcommon.NewDuration(1 * time.Second)
	}
	if r.MaxBackoff.Duration == 0 {
		r.MaxBackoff = intcommon.NewDuration(30 * time.Second) //nolint:mnd
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = 2.0
	}
}

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	// Path is the file path to the SQLite database
	Path string `yaml:"path" json:"path" toml:"path"`

	// JournalMode sets the SQLite journal mode (e.g., "WAL", "DELETE")
	// WAL mode is recommended for better concurrency
	JournalMode string `yaml:"journal_mode" json:"journal_mode" toml:"journal_mode"`

	// Synchronous sets the synchronization level ("FULL", "NORMAL", "OFF")
	Synchronous string `yaml:"synchronous" json:"synchronous" toml:"synchronous"`

	// BusyTimeout is the time in milliseconds to wait when the database is locked
	BusyTimeout int `yaml:"busy_timeout" json:"busy_timeout" toml:"busy_timeout"`

	// CacheSize is the size of the page cache (negative = KB, positive = pages)
	CacheSize int `yaml:"cache_size" json:"cache_size" toml:"cache_size"`

	// MaxOpenConnections is the maximum number of open database connections
	MaxOpenConnections int `yaml:"max_open_connections" json:"max_open_connections" toml:"max_open_connections"`

	// MaxIdleConnections is the maximum number of idle connections in the pool
	MaxIdleConnections int `yaml:"max_idle_connections" json:"max_idle_connections" toml:"max_idle_connections"`
}

// ApplyDefaults sets default values for optional database configuration fields.
func (d *DatabaseConfig) ApplyDefaults() {
	if d.JournalMode == "" {
		d.JournalMode = "WAL"
	}
	if d.Synchronous == "" {
		d.Synchronous = "NORMAL"
	}
	if d.BusyTimeout == 0 {
		d.BusyTimeout = 5000
	}
	if d.CacheSize == 0 {
		d.CacheSize = 10000
	}
	if d.MaxOpenConnections == 0 {
		d.MaxOpenConnections = 25
	}
	if d.MaxIdleConnections == 0 {
		d.MaxIdleConnections = 5
	}
}

// Validate checks if the database configuration is valid.
func (d *DatabaseConfig) Validate() error {
	if d.Path == "" {
		return fmt.Errorf("db.path is required")
	}
	if d.JournalMode != "" && !slices.Contains([]string{"WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY"}, d.JournalMode) {
		return fmt.Errorf("db.journal_mode must be one of: WAL, DELETE, TRUNCATE, PERSIST, MEMORY")
	}
	if d.Synchronous != "" && !slices.Contains([]string{"FULL", "NORMAL", "OFF"}, d.Synchronous) {
		return fmt.Errorf("db.synchronous must be one of: FULL, NORMAL, OFF")
	}
	return nil
}

// IndexerConfig configures the block cursor and the log fetchers.
type IndexerConfig struct {
	// Resume continues from the last persisted transaction block.
	// When false the aggregate store is wiped and indexing restarts from StartBlock.
	Resume bool `yaml:"resume" json:"resume" toml:"resume"`

	// StartBlock is the block number to start indexing from when nothing is persisted
	StartBlock uint64 `yaml:"start_block" json:"start_block" toml:"start_block"`

	// FetchBlockSize is the block range per fetch iteration
	FetchBlockSize uint64 `yaml:"fetch_block_size" json:"fetch_block_size" toml:"fetch_block_size"`

	// CooldownDistance is the distance to the chain head under which the loop waits for new blocks
	CooldownDistance uint64 `yaml:"cooldown_distance" json:"cooldown_distance" toml:"cooldown_distance"`

	// FetchRetries is the attempt budget of every log fetcher
	FetchRetries int `yaml:"fetch_retries" json:"fetch_retries" toml:"fetch_retries"`

	// FetchRetryBackoff is the base delay between fetch attempts (jittered)
	FetchRetryBackoff intcommon.Duration `yaml:"fetch_retry_backoff" json:"fetch_retry_backoff" toml:"fetch_retry_backoff"`

	// PollInterval is how often the latest block is polled when no WebSocket endpoint is set
	PollInterval intcommon.Duration `yaml:"poll_interval" json:"poll_interval" toml:"poll_interval"`

	// BlockCacheSize is the number of block headers kept in memory
	BlockCacheSize int `yaml:"block_cache_size" json:"block_cache_size" toml:"block_cache_size"`

	// LeaseTTL is how long the single-writer lease is valid without renewal
	LeaseTTL intcommon.Duration `yaml:"lease_ttl" json:"lease_ttl" toml:"lease_ttl"`

	// ChainID is recorded on seeded tokens
	ChainID uint64 `yaml:"chain_id" json:"chain_id" toml:"chain_id"`
}

// ApplyDefaults sets default values for optional indexer configuration fields.
func (i *IndexerConfig) ApplyDefaults() {
	if i.FetchBlockSize == 0 {
		i.FetchBlockSize = 1000
	}
	if i.CooldownDistance == 0 {
		i.CooldownDistance = 10
	}
	if i.FetchRetries == 0 {
		i.FetchRetries = 30
	}
	if i.FetchRetryBackoff.Duration == 0 {
		i.FetchRetryBackoff = intcommon.NewDuration(500 * time.Millisecond) //nolint:mnd
	}
	if i.PollInterval.Duration == 0 {
		i.PollInterval = intcommon.NewDuration(5 * time.Second) //nolint:mnd
	}
	if i.BlockCacheSize == 0 {
		i.BlockCacheSize = 10000
	}
	if i.LeaseTTL.Duration == 0 {
		i.LeaseTTL = intcommon.NewDuration(time.Minute)
	}
	if i.ChainID == 0 {
		i.ChainID = GnosisChainID
	}
}

// Validate checks if the indexer configuration is valid.
func (i *IndexerConfig) Validate() error {
	if i.FetchRetries < 1 {
		return fmt.Errorf("indexer.fetch_retries must be at least 1")
	}
	if i.BlockCacheSize < 0 {
		return fmt.Errorf("indexer.block_cache_size must not be negative")
	}
	return nil
}

// ContractsConfig holds the addresses of the indexed contracts.
type ContractsConfig struct {
	// Spender is the spender module emitting Spend events
	Spender string `yaml:"spender" json:"spender" toml:"spender"`

	// SpendReceiver is the settlement address receiving card spends; refunds are transfers from it
	SpendReceiver string `yaml:"spend_receiver" json:"spend_receiver" toml:"spend_receiver"`

	// GNOToken is the GNO ERC-20 token
	GNOToken string `yaml:"gno_token" json:"gno_token" toml:"gno_token"`

	// RewardsDistributor is the Safe paying out cashback rewards
	RewardsDistributor string `yaml:"rewards_distributor" json:"rewards_distributor" toml:"rewards_distributor"`

	// OGNFT is the ERC-721 collection granting the OG reward boost
	OGNFT string `yaml:"og_nft" json:"og_nft" toml:"og_nft"`

	// Multicall is the Multicall3 contract used for batched reads
	Multicall string `yaml:"multicall" json:"multicall" toml:"multicall"`

	// DelayModuleCodeHashes restricts the Safe heuristic to modules with these code hashes.
	// When empty any module whose avatar is the address is accepted.
	DelayModuleCodeHashes []string `yaml:"delay_module_code_hashes,omitempty" json:"delay_module_code_hashes,omitempty" toml:"delay_module_code_hashes,omitempty"` //nolint:lll
}

// ApplyDefaults sets default values for optional contract addresses.
func (c *ContractsConfig) ApplyDefaults() {
	if c.GNOToken == "" {
		c.GNOToken = DefaultGNOTokenAddress
	}
	if c.Multicall == "" {
		c.Multicall = DefaultMulticallAddress
	}
}

// Validate checks that all contract addresses are present and well-formed.
func (c *ContractsConfig) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"spender", c.Spender},
		{"spend_receiver", c.SpendReceiver},
		{"gno_token", c.GNOToken},
		{"rewards_distributor", c.RewardsDistributor},
		{"og_nft", c.OGNFT},
		{"multicall", c.Multicall},
	}

	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("contracts.%s is required", r.name)
		}
		if !common.IsHexAddress(r.value) {
			return fmt.Errorf("contracts.%s: invalid address %q", r.name, r.value)
		}
	}

	for i, h := range c.DelayModuleCodeHashes {
		if !intcommon.IsHexHash(h) {
			return fmt.Errorf("contracts.delay_module_code_hashes[%d]: invalid hash %q", i, h)
		}
	}

	return nil
}

// TokenConfig describes a payment token in the registry.
type TokenConfig struct {
	// Address is the ERC-20 token address
	Address string `yaml:"address" json:"address" toml:"address"`

	// Symbol is the token ticker
	Symbol string `yaml:"symbol" json:"symbol" toml:"symbol"`

	// Name is the token name
	Name string `yaml:"name" json:"name" toml:"name"`

	// Decimals is the number of token decimals
	Decimals uint8 `yaml:"decimals" json:"decimals" toml:"decimals"`

	// Oracle is the optional Chainlink price feed (token/USD). Tokens without one are priced at 1 USD.
	Oracle string `yaml:"oracle,omitempty" json:"oracle,omitempty" toml:"oracle,omitempty"`
}

// DefaultTokens is the payment token registry seeded at bootstrap.
func DefaultTokens() []TokenConfig {
	return []TokenConfig{
		{
			Address:  DefaultGNOTokenAddress,
			Symbol:   "GNO",
			Name:     "Gnosis Token on xDai",
			Decimals: 18, //nolint:mnd
			Oracle:   "0x22441d81416430A54336aB28765abd31a792Ad37",
		},
		{
			Address:  "0xcB444e90D8198415266c6a2724b7900fb12FC56E",
			Symbol:   "EURe",
			Name:     "Monerium EUR emoney",
			Decimals: 18, //nolint:mnd
			Oracle:   "0xab70BCB260073d036d1660201e9d5405F5829b7a",
		},
		{
			Address:  "0x5Cb9073902F2035222B9749F8fB0c9BFe5527108",
			Symbol:   "GBPe",
			Name:     "Monerium GBP emoney",
			Decimals: 18, //nolint:mnd
		},
		{
			Address:  "0x2a22f9c3b484c3629090FeED35F17Ff8F88f76F0",
			Symbol:   "USDC.e",
			Name:     "Bridged USDC (Gnosis)",
			Decimals: 6, //nolint:mnd
		},
	}
}

func validateTokens(tokens []TokenConfig) error {
	seen := make(map[string]struct{}, len(tokens))
	for i, t := range tokens {
		if !common.IsHexAddress(t.Address) {
			return fmt.Errorf("tokens[%d]: invalid address %q", i, t.Address)
		}
		if t.Symbol == "" {
			return fmt.Errorf("tokens[%d]: symbol is required", i)
		}
		if t.Oracle != "" && !common.IsHexAddress(t.Oracle) {
			return fmt.Errorf("tokens[%d] (%s): invalid oracle address %q", i, t.Symbol, t.Oracle)
		}
		key := strings.ToLower(t.Address)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("tokens[%d]: duplicate token %s", i, t.Address)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// RewardsConfig selects the cashback reward formula.
type RewardsConfig struct {
	// Formula is "stepped" (default) or "interpolated"
	Formula string `yaml:"formula" json:"formula" toml:"formula"`

	// MaxWindowUSDVolume zeroes the reward once the trailing 4-week USD volume exceeds it (0 = disabled)
	MaxWindowUSDVolume float64 `yaml:"max_window_usd_volume" json:"max_window_usd_volume" toml:"max_window_usd_volume"`
}

// ApplyDefaults sets default values for optional rewards configuration fields.
func (r *RewardsConfig) ApplyDefaults() {
	if r.Formula == "" {
		r.Formula = RewardFormulaStepped
	}
}

// Validate checks if the rewards configuration is valid.
func (r *RewardsConfig) Validate() error {
	if r.Formula != RewardFormulaStepped && r.Formula != RewardFormulaInterpolated {
		return fmt.Errorf("rewards.formula must be one of: stepped, interpolated")
	}
	if r.MaxWindowUSDVolume < 0 {
		return fmt.Errorf("rewards.max_window_usd_volume must not be negative")
	}
	return nil
}

// LoggingConfig configures logging behavior with per-component log levels.
type LoggingConfig struct {
	// DefaultLevel is the default log level for all components
	// Options: "debug", "info", "warn", "error"
	DefaultLevel string `yaml:"default_level" json:"default_level" toml:"default_level"`

	// Development enables development mode (stack traces, console encoder)
	Development bool `yaml:"development" json:"development" toml:"development"`

	// FilePath mirrors every log line to this file in addition to stderr
	FilePath string `yaml:"file_path,omitempty" json:"file_path,omitempty" toml:"file_path,omitempty"`

	// ComponentLevels sets log levels for specific components
	// Available components:
	//   - indexer: Orchestration loop and bootstrap
	//   - cursor: Block range state machine
	//   - block-watch: Chain head subscription
	//   - log-fetcher: Event log fetching
	//   - processor: Log processors
	//   - store: Aggregate store
	//   - chain-reader: Contract reads (balances, oracles, Safes)
	//   - broadcaster: Real-time publish
	//   - price-cache: Token price cache
	//   - lease: Single-writer lease
	//   - api: Read API
	ComponentLevels map[string]string `yaml:"component_levels,omitempty" json:"component_levels,omitempty" toml:"component_levels,omitempty"` //nolint:lll
}

// ApplyDefaults sets default values for optional logging configuration fields.
func (l *LoggingConfig) ApplyDefaults() {
	if l.DefaultLevel == "" {
		l.DefaultLevel = "info"
	}
	if l.ComponentLevels == nil {
		l.ComponentLevels = make(map[string]string)
	}
}

// Validate checks if the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	if l.DefaultLevel != "" {
		if _, valid := logger.ValidLogLevels[intcommon.ToLowerWithTrim(l.DefaultLevel)]; !valid {
			return fmt.Errorf("logging.default_level: must be one of: debug, info, warn, error")
		}
	}

	for component, level := range l.ComponentLevels {
		if _, validComponent := intcommon.AllComponents[intcommon.ToLowerWithTrim(component)]; !validComponent {
			return fmt.Errorf("logging.component_levels: unknown component '%s'", component)
		}

		if _, valid := logger.ValidLogLevels[intcommon.ToLowerWithTrim(level)]; !valid {
			return fmt.Errorf("logging.component_levels[%s]: must be one of: debug, info, warn, error", component)
		}
	}

	return nil
}

// GetComponentLevel returns the log level for a specific component.
// Falls back to DefaultLevel if no component-specific level is set.
func (l *LoggingConfig) GetComponentLevel(component string) string {
	if level, ok := l.ComponentLevels[component]; ok {
		return intcommon.ToLowerWithTrim(level)
	}
	return intcommon.ToLowerWithTrim(l.DefaultLevel)
}

// GetDefaultLevel returns the default log level.
func (l *LoggingConfig) GetDefaultLevel() string {
	return intcommon.ToLowerWithTrim(l.DefaultLevel)
}

// IsDevelopment returns whether development mode is enabled.
func (l *LoggingConfig) IsDevelopment() bool {
	return l.Development
}

// GetFilePath returns the persistent log file path, if any.
func (l *LoggingConfig) GetFilePath() string {
	return l.FilePath
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP endpoint are active
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the metrics HTTP server to
	// Format: "host:port" or ":port"
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// Path is the HTTP path where metrics are exposed
	Path string `yaml:"path" json:"path" toml:"path"`
}

// ApplyDefaults sets default values for optional metrics configuration fields.
func (m *MetricsConfig) ApplyDefaults() {
	if m.ListenAddress == "" {
		m.ListenAddress = ":9090"
	}
	if m.Path == "" {
		m.Path = "/metrics"
	}
}

// Validate checks if the metrics configuration is valid.
func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.ListenAddress == "" {
			return fmt.Errorf("listen_address is required when metrics are enabled")
		}
		if m.Path == "" {
			return fmt.Errorf("path is required when metrics are enabled")
		}
		if m.Path[0] != '/' {
			return fmt.Errorf("path must start with '/'")
		}
	}
	return nil
}

// APIConfig configures the read API HTTP server.
type APIConfig struct {
	// Enabled controls whether the API server is started
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the API server to (host:port)
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request
	ReadTimeout intcommon.Duration `yaml:"read_timeout" json:"read_timeout" toml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response
	WriteTimeout intcommon.Duration `yaml:"write_timeout" json:"write_timeout" toml:"write_timeout"`

	// IdleTimeout is the maximum keep-alive idle duration
	IdleTimeout intcommon.Duration `yaml:"idle_timeout" json:"idle_timeout" toml:"idle_timeout"`

	// PriceCacheTTL is how long token prices served by the API are cached
	PriceCacheTTL intcommon.Duration `yaml:"price_cache_ttl" json:"price_cache_ttl" toml:"price_cache_ttl"`

	// CORS contains cross-origin settings
	CORS CORSConfig `yaml:"cors" json:"cors" toml:"cors"`
}

// CORSConfig configures cross-origin resource sharing.
type CORSConfig struct {
	// Enabled turns on the CORS middleware
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// AllowedOrigins lists allowed origins; "*" allows any
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" toml:"allowed_origins"`
}

// ApplyDefaults sets default values for optional API configuration fields.
func (a *APIConfig) ApplyDefaults() {
	if a.ListenAddress == "" {
		a.ListenAddress = ":8080"
	}
	if a.ReadTimeout.Duration == 0 {
		a.ReadTimeout = intcommon.NewDuration(15 * time.Second) //nolint:mnd
	}
	if a.WriteTimeout.Duration == 0 {
		a.WriteTimeout = intcommon.NewDuration(30 * time.Second) //nolint:mnd
	}
	if a.IdleTimeout.Duration == 0 {
		a.IdleTimeout = intcommon.NewDuration(60 * time.Second) //nolint:mnd
	}
	if a.PriceCacheTTL.Duration == 0 {
		a.PriceCacheTTL = intcommon.NewDuration(time.Minute)
	}
	if a.CORS.Enabled && len(a.CORS.AllowedOrigins) == 0 {
		a.CORS.AllowedOrigins = []string{"*"}
	}
}

// Validate checks if the API configuration is valid.
func (a *APIConfig) Validate() error {
	if a.Enabled && a.ListenAddress == "" {
		return fmt.Errorf("listen_address is required when the API is enabled")
	}
	return nil
}

// NATSConfig configures the real-time event publisher.
type NATSConfig struct {
	// URL is the NATS server URL; publishing is disabled when empty
	URL string `yaml:"url" json:"url" toml:"url"`

	// SubjectPrefix is prepended to every published subject
	SubjectPrefix string `yaml:"subject_prefix" json:"subject_prefix" toml:"subject_prefix"`

	// ConnectTimeout bounds the initial connection
	ConnectTimeout intcommon.Duration `yaml:"connect_timeout" json:"connect_timeout" toml:"connect_timeout"`
}

// ApplyDefaults sets default values for optional NATS configuration fields.
func (n *NATSConfig) ApplyDefaults() {
	if n.SubjectPrefix == "" {
		n.SubjectPrefix = "gnosispay"
	}
	if n.ConnectTimeout.Duration == 0 {
		n.ConnectTimeout = intcommon.NewDuration(5 * time.Second) //nolint:mnd
	}
}

// RedisConfig configures the shared token price cache.
type RedisConfig struct {
	// Addr is the Redis address (host:port); the in-process cache is used when empty
	Addr string `yaml:"addr" json:"addr" toml:"addr"`

	// Password is the optional Redis password
	Password string `yaml:"password,omitempty" json:"password,omitempty" toml:"password,omitempty"`

	// DB is the Redis database index
	DB int `yaml:"db" json:"db" toml:"db"`

	// KeyPrefix namespaces cache keys
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix" toml:"key_prefix"`
}

// ApplyDefaults sets default values for optional Redis configuration fields.
func (r *RedisConfig) ApplyDefaults() {
	if r.KeyPrefix == "" {
		r.KeyPrefix = "gnosispay:"
	}
}

// TokenRegistry returns the configured tokens, or the default registry when none are configured.
func (c *Config) TokenRegistry() []TokenConfig {
	if len(c.Tokens) > 0 {
		return c.Tokens
	}
	return DefaultTokens()
}

// ApplyDefaults sets default values for optional configuration fields.
func (c *Config) ApplyDefaults() {
	c.RPC.ApplyDefaults()
	c.DB.ApplyDefaults()
	c.Indexer.ApplyDefaults()
	c.Contracts.ApplyDefaults()
	c.Rewards.ApplyDefaults()

	if c.Logging != nil {
		c.Logging.ApplyDefaults()
	}

	if c.Metrics != nil {
		c.Metrics.ApplyDefaults()
	}

	if c.API != nil {
		c.API.ApplyDefaults()
	}

	if c.NATS != nil {
		c.NATS.ApplyDefaults()
	}

	if c.Redis != nil {
		c.Redis.ApplyDefaults()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.RPC.Validate(); err != nil {
		return err
	}

	if err := c.DB.Validate(); err != nil {
		return err
	}

	if err := c.Indexer.Validate(); err != nil {
		return err
	}

	if err := c.Contracts.Validate(); err != nil {
		return err
	}

	if err := validateTokens(c.Tokens); err != nil {
		return err
	}

	if err := c.Rewards.Validate(); err != nil {
		return err
	}

	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return err
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	if c.API != nil {
		if err := c.API.Validate(); err != nil {
			return fmt.Errorf("api: %w", err)
		}
	}

	return nil
}
