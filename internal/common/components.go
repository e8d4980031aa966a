package common

const (
	ComponentIndexer     = "indexer"
	ComponentCursor      = "cursor"
	ComponentBlockWatch  = "block-watch"
	ComponentLogFetcher  = "log-fetcher"
	ComponentProcessor   = "processor"
	ComponentStore       = "store"
	ComponentChainReader = "chain-reader"
	ComponentBroadcaster = "broadcaster"
	ComponentPriceCache  = "price-cache"
	ComponentLease       = "lease"
	ComponentAPI         = "api"
)

var AllComponents = map[string]struct{}{
	ComponentIndexer:     {},
	ComponentCursor:      {},
	ComponentBlockWatch:  {},
	ComponentLogFetcher:  {},
	ComponentProcessor:   {},
	ComponentStore:       {},
	ComponentChainReader: {},
	ComponentBroadcaster: {},
	ComponentPriceCache:  {},
	ComponentLease:       {},
	ComponentAPI:         {},
}
