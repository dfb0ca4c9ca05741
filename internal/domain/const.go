package domain

// QueryCategory selects the staleness window for a cache key. The windows
// are deliberately distinct per category: review queues churn in tens of
// seconds, confirmed metadata barely moves.
type QueryCategory int

const (
	CategoryShort QueryCategory = iota
	CategoryMedium
	CategoryLong
)

func (c QueryCategory) String() string {
	switch c {
	case CategoryShort:
		return "short"
	case CategoryMedium:
		return "medium"
	case CategoryLong:
		return "long"
	default:
		return "unknown"
	}
}

// Well-known cache key prefixes. Keys are composed as prefix + ":" + args
// so a whole family can be invalidated after a write confirms.
const (
	KeyPapers        = "papers"
	KeyPaper         = "paper"
	KeyPaperOwner    = "paper-owner"
	KeyVerifications = "verifications"
	KeyTotalSupply   = "total-supply"
	KeyProposals     = "proposals"
	KeyProposal      = "proposal"
	KeyVerifier      = "verifier"
	KeyBalance       = "balance"
	KeyMetadata      = "metadata"
)

// EntryState is the lifecycle of one cache key in the orchestrator.
type EntryState int

const (
	EntryEmpty EntryState = iota
	EntryFetching
	EntryFresh
	EntryStale
	EntryError
)

func (s EntryState) String() string {
	switch s {
	case EntryEmpty:
		return "Empty"
	case EntryFetching:
		return "Fetching"
	case EntryFresh:
		return "Fresh"
	case EntryStale:
		return "Stale"
	case EntryError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Redis channel carrying cache-invalidation signals between instances.
const InvalidationChannel = "paperview:invalidate"
