package domain

import "time"

// RewardBand is one step of the reward-for-score table. Scores at or above
// Threshold earn Amount (6-decimal stablecoin units) unless a higher band
// matched first.
type RewardBand struct {
	Threshold int    `yaml:"threshold"`
	Amount    int64  `yaml:"amount"`
	Label     string `yaml:"label"`
}

// CacheTuning holds the per-category staleness windows and the retry
// policy of the orchestrator. Every value is configuration, not a
// hardcoded constant.
type CacheTuning struct {
	ShortWindow   time.Duration
	MediumWindow  time.Duration
	LongWindow    time.Duration
	RetryAttempts int
	RetryBase     time.Duration
	RetryMax      time.Duration
}

// Window returns the staleness window for a category.
func (t CacheTuning) Window(c QueryCategory) time.Duration {
	switch c {
	case CategoryShort:
		return t.ShortWindow
	case CategoryLong:
		return t.LongWindow
	default:
		return t.MediumWindow
	}
}

// Paging controls batch chain reads.
type Paging struct {
	PageSize    int
	ChunkSize   int
	ChunkDelay  time.Duration
	ScanCeiling int64         // proposal probe fallback when the contract count read fails
}

// Tuning is the runtime knob set passed down to the data layer.
type Tuning struct {
	Cache   CacheTuning
	Paging  Paging
	Rewards []RewardBand
}

// DefaultTuning mirrors the documented defaults: short ~30s, medium ~90s,
// long ~5m windows; three retries with 500ms base backoff; reward bands
// excellent/high/good/standard.
func DefaultTuning() Tuning {
	return Tuning{
		Cache: CacheTuning{
			ShortWindow:   30 * time.Second,
			MediumWindow:  90 * time.Second,
			LongWindow:    5 * time.Minute,
			RetryAttempts: 3,
			RetryBase:     500 * time.Millisecond,
			RetryMax:      10 * time.Second,
		},
		Paging: Paging{
			PageSize:    12,
			ChunkSize:   10,
			ChunkDelay:  200 * time.Millisecond,
			ScanCeiling: 20,
		},
		Rewards: []RewardBand{
			{Threshold: 90, Amount: 100_000_000, Label: "excellent"},
			{Threshold: 80, Amount: 75_000_000, Label: "high"},
			{Threshold: 70, Amount: 50_000_000, Label: "good"},
			{Threshold: 0, Amount: 25_000_000, Label: "standard"},
		},
	}
}
