package domain

import "time"

// SlideshowState is the persisted snapshot of a SelectionCore.
type SlideshowState struct {
	CollectionFingerprint string
	LedgerFingerprint     string
	PoolFingerprint       string
	PoolBucket            int64
	PoolURLs              []string
	CurrentIndex          int
	CurrentURL            string
	Recent                []RecencyEntry
	History               []NavigationEntry
	HistoryCursor         int
	UpdatedAt             time.Time
}

// EmptyState is the state of a core that has never selected anything.
func EmptyState() SlideshowState {
	return SlideshowState{CurrentIndex: -1, HistoryCursor: -1}
}
