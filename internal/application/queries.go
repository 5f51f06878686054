package application

import (
	"time"

	"github.com/bnema/mmwall/internal/domain"
)

// Result is one step of the slideshow as seen by callers. Index is -1 when
// there is nothing to display.
type Result struct {
	Index       int
	URL         string
	Caption     string
	Variants    []domain.Variant
	FromHistory bool
	Fallback    bool
	PoolSize    int
	At          time.Time
}

func (r Result) Empty() bool {
	return r.Index < 0
}

type LedgerEntry struct {
	URL     string
	ShownAt time.Time
	Weight  float64
}

type LedgerStatus struct {
	Enabled         bool
	Persisted       bool
	Capacity        int
	CooldownMinutes int
	Entries         []LedgerEntry
}

type HistoryStatus struct {
	Entries        []domain.NavigationEntry
	Cursor         int
	CanStepBack    bool
	CanStepForward bool
}

type Status struct {
	Now            time.Time
	Method         domain.SelectionMethod
	CollectionSize int
	PoolSize       int
	Rotating       bool
	RotationHours  float64
	Window         domain.PoolWindow
	NextRotation   time.Time
	Current        Result
	History        HistoryStatus
	Ledger         LedgerStatus
}

type RefreshResult struct {
	Received int
	Accepted int
	Changed  bool
}

type PoolView struct {
	At             time.Time
	CollectionSize int
	Window         domain.PoolWindow
	Images         []domain.ImageDescriptor
}
