package domain

import "time"

type SelectionEvent struct {
	Index       int
	URL         string
	Method      SelectionMethod
	FromHistory bool
	Fallback    bool
	PoolSize    int
	Tracked     int
	At          time.Time
}

type PoolEvent struct {
	Window         PoolWindow
	PoolSize       int
	CollectionSize int
	At             time.Time
}

type CollectionEvent struct {
	Received int
	Accepted int
	Changed  bool
	At       time.Time
}

// Observer receives core events. Implementations must not call back into
// the core.
type Observer interface {
	ImageSelected(SelectionEvent)
	PoolRotated(PoolEvent)
	CollectionReplaced(CollectionEvent)
}

type NopObserver struct{}

func (NopObserver) ImageSelected(SelectionEvent)       {}
func (NopObserver) PoolRotated(PoolEvent)              {}
func (NopObserver) CollectionReplaced(CollectionEvent) {}
