package domain

import "time"

// Selection is the outcome of one navigation step. Index is -1 when there is
// nothing to display.
type Selection struct {
	Index       int
	URL         string
	Image       ImageDescriptor
	FromHistory bool
	Fallback    bool
}

func (s Selection) Empty() bool {
	return s.Index < 0
}

type CoreOption func(*SelectionCore)

func WithObserver(observer Observer) CoreOption {
	return func(c *SelectionCore) {
		if observer != nil {
			c.observer = observer
		}
	}
}

// SelectionCore owns the recency ledger, the navigation history and the
// active pool of one slideshow. It is not safe for concurrent use; callers
// serialise ticks.
type SelectionCore struct {
	cfg      Config
	rng      RandomSource
	observer Observer

	ledger  *RecencyLedger
	history *NavigationHistory
	engine  *Engine

	collection   []ImageDescriptor
	collectionFP string

	pool        []ImageDescriptor
	window      PoolWindow
	poolValid   bool
	pendingPool []string

	current int
}

func NewSelectionCore(cfg Config, rng RandomSource, opts ...CoreOption) *SelectionCore {
	ledger := NewRecencyLedger(cfg.RecentlyShownCount, cfg.RecentlyShownTracking)
	c := &SelectionCore{
		cfg:      cfg,
		rng:      rng,
		observer: NopObserver{},
		ledger:   ledger,
		history:  NewNavigationHistory(cfg.HistorySize),
		engine:   NewEngine(cfg.EffectiveMethod(), ledger, cfg.RecentlyShownCooldown, rng),
		current:  -1,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *SelectionCore) Config() Config {
	return c.cfg
}

// SetCollection replaces the backing collection. When its content differs
// from the previous collection the pool is recomputed on the next tick and
// the navigation history is cleared. It reports whether the content changed.
func (c *SelectionCore) SetCollection(images []ImageDescriptor, now time.Time) bool {
	normalized := NormalizeCollection(images, c.cfg.MaximumEntries)
	fingerprint := CollectionFingerprint(normalized)
	changed := fingerprint != c.collectionFP

	c.collection = normalized
	c.collectionFP = fingerprint

	if changed {
		c.invalidatePool()
		c.history.Reset()
		c.current = -1
	} else if c.pendingPool != nil {
		c.resolvePendingPool()
	}
	c.pendingPool = nil

	c.observer.CollectionReplaced(CollectionEvent{
		Received: len(images),
		Accepted: len(normalized),
		Changed:  changed,
		At:       now,
	})

	return changed
}

func (c *SelectionCore) CollectionSize() int {
	return len(c.collection)
}

// Collection returns a copy of the normalised backing collection.
func (c *SelectionCore) Collection() []ImageDescriptor {
	out := make([]ImageDescriptor, len(c.collection))
	copy(out, c.collection)
	return out
}

// SelectNext replays forward history when the cursor is behind the frontier
// and otherwise asks the engine for a fresh pick.
func (c *SelectionCore) SelectNext(now time.Time) Selection {
	c.ensurePool(now)
	if len(c.pool) == 0 {
		return Selection{Index: -1}
	}

	index, fromHistory := c.history.StepForwardOrNew(func() int {
		return c.engine.Select(c.pool, c.current, now)
	})

	var selection Selection
	if fromHistory {
		entry, _ := c.history.Current()
		selection = c.selectionAt(index, entry.URL)
		selection.FromHistory = true
	} else {
		selection = c.selectionAt(index, "")
		if index >= 0 {
			c.history.Record(index, selection.URL, now)
		}
	}

	c.current = selection.Index
	c.notifySelected(selection, now)

	return selection
}

// SelectPrevious steps back through history. Without history behind the
// cursor it wraps sequentially; that fallback is recorded nowhere.
func (c *SelectionCore) SelectPrevious(now time.Time) Selection {
	c.ensurePool(now)
	if len(c.pool) == 0 {
		return Selection{Index: -1}
	}

	var selection Selection
	if index := c.history.StepBack(); index >= 0 {
		entry, _ := c.history.Current()
		selection = c.selectionAt(index, entry.URL)
		selection.FromHistory = true
	} else {
		n := len(c.pool)
		previous := n - 1
		if c.current >= 0 {
			previous = (c.current - 1 + n) % n
		}
		selection = c.selectionAt(previous, "")
		selection.Fallback = true
	}

	c.current = selection.Index
	c.notifySelected(selection, now)

	return selection
}

// Current returns the selection under display without moving anything.
func (c *SelectionCore) Current() Selection {
	return c.selectionAt(c.current, "")
}

// PoolStale reports whether a tick at now would recompute the pool, which
// also clears history when a rotating pool changes bucket.
func (c *SelectionCore) PoolStale(now time.Time) bool {
	if len(c.collection) == 0 {
		return false
	}
	if !c.poolValid {
		return true
	}
	return c.cfg.RotatingPools && BucketIndex(now, c.cfg.PoolRotationInterval) != c.window.Bucket
}

// Pool returns the active pool for now, recomputing it when needed.
func (c *SelectionCore) Pool(now time.Time) ([]ImageDescriptor, PoolWindow) {
	c.ensurePool(now)
	out := make([]ImageDescriptor, len(c.pool))
	copy(out, c.pool)
	return out, c.window
}

func (c *SelectionCore) LedgerEntries() []RecencyEntry {
	return c.ledger.Entries()
}

func (c *SelectionCore) LedgerCapacity() int {
	return c.ledger.Capacity()
}

func (c *SelectionCore) WeightFor(url string, now time.Time) float64 {
	return c.ledger.WeightFor(url, now, c.cfg.RecentlyShownCooldown)
}

func (c *SelectionCore) ResetLedger() {
	c.ledger.Reset()
}

func (c *SelectionCore) HistoryEntries() ([]NavigationEntry, int) {
	return c.history.Entries(), c.history.Cursor()
}

func (c *SelectionCore) CanStepBack() bool {
	return c.history.CanStepBack()
}

func (c *SelectionCore) CanStepForward() bool {
	return c.history.CanStepForward()
}

// State snapshots the core for persistence.
func (c *SelectionCore) State(now time.Time) SlideshowState {
	state := SlideshowState{
		CollectionFingerprint: c.collectionFP,
		LedgerFingerprint:     c.cfg.LedgerFingerprint(),
		PoolFingerprint:       c.cfg.PoolFingerprint(),
		PoolBucket:            c.window.Bucket,
		CurrentIndex:          c.current,
		HistoryCursor:         c.history.Cursor(),
		History:               c.history.Entries(),
		UpdatedAt:             now,
	}
	if current := c.Current(); !current.Empty() {
		state.CurrentURL = current.URL
	}
	if c.poolValid {
		state.PoolURLs = make([]string, 0, len(c.pool))
		for _, image := range c.pool {
			state.PoolURLs = append(state.PoolURLs, image.URL)
		}
	}
	if c.ledger.Enabled() {
		state.Recent = c.ledger.Entries()
	}

	return state
}

// Restore loads a snapshot taken by State. Call it before SetCollection so
// the collection fingerprint can decide whether history survives. A ledger
// recorded under different ledger options is discarded. A pool recorded under
// different pool options is discarded together with the history and current
// index that point into it.
func (c *SelectionCore) Restore(state SlideshowState) {
	c.collectionFP = state.CollectionFingerprint
	c.invalidatePool()
	c.pendingPool = nil
	c.history.Reset()
	c.current = -1

	if state.PoolFingerprint == c.cfg.PoolFingerprint() {
		c.window = PoolWindow{Bucket: state.PoolBucket}
		c.pendingPool = append([]string{}, state.PoolURLs...)
		c.history.Restore(state.History, state.HistoryCursor)
		c.current = state.CurrentIndex
	}

	c.ledger.Reset()
	if state.LedgerFingerprint == c.cfg.LedgerFingerprint() {
		c.ledger.Restore(state.Recent)
	}
}

func (c *SelectionCore) ensurePool(now time.Time) {
	if len(c.collection) == 0 {
		c.pool = nil
		return
	}

	if c.poolValid {
		if !c.cfg.RotatingPools || BucketIndex(now, c.cfg.PoolRotationInterval) == c.window.Bucket {
			return
		}
		// indices recorded against the previous pool are meaningless now
		c.history.Reset()
		c.current = -1
	}

	c.pool, c.window = RotatingPool(c.collection, now, c.cfg, c.rng)
	c.poolValid = true

	c.observer.PoolRotated(PoolEvent{
		Window:         c.window,
		PoolSize:       len(c.pool),
		CollectionSize: len(c.collection),
		At:             now,
	})
}

func (c *SelectionCore) invalidatePool() {
	c.pool = nil
	c.poolValid = false
	c.window = PoolWindow{}
}

func (c *SelectionCore) resolvePendingPool() {
	if len(c.pendingPool) == 0 {
		return
	}

	byURL := make(map[string]ImageDescriptor, len(c.collection))
	for _, image := range c.collection {
		byURL[image.URL] = image
	}

	pool := make([]ImageDescriptor, 0, len(c.pendingPool))
	for _, url := range c.pendingPool {
		image, ok := byURL[url]
		if !ok {
			c.invalidatePool()
			c.history.Reset()
			c.current = -1
			return
		}
		pool = append(pool, image)
	}

	bucket := c.window.Bucket
	c.pool = pool
	c.poolValid = true
	c.window = NewPoolWindow(len(c.collection), c.cfg.PoolSize, bucket)
	if !c.cfg.RotatingPools {
		c.window = PoolWindow{TotalBuckets: 1, End: len(pool)}
	}
}

func (c *SelectionCore) selectionAt(index int, url string) Selection {
	if index < 0 || index >= len(c.pool) {
		return Selection{Index: -1}
	}
	image := c.pool[index]
	if url == "" {
		url = image.URL
	}
	return Selection{Index: index, URL: url, Image: image}
}

func (c *SelectionCore) notifySelected(selection Selection, now time.Time) {
	if selection.Empty() {
		return
	}
	c.observer.ImageSelected(SelectionEvent{
		Index:       selection.Index,
		URL:         selection.URL,
		Method:      c.engine.Method(),
		FromHistory: selection.FromHistory,
		Fallback:    selection.Fallback,
		PoolSize:    len(c.pool),
		Tracked:     c.ledger.Len(),
		At:          now,
	})
}
