package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/bnema/mmwall/internal/domain"
	"github.com/bnema/mmwall/internal/ports"
)

type Options struct {
	Config               domain.Config
	PersistRecentlyShown bool
	Rand                 domain.RandomSource
	Observer             domain.Observer
}

// SlideshowService drives one selection core. Calls are serialised; the
// core is loaded from the state repository on first use and saved after
// every step.
type SlideshowService struct {
	cfg           domain.Config
	persistLedger bool
	state         ports.StateRepository
	source        ports.CollectionSource
	clock         ports.Clock
	rng           domain.RandomSource
	observer      domain.Observer

	mu     sync.Mutex
	core   *domain.SelectionCore
	loaded RefreshResult

	listenersMu sync.RWMutex
	listeners   []chan Result
}

func NewSlideshowService(state ports.StateRepository, source ports.CollectionSource, clock ports.Clock, opts Options) (*SlideshowService, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	rng := opts.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	observer := opts.Observer
	if observer == nil {
		observer = domain.NopObserver{}
	}

	return &SlideshowService{
		cfg:           opts.Config,
		persistLedger: opts.PersistRecentlyShown,
		state:         state,
		source:        source,
		clock:         clock,
		rng:           rng,
		observer:      observer,
	}, nil
}

func (s *SlideshowService) Config() domain.Config {
	return s.cfg
}

func (s *SlideshowService) Next(ctx context.Context) (Result, error) {
	return s.step(ctx, (*domain.SelectionCore).SelectNext)
}

func (s *SlideshowService) Previous(ctx context.Context) (Result, error) {
	return s.step(ctx, (*domain.SelectionCore).SelectPrevious)
}

func (s *SlideshowService) step(ctx context.Context, move func(*domain.SelectionCore, time.Time) domain.Selection) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	core, err := s.loadCore(ctx)
	if err != nil {
		return Result{}, err
	}

	now := s.clock.Now()
	selection := move(core, now)
	if err := s.saveCore(ctx, core, now); err != nil {
		return Result{}, err
	}

	pool, _ := core.Pool(now)
	result := toResult(selection, len(pool), now)
	if !result.Empty() {
		s.publish(result)
	}

	return result, nil
}

// Refresh reloads the backing collection from the source. Changed reports
// whether it differs from the collection the saved state was built on.
func (s *SlideshowService) Refresh(ctx context.Context) (RefreshResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.core == nil {
		core, err := s.loadCore(ctx)
		if err != nil {
			return RefreshResult{}, err
		}
		if err := s.saveCore(ctx, core, s.clock.Now()); err != nil {
			return RefreshResult{}, err
		}
		return s.loaded, nil
	}

	core := s.core

	images, err := s.source.Load(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("load collection: %w", err)
	}

	now := s.clock.Now()
	changed := core.SetCollection(images, now)
	if err := s.saveCore(ctx, core, now); err != nil {
		return RefreshResult{}, err
	}

	return RefreshResult{Received: len(images), Accepted: core.CollectionSize(), Changed: changed}, nil
}

// Status describes the slideshow at the current time. It saves state only when
// the pool had to be recomputed, so a rotation it triggers is not lost.
func (s *SlideshowService) Status(ctx context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	core, err := s.loadCore(ctx)
	if err != nil {
		return Status{}, err
	}

	now := s.clock.Now()
	stale := core.PoolStale(now)
	pool, window := core.Pool(now)
	if stale {
		if err := s.saveCore(ctx, core, now); err != nil {
			return Status{}, err
		}
	}
	entries, cursor := core.HistoryEntries()

	ledger := LedgerStatus{
		Enabled:         s.cfg.RecentlyShownTracking,
		Persisted:       s.persistLedger,
		Capacity:        core.LedgerCapacity(),
		CooldownMinutes: s.cfg.RecentlyShownCooldown,
	}
	for _, entry := range core.LedgerEntries() {
		ledger.Entries = append(ledger.Entries, LedgerEntry{
			URL:     entry.URL,
			ShownAt: entry.ShownAt,
			Weight:  core.WeightFor(entry.URL, now),
		})
	}

	var nextRotation time.Time
	if s.cfg.RotatingPools && len(pool) > 0 {
		nextRotation = domain.BucketEnd(window.Bucket, s.cfg.PoolRotationInterval)
	}

	return Status{
		Now:            now,
		Method:         s.cfg.EffectiveMethod(),
		CollectionSize: core.CollectionSize(),
		PoolSize:       len(pool),
		Rotating:       s.cfg.RotatingPools,
		RotationHours:  s.cfg.PoolRotationInterval,
		Window:         window,
		NextRotation:   nextRotation,
		Current:        toResult(core.Current(), len(pool), now),
		History: HistoryStatus{
			Entries:        entries,
			Cursor:         cursor,
			CanStepBack:    core.CanStepBack(),
			CanStepForward: core.CanStepForward(),
		},
		Ledger: ledger,
	}, nil
}

// ResetLedger clears the recency ledger and reports how many entries it held.
func (s *SlideshowService) ResetLedger(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	core, err := s.loadCore(ctx)
	if err != nil {
		return 0, err
	}

	cleared := len(core.LedgerEntries())
	core.ResetLedger()
	if err := s.saveCore(ctx, core, s.clock.Now()); err != nil {
		return 0, err
	}

	return cleared, nil
}

// PoolAt previews the pool active at the given time without touching state.
func (s *SlideshowService) PoolAt(ctx context.Context, at time.Time) (PoolView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	core, err := s.loadCore(ctx)
	if err != nil {
		return PoolView{}, err
	}

	collection := core.Collection()
	images, window := domain.RotatingPool(collection, at, s.cfg, s.rng)

	return PoolView{
		At:             at,
		CollectionSize: len(collection),
		Window:         window,
		Images:         images,
	}, nil
}

// Subscribe returns a channel receiving every non-empty step result.
func (s *SlideshowService) Subscribe() chan Result {
	ch := make(chan Result, 10)
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, ch)
	s.listenersMu.Unlock()
	return ch
}

func (s *SlideshowService) Unsubscribe(ch chan Result) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	for i, listener := range s.listeners {
		if listener == ch {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

func (s *SlideshowService) publish(result Result) {
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()

	for _, listener := range s.listeners {
		select {
		case listener <- result:
		default:
		}
	}
}

func (s *SlideshowService) loadCore(ctx context.Context) (*domain.SelectionCore, error) {
	if s.core != nil {
		return s.core, nil
	}

	state, err := s.state.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrStateNotFound) {
			return nil, fmt.Errorf("load slideshow state: %w", err)
		}
		state = domain.EmptyState()
	}

	images, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}

	core := domain.NewSelectionCore(s.cfg, s.rng, domain.WithObserver(s.observer))
	core.Restore(state)
	changed := core.SetCollection(images, s.clock.Now())

	s.core = core
	s.loaded = RefreshResult{Received: len(images), Accepted: core.CollectionSize(), Changed: changed}
	return core, nil
}

func (s *SlideshowService) saveCore(ctx context.Context, core *domain.SelectionCore, now time.Time) error {
	state := core.State(now)
	if !s.persistLedger {
		state.Recent = nil
	}

	if err := s.state.Save(ctx, state); err != nil {
		return fmt.Errorf("save slideshow state: %w", err)
	}

	return nil
}

func toResult(selection domain.Selection, poolSize int, now time.Time) Result {
	if selection.Empty() {
		return Result{Index: -1, PoolSize: poolSize, At: now}
	}

	return Result{
		Index:       selection.Index,
		URL:         selection.URL,
		Caption:     selection.Image.Caption,
		Variants:    selection.Image.Variants,
		FromHistory: selection.FromHistory,
		Fallback:    selection.Fallback,
		PoolSize:    poolSize,
		At:          now,
	}
}
