package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/mmwall/internal/domain"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

func mockAnyContext() interface{} {
	return mock.Anything
}

// sequenceRand always draws zero.
type sequenceRand struct{}

func (sequenceRand) Float64() float64 { return 0 }
func (sequenceRand) IntN(int) int     { return 0 }

func numberedImages(n int) []domain.ImageDescriptor {
	out := make([]domain.ImageDescriptor, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.ImageDescriptor{URL: fmt.Sprintf("https://img.example/%03d.jpg", i)})
	}
	return out
}

func sequentialConfig() domain.Config {
	cfg := domain.DefaultConfig()
	cfg.EnhancedShuffle = false
	cfg.RotatingPools = false
	cfg.PoolSize = 100
	return cfg
}

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppingClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryState is an in-memory state repository.
type memoryState struct {
	mu    sync.Mutex
	state *domain.SlideshowState
	saves int
}

func (m *memoryState) Load(context.Context) (domain.SlideshowState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return domain.SlideshowState{}, domain.ErrStateNotFound
	}
	return *m.state, nil
}

func (m *memoryState) Save(_ context.Context, state domain.SlideshowState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &state
	m.saves++
	return nil
}

type staticSource struct {
	mu     sync.Mutex
	images []domain.ImageDescriptor
	loads  int
}

func (s *staticSource) Load(context.Context) ([]domain.ImageDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return append([]domain.ImageDescriptor{}, s.images...), nil
}

func (s *staticSource) set(images []domain.ImageDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = images
}

func (s *staticSource) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}
