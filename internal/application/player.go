package application

import (
	"context"
	"time"
)

// Player ticks a slideshow: every slide interval it advances to the next
// image and every update interval it refreshes the collection. A zero
// interval disables that ticker.
type Player struct {
	service        *SlideshowService
	slideInterval  time.Duration
	updateInterval time.Duration
	onError        func(error)
}

func NewPlayer(service *SlideshowService, slideInterval, updateInterval time.Duration, onError func(error)) *Player {
	if onError == nil {
		onError = func(error) {}
	}
	return &Player{
		service:        service,
		slideInterval:  slideInterval,
		updateInterval: updateInterval,
		onError:        onError,
	}
}

// Run shows the first image immediately and blocks until ctx is done.
func (p *Player) Run(ctx context.Context) error {
	if _, err := p.service.Next(ctx); err != nil {
		p.onError(err)
	}

	slides := tickerChan(p.slideInterval)
	updates := tickerChan(p.updateInterval)
	defer slides.stop()
	defer updates.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-slides.c:
			if _, err := p.service.Next(ctx); err != nil {
				p.onError(err)
			}
		case <-updates.c:
			if _, err := p.service.Refresh(ctx); err != nil {
				p.onError(err)
			}
		}
	}
}

type optionalTicker struct {
	ticker *time.Ticker
	c      <-chan time.Time
}

func tickerChan(interval time.Duration) optionalTicker {
	if interval <= 0 {
		return optionalTicker{}
	}
	ticker := time.NewTicker(interval)
	return optionalTicker{ticker: ticker, c: ticker.C}
}

func (t optionalTicker) stop() {
	if t.ticker != nil {
		t.ticker.Stop()
	}
}
