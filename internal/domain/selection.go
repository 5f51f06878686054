package domain

import "time"

// RandomSource is the subset of *math/rand/v2.Rand the selection code uses.
type RandomSource interface {
	Float64() float64
	IntN(n int) int
}

// Engine picks one index out of a pool. It holds no per-call state; the
// previous index for sequential selection is supplied by the caller.
type Engine struct {
	method   SelectionMethod
	ledger   *RecencyLedger
	cooldown int
	rng      RandomSource
}

func NewEngine(method SelectionMethod, ledger *RecencyLedger, cooldownMinutes int, rng RandomSource) *Engine {
	if ledger == nil {
		ledger = NewRecencyLedger(0, false)
	}

	return &Engine{
		method:   ParseSelectionMethod(string(method)),
		ledger:   ledger,
		cooldown: cooldownMinutes,
		rng:      rng,
	}
}

func (e *Engine) Method() SelectionMethod {
	return e.method
}

// Select returns an index into pool, or -1 when the pool is empty. Any
// selected URL is recorded in the ledger when tracking is enabled.
func (e *Engine) Select(pool []ImageDescriptor, lastIndex int, now time.Time) int {
	selected := e.pick(pool, lastIndex, now)
	if selected >= 0 && e.ledger.Enabled() {
		e.ledger.Record(pool[selected].URL, now)
	}

	return selected
}

func (e *Engine) pick(pool []ImageDescriptor, lastIndex int, now time.Time) int {
	switch len(pool) {
	case 0:
		return -1
	case 1:
		return 0
	}

	switch e.method {
	case SelectionPureRandom:
		return e.pureRandom(len(pool))
	case SelectionSequential:
		return sequentialNext(lastIndex, len(pool))
	default:
		return e.weightedRandom(pool, now)
	}
}

func (e *Engine) pureRandom(n int) int {
	return e.rng.IntN(n)
}

func (e *Engine) weightedRandom(pool []ImageDescriptor, now time.Time) int {
	weights := make([]float64, len(pool))
	total := 0.0
	for i, image := range pool {
		weights[i] = e.ledger.WeightFor(image.URL, now, e.cooldown)
		total += weights[i]
	}

	if total == 0 {
		return e.pureRandom(len(pool))
	}

	r := e.rng.Float64() * total
	cumulative := 0.0
	for i, weight := range weights {
		cumulative += weight
		if cumulative >= r {
			return i
		}
	}

	// float drift left r above the final cumulative sum
	return len(pool) - 1
}

func sequentialNext(lastIndex, n int) int {
	if lastIndex < 0 {
		lastIndex = -1
	}
	return (lastIndex + 1) % n
}
