package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineEmptyPoolReturnsMinusOne(t *testing.T) {
	t.Parallel()

	for _, method := range []SelectionMethod{SelectionWeightedRandom, SelectionPureRandom, SelectionSequential} {
		engine := NewEngine(method, NewRecencyLedger(10, true), 10, &scriptedRand{})
		assert.Equal(t, -1, engine.Select(nil, 3, testNow), string(method))
	}
}

func TestEngineSingleElementPoolAlwaysReturnsZero(t *testing.T) {
	t.Parallel()

	for _, method := range []SelectionMethod{SelectionWeightedRandom, SelectionPureRandom, SelectionSequential, "bogus"} {
		rng := &scriptedRand{floats: []float64{0.99}, ints: []int{5}}
		ledger := NewRecencyLedger(10, true)
		engine := NewEngine(method, ledger, 10, rng)

		for i := 0; i < 3; i++ {
			assert.Equal(t, 0, engine.Select(images("only"), 7, testNow), string(method))
		}
		assert.Empty(t, rng.intN, "single element pools need no randomness")
		assert.Equal(t, 1, ledger.Len())
	}
}

func TestEngineSequentialWrapsAround(t *testing.T) {
	t.Parallel()

	engine := NewEngine(SelectionSequential, NewRecencyLedger(10, true), 10, &scriptedRand{})
	pool := images("a", "b", "c")

	assert.Equal(t, 0, engine.Select(pool, -1, testNow))
	assert.Equal(t, 2, engine.Select(pool, 1, testNow))
	assert.Equal(t, 0, engine.Select(pool, 2, testNow))
}

func TestEnginePureRandomUsesUniformDraw(t *testing.T) {
	t.Parallel()

	rng := &scriptedRand{ints: []int{2}}
	engine := NewEngine(SelectionPureRandom, NewRecencyLedger(10, true), 10, rng)

	assert.Equal(t, 2, engine.Select(images("a", "b", "c", "d"), 0, testNow))
	assert.Equal(t, []int{4}, rng.intN)
}

func TestEngineWeightedRandomScenario(t *testing.T) {
	t.Parallel()

	ledger := NewRecencyLedger(2, true)
	rng := &scriptedRand{floats: []float64{0, 0.25}}
	engine := NewEngine(SelectionWeightedRandom, ledger, 10, rng)
	pool := images("A", "B", "C")

	first := engine.Select(pool, -1, testNow)
	assert.Equal(t, 0, first)

	assert.InDelta(t, 0, ledger.WeightFor("A", testNow, 10), 1e-9)
	assert.Equal(t, 1.0, ledger.WeightFor("B", testNow, 10))
	assert.Equal(t, 1.0, ledger.WeightFor("C", testNow, 10))

	// total is 2.0, so 0.25 * 2.0 = 0.5 lands inside the band of B (0, 1]
	second := engine.Select(pool, first, testNow)
	assert.Equal(t, 1, second)
	assert.Equal(t, []string{"B", "A"}, entryURLs(ledger.Entries()))
}

func TestEngineWeightedRandomFallsBackWhenAllSuppressed(t *testing.T) {
	t.Parallel()

	ledger := NewRecencyLedger(10, true)
	pool := images("a", "b", "c")
	for _, image := range pool {
		ledger.Record(image.URL, testNow)
	}

	rng := &scriptedRand{ints: []int{1}}
	engine := NewEngine(SelectionWeightedRandom, ledger, 10, rng)

	got := engine.Select(pool, 0, testNow)
	assert.Equal(t, 1, got)
	assert.Equal(t, []int{3}, rng.intN)
}

func TestEngineWeightedRandomStaysLiveUnderFullSuppression(t *testing.T) {
	t.Parallel()

	pool := numberedImages(6)
	for draw := 0; draw < 12; draw++ {
		ledger := NewRecencyLedger(10, true)
		for _, image := range pool {
			ledger.Record(image.URL, testNow)
		}
		engine := NewEngine(SelectionWeightedRandom, ledger, 10, &scriptedRand{ints: []int{draw}})

		got := engine.Select(pool, -1, testNow)
		require.GreaterOrEqual(t, got, 0)
		require.Less(t, got, len(pool))
	}
}

func TestEngineWeightedRandomResolvesDriftToLastIndex(t *testing.T) {
	t.Parallel()

	// a draw above 1.0 pushes r past the cumulative total
	engine := NewEngine(SelectionWeightedRandom, NewRecencyLedger(10, true), 10, &scriptedRand{floats: []float64{1.5}})

	assert.Equal(t, 2, engine.Select(images("a", "b", "c"), -1, testNow))
}

func TestEngineWeightedRandomPrefersCooledDownImages(t *testing.T) {
	t.Parallel()

	ledger := NewRecencyLedger(10, true)
	ledger.Record("a", testNow.Add(-5*time.Minute))
	engine := NewEngine(SelectionWeightedRandom, ledger, 10, &scriptedRand{floats: []float64{0.02}})

	// weights are a=0.05, b=1; r = 0.02 * 1.05 = 0.021 falls in a's band
	assert.Equal(t, 0, engine.Select(images("a", "b"), -1, testNow))
}

func TestEngineDoesNotRecordWhenTrackingDisabled(t *testing.T) {
	t.Parallel()

	ledger := NewRecencyLedger(10, false)
	engine := NewEngine(SelectionSequential, ledger, 10, &scriptedRand{})

	engine.Select(images("a", "b"), -1, testNow)
	assert.Zero(t, ledger.Len())
}

func TestParseSelectionMethodDefaultsToWeightedRandom(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SelectionPureRandom, ParseSelectionMethod("pure_random"))
	assert.Equal(t, SelectionSequential, ParseSelectionMethod(" Sequential "))
	assert.Equal(t, SelectionWeightedRandom, ParseSelectionMethod("shuffle"))
	assert.Equal(t, SelectionWeightedRandom, ParseSelectionMethod(""))
}
