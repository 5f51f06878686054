package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecencyLedgerRecordMovesToFront(t *testing.T) {
	t.Parallel()

	ledger := NewRecencyLedger(5, true)
	ledger.Record("a", testNow)
	ledger.Record("b", testNow.Add(time.Minute))
	ledger.Record("a", testNow.Add(2*time.Minute))

	entries := ledger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].URL)
	assert.Equal(t, testNow.Add(2*time.Minute), entries[0].ShownAt)
	assert.Equal(t, "b", entries[1].URL)
}

func TestRecencyLedgerStaysBounded(t *testing.T) {
	t.Parallel()

	ledger := NewRecencyLedger(3, true)
	for i := 0; i < 20; i++ {
		url := fmt.Sprintf("img-%d", i%7)
		ledger.Record(url, testNow.Add(time.Duration(i)*time.Second))

		assert.LessOrEqual(t, ledger.Len(), 3)
		assert.Equal(t, url, ledger.Entries()[0].URL)
	}
}

func TestRecencyLedgerEvictsOldest(t *testing.T) {
	t.Parallel()

	ledger := NewRecencyLedger(2, true)
	ledger.Record("a", testNow)
	ledger.Record("b", testNow)
	ledger.Record("c", testNow)

	assert.Equal(t, []string{"c", "b"}, entryURLs(ledger.Entries()))
}

func TestRecencyLedgerWeightFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		enabled  bool
		record   bool
		elapsed  time.Duration
		cooldown int
		want     float64
	}{
		{name: "unknown url", enabled: true, cooldown: 10, want: 1},
		{name: "tracking disabled", enabled: false, record: true, cooldown: 10, want: 1},
		{name: "just shown", enabled: true, record: true, cooldown: 10, want: 0},
		{name: "half way", enabled: true, record: true, elapsed: 5 * time.Minute, cooldown: 10, want: 0.05},
		{name: "near boundary", enabled: true, record: true, elapsed: 9 * time.Minute, cooldown: 10, want: 0.09},
		{name: "at boundary", enabled: true, record: true, elapsed: 10 * time.Minute, cooldown: 10, want: 1},
		{name: "past boundary", enabled: true, record: true, elapsed: 3 * time.Hour, cooldown: 10, want: 1},
		{name: "zero cooldown", enabled: true, record: true, cooldown: 0, want: 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ledger := NewRecencyLedger(10, tc.enabled)
			if tc.record {
				ledger.Record("a", testNow)
			}

			assert.InDelta(t, tc.want, ledger.WeightFor("a", testNow.Add(tc.elapsed), tc.cooldown), 1e-9)
		})
	}
}

func TestRecencyLedgerWeightIsMonotonicInsideCooldown(t *testing.T) {
	t.Parallel()

	ledger := NewRecencyLedger(10, true)
	ledger.Record("a", testNow)

	previous := -1.0
	for step := 0; step <= 400; step += 7 {
		weight := ledger.WeightFor("a", testNow.Add(time.Duration(step)*time.Minute), 400)
		assert.GreaterOrEqual(t, weight, previous)
		previous = weight
	}
	assert.Equal(t, 1.0, ledger.WeightFor("a", testNow.Add(400*time.Minute), 400))
}

func TestRecencyLedgerRestoreKeepsNewestFirst(t *testing.T) {
	t.Parallel()

	ledger := NewRecencyLedger(2, true)
	ledger.Restore([]RecencyEntry{
		{URL: "c", ShownAt: testNow.Add(3 * time.Minute)},
		{URL: "b", ShownAt: testNow.Add(2 * time.Minute)},
		{URL: "", ShownAt: testNow},
		{URL: "a", ShownAt: testNow.Add(time.Minute)},
	})

	assert.Equal(t, []string{"c", "b"}, entryURLs(ledger.Entries()))

	ledger.Reset()
	assert.Zero(t, ledger.Len())
}

func entryURLs(entries []RecencyEntry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.URL)
	}
	return out
}
