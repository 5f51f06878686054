package domain

import "time"

type RecencyEntry struct {
	URL     string
	ShownAt time.Time
}

// RecencyLedger keeps the most recently shown URLs, newest first, with at
// most one entry per URL.
type RecencyLedger struct {
	entries  []RecencyEntry
	capacity int
	enabled  bool
}

func NewRecencyLedger(capacity int, enabled bool) *RecencyLedger {
	if capacity < 0 {
		capacity = 0
	}
	return &RecencyLedger{capacity: capacity, enabled: enabled}
}

func (l *RecencyLedger) Enabled() bool {
	return l.enabled
}

func (l *RecencyLedger) Capacity() int {
	return l.capacity
}

func (l *RecencyLedger) Len() int {
	return len(l.entries)
}

// Record moves url to the front with shownAt = now and evicts the oldest
// entries beyond capacity.
func (l *RecencyLedger) Record(url string, now time.Time) {
	entries := make([]RecencyEntry, 0, len(l.entries)+1)
	entries = append(entries, RecencyEntry{URL: url, ShownAt: now})
	for _, entry := range l.entries {
		if entry.URL == url {
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) > l.capacity {
		entries = entries[:l.capacity]
	}

	l.entries = entries
}

// WeightFor returns the repetition penalty for url. Inside the cooldown the
// weight ramps linearly from 0 to 0.1; it jumps to 1 once the cooldown has
// elapsed.
func (l *RecencyLedger) WeightFor(url string, now time.Time, cooldownMinutes int) float64 {
	const baseWeight = 1.0

	if !l.enabled {
		return baseWeight
	}

	entry, ok := l.lookup(url)
	if !ok {
		return baseWeight
	}

	elapsedMinutes := float64(now.Sub(entry.ShownAt).Milliseconds()) / 60000
	if elapsedMinutes < 0 {
		elapsedMinutes = 0
	}
	cooldown := float64(cooldownMinutes)
	if elapsedMinutes >= cooldown {
		return baseWeight
	}

	return baseWeight * (elapsedMinutes / cooldown) * 0.1
}

// Entries returns a copy of the ledger, newest first.
func (l *RecencyLedger) Entries() []RecencyEntry {
	out := make([]RecencyEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Restore replaces the ledger contents, keeping the newest-first order of
// entries, dropping duplicate URLs and trimming to capacity.
func (l *RecencyLedger) Restore(entries []RecencyEntry) {
	l.entries = nil
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].URL == "" {
			continue
		}
		l.Record(entries[i].URL, entries[i].ShownAt)
	}
}

func (l *RecencyLedger) Reset() {
	l.entries = nil
}

func (l *RecencyLedger) lookup(url string) (RecencyEntry, bool) {
	for _, entry := range l.entries {
		if entry.URL == url {
			return entry, true
		}
	}
	return RecencyEntry{}, false
}
