package domain

import "time"

type NavigationEntry struct {
	Index      int
	URL        string
	RecordedAt time.Time
}

// NavigationHistory is a bounded browser-like history: stepping back and
// then recording a new entry discards the abandoned forward branch.
type NavigationHistory struct {
	entries []NavigationEntry
	cursor  int
	limit   int
}

func NewNavigationHistory(limit int) *NavigationHistory {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &NavigationHistory{cursor: -1, limit: limit}
}

func (h *NavigationHistory) Len() int {
	return len(h.entries)
}

// Cursor is -1 iff the history is empty.
func (h *NavigationHistory) Cursor() int {
	return h.cursor
}

func (h *NavigationHistory) CanStepBack() bool {
	return h.cursor > 0
}

func (h *NavigationHistory) CanStepForward() bool {
	return h.cursor < len(h.entries)-1
}

// Current returns the entry under the cursor.
func (h *NavigationHistory) Current() (NavigationEntry, bool) {
	if h.cursor < 0 {
		return NavigationEntry{}, false
	}
	return h.entries[h.cursor], true
}

func (h *NavigationHistory) Record(index int, url string, now time.Time) {
	if h.cursor < len(h.entries)-1 {
		h.entries = h.entries[:h.cursor+1]
	}

	h.entries = append(h.entries, NavigationEntry{Index: index, URL: url, RecordedAt: now})
	h.cursor = len(h.entries) - 1

	if len(h.entries) > h.limit {
		trimmed := len(h.entries) - h.limit
		h.entries = append([]NavigationEntry(nil), h.entries[trimmed:]...)
		h.cursor -= trimmed
	}
}

// StepBack moves the cursor one entry back and returns its index, or -1
// when there is nothing behind the cursor.
func (h *NavigationHistory) StepBack() int {
	if h.cursor <= 0 {
		return -1
	}
	h.cursor--
	return h.entries[h.cursor].Index
}

// StepForwardOrNew replays the next history entry when the cursor is behind
// the frontier. At the frontier it returns fresh() and false; the caller
// records valid fresh picks.
func (h *NavigationHistory) StepForwardOrNew(fresh func() int) (int, bool) {
	if h.cursor < len(h.entries)-1 {
		h.cursor++
		return h.entries[h.cursor].Index, true
	}
	return fresh(), false
}

func (h *NavigationHistory) Entries() []NavigationEntry {
	out := make([]NavigationEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Restore replaces the history, clamping an out-of-range cursor.
func (h *NavigationHistory) Restore(entries []NavigationEntry, cursor int) {
	if len(entries) > h.limit {
		trimmed := len(entries) - h.limit
		entries = entries[trimmed:]
		cursor -= trimmed
	}
	h.entries = append([]NavigationEntry(nil), entries...)
	if len(h.entries) == 0 {
		h.cursor = -1
		return
	}
	h.cursor = max(0, min(cursor, len(h.entries)-1))
}

func (h *NavigationHistory) Reset() {
	h.entries = nil
	h.cursor = -1
}
