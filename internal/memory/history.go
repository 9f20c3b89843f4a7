package memory

import "sync"

// defaultHistoryCap bounds the in-process search history.
const defaultHistoryCap = 10

// SearchHistory is an append-only, capped sequence of past query summaries.
// It lives in process memory for the lifetime of the engine and is never
// written to disk. The mutex keeps it safe under a long-running server even
// though requests are served sequentially.
type SearchHistory struct {
	mu      sync.Mutex
	limit   int
	entries []SearchHistoryEntry
}

// NewHistory creates a history capped at limit entries (default 10).
func NewHistory(limit int) *SearchHistory {
	if limit <= 0 {
		limit = defaultHistoryCap
	}
	return &SearchHistory{limit: limit}
}

// Record appends an entry, evicting the oldest when the cap is reached.
func (h *SearchHistory) Record(entry SearchHistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
}

// Recent returns up to n entries, newest first. n <= 0 returns everything.
func (h *SearchHistory) Recent(n int) []SearchHistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]SearchHistoryEntry, 0, n)
	for i := len(h.entries) - 1; i >= len(h.entries)-n; i-- {
		out = append(out, h.entries[i])
	}
	return out
}

// Len returns the number of recorded entries.
func (h *SearchHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
