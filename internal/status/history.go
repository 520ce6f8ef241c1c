package status

import "sync"

// HistoryCap bounds the in-memory probe history.
const HistoryCap = 20

// History is a bounded, mutex-guarded record of probe results. It is owned by
// the status component and accessed only through Append and Snapshot.
type History struct {
	mu      sync.Mutex
	entries []ProbeResult
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Append records a result, evicting the oldest entry beyond the cap.
func (h *History) Append(result ProbeResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, result)
	if len(h.entries) > HistoryCap {
		h.entries = h.entries[len(h.entries)-HistoryCap:]
	}
}

// Snapshot returns a newest-first copy of the history.
func (h *History) Snapshot() []ProbeResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ProbeResult, len(h.entries))
	for i, entry := range h.entries {
		out[len(h.entries)-1-i] = entry
	}
	return out
}

// Len returns the current entry count.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
