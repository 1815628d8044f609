package sticks

// DefaultHistoryCap is how many entries the feed keeps.
const DefaultHistoryCap = 10

// HistoryLog is an append-only feed of the most recent moves.
type HistoryLog struct {
	entries  []HistoryEntry
	capacity int
	emit     func(Effect)
}

func NewHistoryLog(capacity int, emit func(Effect)) *HistoryLog {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &HistoryLog{
		entries:  make([]HistoryEntry, 0, capacity),
		capacity: capacity,
		emit:     emit,
	}
}

// Append adds entry at the end of the feed, evicting the oldest entry first
// when the feed is full.
func (h *HistoryLog) Append(entry HistoryEntry) {
	if len(h.entries) >= h.capacity {
		oldest := h.entries[0]
		h.entries = append(h.entries[:0], h.entries[1:]...)
		h.emit(Effect{Kind: EffectEntryOut, Entry: &oldest})
	}
	h.entries = append(h.entries, entry)
	h.emit(Effect{Kind: EffectEntryIn, Entry: &entry})
}

func (h *HistoryLog) Len() int {
	return len(h.entries)
}

func (h *HistoryLog) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
