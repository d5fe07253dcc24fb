package game

// HistoryEntry is one recorded board event.
type HistoryEntry struct {
	Seq  int    `json:"seq"`
	Note string `json:"note"`
}

const historyCap = 64

// history is a bounded log of board notes, oldest first.
type history struct {
	entries []HistoryEntry
	seq     int
}

func (h *history) record(note string) {
	h.seq++
	if len(h.entries) == historyCap {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:historyCap-1]
	}
	h.entries = append(h.entries, HistoryEntry{Seq: h.seq, Note: note})
}

// since returns the entries recorded after seq.
func (h *history) since(seq int) []HistoryEntry {
	var out []HistoryEntry
	for _, e := range h.entries {
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}
