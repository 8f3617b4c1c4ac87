package app

import (
	"sync"

	"github.com/felixbrock/lpviz/internal/presenter"
)

const defaultSlotSessions = 1024

type slotEntry struct {
	presentation presenter.Presentation
	seq          uint64
}

// ResultSlot keeps the last presentation per session. Store overwrites
// unconditionally, so when submissions race the last response wins.
type ResultSlot struct {
	mu       sync.Mutex
	entries  map[string]slotEntry
	capacity int
	seq      uint64
}

func NewResultSlot(capacity int) *ResultSlot {
	if capacity <= 0 {
		capacity = defaultSlotSessions
	}
	return &ResultSlot{entries: make(map[string]slotEntry), capacity: capacity}
}

func (s *ResultSlot) Store(session string, p presenter.Presentation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[session]; !ok && len(s.entries) >= s.capacity {
		s.evictOldest()
	}
	s.seq++
	s.entries[session] = slotEntry{presentation: p, seq: s.seq}
}

func (s *ResultSlot) Load(session string) (presenter.Presentation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[session]
	return e.presentation, ok
}

// evictOldest drops the session stored least recently. Callers hold mu.
func (s *ResultSlot) evictOldest() {
	var (
		oldest string
		seq    uint64
		found  bool
	)
	for k, e := range s.entries {
		if !found || e.seq < seq {
			oldest, seq, found = k, e.seq, true
		}
	}
	delete(s.entries, oldest)
}
