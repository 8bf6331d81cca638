package usecase

import (
	"sync"

	"CoinPulse/internal/domain/models"
)

// SignalHistory is a fixed-capacity buffer of recently emitted signals,
// oldest evicted first. It exists for introspection (the HTTP API), not
// durability.
type SignalHistory struct {
	mu   sync.RWMutex
	buf  []*models.Signal
	next int
	full bool
}

// NewSignalHistory creates a history with the given capacity (minimum 1).
func NewSignalHistory(capacity int) *SignalHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &SignalHistory{buf: make([]*models.Signal, capacity)}
}

// Add records a signal, evicting the oldest when full.
func (h *SignalHistory) Add(s *models.Signal) {
	h.mu.Lock()
	h.buf[h.next] = s
	h.next++
	if h.next == len(h.buf) {
		h.next = 0
		h.full = true
	}
	h.mu.Unlock()
}

// Recent returns up to limit signals, newest first.
func (h *SignalHistory) Recent(limit int) []*models.Signal {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := h.next
	if h.full {
		n = len(h.buf)
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*models.Signal, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (h.next - i + len(h.buf)) % len(h.buf)
		out = append(out, h.buf[idx])
	}
	return out
}

// Len returns the number of stored signals.
func (h *SignalHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.full {
		return len(h.buf)
	}
	return h.next
}
