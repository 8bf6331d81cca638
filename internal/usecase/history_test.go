package usecase

import (
	"fmt"
	"testing"

	"CoinPulse/internal/domain/models"
)

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewSignalHistory(3)
	for i := 0; i < 5; i++ {
		h.Add(&models.Signal{Symbol: fmt.Sprintf("S%d", i)})
	}

	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3", h.Len())
	}

	recent := h.Recent(0)
	if len(recent) != 3 {
		t.Fatalf("recent = %d entries, want 3", len(recent))
	}
	// newest first
	for i, want := range []string{"S4", "S3", "S2"} {
		if recent[i].Symbol != want {
			t.Fatalf("recent[%d] = %s, want %s", i, recent[i].Symbol, want)
		}
	}
}

func TestHistoryRecentLimit(t *testing.T) {
	h := NewSignalHistory(10)
	for i := 0; i < 4; i++ {
		h.Add(&models.Signal{Symbol: fmt.Sprintf("S%d", i)})
	}

	recent := h.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("recent = %d entries, want 2", len(recent))
	}
	if recent[0].Symbol != "S3" || recent[1].Symbol != "S2" {
		t.Fatalf("unexpected order: %s, %s", recent[0].Symbol, recent[1].Symbol)
	}

	if got := h.Recent(100); len(got) != 4 {
		t.Fatalf("oversized limit must return all %d entries, got %d", 4, len(got))
	}
}

func TestHistoryEmpty(t *testing.T) {
	h := NewSignalHistory(5)
	if h.Len() != 0 {
		t.Fatalf("fresh history len = %d", h.Len())
	}
	if got := h.Recent(10); len(got) != 0 {
		t.Fatalf("fresh history returned %d entries", len(got))
	}
}

func TestHistoryMinimumCapacity(t *testing.T) {
	h := NewSignalHistory(0)
	h.Add(&models.Signal{Symbol: "A"})
	h.Add(&models.Signal{Symbol: "B"})
	if h.Len() != 1 {
		t.Fatalf("len = %d, want 1", h.Len())
	}
	if got := h.Recent(0); got[0].Symbol != "B" {
		t.Fatalf("kept %s, want newest", got[0].Symbol)
	}
}
