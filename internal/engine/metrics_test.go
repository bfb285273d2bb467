package engine

import (
	"math"
	"testing"
	"time"
)

func TestMarginPercentZeroRevenue(t *testing.T) {
	if got := MarginPercent(0, 10); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := MarginPercent(-5, 10); got != 0 {
		t.Fatalf("expected 0 for negative revenue, got %v", got)
	}
	if got := MarginPercent(200, 150); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
	if math.IsNaN(MarginPercent(0, 0)) {
		t.Fatal("must never return NaN")
	}
}

func TestAvgBasketZeroCount(t *testing.T) {
	if got := AvgBasket(100, 0); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := AvgBasket(100, 4); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
}

func TestRecencyDays(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	if got := RecencyDays(time.Time{}, now); got != NeverSeen {
		t.Fatalf("zero time: expected sentinel, got %d", got)
	}
	if got := RecencyDays(now.AddDate(0, 0, -5), now); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	// same day, a few hours apart -> 0 (floor)
	if got := RecencyDays(now.Add(-6*time.Hour), now); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	// future timestamps clamp to 0 rather than going negative
	if got := RecencyDays(now.Add(time.Hour), now); got != 0 {
		t.Fatalf("expected 0 for future event, got %d", got)
	}
}
