package pricing

import (
	"testing"
	"time"
)

func TestDurationHours(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	if got := DurationHours(start, start.Add(3*time.Hour)); got != 3 {
		t.Errorf("3h window: expected 3, got %d", got)
	}
	if got := DurationHours(start, start.Add(90*time.Minute)); got != 2 {
		t.Errorf("90m window: expected 2, got %d", got)
	}
	if got := DurationHours(start, start.Add(10*time.Minute)); got != 1 {
		t.Errorf("10m window: expected minimum 1, got %d", got)
	}
}

func TestTimeMultiplier(t *testing.T) {
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) // a Tuesday

	peak, _ := TimeMultiplier(base.Add(9 * time.Hour))
	if peak != 1.5 {
		t.Errorf("09:00 expected 1.5, got %v", peak)
	}
	evening, _ := TimeMultiplier(base.Add(18 * time.Hour))
	if evening != 1.5 {
		t.Errorf("18:00 expected 1.5, got %v", evening)
	}
	night, _ := TimeMultiplier(base.Add(23 * time.Hour))
	if night != 0.8 {
		t.Errorf("23:00 expected 0.8, got %v", night)
	}
	standard, _ := TimeMultiplier(base.Add(13 * time.Hour))
	if standard != 1.0 {
		t.Errorf("13:00 expected 1.0, got %v", standard)
	}
}

func TestWeekendAndHolidayMultipliers(t *testing.T) {
	saturday := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	tuesday := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	christmas := time.Date(2026, 12, 25, 12, 0, 0, 0, time.UTC)

	if got := WeekendMultiplier(saturday); got != 1.2 {
		t.Errorf("saturday expected 1.2, got %v", got)
	}
	if got := WeekendMultiplier(tuesday); got != 1.0 {
		t.Errorf("tuesday expected 1.0, got %v", got)
	}
	if got := HolidayMultiplier(christmas); got != 1.3 {
		t.Errorf("christmas expected 1.3, got %v", got)
	}
	if got := HolidayMultiplier(tuesday); got != 1.0 {
		t.Errorf("ordinary day expected 1.0, got %v", got)
	}
}

func TestDemandMultiplier(t *testing.T) {
	if got := DemandMultiplier(1, 10); got != 1.5 {
		t.Errorf("90%% occupancy expected 1.5, got %v", got)
	}
	if got := DemandMultiplier(4, 10); got != 1.2 {
		t.Errorf("60%% occupancy expected 1.2, got %v", got)
	}
	if got := DemandMultiplier(8, 10); got != 1.0 {
		t.Errorf("20%% occupancy expected 1.0, got %v", got)
	}
	if got := DemandMultiplier(5, 0); got != 1.0 {
		t.Errorf("zero capacity expected 1.0, got %v", got)
	}
}

func TestMultiplierIsCapped(t *testing.T) {
	// peak hour, weekend, holiday season, near-full lot
	start := time.Date(2026, 12, 25, 9, 0, 0, 0, time.UTC) // a Friday
	mult, _ := Multiplier(start, 1, 10)
	if mult > 2.0 {
		t.Errorf("multiplier exceeds cap: %v", mult)
	}
	if mult != 2.0 {
		t.Errorf("stacked factors should hit the cap, got %v", mult)
	}
}

func TestQuoteFor(t *testing.T) {
	start := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC) // standard hours, weekday
	end := start.Add(3 * time.Hour)

	q := QuoteFor(50, start, end, 8, 10)
	if q.BasePrice != 150 {
		t.Errorf("expected base 150, got %v", q.BasePrice)
	}
	if q.Multiplier != 1.0 {
		t.Errorf("expected flat multiplier, got %v", q.Multiplier)
	}
	if q.FinalPrice != 150 {
		t.Errorf("expected final 150, got %v", q.FinalPrice)
	}
	if len(q.Factors) == 0 {
		t.Error("expected at least the base time factor")
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(10.016); got != 10.02 {
		t.Errorf("expected 10.02, got %v", got)
	}
	if got := Round2(149.999); got != 150 {
		t.Errorf("expected 150, got %v", got)
	}
}
