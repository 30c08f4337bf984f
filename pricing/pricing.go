package pricing

import (
	"math"
	"time"
)

// Quote is the display-rate breakdown for a prospective booking. The
// multiplier is advisory: the canonical booking price stays
// duration * pricePerHour, and this quote is what clients show alongside it.
type Quote struct {
	BasePrice  float64  `json:"basePrice"`
	Multiplier float64  `json:"multiplier"`
	FinalPrice float64  `json:"finalPrice"`
	Factors    []string `json:"factors"`
}

const maxMultiplier = 2.0

// TimeMultiplier prices commute windows up and the night down.
func TimeMultiplier(start time.Time) (float64, string) {
	hour := start.Hour()
	if (hour >= 8 && hour < 10) || (hour >= 17 && hour < 20) {
		return 1.5, "Peak hours (1.5x)"
	}
	if hour >= 22 || hour < 6 {
		return 0.8, "Off-peak hours (0.8x)"
	}
	return 1.0, "Standard hours (1.0x)"
}

func WeekendMultiplier(start time.Time) float64 {
	switch start.Weekday() {
	case time.Saturday, time.Sunday:
		return 1.2
	}
	return 1.0
}

// HolidayMultiplier covers a fixed-date list; movable holidays are not modelled.
func HolidayMultiplier(start time.Time) float64 {
	holidays := map[[2]int]bool{
		{1, 1}:   true, // New Year
		{8, 15}:  true, // Independence Day
		{10, 2}:  true, // Gandhi Jayanti
		{12, 25}: true, // Christmas
	}
	if holidays[[2]int{int(start.Month()), start.Day()}] {
		return 1.3
	}
	return 1.0
}

func SeasonalMultiplier(start time.Time) float64 {
	month := int(start.Month())
	if (month >= 6 && month <= 8) || month == 12 {
		return 1.2
	}
	if (month >= 3 && month <= 5) || (month >= 9 && month <= 11) {
		return 1.0
	}
	return 0.9
}

// DemandMultiplier maps slot occupancy onto a surcharge band.
func DemandMultiplier(availableSlots, totalSlots int) float64 {
	if totalSlots <= 0 {
		return 1.0
	}
	occupancy := 1.0 - float64(availableSlots)/float64(totalSlots)
	switch {
	case occupancy > 0.8:
		return 1.5
	case occupancy > 0.5:
		return 1.2
	default:
		return 1.0
	}
}

// Multiplier combines all factors, capped at maxMultiplier.
func Multiplier(start time.Time, availableSlots, totalSlots int) (float64, []string) {
	timeMult, label := TimeMultiplier(start)
	factors := []string{label}

	weekend := WeekendMultiplier(start)
	if weekend > 1.0 {
		factors = append(factors, "Weekend (1.2x)")
	}

	holiday := HolidayMultiplier(start)
	if holiday > 1.0 {
		factors = append(factors, "Holiday (1.3x)")
	}

	seasonal := SeasonalMultiplier(start)
	if seasonal > 1.0 {
		factors = append(factors, "Peak season (1.2x)")
	} else if seasonal < 1.0 {
		factors = append(factors, "Off-season (0.9x)")
	}

	demand := DemandMultiplier(availableSlots, totalSlots)
	if demand > 1.0 {
		factors = append(factors, "High demand")
	}

	combined := timeMult * weekend * holiday * seasonal * demand
	if combined > maxMultiplier {
		combined = maxMultiplier
	}
	return combined, factors
}

// DurationHours is ceil((end-start)/1h), minimum 1 for a same-hour booking.
func DurationHours(start, end time.Time) int {
	hours := int(math.Ceil(end.Sub(start).Hours()))
	if hours < 1 {
		hours = 1
	}
	return hours
}

// Round2 rounds to 2 decimal places at the response boundary.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// QuoteFor computes the advisory dynamic price for a window on a slot.
func QuoteFor(pricePerHour float64, start, end time.Time, availableSlots, totalSlots int) Quote {
	duration := DurationHours(start, end)
	base := float64(duration) * pricePerHour
	mult, factors := Multiplier(start, availableSlots, totalSlots)
	return Quote{
		BasePrice:  Round2(base),
		Multiplier: Round2(mult),
		FinalPrice: Round2(base * mult),
		Factors:    factors,
	}
}
