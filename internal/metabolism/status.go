package metabolism

import (
	"time"

	"github.com/lazypower/halflife/internal/intake"
)

// Level bands used by the dashboard gauge.
const (
	ElevatedLevelMg = 100.0
	HighLevelMg     = 200.0
)

// Band classifies a current level.
type Band string

const (
	BandSafe    Band = "safe"
	BandWarning Band = "warning"
	BandDanger  Band = "danger"
)

// Classify maps a level to a band. Above 200 mg or above the daily limit is
// danger; above 100 mg is warning.
func Classify(levelMg, dailyLimitMg float64) Band {
	switch {
	case levelMg > HighLevelMg || levelMg > dailyLimitMg:
		return BandDanger
	case levelMg > ElevatedLevelMg:
		return BandWarning
	default:
		return BandSafe
	}
}

// SleepForecast compares the projected clearance time against bedtime.
type SleepForecast struct {
	ClearAt         time.Time `json:"clear_at"`
	Clears          bool      `json:"clears"`
	Bedtime         time.Time `json:"bedtime"`
	Safe            bool      `json:"safe"`
	HoursUntilClear float64   `json:"hours_until_clear"`
}

// ForecastSleep projects when levelMg falls below the sleep threshold and
// whether that happens before the next bedtime. Bedtime is taken on now's
// calendar date and rolled forward a day when it is more than 12 hours
// behind now, so a 01:00 bedtime seen at 23:00 means tonight.
func ForecastSleep(levelMg float64, s intake.Settings, now time.Time) (SleepForecast, error) {
	hours, clears, err := HoursToThreshold(levelMg, s.SleepThresholdMg, s.HalfLifeHours)
	if err != nil {
		return SleepForecast{}, err
	}
	bed, err := intake.ClockOn(s.Bedtime, now)
	if err != nil {
		return SleepForecast{}, err
	}
	if bed.Before(now.Add(-12 * time.Hour)) {
		bed = bed.AddDate(0, 0, 1)
	}

	f := SleepForecast{Bedtime: bed, Clears: clears}
	if !clears {
		return f, nil
	}
	f.HoursUntilClear = hours
	f.ClearAt = now.Add(time.Duration(hours * float64(time.Hour)))
	f.Safe = !f.ClearAt.After(bed)
	return f, nil
}
