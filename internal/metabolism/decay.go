// Package metabolism models caffeine elimination as first-order exponential
// decay. Every dose decays independently and the residues are summed:
//
//	C(t) = Σ dose_i · 0.5^((t - t_i) / halfLife)
//
// Nothing here is cached. The current level is a pure function of the
// event list, the half-life and the evaluation instant.
package metabolism

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lazypower/halflife/internal/intake"
)

// ErrInvalidHalfLife is returned for a half-life that is not a positive,
// finite number of hours.
var ErrInvalidHalfLife = errors.New("half-life must be a positive number of hours")

func checkHalfLife(h float64) error {
	if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidHalfLife, h)
	}
	return nil
}

// Residual returns what remains of a single dose after elapsed time.
// Negative elapsed time (a dose in the future) contributes nothing.
func Residual(doseMg float64, elapsed time.Duration, halfLifeHours float64) float64 {
	if elapsed < 0 {
		return 0
	}
	return doseMg * math.Pow(0.5, elapsed.Hours()/halfLifeHours)
}

// CurrentLevel sums the decayed residue of every event at or before asOf.
// The result is floored at zero.
func CurrentLevel(events []intake.Event, halfLifeHours float64, asOf time.Time) (float64, error) {
	if err := checkHalfLife(halfLifeHours); err != nil {
		return 0, err
	}
	total := 0.0
	for _, e := range events {
		if e.Timestamp.After(asOf) {
			continue
		}
		total += Residual(e.AmountMg, asOf.Sub(e.Timestamp), halfLifeHours)
	}
	return math.Max(0, total), nil
}

// HoursToThreshold solves threshold = level · 0.5^(h/halfLife) for h.
// It returns 0 when level is already at or below threshold, and ok=false
// when threshold <= 0 because the level never reaches zero.
func HoursToThreshold(levelMg, thresholdMg, halfLifeHours float64) (hours float64, ok bool, err error) {
	if err := checkHalfLife(halfLifeHours); err != nil {
		return 0, false, err
	}
	if thresholdMg <= 0 {
		if levelMg <= 0 {
			return 0, true, nil
		}
		return 0, false, nil
	}
	if levelMg <= thresholdMg {
		return 0, true, nil
	}
	return halfLifeHours * math.Log(thresholdMg/levelMg) / math.Log(0.5), true, nil
}

// TimeToThreshold returns the instant the level falls to threshold.
// An already-cleared level returns now. ok is false when the level never
// clears (threshold <= 0 with a positive level).
func TimeToThreshold(levelMg, thresholdMg, halfLifeHours float64, now time.Time) (at time.Time, ok bool, err error) {
	h, ok, err := HoursToThreshold(levelMg, thresholdMg, halfLifeHours)
	if err != nil || !ok {
		return time.Time{}, ok, err
	}
	return now.Add(time.Duration(h * float64(time.Hour))), true, nil
}

// Point is one sample of a projected decay curve.
type Point struct {
	At      time.Time `json:"at"`
	LevelMg float64   `json:"level_mg"`
}

// Curve samples the level from `from` forward over the given span at each
// step, inclusive of both ends. Doses logged in the future show up once the
// sample passes their timestamp.
func Curve(events []intake.Event, halfLifeHours float64, from time.Time, span, step time.Duration) ([]Point, error) {
	if err := checkHalfLife(halfLifeHours); err != nil {
		return nil, err
	}
	if step <= 0 || span < 0 {
		return nil, fmt.Errorf("invalid curve span %s / step %s", span, step)
	}
	points := make([]Point, 0, int(span/step)+1)
	for d := time.Duration(0); d <= span; d += step {
		at := from.Add(d)
		level, _ := CurrentLevel(events, halfLifeHours, at)
		points = append(points, Point{At: at, LevelMg: level})
	}
	return points, nil
}
