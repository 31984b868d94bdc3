package metabolism

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/lazypower/halflife/internal/intake"
)

func TestDecayProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("level is non-increasing in elapsed time", prop.ForAll(
		func(doses []float64, halfLife float64, stepMinutes int) bool {
			events := make([]intake.Event, len(doses))
			for i, d := range doses {
				events[i] = dose(d, t0.Add(-time.Duration(i)*time.Hour))
			}
			prev, err := CurrentLevel(events, halfLife, t0)
			if err != nil {
				return false
			}
			for k := 1; k <= 24; k++ {
				next, err := CurrentLevel(events, halfLife, t0.Add(time.Duration(k*stepMinutes)*time.Minute))
				if err != nil || next > prev+1e-9 {
					return false
				}
				prev = next
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(0, 500)),
		gen.Float64Range(0.1, 24),
		gen.IntRange(1, 180),
	))

	properties.Property("one half-life halves a single dose", prop.ForAll(
		func(d, halfLife float64) bool {
			level, err := CurrentLevel([]intake.Event{dose(d, t0)}, halfLife,
				t0.Add(time.Duration(halfLife*float64(time.Hour))))
			if err != nil {
				return false
			}
			diff := level - d/2
			return diff < 1e-6 && diff > -1e-6
		},
		gen.Float64Range(0, 1000),
		gen.Float64Range(1, 10),
	))

	properties.Property("clearance time lands on the threshold", prop.ForAll(
		func(level, threshold, halfLife float64) bool {
			h, ok, err := HoursToThreshold(level, threshold, halfLife)
			if err != nil || !ok {
				return false
			}
			if level <= threshold {
				return h == 0
			}
			got := Residual(level, time.Duration(h*float64(time.Hour)), halfLife)
			diff := got - threshold
			return diff < 1e-3 && diff > -1e-3
		},
		gen.Float64Range(0, 1000),
		gen.Float64Range(1, 200),
		gen.Float64Range(1, 10),
	))

	properties.TestingRun(t)
}
