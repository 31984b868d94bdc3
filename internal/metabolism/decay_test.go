package metabolism

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/halflife/internal/intake"
)

var t0 = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func dose(mg float64, at time.Time) intake.Event {
	return intake.Event{ID: at.String(), Name: "coffee", AmountMg: mg, Timestamp: at, Source: intake.SourceManual}
}

func TestCurrentLevelEmpty(t *testing.T) {
	for _, h := range []float64{0.5, 3, 5, 10} {
		level, err := CurrentLevel(nil, h, t0)
		require.NoError(t, err)
		assert.Equal(t, 0.0, level)
	}
}

func TestCurrentLevelOneHalfLife(t *testing.T) {
	events := []intake.Event{dose(200, t0)}
	level, err := CurrentLevel(events, 5, t0.Add(5*time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 100, level, 1e-9)
}

func TestCurrentLevelSuperposition(t *testing.T) {
	events := []intake.Event{
		dose(100, t0),
		dose(100, t0.Add(5*time.Hour)),
	}
	level, err := CurrentLevel(events, 5, t0.Add(10*time.Hour))
	require.NoError(t, err)
	// 100 → 25 after two half-lives, 100 → 50 after one.
	assert.InDelta(t, 75, level, 1e-9)
}

func TestCurrentLevelIgnoresFutureEvents(t *testing.T) {
	events := []intake.Event{dose(100, t0), dose(300, t0.Add(time.Hour))}
	level, err := CurrentLevel(events, 5, t0)
	require.NoError(t, err)
	assert.InDelta(t, 100, level, 1e-9)
}

func TestCurrentLevelFloorsAtZero(t *testing.T) {
	events := []intake.Event{dose(-50, t0)}
	level, err := CurrentLevel(events, 5, t0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, level)
}

func TestCurrentLevelRejectsBadHalfLife(t *testing.T) {
	for _, h := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := CurrentLevel([]intake.Event{dose(100, t0)}, h, t0)
		assert.ErrorIs(t, err, ErrInvalidHalfLife, "half-life %v", h)
	}
}

func TestTimeToThreshold(t *testing.T) {
	at, ok, err := TimeToThreshold(0, 50, 5, t0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.Equal(t0), "cleared level should return now")

	at, ok, err = TimeToThreshold(50, 50, 5, t0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.Equal(t0))

	// 200 → 50 is two half-lives.
	at, ok, err = TimeToThreshold(200, 50, 5, t0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.WithinDuration(t, t0.Add(10*time.Hour), at, time.Millisecond)
}

func TestTimeToThresholdNeverClears(t *testing.T) {
	_, ok, err := TimeToThreshold(100, 0, 5, t0)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = TimeToThreshold(100, -10, 5, t0)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = TimeToThreshold(100, 50, 0, t0)
	assert.ErrorIs(t, err, ErrInvalidHalfLife)
}

func TestCurve(t *testing.T) {
	events := []intake.Event{dose(160, t0)}
	points, err := Curve(events, 5, t0, 10*time.Hour, 5*time.Hour)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.InDelta(t, 160, points[0].LevelMg, 1e-9)
	assert.InDelta(t, 80, points[1].LevelMg, 1e-9)
	assert.InDelta(t, 40, points[2].LevelMg, 1e-9)

	_, err = Curve(events, 5, t0, time.Hour, 0)
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, BandSafe, Classify(100, 400))
	assert.Equal(t, BandWarning, Classify(150, 400))
	assert.Equal(t, BandDanger, Classify(201, 400))
	assert.Equal(t, BandDanger, Classify(150, 120))
}

func TestForecastSleep(t *testing.T) {
	s := intake.DefaultSettings() // bedtime 23:00, threshold 50, half-life 5
	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	// 100 mg clears to 50 mg in 5h → 19:00, before 23:00.
	f, err := ForecastSleep(100, s, now)
	require.NoError(t, err)
	assert.True(t, f.Clears)
	assert.True(t, f.Safe)
	assert.InDelta(t, 5, f.HoursUntilClear, 1e-9)
	assert.Equal(t, time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC), f.Bedtime)

	// 800 mg needs four half-lives → 10:00 next day, after bedtime.
	f, err = ForecastSleep(800, s, now)
	require.NoError(t, err)
	assert.False(t, f.Safe)
	assert.InDelta(t, 20, f.HoursUntilClear, 1e-9)
}

func TestForecastSleepRollsBedtime(t *testing.T) {
	s := intake.DefaultSettings()
	s.Bedtime = "01:00"
	now := time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)

	f, err := ForecastSleep(0, s, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC), f.Bedtime)
	assert.True(t, f.Safe)
	assert.Equal(t, 0.0, f.HoursUntilClear)
}
