package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/halflife/internal/intake"
)

func at(hour int) time.Time {
	return time.Date(2026, 3, 2, hour, 15, 0, 0, time.UTC)
}

func ev(mg float64, hour int, symptoms ...string) intake.Event {
	return intake.Event{
		ID:        time.Now().String(),
		Name:      "coffee",
		AmountMg:  mg,
		Timestamp: at(hour),
		Source:    intake.SourceManual,
		Symptoms:  symptoms,
	}
}

func TestDeriveInsufficientData(t *testing.T) {
	_, ok := Derive(nil)
	assert.False(t, ok)

	in, ok := Derive([]intake.Event{ev(100, 9), ev(150, 14)})
	assert.False(t, ok)
	assert.Nil(t, in)
}

func TestDeriveDoseCorrelation(t *testing.T) {
	events := []intake.Event{
		ev(100, 8),
		ev(80, 10),
		ev(120, 13),
		ev(300, 9, "jitters"),
	}
	in, ok := Derive(events)
	require.True(t, ok)
	assert.Equal(t, 300.0, in.AvgSymptomDoseMg)
	assert.Equal(t, 100.0, in.AvgSafeDoseMg)
	assert.Equal(t, RecommendDose, in.Kind)
	assert.Contains(t, in.Recommendation, "300 mg")
	assert.Contains(t, in.Recommendation, "100 mg")
	assert.Equal(t, 1, in.SymptomEventCount)
	assert.Equal(t, "jitters", in.TopSymptom)
	assert.Equal(t, "Jitters", in.TopSymptomLabel)
	assert.Equal(t, intake.Morning, in.RiskiestDayPart)
}

func TestDeriveTimingRecommendation(t *testing.T) {
	events := []intake.Event{
		ev(100, 8),
		ev(110, 20, "insomnia"),
		ev(100, 22, "insomnia", "anxiety"),
		ev(90, 10, "anxiety"),
	}
	in, ok := Derive(events)
	require.True(t, ok)
	assert.Equal(t, 100.0, in.AvgSymptomDoseMg)
	assert.Equal(t, intake.Evening, in.RiskiestDayPart)
	assert.Equal(t, intake.Evening.Label(), in.RiskiestBucketLabel)
	assert.Equal(t, RecommendTiming, in.Kind)
	assert.Contains(t, in.Recommendation, "2 PM")
	// insomnia and anxiety both have two tags; insomnia was seen first.
	assert.Equal(t, "insomnia", in.TopSymptom)
}

func TestDeriveHydrationRecommendation(t *testing.T) {
	events := []intake.Event{
		ev(150, 9),
		ev(160, 15, "headache"),
	}
	in, ok := Derive(events)
	require.True(t, ok)
	assert.Equal(t, intake.Afternoon, in.RiskiestDayPart)
	assert.Equal(t, RecommendHydration, in.Kind)
	assert.Contains(t, in.Recommendation, "200 ml")
}

func TestDeriveNoSafeEvents(t *testing.T) {
	in, ok := Derive([]intake.Event{ev(20, 9, "stomach")})
	require.True(t, ok)
	assert.Equal(t, 0.0, in.AvgSafeDoseMg)
	// 20 is not above 0 + 30.
	assert.Equal(t, RecommendHydration, in.Kind)
}

func TestDeriveDayPartTieBreak(t *testing.T) {
	events := []intake.Event{
		ev(100, 2, "jitters"),  // night
		ev(100, 19, "jitters"), // evening
		ev(100, 14, "jitters"), // afternoon
	}
	in, ok := Derive(events)
	require.True(t, ok)
	assert.Equal(t, intake.Afternoon, in.RiskiestDayPart)
}

func TestDeriveUnknownSymptomLabel(t *testing.T) {
	in, ok := Derive([]intake.Event{ev(100, 9, "mystery")})
	require.True(t, ok)
	assert.Equal(t, "mystery", in.TopSymptom)
	assert.Equal(t, FallbackSymptomLabel, in.TopSymptomLabel)
}

func TestDeriveRoundsAverages(t *testing.T) {
	events := []intake.Event{
		ev(100, 9, "jitters"),
		ev(101, 9, "jitters"),
		ev(50, 9),
	}
	in, ok := Derive(events)
	require.True(t, ok)
	assert.Equal(t, 101.0, in.AvgSymptomDoseMg) // 100.5 rounds half away from zero
}
