package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/halflife/internal/intake"
)

var now = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

var seq int

func ev(name string, mg float64, ts time.Time, src intake.Source) intake.Event {
	seq++
	return intake.Event{ID: fmt.Sprint(seq), Name: name, AmountMg: mg, Timestamp: ts, Source: src}
}

func TestDailyTotalsEmptyWeek(t *testing.T) {
	totals := DailyTotals(nil, Week, now)
	require.Len(t, totals, 7)
	for i, d := range totals {
		assert.Equal(t, 0.0, d.TotalMg)
		if i > 0 {
			assert.True(t, d.Date.After(totals[i-1].Date), "entries must be chronological")
		}
	}
	assert.Equal(t, "3/4", totals[0].Label)
	assert.Equal(t, "3/10", totals[6].Label)
}

func TestDailyTotalsFoldsEvents(t *testing.T) {
	events := []intake.Event{
		ev("Latte", 150, now.Add(-time.Hour), intake.SourceBrand),
		ev("Latte", 75, now.Add(-2*time.Hour), intake.SourceBrand),
		ev("Red Bull", 80, now.AddDate(0, 0, -3), intake.SourceManual),
		ev("Old", 999, now.AddDate(0, 0, -20), intake.SourceManual),
		ev("Future", 500, now.Add(time.Hour), intake.SourceManual),
	}
	totals := DailyTotals(events, Week, now)
	require.Len(t, totals, 7)
	assert.Equal(t, 225.0, totals[6].TotalMg)
	assert.Equal(t, 80.0, totals[3].TotalMg)

	sum := 0.0
	for _, d := range totals {
		sum += d.TotalMg
	}
	assert.Equal(t, 305.0, sum)
}

func TestDailyTotalsMonth(t *testing.T) {
	assert.Len(t, DailyTotals(nil, Month, now), 30)
	assert.Nil(t, DailyTotals(nil, 0, now))
}

func TestWindowInclusiveLowerBound(t *testing.T) {
	start := now.Add(-7 * 24 * time.Hour)
	events := []intake.Event{
		ev("edge", 10, start, intake.SourceManual),
		ev("before", 10, start.Add(-time.Second), intake.SourceManual),
		ev("now", 10, now, intake.SourceManual),
	}
	got := Window(events, Week, now)
	require.Len(t, got, 2)
	assert.Equal(t, "edge", got[0].Name)
	assert.Equal(t, "now", got[1].Name)
}

func TestTimeOfDayTotals(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	events := []intake.Event{
		ev("a", 100, day.Add(7*time.Hour), intake.SourceManual),
		ev("b", 50, day.Add(11*time.Hour+59*time.Minute), intake.SourceManual),
		ev("c", 80, day.Add(13*time.Hour), intake.SourceManual),
		ev("d", 40, day.Add(23*time.Hour), intake.SourceManual),
		ev("e", 20, day.Add(3*time.Hour), intake.SourceManual),
	}
	got := TimeOfDayTotals(events)
	require.Len(t, got, 4)
	assert.Equal(t, intake.Morning, got[0].Part)
	assert.Equal(t, 150.0, got[0].TotalMg)
	assert.Equal(t, 80.0, got[1].TotalMg)
	assert.Equal(t, 40.0, got[2].TotalMg)
	assert.Equal(t, 20.0, got[3].TotalMg)
}

func TestTopDrinks(t *testing.T) {
	events := []intake.Event{
		ev("Starbucks Caffè Americano", 150, now, intake.SourceBrand),
		ev("Monster", 120, now, intake.SourceManual),
		ev("Starbucks Cold Brew", 205, now, intake.SourceBrand),
		ev("Red Bull", 80, now, intake.SourceManual),
		ev("Monster Ultra", 120, now, intake.SourceManual),
		ev("Red", 80, now, intake.SourceManual),
		ev("Espresso", 63, now, intake.SourceManual),
		ev("   ", 10, now, intake.SourceManual),
	}
	got := TopDrinks(events, 3)
	assert.Equal(t, []DrinkCount{
		{Name: "Starbucks", Count: 2},
		{Name: "Monster", Count: 2},
		{Name: "Red", Count: 2},
	}, got)

	assert.Len(t, TopDrinks(events, 10), 4)
	assert.Empty(t, TopDrinks(events, 0))
}

func TestSourceBreakdown(t *testing.T) {
	events := []intake.Event{
		ev("a", 1, now, intake.SourceAI),
		ev("b", 1, now, intake.SourceManual),
		ev("c", 1, now, intake.SourceAI),
	}
	assert.Equal(t, []SourceCount{
		{Source: intake.SourceManual, Count: 1},
		{Source: intake.SourceAI, Count: 2},
	}, SourceBreakdown(events))
	assert.Empty(t, SourceBreakdown(nil))
}

func TestSummarize(t *testing.T) {
	events := []intake.Event{
		ev("a", 150, now.Add(-time.Hour), intake.SourceManual),
		ev("b", 200, now.AddDate(0, 0, -2), intake.SourceManual),
		ev("c", 500, now.AddDate(0, 0, -9), intake.SourceManual),
	}
	s := Summarize(events, Week, now)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 350.0, s.TotalMg)
	assert.Equal(t, 50.0, s.AvgDailyMg)
	assert.Equal(t, 200.0, s.MaxDoseMg)
}

func TestDayLog(t *testing.T) {
	events := []intake.Event{
		ev("early", 100, time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC), intake.SourceManual),
		ev("late", 50, time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC), intake.SourceManual),
		ev("other", 70, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), intake.SourceManual),
	}
	got, total := DayLog(events, time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC))
	require.Len(t, got, 2)
	assert.Equal(t, "late", got[0].Name)
	assert.Equal(t, 150.0, total)
}

func TestBuild(t *testing.T) {
	events := []intake.Event{
		ev("Latte", 150, now.Add(-time.Hour), intake.SourceBrand),
		ev("Latte", 100, now.AddDate(0, 0, -1), intake.SourceAI),
	}
	r := Build(events, Week, now)
	assert.Equal(t, 250.0, r.Summary.TotalMg)
	assert.Len(t, r.Daily, 7)
	assert.Len(t, r.TimeOfDay, 4)
	assert.Equal(t, []DrinkCount{{Name: "Latte", Count: 2}}, r.TopDrinks)
	assert.Len(t, r.Sources, 2)
}
