// Package report aggregates the intake log for the statistics views.
// Every function is pure over the events it is handed.
package report

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/lazypower/halflife/internal/intake"
)

// Standard reporting periods, in days.
const (
	Week  = 7
	Month = 30
)

const dateLabelLayout = "1/2"

// Window returns the events with timestamps in [now - days*24h, now].
func Window(events []intake.Event, days int, now time.Time) []intake.Event {
	start := now.Add(-time.Duration(days) * 24 * time.Hour)
	var out []intake.Event
	for _, e := range events {
		if e.Timestamp.Before(start) || e.Timestamp.After(now) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// DailyTotal is the mg consumed on one calendar day.
type DailyTotal struct {
	Date    time.Time `json:"date"`
	Label   string    `json:"label"`
	TotalMg float64   `json:"total_mg"`
}

// DailyTotals returns one entry per calendar day for the last `days` days
// ending today (in now's location), oldest first. Days with no intake are
// explicit zeros.
func DailyTotals(events []intake.Event, days int, now time.Time) []DailyTotal {
	if days <= 0 {
		return nil
	}
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	totals := make([]DailyTotal, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i-(days-1))
		totals[i] = DailyTotal{Date: day, Label: day.Format(dateLabelLayout)}
		index[day.Format(time.DateOnly)] = i
	}

	for _, e := range Window(events, days, now) {
		key := e.Timestamp.In(loc).Format(time.DateOnly)
		if i, ok := index[key]; ok {
			totals[i].TotalMg += e.AmountMg
		}
	}
	return totals
}

// DayPartTotal is the mg consumed in one time-of-day bucket.
type DayPartTotal struct {
	Part    intake.DayPart `json:"part"`
	Label   string         `json:"label"`
	TotalMg float64        `json:"total_mg"`
}

// TimeOfDayTotals sums doses into the four fixed buckets, always returning
// all four in bucket order.
func TimeOfDayTotals(events []intake.Event) []DayPartTotal {
	out := make([]DayPartTotal, len(intake.DayParts))
	for i, p := range intake.DayParts {
		out[i] = DayPartTotal{Part: p, Label: p.Label()}
	}
	for _, e := range events {
		out[intake.DayPartOf(e.Timestamp)].TotalMg += e.AmountMg
	}
	return out
}

// DrinkCount is how often a drink appears in the log.
type DrinkCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DrinkKey normalizes a display name to its first whitespace-separated token.
func DrinkKey(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// TopDrinks ranks drinks by count, descending. Ties keep first-seen order.
func TopDrinks(events []intake.Event, n int) []DrinkCount {
	var ranked []DrinkCount
	index := make(map[string]int)
	for _, e := range events {
		key := DrinkKey(e.Name)
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			ranked[i].Count++
			continue
		}
		index[key] = len(ranked)
		ranked = append(ranked, DrinkCount{Name: key, Count: 1})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// SourceCount is how many events came from one source.
type SourceCount struct {
	Source intake.Source `json:"source"`
	Count  int           `json:"count"`
}

// SourceBreakdown counts events by source, omitting sources with none.
func SourceBreakdown(events []intake.Event) []SourceCount {
	counts := make(map[intake.Source]int, len(intake.Sources))
	for _, e := range events {
		counts[e.Source]++
	}
	var out []SourceCount
	for _, s := range intake.Sources {
		if counts[s] > 0 {
			out = append(out, SourceCount{Source: s, Count: counts[s]})
		}
	}
	return out
}

// Summary holds headline numbers for a period.
type Summary struct {
	Days       int     `json:"days"`
	Count      int     `json:"count"`
	TotalMg    float64 `json:"total_mg"`
	AvgDailyMg float64 `json:"avg_daily_mg"`
	MaxDoseMg  float64 `json:"max_dose_mg"`
}

// Summarize totals the windowed events. The daily average divides by the
// full period length and is rounded to whole mg.
func Summarize(events []intake.Event, days int, now time.Time) Summary {
	s := Summary{Days: days}
	for _, e := range Window(events, days, now) {
		s.Count++
		s.TotalMg += e.AmountMg
		s.MaxDoseMg = math.Max(s.MaxDoseMg, e.AmountMg)
	}
	if days > 0 {
		s.AvgDailyMg = math.Round(s.TotalMg / float64(days))
	}
	return s
}

// DayLog returns the events on day's calendar date (in day's location),
// newest first, and their total.
func DayLog(events []intake.Event, day time.Time) ([]intake.Event, float64) {
	loc := day.Location()
	want := day.Format(time.DateOnly)
	var out []intake.Event
	total := 0.0
	for _, e := range events {
		if e.Timestamp.In(loc).Format(time.DateOnly) != want {
			continue
		}
		out = append(out, e)
		total += e.AmountMg
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, total
}

// Report bundles every aggregate for one period.
type Report struct {
	Summary   Summary        `json:"summary"`
	Daily     []DailyTotal   `json:"daily"`
	TimeOfDay []DayPartTotal `json:"time_of_day"`
	TopDrinks []DrinkCount   `json:"top_drinks"`
	Sources   []SourceCount  `json:"sources"`
}

// Build computes a Report over the last `days` days. Time-of-day buckets use
// now's location.
func Build(events []intake.Event, days int, now time.Time) Report {
	window := Window(events, days, now)
	local := make([]intake.Event, len(window))
	for i, e := range window {
		e.Timestamp = e.Timestamp.In(now.Location())
		local[i] = e
	}
	return Report{
		Summary:   Summarize(events, days, now),
		Daily:     DailyTotals(events, days, now),
		TimeOfDay: TimeOfDayTotals(local),
		TopDrinks: TopDrinks(window, 3),
		Sources:   SourceBreakdown(window),
	}
}
