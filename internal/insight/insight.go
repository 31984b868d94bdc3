// Package insight mines the intake history for personal patterns around
// tagged symptoms.
//
// This is a heuristic advisory. It compares plain means and counts, with no
// significance testing and no confidence intervals, and should not be read
// as a statistical or clinical result.
package insight

import (
	"fmt"
	"math"
	"strings"

	"github.com/lazypower/halflife/internal/intake"
)

// DoseMarginMg is how far the symptomatic average must exceed the
// symptom-free average before dose is blamed.
const DoseMarginMg = 30.0

// FallbackSymptomLabel names the top symptom when its id is not in the
// vocabulary.
const FallbackSymptomLabel = "discomfort"

// Recommendation identifies which rule produced the advice.
type Recommendation string

const (
	RecommendDose      Recommendation = "dose"
	RecommendTiming    Recommendation = "timing"
	RecommendHydration Recommendation = "hydration"
)

// Insight summarizes symptom correlations across the whole log.
type Insight struct {
	AvgSymptomDoseMg    float64        `json:"avg_symptom_dose_mg"`
	AvgSafeDoseMg       float64        `json:"avg_safe_dose_mg"`
	RiskiestDayPart     intake.DayPart `json:"riskiest_day_part"`
	RiskiestBucketLabel string         `json:"riskiest_bucket_label"`
	TopSymptom          string         `json:"top_symptom"`
	TopSymptomLabel     string         `json:"top_symptom_label"`
	Kind                Recommendation `json:"recommendation_kind"`
	Recommendation      string         `json:"recommendation"`
	SymptomEventCount   int            `json:"symptom_event_count"`
}

// Derive computes an Insight over every event. Buckets use each timestamp's
// own location. ok is false when no event carries a symptom tag.
func Derive(events []intake.Event) (in *Insight, ok bool) {
	var withSymptoms, without []intake.Event
	for _, e := range events {
		if e.HasSymptoms() {
			withSymptoms = append(withSymptoms, e)
		} else {
			without = append(without, e)
		}
	}
	if len(withSymptoms) == 0 {
		return nil, false
	}

	in = &Insight{
		AvgSymptomDoseMg:  meanDose(withSymptoms),
		AvgSafeDoseMg:     meanDose(without),
		RiskiestDayPart:   riskiestDayPart(withSymptoms),
		SymptomEventCount: len(withSymptoms),
	}
	in.RiskiestBucketLabel = in.RiskiestDayPart.Label()

	in.TopSymptom = topSymptom(withSymptoms)
	in.TopSymptomLabel = FallbackSymptomLabel
	if s, found := intake.LookupSymptom(in.TopSymptom); found {
		in.TopSymptomLabel = s.Label
	}

	in.Kind, in.Recommendation = recommend(in)
	return in, true
}

// meanDose is the average dose rounded to whole mg, or 0 for no events.
func meanDose(events []intake.Event) float64 {
	if len(events) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range events {
		sum += e.AmountMg
	}
	return math.Round(sum / float64(len(events)))
}

// riskiestDayPart returns the bucket with the most events. Ties go to the
// earlier bucket in intake.DayParts order.
func riskiestDayPart(events []intake.Event) intake.DayPart {
	var counts [4]int
	for _, e := range events {
		counts[intake.DayPartOf(e.Timestamp)]++
	}
	best, bestCount := intake.Morning, -1
	for _, d := range intake.DayParts {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}

// topSymptom counts every tag on every event. Ties go to the tag seen first.
func topSymptom(events []intake.Event) string {
	counts := make(map[string]int)
	var order []string
	for _, e := range events {
		for _, s := range e.Symptoms {
			if s == "" {
				continue
			}
			if _, seen := counts[s]; !seen {
				order = append(order, s)
			}
			counts[s]++
		}
	}
	top, topCount := "", 0
	for _, s := range order {
		if counts[s] > topCount {
			top, topCount = s, counts[s]
		}
	}
	return top
}

func recommend(in *Insight) (Recommendation, string) {
	switch {
	case in.AvgSymptomDoseMg > in.AvgSafeDoseMg+DoseMarginMg:
		return RecommendDose, fmt.Sprintf(
			"You tend to feel %s when a single serving gets close to %.0f mg. Try keeping each serving around %.0f mg.",
			strings.ToLower(in.TopSymptomLabel), in.AvgSymptomDoseMg, in.AvgSafeDoseMg)
	case in.RiskiestDayPart == intake.Evening || in.RiskiestDayPart == intake.Night:
		return RecommendTiming, fmt.Sprintf(
			"Your %s mostly shows up in the %s. Try finishing your last cup before 2 PM.",
			strings.ToLower(in.TopSymptomLabel), in.RiskiestDayPart)
	default:
		return RecommendHydration, fmt.Sprintf(
			"You've reported %s a few times recently. Drink an extra 200 ml of water with each cup.",
			strings.ToLower(in.TopSymptomLabel))
	}
}
