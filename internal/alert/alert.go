// Package alert decides whether logging a dose should raise a notification.
//
// The projected level assumes the whole dose is absorbed at once:
// after = before + dose. Rules are checked in order and the first match
// wins:
//
//  1. after > daily limit                      → danger
//  2. after > 200 mg and before <= 200 mg      → warning (upward crossing only)
//  3. otherwise                                → no alert
//
// The before <= 200 guard keeps the warning from firing again on every dose
// taken while already above the line.
package alert

import (
	"fmt"
	"math"
	"time"

	"github.com/lazypower/halflife/internal/intake"
	"github.com/lazypower/halflife/internal/metabolism"
)

// HighThresholdMg is the fixed warning line. It is intentionally not a user
// setting.
const HighThresholdMg = 200.0

// DisplayDuration is how long a client should show an alert before
// dismissing it on its own.
const DisplayDuration = 5 * time.Second

// Level is the severity of an alert.
type Level int

const (
	None Level = iota
	Warning
	Danger
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	default:
		return "none"
	}
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Alert is an advisory notification. It never changes the log.
type Alert struct {
	Level    Level   `json:"level"`
	Message  string  `json:"message,omitempty"`
	BeforeMg float64 `json:"before_mg"`
	AfterMg  float64 `json:"after_mg"`
}

// Fired reports whether the alert should be shown.
func (a Alert) Fired() bool {
	return a.Level != None
}

// Evaluate applies the transition rules to a pre-dose level and a new dose.
func Evaluate(beforeMg, doseMg, dailyLimitMg float64) Alert {
	after := beforeMg + doseMg
	a := Alert{Level: None, BeforeMg: beforeMg, AfterMg: after}

	switch {
	case after > dailyLimitMg:
		a.Level = Danger
		a.Message = fmt.Sprintf("This dose would put you at about %.0f mg, over your daily limit of %.0f mg.",
			math.Round(after), dailyLimitMg)
	case after > HighThresholdMg && beforeMg <= HighThresholdMg:
		a.Level = Warning
		a.Message = fmt.Sprintf("Your level is climbing to about %.0f mg. Expect jitters or a racing heart.",
			math.Round(after))
	}
	return a
}

// EvaluateDose computes the pre-dose level from the existing events at now
// and evaluates a prospective dose against the settings.
func EvaluateDose(existing []intake.Event, doseMg float64, s intake.Settings, now time.Time) (Alert, error) {
	before, err := metabolism.CurrentLevel(existing, s.HalfLifeHours, now)
	if err != nil {
		return Alert{}, err
	}
	return Evaluate(before, doseMg, s.DailyLimitMg), nil
}
