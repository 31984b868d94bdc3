package intake

import "time"

// DayPart is one of four fixed time-of-day buckets.
type DayPart int

const (
	Morning   DayPart = iota // [06:00, 12:00)
	Afternoon                // [12:00, 18:00)
	Evening                  // [18:00, 24:00)
	Night                    // [00:00, 06:00)
)

// DayParts lists the buckets in enumeration order, which is also the
// tie-break order wherever a "most common" bucket is picked.
var DayParts = []DayPart{Morning, Afternoon, Evening, Night}

// DayPartOf buckets t by its hour in t's own location. Convert with t.In
// first when a different wall clock applies.
func DayPartOf(t time.Time) DayPart {
	h := t.Hour()
	switch {
	case h >= 6 && h < 12:
		return Morning
	case h >= 12 && h < 18:
		return Afternoon
	case h >= 18:
		return Evening
	default:
		return Night
	}
}

func (d DayPart) String() string {
	switch d {
	case Morning:
		return "morning"
	case Afternoon:
		return "afternoon"
	case Evening:
		return "evening"
	case Night:
		return "night"
	default:
		return "unknown"
	}
}

// Label is the human-readable bucket name including its hour range.
func (d DayPart) Label() string {
	switch d {
	case Morning:
		return "Morning (06-12)"
	case Afternoon:
		return "Afternoon (12-18)"
	case Evening:
		return "Evening (18-24)"
	case Night:
		return "Late night (00-06)"
	default:
		return "Unknown"
	}
}

func (d DayPart) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
