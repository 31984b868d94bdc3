package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors. Callers reject input at the boundary with these before
// anything reaches the decay math.
var (
	ErrInvalidDose      = errors.New("dose must be a finite, non-negative number of mg")
	ErrInvalidTimestamp = errors.New("timestamp is missing or malformed")
	ErrUnknownSource    = errors.New("unknown source")
	ErrUnknownSymptom   = errors.New("unknown symptom")
	ErrNotFound         = errors.New("intake not found")
	ErrDuplicateID      = errors.New("intake id already exists")
)

// DefaultName is used when an intake is logged without a display name.
const DefaultName = "Caffeine"

// Source records how an intake was entered.
type Source string

const (
	SourceManual Source = "manual"
	SourceBrand  Source = "brand"
	SourceAI     Source = "ai"
)

// Sources lists every source in display order.
var Sources = []Source{SourceManual, SourceBrand, SourceAI}

// ParseSource validates a source tag. "catalog" is accepted as an alias for brand.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual", "":
		return SourceManual, nil
	case "brand", "catalog":
		return SourceBrand, nil
	case "ai":
		return SourceAI, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
}

// Valid reports whether s is one of the closed set of sources.
func (s Source) Valid() bool {
	return s == SourceManual || s == SourceBrand || s == SourceAI
}

// Event is a single logged intake. Events are owned by a Log and referenced
// elsewhere only by ID.
type Event struct {
	ID        string
	Name      string
	AmountMg  float64
	Timestamp time.Time
	Source    Source
	Symptoms  []string
}

// eventJSON is the persisted shape. Timestamps are unix milliseconds so blobs
// written by earlier versions of the app still load.
type eventJSON struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	AmountMg  float64  `json:"amountMg"`
	Timestamp *int64   `json:"timestamp"`
	Source    Source   `json:"source"`
	Symptoms  []string `json:"symptoms,omitempty"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	ms := e.Timestamp.UnixMilli()
	return json.Marshal(eventJSON{
		ID:        e.ID,
		Name:      e.Name,
		AmountMg:  e.AmountMg,
		Timestamp: &ms,
		Source:    e.Source,
		Symptoms:  e.Symptoms,
	})
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	// A missing or epoch timestamp would date the intake to 1970.
	if raw.Timestamp == nil || *raw.Timestamp <= 0 {
		return ErrInvalidTimestamp
	}
	*e = Event{
		ID:        raw.ID,
		Name:      raw.Name,
		AmountMg:  raw.AmountMg,
		Timestamp: time.UnixMilli(*raw.Timestamp),
		Source:    raw.Source,
		Symptoms:  raw.Symptoms,
	}
	if len(e.Symptoms) == 0 {
		e.Symptoms = nil
	}
	return nil
}

// HasSymptoms reports whether any adverse reaction was tagged on the event.
func (e Event) HasSymptoms() bool {
	return len(e.Symptoms) > 0
}

// clone returns a copy that shares no backing arrays with e.
func (e Event) clone() Event {
	if e.Symptoms != nil {
		e.Symptoms = append([]string(nil), e.Symptoms...)
	}
	return e
}

// NewID returns a fresh opaque event identifier.
func NewID() string {
	return uuid.NewString()
}

// NormalizeTime strips the monotonic reading and sub-millisecond precision so
// an event survives a persistence round trip unchanged.
func NormalizeTime(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli())
}

// ValidateDose rejects negative, NaN and infinite doses.
func ValidateDose(mg float64) error {
	if math.IsNaN(mg) || math.IsInf(mg, 0) || mg < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidDose, mg)
	}
	return nil
}

// ValidateTimestamp rejects the zero time and anything at or before the
// unix epoch.
func ValidateTimestamp(t time.Time) error {
	if t.IsZero() || t.UnixMilli() <= 0 {
		return ErrInvalidTimestamp
	}
	return nil
}

// Validate checks every field of an event as it would be persisted.
func (e Event) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("event id is empty")
	}
	if err := ValidateDose(e.AmountMg); err != nil {
		return err
	}
	if err := ValidateTimestamp(e.Timestamp); err != nil {
		return err
	}
	if !e.Source.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSource, e.Source)
	}
	for _, s := range e.Symptoms {
		if _, ok := LookupSymptom(s); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownSymptom, s)
		}
	}
	return nil
}

// New builds a validated event. A zero timestamp means now.
func New(name string, amountMg float64, source Source, ts, now time.Time, symptoms []string) (Event, error) {
	if err := ValidateDose(amountMg); err != nil {
		return Event{}, err
	}
	if !source.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	syms, err := NormalizeSymptoms(symptoms)
	if err != nil {
		return Event{}, err
	}
	if ts.IsZero() {
		ts = now
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	return Event{
		ID:        NewID(),
		Name:      name,
		AmountMg:  amountMg,
		Timestamp: NormalizeTime(ts),
		Source:    source,
		Symptoms:  syms,
	}, nil
}
