package intake

import (
	"fmt"
	"sort"
	"time"
)

// Log is the append-only collection that owns every intake event. It is not
// safe for concurrent use; the tracker serializes access.
type Log struct {
	events []Event
}

// NewLog builds a log from persisted events. Invalid or duplicate entries are
// skipped and counted.
func NewLog(events []Event) (*Log, int) {
	l := &Log{}
	skipped := 0
	for _, e := range events {
		if err := l.Append(e); err != nil {
			skipped++
		}
	}
	return l, skipped
}

// Len returns the number of events.
func (l *Log) Len() int {
	return len(l.events)
}

// Append adds an event after validating it.
func (l *Log) Append(e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if l.index(e.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	l.events = append(l.events, e.clone())
	return nil
}

// Get returns a copy of the event with the given id.
func (l *Log) Get(id string) (Event, error) {
	i := l.index(id)
	if i < 0 {
		return Event{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l.events[i].clone(), nil
}

// Remove deletes the event with the given id and returns it.
func (l *Log) Remove(id string) (Event, error) {
	i := l.index(id)
	if i < 0 {
		return Event{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e := l.events[i]
	l.events = append(l.events[:i], l.events[i+1:]...)
	return e, nil
}

// SetSymptoms replaces the symptom tags of an event.
func (l *Log) SetSymptoms(id string, symptoms []string) (Event, error) {
	i := l.index(id)
	if i < 0 {
		return Event{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	syms, err := NormalizeSymptoms(symptoms)
	if err != nil {
		return Event{}, err
	}
	l.events[i].Symptoms = syms
	return l.events[i].clone(), nil
}

// Correction holds the fields of an event that may be amended after the fact.
// Nil fields are left unchanged.
type Correction struct {
	AmountMg  *float64
	Timestamp *time.Time
	Name      *string
}

// Correct amends dose, time or name of an event.
func (l *Log) Correct(id string, c Correction) (Event, error) {
	i := l.index(id)
	if i < 0 {
		return Event{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e := l.events[i]
	if c.AmountMg != nil {
		if err := ValidateDose(*c.AmountMg); err != nil {
			return Event{}, err
		}
		e.AmountMg = *c.AmountMg
	}
	if c.Timestamp != nil {
		if err := ValidateTimestamp(*c.Timestamp); err != nil {
			return Event{}, err
		}
		e.Timestamp = NormalizeTime(*c.Timestamp)
	}
	if c.Name != nil && *c.Name != "" {
		e.Name = *c.Name
	}
	l.events[i] = e
	return e.clone(), nil
}

// Events returns a copy of all events in insertion order.
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	for i, e := range l.events {
		out[i] = e.clone()
	}
	return out
}

// Recent returns a copy of all events, newest first.
func (l *Log) Recent() []Event {
	out := l.Events()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func (l *Log) index(id string) int {
	for i := range l.events {
		if l.events[i].ID == id {
			return i
		}
	}
	return -1
}
