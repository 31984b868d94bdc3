package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lazypower/halflife/internal/intake"
)

// Keys under which the two persisted documents live.
const (
	EventsKey   = "caffe_logs"
	SettingsKey = "caffe_settings"
)

// ErrCorrupt marks a stored document that could not be decoded. Loads that
// return it still return usable data.
var ErrCorrupt = errors.New("stored document is corrupt")

// recoveryDepth bounds how far back a corrupt document is recovered from.
const recoveryDepth = 3

// LoadEvents reads the intake log. Entries that fail to decode are dropped.
// If the whole document is malformed, the newest readable previous version
// is returned together with an ErrCorrupt error.
func (db *DB) LoadEvents() ([]intake.Event, error) {
	raw, ok, err := db.GetBlob(EventsKey)
	if err != nil || !ok {
		return nil, err
	}
	events, err := decodeEvents(raw)
	if err == nil {
		return events, nil
	}

	corrupt := fmt.Errorf("%w: %s: %v", ErrCorrupt, EventsKey, err)
	history, herr := db.BlobHistory(EventsKey, recoveryDepth)
	if herr != nil {
		return nil, errors.Join(corrupt, herr)
	}
	for _, prev := range history {
		if events, err := decodeEvents(prev); err == nil {
			return events, corrupt
		}
	}
	return nil, corrupt
}

func decodeEvents(raw []byte) ([]intake.Event, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	events := make([]intake.Event, 0, len(items))
	for _, item := range items {
		var e intake.Event
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// SaveEvents writes the full intake log.
func (db *DB) SaveEvents(events []intake.Event) error {
	if events == nil {
		events = []intake.Event{}
	}
	raw, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	return db.PutBlob(EventsKey, raw)
}

// LoadSettings reads the settings document, overlaid on the defaults so
// that missing fields keep their default value. A malformed or invalid
// document yields the defaults and an ErrCorrupt error.
func (db *DB) LoadSettings() (intake.Settings, error) {
	defaults := intake.DefaultSettings()
	raw, ok, err := db.GetBlob(SettingsKey)
	if err != nil {
		return defaults, err
	}
	if !ok {
		return defaults, nil
	}

	s := defaults
	if err := json.Unmarshal(raw, &s); err != nil {
		return defaults, fmt.Errorf("%w: %s: %v", ErrCorrupt, SettingsKey, err)
	}
	if err := s.Validate(); err != nil {
		return defaults, fmt.Errorf("%w: %s: %v", ErrCorrupt, SettingsKey, err)
	}
	return s, nil
}

// SaveSettings writes the settings document after validating it.
func (db *DB) SaveSettings(s intake.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return db.PutBlob(SettingsKey, raw)
}
