// Package tracker is the application layer: it owns the in-memory intake log
// and settings, persists every mutation, and runs the pure engines
// (metabolism, alert, insight, report) against a consistent snapshot.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lazypower/halflife/internal/alert"
	"github.com/lazypower/halflife/internal/analyzer"
	"github.com/lazypower/halflife/internal/catalog"
	"github.com/lazypower/halflife/internal/insight"
	"github.com/lazypower/halflife/internal/intake"
	"github.com/lazypower/halflife/internal/logging"
	"github.com/lazypower/halflife/internal/metabolism"
	"github.com/lazypower/halflife/internal/report"
	"github.com/lazypower/halflife/internal/store"
)

// ErrPersist wraps a failed save. The in-memory state is rolled back before
// it is returned.
var ErrPersist = errors.New("persist failed")

// Persistence is the storage port. *store.DB satisfies it.
type Persistence interface {
	LoadEvents() ([]intake.Event, error)
	SaveEvents([]intake.Event) error
	LoadSettings() (intake.Settings, error)
	SaveSettings(intake.Settings) error
}

// Tracker serializes access to the log and settings.
type Tracker struct {
	mu       sync.RWMutex
	store    Persistence
	log      *intake.Log
	settings intake.Settings
	analyzer *analyzer.Fallback
	loc      *time.Location
	logger   *zap.Logger

	// Clock returns the current instant. Tests replace it.
	Clock func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// New loads the persisted state. Corrupt documents are logged and replaced
// with whatever could be recovered; only storage errors fail.
func New(p Persistence, logger *zap.Logger) (*Tracker, error) {
	logger = logging.OrNop(logger)

	events, err := p.LoadEvents()
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if err != nil {
		logger.Warn("intake log corrupt, continuing with recovered events",
			zap.Error(err), zap.Int("recovered", len(events)))
	}

	settings, err := p.LoadSettings()
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if err != nil {
		logger.Warn("settings corrupt, using defaults", zap.Error(err))
	}

	log, skipped := intake.NewLog(events)
	if skipped > 0 {
		logger.Warn("skipped invalid intake events", zap.Int("skipped", skipped))
	}

	return &Tracker{
		store:    p,
		log:      log,
		settings: settings,
		analyzer: analyzer.WithFallback(nil, 0, 0, logger),
		loc:      time.Local,
		logger:   logger,
		Clock:    time.Now,
		stopCh:   make(chan struct{}),
	}, nil
}

// SetAnalyzer configures the image analysis collaborator.
func (t *Tracker) SetAnalyzer(a *analyzer.Fallback) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.analyzer = a
}

// SetLocation sets the zone used for calendar days and day-part buckets.
func (t *Tracker) SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loc = loc
}

// Location returns the zone used for calendar days.
func (t *Tracker) Location() *time.Location {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loc
}

func (t *Tracker) now() time.Time {
	return t.Clock().In(t.loc)
}

// localized returns events with timestamps in the tracker's zone.
func (t *Tracker) localized(events []intake.Event) []intake.Event {
	for i := range events {
		events[i].Timestamp = events[i].Timestamp.In(t.loc)
	}
	return events
}

// AddRequest describes a new intake. When Brand is set the name and dose
// come from the catalog and Name and AmountMg are ignored.
type AddRequest struct {
	Name      string    `json:"name"`
	AmountMg  float64   `json:"amount_mg"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Symptoms  []string  `json:"symptoms"`

	Brand string `json:"brand,omitempty"`
	Drink string `json:"drink,omitempty"`
	Size  string `json:"size,omitempty"`
}

// AddResult is the stored event and the alert raised by adding it.
type AddResult struct {
	Event intake.Event `json:"event"`
	Alert alert.Alert  `json:"alert"`
}

// Add validates and records an intake, evaluating the alert against the
// level just before the new dose.
func (t *Tracker) Add(req AddRequest) (AddResult, error) {
	name, mg := req.Name, req.AmountMg
	source, err := intake.ParseSource(req.Source)
	if err != nil {
		return AddResult{}, err
	}
	if req.Brand != "" {
		name, mg, err = catalog.Resolve(req.Brand, req.Drink, req.Size)
		if err != nil {
			return AddResult{}, err
		}
		source = intake.SourceBrand
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	e, err := intake.New(name, mg, source, req.Timestamp, now, req.Symptoms)
	if err != nil {
		return AddResult{}, err
	}
	a, err := alert.EvaluateDose(t.log.Events(), e.AmountMg, t.settings, now)
	if err != nil {
		return AddResult{}, err
	}

	if _, err := t.mutate(func(l *intake.Log) (intake.Event, error) {
		return e, l.Append(e)
	}); err != nil {
		return AddResult{}, err
	}

	fields := []zap.Field{
		zap.String("id", e.ID),
		zap.String("name", e.Name),
		zap.Float64("amount_mg", e.AmountMg),
		zap.String("source", string(e.Source)),
	}
	if a.Fired() {
		fields = append(fields, zap.Stringer("alert", a.Level), zap.Float64("level_mg", a.AfterMg))
	}
	t.logger.Info("intake added", fields...)

	return AddResult{Event: e, Alert: a}, nil
}

// Remove deletes an event by id.
func (t *Tracker) Remove(id string) (intake.Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, err := t.mutate(func(l *intake.Log) (intake.Event, error) {
		return l.Remove(id)
	})
	if err == nil {
		t.logger.Info("intake removed", zap.String("id", id))
	}
	return e, err
}

// SetSymptoms replaces the symptom tags of an event.
func (t *Tracker) SetSymptoms(id string, symptoms []string) (intake.Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mutate(func(l *intake.Log) (intake.Event, error) {
		return l.SetSymptoms(id, symptoms)
	})
}

// Correct amends an event's dose, time or name.
func (t *Tracker) Correct(id string, c intake.Correction) (intake.Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mutate(func(l *intake.Log) (intake.Event, error) {
		return l.Correct(id, c)
	})
}

// mutate applies fn and saves the log, restoring the previous state when
// the save fails. Callers hold the write lock.
func (t *Tracker) mutate(fn func(*intake.Log) (intake.Event, error)) (intake.Event, error) {
	snapshot := t.log.Events()
	e, err := fn(t.log)
	if err != nil {
		return intake.Event{}, err
	}
	if err := t.store.SaveEvents(t.log.Events()); err != nil {
		t.log, _ = intake.NewLog(snapshot)
		t.logger.Error("save intake log failed", zap.Error(err))
		return intake.Event{}, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return e, nil
}

// Events returns every event, newest first.
func (t *Tracker) Events() []intake.Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.localized(t.log.Recent())
}

// Settings returns the current settings.
func (t *Tracker) Settings() intake.Settings {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.settings
}

// UpdateSettings validates and persists new settings.
func (t *Tracker) UpdateSettings(s intake.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.SaveSettings(s); err != nil {
		t.logger.Error("save settings failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	t.settings = s
	t.logger.Info("settings updated",
		zap.Float64("daily_limit_mg", s.DailyLimitMg),
		zap.Float64("half_life_hours", s.HalfLifeHours),
	)
	return nil
}

// Status is the dashboard snapshot at one instant.
type Status struct {
	At           time.Time                `json:"at"`
	LevelMg      float64                  `json:"level_mg"`
	Band         metabolism.Band          `json:"band"`
	DailyLimitMg float64                  `json:"daily_limit_mg"`
	TodayTotalMg float64                  `json:"today_total_mg"`
	TodayCount   int                      `json:"today_count"`
	Sleep        metabolism.SleepForecast `json:"sleep"`
}

// Status computes the current level, band, today's total and the sleep
// forecast. Nothing is cached.
func (t *Tracker) Status() (Status, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.now()
	events := t.localized(t.log.Events())
	level, err := metabolism.CurrentLevel(events, t.settings.HalfLifeHours, now)
	if err != nil {
		return Status{}, err
	}
	sleep, err := metabolism.ForecastSleep(level, t.settings, now)
	if err != nil {
		return Status{}, err
	}
	today, total := report.DayLog(events, now)

	return Status{
		At:           now,
		LevelMg:      level,
		Band:         metabolism.Classify(level, t.settings.DailyLimitMg),
		DailyLimitMg: t.settings.DailyLimitMg,
		TodayTotalMg: total,
		TodayCount:   len(today),
		Sleep:        sleep,
	}, nil
}

// DefaultCurveStep is the sampling interval of Curve.
const DefaultCurveStep = 15 * time.Minute

// Curve projects the level from now over the next hours.
func (t *Tracker) Curve(hours int) ([]metabolism.Point, error) {
	if hours <= 0 {
		return nil, fmt.Errorf("curve hours must be positive: %d", hours)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return metabolism.Curve(t.log.Events(), t.settings.HalfLifeHours, t.now(),
		time.Duration(hours)*time.Hour, DefaultCurveStep)
}

// Insights derives the correlation insight from the full history in the
// tracker's zone.
func (t *Tracker) Insights() (*insight.Insight, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return insight.Derive(t.localized(t.log.Events()))
}

// Report aggregates the trailing window of days.
func (t *Tracker) Report(days int) (report.Report, error) {
	if days <= 0 {
		return report.Report{}, fmt.Errorf("report days must be positive: %d", days)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return report.Build(t.localized(t.log.Events()), days, t.now()), nil
}

// DayLog returns the events on day's calendar date and their total.
func (t *Tracker) DayLog(day time.Time) ([]intake.Event, float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return report.DayLog(t.localized(t.log.Events()), day.In(t.loc))
}

// Analyze estimates the caffeine in a drink photo. It always yields an
// estimate; failures produce the low-confidence default.
func (t *Tracker) Analyze(ctx context.Context, image []byte, mediaType string) *analyzer.Estimate {
	t.mu.RLock()
	a := t.analyzer
	t.mu.RUnlock()
	est, _ := a.Analyze(ctx, image, mediaType)
	return est
}

// StartRefresh calls fn with a fresh status immediately and then on every
// tick until Stop.
func (t *Tracker) StartRefresh(interval time.Duration, fn func(Status)) {
	emit := func() {
		s, err := t.Status()
		if err != nil {
			t.logger.Warn("refresh status", zap.Error(err))
			return
		}
		fn(s)
	}
	emit()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				emit()
			case <-t.stopCh:
				return
			}
		}
	}()
}

// Stop shuts down the refresh goroutine.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
}
