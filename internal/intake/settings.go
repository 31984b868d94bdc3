package intake

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Clinical bounds for the configurable half-life, in hours.
const (
	MinHalfLifeHours = 3.0
	MaxHalfLifeHours = 10.0
)

var (
	ErrInvalidHalfLife  = fmt.Errorf("half-life must be between %g and %g hours", MinHalfLifeHours, MaxHalfLifeHours)
	ErrInvalidLimit     = errors.New("daily limit must be positive")
	ErrInvalidThreshold = errors.New("sleep threshold must be positive")
	ErrInvalidClock     = errors.New("clock time must be HH:MM")
)

// Settings is the single user-editable configuration of the tracker.
type Settings struct {
	DailyLimitMg     float64 `json:"dailyLimitMg" yaml:"daily_limit_mg"`
	HalfLifeHours    float64 `json:"halfLifeHours" yaml:"half_life_hours"`
	Bedtime          string  `json:"bedtime" yaml:"bedtime"`
	WakeTime         string  `json:"wakeTime" yaml:"wake_time"`
	SleepThresholdMg float64 `json:"sleepThresholdMg" yaml:"sleep_threshold_mg"`
}

// DefaultSettings returns the settings a new user starts with.
func DefaultSettings() Settings {
	return Settings{
		DailyLimitMg:     400,
		HalfLifeHours:    5,
		Bedtime:          "23:00",
		WakeTime:         "07:00",
		SleepThresholdMg: 50,
	}
}

// ValidateHalfLife enforces the clinical range.
func ValidateHalfLife(h float64) error {
	if math.IsNaN(h) || h < MinHalfLifeHours || h > MaxHalfLifeHours {
		return fmt.Errorf("%w: %v", ErrInvalidHalfLife, h)
	}
	return nil
}

// Validate checks every field.
func (s Settings) Validate() error {
	if err := ValidateHalfLife(s.HalfLifeHours); err != nil {
		return err
	}
	if math.IsNaN(s.DailyLimitMg) || s.DailyLimitMg <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidLimit, s.DailyLimitMg)
	}
	if math.IsNaN(s.SleepThresholdMg) || s.SleepThresholdMg <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, s.SleepThresholdMg)
	}
	if _, _, err := ParseClock(s.Bedtime); err != nil {
		return fmt.Errorf("bedtime: %w", err)
	}
	if _, _, err := ParseClock(s.WakeTime); err != nil {
		return fmt.Errorf("wake time: %w", err)
	}
	return nil
}

// ParseClock parses an "HH:MM" wall-clock time. Both fields are exactly two
// digits.
func ParseClock(s string) (hour, minute int, err error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || !twoDigits(hh) || !twoDigits(mm) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	hour, err = strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	minute, err = strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return hour, minute, nil
}

func twoDigits(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}

// ClockOn returns the instant at which the HH:MM clock falls on day's
// calendar date, in day's location.
func ClockOn(clock string, day time.Time) (time.Time, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := day.Date()
	return time.Date(y, mo, d, h, m, 0, 0, day.Location()), nil
}
