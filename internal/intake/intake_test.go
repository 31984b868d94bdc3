package intake

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		input string
		want  Source
	}{
		{"manual", SourceManual},
		{"", SourceManual},
		{"brand", SourceBrand},
		{"Catalog", SourceBrand},
		{"ai", SourceAI},
	}
	for _, tt := range tests {
		got, err := ParseSource(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseSource("fax")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestNewEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	e, err := New("  Latte  ", 150, SourceBrand, time.Time{}, now, []string{"Jitters", "jitters", " headache"})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "Latte", e.Name)
	assert.True(t, e.Timestamp.Equal(now), "zero timestamp should default to now")
	assert.Equal(t, []string{"jitters", "headache"}, e.Symptoms)

	e, err = New("", 80, SourceManual, now, now, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultName, e.Name)
	assert.Nil(t, e.Symptoms)
}

func TestNewEventRejectsBadInput(t *testing.T) {
	now := time.Now()

	_, err := New("x", -1, SourceManual, now, now, nil)
	assert.ErrorIs(t, err, ErrInvalidDose)

	_, err = New("x", 10, Source("fax"), now, now, nil)
	assert.ErrorIs(t, err, ErrUnknownSource)

	_, err = New("x", 10, SourceManual, now, now, []string{"sneezing"})
	assert.ErrorIs(t, err, ErrUnknownSymptom)
}

func TestEventJSONRoundTrip(t *testing.T) {
	e := Event{
		ID:        "a1",
		Name:      "Cold Brew",
		AmountMg:  205,
		Timestamp: time.UnixMilli(1767225600123),
		Source:    SourceBrand,
		Symptoms:  []string{"anxiety"},
	}
	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestamp":1767225600123`)

	var got Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, e, got)
}

func TestEventJSONEmptySymptomsIsNil(t *testing.T) {
	var got Event
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","name":"n","amountMg":1,"timestamp":1,"source":"manual","symptoms":[]}`), &got))
	assert.Nil(t, got.Symptoms)
	assert.False(t, got.HasSymptoms())
}

func TestEventJSONRequiresTimestamp(t *testing.T) {
	for _, doc := range []string{
		`{"id":"x","name":"n","amountMg":1,"source":"manual"}`,
		`{"id":"x","name":"n","amountMg":1,"timestamp":null,"source":"manual"}`,
		`{"id":"x","name":"n","amountMg":1,"timestamp":0,"source":"manual"}`,
	} {
		var got Event
		assert.ErrorIs(t, json.Unmarshal([]byte(doc), &got), ErrInvalidTimestamp, doc)
	}
	assert.ErrorIs(t, ValidateTimestamp(time.UnixMilli(0)), ErrInvalidTimestamp)
}

func TestSettingsValidate(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())

	s := DefaultSettings()
	s.HalfLifeHours = 2
	assert.ErrorIs(t, s.Validate(), ErrInvalidHalfLife)

	s = DefaultSettings()
	s.HalfLifeHours = 10.5
	assert.ErrorIs(t, s.Validate(), ErrInvalidHalfLife)

	s = DefaultSettings()
	s.DailyLimitMg = 0
	assert.ErrorIs(t, s.Validate(), ErrInvalidLimit)

	s = DefaultSettings()
	s.SleepThresholdMg = -5
	assert.ErrorIs(t, s.Validate(), ErrInvalidThreshold)

	s = DefaultSettings()
	s.Bedtime = "25:00"
	assert.ErrorIs(t, s.Validate(), ErrInvalidClock)
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("23:05")
	require.NoError(t, err)
	assert.Equal(t, 23, h)
	assert.Equal(t, 5, m)

	for _, bad := range []string{"", "2300", "ab:cd", "12:60", "-1:00", "7:5", "7:00", "+1:00", "23:+5", "123:00"} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestDayPartOf(t *testing.T) {
	tests := []struct {
		hour int
		want DayPart
	}{
		{0, Night},
		{5, Night},
		{6, Morning},
		{11, Morning},
		{12, Afternoon},
		{17, Afternoon},
		{18, Evening},
		{23, Evening},
	}
	for _, tt := range tests {
		ts := time.Date(2026, 1, 1, tt.hour, 59, 0, 0, time.UTC)
		assert.Equal(t, tt.want, DayPartOf(ts), "hour %d", tt.hour)
	}
}

func TestLogMutations(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l, skipped := NewLog(nil)
	assert.Equal(t, 0, skipped)

	a, err := New("Americano", 150, SourceBrand, now.Add(-2*time.Hour), now, nil)
	require.NoError(t, err)
	b, err := New("Red Bull", 80, SourceManual, now, now, nil)
	require.NoError(t, err)
	require.NoError(t, l.Append(a))
	require.NoError(t, l.Append(b))
	assert.ErrorIs(t, l.Append(a), ErrDuplicateID)

	recent := l.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, b.ID, recent[0].ID)

	got, err := l.SetSymptoms(a.ID, []string{"palpitations"})
	require.NoError(t, err)
	assert.Equal(t, []string{"palpitations"}, got.Symptoms)

	dose := 200.0
	got, err = l.Correct(a.ID, Correction{AmountMg: &dose})
	require.NoError(t, err)
	assert.Equal(t, 200.0, got.AmountMg)

	bad := -3.0
	_, err = l.Correct(a.ID, Correction{AmountMg: &bad})
	assert.ErrorIs(t, err, ErrInvalidDose)

	_, err = l.Remove(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len())

	_, err = l.Remove(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogReturnsCopies(t *testing.T) {
	now := time.Now()
	e, err := New("Latte", 75, SourceManual, now, now, []string{"jitters"})
	require.NoError(t, err)
	l, _ := NewLog([]Event{e})

	events := l.Events()
	events[0].Symptoms[0] = "anxiety"
	events[0].AmountMg = 999

	got, err := l.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "jitters", got.Symptoms[0])
	assert.Equal(t, 75.0, got.AmountMg)
}

func TestNewLogSkipsInvalid(t *testing.T) {
	good := Event{ID: "1", Name: "a", AmountMg: 10, Timestamp: time.UnixMilli(1), Source: SourceManual}
	neg := Event{ID: "2", Name: "b", AmountMg: -10, Timestamp: time.UnixMilli(1), Source: SourceManual}
	dup := good

	l, skipped := NewLog([]Event{good, neg, dup})
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 2, skipped)
}
