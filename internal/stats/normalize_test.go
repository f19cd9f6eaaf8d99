package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/gamestat/internal/model"
)

func TestParseTimestampEpochBoundary(t *testing.T) {
	tests := []struct {
		name  string
		value model.RawValue
	}{
		{name: "ten digits are seconds", value: model.Number(1_700_000_000)},
		{name: "thirteen digits are milliseconds", value: model.Number(1_700_000_000_000)},
		{name: "numeric string", value: model.Text("1700000000")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := ParseTimestamp(tt.value, time.UTC)
			if !ok {
				t.Fatalf("expected valid timestamp")
			}
			if parsed.Year() != 2023 {
				t.Fatalf("expected year 2023, got %d (%v)", parsed.Year(), parsed)
			}
		})
	}
}

func TestParseTimestampStrings(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{input: "2023-05-01 10:30:00", want: time.Date(2023, 5, 1, 10, 30, 0, 0, time.UTC)},
		{input: "2023-05-01T10:30:00Z", want: time.Date(2023, 5, 1, 10, 30, 0, 0, time.UTC)},
		{input: "2023-05-01", want: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)},
		{input: "2023/05/01 10:30:00", want: time.Date(2023, 5, 1, 10, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		parsed, ok := ParseTimestamp(model.Text(tt.input), time.UTC)
		if !ok {
			t.Fatalf("%q: expected valid timestamp", tt.input)
		}
		if !parsed.Equal(tt.want) {
			t.Fatalf("%q: expected %v, got %v", tt.input, tt.want, parsed)
		}
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	tests := []struct {
		name  string
		value model.RawValue
	}{
		{name: "absent", value: model.Absent()},
		{name: "zero", value: model.Number(0)},
		{name: "negative", value: model.Number(-5)},
		{name: "garbage text", value: model.Text("not a date")},
		{name: "empty text", value: model.Text("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ParseTimestamp(tt.value, time.UTC); ok {
				t.Fatalf("expected invalid timestamp")
			}
		})
	}
}

func TestParseTimestampIdempotent(t *testing.T) {
	first, ok := ParseTimestamp(model.Number(1_700_000_000), time.UTC)
	if !ok {
		t.Fatalf("expected valid timestamp")
	}
	// Re-running the parse on the canonical epoch value is a no-op.
	second, ok := ParseTimestamp(model.Number(float64(first.Unix())), time.UTC)
	if !ok {
		t.Fatalf("expected valid timestamp")
	}
	if !second.Equal(first) {
		t.Fatalf("expected %v, got %v", first, second)
	}
}

func TestDurationMinutes(t *testing.T) {
	tests := []struct {
		name  string
		value model.RawValue
		want  float64
	}{
		{name: "seconds to minutes", value: model.Number(1800), want: 30},
		{name: "numeric string", value: model.Text("900"), want: 15},
		{name: "non-numeric coerces to zero", value: model.Text("abc"), want: 0},
		{name: "absent coerces to zero", value: model.Absent(), want: 0},
		{name: "negative clamps to zero", value: model.Number(-60), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DurationMinutes(tt.value); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDurationMinutesIdempotentCanonical(t *testing.T) {
	minutes := DurationMinutes(model.Number(1800))
	again := DurationMinutes(model.Number(minutes * 60))
	if again != minutes {
		t.Fatalf("expected %v, got %v", minutes, again)
	}
}

func TestNormalizeDropsInvalidRows(t *testing.T) {
	rows := []model.RawRow{
		{ID: model.Number(1), Time: model.Number(1_700_000_000), Duration: model.Number(1800)},
		{ID: model.Number(2), Time: model.Absent(), Duration: model.Number(600)},
		{ID: model.Number(3), Time: model.Text("garbage"), Duration: model.Number(600)},
		{ID: model.Number(4), Time: model.Number(0), Duration: model.Number(600)},
	}
	sessions := Normalize(rows, time.UTC)
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].GameID != 1 {
		t.Fatalf("expected game 1, got %d", sessions[0].GameID)
	}
	if sessions[0].Duration != 30 {
		t.Fatalf("expected 30 minutes, got %v", sessions[0].Duration)
	}
}

func TestNormalizeNonNumericID(t *testing.T) {
	rows := []model.RawRow{
		{ID: model.Text("mystery"), Time: model.Number(1_700_000_000), Duration: model.Number(60)},
	}
	sessions := Normalize(rows, time.UTC)
	if len(sessions) != 1 {
		t.Fatalf("expected session retained, got %d", len(sessions))
	}
	if sessions[0].GameID != 0 {
		t.Fatalf("expected non-numeric id coerced to 0, got %d", sessions[0].GameID)
	}
}
