// Package stats contains the aggregation engine and reporting.
package stats

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/gamestat/internal/model"
)

// epochMillisThreshold separates plausible second-resolution epoch values
// (up to year ~2286) from millisecond-resolution ones.
const epochMillisThreshold = 10_000_000_000

// dateLayouts are tried in order for string-encoded timestamps. Layouts
// without a zone are interpreted in the caller's location.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseTimestamp disambiguates the raw time encodings found in session
// databases: unix seconds, unix milliseconds, or a calendar-date string.
// It reports false when the value cannot be resolved to an instant.
func ParseTimestamp(v model.RawValue, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	switch v.Kind {
	case model.ValueAbsent:
		return time.Time{}, false
	case model.ValueNumber:
		return timeFromEpoch(v.Number, loc)
	case model.ValueText:
		text := strings.TrimSpace(v.Text)
		if text == "" {
			return time.Time{}, false
		}
		if num, err := strconv.ParseFloat(text, 64); err == nil {
			return timeFromEpoch(num, loc)
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.ParseInLocation(layout, text, loc); err == nil {
				return parsed.In(loc), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func timeFromEpoch(num float64, loc *time.Location) (time.Time, bool) {
	if math.IsNaN(num) || math.IsInf(num, 0) || num <= 0 {
		return time.Time{}, false
	}
	millis := num * 1000
	if num > epochMillisThreshold {
		millis = num
	}
	return time.UnixMilli(int64(millis)).In(loc), true
}

// DurationMinutes converts a raw duration value, expressed in seconds at the
// source, to minutes. Non-numeric values coerce to 0 and negatives clamp to 0.
func DurationMinutes(v model.RawValue) float64 {
	var seconds float64
	switch v.Kind {
	case model.ValueNumber:
		seconds = v.Number
	case model.ValueText:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			return 0
		}
		seconds = parsed
	default:
		return 0
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0
	}
	return seconds / 60
}

// GameID coerces a raw identifier to an integer id. Non-numeric identifiers
// coerce to 0, which keeps the session but excludes it from the ranking.
func GameID(v model.RawValue) int64 {
	switch v.Kind {
	case model.ValueNumber:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			return 0
		}
		return int64(v.Number)
	case model.ValueText:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			return 0
		}
		return int64(parsed)
	default:
		return 0
	}
}

// Normalize turns raw rows into canonical sessions, dropping rows whose time
// value is absent or unparseable. A session is retained only when its start
// time is strictly after the unix epoch.
func Normalize(rows []model.RawRow, loc *time.Location) []model.GamingSession {
	sessions := make([]model.GamingSession, 0, len(rows))
	for _, row := range rows {
		start, ok := ParseTimestamp(row.Time, loc)
		if !ok {
			continue
		}
		if !start.After(time.Unix(0, 0)) {
			continue
		}
		sessions = append(sessions, model.GamingSession{
			GameID:    GameID(row.ID),
			StartTime: start,
			Duration:  DurationMinutes(row.Duration),
		})
	}
	return sessions
}
