// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// ValueKind discriminates the dynamically-typed values read from storage.
type ValueKind int

// Raw value kinds.
const (
	ValueAbsent ValueKind = iota
	ValueNumber
	ValueText
)

// RawValue is a tagged union over the types a SQLite cell can hold before
// normalization: absent (NULL), numeric, or textual.
type RawValue struct {
	Kind   ValueKind
	Number float64
	Text   string
}

// Absent returns an absent raw value.
func Absent() RawValue {
	return RawValue{Kind: ValueAbsent}
}

// Number returns a numeric raw value.
func Number(v float64) RawValue {
	return RawValue{Kind: ValueNumber, Number: v}
}

// Text returns a textual raw value.
func Text(s string) RawValue {
	return RawValue{Kind: ValueText, Text: s}
}

// RawRow is a session row as read verbatim from storage, untyped until
// normalized.
type RawRow struct {
	ID       RawValue
	Time     RawValue
	Duration RawValue
}

// GamingSession is the canonical session record. StartTime is always a valid
// instant after normalization; Duration is minutes and never negative.
type GamingSession struct {
	GameID    int64
	StartTime time.Time
	Duration  float64
}

// TopGame is one entry of the per-title ranking.
type TopGame struct {
	GameID int64
	Name   string
	Hours  float64
}

// DayBucket sums hours for one day-of-week label.
type DayBucket struct {
	Day   string
	Hours float64
}

// HourBucket sums hours for one hour-of-day label ("00:00".."23:00").
type HourBucket struct {
	Hour  string
	Hours float64
}

// MonthBucket sums hours for one "YYYY-MM" calendar month.
type MonthBucket struct {
	Month string
	Hours float64
}

// StatsData is the pipeline's sole output. It is produced once per upload and
// treated as immutable by consumers.
type StatsData struct {
	TotalGames            int
	TotalHours            float64
	TopGames              []TopGame
	WeeklyDistribution    []DayBucket
	MonthlyDistribution   []MonthBucket
	TimeOfDayDistribution []HourBucket
	Sessions              []GamingSession
	Names                 map[int64]string
}

// DisplayName resolves a game id against an identity map, falling back to a
// synthesized label.
func DisplayName(names map[int64]string, id int64) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("AppID: %d", id)
}

// DisplayName resolves a game id to its dictionary name or the synthesized
// fallback label.
func (s StatsData) DisplayName(id int64) string {
	return DisplayName(s.Names, id)
}
