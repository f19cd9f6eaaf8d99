// Package stats contains the aggregation engine and reporting.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/gamestat/internal/model"
)

// Palette holds the fixed colors cycled over unique game ids, assigned by
// first-occurrence order within a view.
var Palette = []string{
	"#3b82f6", "#8b5cf6", "#ec4899", "#f97316",
	"#10b981", "#ef4444", "#06b6d4", "#f59e0b",
}

const minutesPerDay = 24 * 60

// WeekView is the seven-day breakdown of one navigable week.
type WeekView struct {
	Buckets    []model.DayBucket
	TotalHours float64
	AvgHours   float64
	Range      string
	CanPrev    bool
	CanNext    bool
}

// MonthView is the per-day breakdown of one navigable calendar month.
type MonthView struct {
	Buckets    []model.DayBucket
	Year       int
	Month      time.Month
	Label      string
	TotalHours float64
	AvgHours   float64
	CanPrev    bool
	CanNext    bool
}

// TimelineEntry places one session on a 24-hour axis. Percentages are relative
// to the full day; sessions running past midnight are clipped.
type TimelineEntry struct {
	GameID       int64
	Name         string
	Start        time.Time
	Minutes      float64
	StartPercent float64
	WidthPercent float64
	Color        string
}

// DayGame summarizes one title's playtime within a single day.
type DayGame struct {
	GameID int64
	Name   string
	Hours  float64
	Color  string
}

// DayView is the single-day timeline reconstruction.
type DayView struct {
	Date       time.Time
	Games      []DayGame
	Timeline   []TimelineEntry
	TotalHours float64
}

// RankedGame is one entry of the lifetime ranking with session counts.
type RankedGame struct {
	GameID   int64
	Name     string
	Hours    float64
	Sessions int
}

// LatestSession returns the most recent session start, or false when the list
// is empty.
func LatestSession(sessions []model.GamingSession) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, s := range sessions {
		if !found || s.StartTime.After(latest) {
			latest = s.StartTime
			found = true
		}
	}
	return latest, found
}

// LatestWeekOffset returns the week offset, relative to now, of the week
// holding the most recent session.
func LatestWeekOffset(sessions []model.GamingSession, now time.Time) int {
	latest, ok := LatestSession(sessions)
	if !ok {
		return 0
	}
	cur := startOfWeek(now)
	last := startOfWeek(latest)
	// Rounding absorbs DST shifts, which make some weeks not exactly 168h.
	return int(math.Round(last.Sub(cur).Hours() / (7 * 24)))
}

// LatestMonthOffset returns the month offset, relative to now, of the month
// holding the most recent session.
func LatestMonthOffset(sessions []model.GamingSession, now time.Time) int {
	latest, ok := LatestSession(sessions)
	if !ok {
		return 0
	}
	return (latest.Year()-now.Year())*12 + int(latest.Month()) - int(now.Month())
}

// BuildWeekView buckets sessions into the week at the given offset from now.
func BuildWeekView(sessions []model.GamingSession, offset int, now time.Time) WeekView {
	start := startOfWeek(now).AddDate(0, 0, offset*7)
	end := start.AddDate(0, 0, 7)

	view := WeekView{Buckets: make([]model.DayBucket, 7)}
	for i, day := range dayNames {
		view.Buckets[i] = model.DayBucket{Day: day}
	}
	for _, s := range sessions {
		if s.StartTime.Before(start) {
			view.CanPrev = true
			continue
		}
		if !s.StartTime.Before(end) {
			view.CanNext = true
			continue
		}
		// Sessions may carry a different zone than the window; bucket by the
		// window's calendar.
		t := s.StartTime.In(start.Location())
		hours := s.Duration / 60
		view.Buckets[int(t.Weekday())].Hours += hours
		view.TotalHours += hours
	}
	view.AvgHours = view.TotalHours / 7
	view.Range = fmt.Sprintf("%s - %s",
		start.Format("2006-01-02"),
		end.AddDate(0, 0, -1).Format("2006-01-02"))
	return view
}

// BuildMonthView buckets sessions into per-day totals for the calendar month
// at the given offset from now.
func BuildMonthView(sessions []model.GamingSession, offset int, now time.Time) MonthView {
	target := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, offset, 0)
	next := target.AddDate(0, 1, 0)
	daysInMonth := next.AddDate(0, 0, -1).Day()

	view := MonthView{
		Buckets: make([]model.DayBucket, daysInMonth),
		Year:    target.Year(),
		Month:   target.Month(),
		Label:   target.Format("January 2006"),
	}
	for i := range view.Buckets {
		view.Buckets[i] = model.DayBucket{Day: fmt.Sprintf("%s %d", target.Format("Jan"), i+1)}
	}
	for _, s := range sessions {
		if s.StartTime.Before(target) {
			view.CanPrev = true
			continue
		}
		if !s.StartTime.Before(next) {
			view.CanNext = true
			continue
		}
		// A session inside the window can still report a day-of-month from its
		// own zone that falls outside this month; index by the window's zone.
		t := s.StartTime.In(target.Location())
		hours := s.Duration / 60
		view.Buckets[t.Day()-1].Hours += hours
		view.TotalHours += hours
	}
	view.AvgHours = view.TotalHours / float64(daysInMonth)
	return view
}

// BuildDayView reconstructs the 24-hour timeline for one calendar day,
// assigning a distinct palette color per unique game id in first-occurrence
// order and clipping sessions that overflow past midnight.
func BuildDayView(sessions []model.GamingSession, year int, month time.Month, day int, names map[int64]string, loc *time.Location) DayView {
	if loc == nil {
		loc = time.Local
	}
	view := DayView{Date: time.Date(year, month, day, 0, 0, 0, 0, loc)}

	colors := map[int64]string{}
	perGame := map[int64]float64{}
	var gameOrder []int64
	for _, s := range sessions {
		t := s.StartTime.In(loc)
		if t.Year() != year || t.Month() != month || t.Day() != day {
			continue
		}
		if _, seen := colors[s.GameID]; !seen {
			colors[s.GameID] = Palette[len(gameOrder)%len(Palette)]
			gameOrder = append(gameOrder, s.GameID)
		}
		perGame[s.GameID] += s.Duration / 60
		view.TotalHours += s.Duration / 60

		startMinutes := float64(t.Hour()*60 + t.Minute())
		startPercent := startMinutes / minutesPerDay * 100
		widthPercent := s.Duration / minutesPerDay * 100
		if startPercent+widthPercent > 100 {
			widthPercent = 100 - startPercent
		}
		if widthPercent < 0.4 {
			widthPercent = 0.4
		}
		view.Timeline = append(view.Timeline, TimelineEntry{
			GameID:       s.GameID,
			Name:         model.DisplayName(names, s.GameID),
			Start:        t,
			Minutes:      s.Duration,
			StartPercent: startPercent,
			WidthPercent: widthPercent,
			Color:        colors[s.GameID],
		})
	}

	sort.SliceStable(view.Timeline, func(i, j int) bool {
		return view.Timeline[i].StartPercent < view.Timeline[j].StartPercent
	})

	view.Games = make([]DayGame, 0, len(gameOrder))
	for _, id := range gameOrder {
		view.Games = append(view.Games, DayGame{
			GameID: id,
			Name:   model.DisplayName(names, id),
			Hours:  perGame[id],
			Color:  colors[id],
		})
	}
	sort.SliceStable(view.Games, func(i, j int) bool {
		return view.Games[i].Hours > view.Games[j].Hours
	})
	return view
}

// BuildLifetimeRanking aggregates hours and session counts per title over the
// full session list, sorted descending by hours.
func BuildLifetimeRanking(sessions []model.GamingSession, names map[int64]string) []RankedGame {
	hours := map[int64]float64{}
	counts := map[int64]int{}
	var order []int64
	for _, s := range sessions {
		if _, seen := counts[s.GameID]; !seen {
			order = append(order, s.GameID)
		}
		hours[s.GameID] += s.Duration / 60
		counts[s.GameID]++
	}
	ranking := make([]RankedGame, 0, len(order))
	for _, id := range order {
		ranking = append(ranking, RankedGame{
			GameID:   id,
			Name:     model.DisplayName(names, id),
			Hours:    hours[id],
			Sessions: counts[id],
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Hours > ranking[j].Hours
	})
	return ranking
}

// FilterByGame returns the sessions belonging to one title.
func FilterByGame(sessions []model.GamingSession, id int64) []model.GamingSession {
	out := make([]model.GamingSession, 0, len(sessions))
	for _, s := range sessions {
		if s.GameID == id {
			out = append(out, s)
		}
	}
	return out
}

// startOfWeek returns midnight of the Sunday beginning t's week.
func startOfWeek(t time.Time) time.Time {
	day := t.AddDate(0, 0, -int(t.Weekday()))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}
