// Package stats contains the aggregation engine and reporting.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/verte-zerg/gamestat/internal/model"
)

// dayNames is the fixed weekly bucket order. time.Weekday numbers Sunday as 0,
// matching the bucket index.
var dayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Round1 rounds hours to one decimal, the resolution of every emitted bucket.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// BuildStats computes the full set of rollups over the normalized session
// list. The result is self-contained and safe to hand to a read-only consumer.
func BuildStats(sessions []model.GamingSession, names map[int64]string) model.StatsData {
	if names == nil {
		names = map[int64]string{}
	}

	weekly := make([]float64, 7)
	hourly := make([]float64, 24)
	monthly := map[string]float64{}
	totalMinutes := 0.0
	distinct := map[int64]struct{}{}

	for _, s := range sessions {
		hours := s.Duration / 60
		weekly[int(s.StartTime.Weekday())] += hours
		hourly[s.StartTime.Hour()] += hours
		monthKey := fmt.Sprintf("%04d-%02d", s.StartTime.Year(), int(s.StartTime.Month()))
		monthly[monthKey] += hours
		totalMinutes += s.Duration
		distinct[s.GameID] = struct{}{}
	}

	data := model.StatsData{
		TotalGames:            len(distinct),
		TotalHours:            Round1(totalMinutes / 60),
		TopGames:              rankTitles(sessions, names),
		WeeklyDistribution:    make([]model.DayBucket, 7),
		MonthlyDistribution:   make([]model.MonthBucket, 0, len(monthly)),
		TimeOfDayDistribution: make([]model.HourBucket, 24),
		Sessions:              sessions,
		Names:                 names,
	}
	for i, day := range dayNames {
		data.WeeklyDistribution[i] = model.DayBucket{Day: day, Hours: Round1(weekly[i])}
	}
	for i := range data.TimeOfDayDistribution {
		data.TimeOfDayDistribution[i] = model.HourBucket{
			Hour:  fmt.Sprintf("%02d:00", i),
			Hours: Round1(hourly[i]),
		}
	}
	monthKeys := make([]string, 0, len(monthly))
	for key := range monthly {
		monthKeys = append(monthKeys, key)
	}
	sort.Strings(monthKeys)
	for _, key := range monthKeys {
		data.MonthlyDistribution = append(data.MonthlyDistribution, model.MonthBucket{
			Month: key,
			Hours: Round1(monthly[key]),
		})
	}
	return data
}

// rankTitles sums per-title minutes and returns the ranking sorted descending
// by hours. Ties keep encounter order. Game id 0 is excluded from the ranking
// only; it still counts toward totals.
func rankTitles(sessions []model.GamingSession, names map[int64]string) []model.TopGame {
	minutes := map[int64]float64{}
	order := []int64{}
	for _, s := range sessions {
		if s.GameID == 0 {
			continue
		}
		if _, seen := minutes[s.GameID]; !seen {
			order = append(order, s.GameID)
		}
		minutes[s.GameID] += s.Duration
	}

	top := make([]model.TopGame, 0, len(order))
	for _, id := range order {
		top = append(top, model.TopGame{
			GameID: id,
			Name:   model.DisplayName(names, id),
			Hours:  Round1(minutes[id] / 60),
		})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return minutes[top[i].GameID] > minutes[top[j].GameID]
	})
	return top
}
