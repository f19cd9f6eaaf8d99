package stats

import (
	"math"
	"testing"
	"time"

	"github.com/verte-zerg/gamestat/internal/model"
)

func sessionAt(id int64, start time.Time, minutes float64) model.GamingSession {
	return model.GamingSession{GameID: id, StartTime: start, Duration: minutes}
}

func TestBuildStatsScenario(t *testing.T) {
	start := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	sessions := []model.GamingSession{
		sessionAt(1, start, 30),
		sessionAt(1, start.Add(2*time.Hour), 60),
	}
	data := BuildStats(sessions, map[int64]string{1: "Portal 2"})

	if data.TotalGames != 1 {
		t.Fatalf("expected 1 game, got %d", data.TotalGames)
	}
	if data.TotalHours != 1.5 {
		t.Fatalf("expected 1.5 hours, got %v", data.TotalHours)
	}
	if len(data.TopGames) != 1 {
		t.Fatalf("expected 1 top game, got %d", len(data.TopGames))
	}
	top := data.TopGames[0]
	if top.GameID != 1 || top.Name != "Portal 2" || top.Hours != 1.5 {
		t.Fatalf("unexpected top game: %+v", top)
	}
}

func TestBuildStatsFallbackName(t *testing.T) {
	start := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	data := BuildStats([]model.GamingSession{sessionAt(2, start, 45)}, nil)
	if len(data.TopGames) != 1 {
		t.Fatalf("expected 1 top game, got %d", len(data.TopGames))
	}
	if data.TopGames[0].Name != "AppID: 2" {
		t.Fatalf("expected synthesized label, got %q", data.TopGames[0].Name)
	}
}

func TestBuildStatsFixedBuckets(t *testing.T) {
	data := BuildStats(nil, nil)
	if len(data.WeeklyDistribution) != 7 {
		t.Fatalf("expected 7 weekly buckets, got %d", len(data.WeeklyDistribution))
	}
	if data.WeeklyDistribution[0].Day != "Sunday" || data.WeeklyDistribution[6].Day != "Saturday" {
		t.Fatalf("unexpected weekly order: %+v", data.WeeklyDistribution)
	}
	if len(data.TimeOfDayDistribution) != 24 {
		t.Fatalf("expected 24 hourly buckets, got %d", len(data.TimeOfDayDistribution))
	}
	if data.TimeOfDayDistribution[0].Hour != "00:00" || data.TimeOfDayDistribution[23].Hour != "23:00" {
		t.Fatalf("unexpected hourly labels: %+v", data.TimeOfDayDistribution)
	}
	if len(data.MonthlyDistribution) != 0 {
		t.Fatalf("expected no monthly buckets for empty input, got %d", len(data.MonthlyDistribution))
	}
}

func TestBuildStatsDistributionPlacement(t *testing.T) {
	// Tuesday 2023-11-14, 22:xx local to UTC.
	start := time.Date(2023, 11, 14, 22, 0, 0, 0, time.UTC)
	data := BuildStats([]model.GamingSession{sessionAt(1, start, 120)}, nil)

	if data.WeeklyDistribution[2].Hours != 2.0 {
		t.Fatalf("expected 2h on Tuesday, got %+v", data.WeeklyDistribution)
	}
	if data.TimeOfDayDistribution[22].Hours != 2.0 {
		t.Fatalf("expected 2h at 22:00, got %+v", data.TimeOfDayDistribution)
	}
	if len(data.MonthlyDistribution) != 1 || data.MonthlyDistribution[0].Month != "2023-11" {
		t.Fatalf("unexpected monthly buckets: %+v", data.MonthlyDistribution)
	}
	if data.MonthlyDistribution[0].Hours != 2.0 {
		t.Fatalf("expected 2h in 2023-11, got %v", data.MonthlyDistribution[0].Hours)
	}
}

func TestBuildStatsTopGamesMatchTotal(t *testing.T) {
	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	sessions := []model.GamingSession{
		sessionAt(1, start, 95),
		sessionAt(2, start.Add(time.Hour), 190),
		sessionAt(3, start.Add(2*time.Hour), 17),
		sessionAt(2, start.Add(26*time.Hour), 44),
	}
	data := BuildStats(sessions, nil)

	var sum float64
	for _, g := range data.TopGames {
		sum += g.Hours
	}
	// Per-title and grand totals are rounded independently; allow one decimal
	// of drift per title.
	tolerance := 0.05 * float64(len(data.TopGames)+1)
	if math.Abs(sum-data.TotalHours) > tolerance {
		t.Fatalf("topGames sum %v deviates from totalHours %v", sum, data.TotalHours)
	}
}

func TestBuildStatsRankingExcludesZeroID(t *testing.T) {
	start := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)
	sessions := []model.GamingSession{
		sessionAt(0, start, 60),
		sessionAt(9, start.Add(time.Hour), 30),
	}
	data := BuildStats(sessions, nil)
	if data.TotalGames != 2 {
		t.Fatalf("expected id 0 to count toward totals, got %d", data.TotalGames)
	}
	if len(data.TopGames) != 1 || data.TopGames[0].GameID != 9 {
		t.Fatalf("expected id 0 excluded from ranking, got %+v", data.TopGames)
	}
}

func TestBuildStatsRankingOrder(t *testing.T) {
	start := time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)
	sessions := []model.GamingSession{
		sessionAt(5, start, 10),
		sessionAt(6, start.Add(time.Hour), 300),
		sessionAt(7, start.Add(2*time.Hour), 10),
	}
	data := BuildStats(sessions, nil)
	if data.TopGames[0].GameID != 6 {
		t.Fatalf("expected game 6 first, got %+v", data.TopGames)
	}
	// Ties keep encounter order.
	if data.TopGames[1].GameID != 5 || data.TopGames[2].GameID != 7 {
		t.Fatalf("expected stable tie order, got %+v", data.TopGames)
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 1.44, want: 1.4},
		{in: 1.45, want: 1.5},
		{in: 0, want: 0},
		{in: 2.999, want: 3},
	}
	for _, tt := range tests {
		if got := Round1(tt.in); got != tt.want {
			t.Fatalf("Round1(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}
