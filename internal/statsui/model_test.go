package statsui

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/gamestat/internal/model"
	"github.com/verte-zerg/gamestat/internal/stats"
)

func TestFitLines(t *testing.T) {
	out := fitLines("a\nb\nc", 3, 2)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "a  " {
		t.Fatalf("unexpected padded line: %q", lines[0])
	}

	out = fitLines("a", 2, 3)
	lines = strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[2] != "  " {
		t.Fatalf("expected blank fill line, got %q", lines[2])
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("short", 10); got != "short" {
		t.Fatalf("unexpected result: %q", got)
	}
	if got := truncateLine("a long title here", 10); got != "a long ..." {
		t.Fatalf("unexpected result: %q", got)
	}
	if got := truncateLine("abcdef", 2); got != "ab" {
		t.Fatalf("unexpected result: %q", got)
	}
	// Wide runes count as two cells.
	if got := truncateLine("ゼルダの伝説", 10); got != "ゼルダ..." {
		t.Fatalf("unexpected result: %q", got)
	}
	if got := truncateLine("ゼルダ", 10); got != "ゼルダ" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestBarLine(t *testing.T) {
	if got := barLine(0, 10, 20); got != "" {
		t.Fatalf("expected empty bar, got %q", got)
	}
	if got := barLine(10, 10, 20); len([]rune(got)) != 20 {
		t.Fatalf("expected full bar, got %q", got)
	}
	// Non-zero values always render at least one cell.
	if got := barLine(0.01, 10, 20); len([]rune(got)) != 1 {
		t.Fatalf("expected minimum bar, got %q", got)
	}
}

func TestNavHint(t *testing.T) {
	if got := navHint(false, false); got != "" {
		t.Fatalf("unexpected hint: %q", got)
	}
	if got := navHint(true, true); !strings.Contains(got, "p: prev") || !strings.Contains(got, "n: next") {
		t.Fatalf("unexpected hint: %q", got)
	}
}

func TestNewModelLocation(t *testing.T) {
	m := NewModel(model.StatsData{}, time.UTC)
	if m.now.Location() != time.UTC {
		t.Fatalf("expected now carried in the bucketing location, got %v", m.now.Location())
	}
}

func TestModelFilterLifecycle(t *testing.T) {
	start := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	sessions := []model.GamingSession{
		{GameID: 1, StartTime: start, Duration: 60},
		{GameID: 2, StartTime: start.Add(time.Hour), Duration: 30},
	}
	m := NewModel(stats.BuildStats(sessions, map[int64]string{1: "Portal 2"}), time.UTC)

	if got := len(m.currentSessions()); got != 2 {
		t.Fatalf("expected 2 sessions unfiltered, got %d", got)
	}
	id := int64(1)
	m.selectedGame = &id
	if got := len(m.currentSessions()); got != 1 {
		t.Fatalf("expected 1 session filtered, got %d", got)
	}
	if m.currentSessions()[0].GameID != 1 {
		t.Fatalf("unexpected filtered session: %+v", m.currentSessions()[0])
	}
}

func TestModelRankTable(t *testing.T) {
	start := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	sessions := []model.GamingSession{
		{GameID: 1, StartTime: start, Duration: 60},
		{GameID: 2, StartTime: start.Add(time.Hour), Duration: 240},
	}
	m := NewModel(stats.BuildStats(sessions, nil), time.UTC)
	if len(m.rankIDs) != 2 {
		t.Fatalf("expected 2 ranked ids, got %v", m.rankIDs)
	}
	// Ranking is sorted by hours, so the longer title comes first.
	if m.rankIDs[0] != 2 {
		t.Fatalf("expected id 2 first, got %v", m.rankIDs)
	}
}
