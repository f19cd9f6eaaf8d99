package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/gamestat/internal/model"
)

func TestFormatPlaytime(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{hours: 0, want: "0m"},
		{hours: 0.75, want: "45m"},
		{hours: 1.5, want: "1h 30m"},
		{hours: 3.42, want: "3h 25m"},
		{hours: 24, want: "24h 0m"},
	}
	for _, tt := range tests {
		if got := FormatPlaytime(tt.hours); got != tt.want {
			t.Fatalf("FormatPlaytime(%v): expected %q, got %q", tt.hours, tt.want, got)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
	flat := Sparkline([]float64{2, 2, 2})
	if len(flat) != 3 || flat[0] != flat[1] || flat[1] != flat[2] {
		t.Fatalf("expected flat sparkline, got %q", flat)
	}
	line := Sparkline([]float64{0, 5, 10})
	if len(line) != 3 {
		t.Fatalf("expected 3 chars, got %q", line)
	}
	if line[0] != sparkChars[0] || line[2] != sparkChars[len(sparkChars)-1] {
		t.Fatalf("expected min/max endpoints, got %q", line)
	}
}

func reportFixture() model.StatsData {
	start := time.Date(2023, 11, 14, 22, 0, 0, 0, time.UTC)
	sessions := []model.GamingSession{
		{GameID: 1, StartTime: start, Duration: 30},
		{GameID: 1, StartTime: start.Add(2 * time.Hour), Duration: 60},
		{GameID: 2, StartTime: start.Add(26 * time.Hour), Duration: 45},
	}
	return BuildStats(sessions, map[int64]string{1: "Portal 2"})
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderReport(&buf, reportFixture(), 10); err != nil {
		t.Fatalf("render report: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Summary",
		"Games: 2",
		"Sessions: 3",
		"Top Games",
		"Portal 2",
		"AppID: 2",
		"Weekly Breakdown",
		"Daily Rhythm",
		"Intensity Over Time",
		"2023-11",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, colorBlue) {
		t.Fatalf("expected no ANSI codes without color, got:\n%s", out)
	}
}

func TestRenderReportColor(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderReportWithColor(&buf, reportFixture(), 10, true); err != nil {
		t.Fatalf("render report: %v", err)
	}
	if !strings.Contains(buf.String(), colorBlue) {
		t.Fatalf("expected colored weekly bars, got:\n%s", buf.String())
	}
}

func TestRenderReportTopLimit(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderReport(&buf, reportFixture(), 1); err != nil {
		t.Fatalf("render report: %v", err)
	}
	out := buf.String()
	// The second title is cut from the table; the summary line still names the
	// top one.
	if strings.Contains(out, "AppID: 2") {
		t.Fatalf("expected truncated top list, got:\n%s", out)
	}
	if !strings.Contains(out, "Portal 2") {
		t.Fatalf("expected top title retained, got:\n%s", out)
	}
}

func TestRenderReportNoSessions(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderReport(&buf, model.StatsData{}, 10); err != nil {
		t.Fatalf("render report: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions found.") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
