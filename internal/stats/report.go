// Package stats contains the aggregation engine and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/gamestat/internal/model"
)

const (
	sparkChars         = " .:-=+*#%@"
	barChar            = "#"
	defaultBarWidth    = 30
	fallbackTermWidth  = 80
	defaultTopGamesCap = 20

	colorBlue  = "\x1b[34m"
	colorGreen = "\x1b[32m"
	colorReset = "\x1b[0m"
)

// FormatPlaytime renders hours as a compact "3h 25m" label.
func FormatPlaytime(hours float64) string {
	totalMinutes := int(math.Round(hours * 60))
	h := totalMinutes / 60
	m := totalMinutes % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderReport prints the full text report for one analyzed database.
func RenderReport(w io.Writer, data model.StatsData, topN int) error {
	return RenderReportWithColor(w, data, topN, false)
}

// RenderReportWithColor prints the report with optional ANSI-colored bars.
func RenderReportWithColor(w io.Writer, data model.StatsData, topN int, useColor bool) error {
	if len(data.Sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	if topN <= 0 {
		topN = defaultTopGamesCap
	}

	if err := renderSummary(w, data); err != nil {
		return err
	}
	if err := renderTopGames(w, data, topN); err != nil {
		return err
	}
	if err := renderWeekly(w, data.WeeklyDistribution, useColor); err != nil {
		return err
	}
	if err := renderTimeOfDay(w, data.TimeOfDayDistribution); err != nil {
		return err
	}
	return renderMonthly(w, data.MonthlyDistribution, useColor)
}

func renderSummary(w io.Writer, data model.StatsData) error {
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Games: %d\n", data.TotalGames); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", len(data.Sessions)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Playtime: %s (%.1fh)\n", FormatPlaytime(data.TotalHours), data.TotalHours); err != nil {
		return err
	}
	if len(data.TopGames) > 0 {
		if _, err := fmt.Fprintf(w, "Top title: %s (%s)\n", data.TopGames[0].Name, FormatPlaytime(data.TopGames[0].Hours)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func renderTopGames(w io.Writer, data model.StatsData, topN int) error {
	if len(data.TopGames) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Top Games"); err != nil {
		return err
	}
	games := data.TopGames
	if len(games) > topN {
		games = games[:topN]
	}
	headers := []string{"#", "Name", "AppID", "Hours", "Playtime"}
	rows := make([][]string, 0, len(games))
	for i, g := range games {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			g.Name,
			fmt.Sprintf("%d", g.GameID),
			fmt.Sprintf("%.1f", g.Hours),
			FormatPlaytime(g.Hours),
		})
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func renderWeekly(w io.Writer, buckets []model.DayBucket, useColor bool) error {
	if _, err := fmt.Fprintln(w, "Weekly Breakdown"); err != nil {
		return err
	}
	maxHours := 0.0
	for _, b := range buckets {
		if b.Hours > maxHours {
			maxHours = b.Hours
		}
	}
	headers := []string{"Day", "Hours", ""}
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []string{
			b.Day,
			fmt.Sprintf("%.1f", b.Hours),
			colorize(barCell(b.Hours, maxHours, defaultBarWidth), colorBlue, useColor),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func renderTimeOfDay(w io.Writer, buckets []model.HourBucket) error {
	if _, err := fmt.Fprintln(w, "Daily Rhythm"); err != nil {
		return err
	}
	values := make([]float64, len(buckets))
	peak := 0
	for i, b := range buckets {
		values[i] = b.Hours
		if b.Hours > buckets[peak].Hours {
			peak = i
		}
	}
	if _, err := fmt.Fprintf(w, "00:00 %s 23:00\n", Sparkline(values)); err != nil {
		return err
	}
	if buckets[peak].Hours > 0 {
		if _, err := fmt.Fprintf(w, "Peak hour: %s (%.1fh)\n", buckets[peak].Hour, buckets[peak].Hours); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func renderMonthly(w io.Writer, buckets []model.MonthBucket, useColor bool) error {
	if len(buckets) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Intensity Over Time"); err != nil {
		return err
	}
	maxHours := 0.0
	for _, b := range buckets {
		if b.Hours > maxHours {
			maxHours = b.Hours
		}
	}
	barWidth := reportBarWidth()
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []string{
			b.Month,
			fmt.Sprintf("%.1f", b.Hours),
			colorize(barCell(b.Hours, maxHours, barWidth), colorGreen, useColor),
		})
	}
	for _, line := range formatTable([]string{"Month", "Hours", ""}, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// colorize wraps the bar cell in ANSI codes. Bars sit in the last table
// column, so the escape bytes never skew alignment of the visible columns.
func colorize(s, code string, useColor bool) string {
	if !useColor || s == "" {
		return s
	}
	return code + s + colorReset
}

func barCell(value, maxValue float64, width int) string {
	if maxValue <= 0 || value <= 0 || width <= 0 {
		return ""
	}
	n := int(math.Round(value / maxValue * float64(width)))
	if n < 1 {
		n = 1
	}
	return strings.Repeat(barChar, n)
}

// reportBarWidth sizes the monthly bars to the terminal, leaving room for the
// label columns.
func reportBarWidth() int {
	width := fallbackTermWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	width -= 20
	if width < defaultBarWidth {
		return defaultBarWidth
	}
	if width > 60 {
		return 60
	}
	return width
}
