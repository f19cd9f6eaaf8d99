// Package stats contains the aggregation engine and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/verte-zerg/gamestat/internal/model"
)

// Series is one named line of the trend chart.
type Series struct {
	Name   string
	Values []float64
}

type lineStyle struct {
	name   string
	period int
	on     int
}

const (
	defaultTrendHeight = 10
	minTrendWidth      = 10
	rollingWindowDays  = 7
	axisSeparator      = " | "

	colorCyan    = "\x1b[36m"
	colorMagenta = "\x1b[35m"
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
}

var trendColors = []string{colorCyan, colorMagenta}

// RenderTrend prints a braille chart of daily playtime over the last N days,
// ending at the most recent session. A dashed rolling average accompanies the
// daily line.
func RenderTrend(w io.Writer, data model.StatsData, days int, useColor bool) error {
	if len(data.Sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	if days <= 0 {
		days = 90
	}

	daily := dailyHours(data.Sessions, days)
	series := []Series{
		{Name: "daily hours", Values: daily},
		{Name: fmt.Sprintf("%d-day avg", rollingWindowDays), Values: rollingAverage(daily, rollingWindowDays)},
	}
	title := fmt.Sprintf("Playtime Trend (last %d days)", days)
	return plotSeries(w, title, series, 0, defaultTrendHeight, useColor)
}

// dailyHours buckets session hours per calendar day over the window ending at
// the most recent session.
func dailyHours(sessions []model.GamingSession, days int) []float64 {
	latest, ok := LatestSession(sessions)
	if !ok {
		return nil
	}
	end := time.Date(latest.Year(), latest.Month(), latest.Day(), 0, 0, 0, 0, latest.Location())
	start := end.AddDate(0, 0, -(days - 1))

	values := make([]float64, days)
	for _, s := range sessions {
		day := time.Date(s.StartTime.Year(), s.StartTime.Month(), s.StartTime.Day(), 0, 0, 0, 0, s.StartTime.Location())
		if day.Before(start) || day.After(end) {
			continue
		}
		idx := int(math.Round(day.Sub(start).Hours() / 24))
		if idx >= 0 && idx < days {
			values[idx] += s.Duration / 60
		}
	}
	return values
}

// rollingAverage smooths the values with a trailing window.
func rollingAverage(values []float64, window int) []float64 {
	if window <= 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

func plotSeries(w io.Writer, title string, series []Series, width, height int, useColor bool) error {
	series = filterSeries(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultTrendHeight
	}
	if width <= 0 {
		width = autoTrendWidth()
	}
	if width < minTrendWidth {
		width = minTrendWidth
	}

	// All series share one scale anchored at zero hours.
	maxHours := 0.0
	for _, s := range series {
		for _, v := range s.Values {
			if v > maxHours {
				maxHours = v
			}
		}
	}
	if maxHours <= 0 {
		maxHours = 1
	}

	scaled := make([]Series, 0, len(series))
	for _, s := range series {
		scaled = append(scaled, Series{Name: s.Name, Values: resampleSeries(s.Values, width)})
	}

	seriesCells := make([][][]uint8, 0, len(scaled))
	for range scaled {
		seriesCells = append(seriesCells, makeCells(height, width))
	}
	for si, s := range scaled {
		style := lineStyles[si%len(lineStyles)]
		prevX, prevY := -1, -1
		for x, v := range s.Values {
			row := valueToRow(v, 0, maxHours, height*4)
			px := x * 2
			if prevX >= 0 {
				drawLine(prevX, prevY, px, row, func(dx, dy int) {
					if style.shouldPlot(dx) {
						setBrailleDot(seriesCells[si], dx, dy)
					}
				})
			} else if style.shouldPlot(px) {
				setBrailleDot(seriesCells[si], px, row)
			}
			prevX, prevY = px, row
		}
	}

	axisLabels := makeAxisLabels(height, maxHours)
	leftAxisWidth := 0
	for _, label := range axisLabels {
		if n := utf8.RuneCountInString(label); n > leftAxisWidth {
			leftAxisWidth = n
		}
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", leftAxisWidth, axisLabels[y], axisSeparator))
		for x := 0; x < width; x++ {
			mask, colorIdx := composeCell(seriesCells, x, y)
			ch := brailleFromMask(mask)
			if useColor && colorIdx >= 0 {
				row.WriteString(trendColors[colorIdx%len(trendColors)])
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, renderLegend(scaled, useColor))
	return err
}

func filterSeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

func autoTrendWidth() int {
	return TrendWidthFor(terminalWidth())
}

// TrendWidthFor computes a chart width that fits within the total available
// width after the hour axis.
func TrendWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minTrendWidth
	}
	// "99.9h" plus the separator.
	axisWidth := 5 + utf8.RuneCountInString(axisSeparator)
	plotWidth := totalWidth - axisWidth
	if plotWidth < minTrendWidth {
		plotWidth = minTrendWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTermWidth
	}
	return width
}

// ShouldUseColor reports whether output to w wants ANSI colors, honoring
// NO_COLOR and terminal detection.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func makeAxisLabels(height int, maxHours float64) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = fmt.Sprintf("%.1fh", maxHours)
	if height > 2 {
		labels[height/2] = fmt.Sprintf("%.1fh", maxHours/2)
	}
	if height > 1 {
		labels[height-1] = "0h"
	}
	return labels
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func composeCell(seriesCells [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	colorIdx := -1
	for i, cells := range seriesCells {
		if y < 0 || y >= len(cells) || x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		if colorIdx == -1 {
			colorIdx = i
		}
		mask |= cellMask
	}
	return mask, colorIdx
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

// resampleSeries stretches or averages the values to exactly width samples.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	if len(values) == width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	if len(values) > width {
		for i := 0; i < width; i++ {
			start := int(float64(i) * float64(len(values)) / float64(width))
			end := int(float64(i+1) * float64(len(values)) / float64(width))
			if end <= start {
				end = start + 1
			}
			if end > len(values) {
				end = len(values)
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
		return out
	}
	if width == 1 || len(values) == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	for i := 0; i < width; i++ {
		pos := float64(i) * float64(len(values)-1) / float64(width-1)
		idx := int(math.Floor(pos))
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx]*(1-frac) + values[idx+1]*frac
	}
	return out
}

func valueToRow(v, minVal, maxVal float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(height-1)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	marker := brailleFromMask(0x01)
	for i, s := range series {
		styleName := lineStyles[i%len(lineStyles)].name
		label := fmt.Sprintf("%c %s (%s)", marker, s.Name, styleName)
		if useColor {
			label = trendColors[i%len(trendColors)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// drawLine rasterizes a segment with Bresenham's algorithm in dot coordinates.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
