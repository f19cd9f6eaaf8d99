// Package statsui provides the Bubble Tea dashboard over analyzed stats.
package statsui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/gamestat/internal/model"
	"github.com/verte-zerg/gamestat/internal/stats"
)

const (
	tabOverview = iota
	tabWeekly
	tabMonthly
	tabRanking
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3B82F6"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	barStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D8B4FE")).Bold(true)
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(1, 2)
)

// Model implements the Bubble Tea dashboard. It holds one immutable StatsData
// value and derives every view from it on demand.
type Model struct {
	data model.StatsData
	now  time.Time

	tabs      []string
	activeTab int
	viewports []viewport.Model
	rankTable table.Model
	rankIDs   []int64

	width  int
	height int

	selectedGame   *int64
	weekOffset     int
	monthOffset    int
	selectedDay    int
	dayDetailOpen  bool
	rankTableReady bool
}

// NewModel constructs a dashboard model for one analyzed database. The
// location must match the one sessions were normalized in, so window views and
// session calendars agree.
func NewModel(data model.StatsData, loc *time.Location) *Model {
	if loc == nil {
		loc = time.Local
	}
	m := &Model{
		data: data,
		now:  time.Now().In(loc),
		tabs: []string{"Overview", "Weekly", "Monthly", "Ranking"},
	}
	m.resetOffsets()
	m.initViewports()
	m.initRankTable()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.dayDetailOpen {
			return m.updateDayDetail(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "p":
			m.moveWindow(-1)
			return m, nil
		case "n":
			m.moveWindow(1)
			return m, nil
		case "L":
			m.resetOffsets()
			m.renderTabContents()
			return m, nil
		case "[":
			m.moveSelectedDay(-1)
			return m, nil
		case "]":
			m.moveSelectedDay(1)
			return m, nil
		case "enter":
			return m.handleEnter()
		case "esc":
			if m.selectedGame != nil {
				m.selectedGame = nil
				m.resetOffsets()
				m.renderTabContents()
			}
			return m, nil
		case "g", "home":
			m.currentViewport().GotoTop()
			return m, nil
		case "G", "end":
			m.currentViewport().GotoBottom()
			return m, nil
		default:
			if m.activeTab == tabRanking {
				var cmd tea.Cmd
				m.rankTable, cmd = m.rankTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.dayDetailOpen {
		return fitLines(m.renderDayModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) currentSessions() []model.GamingSession {
	if m.selectedGame == nil {
		return m.data.Sessions
	}
	return stats.FilterByGame(m.data.Sessions, *m.selectedGame)
}

func (m *Model) resetOffsets() {
	sessions := m.currentSessions()
	m.weekOffset = stats.LatestWeekOffset(sessions, m.now)
	m.monthOffset = stats.LatestMonthOffset(sessions, m.now)
	m.selectedDay = 0
	m.dayDetailOpen = false
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initRankTable() {
	ranking := stats.BuildLifetimeRanking(m.data.Sessions, m.data.Names)
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Name", Width: 32},
		{Title: "AppID", Width: 10},
		{Title: "Playtime", Width: 12},
		{Title: "Sessions", Width: 8},
	}
	rows := make([]table.Row, 0, len(ranking))
	m.rankIDs = make([]int64, 0, len(ranking))
	for i, g := range ranking {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			g.Name,
			fmt.Sprintf("%d", g.GameID),
			stats.FormatPlaytime(g.Hours),
			fmt.Sprintf("%d", g.Sessions),
		})
		m.rankIDs = append(m.rankIDs, g.GameID)
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(1),
		table.WithFocused(true),
	)
	t.SetStyles(rankTableStyles())
	m.rankTable = t
	m.rankTableReady = true
}

func rankTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	if m.rankTableReady {
		m.rankTable.SetWidth(m.width)
		m.rankTable.SetHeight(maxInt(1, bodyHeight-1))
	}
}

func (m *Model) currentViewport() *viewport.Model {
	return &m.viewports[m.activeTab]
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabRanking {
		m.rankTable.Focus()
	} else {
		m.rankTable.Blur()
	}
}

// moveWindow shifts the week or month offset depending on the active tab,
// clamped to where session data exists.
func (m *Model) moveWindow(delta int) {
	sessions := m.currentSessions()
	switch m.activeTab {
	case tabWeekly:
		view := stats.BuildWeekView(sessions, m.weekOffset, m.now)
		if delta < 0 && !view.CanPrev {
			return
		}
		if delta > 0 && !view.CanNext {
			return
		}
		m.weekOffset += delta
	case tabMonthly:
		view := stats.BuildMonthView(sessions, m.monthOffset, m.now)
		if delta < 0 && !view.CanPrev {
			return
		}
		if delta > 0 && !view.CanNext {
			return
		}
		m.monthOffset += delta
		m.selectedDay = 0
	default:
		return
	}
	m.renderTabContents()
}

func (m *Model) moveSelectedDay(delta int) {
	if m.activeTab != tabMonthly {
		return
	}
	view := stats.BuildMonthView(m.currentSessions(), m.monthOffset, m.now)
	next := m.selectedDay + delta
	if m.selectedDay == 0 && delta > 0 {
		next = 1
	}
	if next < 1 || next > len(view.Buckets) {
		return
	}
	m.selectedDay = next
	m.renderTabContents()
}

func (m *Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.activeTab {
	case tabMonthly:
		if m.selectedDay > 0 {
			m.dayDetailOpen = true
		}
		return m, nil
	case tabRanking:
		cursor := m.rankTable.Cursor()
		if cursor >= 0 && cursor < len(m.rankIDs) {
			id := m.rankIDs[cursor]
			m.selectedGame = &id
			m.resetOffsets()
			m.renderTabContents()
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) updateDayDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.dayDetailOpen = false
		return m, tea.ClearScreen
	case "[":
		m.moveSelectedDay(-1)
		return m, nil
	case "]":
		m.moveSelectedDay(1)
		return m, nil
	}
	return m, nil
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := fmt.Sprintf("Games: %d  Playtime: %s  Sessions: %d",
		m.data.TotalGames, stats.FormatPlaytime(m.data.TotalHours), len(m.data.Sessions))
	if m.selectedGame != nil {
		summary = fmt.Sprintf("Filter: %s (esc to clear)  %s",
			m.data.DisplayName(*m.selectedGame), summary)
	}
	summary = truncateLine(summary, m.width)
	return tabs + "\n" + padLines(headerStyle.Render(summary), m.width)
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Scroll: up/down  Quit: q"
	switch m.activeTab {
	case tabWeekly:
		help = "Nav: left/right  Week: p/n  Latest: L  Quit: q"
	case tabMonthly:
		help = "Nav: left/right  Month: p/n  Day: [/]  Detail: enter  Latest: L  Quit: q"
	case tabRanking:
		help = "Nav: left/right  Select: up/down  Filter: enter  Clear: esc  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderBody() string {
	_, bodyHeight, _ := m.layoutHeights()
	if m.activeTab == tabRanking {
		if len(m.rankIDs) == 0 {
			return fitLines("No ranked games found.", m.width, bodyHeight)
		}
		return fitLines(tableMutedStyle.Render(m.rankTable.View()), m.width, bodyHeight)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, bodyHeight)
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(m.renderOverview(width))
	m.viewports[tabWeekly].SetContent(m.renderWeekly(width))
	m.viewports[tabMonthly].SetContent(m.renderMonthly(width))
}

func (m *Model) renderOverview(width int) string {
	data := m.data
	if len(data.Sessions) == 0 {
		return "No sessions found."
	}
	topTitle := "N/A"
	if len(data.TopGames) > 0 {
		topTitle = data.TopGames[0].Name
	}
	cards := []string{
		metricCard("Total Games", fmt.Sprintf("%d", data.TotalGames)),
		metricCard("Total Playtime", stats.FormatPlaytime(data.TotalHours)),
		metricCard("Sessions", fmt.Sprintf("%d", len(data.Sessions))),
		metricCard("Top Title", truncateLine(topTitle, 24)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	hourValues := make([]float64, len(data.TimeOfDayDistribution))
	for i, b := range data.TimeOfDayDistribution {
		hourValues[i] = b.Hours
	}
	rhythm := fmt.Sprintf("Daily Rhythm\n00:00 %s 23:00", stats.Sparkline(hourValues))

	var months strings.Builder
	months.WriteString("Intensity Over Time")
	maxHours := 0.0
	for _, b := range data.MonthlyDistribution {
		if b.Hours > maxHours {
			maxHours = b.Hours
		}
	}
	for _, b := range data.MonthlyDistribution {
		months.WriteString(fmt.Sprintf("\n%s %6.1fh %s",
			b.Month, b.Hours, barStyle.Render(barLine(b.Hours, maxHours, barWidth(width)))))
	}

	return strings.TrimRight(summary+"\n\n"+rhythm+"\n\n"+months.String(), "\n")
}

func (m *Model) renderWeekly(width int) string {
	view := stats.BuildWeekView(m.currentSessions(), m.weekOffset, m.now)
	var b strings.Builder
	b.WriteString(cardValueStyle.Render("Weekly Breakdown"))
	b.WriteString("\n" + headerStyle.Render(view.Range+navHint(view.CanPrev, view.CanNext)))
	maxHours := 0.0
	for _, bucket := range view.Buckets {
		if bucket.Hours > maxHours {
			maxHours = bucket.Hours
		}
	}
	for _, bucket := range view.Buckets {
		b.WriteString(fmt.Sprintf("\n%-9s %6.1fh %s",
			bucket.Day, bucket.Hours, barStyle.Render(barLine(bucket.Hours, maxHours, barWidth(width)))))
	}
	b.WriteString(fmt.Sprintf("\n\nWeek total: %s   Daily average: %s",
		stats.FormatPlaytime(view.TotalHours), stats.FormatPlaytime(view.AvgHours)))
	return b.String()
}

func (m *Model) renderMonthly(width int) string {
	view := stats.BuildMonthView(m.currentSessions(), m.monthOffset, m.now)
	var b strings.Builder
	b.WriteString(cardValueStyle.Render("Monthly Activity"))
	b.WriteString("\n" + headerStyle.Render(view.Label+navHint(view.CanPrev, view.CanNext)))
	maxHours := 0.0
	for _, bucket := range view.Buckets {
		if bucket.Hours > maxHours {
			maxHours = bucket.Hours
		}
	}
	for i, bucket := range view.Buckets {
		bar := barLine(bucket.Hours, maxHours, barWidth(width))
		if m.selectedDay == i+1 {
			b.WriteString("\n" + selectedStyle.Render(fmt.Sprintf("%-7s %6.1fh %s  <", bucket.Day, bucket.Hours, bar)))
			continue
		}
		b.WriteString(fmt.Sprintf("\n%-7s %6.1fh %s", bucket.Day, bucket.Hours, barStyle.Render(bar)))
	}
	b.WriteString(fmt.Sprintf("\n\nMonth total: %s   Daily average: %s",
		stats.FormatPlaytime(view.TotalHours), stats.FormatPlaytime(view.AvgHours)))
	return b.String()
}

func (m *Model) renderDayModal() string {
	month := stats.BuildMonthView(m.currentSessions(), m.monthOffset, m.now)
	view := stats.BuildDayView(m.currentSessions(),
		month.Year, month.Month, m.selectedDay, m.data.Names, m.now.Location())
	lines := []string{
		cardValueStyle.Render("Daily Insight"),
		headerStyle.Render(view.Date.Format("Monday, January 2, 2006")),
		"",
	}
	if len(view.Games) == 0 {
		lines = append(lines, "No session data for this day.")
	} else {
		for i, g := range view.Games {
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(g.Color)).Render("■")
			lines = append(lines, fmt.Sprintf("%s %d. %s — %s",
				swatch, i+1, g.Name, stats.FormatPlaytime(g.Hours)))
		}
		lines = append(lines, "", m.renderTimeline(view), timelineAxis(timelineWidth(m.width)))
		lines = append(lines, "", fmt.Sprintf("Day total: %s", stats.FormatPlaytime(view.TotalHours)))
	}
	lines = append(lines, "", headerStyle.Render("[/]: change day  esc: close"))
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// renderTimeline paints each session as a colored run of cells on a 24-hour
// track. Later sessions overwrite earlier overlapping ones.
func (m *Model) renderTimeline(view stats.DayView) string {
	width := timelineWidth(m.width)
	colors := make([]string, width)
	for _, entry := range view.Timeline {
		start := int(entry.StartPercent / 100 * float64(width))
		end := int((entry.StartPercent + entry.WidthPercent) / 100 * float64(width))
		if end <= start {
			end = start + 1
		}
		for i := start; i < end && i < width; i++ {
			colors[i] = entry.Color
		}
	}
	var b strings.Builder
	for _, color := range colors {
		if color == "" {
			b.WriteString(headerStyle.Render("·"))
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
	}
	return b.String()
}

func timelineAxis(width int) string {
	if width < 12 {
		return ""
	}
	label := "00:00"
	end := "24:00"
	middle := strings.Repeat(" ", maxInt(1, width-len(label)-len(end)))
	return headerStyle.Render(label + middle + end)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func navHint(canPrev, canNext bool) string {
	switch {
	case canPrev && canNext:
		return "  (p: prev, n: next)"
	case canPrev:
		return "  (p: prev)"
	case canNext:
		return "  (n: next)"
	default:
		return ""
	}
}

func barLine(value, maxValue float64, width int) string {
	if maxValue <= 0 || value <= 0 || width <= 0 {
		return ""
	}
	n := int(value / maxValue * float64(width))
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func barWidth(total int) int {
	w := total - 24
	if w < 10 {
		return 10
	}
	if w > 50 {
		return 50
	}
	return w
}

func timelineWidth(total int) int {
	w := modalWidth(total) - 8
	if w < 24 {
		return 24
	}
	return w
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// truncateLine measures terminal cells, not runes; wide CJK titles must not
// overflow the header or card width.
func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
