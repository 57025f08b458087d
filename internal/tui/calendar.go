package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/focal-app/focal/internal/stats"
	"github.com/focal-app/focal/internal/store"
)

type calendarModel struct {
	store  *store.Store
	width  int
	height int

	year     int
	month    time.Month
	filter   stats.Filter
	days     []stats.DaySummary
	insights stats.Insights
	selected int // index into days
}

func newCalendarModel(s *store.Store) calendarModel {
	now := time.Now()
	return calendarModel{
		store:    s,
		year:     now.Year(),
		month:    now.Month(),
		selected: now.Day() - 1,
	}
}

func (m *calendarModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type calendarDataMsg struct {
	year  int
	month time.Month
	days  []stats.DaySummary
}

func (m calendarModel) refresh() tea.Cmd {
	return func() tea.Msg {
		log, _ := m.store.ActivityLog()
		tasks, _ := m.store.ListTasks(true)
		mins := m.store.LoadSettings().PomodoroMinutes

		days := stats.MonthSummaries(m.year, m.month, log, tasks, m.store.HasNote, mins)
		return calendarDataMsg{year: m.year, month: m.month, days: days}
	}
}

func (m calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case calendarDataMsg:
		if msg.year != m.year || msg.month != m.month {
			return m, nil // stale month load
		}
		m.days = msg.days
		m.insights = stats.RangeInsights(msg.days)
		if m.selected >= len(m.days) {
			m.selected = len(m.days) - 1
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			first := time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.Local).AddDate(0, -1, 0)
			m.year, m.month, m.selected = first.Year(), first.Month(), 0
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			first := time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.Local).AddDate(0, 1, 0)
			m.year, m.month, m.selected = first.Year(), first.Month(), 0
			return m, m.refresh()
		case key.Matches(msg, keys.Up):
			if m.selected-7 >= 0 {
				m.selected -= 7
			}
		case key.Matches(msg, keys.Down):
			if m.selected+7 < len(m.days) {
				m.selected += 7
			}
		case key.Matches(msg, keys.Filter):
			m.filter = (m.filter + 1) % 4
		case key.Matches(msg, keys.Enter):
			// jump back to the current month
			now := time.Now()
			m.year, m.month, m.selected = now.Year(), now.Month(), now.Day()-1
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m calendarModel) view() string {
	w := m.width - 4

	monthLabel := time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.Local).Format("January 2006")
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Calendar"), "  ",
		highlightStyle.Render(monthLabel), "  ",
		mutedStyle.Render("filter: "), accentStyle.Render(m.filter.String()),
	)

	grid := m.renderGrid()
	detail := m.renderDayDetail()
	insights := m.renderInsights()
	nav := mutedStyle.Render("  ←/→: month  ↑/↓: week  f: filter  enter: today")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", grid, "", detail, "", insights, "", nav),
	)
}

// renderGrid lays the month out Monday-first, one heat cell per day.
func (m calendarModel) renderGrid() string {
	if len(m.days) == 0 {
		return mutedStyle.Render("  loading...")
	}

	var b strings.Builder
	b.WriteString(mutedStyle.Render("  Mo   Tu   We   Th   Fr   Sa   Su"))
	b.WriteString("\n")

	first := time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.Local)
	lead := (int(first.Weekday()) + 6) % 7 // Monday = 0
	b.WriteString(strings.Repeat("     ", lead))

	col := lead
	for i, d := range m.days {
		cell := m.renderCell(i, d)
		b.WriteString(cell)
		col++
		if col == 7 && i != len(m.days)-1 {
			b.WriteString("\n")
			col = 0
		}
	}
	return b.String()
}

func (m calendarModel) renderCell(i int, d stats.DaySummary) string {
	tierVal := stats.Intensity(stats.Score(d.Activity(), m.filter), m.filter)
	label := fmt.Sprintf(" %2d ", i+1)

	style := heatCellStyle(tierVal)
	if i == m.selected {
		style = style.Bold(true).Underline(true)
	}
	return style.Render(label) + " "
}

func (m calendarModel) renderDayDetail() string {
	if m.selected < 0 || m.selected >= len(m.days) {
		return ""
	}
	d := m.days[m.selected]

	parts := []string{
		highlightStyle.Render(d.Date),
		fmt.Sprintf("%s · %s", plural(d.Pomodoros, "pomodoro"), formatMinutes(d.FocusMinutes)),
	}
	if len(d.CompletedTasks) > 0 {
		parts = append(parts, successStyle.Render("done: "+strings.Join(d.CompletedTasks, ", ")))
	}
	if d.HasNote {
		parts = append(parts, mutedStyle.Render("📝 note"))
	}
	return "  " + strings.Join(parts, "  ")
}

func (m calendarModel) renderInsights() string {
	in := m.insights
	best := "—"
	if in.BestDay != "" {
		best = fmt.Sprintf("%s (score %d)", in.BestDay, in.BestScore)
	}

	rows := []string{
		titleStyle.Render("Month insights"),
		mutedStyle.Render(fmt.Sprintf("  %s · %s · %s",
			plural(in.Pomodoros, "pomodoro"),
			formatMinutes(in.Minutes),
			plural(in.CompletedTasks, "task done"),
		)),
		mutedStyle.Render(fmt.Sprintf("  %s · %s · best day %s · %.1f pomodoros/active day",
			plural(in.ActiveDays, "active day"),
			plural(in.NoteDays, "note day"),
			best,
			in.AvgPerActive,
		)),
	}
	return strings.Join(rows, "\n")
}
