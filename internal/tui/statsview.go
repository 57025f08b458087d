package tui

import (
	"fmt"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/focal-app/focal/internal/stats"
	"github.com/focal-app/focal/internal/store"
)

type statsViewModel struct {
	store  *store.Store
	width  int
	height int

	streak   int
	today    stats.TodayStats
	week     stats.WeekStats
	days     []stats.DaySummary // trailing 7 days
	insights stats.Insights

	chart barchart.Model
}

func newStatsViewModel(s *store.Store) statsViewModel {
	return statsViewModel{
		store: s,
		chart: barchart.New(60, 10),
	}
}

func (m *statsViewModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type statsDataMsg struct {
	streak int
	today  stats.TodayStats
	week   stats.WeekStats
	days   []stats.DaySummary
}

func (m statsViewModel) refresh() tea.Cmd {
	return func() tea.Msg {
		log, _ := m.store.ActivityLog()
		tasks, _ := m.store.ListTasks(true)
		mins := m.store.LoadSettings().PomodoroMinutes
		now := time.Now()

		return statsDataMsg{
			streak: stats.Streak(log, now),
			today:  stats.Today(log, now, mins),
			week:   stats.Week(log, now, mins),
			days:   stats.RangeSummaries(now.AddDate(0, 0, -6), now, log, tasks, m.store.HasNote, mins),
		}
	}
}

func (m statsViewModel) update(msg tea.Msg) (statsViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		m.streak = msg.streak
		m.today = msg.today
		m.week = msg.week
		m.days = msg.days
		m.insights = stats.RangeInsights(msg.days)
		m.buildChart()
		return m, nil
	}
	return m, nil
}

// buildChart renders the trailing week's pomodoro counts as bars.
func (m *statsViewModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if m.height > 30 {
		chartHeight = 14
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, d := range m.days {
		day, _ := time.ParseInLocation("2006-01-02", d.Date, time.Local)
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if d.Pomodoros == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: day.Format("Mon"),
			Values: []barchart.BarValue{{
				Name:  "pomodoros",
				Value: float64(d.Pomodoros),
				Style: style,
			}},
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m statsViewModel) view() string {
	w := m.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ",
		accentStyle.Render(fmt.Sprintf("🔥 %s streak", plural(m.streak, "day"))),
	)

	todayRow := fmt.Sprintf("  Today  %s · %s · %s",
		highlightStyle.Render(plural(m.today.Pomodoros, "pomodoro")),
		formatMinutes(m.today.Minutes),
		plural(m.today.CompletedTasks, "task done"),
	)
	weekRow := fmt.Sprintf("  Week   %s · %s · %s",
		highlightStyle.Render(plural(m.week.Pomodoros, "pomodoro")),
		formatMinutes(m.week.Minutes),
		plural(m.week.ActiveDays, "active day"),
	)

	best := "—"
	if m.insights.BestDay != "" {
		best = m.insights.BestDay
	}
	insightRow := mutedStyle.Render(fmt.Sprintf("  Best day %s · %d with notes · %.1f pomodoros/active day",
		best, m.insights.NoteDays, m.insights.AvgPerActive,
	))

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			todayRow,
			weekRow,
			"",
			m.chart.View(),
			"",
			insightRow,
		),
	)
}
