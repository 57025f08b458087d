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
	"github.com/focal-app/focal/internal/timer"
)

var modeLabels = map[timer.Mode]string{
	timer.ModePomodoro:   "FOCUS",
	timer.ModeShortBreak: "SHORT BREAK",
	timer.ModeLongBreak:  "LONG BREAK",
}

var promptChoices = []struct {
	label  string
	choice timer.CompletionChoice
}{
	{"+1 pomodoro on focused task", timer.ChoiceCredit},
	{"+1 pomodoro and mark task complete", timer.ChoiceCreditAndComplete},
	{"Skip", timer.ChoiceSkip},
}

type timerViewModel struct {
	store  *store.Store
	engine *timer.Engine
	width  int
	height int

	focusedTitle string
	streak       int
	today        stats.TodayStats

	promptActive bool
	promptCursor int
}

func newTimerViewModel(s *store.Store, e *timer.Engine) timerViewModel {
	return timerViewModel{store: s, engine: e}
}

func (m *timerViewModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type timerDataMsg struct {
	focusedTitle string
	streak       int
	today        stats.TodayStats
}

func (m timerViewModel) loadData() tea.Cmd {
	return func() tea.Msg {
		var title string
		if id, err := m.store.FocusedTaskID(); err == nil && id != "" {
			if task, err := m.store.GetTask(id); err == nil {
				title = task.Title
			}
		}

		log, _ := m.store.ActivityLog()
		now := time.Now()
		mins := m.store.LoadSettings().PomodoroMinutes

		return timerDataMsg{
			focusedTitle: title,
			streak:       stats.Streak(log, now),
			today:        stats.Today(log, now, mins),
		}
	}
}

func (m timerViewModel) update(msg tea.Msg) (timerViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case timerDataMsg:
		m.focusedTitle = msg.focusedTitle
		m.streak = msg.streak
		m.today = msg.today
		return m, nil

	case tickMsg:
		wasPomodoro := m.engine.Mode() == timer.ModePomodoro
		if m.engine.Tick() {
			if wasPomodoro {
				m.promptActive = true
				m.promptCursor = 0
			} else {
				m.engine.Skip()
			}
			return m, m.loadData()
		}
		return m, nil

	case tea.KeyMsg:
		if m.promptActive {
			return m.updatePrompt(msg)
		}

		switch {
		case key.Matches(msg, keys.Pause):
			return m.toggle()
		case key.Matches(msg, keys.Start):
			m.engine.Start()
			return m, m.loadData()
		case key.Matches(msg, keys.Reset):
			m.engine.Reset()
			return m, nil
		case key.Matches(msg, keys.Skip):
			m.engine.Skip()
			return m, nil
		case key.Matches(msg, keys.Left):
			return m.cycleMode(-1), nil
		case key.Matches(msg, keys.Right):
			return m.cycleMode(1), nil
		}
	}
	return m, nil
}

func (m timerViewModel) toggle() (timerViewModel, tea.Cmd) {
	if m.engine.Running() &&
		m.engine.Mode() == timer.ModePomodoro &&
		m.store.LoadSettings().PauseLock {
		// The engine rejects the pause; tell the user why nothing moved.
		return m, func() tea.Msg {
			return statusMsg{text: "Pause is locked during a focus interval"}
		}
	}
	m.engine.Toggle()
	return m, m.loadData()
}

// cycleMode switches the stopped timer between the three modes.
func (m timerViewModel) cycleMode(dir int) timerViewModel {
	if m.engine.Running() {
		return m
	}
	modes := []timer.Mode{timer.ModePomodoro, timer.ModeShortBreak, timer.ModeLongBreak}
	cur := 0
	for i, md := range modes {
		if md == m.engine.Mode() {
			cur = i
		}
	}
	m.engine.SetMode(modes[(cur+dir+len(modes))%len(modes)])
	return m
}

func (m timerViewModel) updatePrompt(msg tea.KeyMsg) (timerViewModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.promptCursor > 0 {
			m.promptCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.promptCursor < len(promptChoices)-1 {
			m.promptCursor++
		}
	case key.Matches(msg, keys.Enter):
		m.engine.ResolveCompletion(promptChoices[m.promptCursor].choice)
		m.promptActive = false
		m.engine.Skip()
		return m, tea.Batch(m.loadData(), func() tea.Msg {
			return statusMsg{text: "Pomodoro recorded"}
		})
	case key.Matches(msg, keys.Back):
		m.engine.ResolveCompletion(timer.ChoiceSkip)
		m.promptActive = false
		m.engine.Skip()
	}
	return m, nil
}

func (m timerViewModel) view() string {
	w := m.width - 4

	if m.promptActive {
		return m.renderPrompt(w)
	}

	var tabs []string
	for _, md := range []timer.Mode{timer.ModePomodoro, timer.ModeShortBreak, timer.ModeLongBreak} {
		if md == m.engine.Mode() {
			tabs = append(tabs, activeTabStyle.Render(modeLabels[md]))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(modeLabels[md]))
		}
	}
	modeRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	style := timerStyle
	indicator := mutedStyle.Render("■  STOPPED")
	if m.engine.Running() {
		if m.engine.Mode() == timer.ModePomodoro {
			style = timerRunningStyle
			indicator = successStyle.Render("●  FOCUSING")
		} else {
			style = timerBreakStyle
			indicator = highlightStyle.Render("●  ON BREAK")
		}
	}
	countdown := style.Width(w - 6).Render(formatCountdown(m.engine.SecondsLeft()))

	taskLine := mutedStyle.Render("No task focused")
	if m.focusedTitle != "" {
		taskLine = highlightStyle.Render("▸ " + m.focusedTitle)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		modeRow,
		"",
		countdown,
		indicator,
		taskLine,
		"",
		m.renderSessionDots(),
	)

	panel := panelStyle
	if m.engine.Running() {
		panel = activePanelStyle
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		panel.Width(w).Render(content),
		m.renderTodayPanel(w),
	)
}

// renderSessionDots shows progress toward the next long break.
func (m timerViewModel) renderSessionDots() string {
	done := m.engine.CompletedPomodoros() % 4
	var parts []string
	for i := 0; i < 4; i++ {
		switch {
		case i < done:
			parts = append(parts, successStyle.Render("●"))
		case i == done && m.engine.Running() && m.engine.Mode() == timer.ModePomodoro:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	total := mutedStyle.Render(fmt.Sprintf("  %d total", m.engine.CompletedPomodoros()))
	return strings.Join(parts, " ") + total
}

func (m timerViewModel) renderTodayPanel(w int) string {
	streak := fmt.Sprintf("%s %s", accentStyle.Render("🔥"), titleStyle.Render(plural(m.streak, "day")))
	today := fmt.Sprintf("Today: %s · %s · %s",
		highlightStyle.Render(plural(m.today.Pomodoros, "pomodoro")),
		formatMinutes(m.today.Minutes),
		plural(m.today.CompletedTasks, "task done"),
	)
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, streak, mutedStyle.Render(today)),
	)
}

func (m timerViewModel) renderPrompt(w int) string {
	title := titleStyle.Render("Focus interval complete")
	sub := mutedStyle.Render("What happened to the focused task?")
	if m.focusedTitle == "" {
		sub = mutedStyle.Render("No task was focused; the day still gets its pomodoro.")
	}

	var rows []string
	rows = append(rows, title, sub, "")
	for i, c := range promptChoices {
		cursor := "  "
		style := normalItemStyle
		if i == m.promptCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+c.label))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: confirm  esc: skip"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
