package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/focal-app/focal/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   store.Settings
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	pomodoroMinutes *string
	autoAssign      *bool
	pauseLock       *bool
	sessionLogURL   *string
}

func newSettingsModel(s *store.Store) settingsModel {
	pm, url := "", ""
	aa, pl := false, false
	return settingsModel{
		store:           s,
		pomodoroMinutes: &pm,
		autoAssign:      &aa,
		pauseLock:       &pl,
		sessionLogURL:   &url,
	}
}

func (m *settingsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type settingsDataMsg struct {
	settings store.Settings
}

func (m settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return settingsDataMsg{settings: m.store.LoadSettings()}
	}
}

func (m settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		m.settings = msg.settings
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return m.showForm()
		}
	}
	return m, nil
}

func (m settingsModel) showForm() (settingsModel, tea.Cmd) {
	*m.pomodoroMinutes = strconv.Itoa(m.settings.PomodoroMinutes)
	*m.autoAssign = m.settings.AutoAssign
	*m.pauseLock = m.settings.PauseLock
	*m.sessionLogURL = m.settings.SessionLogURL

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Pomodoro length (min)").
				Validate(validateMinutes).
				Value(m.pomodoroMinutes),
			huh.NewConfirm().
				Title("Auto-assign first open task on start").
				Value(m.autoAssign),
			huh.NewConfirm().
				Title("Pause lock (no pausing a focus interval)").
				Value(m.pauseLock),
		).Title("Focus"),
		huh.NewGroup(
			huh.NewInput().
				Title("Session log URL (empty disables mirroring)").
				Value(m.sessionLogURL),
		).Title("Sync"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number of minutes")
	}
	return nil
}

func (m settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.saveSettings()
		return m, m.refresh()
	}

	return m, cmd
}

func (m settingsModel) saveSettings() {
	m.store.SetSetting("pomodoro_minutes", *m.pomodoroMinutes)
	m.store.SetSetting("auto_assign", boolValue(*m.autoAssign))
	m.store.SetSetting("pause_lock", boolValue(*m.pauseLock))
	m.store.SetSetting("session_log_url", *m.sessionLogURL)
}

func boolValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (m settingsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	title := titleStyle.Render("Settings")
	url := m.settings.SessionLogURL
	if url == "" {
		url = "(disabled)"
	}

	rows := []string{
		title,
		"",
		settingRow("Pomodoro length", fmt.Sprintf("%d min", m.settings.PomodoroMinutes)),
		settingRow("Short break", fmt.Sprintf("%d min (fixed)", m.settings.ShortBreakSecs/60)),
		settingRow("Long break", fmt.Sprintf("%d min (fixed)", m.settings.LongBreakSecs/60)),
		settingRow("Auto-assign task", onOff(m.settings.AutoAssign)),
		settingRow("Pause lock", onOff(m.settings.PauseLock)),
		settingRow("Session log", url),
		"",
		mutedStyle.Render("Press enter to edit settings"),
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRow(label, value string) string {
	l := lipgloss.NewStyle().Width(24).Render(label)
	return fmt.Sprintf("  %s %s", l, highlightStyle.Render(value))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
