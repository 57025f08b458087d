package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/focal-app/focal/internal/store"
)

type notesModel struct {
	store  *store.Store
	width  int
	height int

	day     time.Time // which calendar day is shown
	content string
	editing bool
	input   textarea.Model
}

func newNotesModel(s *store.Store) notesModel {
	ta := textarea.New()
	ta.Placeholder = "Write about your day..."
	ta.CharLimit = 0
	return notesModel{store: s, day: time.Now(), input: ta}
}

func (m *notesModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.input.SetWidth(w - 10)
	m.input.SetHeight(max(h-10, 3))
}

type noteDataMsg struct {
	date    string
	content string
}

func (m notesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		date := store.DateKey(m.day)
		content, _ := m.store.GetNote(date)
		return noteDataMsg{date: date, content: content}
	}
}

func (m notesModel) update(msg tea.Msg) (notesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case noteDataMsg:
		if msg.date == store.DateKey(m.day) {
			m.content = msg.content
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditor(msg)
		}

		switch {
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			m.editing = true
			m.input.SetValue(m.content)
			return m, m.input.Focus()
		case key.Matches(msg, keys.Left):
			m.day = m.day.AddDate(0, 0, -1)
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			m.day = m.day.AddDate(0, 0, 1)
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m notesModel) updateEditor(msg tea.KeyMsg) (notesModel, tea.Cmd) {
	if msg.String() == "esc" {
		m.editing = false
		m.input.Blur()
		m.content = m.input.Value()
		if err := m.store.SetNote(store.DateKey(m.day), m.content); err != nil {
			return m, errStatus(err)
		}
		return m, func() tea.Msg { return statusMsg{text: "Note saved"} }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// capturing reports whether the editor owns the keyboard.
func (m notesModel) capturing() bool { return m.editing }

func (m notesModel) view() string {
	w := m.width - 4

	dateLabel := m.day.Format("Monday, Jan 2 2006")
	header := titleStyle.Render("Notes") + "  " + highlightStyle.Render(dateLabel)

	if m.editing {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				header,
				"",
				m.input.View(),
				"",
				mutedStyle.Render("esc: save and close"),
			),
		)
	}

	body := mutedStyle.Render("No note for this day. Press e to write one.")
	if m.content != "" {
		body = normalItemStyle.Render(m.content)
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			body,
			"",
			mutedStyle.Render("e: edit  ←/→: change day"),
		),
	)
}
