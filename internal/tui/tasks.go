package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/focal-app/focal/internal/store"
)

// taskRow flattens tasks and their subtasks into one navigable list.
type taskRow struct {
	task    *store.Task
	subtask *store.Subtask
}

type tasksModel struct {
	store  *store.Store
	width  int
	height int

	tasks         []store.Task
	focusedID     string
	rows          []taskRow
	cursor        int
	showCompleted bool

	formActive bool
	form       *huh.Form
	formTitle  *string
	formParent string // task id when adding a subtask
}

func newTasksModel(s *store.Store) tasksModel {
	title := ""
	return tasksModel{store: s, formTitle: &title}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type tasksDataMsg struct {
	tasks     []store.Task
	focusedID string
}

func (m tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, _ := m.store.ListTasks(m.showCompleted)
		focused, _ := m.store.FocusedTaskID()
		return tasksDataMsg{tasks: tasks, focusedID: focused}
	}
}

func (m *tasksModel) rebuildRows() {
	m.rows = nil
	for i := range m.tasks {
		m.rows = append(m.rows, taskRow{task: &m.tasks[i]})
		for j := range m.tasks[i].Subtasks {
			m.rows = append(m.rows, taskRow{task: &m.tasks[i], subtask: &m.tasks[i].Subtasks[j]})
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		m.tasks = msg.tasks
		m.focusedID = msg.focusedID
		m.rebuildRows()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			return m.showTaskForm("")
		case key.Matches(msg, keys.Subtask):
			if row, ok := m.current(); ok {
				return m.showTaskForm(row.task.ID)
			}
		case key.Matches(msg, keys.Enter):
			return m.focusCurrent()
		case key.Matches(msg, keys.Complete):
			return m.completeCurrent()
		case key.Matches(msg, keys.Pause):
			return m.toggleCurrentSubtask()
		case key.Matches(msg, keys.Delete):
			return m.deleteCurrent()
		case key.Matches(msg, keys.Filter):
			m.showCompleted = !m.showCompleted
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m tasksModel) current() (taskRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return taskRow{}, false
	}
	return m.rows[m.cursor], true
}

func (m tasksModel) focusCurrent() (tasksModel, tea.Cmd) {
	row, ok := m.current()
	if !ok || row.subtask != nil {
		return m, nil
	}
	if row.task.Completed {
		return m, func() tea.Msg {
			return statusMsg{text: "Cannot focus a completed task", isError: true}
		}
	}
	if err := m.store.SetFocusedTask(row.task.ID); err != nil {
		return m, errStatus(err)
	}
	return m, tea.Batch(m.refresh(), notifyTasksChanged())
}

func (m tasksModel) completeCurrent() (tasksModel, tea.Cmd) {
	row, ok := m.current()
	if !ok || row.subtask != nil {
		return m, nil
	}
	if err := m.store.CompleteTask(row.task.ID); err != nil {
		return m, errStatus(err)
	}
	return m, tea.Batch(m.refresh(), notifyTasksChanged())
}

func (m tasksModel) toggleCurrentSubtask() (tasksModel, tea.Cmd) {
	row, ok := m.current()
	if !ok || row.subtask == nil {
		return m, nil
	}
	if row.task.Completed {
		// Subtasks are frozen once the parent is done.
		return m, nil
	}
	if err := m.store.ToggleSubtask(row.subtask.ID); err != nil {
		return m, errStatus(err)
	}
	return m, m.refresh()
}

func (m tasksModel) deleteCurrent() (tasksModel, tea.Cmd) {
	row, ok := m.current()
	if !ok || row.subtask != nil {
		return m, nil
	}
	if err := m.store.DeleteTask(row.task.ID); err != nil {
		return m, errStatus(err)
	}
	return m, tea.Batch(m.refresh(), notifyTasksChanged())
}

func (m tasksModel) showTaskForm(parentID string) (tasksModel, tea.Cmd) {
	*m.formTitle = ""
	m.formParent = parentID

	title := "New task"
	if parentID != "" {
		title = "New subtask"
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(title).Value(m.formTitle),
		),
	).WithShowHelp(false).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
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
		title := strings.TrimSpace(*m.formTitle)
		if title == "" {
			return m, nil
		}
		var err error
		if m.formParent == "" {
			_, err = m.store.CreateTask(title)
		} else {
			_, err = m.store.AddSubtask(m.formParent, title)
		}
		if err != nil {
			return m, errStatus(err)
		}
		return m, tea.Batch(m.refresh(), notifyTasksChanged())
	}

	return m, cmd
}

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		return panelStyle.Width(w).Render(m.form.View())
	}

	header := titleStyle.Render("Tasks")
	if m.showCompleted {
		header += mutedStyle.Render("  (showing completed)")
	}

	if len(m.rows) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				header,
				"",
				mutedStyle.Render("No tasks yet. Press n to add one."),
			),
		)
	}

	var rows []string
	rows = append(rows, header, "")
	for i, row := range m.rows {
		rows = append(rows, m.renderRow(i, row))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: focus  c: complete  space: toggle subtask  f: show done"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m tasksModel) renderRow(i int, row taskRow) string {
	cursor := "  "
	if i == m.cursor {
		cursor = "> "
	}

	if row.subtask != nil {
		box := "☐"
		style := normalItemStyle
		if row.subtask.Completed {
			box = "☑"
			style = strikeStyle
		}
		line := fmt.Sprintf("%s    %s %s", cursor, box, row.subtask.Title)
		if i == m.cursor {
			return selectedItemStyle.Render(line)
		}
		return style.Render(line)
	}

	t := row.task
	box := "☐"
	style := normalItemStyle
	if t.Completed {
		box = "☑"
		style = strikeStyle
	}

	focus := " "
	if t.ID == m.focusedID {
		focus = accentStyle.Render("▸")
	}

	meta := ""
	if t.SpentPomodoros > 0 {
		meta = mutedStyle.Render(fmt.Sprintf("  🍅 %d", t.SpentPomodoros))
	}

	line := fmt.Sprintf("%s%s %s %s%s", cursor, focus, box, t.Title, meta)
	if i == m.cursor {
		return selectedItemStyle.Render(line)
	}
	return style.Render(line)
}

func errStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}

func notifyTasksChanged() tea.Cmd {
	return func() tea.Msg { return tasksChangedMsg{} }
}
