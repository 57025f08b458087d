package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/focal-app/focal/internal/store"
	"github.com/focal-app/focal/internal/timer"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestEngine(t *testing.T, s *store.Store) (*timer.Engine, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)}
	e := timer.New(timer.Config{
		Tasks:    s,
		Activity: s,
		Settings: s,
		Now:      clock.Now,
	})
	return e, clock
}

// ============================================================
// Formatting helpers
// ============================================================

func TestFormatCountdown(t *testing.T) {
	cases := []struct {
		secs int
		want string
	}{
		{0, "00:00"},
		{-5, "00:00"},
		{59, "00:59"},
		{60, "01:00"},
		{1500, "25:00"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tc := range cases {
		if got := formatCountdown(tc.secs); got != tc.want {
			t.Errorf("formatCountdown(%d) = %q, want %q", tc.secs, got, tc.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	cases := []struct {
		mins int
		want string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h 00m"},
		{125, "2h 05m"},
	}
	for _, tc := range cases {
		if got := formatMinutes(tc.mins); got != tc.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tc.mins, got, tc.want)
		}
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1, "day"); got != "1 day" {
		t.Errorf("plural(1) = %q", got)
	}
	if got := plural(3, "day"); got != "3 days" {
		t.Errorf("plural(3) = %q", got)
	}
	if got := plural(0, "task"); got != "0 tasks" {
		t.Errorf("plural(0) = %q", got)
	}
}

// ============================================================
// Timer view
// ============================================================

func TestTimerViewShowsPromptOnFocusCompletion(t *testing.T) {
	s := newTestStore(t)
	e, clock := newTestEngine(t, s)
	m := newTimerViewModel(s, e)

	e.Start()
	clock.advance(25 * time.Minute)

	m, _ = m.update(tickMsg(clock.Now()))
	if !m.promptActive {
		t.Fatal("focus completion should raise the prompt")
	}
	if e.Mode() != timer.ModePomodoro {
		t.Fatal("mode must not advance until the prompt is resolved")
	}
}

func TestTimerViewAutoSkipsAfterBreak(t *testing.T) {
	s := newTestStore(t)
	e, clock := newTestEngine(t, s)
	m := newTimerViewModel(s, e)

	e.SetMode(timer.ModeShortBreak)
	e.Start()
	clock.advance(10 * time.Minute)

	m, _ = m.update(tickMsg(clock.Now()))
	if m.promptActive {
		t.Fatal("break completion has no prompt")
	}
	if e.Mode() != timer.ModePomodoro {
		t.Fatal("break completion should return to focus mode")
	}
}

func TestTimerViewPromptResolution(t *testing.T) {
	s := newTestStore(t)
	task, err := s.CreateTask("deep work")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := s.SetFocusedTask(task.ID); err != nil {
		t.Fatalf("focus: %v", err)
	}

	e, clock := newTestEngine(t, s)
	m := newTimerViewModel(s, e)

	e.Start()
	clock.advance(25 * time.Minute)
	m, _ = m.update(tickMsg(clock.Now()))
	if !m.promptActive {
		t.Fatal("expected prompt")
	}

	// First choice: credit the focused task.
	m, _ = m.updatePrompt(keyMsg("enter"))
	if m.promptActive {
		t.Fatal("prompt should close on enter")
	}
	if e.Mode() != timer.ModeShortBreak {
		t.Fatalf("mode = %v, want the break after resolution", e.Mode())
	}

	got, err := s.GetTask(task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.SpentPomodoros != 1 {
		t.Fatalf("spent = %d, want 1", got.SpentPomodoros)
	}
	if got.Completed {
		t.Fatal("credit alone must not complete the task")
	}
}

func TestTimerViewCycleModeOnlyWhenStopped(t *testing.T) {
	s := newTestStore(t)
	e, _ := newTestEngine(t, s)
	m := newTimerViewModel(s, e)

	m = m.cycleMode(1)
	if e.Mode() != timer.ModeShortBreak {
		t.Fatalf("mode = %v, want short break", e.Mode())
	}
	m = m.cycleMode(-1)
	if e.Mode() != timer.ModePomodoro {
		t.Fatalf("mode = %v, want pomodoro", e.Mode())
	}

	e.Start()
	m = m.cycleMode(1)
	if e.Mode() != timer.ModePomodoro {
		t.Fatal("a running timer must not change modes")
	}
}

// ============================================================
// Tasks view
// ============================================================

func TestRebuildRowsFlattensSubtasks(t *testing.T) {
	s := newTestStore(t)
	m := newTasksModel(s)

	m.tasks = []store.Task{
		{ID: "a", Title: "parent", Subtasks: []store.Subtask{
			{ID: "a1", Title: "child one"},
			{ID: "a2", Title: "child two"},
		}},
		{ID: "b", Title: "solo"},
	}
	m.rebuildRows()

	if len(m.rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(m.rows))
	}
	if m.rows[0].subtask != nil || m.rows[0].task.ID != "a" {
		t.Fatalf("row 0 = %+v", m.rows[0])
	}
	if m.rows[1].subtask == nil || m.rows[1].subtask.ID != "a1" {
		t.Fatalf("row 1 = %+v", m.rows[1])
	}
	if m.rows[3].task.ID != "b" {
		t.Fatalf("row 3 = %+v", m.rows[3])
	}
}

func TestRebuildRowsClampsCursor(t *testing.T) {
	s := newTestStore(t)
	m := newTasksModel(s)
	m.cursor = 10
	m.tasks = []store.Task{{ID: "a", Title: "only"}}
	m.rebuildRows()

	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want clamped to 0", m.cursor)
	}
}
