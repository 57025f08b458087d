package store

type Task struct {
	ID             string
	Title          string
	Completed      bool
	CreatedAt      string // YYYY-MM-DD, local time
	CompletedAt    string // YYYY-MM-DD, empty unless Completed
	SpentPomodoros int
	Subtasks       []Subtask
}

type Subtask struct {
	ID        string
	TaskID    string
	Title     string
	Completed bool
}

// DayActivity is the per-date aggregate record. A day is "active" when any
// of the three counters is set.
type DayActivity struct {
	Date           string
	Pomodoros      int
	CompletedTasks int
	HasNote        bool
}

func (a DayActivity) Active() bool {
	return a.Pomodoros > 0 || a.CompletedTasks > 0 || a.HasNote
}

type Note struct {
	Date    string
	Content string
}

type Setting struct {
	Key   string
	Value string
}

// Settings is the typed view of the settings table consumed by the timer
// engine and the stats views.
type Settings struct {
	PomodoroMinutes int
	ShortBreakSecs  int
	LongBreakSecs   int
	AutoAssign      bool
	PauseLock       bool
	SessionLogURL   string
}
