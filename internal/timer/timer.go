// Package timer implements the countdown state machine for focus intervals
// and breaks. The authoritative clock is the absolute target end time; the
// per-second display value is recomputed from the wall clock on every tick,
// so a suspended or delayed tick loop never drifts the countdown.
package timer

import (
	"math"
	"time"

	"github.com/focal-app/focal/internal/store"
)

type Mode int

const (
	ModePomodoro Mode = iota
	ModeShortBreak
	ModeLongBreak
)

func (m Mode) String() string {
	switch m {
	case ModeShortBreak:
		return "short_break"
	case ModeLongBreak:
		return "long_break"
	default:
		return "pomodoro"
	}
}

// CompletionChoice resolves the prompt shown after a finished focus interval.
type CompletionChoice int

const (
	// ChoiceCredit credits one pomodoro to the focused task.
	ChoiceCredit CompletionChoice = iota
	// ChoiceCreditAndComplete credits the pomodoro and marks the task done.
	ChoiceCreditAndComplete
	// ChoiceSkip leaves the focused task untouched.
	ChoiceSkip
)

// TaskSource is the slice of the task store the engine needs.
type TaskSource interface {
	FocusedTaskID() (string, error)
	SetFocusedTask(id string) error
	ClearFocusedTask() error
	FirstIncompleteTask() (*store.Task, error)
	AddPomodoroToTask(id string) error
	CompleteTask(id string) error
}

// ActivitySink receives one pomodoro per completed focus interval.
type ActivitySink interface {
	AddPomodoro(date string) error
}

// SettingsSource supplies durations and policy flags.
type SettingsSource interface {
	LoadSettings() store.Settings
}

// Notifier fires a completion notification. Implementations must swallow
// their own failures; a missing notification is not an error.
type Notifier interface {
	Notify(title, body string)
}

// Listener observes engine transitions. Callbacks run synchronously on the
// engine's thread and must not block.
type Listener interface {
	SessionStarted(mode Mode)
	SessionPaused(mode Mode, secondsLeft int)
	SessionCompleted(mode Mode)
}

// Config wires the engine's collaborators. Now defaults to time.Now.
type Config struct {
	Tasks    TaskSource
	Activity ActivitySink
	Settings SettingsSource
	Notifier Notifier
	Listener Listener
	Now      func() time.Time
}

// Engine is the timer state machine. It is not safe for concurrent use; all
// calls are expected on the single UI thread. None of its operations return
// errors: invalid call sequences and policy rejections are defined no-ops.
type Engine struct {
	cfg Config
	now func() time.Time

	mode               Mode
	secondsLeft        int
	running            bool
	completedPomodoros int
	targetEnd          time.Time // zero unless running
}

// New returns a stopped engine in pomodoro mode with a full interval loaded.
// Timer state is deliberately never persisted; every process starts here.
func New(cfg Config) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	e := &Engine{cfg: cfg, now: cfg.Now, mode: ModePomodoro}
	e.secondsLeft = e.durationFor(ModePomodoro)
	return e
}

func (e *Engine) Mode() Mode              { return e.mode }
func (e *Engine) SecondsLeft() int        { return e.secondsLeft }
func (e *Engine) Running() bool           { return e.running }
func (e *Engine) CompletedPomodoros() int { return e.completedPomodoros }
func (e *Engine) TargetEnd() time.Time    { return e.targetEnd }

func (e *Engine) durationFor(m Mode) int {
	s := e.cfg.Settings.LoadSettings()
	switch m {
	case ModeShortBreak:
		return s.ShortBreakSecs
	case ModeLongBreak:
		return s.LongBreakSecs
	default:
		return s.PomodoroMinutes * 60
	}
}

// Start begins the countdown from the current secondsLeft. Starting a focus
// interval with no focused task picks the first incomplete task when the
// auto-assign policy is on.
func (e *Engine) Start() {
	if e.running {
		return
	}
	if e.mode == ModePomodoro && e.cfg.Settings.LoadSettings().AutoAssign {
		e.autoAssignTask()
	}
	e.targetEnd = e.now().Add(time.Duration(e.secondsLeft) * time.Second)
	e.running = true
	if e.cfg.Listener != nil {
		e.cfg.Listener.SessionStarted(e.mode)
	}
}

func (e *Engine) autoAssignTask() {
	focused, err := e.cfg.Tasks.FocusedTaskID()
	if err != nil || focused != "" {
		return
	}
	task, err := e.cfg.Tasks.FirstIncompleteTask()
	if err != nil || task == nil {
		return
	}
	e.cfg.Tasks.SetFocusedTask(task.ID)
}

// Pause stops the countdown, folding the true remaining time back into
// secondsLeft. Under the pause-lock policy a running focus interval cannot
// be paused; the call is rejected with no state change.
func (e *Engine) Pause() {
	if !e.running {
		return
	}
	if e.mode == ModePomodoro && e.cfg.Settings.LoadSettings().PauseLock {
		return
	}
	e.secondsLeft = e.remaining()
	e.targetEnd = time.Time{}
	e.running = false
	if e.cfg.Listener != nil {
		e.cfg.Listener.SessionPaused(e.mode, e.secondsLeft)
	}
}

func (e *Engine) Toggle() {
	if e.running {
		e.Pause()
	} else {
		e.Start()
	}
}

// Reset stops the countdown and restores the configured duration for the
// current mode.
func (e *Engine) Reset() {
	e.running = false
	e.targetEnd = time.Time{}
	e.secondsLeft = e.durationFor(e.mode)
}

// SetMode stops the countdown and switches to the given mode with a full
// interval loaded. The completed-pomodoro count is untouched.
func (e *Engine) SetMode(m Mode) {
	e.running = false
	e.targetEnd = time.Time{}
	e.mode = m
	e.secondsLeft = e.durationFor(m)
}

// Skip advances to the next mode: a focus interval skips into a break (every
// fourth completed pomodoro earns the long one), and any break skips back to
// focus.
func (e *Engine) Skip() {
	e.SetMode(e.nextMode())
}

func (e *Engine) nextMode() Mode {
	if e.mode != ModePomodoro {
		return ModePomodoro
	}
	if (e.completedPomodoros+1)%4 == 0 && e.completedPomodoros > 0 {
		return ModeLongBreak
	}
	return ModeShortBreak
}

// remaining computes the authoritative remaining whole seconds from the
// target end time, rounded up and clamped at zero.
func (e *Engine) remaining() int {
	left := e.targetEnd.Sub(e.now())
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}

// Tick refreshes the display cache from the wall clock and detects the zero
// crossing. It reports whether an interval just completed, in which case the
// caller surfaces the completion prompt; the engine never advances modes on
// its own. Ticks are cheap and tolerate being skipped or delayed.
func (e *Engine) Tick() bool {
	if !e.running {
		return false
	}

	left := e.remaining()
	if left > 0 {
		e.secondsLeft = left
		return false
	}

	e.running = false
	e.secondsLeft = 0
	e.targetEnd = time.Time{}

	if e.mode == ModePomodoro {
		e.completedPomodoros++
		e.cfg.Activity.AddPomodoro(store.DateKey(e.now()))
		e.notify("Focus interval complete", "Take a break, or skip straight back in.")
	} else {
		e.notify("Break over", "Ready for the next focus interval.")
	}
	if e.cfg.Listener != nil {
		e.cfg.Listener.SessionCompleted(e.mode)
	}
	return true
}

func (e *Engine) notify(title, body string) {
	if e.cfg.Notifier != nil {
		e.cfg.Notifier.Notify(title, body)
	}
}

// ResolveCompletion applies the user's choice from the completion prompt.
// With no focused task the pomodoro is still counted at the day level but
// cannot be credited to a task, so every choice is a no-op.
func (e *Engine) ResolveCompletion(choice CompletionChoice) {
	if choice == ChoiceSkip {
		return
	}
	focused, err := e.cfg.Tasks.FocusedTaskID()
	if err != nil || focused == "" {
		return
	}
	e.cfg.Tasks.AddPomodoroToTask(focused)
	if choice == ChoiceCreditAndComplete {
		e.cfg.Tasks.CompleteTask(focused)
		e.cfg.Tasks.ClearFocusedTask()
	}
}
