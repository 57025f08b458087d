// Package session mirrors timer transitions to a remote session log. All
// remote work is fire-and-forget: it runs detached from the timer's control
// flow, retries once after a fixed delay, and swallows failures.
package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/focal-app/focal/internal/timer"
)

// Session is the payload mirrored on start.
type Session struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	StartedAt time.Time `json:"started_at"`
}

// Patch carries partial session updates.
type Patch map[string]any

// RemoteLog is the best-effort remote collaborator.
type RemoteLog interface {
	LogStart(sess Session) (string, error)
	UpdateSession(id string, patch Patch) error
	RequestInsight(id string) error
}

// Tracker observes engine transitions and mirrors them remotely. It never
// blocks the caller and never surfaces an error; the worst outcome of a dead
// remote is a log line.
type Tracker struct {
	remote     RemoteLog
	log        *logrus.Logger
	retryDelay time.Duration

	mu        sync.Mutex
	sessionID string
}

var _ timer.Listener = (*Tracker)(nil)

// New returns a tracker for the given remote. A nil remote disables
// mirroring entirely; every callback becomes a no-op.
func New(remote RemoteLog, log *logrus.Logger) *Tracker {
	return &Tracker{remote: remote, log: log, retryDelay: 2 * time.Second}
}

func (t *Tracker) SessionStarted(mode timer.Mode) {
	if t.remote == nil {
		return
	}
	sess := Session{Mode: mode.String(), StartedAt: time.Now()}
	go func() {
		id, err := t.remote.LogStart(sess)
		if err != nil {
			time.Sleep(t.retryDelay)
			id, err = t.remote.LogStart(sess)
		}
		if err != nil {
			t.log.WithError(err).Debug("session start not mirrored")
			return
		}
		t.mu.Lock()
		t.sessionID = id
		t.mu.Unlock()
	}()
}

func (t *Tracker) SessionPaused(mode timer.Mode, secondsLeft int) {
	t.update(Patch{
		"status":       "paused",
		"seconds_left": secondsLeft,
	}, false)
}

func (t *Tracker) SessionCompleted(mode timer.Mode) {
	t.update(Patch{
		"status":   "completed",
		"ended_at": time.Now(),
	}, mode == timer.ModePomodoro)
}

// update patches the current session and, for a completed focus interval,
// kicks off downstream insight generation.
func (t *Tracker) update(patch Patch, wantInsight bool) {
	if t.remote == nil {
		return
	}
	t.mu.Lock()
	id := t.sessionID
	t.mu.Unlock()
	if id == "" {
		// Start call never landed; nothing to patch.
		return
	}

	go func() {
		if err := t.remote.UpdateSession(id, patch); err != nil {
			time.Sleep(t.retryDelay)
			if err = t.remote.UpdateSession(id, patch); err != nil {
				t.log.WithError(err).Debug("session update not mirrored")
				return
			}
		}
		if wantInsight {
			if err := t.remote.RequestInsight(id); err != nil {
				t.log.WithError(err).Debug("insight request failed")
			}
		}
	}()
}
