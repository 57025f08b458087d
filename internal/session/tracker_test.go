package session

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/focal-app/focal/internal/timer"
)

// fakeRemote records calls and can be told to fail the first N of each kind.
type fakeRemote struct {
	mu         sync.Mutex
	failStarts int
	starts     []Session
	updates    []Patch
	insights   []string

	done chan struct{} // signalled after every remote call
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{done: make(chan struct{}, 16)}
}

func (f *fakeRemote) LogStart(sess Session) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.done <- struct{}{} }()

	if f.failStarts > 0 {
		f.failStarts--
		return "", errors.New("remote down")
	}
	f.starts = append(f.starts, sess)
	return "sess-1", nil
}

func (f *fakeRemote) UpdateSession(id string, patch Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.done <- struct{}{} }()
	f.updates = append(f.updates, patch)
	return nil
}

func (f *fakeRemote) RequestInsight(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.done <- struct{}{} }()
	f.insights = append(f.insights, id)
	return nil
}

func (f *fakeRemote) wait(t *testing.T, calls int) {
	t.Helper()
	for i := 0; i < calls; i++ {
		select {
		case <-f.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for remote call %d of %d", i+1, calls)
		}
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestTracker(remote RemoteLog) *Tracker {
	tr := New(remote, quietLogger())
	tr.retryDelay = 10 * time.Millisecond
	return tr
}

// ============================================================
// Mirroring
// ============================================================

func TestNilRemoteDisablesMirroring(t *testing.T) {
	tr := New(nil, quietLogger())

	// Must not panic or spawn anything.
	tr.SessionStarted(timer.ModePomodoro)
	tr.SessionPaused(timer.ModePomodoro, 100)
	tr.SessionCompleted(timer.ModePomodoro)
}

func TestSessionStartedMirrors(t *testing.T) {
	remote := newFakeRemote()
	tr := newTestTracker(remote)

	tr.SessionStarted(timer.ModePomodoro)
	remote.wait(t, 1)

	remote.mu.Lock()
	defer remote.mu.Unlock()
	if len(remote.starts) != 1 {
		t.Fatalf("starts = %d, want 1", len(remote.starts))
	}
	if remote.starts[0].Mode != "pomodoro" {
		t.Fatalf("mode = %q", remote.starts[0].Mode)
	}
}

func TestSessionStartedRetriesOnce(t *testing.T) {
	remote := newFakeRemote()
	remote.failStarts = 1
	tr := newTestTracker(remote)

	tr.SessionStarted(timer.ModeShortBreak)
	remote.wait(t, 2) // failed attempt plus the retry

	remote.mu.Lock()
	defer remote.mu.Unlock()
	if len(remote.starts) != 1 {
		t.Fatalf("starts = %d after retry, want 1", len(remote.starts))
	}
}

func TestSessionStartedGivesUpAfterRetry(t *testing.T) {
	remote := newFakeRemote()
	remote.failStarts = 2
	tr := newTestTracker(remote)

	tr.SessionStarted(timer.ModePomodoro)
	remote.wait(t, 2)

	// Both attempts failed; no session id means later updates are dropped.
	tr.SessionCompleted(timer.ModePomodoro)
	time.Sleep(50 * time.Millisecond)

	remote.mu.Lock()
	defer remote.mu.Unlock()
	if len(remote.updates) != 0 {
		t.Fatalf("updates = %d, want none without a session id", len(remote.updates))
	}
}

func TestPauseAndCompleteMirror(t *testing.T) {
	remote := newFakeRemote()
	tr := newTestTracker(remote)

	tr.SessionStarted(timer.ModePomodoro)
	remote.wait(t, 1)

	tr.SessionPaused(timer.ModePomodoro, 840)
	remote.wait(t, 1)

	tr.SessionCompleted(timer.ModePomodoro)
	remote.wait(t, 2) // update plus the insight request

	remote.mu.Lock()
	defer remote.mu.Unlock()
	if len(remote.updates) != 2 {
		t.Fatalf("updates = %d, want 2", len(remote.updates))
	}
	if remote.updates[0]["status"] != "paused" || remote.updates[0]["seconds_left"] != 840 {
		t.Fatalf("pause patch = %v", remote.updates[0])
	}
	if remote.updates[1]["status"] != "completed" {
		t.Fatalf("complete patch = %v", remote.updates[1])
	}
	if len(remote.insights) != 1 || remote.insights[0] != "sess-1" {
		t.Fatalf("insights = %v", remote.insights)
	}
}

func TestBreakCompletionSkipsInsight(t *testing.T) {
	remote := newFakeRemote()
	tr := newTestTracker(remote)

	tr.SessionStarted(timer.ModeShortBreak)
	remote.wait(t, 1)

	tr.SessionCompleted(timer.ModeShortBreak)
	remote.wait(t, 1)
	time.Sleep(50 * time.Millisecond)

	remote.mu.Lock()
	defer remote.mu.Unlock()
	if len(remote.insights) != 0 {
		t.Fatal("breaks must not request insights")
	}
}

// ============================================================
// HTTP client
// ============================================================

func TestNewClientEmptyURL(t *testing.T) {
	if c := NewClient(""); c != nil {
		t.Fatal("empty URL should yield a nil client")
	}
	if c := NewClient("   "); c != nil {
		t.Fatal("blank URL should yield a nil client")
	}
}

func TestClientLogStart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sessions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var sess Session
		if err := json.NewDecoder(r.Body).Decode(&sess); err != nil {
			t.Errorf("decode: %v", err)
		}
		if sess.ID == "" {
			t.Error("client should send a generated id")
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "server-7"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	id, err := c.LogStart(Session{Mode: "pomodoro", StartedAt: time.Now()})
	if err != nil {
		t.Fatalf("log start: %v", err)
	}
	if id != "server-7" {
		t.Fatalf("id = %q, want server-assigned", id)
	}
}

func TestClientKeepsLocalIDWithoutServerID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	id, err := c.LogStart(Session{ID: "local-9", Mode: "pomodoro"})
	if err != nil {
		t.Fatalf("log start: %v", err)
	}
	if id != "local-9" {
		t.Fatalf("id = %q, want the client-side id", id)
	}
}

func TestClientSurfacesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.UpdateSession("x", Patch{"status": "paused"}); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}
