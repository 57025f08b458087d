package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/focal-app/focal/internal/notify"
	"github.com/focal-app/focal/internal/session"
	"github.com/focal-app/focal/internal/store"
	"github.com/focal-app/focal/internal/timer"
	"github.com/focal-app/focal/internal/tui"
)

func main() {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	log := newLogger(filepath.Join(filepath.Dir(dbPath), "focal.log"))

	// Mirroring is off unless a session log URL is configured.
	tracker := session.New(remoteFromSettings(s), log)

	engine := timer.New(timer.Config{
		Tasks:    s,
		Activity: s,
		Settings: s,
		Notifier: notify.NewDesktop(),
		Listener: tracker,
	})

	app := tui.NewApp(s, engine)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger logs to a file next to the database; stdout belongs to the TUI.
func newLogger(path string) *logrus.Logger {
	log := logrus.New()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.SetOutput(io.Discard)
		return log
	}
	log.SetOutput(f)
	log.SetLevel(logrus.DebugLevel)
	return log
}

func remoteFromSettings(s *store.Store) session.RemoteLog {
	client := session.NewClient(s.LoadSettings().SessionLogURL)
	if client == nil {
		return nil
	}
	return client
}
