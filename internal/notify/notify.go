// Package notify wraps desktop notifications. Delivery is best effort: a
// denied permission or missing notification daemon is silently ignored.
package notify

import "github.com/gen2brain/beeep"

type Notifier interface {
	Notify(title, body string)
}

// Desktop sends native desktop notifications via beeep.
type Desktop struct{}

func NewDesktop() Desktop { return Desktop{} }

func (Desktop) Notify(title, body string) {
	// Errors are swallowed; a lost notification is not user-facing.
	_ = beeep.Notify(title, body, "")
}

// Discard drops every notification. Used in tests and headless runs.
type Discard struct{}

func (Discard) Notify(title, body string) {}
