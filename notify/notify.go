// Package notify delivers short user-facing messages about session and job
// state changes.
package notify

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

type Notifier interface {
	Notify(n Notification)
}

// Func adapts a plain function to a Notifier.
type Func func(n Notification)

func (f Func) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to the global zerolog logger.
type LogNotifier struct{}

var _ Notifier = LogNotifier{}

func (LogNotifier) Notify(n Notification) {
	ev := log.Info()
	if n.Variant == VariantDestructive {
		ev = log.Warn()
	}
	ev.Str("title", n.Title).Msg(n.Description)
}

// Multi fans a notification out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

// Synchronized serialises calls into a notifier that is not safe for concurrent use.
type Synchronized struct {
	mu   sync.Mutex
	next Notifier
}

func NewSynchronized(next Notifier) *Synchronized {
	return &Synchronized{next: next}
}

func (s *Synchronized) Notify(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next.Notify(n)
}
