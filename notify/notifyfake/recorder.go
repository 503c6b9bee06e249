package notifyfake

import (
	"sync"

	"github.com/jrsteele09/go-leads-client/notify"
)

var _ notify.Notifier = (*Recorder)(nil)

// Recorder keeps every notification it receives.
type Recorder struct {
	lock          sync.Mutex
	notifications []notify.Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(n notify.Notification) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *Recorder) All() []notify.Notification {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]notify.Notification(nil), r.notifications...)
}

func (r *Recorder) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.notifications)
}

// Last returns the most recent notification, or the zero value when none were recorded.
func (r *Recorder) Last() notify.Notification {
	r.lock.Lock()
	defer r.lock.Unlock()
	if len(r.notifications) == 0 {
		return notify.Notification{}
	}
	return r.notifications[len(r.notifications)-1]
}

// Titles returns the titles in the order received.
func (r *Recorder) Titles() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	titles := make([]string, 0, len(r.notifications))
	for _, n := range r.notifications {
		titles = append(titles, n.Title)
	}
	return titles
}
