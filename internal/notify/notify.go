package notify

import (
	"time"

	"github.com/oklog/ulid/v2"

	"finitefield.org/storefront-web/internal/schedule"
)

// DefaultTTL is how long a notification stays on screen.
const DefaultTTL = 3 * time.Second

// Tone selects the notification styling.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
	ToneInfo    Tone = "info"
)

// Message is a transient user-facing notice.
type Message struct {
	ID        string
	Text      string
	Tone      Tone
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Queue holds the active notifications of one session. Not safe for concurrent use;
// callers serialize access (see session.State).
type Queue struct {
	sched schedule.Scheduler
	ttl   time.Duration
	newID func() string
	items []Message
	tasks map[string]schedule.Task
}

// Option customises a Queue.
type Option func(*Queue)

// WithIDGenerator overrides the message id source.
func WithIDGenerator(fn func() string) Option {
	return func(q *Queue) {
		if fn != nil {
			q.newID = fn
		}
	}
}

// NewQueue builds a queue whose messages expire after ttl (DefaultTTL when <= 0).
func NewQueue(sched schedule.Scheduler, ttl time.Duration, opts ...Option) *Queue {
	if sched == nil {
		sched = schedule.System()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	q := &Queue{
		sched: sched,
		ttl:   ttl,
		newID: func() string { return ulid.Make().String() },
		tasks: map[string]schedule.Task{},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Push appends a message and schedules its removal.
func (q *Queue) Push(text string, tone Tone) Message {
	if tone == "" {
		tone = ToneSuccess
	}
	now := q.sched.Now()
	msg := Message{
		ID:        q.newID(),
		Text:      text,
		Tone:      tone,
		CreatedAt: now,
		ExpiresAt: now.Add(q.ttl),
	}
	q.items = append(q.items, msg)
	id := msg.ID
	q.tasks[id] = q.sched.AfterFunc(q.ttl, func() {
		delete(q.tasks, id)
		q.remove(id)
	})
	return msg
}

// Notify pushes a success message.
func (q *Queue) Notify(text string) {
	q.Push(text, ToneSuccess)
}

// Active returns the messages still on screen, oldest first.
func (q *Queue) Active() []Message {
	out := make([]Message, len(q.items))
	copy(out, q.items)
	return out
}

// Dismiss removes a message early.
func (q *Queue) Dismiss(id string) bool {
	schedule.StopTask(q.tasks[id])
	delete(q.tasks, id)
	return q.remove(id)
}

// Clear drops every message and cancels pending expiries.
func (q *Queue) Clear() {
	for id, t := range q.tasks {
		t.Stop()
		delete(q.tasks, id)
	}
	q.items = nil
}

func (q *Queue) remove(id string) bool {
	for i, m := range q.items {
		if m.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}
