// Package contact implements the storefront contact form. Submissions are
// acknowledged after a simulated delay; nothing is sent anywhere.
package contact

import (
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"finitefield.org/storefront-web/internal/notify"
	"finitefield.org/storefront-web/internal/schedule"
)

const (
	// DefaultDelay is the simulated submission latency.
	DefaultDelay = 2 * time.Second

	MissingFieldsMessage = "Please fill in all fields."
	ThankYouMessage      = "Thank you for your message! We'll get back to you soon."
	PendingMessage       = "Your previous message is still being sent."
)

var (
	// ErrMissingFields indicates at least one required field is blank.
	ErrMissingFields = errors.New("contact: missing required fields")
	// ErrSubmissionPending indicates a previous submission has not completed yet.
	ErrSubmissionPending = errors.New("contact: submission pending")
)

// Form is the contact form input.
type Form struct {
	Name    string
	Email   string
	Message string
}

// Normalize trims every field.
func (f Form) Normalize() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Message: strings.TrimSpace(f.Message),
	}
}

// Validate requires all three fields to be non-blank.
func (f Form) Validate() error {
	n := f.Normalize()
	if n.Name == "" || n.Email == "" || n.Message == "" {
		return ErrMissingFields
	}
	return nil
}

// Ticket tracks one accepted submission.
type Ticket struct {
	ID          string
	SubmittedAt time.Time
	CompletedAt time.Time
	Pending     bool
}

// Pusher receives user-facing notices.
type Pusher interface {
	Push(text string, tone notify.Tone) notify.Message
}

// Submitter runs the simulated submission for one session. Not safe for
// concurrent use; the owner serializes calls and scheduler callbacks.
type Submitter struct {
	sched   schedule.Scheduler
	notices Pusher
	delay   time.Duration
	logger  *zap.Logger

	last Ticket
	task schedule.Task
}

// NewSubmitter builds a Submitter. Zero delay selects DefaultDelay.
func NewSubmitter(sched schedule.Scheduler, notices Pusher, delay time.Duration, logger *zap.Logger) *Submitter {
	if sched == nil {
		sched = schedule.System()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{sched: sched, notices: notices, delay: delay, logger: logger}
}

// Submit validates form and, when valid, starts a simulated submission that
// completes after the configured delay.
func (s *Submitter) Submit(form Form) (Ticket, error) {
	if err := form.Validate(); err != nil {
		s.push(MissingFieldsMessage, notify.ToneError)
		return Ticket{}, err
	}
	if s.Pending() {
		s.push(PendingMessage, notify.ToneInfo)
		return s.last, ErrSubmissionPending
	}

	t := Ticket{
		ID:          ulid.Make().String(),
		SubmittedAt: s.sched.Now(),
		Pending:     true,
	}
	s.last = t
	var task schedule.Task
	task = s.sched.AfterFunc(s.delay, func() {
		if s.task != task {
			return
		}
		s.task = nil
		s.last.Pending = false
		s.last.CompletedAt = s.sched.Now()
		s.logger.Info("contact submission completed", zap.String("ticket_id", s.last.ID))
		s.push(ThankYouMessage, notify.ToneSuccess)
	})
	s.task = task
	s.logger.Debug("contact submission accepted", zap.String("ticket_id", t.ID))
	return t, nil
}

// Pending reports whether a submission is in flight.
func (s *Submitter) Pending() bool { return s.task != nil }

// Last returns the most recent ticket.
func (s *Submitter) Last() (Ticket, bool) {
	return s.last, s.last.ID != ""
}

// Cancel abandons the in-flight submission without notifying.
func (s *Submitter) Cancel() {
	if s.task != nil {
		s.task.Stop()
		s.task = nil
		s.last.Pending = false
	}
}

func (s *Submitter) push(text string, tone notify.Tone) {
	if s.notices != nil {
		s.notices.Push(text, tone)
	}
}
