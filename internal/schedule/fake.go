package schedule

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Scheduler for tests.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*fakeTask
}

type fakeTask struct {
	owner   *Fake
	due     time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

// NewFake returns a Fake scheduler whose clock starts at start.
func NewFake(start time.Time) *Fake {
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Fake{now: start}
}

// Now returns the fake clock.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// AfterFunc registers fn to run once the clock has advanced by d.
func (f *Fake) AfterFunc(d time.Duration, fn func()) Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &fakeTask{owner: f, due: f.now.Add(d), seq: f.seq, fn: fn}
	f.tasks = append(f.tasks, t)
	return t
}

// Pending reports how many callbacks are still scheduled.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves the clock forward and runs every callback that became due, in due order.
// Callbacks run without the Fake's lock held so they may schedule further work.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		next := f.nextDueLocked(target)
		if next == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		next.fired = true
		if next.due.After(f.now) {
			f.now = next.due
		}
		fn := next.fn
		f.mu.Unlock()
		fn()
	}
}

func (f *Fake) nextDueLocked(target time.Time) *fakeTask {
	live := f.tasks[:0]
	for _, t := range f.tasks {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	f.tasks = live
	sort.SliceStable(f.tasks, func(i, j int) bool {
		if f.tasks[i].due.Equal(f.tasks[j].due) {
			return f.tasks[i].seq < f.tasks[j].seq
		}
		return f.tasks[i].due.Before(f.tasks[j].due)
	})
	for _, t := range f.tasks {
		if !t.due.After(target) {
			return t
		}
		break
	}
	return nil
}

func (t *fakeTask) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
