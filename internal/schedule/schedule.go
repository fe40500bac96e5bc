package schedule

import (
	"sync"
	"time"
)

// Task is a pending delayed callback.
type Task interface {
	// Stop cancels the task. It reports whether the call prevented the callback from running.
	Stop() bool
}

// Scheduler runs callbacks after a delay and exposes the clock it measures against.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Task
}

type systemScheduler struct{}

// System returns a Scheduler backed by the runtime timers.
func System() Scheduler { return systemScheduler{} }

func (systemScheduler) Now() time.Time { return time.Now() }

func (systemScheduler) AfterFunc(d time.Duration, fn func()) Task {
	return time.AfterFunc(d, fn)
}

// Guarded wraps a scheduler so every callback runs while holding locker.
//
// Stop on a guarded task must be called with locker held. Once stopped under
// the lock, the callback is guaranteed not to run even if its timer already
// fired and is waiting for the lock.
func Guarded(locker sync.Locker, inner Scheduler) Scheduler {
	if inner == nil {
		inner = System()
	}
	return &guarded{locker: locker, inner: inner}
}

type guarded struct {
	locker sync.Locker
	inner  Scheduler
}

type guardedTask struct {
	inner   Task
	stopped bool
	fired   bool
}

func (g *guarded) Now() time.Time { return g.inner.Now() }

func (g *guarded) AfterFunc(d time.Duration, fn func()) Task {
	t := &guardedTask{}
	t.inner = g.inner.AfterFunc(d, func() {
		g.locker.Lock()
		defer g.locker.Unlock()
		if t.stopped {
			return
		}
		t.fired = true
		fn()
	})
	return t
}

func (t *guardedTask) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	if t.inner != nil {
		t.inner.Stop()
	}
	return true
}

// StopTask stops t when non-nil and reports whether a pending callback was cancelled.
func StopTask(t Task) bool {
	if t == nil {
		return false
	}
	return t.Stop()
}
