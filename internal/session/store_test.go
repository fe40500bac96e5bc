package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finitefield.org/storefront-web/internal/contact"
	"finitefield.org/storefront-web/internal/format"
	"finitefield.org/storefront-web/internal/schedule"
)

func newTestStore(t *testing.T) (*Store, *schedule.Fake) {
	t.Helper()
	clock := schedule.NewFake(time.Time{})
	n := 0
	store := NewStore(Options{
		Formatter: format.New("en"),
		Scheduler: clock,
		TTL:       time.Hour,
		NewID: func() string {
			n++
			return fmt.Sprintf("session-%02d", n)
		},
	})
	return store, clock
}

func TestGetOrCreate(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	st, created := store.GetOrCreate("")
	require.True(t, created)
	require.Equal(t, "session-01", st.ID)

	again, created := store.GetOrCreate(st.ID)
	require.False(t, created)
	require.Same(t, st, again)

	_, created = store.GetOrCreate("forged")
	require.True(t, created)
	require.Equal(t, 2, store.Len())
}

func TestTimersRunUnderSessionLock(t *testing.T) {
	t.Parallel()

	store, clock := newTestStore(t)
	st := store.Create()

	st.With(func(st *State) { st.Cart.Add("Silk Saree", 5999) })
	snap := st.Snapshot()
	require.True(t, snap.Cart.PanelOpen)
	require.Len(t, snap.Notices, 1)
	require.Equal(t, "Silk Saree added to cart!", snap.Notices[0].Text)

	clock.Advance(2 * time.Second)
	snap = st.Snapshot()
	require.False(t, snap.Cart.PanelOpen)
	require.Len(t, snap.Notices, 1)

	clock.Advance(time.Second)
	require.Empty(t, st.Snapshot().Notices)
	require.Equal(t, 1, st.Snapshot().Cart.Badge, "timers never touch cart lines")
}

func TestUpdateReturnsProjectionOfTheMutation(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	st := store.Create()

	snap := st.Update(func(st *State) {
		st.Cart.Add("Designer Lehenga", 8999)
		st.Cart.Add("Designer Lehenga", 8999)
	})
	require.Equal(t, 2, snap.Cart.Badge)
	require.Equal(t, "Total: ₹17,998", snap.Cart.Total)
	require.Len(t, snap.Notices, 2)
	require.Equal(t, snap.Cart, st.Snapshot().Cart)
}

func TestContactCompletesThroughSessionQueue(t *testing.T) {
	t.Parallel()

	store, clock := newTestStore(t)
	st := store.Create()

	var err error
	st.With(func(st *State) {
		_, err = st.Contact.Submit(contact.Form{Name: "Asha", Email: "a@example.com", Message: "Hi"})
	})
	require.NoError(t, err)

	clock.Advance(contact.DefaultDelay)
	notices := st.Snapshot().Notices
	require.Len(t, notices, 1)
	require.Equal(t, contact.ThankYouMessage, notices[0].Text)
}

func TestSweepEvictsIdleSessionsAndCancelsTimers(t *testing.T) {
	t.Parallel()

	store, clock := newTestStore(t)
	idle := store.Create()
	active := store.Create()

	clock.Advance(30 * time.Minute)
	_, ok := store.Get(active.ID)
	require.True(t, ok)
	clock.Advance(31 * time.Minute)

	idle.With(func(st *State) { st.Cart.Add("Jacket Set", 4299) })
	require.Equal(t, 2, clock.Pending(), "auto-close and notice expiry")

	require.Equal(t, 1, store.Sweep())
	require.Equal(t, 1, store.Len())
	require.Zero(t, clock.Pending(), "evicted session timers are cancelled")

	_, ok = store.Get(idle.ID)
	require.False(t, ok)
	require.Zero(t, idle.Snapshot().Cart.Badge)
}

func TestDeleteAndClose(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	a := store.Create()
	store.Create()

	require.True(t, store.Delete(a.ID))
	require.False(t, store.Delete(a.ID))
	store.Close()
	require.Zero(t, store.Len())
}

func TestConcurrentCommandsAreSerialized(t *testing.T) {
	t.Parallel()

	store := NewStore(Options{Formatter: format.New("en"), AutoClose: time.Hour, NotifyTTL: time.Hour})
	t.Cleanup(store.Close)
	st := store.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.With(func(st *State) { st.Cart.Add("Embroidered Kurti", 2499) })
		}()
	}
	wg.Wait()

	require.Equal(t, 10, st.Snapshot().Cart.Badge)
}
