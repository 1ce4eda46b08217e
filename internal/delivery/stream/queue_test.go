package stream

import (
	"testing"
	"time"

	"cravlr/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queueHarness captures emitted events and scheduled timers so transitions
// can be driven deterministically.
type queueHarness struct {
	queue     *pingQueue
	events    []Event
	scheduled []func()
}

func newQueueHarness() *queueHarness {
	h := &queueHarness{}
	h.queue = newPingQueue(QueueConfig{}, func(ev Event) {
		h.events = append(h.events, ev)
	})
	h.queue.afterFunc = func(_ time.Duration, fn func()) *time.Timer {
		h.scheduled = append(h.scheduled, fn)

		return time.NewTimer(time.Hour)
	}

	return h
}

// fireNext runs the most recently scheduled timer callback.
func (h *queueHarness) fireNext(t *testing.T) {
	t.Helper()
	require.NotEmpty(t, h.scheduled, "no timer scheduled")

	fn := h.scheduled[len(h.scheduled)-1]
	h.scheduled = h.scheduled[:len(h.scheduled)-1]
	fn()
}

func ping(typ string) *service.Ping {
	return &service.Ping{ID: uuid.New(), Type: typ, Title: "t", Body: "b"}
}

func TestEnqueue_IdleShowsImmediately(t *testing.T) {
	h := newQueueHarness()
	p := ping("nearby_request")

	assert.True(t, h.queue.Enqueue(p))
	assert.Equal(t, StateShowing, h.queue.State())
	require.Len(t, h.events, 1)
	assert.Equal(t, EventShow, h.events[0].Kind)
	assert.Equal(t, p, h.events[0].Ping)
}

func TestEnqueue_WhileShowingQueuesBehind(t *testing.T) {
	h := newQueueHarness()

	assert.True(t, h.queue.Enqueue(ping("nearby_request")))
	assert.True(t, h.queue.Enqueue(ping("nearby_request")))

	assert.Equal(t, 1, h.queue.PendingCount())
	assert.Len(t, h.events, 1, "queued ping must not emit a show event yet")
}

func TestDismiss_AdvancesToNextPing(t *testing.T) {
	h := newQueueHarness()
	first := ping("nearby_request")
	second := ping("nearby_request")

	h.queue.Enqueue(first)
	h.queue.Enqueue(second)

	h.queue.Dismiss()
	assert.Equal(t, StateDismissing, h.queue.State())
	require.Len(t, h.events, 2)
	assert.Equal(t, EventDismiss, h.events[1].Kind)
	assert.Equal(t, first, h.events[1].Ping)

	// Settle timer elapses; the next ping comes up.
	h.fireNext(t)
	assert.Equal(t, StateShowing, h.queue.State())
	require.Len(t, h.events, 3)
	assert.Equal(t, EventShow, h.events[2].Kind)
	assert.Equal(t, second, h.events[2].Ping)
}

func TestDismiss_LastPingSettlesToIdle(t *testing.T) {
	h := newQueueHarness()
	h.queue.Enqueue(ping("nearby_request"))

	h.queue.Dismiss()
	h.fireNext(t)

	assert.Equal(t, StateIdle, h.queue.State())
	assert.Nil(t, h.queue.Active())
}

func TestEnqueue_DuplicateIDAndTypeDropped(t *testing.T) {
	h := newQueueHarness()
	p := ping("nearby_request")

	assert.True(t, h.queue.Enqueue(p))
	assert.False(t, h.queue.Enqueue(p), "visible duplicate must be dropped")

	queued := ping("nearby_request")
	assert.True(t, h.queue.Enqueue(queued))
	assert.False(t, h.queue.Enqueue(queued), "pending duplicate must be dropped")

	// Same ID with a different type is a distinct ping.
	other := &service.Ping{ID: p.ID, Type: "reminder"}
	assert.True(t, h.queue.Enqueue(other))
	assert.Equal(t, 2, h.queue.PendingCount())
}

func TestDoNotDisturb_ClearsEverything(t *testing.T) {
	h := newQueueHarness()
	h.queue.Enqueue(ping("nearby_request"))
	h.queue.Enqueue(ping("nearby_request"))

	h.queue.SetDoNotDisturb(true)

	assert.Equal(t, StateIdle, h.queue.State())
	assert.Nil(t, h.queue.Active())
	assert.Equal(t, 0, h.queue.PendingCount())
	assert.Equal(t, EventDismiss, h.events[len(h.events)-1].Kind)

	assert.False(t, h.queue.Enqueue(ping("nearby_request")), "pings are dropped while in DND")

	h.queue.SetDoNotDisturb(false)
	assert.True(t, h.queue.Enqueue(ping("nearby_request")))
}

func TestShowTimer_AutoDismisses(t *testing.T) {
	h := newQueueHarness()
	h.queue.Enqueue(ping("nearby_request"))

	// Response window elapses without the client reacting.
	h.fireNext(t)

	assert.Equal(t, StateDismissing, h.queue.State())
	assert.Equal(t, EventDismiss, h.events[len(h.events)-1].Kind)
}

func TestManualDismiss_CancelsShowTimer(t *testing.T) {
	h := newQueueHarness()
	h.queue.Enqueue(ping("nearby_request"))
	require.Len(t, h.scheduled, 1)
	stale := h.scheduled[0]

	h.queue.Dismiss()
	eventCount := len(h.events)

	// The cancelled show timer fires anyway; it must be ignored.
	stale()
	assert.Len(t, h.events, eventCount)
}

func TestRemove_DropsPendingAndDismissesActive(t *testing.T) {
	h := newQueueHarness()
	active := ping("nearby_request")
	queued := ping("nearby_request")

	h.queue.Enqueue(active)
	h.queue.Enqueue(queued)

	h.queue.Remove(queued)
	assert.Equal(t, 0, h.queue.PendingCount())
	assert.Equal(t, StateShowing, h.queue.State())

	h.queue.Remove(active)
	assert.Equal(t, StateDismissing, h.queue.State())
}

func delayedPingAt(showAt time.Time) *service.Ping {
	p := ping("nearby_request")
	p.ShowAt = showAt

	return p
}

func TestEnqueue_FutureShowAtIsHeldBack(t *testing.T) {
	h := newQueueHarness()
	now := time.Now()
	h.queue.now = func() time.Time { return now }

	p := delayedPingAt(now.Add(5 * time.Minute))
	assert.True(t, h.queue.Enqueue(p))

	// Nothing shows until the response window closes.
	assert.Equal(t, StateIdle, h.queue.State())
	assert.Equal(t, 1, h.queue.DelayedCount())
	assert.Empty(t, h.events)

	h.fireNext(t)
	assert.Equal(t, StateShowing, h.queue.State())
	assert.Equal(t, 0, h.queue.DelayedCount())
	require.Len(t, h.events, 1)
	assert.Equal(t, EventShow, h.events[0].Kind)
	assert.Equal(t, p, h.events[0].Ping)
}

func TestEnqueue_PastShowAtShowsImmediately(t *testing.T) {
	h := newQueueHarness()
	now := time.Now()
	h.queue.now = func() time.Time { return now }

	assert.True(t, h.queue.Enqueue(delayedPingAt(now.Add(-time.Minute))))
	assert.Equal(t, StateShowing, h.queue.State())
	assert.Equal(t, 0, h.queue.DelayedCount())
}

func TestEnqueue_HeldDuplicateDropped(t *testing.T) {
	h := newQueueHarness()
	now := time.Now()
	h.queue.now = func() time.Time { return now }

	p := delayedPingAt(now.Add(time.Minute))
	assert.True(t, h.queue.Enqueue(p))
	assert.False(t, h.queue.Enqueue(p), "held duplicate must be dropped")
}

func TestDoNotDisturb_CancelsHeldPings(t *testing.T) {
	h := newQueueHarness()
	now := time.Now()
	h.queue.now = func() time.Time { return now }

	h.queue.Enqueue(delayedPingAt(now.Add(time.Minute)))
	require.Len(t, h.scheduled, 1)
	stale := h.scheduled[0]

	h.queue.SetDoNotDisturb(true)
	assert.Equal(t, 0, h.queue.DelayedCount())

	// The cancelled hold timer fires anyway; nothing may show.
	stale()
	assert.Equal(t, StateIdle, h.queue.State())
	assert.Empty(t, h.events)
}

func TestRemove_DropsHeldPing(t *testing.T) {
	h := newQueueHarness()
	now := time.Now()
	h.queue.now = func() time.Time { return now }

	p := delayedPingAt(now.Add(time.Minute))
	h.queue.Enqueue(p)
	stale := h.scheduled[0]

	h.queue.Remove(p)
	assert.Equal(t, 0, h.queue.DelayedCount())

	stale()
	assert.Equal(t, StateIdle, h.queue.State())
	assert.Empty(t, h.events)
}

func TestStop_DropsEverything(t *testing.T) {
	h := newQueueHarness()
	h.queue.Enqueue(ping("nearby_request"))
	h.queue.Enqueue(ping("nearby_request"))

	h.queue.Stop()

	assert.Equal(t, StateIdle, h.queue.State())
	assert.Equal(t, 0, h.queue.PendingCount())
	assert.False(t, h.queue.Enqueue(ping("nearby_request")))
}
