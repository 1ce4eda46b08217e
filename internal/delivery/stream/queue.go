// Package stream delivers realtime pings to connected clients over
// WebSocket. Each connection owns a pingQueue that sequences pings one at a
// time so the client UI never stacks overlays.
package stream

import (
	"sync"
	"time"

	"cravlr/internal/domain/service"

	"github.com/google/uuid"
)

// State is the display state of a connection's ping queue.
type State int

const (
	// StateIdle means nothing is showing and the queue is empty or waiting.
	StateIdle State = iota
	// StateShowing means a ping is visible and its response window is running.
	StateShowing
	// StateDismissing means the visible ping is settling before the next one.
	StateDismissing
)

// EventKind discriminates queue events sent to the client.
type EventKind string

const (
	// EventShow tells the client to surface a ping.
	EventShow EventKind = "show"
	// EventDismiss tells the client to take the visible ping down.
	EventDismiss EventKind = "dismiss"
)

// Event is one queue transition the client has to render.
type Event struct {
	Kind EventKind     `json:"event"`
	Ping *service.Ping `json:"ping,omitempty"`
}

const (
	// defaultShowDuration is how long a ping stays up before auto-dismissal
	// when the client never responds.
	defaultShowDuration = 8 * time.Second
	// defaultDismissDuration is the settle gap between consecutive pings.
	defaultDismissDuration = 300 * time.Millisecond
)

// QueueConfig tunes the queue's two timers. Zero values take the defaults; a
// negative ShowDuration disables auto-dismissal entirely.
type QueueConfig struct {
	ShowDuration    time.Duration
	DismissDuration time.Duration
}

// pingQueue sequences pings through idle -> showing -> dismissing -> idle.
// Every transition emits an Event through emit; emit must not block, so the
// hub backs it with a buffered channel.
type pingQueue struct {
	mu      sync.Mutex
	state   State
	active  *service.Ping
	pending []*service.Ping
	dnd     bool
	stopped bool

	// delayed holds pings whose ShowAt is still in the future, each with its
	// own timer. Presence in the map is what keeps a fired timer valid, so
	// deleting an entry cancels it.
	delayed map[pingKey]*delayedPing

	showDuration    time.Duration
	dismissDuration time.Duration
	emit            func(Event)

	// generation invalidates in-flight timers after a cancel; a timer fire
	// from a previous generation is stale and must be ignored.
	generation uint64
	timer      *time.Timer
	afterFunc  func(time.Duration, func()) *time.Timer
	now        func() time.Time
}

// pingKey is the identity a ping is deduplicated on.
type pingKey struct {
	id  uuid.UUID
	typ string
}

type delayedPing struct {
	ping  *service.Ping
	timer *time.Timer
}

func keyOf(ping *service.Ping) pingKey {
	return pingKey{id: ping.ID, typ: ping.Type}
}

func newPingQueue(cfg QueueConfig, emit func(Event)) *pingQueue {
	showDuration := cfg.ShowDuration
	if showDuration == 0 {
		showDuration = defaultShowDuration
	}

	dismissDuration := cfg.DismissDuration
	if dismissDuration == 0 {
		dismissDuration = defaultDismissDuration
	}

	return &pingQueue{
		delayed:         make(map[pingKey]*delayedPing),
		showDuration:    showDuration,
		dismissDuration: dismissDuration,
		emit:            emit,
		afterFunc:       time.AfterFunc,
		now:             time.Now,
	}
}

// Enqueue adds a ping for display. A ping whose ShowAt is still in the future
// is held back on its own cancellable timer until the response window closes.
// It reports false when the ping was dropped: the user is in do-not-disturb,
// the queue is stopped, or the same ID and type is already visible, waiting,
// or held.
func (q *pingQueue) Enqueue(ping *service.Ping) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped || q.dnd || ping == nil {
		return false
	}
	if q.isDuplicateLocked(ping) {
		return false
	}

	if delay := ping.ShowAt.Sub(q.now()); !ping.ShowAt.IsZero() && delay > 0 {
		q.holdLocked(ping, delay)

		return true
	}

	q.admitLocked(ping)

	return true
}

// holdLocked parks a ping until its ShowAt passes. The fired timer re-checks
// that the entry is still held, so releasing or clearing it cancels the show.
func (q *pingQueue) holdLocked(ping *service.Ping, delay time.Duration) {
	key := keyOf(ping)
	held := &delayedPing{ping: ping}
	held.timer = q.afterFunc(delay, func() {
		q.mu.Lock()
		defer q.mu.Unlock()

		if q.delayed[key] != held || q.stopped || q.dnd {
			return
		}
		delete(q.delayed, key)
		q.admitLocked(ping)
	})
	q.delayed[key] = held
}

func (q *pingQueue) admitLocked(ping *service.Ping) {
	if q.state == StateIdle {
		q.showLocked(ping)

		return
	}

	q.pending = append(q.pending, ping)
}

// Dismiss takes the visible ping down and, after the settle gap, shows the
// next pending one. It is a no-op outside of StateShowing.
func (q *pingQueue) Dismiss() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dismissLocked()
}

// Remove drops a ping wherever it is: pending pings disappear silently and a
// visible match is dismissed. Used when a request closes before the
// recommender reacts.
func (q *pingQueue) Remove(ping *service.Ping) {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.pending[:0]
	for _, p := range q.pending {
		if p.ID != ping.ID || p.Type != ping.Type {
			kept = append(kept, p)
		}
	}
	q.pending = kept

	if held, ok := q.delayed[keyOf(ping)]; ok {
		held.timer.Stop()
		delete(q.delayed, keyOf(ping))
	}

	if q.state == StateShowing && q.active != nil && q.active.ID == ping.ID && q.active.Type == ping.Type {
		q.dismissLocked()
	}
}

// SetDoNotDisturb toggles do-not-disturb. Turning it on clears the visible
// ping and everything queued behind it.
func (q *pingQueue) SetDoNotDisturb(on bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.dnd = on
	if !on {
		return
	}

	q.cancelTimerLocked()
	q.clearDelayedLocked()
	q.pending = nil
	if q.active != nil {
		q.emit(Event{Kind: EventDismiss, Ping: q.active})
		q.active = nil
	}
	q.state = StateIdle
}

// Stop cancels timers and drops everything. The queue stays unusable; it is
// called once when the connection closes.
func (q *pingQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	q.cancelTimerLocked()
	q.clearDelayedLocked()
	q.pending = nil
	q.active = nil
	q.state = StateIdle
}

// State returns the current display state.
func (q *pingQueue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.state
}

// Active returns the visible ping, if any.
func (q *pingQueue) Active() *service.Ping {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.active
}

// PendingCount returns how many pings wait behind the visible one.
func (q *pingQueue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.pending)
}

// DelayedCount returns how many pings are held back on their ShowAt timers.
func (q *pingQueue) DelayedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.delayed)
}

func (q *pingQueue) isDuplicateLocked(ping *service.Ping) bool {
	if q.active != nil && q.active.ID == ping.ID && q.active.Type == ping.Type {
		return true
	}
	for _, p := range q.pending {
		if p.ID == ping.ID && p.Type == ping.Type {
			return true
		}
	}
	if _, held := q.delayed[keyOf(ping)]; held {
		return true
	}

	return false
}

func (q *pingQueue) showLocked(ping *service.Ping) {
	q.state = StateShowing
	q.active = ping
	q.emit(Event{Kind: EventShow, Ping: ping})

	if q.showDuration < 0 {
		return
	}
	q.startTimerLocked(q.showDuration, func() { q.dismissLocked() })
}

func (q *pingQueue) dismissLocked() {
	if q.state != StateShowing || q.active == nil {
		return
	}

	q.cancelTimerLocked()
	q.state = StateDismissing
	q.emit(Event{Kind: EventDismiss, Ping: q.active})
	q.active = nil

	q.startTimerLocked(q.dismissDuration, func() { q.settleLocked() })
}

func (q *pingQueue) settleLocked() {
	if q.state != StateDismissing {
		return
	}

	q.state = StateIdle
	if len(q.pending) == 0 {
		return
	}

	next := q.pending[0]
	q.pending = q.pending[1:]
	q.showLocked(next)
}

// startTimerLocked schedules fn under the queue lock after d, guarded by the
// current generation so a cancelled timer that already fired does nothing.
func (q *pingQueue) startTimerLocked(d time.Duration, fn func()) {
	q.cancelTimerLocked()

	gen := q.generation
	q.timer = q.afterFunc(d, func() {
		q.mu.Lock()
		defer q.mu.Unlock()

		if q.generation != gen || q.stopped {
			return
		}
		fn()
	})
}

func (q *pingQueue) clearDelayedLocked() {
	for key, held := range q.delayed {
		held.timer.Stop()
		delete(q.delayed, key)
	}
}

func (q *pingQueue) cancelTimerLocked() {
	q.generation++
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}
