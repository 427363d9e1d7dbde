package core

import (
	"context"
	"sync"

	"github.com/valter-silva-au/skillpulse/pkg/models"
)

// StateCell holds a value that changes only through Update. Updates are
// applied one at a time in the order they arrive, and every subscriber is
// handed the resulting snapshot.
type StateCell[S any] struct {
	mu    sync.Mutex
	state S
	subs  map[int]chan S
	next  int
}

// NewStateCell creates a StateCell holding initial.
func NewStateCell[S any](initial S) *StateCell[S] {
	return &StateCell[S]{state: initial, subs: make(map[int]chan S)}
}

// Value returns the current snapshot.
func (c *StateCell[S]) Value() S {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Update replaces the state with fn's result and returns it. fn runs while
// the cell is locked and must not call back into the cell.
func (c *StateCell[S]) Update(fn func(S) S) S {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = fn(c.state)
	for _, ch := range c.subs {
		publish(ch, c.state)
	}
	return c.state
}

// Subscribe returns a channel that receives the current snapshot followed
// by every later one. A subscriber that falls behind only sees the newest
// snapshot. cancel closes the channel.
func (c *StateCell[S]) Subscribe() (<-chan S, func()) {
	c.mu.Lock()
	id := c.next
	c.next++
	ch := make(chan S, 1)
	ch <- c.state
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// publish replaces any unread snapshot in ch with s. Only the cell sends on
// ch, under its lock, so the send never blocks.
func publish[S any](ch chan S, s S) {
	select {
	case <-ch:
	default:
	}
	ch <- s
}

// EventQueue carries one-shot UI events. Events sent after Close are
// dropped.
type EventQueue struct {
	ch   chan models.UiEvent
	done chan struct{}
	once sync.Once
}

// NewEventQueue creates an EventQueue with room for buffer pending events.
func NewEventQueue(buffer int) *EventQueue {
	return &EventQueue{
		ch:   make(chan models.UiEvent, buffer),
		done: make(chan struct{}),
	}
}

// Send queues e, blocking while the buffer is full. It returns false when
// the queue was closed before e could be queued.
func (q *EventQueue) Send(e models.UiEvent) bool {
	select {
	case <-q.done:
		return false
	default:
	}
	select {
	case q.ch <- e:
		return true
	case <-q.done:
		return false
	}
}

// Events returns the receive side of the queue.
func (q *EventQueue) Events() <-chan models.UiEvent {
	return q.ch
}

// Done is closed once the queue is closed.
func (q *EventQueue) Done() <-chan struct{} {
	return q.done
}

// Close stops the queue from accepting events.
func (q *EventQueue) Close() {
	q.once.Do(func() { close(q.done) })
}

// screen is the plumbing shared by every state module: the state cell, the
// event queue, and tracking of in-flight adapter calls.
type screen[S any] struct {
	cell   *StateCell[S]
	events *EventQueue
	wg     sync.WaitGroup
	logger EventLogger
}

func newScreen[S any](initial S, logger EventLogger) *screen[S] {
	return &screen[S]{
		cell:   NewStateCell(initial),
		events: NewEventQueue(16),
		logger: logger,
	}
}

// State returns the current state snapshot.
func (s *screen[S]) State() S {
	return s.cell.Value()
}

// Subscribe returns a channel of state snapshots and its cancel function.
func (s *screen[S]) Subscribe() (<-chan S, func()) {
	return s.cell.Subscribe()
}

// Events returns the module's one-shot event channel.
func (s *screen[S]) Events() <-chan models.UiEvent {
	return s.events.Events()
}

// Wait blocks until every adapter call started so far has been applied.
func (s *screen[S]) Wait() {
	s.wg.Wait()
}

// Close stops event delivery. Calls already in flight still complete and
// update the state.
func (s *screen[S]) Close() {
	s.events.Close()
}

func (s *screen[S]) update(fn func(S) S) S {
	return s.cell.Update(fn)
}

func (s *screen[S]) emit(e models.UiEvent) {
	s.events.Send(e)
}

// launch runs fn on its own goroutine. Calls are not cancelled when the
// screen is closed.
func (s *screen[S]) launch(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(context.Background())
	}()
}

func (s *screen[S]) logEvent(eventType string, data map[string]any) {
	if s.logger != nil {
		_ = s.logger.LogEvent(eventType, data)
	}
}
