package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrEngineStopped      = errors.New("scheduler: engine stopped")
)

// DueEvent reminds the farmer that a plan task is due.
type DueEvent struct {
	ID        string
	PlotID    string
	TaskID    string
	Text      string
	TriggerAt time.Time
}

// EventID is the id used for the reminder of one plan task.
func EventID(plotID, taskID string) string {
	return plotID + "/" + taskID
}

// dueQueue is a min-heap on TriggerAt.
type dueQueue []DueEvent

func (q dueQueue) Len() int           { return len(q) }
func (q dueQueue) Less(i, j int) bool { return q[i].TriggerAt.Before(q[j].TriggerAt) }
func (q dueQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *dueQueue) Push(x any) { *q = append(*q, x.(DueEvent)) }

func (q *dueQueue) Pop() any {
	old := *q
	last := old[len(old)-1]
	*q = old[:len(old)-1]
	return last
}

// Engine fires queued reminders on C when their trigger time is reached.
// Events that find the channel full are counted as dropped.
type Engine struct {
	mu      sync.Mutex
	pending dueQueue
	running bool
	closed  bool

	events  chan DueEvent
	kick    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	dropped atomic.Uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		events: make(chan DueEvent, bufferSize),
		kick:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (e *Engine) C() <-chan DueEvent {
	return e.events
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running || e.closed {
		return
	}
	e.running = true
	go e.run()
}

// Stop ends the loop and closes C. Schedule fails afterwards.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	wasRunning := e.running
	close(e.quit)
	e.mu.Unlock()
	if wasRunning {
		<-e.done
	}
}

// Schedule queues ev, replacing any queued event with the same id. An empty
// id is derived from PlotID and TaskID.
func (e *Engine) Schedule(ev DueEvent) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}
	if ev.ID == "" {
		ev.ID = EventID(ev.PlotID, ev.TaskID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineStopped
	}
	e.dropWhere(func(q DueEvent) bool { return q.ID == ev.ID })
	heap.Push(&e.pending, ev)
	e.wake()
	return nil
}

// UnschedulePlot drops every queued event of the plot and reports how many
// were removed.
func (e *Engine) UnschedulePlot(plotID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.dropWhere(func(q DueEvent) bool { return q.PlotID == plotID })
	if n > 0 {
		e.wake()
	}
	return n
}

func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

func (e *Engine) Dropped() uint64 {
	return e.dropped.Load()
}

// dropWhere must be called with mu held.
func (e *Engine) dropWhere(match func(DueEvent) bool) int {
	kept := e.pending[:0]
	for _, ev := range e.pending {
		if !match(ev) {
			kept = append(kept, ev)
		}
	}
	removed := len(e.pending) - len(kept)
	if removed > 0 {
		clear(e.pending[len(kept):])
		e.pending = kept
		heap.Init(&e.pending)
	}
	return removed
}

func (e *Engine) wake() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

func (e *Engine) run() {
	defer close(e.done)
	defer close(e.events)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		var fire <-chan time.Time
		if at, ok := e.nextTrigger(); ok {
			timer.Reset(max(time.Until(at), 0))
			fire = timer.C
		}

		select {
		case <-fire:
			e.deliver(e.takeDue(time.Now()))
		case <-e.kick:
			timer.Stop()
		case <-e.quit:
			return
		}
	}
}

// peek returns the earliest queued event without removing it.
func (e *Engine) peek() (DueEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pending) == 0 {
		return DueEvent{}, false
	}
	return e.pending[0], true
}

func (e *Engine) nextTrigger() (time.Time, bool) {
	next, ok := e.peek()
	return next.TriggerAt, ok
}

func (e *Engine) takeDue(now time.Time) []DueEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var due []DueEvent
	for len(e.pending) > 0 && !e.pending[0].TriggerAt.After(now) {
		due = append(due, heap.Pop(&e.pending).(DueEvent))
	}
	return due
}

func (e *Engine) deliver(due []DueEvent) {
	for _, ev := range due {
		select {
		case e.events <- ev:
		default:
			e.dropped.Add(1)
		}
	}
}
