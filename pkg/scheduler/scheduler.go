// Package scheduler runs tasks on the server's main cooperative thread in
// game ticks.
package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TickDuration is one game tick at 20 ticks per second.
const TickDuration = 50 * time.Millisecond

// Task is a scheduled function.
type Task struct {
	fn        func()
	due       uint64
	period    uint64
	seq       uint64
	index     int
	cancelled atomic.Bool
}

// Cancel stops the task from running again. A task already running finishes.
func (t *Task) Cancel() { t.cancelled.Store(true) }

// Cancelled reports whether Cancel was called.
func (t *Task) Cancelled() bool { return t.cancelled.Load() }

// Scheduler holds pending tasks. Tasks run only inside Tick, on the goroutine
// that calls it.
type Scheduler struct {
	log *zap.Logger

	mu    sync.Mutex
	tick  uint64
	seq   uint64
	queue taskQueue
}

// New creates a scheduler at tick zero.
func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{log: log.Named("scheduler")}
}

// Schedule runs fn after at least delayTicks ticks, then every delayTicks
// ticks if repeat is set. A delay below one tick runs fn on the next tick.
func (s *Scheduler) Schedule(delayTicks int, repeat bool, fn func()) *Task {
	delay := uint64(1)
	if delayTicks > 1 {
		delay = uint64(delayTicks)
	}
	t := &Task{fn: fn}
	if repeat {
		t.period = delay
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t.due = s.tick + delay
	s.push(t)
	return t
}

// ScheduleOnce runs fn once after d, rounded up to whole ticks.
func (s *Scheduler) ScheduleOnce(d time.Duration, fn func()) *Task {
	ticks := int((d + TickDuration - 1) / TickDuration)
	return s.Schedule(ticks, false, fn)
}

// Post runs fn on the next tick.
func (s *Scheduler) Post(fn func()) *Task {
	return s.Schedule(0, false, fn)
}

func (s *Scheduler) push(t *Task) {
	s.seq++
	t.seq = s.seq
	heap.Push(&s.queue, t)
}

// CurrentTick returns the number of completed ticks.
func (s *Scheduler) CurrentTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Pending returns the number of queued tasks, cancelled ones included.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Tick advances one tick and runs every due task in due order. Tasks
// scheduled while ticking run on a later tick.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	s.tick++
	now := s.tick
	var due []*Task
	for s.queue.Len() > 0 && s.queue[0].due <= now {
		due = append(due, heap.Pop(&s.queue).(*Task))
	}
	s.mu.Unlock()

	for _, t := range due {
		if t.Cancelled() {
			continue
		}
		s.run(t)
		if t.period > 0 && !t.Cancelled() {
			s.mu.Lock()
			t.due = now + t.period
			s.push(t)
			s.mu.Unlock()
		}
	}
}

func (s *Scheduler) run(t *Task) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("task panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	t.fn()
}

// Run ticks every TickDuration until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick()
		}
	}
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*Task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
