package core

import (
	"container/heap"
	"time"
)

// NoKey tags an action that does not belong to a particular cell.
const NoKey = -1

// Scheduler queues fire-and-forget actions against a virtual clock. Actions
// cannot be cancelled once scheduled.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	queue actionQueue
	keyed map[int]int
}

type action struct {
	due time.Duration
	seq uint64
	key int
	fn  func()
}

// NewScheduler returns an empty scheduler at clock zero.
func NewScheduler() *Scheduler {
	return &Scheduler{keyed: map[int]int{}}
}

// Now reports the virtual clock. While an action runs it reports the action's
// due time.
func (s *Scheduler) Now() time.Duration { return s.now }

// After schedules fn to run once d has elapsed on the virtual clock.
func (s *Scheduler) After(d time.Duration, fn func()) {
	s.AfterFor(NoKey, d, fn)
}

// AfterFor is After with the action tagged by key, usually a cell index.
func (s *Scheduler) AfterFor(key int, d time.Duration, fn func()) {
	if fn == nil {
		return
	}
	if d < 0 {
		d = 0
	}
	s.seq++
	heap.Push(&s.queue, &action{due: s.now + d, seq: s.seq, key: key, fn: fn})
	if key != NoKey {
		s.keyed[key]++
	}
}

// Advance moves the clock forward by dt and runs every action that falls due,
// including actions scheduled by other actions within the window.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	target := s.now + dt
	for s.queue.Len() > 0 && s.queue[0].due <= target {
		next := heap.Pop(&s.queue).(*action)
		if next.key != NoKey {
			if s.keyed[next.key]--; s.keyed[next.key] <= 0 {
				delete(s.keyed, next.key)
			}
		}
		s.now = next.due
		next.fn()
	}
	s.now = target
}

// Pending returns the number of queued actions.
func (s *Scheduler) Pending() int { return s.queue.Len() }

// PendingFor returns the number of queued actions tagged with key.
func (s *Scheduler) PendingFor(key int) int { return s.keyed[key] }

// NextDue reports the due time of the earliest queued action.
func (s *Scheduler) NextDue() (time.Duration, bool) {
	if s.queue.Len() == 0 {
		return 0, false
	}
	return s.queue[0].due, true
}

// Clear drops every queued action and rewinds the clock to zero.
func (s *Scheduler) Clear() {
	s.queue = nil
	s.keyed = map[int]int{}
	s.now = 0
}

type actionQueue []*action

func (q actionQueue) Len() int { return len(q) }

func (q actionQueue) Less(i, j int) bool {
	if q[i].due == q[j].due {
		return q[i].seq < q[j].seq
	}
	return q[i].due < q[j].due
}

func (q actionQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *actionQueue) Push(x any) { *q = append(*q, x.(*action)) }

func (q *actionQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
