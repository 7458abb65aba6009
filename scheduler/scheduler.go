package scheduler

import (
	"container/heap"
	"fmt"
)

// Scheduler is a single-threaded, cooperative priority queue of events.
// Events run to completion without preemption; the only suspension point in
// a simulation loop built on top of it is a call to Pop.
type Scheduler struct {
	heap        eventHeap
	currentTime float64
	nextSeq     int64
	popped      int64 // total events popped, for coordinator summaries
}

// New returns an empty Scheduler with current simulated time 0.
func New() *Scheduler {
	return &Scheduler{heap: make(eventHeap, 0, 64)}
}

// Schedule enqueues an event to fire at the given simulated time. O(log n).
// Panics if when is earlier than the current simulated time: that would be
// a programming error (an internal invariant violation), not a domain error.
func (s *Scheduler) Schedule(kind Kind, when float64, payload any) {
	if when < s.currentTime {
		panic(fmt.Sprintf("scheduler: refusing to schedule %s event at %.6f before current time %.6f", kind, when, s.currentTime))
	}
	ev := Event{Kind: kind, When: when, seq: s.nextSeq, Payload: payload}
	s.nextSeq++
	heap.Push(&s.heap, ev)
}

// Pop removes and returns the earliest pending event, advancing the
// scheduler's current simulated time to its timestamp. The second return
// value is false when the queue is empty.
func (s *Scheduler) Pop() (Event, bool) {
	if s.heap.Len() == 0 {
		return Event{}, false
	}
	ev := heap.Pop(&s.heap).(Event)
	s.currentTime = ev.When
	s.popped++
	return ev, true
}

// Len reports the number of pending events.
func (s *Scheduler) Len() int { return s.heap.Len() }

// CurrentTime returns the simulated time of the most recently popped event
// (0 before the first Pop).
func (s *Scheduler) CurrentTime() float64 { return s.currentTime }

// Drop removes every pending event for which keep returns false. Used by the
// coordinator to discard in-flight events once a termination predicate has
// fired, per spec's "in-flight scheduled events past termination are
// dropped."
func (s *Scheduler) Drop(keep func(Event) bool) {
	filtered := make(eventHeap, 0, len(s.heap))
	for _, ev := range s.heap {
		if keep(ev) {
			filtered = append(filtered, ev)
		}
	}
	heap.Init(&filtered)
	s.heap = filtered
}

// Stats reports how many events have been popped so far.
func (s *Scheduler) Stats() (popped int64, pending int) {
	return s.popped, s.heap.Len()
}

// Snapshot captures the pending queue and sequence counter for
// checkpointing. The caller owns the returned slice.
func (s *Scheduler) Snapshot() (events []Event, nextSeq int64, currentTime float64) {
	out := make([]Event, len(s.heap))
	copy(out, s.heap)
	return out, s.nextSeq, s.currentTime
}

// Restore rebuilds the scheduler from a prior Snapshot. Deterministic
// resume requires that callers re-derive any events whose Payload cannot be
// serialized verbatim (see storage.SimulationState) before calling Restore.
func Restore(events []Event, nextSeq int64, currentTime float64) *Scheduler {
	s := New()
	s.heap = append(eventHeap(nil), events...)
	heap.Init(&s.heap)
	s.nextSeq = nextSeq
	s.currentTime = currentTime
	return s
}
