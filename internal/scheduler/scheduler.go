package scheduler

import (
	"container/heap"
	"context"
	"sort"
	"time"
)

const maxSleepCap = 60 * time.Second

// Scheduler manages job events using a min-heap.
// It runs a background goroutine that sleeps until the next event's
// trigger time, then calls the onTrigger callback with the event.
type Scheduler struct {
	cmdChan chan command
	ctx     context.Context
}

// command is one request to the scheduler goroutine. A single channel keeps
// adds, removes and queries in submission order.
type command struct {
	add    *Event
	remove string
	reply  chan []Event
}

// New creates and starts a new Scheduler.
// The onTrigger callback is invoked on the scheduler goroutine when an
// event fires; it must not block. The goroutine exits when ctx is cancelled.
func New(ctx context.Context, onTrigger func(Event)) *Scheduler {
	s := &Scheduler{
		cmdChan: make(chan command, 64),
		ctx:     ctx,
	}
	go s.run(onTrigger)
	return s
}

// Add enqueues a new event.
func (s *Scheduler) Add(event Event) {
	s.send(command{add: &event})
}

// Remove cancels the pending event of jobID.
func (s *Scheduler) Remove(jobID string) {
	s.send(command{remove: jobID})
}

func (s *Scheduler) send(cmd command) bool {
	select {
	case s.cmdChan <- cmd:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// Pending returns the queued events ordered by trigger time. It returns
// nil once the scheduler has stopped.
func (s *Scheduler) Pending() []Event {
	if s.ctx.Err() != nil {
		return nil
	}
	reply := make(chan []Event, 1)
	if !s.send(command{reply: reply}) {
		return nil
	}
	select {
	case events := <-reply:
		return events
	case <-s.ctx.Done():
		return nil
	}
}

// run is the core scheduler goroutine implementing the active-object pattern.
// It maintains a min-heap of events and sleeps with a 60s max-sleep-cap.
// Recurring events are re-armed after firing.
func (s *Scheduler) run(onTrigger func(Event)) {
	h := &scheduleHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			// No events, block on channels
			return nil
		}
		next := (*h)[0].TriggerAt
		dur := time.Until(next)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case cmd := <-s.cmdChan:
			switch {
			case cmd.add != nil:
				heapRemoveByID(h, cmd.add.JobID)
				heapPush(h, *cmd.add)
			case cmd.reply != nil:
				events := make([]Event, h.Len())
				copy(events, *h)
				sort.Slice(events, func(i, j int) bool { return events[i].TriggerAt.Before(events[j].TriggerAt) })
				cmd.reply <- events
				continue
			default:
				heapRemoveByID(h, cmd.remove)
			}
			timerCh = resetTimer()

		case <-timerCh:
			// Fire all events whose time has arrived
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].TriggerAt.After(now) {
				event := heapPop(h)
				next, more := event.next(time.Now())
				event.Final = !more
				onTrigger(event)
				if more {
					heapPush(h, next)
				}
			}
			timerCh = resetTimer()
		}
	}
}
