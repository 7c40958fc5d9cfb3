package scheduler

import "container/heap"

// scheduleHeap implements container/heap.Interface for Event,
// sorted by TriggerAt (earliest first, min-heap).
type scheduleHeap []Event

func (h scheduleHeap) Len() int           { return len(h) }
func (h scheduleHeap) Less(i, j int) bool { return h[i].TriggerAt.Before(h[j].TriggerAt) }
func (h scheduleHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *scheduleHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *scheduleHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// heapPush adds an Event to the heap, maintaining heap invariant.
func heapPush(h *scheduleHeap, e Event) {
	heap.Push(h, e)
}

// heapPop removes and returns the Event with the earliest TriggerAt.
// Panics if the heap is empty.
func heapPop(h *scheduleHeap) Event {
	return heap.Pop(h).(Event)
}

// heapRemoveByID removes the Event of jobID.
// Returns true if the event was found and removed, false otherwise.
func heapRemoveByID(h *scheduleHeap, jobID string) bool {
	for i, e := range *h {
		if e.JobID == jobID {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}
