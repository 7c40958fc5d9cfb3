package scheduler

import "time"

// Event represents a pending job firing in the scheduler heap.
type Event struct {
	// JobID identifies the job to run when TriggerAt is reached.
	JobID string
	// TriggerAt is the wall-clock time of the next firing.
	TriggerAt time.Time
	// Cron is the cron expression of recurring cron jobs.
	Cron string
	// Every is the period of interval jobs.
	Every time.Duration
	// EndAt bounds interval jobs; zero means no end.
	EndAt time.Time
	// Final is set on a fired event when no firing of the job follows.
	Final bool
}

// Recurring reports whether the event re-arms after firing.
func (e Event) Recurring() bool {
	return e.Cron != "" || e.Every > 0
}

// next returns the firing that follows e, or false when e was the last one.
func (e Event) next(now time.Time) (Event, bool) {
	switch {
	case e.Cron != "":
		t, err := nextCronOccurrence(e.Cron, now)
		if err != nil {
			return Event{}, false
		}
		e.TriggerAt = t
	case e.Every > 0:
		t := e.TriggerAt.Add(e.Every)
		for !t.After(now) {
			t = t.Add(e.Every)
		}
		if !e.EndAt.IsZero() && t.After(e.EndAt) {
			return Event{}, false
		}
		e.TriggerAt = t
	default:
		return Event{}, false
	}
	return e, true
}
