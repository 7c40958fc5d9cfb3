package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adhocore/gronx"
)

// Trigger kinds.
const (
	KindDate     = "date"
	KindInterval = "interval"
	KindCron     = "cron"
)

var (
	ErrUnknownTrigger  = errors.New("unknown trigger kind")
	ErrDateInPast      = errors.New("run date is in the past")
	ErrInvalidInterval = errors.New("interval must be positive")
	ErrEndBeforeStart  = errors.New("end time is before the first run")
	ErrInvalidCron     = errors.New("invalid cron expression")
)

// Trigger describes when a job runs.
type Trigger struct {
	Kind string
	// RunAt is the single firing of a date trigger.
	RunAt time.Time
	// Every, StartAt and EndAt describe an interval trigger. A zero StartAt
	// means now.
	Every   time.Duration
	StartAt time.Time
	EndAt   time.Time
	// Expr is a 5-field cron expression.
	Expr string
}

// Event validates t and returns the first firing of jobID after now.
func (t Trigger) Event(jobID string, now time.Time) (Event, error) {
	ev := Event{JobID: jobID}
	switch t.Kind {
	case KindDate:
		if t.RunAt.Before(now) {
			return ev, fmt.Errorf("%w: %s", ErrDateInPast, t.RunAt.Format(time.RFC3339))
		}
		ev.TriggerAt = t.RunAt
	case KindInterval:
		if t.Every <= 0 {
			return ev, ErrInvalidInterval
		}
		start := t.StartAt
		if start.IsZero() {
			start = now
		}
		first := start.Add(t.Every)
		for first.Before(now) {
			first = first.Add(t.Every)
		}
		if !t.EndAt.IsZero() && t.EndAt.Before(first) {
			return ev, ErrEndBeforeStart
		}
		ev.TriggerAt, ev.Every, ev.EndAt = first, t.Every, t.EndAt
	case KindCron:
		expr := strings.Join(strings.Fields(t.Expr), " ")
		if err := ValidateCron(expr, now); err != nil {
			return ev, err
		}
		next, err := nextCronOccurrence(expr, now)
		if err != nil {
			return ev, fmt.Errorf("%w: %v", ErrInvalidCron, err)
		}
		ev.TriggerAt, ev.Cron = next, expr
	default:
		return ev, fmt.Errorf("%w: %q", ErrUnknownTrigger, t.Kind)
	}
	return ev, nil
}

func (t Trigger) String() string {
	switch t.Kind {
	case KindDate:
		return "date[" + t.RunAt.Format(time.RFC3339) + "]"
	case KindInterval:
		s := "interval[" + t.Every.String()
		if !t.EndAt.IsZero() {
			s += " until " + t.EndAt.Format(time.RFC3339)
		}
		return s + "]"
	case KindCron:
		return "cron[" + t.Expr + "]"
	}
	return t.Kind
}

// ValidateCron accepts 5-field expressions that fire at least once within
// a year of now.
func ValidateCron(expr string, now time.Time) error {
	if len(strings.Fields(expr)) != 5 || !gronx.IsValid(expr) {
		return fmt.Errorf("%w: %q", ErrInvalidCron, expr)
	}
	if !hasOccurrenceWithinYear(expr, now) {
		return fmt.Errorf("%w: %q never fires", ErrInvalidCron, expr)
	}
	return nil
}

// nextCronOccurrence returns the next time the cron expression fires strictly
// after start. Uses gronx.NextTickAfter with inclRefTime=false.
func nextCronOccurrence(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}

// hasOccurrenceWithinYear checks if a cron expression has any occurrence
// within 1 year from the given time. Returns false for invalid expressions
// or if no occurrence exists within the 1-year window.
func hasOccurrenceWithinYear(expr string, from time.Time) bool {
	next, err := gronx.NextTickAfter(expr, from, false)
	if err != nil {
		return false
	}
	return next.Before(from.Add(365 * 24 * time.Hour))
}
