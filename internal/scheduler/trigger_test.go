package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestTriggerEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		trigger Trigger
		want    time.Time
		wantErr error
	}{
		{"date", Trigger{Kind: KindDate, RunAt: now.Add(time.Hour)}, now.Add(time.Hour), nil},
		{"date in past", Trigger{Kind: KindDate, RunAt: now.Add(-time.Hour)}, time.Time{}, ErrDateInPast},
		{"interval from now", Trigger{Kind: KindInterval, Every: 10 * time.Minute}, now.Add(10 * time.Minute), nil},
		{"interval with old start", Trigger{Kind: KindInterval, Every: time.Hour, StartAt: now.Add(-90 * time.Minute)}, now.Add(30 * time.Minute), nil},
		{"interval with future start", Trigger{Kind: KindInterval, Every: time.Hour, StartAt: now.Add(time.Hour)}, now.Add(2 * time.Hour), nil},
		{"interval zero", Trigger{Kind: KindInterval}, time.Time{}, ErrInvalidInterval},
		{"interval ends early", Trigger{Kind: KindInterval, Every: time.Hour, EndAt: now.Add(time.Minute)}, time.Time{}, ErrEndBeforeStart},
		{"cron", Trigger{Kind: KindCron, Expr: "0  2 * * *"}, time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC), nil},
		{"cron six fields", Trigger{Kind: KindCron, Expr: "0 0 2 * * *"}, time.Time{}, ErrInvalidCron},
		{"cron garbage", Trigger{Kind: KindCron, Expr: "bad-expr"}, time.Time{}, ErrInvalidCron},
		{"unknown", Trigger{Kind: "weekly"}, time.Time{}, ErrUnknownTrigger},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := tt.trigger.Event("job", now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Event: %v", err)
			}
			if ev.JobID != "job" || !ev.TriggerAt.Equal(tt.want) {
				t.Fatalf("event = %+v, want trigger at %v", ev, tt.want)
			}
		})
	}
}

func TestTriggerEventCarriesRecurrence(t *testing.T) {
	now := time.Now()
	ev, err := Trigger{Kind: KindCron, Expr: "*/5 * * * *"}.Event("c", now)
	if err != nil || ev.Cron != "*/5 * * * *" || !ev.Recurring() {
		t.Fatalf("cron event = %+v, %v", ev, err)
	}
	end := now.Add(time.Hour)
	ev, err = Trigger{Kind: KindInterval, Every: time.Minute, EndAt: end}.Event("i", now)
	if err != nil || ev.Every != time.Minute || !ev.EndAt.Equal(end) || !ev.Recurring() {
		t.Fatalf("interval event = %+v, %v", ev, err)
	}
	ev, _ = Trigger{Kind: KindDate, RunAt: end}.Event("d", now)
	if ev.Recurring() {
		t.Fatal("date event must not recur")
	}
}

func TestTriggerString(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for tr, want := range map[Trigger]string{
		{Kind: KindDate, RunAt: at}:                       "date[2026-03-01T10:00:00Z]",
		{Kind: KindInterval, Every: time.Hour}:            "interval[1h0m0s]",
		{Kind: KindInterval, Every: time.Hour, EndAt: at}: "interval[1h0m0s until 2026-03-01T10:00:00Z]",
		{Kind: KindCron, Expr: "0 2 * * *"}:               "cron[0 2 * * *]",
	} {
		if got := tr.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestNextCronOccurrence_ValidExpr(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	next, err := nextCronOccurrence("0 2 * * *", now)
	if err != nil {
		t.Fatalf("expected no error: %v", err)
	}
	if next.Hour() != 2 || next.Minute() != 0 {
		t.Errorf("expected 02:00, got %v", next)
	}
}

func TestHasOccurrenceWithinYear(t *testing.T) {
	now := time.Now()
	if !hasOccurrenceWithinYear("0 2 * * *", now) {
		t.Error("expected daily cron to have occurrence in next year")
	}
	if hasOccurrenceWithinYear("bad-cron", now) {
		t.Error("invalid cron should return false")
	}
}
