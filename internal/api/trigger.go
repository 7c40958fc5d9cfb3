package api

import (
	"github.com/warpdl/warpcrawl/common"
	"github.com/warpdl/warpcrawl/internal/scheduler"
)

// TriggerFromParams converts the wire form of a trigger. Validation
// happens when the job is added.
func TriggerFromParams(p common.TriggerParams) scheduler.Trigger {
	t := scheduler.Trigger{Kind: p.Type}
	switch p.Type {
	case scheduler.KindDate:
		if p.RunDate != nil {
			t.RunAt = *p.RunDate
		}
	case scheduler.KindInterval:
		t.Every = p.Interval()
		if p.StartTime != nil {
			t.StartAt = *p.StartTime
		}
		if p.EndTime != nil {
			t.EndAt = *p.EndTime
		}
	case scheduler.KindCron:
		t.Expr = p.Expression
	}
	return t
}
