package common

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTriggerParamsInterval(t *testing.T) {
	tests := []struct {
		p    TriggerParams
		want time.Duration
	}{
		{TriggerParams{Seconds: 30}, 30 * time.Second},
		{TriggerParams{Hours: 1, Minutes: 30}, 90 * time.Minute},
		{TriggerParams{Days: 0.5}, 12 * time.Hour},
		{TriggerParams{Weeks: 1}, 7 * 24 * time.Hour},
		{TriggerParams{}, 0},
	}
	for _, tt := range tests {
		if got := tt.p.Interval(); got != tt.want {
			t.Errorf("Interval(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestJobAddParamsDecode(t *testing.T) {
	raw := `{"spider":{"name":"vol.moe","proxy":"http://127.0.0.1:8080"},"trigger":{"type":"cron","expression":"0 2 * * *"}}`
	var p JobAddParams
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Spider.Name != "vol.moe" || p.Spider.Proxy != "http://127.0.0.1:8080" {
		t.Fatalf("spider = %+v", p.Spider)
	}
	if p.Trigger.Type != "cron" || p.Trigger.Expression != "0 2 * * *" || p.Trigger.RunDate != nil {
		t.Fatalf("trigger = %+v", p.Trigger)
	}
}
