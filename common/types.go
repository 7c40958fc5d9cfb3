package common

import "time"

// SpiderParams names a spider and the proxy of one run.
type SpiderParams struct {
	Name  string `json:"name"`
	Proxy string `json:"proxy,omitempty"`
}

// TriggerParams is the wire form of a job trigger. Type selects which
// fields apply: "date" uses RunDate, "interval" the durations with optional
// StartTime and EndTime, "cron" uses Expression.
type TriggerParams struct {
	Type       string     `json:"type"`
	RunDate    *time.Time `json:"run_date,omitempty"`
	Weeks      float64    `json:"weeks,omitempty"`
	Days       float64    `json:"days,omitempty"`
	Hours      float64    `json:"hours,omitempty"`
	Minutes    float64    `json:"minutes,omitempty"`
	Seconds    float64    `json:"seconds,omitempty"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Expression string     `json:"expression,omitempty"`
}

// Interval sums the duration fields.
func (t TriggerParams) Interval() time.Duration {
	const day = 24 * time.Hour
	return time.Duration(t.Weeks*float64(7*day) +
		t.Days*float64(day) +
		t.Hours*float64(time.Hour) +
		t.Minutes*float64(time.Minute) +
		t.Seconds*float64(time.Second))
}

type JobAddParams struct {
	Spider  SpiderParams  `json:"spider"`
	Trigger TriggerParams `json:"trigger"`
}

type JobIDParams struct {
	JobID string `json:"job_id"`
}

// JobIDResult is returned by spider.run and job.add.
type JobIDResult struct {
	JobID string `json:"job_id"`
}

type JobInfo struct {
	JobID       string     `json:"job_id"`
	Spider      string     `json:"spider"`
	Proxy       string     `json:"proxy,omitempty"`
	Trigger     string     `json:"trigger"`
	NextRunTime *time.Time `json:"next_run_time,omitempty"`
	Running     bool       `json:"running"`
}

type JobListResult struct {
	Jobs []JobInfo `json:"jobs"`
}

type SpiderListResult struct {
	Spiders []string `json:"spiders"`
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}
