// Package scheduler fires crawl jobs at their trigger times.
// It implements a single-goroutine scheduler using a min-heap of Events
// sorted by trigger time, with a 60-second max-sleep-cap to handle NTP steps,
// DST transitions, and system sleep (macOS monotonic clock pause).
//
// Three trigger kinds exist: date (fires once), interval (re-arms every
// period until an optional end time) and cron (re-arms at the next tick of
// a 5-field expression). The scheduler does not persist state; jobs live
// only as long as the process.
package scheduler
