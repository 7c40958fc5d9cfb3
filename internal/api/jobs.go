package api

import (
	"fmt"
	"sort"
	"time"

	"github.com/warpdl/warpcrawl/internal/crawler"
	"github.com/warpdl/warpcrawl/internal/scheduler"
)

const triggerNow = "now"

type job struct {
	id      string
	spider  string
	proxy   string
	trigger string
	// done is set once no further run will be started.
	done    bool
	running int
}

// Job is a snapshot of a job. NextRunAt is zero when nothing is queued.
type Job struct {
	ID        string
	Spider    string
	Proxy     string
	Trigger   string
	NextRunAt time.Time
	Running   bool
}

// RunSpider starts spider immediately and returns the job id. Failures of
// the run are only logged.
func (a *Api) RunSpider(spider, proxy string) (string, error) {
	if err := a.validate(spider, proxy); err != nil {
		return "", err
	}
	j := &job{id: a.newID(), spider: spider, proxy: proxy, trigger: triggerNow, done: true, running: 1}
	a.mu.Lock()
	a.jobs[j.id] = j
	a.mu.Unlock()
	a.launch(j)
	return j.id, nil
}

// AddJob schedules spider with trigger t.
func (a *Api) AddJob(spider, proxy string, t scheduler.Trigger) (string, error) {
	if err := a.validate(spider, proxy); err != nil {
		return "", err
	}
	id := a.newID()
	ev, err := t.Event(id, a.now())
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	a.jobs[id] = &job{id: id, spider: spider, proxy: proxy, trigger: t.String()}
	a.mu.Unlock()
	a.sched.Add(ev)
	a.log.Info("job %s: %s scheduled %s, first run %s", id, spider, t, ev.TriggerAt.Format(time.RFC3339))
	return id, nil
}

// RemoveJob unschedules a job. A run already in progress finishes.
func (a *Api) RemoveJob(id string) error {
	a.mu.Lock()
	_, ok := a.jobs[id]
	delete(a.jobs, id)
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	a.sched.Remove(id)
	a.log.Info("job %s removed", id)
	return nil
}

// ListJobs returns the queued and running jobs ordered by next run time.
func (a *Api) ListJobs() []Job {
	next := make(map[string]time.Time)
	for _, ev := range a.sched.Pending() {
		next[ev.JobID] = ev.TriggerAt
	}
	a.mu.Lock()
	var out []Job
	for _, j := range a.jobs {
		at := next[j.id]
		out = append(out, Job{
			ID:        j.id,
			Spider:    j.spider,
			Proxy:     j.proxy,
			Trigger:   j.trigger,
			NextRunAt: at,
			Running:   j.running > 0,
		})
	}
	a.mu.Unlock()
	sort.Slice(out, func(i, k int) bool {
		if !out[i].NextRunAt.Equal(out[k].NextRunAt) {
			return out[i].NextRunAt.Before(out[k].NextRunAt)
		}
		return out[i].ID < out[k].ID
	})
	return out
}

// onTrigger runs on the scheduler goroutine and must not block. A firing
// is skipped while the previous run of the same job is still going.
func (a *Api) onTrigger(ev scheduler.Event) {
	a.mu.Lock()
	j, ok := a.jobs[ev.JobID]
	if !ok {
		a.mu.Unlock()
		return
	}
	busy := j.running > 0
	if ev.Final {
		j.done = true
	}
	if !busy {
		j.running++
	}
	a.mu.Unlock()
	if busy {
		a.log.Warning("job %s: %s is still running, skipped the run due at %s",
			j.id, j.spider, ev.TriggerAt.Format(time.RFC3339))
		return
	}
	a.launch(j)
}

// launch runs j on its own goroutine. The caller has counted the run in
// j.running.
func (a *Api) launch(j *job) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.finish(j)
		a.execute(j.id, j.spider, j.proxy)
	}()
}

func (a *Api) finish(j *job) {
	a.mu.Lock()
	defer a.mu.Unlock()
	j.running--
	if j.done && j.running == 0 {
		delete(a.jobs, j.id)
	}
}

// execute runs one crawl while holding the spider's site lock.
func (a *Api) execute(id, spider, proxy string) {
	lock := a.siteLock(spider)
	lock.Lock()
	defer lock.Unlock()
	if a.ctx.Err() != nil {
		return
	}

	opts := a.base
	if proxy != "" {
		opts.Proxy = proxy
	}
	c, err := a.registry.New(spider, opts)
	if err != nil {
		a.log.Error("job %s: %s: %v", id, spider, err)
		return
	}
	a.log.Info("job %s: %s started", id, spider)
	report, err := c.Run(a.ctx)
	if err != nil {
		a.log.Error("job %s: %s: %v", id, spider, err)
	}
	if report != nil {
		a.logReport(id, report)
	}
}

func (a *Api) logReport(id string, r *crawler.Report) {
	var failed int
	for _, item := range r.Items {
		if item.Err != nil {
			failed++
		}
	}
	results := r.Results()
	a.log.Info("job %s: %s done in %s: %d item(s), %d task(s), %d item error(s)",
		id, r.Spider, r.Finished.Sub(r.Started).Round(time.Millisecond), len(r.Items), len(results), failed)
}
