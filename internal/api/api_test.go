package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/warpdl/warpcrawl/common"
	"github.com/warpdl/warpcrawl/internal/auth"
	"github.com/warpdl/warpcrawl/internal/crawler"
	"github.com/warpdl/warpcrawl/internal/scheduler"
	"github.com/warpdl/warpcrawl/pkg/credman"
	"github.com/warpdl/warpcrawl/pkg/logger"
	"github.com/warpdl/warpcrawl/pkg/warplib"
)

// funcPager runs fn for every page fetch and never calls the continuation,
// so each crawl ends after its follow-list request.
type funcPager func(ctx context.Context) error

func (f funcPager) Fetch(ctx context.Context, _ auth.Request, _ auth.Continuation) error {
	return f(ctx)
}

type nopEngine struct{}

func (nopEngine) Download(context.Context, warplib.DownloadTask, http.CookieJar) (warplib.Result, error) {
	return warplib.Result{}, nil
}

// registryWith registers one spider per name, each crawling with fn.
func registryWith(fn func(name string, opts crawler.Options) funcPager, names ...string) *crawler.Registry {
	r := crawler.NewRegistry()
	for _, name := range names {
		name := name
		r.Register(name, func(opts crawler.Options) (*crawler.Crawler, error) {
			spider := crawler.Spider{Name: name, StartURL: "https://example.com/" + name}
			return crawler.NewWithDeps(spider, "dl", credman.NewSession(nil, name), fn(name, opts), nopEngine{}, nil), nil
		})
	}
	return r
}

func newTestApi(t *testing.T, r *crawler.Registry, l logger.Logger) *Api {
	t.Helper()
	a := NewApi(context.Background(), Options{Registry: r, Logger: l})
	t.Cleanup(func() { a.Close() })
	return a
}

func TestRunSpiderValidates(t *testing.T) {
	a := newTestApi(t, registryWith(nil, "site"), nil)
	if _, err := a.RunSpider("nope", ""); !errors.Is(err, crawler.ErrUnknownSpider) {
		t.Fatalf("unknown spider: %v", err)
	}
	if _, err := a.RunSpider("site", "ftp://proxy:21"); !errors.Is(err, warplib.ErrUnsupportedScheme) {
		t.Fatalf("bad proxy: %v", err)
	}
}

func TestRunSpiderRunsOnceWithProxy(t *testing.T) {
	var runs int32
	var proxy atomic.Value
	r := registryWith(func(_ string, opts crawler.Options) funcPager {
		proxy.Store(opts.Proxy)
		return func(context.Context) error {
			atomic.AddInt32(&runs, 1)
			return nil
		}
	}, "site")
	a := newTestApi(t, r, nil)

	id, err := a.RunSpider("site", "socks5://127.0.0.1:1080")
	if err != nil || id == "" {
		t.Fatalf("RunSpider: %q %v", id, err)
	}
	a.Wait()
	if atomic.LoadInt32(&runs) != 1 {
		t.Fatalf("runs = %d", runs)
	}
	if proxy.Load() != "socks5://127.0.0.1:1080" {
		t.Fatalf("proxy = %v", proxy.Load())
	}
	if jobs := a.ListJobs(); len(jobs) != 0 {
		t.Fatalf("finished one-off run still listed: %+v", jobs)
	}
}

func TestSameSpiderRunsAreSerialised(t *testing.T) {
	var active, peak int32
	r := registryWith(func(string, crawler.Options) funcPager {
		return func(context.Context) error {
			n := atomic.AddInt32(&active, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(30 * time.Millisecond)
			atomic.AddInt32(&active, -1)
			return nil
		}
	}, "site")
	a := newTestApi(t, r, nil)
	for i := 0; i < 3; i++ {
		if _, err := a.RunSpider("site", ""); err != nil {
			t.Fatal(err)
		}
	}
	a.Wait()
	if peak != 1 {
		t.Fatalf("peak concurrency = %d", peak)
	}
}

func TestDifferentSpidersRunConcurrently(t *testing.T) {
	var arrived sync.WaitGroup
	arrived.Add(2)
	done := make(chan struct{})
	r := registryWith(func(string, crawler.Options) funcPager {
		return func(context.Context) error {
			arrived.Done()
			select {
			case <-done:
				return nil
			case <-time.After(2 * time.Second):
				return errors.New("timed out waiting for the other spider")
			}
		}
	}, "a", "b")
	l := logger.NewMockLogger()
	a := newTestApi(t, r, l)
	a.RunSpider("a", "")
	a.RunSpider("b", "")
	arrived.Wait()
	close(done)
	a.Wait()
	for _, e := range l.Errors() {
		if strings.Contains(e, "timed out") {
			t.Fatal(e)
		}
	}
}

func TestAddListRemoveJob(t *testing.T) {
	a := newTestApi(t, registryWith(nil, "site"), nil)
	id, err := a.AddJob("site", "", scheduler.Trigger{Kind: scheduler.KindCron, Expr: "0 2 * * *"})
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	jobs := a.ListJobs()
	if len(jobs) != 1 || jobs[0].ID != id || jobs[0].Trigger != "cron[0 2 * * *]" || jobs[0].NextRunAt.IsZero() || jobs[0].Running {
		t.Fatalf("jobs = %+v", jobs)
	}
	if err := a.RemoveJob(id); err != nil {
		t.Fatalf("RemoveJob: %v", err)
	}
	if jobs := a.ListJobs(); len(jobs) != 0 {
		t.Fatalf("jobs after remove = %+v", jobs)
	}
	if err := a.RemoveJob(id); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("second remove: %v", err)
	}
}

func TestAddJobRejectsInvalidTrigger(t *testing.T) {
	a := newTestApi(t, registryWith(nil, "site"), nil)
	tests := []struct {
		trigger scheduler.Trigger
		want    error
	}{
		{scheduler.Trigger{Kind: scheduler.KindCron, Expr: "nope"}, scheduler.ErrInvalidCron},
		{scheduler.Trigger{Kind: scheduler.KindInterval}, scheduler.ErrInvalidInterval},
		{scheduler.Trigger{Kind: scheduler.KindDate, RunAt: time.Now().Add(-time.Hour)}, scheduler.ErrDateInPast},
		{scheduler.Trigger{Kind: "weekly"}, scheduler.ErrUnknownTrigger},
	}
	for _, tt := range tests {
		if _, err := a.AddJob("site", "", tt.trigger); !errors.Is(err, tt.want) {
			t.Errorf("AddJob(%v) = %v, want %v", tt.trigger, err, tt.want)
		}
	}
	if len(a.ListJobs()) != 0 {
		t.Fatal("rejected jobs must not be listed")
	}
}

func TestIntervalJobRunsUntilEnd(t *testing.T) {
	var runs int32
	r := registryWith(func(string, crawler.Options) funcPager {
		return func(context.Context) error {
			atomic.AddInt32(&runs, 1)
			return nil
		}
	}, "site")
	a := newTestApi(t, r, nil)
	end := time.Now().Add(130 * time.Millisecond)
	if _, err := a.AddJob("site", "", scheduler.Trigger{Kind: scheduler.KindInterval, Every: 50 * time.Millisecond, EndAt: end}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	a.Wait()
	if n := atomic.LoadInt32(&runs); n != 2 {
		t.Fatalf("runs = %d, want 2", n)
	}
	if jobs := a.ListJobs(); len(jobs) != 0 {
		t.Fatalf("exhausted job still listed: %+v", jobs)
	}
}

func TestRunFailureIsLogged(t *testing.T) {
	r := crawler.NewRegistry()
	r.Register("site", func(crawler.Options) (*crawler.Crawler, error) {
		return nil, credman.ErrMissingCredentials
	})
	l := logger.NewMockLogger()
	a := newTestApi(t, r, l)
	if _, err := a.RunSpider("site", ""); err != nil {
		t.Fatal(err)
	}
	a.Wait()
	errs := l.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0], "missing site credentials") {
		t.Fatalf("errors = %v", errs)
	}
}

func TestCloseCancelsRunningJob(t *testing.T) {
	started := make(chan struct{})
	r := registryWith(func(string, crawler.Options) funcPager {
		return func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}
	}, "site")
	a := NewApi(context.Background(), Options{Registry: r})
	a.RunSpider("site", "")
	<-started
	a.Close()
	if _, err := a.RunSpider("site", ""); !errors.Is(err, ErrClosed) {
		t.Fatalf("RunSpider after Close: %v", err)
	}
}

func TestTriggerFromParams(t *testing.T) {
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		p    common.TriggerParams
		want scheduler.Trigger
	}{
		{common.TriggerParams{Type: "date", RunDate: &at}, scheduler.Trigger{Kind: "date", RunAt: at}},
		{common.TriggerParams{Type: "interval", Minutes: 5, EndTime: &at}, scheduler.Trigger{Kind: "interval", Every: 5 * time.Minute, EndAt: at}},
		{common.TriggerParams{Type: "cron", Expression: "*/5 * * * *"}, scheduler.Trigger{Kind: "cron", Expr: "*/5 * * * *"}},
		{common.TriggerParams{Type: "weekly"}, scheduler.Trigger{Kind: "weekly"}},
	}
	for _, tt := range tests {
		if got := TriggerFromParams(tt.p); got != tt.want {
			t.Errorf("TriggerFromParams(%+v) = %+v, want %+v", tt.p, got, tt.want)
		}
	}
}

func TestOverlappingFiringsAreSkipped(t *testing.T) {
	release := make(chan struct{})
	var runs int32
	r := registryWith(func(string, crawler.Options) funcPager {
		return func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		}
	}, "site")
	l := logger.NewMockLogger()
	a := newTestApi(t, r, l)
	id, err := a.AddJob("site", "", scheduler.Trigger{Kind: scheduler.KindInterval, Every: 20 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		a.mu.Lock()
		n := a.jobs[id].running
		a.mu.Unlock()
		if n > 1 {
			t.Fatalf("running = %d while the first run blocks", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if n := atomic.LoadInt32(&runs); n != 1 {
		t.Fatalf("runs while blocked = %d, want 1", n)
	}
	if len(l.Warnings()) == 0 {
		t.Fatal("skipped firings were not logged")
	}

	if err := a.RemoveJob(id); err != nil {
		t.Fatal(err)
	}
	close(release)
	a.Wait()
}

func TestAddJobConcurrentWithListJobs(t *testing.T) {
	a := newTestApi(t, registryWith(nil, "site"), nil)
	trigger := scheduler.Trigger{Kind: scheduler.KindCron, Expr: "0 2 * * *"}

	stop := make(chan struct{})
	var listers sync.WaitGroup
	for i := 0; i < 4; i++ {
		listers.Add(1)
		go func() {
			defer listers.Done()
			for {
				select {
				case <-stop:
					return
				default:
					a.ListJobs()
				}
			}
		}()
	}

	ids := make(chan string, 100)
	var adders sync.WaitGroup
	for i := 0; i < 100; i++ {
		adders.Add(1)
		go func() {
			defer adders.Done()
			id, err := a.AddJob("site", "", trigger)
			if err != nil {
				t.Error(err)
				return
			}
			ids <- id
		}()
	}
	adders.Wait()
	close(stop)
	listers.Wait()
	close(ids)

	listed := make(map[string]bool)
	for _, j := range a.ListJobs() {
		if j.NextRunAt.IsZero() {
			t.Errorf("job %s has no queued run", j.ID)
		}
		listed[j.ID] = true
	}
	for id := range ids {
		if !listed[id] {
			t.Errorf("job %s dropped", id)
		}
	}
}

func TestRunSpiderListedWhileRunning(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	r := registryWith(func(string, crawler.Options) funcPager {
		return func(context.Context) error {
			close(started)
			<-release
			return nil
		}
	}, "site")
	a := newTestApi(t, r, nil)
	id, err := a.RunSpider("site", "")
	if err != nil {
		t.Fatal(err)
	}
	jobs := a.ListJobs()
	if len(jobs) != 1 || jobs[0].ID != id || !jobs[0].Running {
		t.Fatalf("jobs = %+v", jobs)
	}
	<-started
	close(release)
	a.Wait()
	if jobs := a.ListJobs(); len(jobs) != 0 {
		t.Fatalf("finished run still listed: %+v", jobs)
	}
}
