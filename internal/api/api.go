// Package api manages crawl jobs: one-off runs and scheduled jobs on top
// of the in-memory scheduler. Jobs of the same spider never overlap.
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warpdl/warpcrawl/internal/crawler"
	"github.com/warpdl/warpcrawl/internal/scheduler"
	"github.com/warpdl/warpcrawl/pkg/logger"
	"github.com/warpdl/warpcrawl/pkg/warplib"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrClosed      = errors.New("api closed")
)

type Options struct {
	Logger   logger.Logger
	Registry *crawler.Registry
	// Base is copied into every run; a job proxy overrides Base.Proxy.
	Base crawler.Options
}

type Api struct {
	log      logger.Logger
	registry *crawler.Registry
	base     crawler.Options
	sched    *scheduler.Scheduler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	jobs  map[string]*job
	sites map[string]*sync.Mutex

	newID func() string
	now   func() time.Time
}

// NewApi starts the scheduler. Runs stop when ctx is cancelled or Close is
// called.
func NewApi(ctx context.Context, opts Options) *Api {
	if opts.Registry == nil {
		opts.Registry = crawler.DefaultRegistry()
	}
	ctx, cancel := context.WithCancel(ctx)
	a := &Api{
		log:      logger.OrNop(opts.Logger),
		registry: opts.Registry,
		base:     opts.Base,
		ctx:      ctx,
		cancel:   cancel,
		jobs:     make(map[string]*job),
		sites:    make(map[string]*sync.Mutex),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	a.sched = scheduler.New(ctx, a.onTrigger)
	return a
}

// ListSpiders returns the names accepted by RunSpider and AddJob.
func (a *Api) ListSpiders() []string {
	return a.registry.Names()
}

// Close cancels running jobs and waits for them to return.
func (a *Api) Close() error {
	a.cancel()
	a.wg.Wait()
	return nil
}

// Wait blocks until no job is running.
func (a *Api) Wait() {
	a.wg.Wait()
}

func (a *Api) validate(spider, proxy string) error {
	if a.ctx.Err() != nil {
		return ErrClosed
	}
	if !a.registry.Has(spider) {
		return crawler.ErrUnknownSpider
	}
	if proxy != "" {
		if _, err := warplib.ParseProxyURL(proxy); err != nil {
			return err
		}
	}
	return nil
}

// siteLock returns the mutex serialising runs of spider.
func (a *Api) siteLock(spider string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.sites[spider]
	if !ok {
		m = &sync.Mutex{}
		a.sites[spider] = m
	}
	return m
}
