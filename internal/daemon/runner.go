// Package daemon runs the long-lived serve process: it keeps the RPC
// listener up until its context ends, then stops the listener and the job
// API within a bounded time.
package daemon

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrAlreadyRunning is returned when Run is called on a running daemon.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrShutdownTimeout is returned when stopping exceeds the configured
	// timeout.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// DefaultShutdownTimeout bounds the stop phase when Config leaves it zero.
const DefaultShutdownTimeout = 10 * time.Second

type Config struct {
	ShutdownTimeout time.Duration
}

// Dependencies are the pieces a Runner drives. Serve and Stop are
// required; Cleanup runs after the listener is gone.
type Dependencies struct {
	// Serve blocks until the listener stops, e.g. WebServer.Start.
	Serve func() error
	// Stop asks the listener to stop, e.g. WebServer.Shutdown.
	Stop func(ctx context.Context) error
	// Cleanup releases the rest, e.g. Api.Close which waits for running jobs.
	Cleanup func() error
}

type Runner struct {
	config  Config
	deps    Dependencies
	mu      sync.Mutex
	running bool
}

// New returns a Runner. A nil config uses DefaultShutdownTimeout.
func New(config *Config, deps Dependencies) *Runner {
	cfg := Config{ShutdownTimeout: DefaultShutdownTimeout}
	if config != nil && config.ShutdownTimeout > 0 {
		cfg = *config
	}
	return &Runner{config: cfg, deps: deps}
}

func (r *Runner) Config() Config {
	return r.config
}

// Run serves until ctx is cancelled or Serve returns, then stops. The
// error of Serve wins over a stop error.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running = true
	r.mu.Unlock()
	defer r.setStopped()

	serveErr := make(chan error, 1)
	go func() { serveErr <- r.deps.Serve() }()

	var err error
	served := false
	select {
	case err = <-serveErr:
		served = true
	case <-ctx.Done():
	}

	stopErr := r.stop(served, serveErr)
	if err != nil {
		return err
	}
	return stopErr
}

// stop runs Stop and Cleanup within the shutdown timeout.
func (r *Runner) stop(served bool, serveErr <-chan error) error {
	stopCtx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		var err error
		if r.deps.Stop != nil {
			err = r.deps.Stop(stopCtx)
		}
		if !served {
			if serr := <-serveErr; err == nil {
				err = serr
			}
		}
		if r.deps.Cleanup != nil {
			if cerr := r.deps.Cleanup(); err == nil {
				err = cerr
			}
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-stopCtx.Done():
		return ErrShutdownTimeout
	}
}

func (r *Runner) setStopped() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
