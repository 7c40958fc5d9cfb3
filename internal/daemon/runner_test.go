package daemon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// fakeServer blocks in Serve until Stop is called.
type fakeServer struct {
	stopped   chan struct{}
	stopCalls atomic.Int32
	cleanups  atomic.Int32
	serveErr  error
	stopDelay time.Duration
}

func newFakeServer() *fakeServer {
	return &fakeServer{stopped: make(chan struct{})}
}

func (f *fakeServer) deps() Dependencies {
	return Dependencies{
		Serve: func() error {
			if f.serveErr != nil {
				return f.serveErr
			}
			<-f.stopped
			return nil
		},
		Stop: func(context.Context) error {
			if f.stopCalls.Add(1) == 1 {
				time.Sleep(f.stopDelay)
				close(f.stopped)
			}
			return nil
		},
		Cleanup: func() error {
			f.cleanups.Add(1)
			return nil
		},
	}
}

func TestNew_Defaults(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   time.Duration
	}{
		{"nil config", nil, DefaultShutdownTimeout},
		{"zero timeout", &Config{}, DefaultShutdownTimeout},
		{"custom", &Config{ShutdownTimeout: time.Second}, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.config, Dependencies{})
			if got := r.Config().ShutdownTimeout; got != tt.want {
				t.Errorf("ShutdownTimeout = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunner_Run_StopsOnCancel(t *testing.T) {
	f := newFakeServer()
	r := New(nil, f.deps())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	deadline := time.Now().Add(time.Second)
	for !r.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !r.IsRunning() {
		t.Fatal("runner did not start")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if f.stopCalls.Load() != 1 || f.cleanups.Load() != 1 {
		t.Errorf("stop=%d cleanup=%d, want 1 each", f.stopCalls.Load(), f.cleanups.Load())
	}
	if r.IsRunning() {
		t.Error("runner still marked running")
	}
}

func TestRunner_Run_ServeError(t *testing.T) {
	f := newFakeServer()
	f.serveErr = errors.New("address already in use")
	r := New(nil, f.deps())

	err := r.Run(context.Background())
	if err == nil || err.Error() != "address already in use" {
		t.Fatalf("Run() error = %v", err)
	}
	if f.cleanups.Load() != 1 {
		t.Error("cleanup not called after serve error")
	}
}

func TestRunner_Run_AlreadyRunning(t *testing.T) {
	f := newFakeServer()
	r := New(nil, f.deps())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	deadline := time.Now().Add(time.Second)
	for !r.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := r.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestRunner_Run_ShutdownTimeout(t *testing.T) {
	f := newFakeServer()
	f.stopDelay = 500 * time.Millisecond
	r := New(&Config{ShutdownTimeout: 50 * time.Millisecond}, f.deps())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Run(ctx); !errors.Is(err, ErrShutdownTimeout) {
		t.Fatalf("Run() error = %v, want ErrShutdownTimeout", err)
	}
}

func TestRunner_Run_CleanupError(t *testing.T) {
	f := newFakeServer()
	deps := f.deps()
	deps.Cleanup = func() error { return errors.New("jobs stuck") }
	r := New(nil, deps)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Run(ctx); err == nil || err.Error() != "jobs stuck" {
		t.Fatalf("Run() error = %v", err)
	}
}
