package warplib

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/warpdl/warpcrawl/pkg/logger"
)

// Engine downloads DownloadTasks one at a time. It keeps no state between
// calls; everything it needs to resume lives in the partial file.
type Engine struct {
	client           *http.Client
	fs               afero.Fs
	l                logger.Logger
	handlers         *Handlers
	userAgent        string
	chunk            int
	retryInterval    time.Duration
	progressInterval time.Duration
	maxBps           int64

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// Optional fields of the engine.
type EngineOpts struct {
	// Client is copied per download with the task's cookie jar attached.
	Client *http.Client
	Fs     afero.Fs
	Logger logger.Logger
	// UserAgent is sent on every request; defaults to DEF_USER_AGENT.
	UserAgent string
	Handlers  *Handlers
	// MaxBytesPerSecond throttles the body read; 0 means unlimited.
	MaxBytesPerSecond int64
	RetryInterval     time.Duration
	ProgressInterval  time.Duration
}

func NewEngine(opts *EngineOpts) *Engine {
	if opts == nil {
		opts = &EngineOpts{}
	}
	if opts.Client == nil {
		opts.Client = &http.Client{CheckRedirect: RedirectPolicy(DefaultMaxRedirects)}
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DEF_USER_AGENT
	}
	if opts.Handlers == nil {
		opts.Handlers = &Handlers{}
	}
	opts.Handlers.setDefault()
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = RetryInterval
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = ProgressInterval
	}
	return &Engine{
		client:           opts.Client,
		fs:               opts.Fs,
		l:                logger.OrNop(opts.Logger),
		handlers:         opts.Handlers,
		userAgent:        opts.UserAgent,
		chunk:            int(DEF_CHUNK_SIZE),
		retryInterval:    opts.RetryInterval,
		progressInterval: opts.ProgressInterval,
		maxBps:           opts.MaxBytesPerSecond,
		sleep:            sleepContext,
		now:              time.Now,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Download materializes task.SourceURL at task.DestinationPath using jar
// for cookies. Transient transport errors are retried forever with a fixed
// wait; the only way to bound a download is to cancel ctx, which leaves the
// partial file for a later resume. A nil error means the task was skipped
// or completed.
func (e *Engine) Download(ctx context.Context, task DownloadTask, jar http.CookieJar) (Result, error) {
	res := e.download(ctx, task, jar)
	e.handlers.FinishHandler(res)
	return res, res.Err
}

func (e *Engine) download(ctx context.Context, task DownloadTask, jar http.CookieJar) Result {
	res := Result{Task: task, State: StatePending}
	name := task.DisplayName
	switch {
	case task.SourceURL == "":
		e.l.Warning("'%s' has no download URL, skipping", name)
		res.Outcome = OutcomeSkipped
		return res
	case task.DestinationPath == "":
		e.l.Warning("'%s' has no save path, skipping", name)
		res.Outcome = OutcomeSkipped
		return res
	}
	if ok, err := afero.Exists(e.fs, task.DestinationPath); err != nil {
		return e.failed(res, err)
	} else if ok {
		e.l.Info("'%s' already exists, skipping", name)
		res.State = StateComplete
		res.Outcome = OutcomeSkipped
		return res
	}
	if err := e.fs.MkdirAll(filepath.Dir(task.DestinationPath), 0755); err != nil {
		return e.failed(res, fmt.Errorf("create directory: %w", err))
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return e.failed(res, err)
		}
		res.Attempts = attempt
		err := e.attempt(ctx, task, jar, &res)
		if err == nil {
			return res
		}
		if ctx.Err() != nil {
			return e.failed(res, ctx.Err())
		}
		if !IsTransient(err) {
			if res.Outcome == OutcomeSizeMismatch {
				res.Err = err
				return res
			}
			return e.failed(res, err)
		}
		res.State = StateRetryWait
		e.l.Warning("Retrying download of '%s' after %d attempt(s) (last error: %v)", name, attempt, err)
		e.handlers.RetryHandler(task, attempt, err)
		if err := e.sleep(ctx, e.retryInterval); err != nil {
			return e.failed(res, err)
		}
	}
}

func (e *Engine) failed(res Result, err error) Result {
	res.Outcome = OutcomeFailed
	res.State = StateFailed
	res.Err = err
	return res
}

// attempt runs one pass from resume detection to finalize.
func (e *Engine) attempt(ctx context.Context, task DownloadTask, jar http.CookieJar, res *Result) error {
	name := task.DisplayName
	partial := PartialPath(task.DestinationPath)

	var offset int64
	fi, err := e.fs.Stat(partial)
	switch {
	case err == nil:
		offset = fi.Size()
	case !os.IsNotExist(err):
		return err
	}
	res.State = Classify(err == nil, offset, false)
	res.Written = offset

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.SourceURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", e.userAgent)
	if res.State == StateResuming {
		e.l.Info("Resuming download of '%s' from %s", name, ContentLength(offset))
		req.Header.Set("Range", "bytes="+strconv.FormatInt(offset, 10)+"-")
	}

	client := *e.client
	client.Jar = jar
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.l.Error("Failed to download '%s': status %d", name, resp.StatusCode)
		return &StatusError{Code: resp.StatusCode, URL: task.SourceURL}
	}

	var (
		flag    int
		total   int64
		written int64
	)
	switch resp.StatusCode {
	case http.StatusPartialContent:
		cr := resp.Header.Get("Content-Range")
		start, size, err := parseContentRange(cr)
		if err != nil {
			e.l.Error("Failed to download '%s': %v", name, err)
			return err
		}
		if start != offset {
			e.l.Error("Failed to download '%s': server resumed at %d, have %d", name, start, offset)
			return fmt.Errorf("%w: %q does not start at %d", ErrContentRangeInvalid, cr, offset)
		}
		e.l.Debug("'%s' download from range '%s'", name, cr)
		flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		total = size
		written = offset
	case http.StatusOK:
		e.l.Debug("'%s' download from start", name)
		flag = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if resp.ContentLength > 0 {
			total = resp.ContentLength
		}
	default:
		e.l.Error("Failed to download '%s': status %d", name, resp.StatusCode)
		return &StatusError{Code: resp.StatusCode, URL: task.SourceURL}
	}
	res.Total = total
	res.Written = written

	if err := checkDiskSpace(filepath.Dir(task.DestinationPath), total-written); err != nil {
		e.l.Warning("'%s': %v", name, err)
	}

	f, err := e.fs.OpenFile(partial, flag, 0644)
	if err != nil {
		return err
	}
	res.State = StateStreaming
	e.handlers.StartHandler(task, res.State, written, total)

	written, err = e.stream(ctx, task, f, resp.Body, written, total)
	res.Written = written
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	res.State = StateVerifying
	if total <= 0 || written != total {
		e.l.Warning("'%s' downloaded size (%s) doesn't match expected size (%s)",
			name, ContentLength(written), ContentLength(total))
		res.Outcome = OutcomeSizeMismatch
		res.State = StateFailed
		return fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, written, total)
	}
	if err := e.fs.Rename(partial, task.DestinationPath); err != nil {
		return err
	}
	res.State = StateComplete
	res.Outcome = OutcomeComplete
	e.l.Info("Downloaded '%s' (%s)", name, ContentLength(written))
	return nil
}

// stream copies body into f chunk by chunk and returns the new byte count.
func (e *Engine) stream(ctx context.Context, task DownloadTask, f io.Writer, body io.Reader, written, total int64) (int64, error) {
	body = NewRateLimitedReader(ctx, body, e.maxBps)
	buf := make([]byte, e.chunk)
	last := e.now()
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
			if now := e.now(); now.Sub(last) >= e.progressInterval {
				last = now
				e.progress(task, written, total)
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

func (e *Engine) progress(task DownloadTask, written, total int64) {
	want := "unknown"
	switch {
	case total > 0:
		want = ContentLength(total).String()
	case task.ExpectedSize != "":
		want = task.ExpectedSize
	}
	e.l.Debug("Downloading '%s' (%s/%s)", task.DisplayName, ContentLength(written), want)
	e.handlers.ProgressHandler(task, written, total)
}

// parseContentRange reads "bytes start-end/total" and requires a numeric
// total.
func parseContentRange(v string) (start, total int64, err error) {
	invalid := fmt.Errorf("%w: %q", ErrContentRangeInvalid, v)
	rest, ok := strings.CutPrefix(strings.TrimSpace(v), "bytes ")
	if !ok {
		return 0, 0, invalid
	}
	span, size, ok := strings.Cut(rest, "/")
	if !ok {
		return 0, 0, invalid
	}
	first, _, ok := strings.Cut(span, "-")
	if !ok {
		return 0, 0, invalid
	}
	start, err = strconv.ParseInt(strings.TrimSpace(first), 10, 64)
	if err != nil {
		return 0, 0, invalid
	}
	total, err = strconv.ParseInt(strings.TrimSpace(size), 10, 64)
	if err != nil || total <= 0 || start >= total {
		return 0, 0, invalid
	}
	return start, total, nil
}
