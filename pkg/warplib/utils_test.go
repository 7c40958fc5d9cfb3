package warplib

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/warpdl/warpcrawl/pkg/logger"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// brokenBody yields data and then fails with err.
type brokenBody struct {
	data []byte
	err  error
}

func (b *brokenBody) Read(p []byte) (int, error) {
	if len(b.data) == 0 {
		return 0, b.err
	}
	n := copy(p, b.data)
	b.data = b.data[n:]
	return n, nil
}

func (b *brokenBody) Close() error { return nil }

// fakeOrigin serves content, honouring Range unless ignoreRange is set, and
// records every request.
type fakeOrigin struct {
	mu          sync.Mutex
	content     []byte
	ignoreRange bool
	requests    []*http.Request
	// fail, when set, may replace the response of call i (0-based).
	fail func(i int, offset int64) (*http.Response, error)
}

func (o *fakeOrigin) RoundTrip(req *http.Request) (*http.Response, error) {
	o.mu.Lock()
	i := len(o.requests)
	o.requests = append(o.requests, req)
	o.mu.Unlock()

	var offset int64
	if r := req.Header.Get("Range"); r != "" && !o.ignoreRange {
		v := strings.TrimSuffix(strings.TrimPrefix(r, "bytes="), "-")
		offset, _ = strconv.ParseInt(v, 10, 64)
	}
	if o.fail != nil {
		if resp, err := o.fail(i, offset); resp != nil || err != nil {
			if resp != nil {
				resp.Request = req
			}
			return resp, err
		}
	}
	return rangeResponse(req, o.content, offset), nil
}

func (o *fakeOrigin) calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.requests)
}

func rangeResponse(req *http.Request, content []byte, offset int64) *http.Response {
	body := content[offset:]
	resp := &http.Response{
		StatusCode:    http.StatusOK,
		Header:        make(http.Header),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
	if offset > 0 {
		resp.StatusCode = http.StatusPartialContent
		resp.Header.Set("Content-Range",
			fmt.Sprintf("bytes %d-%d/%d", offset, len(content)-1, len(content)))
	}
	return resp
}

func testContent(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + i%26)
	}
	return b
}

// sleepRecorder replaces the engine's wait.
type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func newTestEngine(t *testing.T, rt http.RoundTripper) (*Engine, afero.Fs, *logger.MockLogger, *sleepRecorder) {
	t.Helper()
	fs := afero.NewMemMapFs()
	l := logger.NewMockLogger()
	e := NewEngine(&EngineOpts{
		Client: &http.Client{Transport: rt},
		Fs:     fs,
		Logger: l,
	})
	s := &sleepRecorder{}
	e.sleep = s.sleep
	return e, fs, l, s
}

func readFile(t *testing.T, fs afero.Fs, path string) []byte {
	t.Helper()
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return b
}
