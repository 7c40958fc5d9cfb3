package warpcli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/warpdl/warpcrawl/common"
)

// fakeServer answers JSON-RPC calls from results keyed by method and
// records the last params and Authorization header.
type fakeServer struct {
	results    map[string]any
	errs       map[string]*jrpc2.Error
	lastParams map[string]json.RawMessage
	lastAuth   string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lastAuth = r.Header.Get("Authorization")
	var req struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	body, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if f.lastParams == nil {
		f.lastParams = make(map[string]json.RawMessage)
	}
	f.lastParams[req.Method] = req.Params
	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if e, ok := f.errs[req.Method]; ok {
		resp["error"] = map[string]any{"code": e.Code, "message": e.Message}
	} else {
		resp["result"] = f.results[req.Method]
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func newTestClient(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/jsonrpc", "tok", srv.Client())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientSendsBearerToken(t *testing.T) {
	f := &fakeServer{results: map[string]any{"system.getVersion": common.VersionResult{Version: "1.2.3"}}}
	c := newTestClient(t, f)
	v, err := c.GetDaemonVersion(context.Background())
	if err != nil {
		t.Fatalf("GetDaemonVersion: %v", err)
	}
	if v.Version != "1.2.3" || f.lastAuth != "Bearer tok" {
		t.Fatalf("version %q auth %q", v.Version, f.lastAuth)
	}
}

func TestClientMethods(t *testing.T) {
	f := &fakeServer{results: map[string]any{
		"spider.list": common.SpiderListResult{Spiders: []string{"vol.moe"}},
		"spider.run":  common.JobIDResult{JobID: "run-1"},
		"job.add":     common.JobIDResult{JobID: "job-1"},
		"job.list":    common.JobListResult{Jobs: []common.JobInfo{{JobID: "job-1", Spider: "vol.moe", Trigger: "cron[0 2 * * *]"}}},
		"job.remove":  common.EmptyResult{},
	}}
	c := newTestClient(t, f)
	ctx := context.Background()

	spiders, err := c.ListSpiders(ctx)
	if err != nil || len(spiders) != 1 || spiders[0] != "vol.moe" {
		t.Fatalf("ListSpiders = %v, %v", spiders, err)
	}
	id, err := c.RunSpider(ctx, "vol.moe", "http://proxy:3128")
	if err != nil || id != "run-1" {
		t.Fatalf("RunSpider = %q, %v", id, err)
	}
	if !strings.Contains(string(f.lastParams["spider.run"]), `"proxy":"http://proxy:3128"`) {
		t.Fatalf("spider.run params = %s", f.lastParams["spider.run"])
	}
	id, err = c.AddJob(ctx, common.SpiderParams{Name: "vol.moe"}, common.TriggerParams{Type: "cron", Expression: "0 2 * * *"})
	if err != nil || id != "job-1" {
		t.Fatalf("AddJob = %q, %v", id, err)
	}
	jobs, err := c.ListJobs(ctx)
	if err != nil || len(jobs) != 1 || jobs[0].Trigger != "cron[0 2 * * *]" {
		t.Fatalf("ListJobs = %+v, %v", jobs, err)
	}
	if err := c.RemoveJob(ctx, "job-1"); err != nil {
		t.Fatalf("RemoveJob: %v", err)
	}
	if !strings.Contains(string(f.lastParams["job.remove"]), `"job_id":"job-1"`) {
		t.Fatalf("job.remove params = %s", f.lastParams["job.remove"])
	}
}

func TestClientReturnsRPCError(t *testing.T) {
	f := &fakeServer{errs: map[string]*jrpc2.Error{"job.remove": {Code: -32001, Message: "job not found"}}}
	c := newTestClient(t, f)
	err := c.RemoveJob(context.Background(), "missing")
	var rerr *jrpc2.Error
	if !errors.As(err, &rerr) || rerr.Code != -32001 {
		t.Fatalf("err = %v", err)
	}
}

func TestDefaultURL(t *testing.T) {
	t.Setenv(common.PortEnv, "")
	if got := DefaultURL(); got != "http://127.0.0.1:6802/jsonrpc" {
		t.Fatalf("DefaultURL = %s", got)
	}
	t.Setenv(common.PortEnv, "9000")
	if got := DefaultURL(); got != "http://127.0.0.1:9000/jsonrpc" {
		t.Fatalf("DefaultURL = %s", got)
	}
}

func TestCheckVersionMismatch(t *testing.T) {
	f := &fakeServer{results: map[string]any{"system.getVersion": common.VersionResult{Version: "2.0.0"}}}
	c := newTestClient(t, f)
	var sb strings.Builder
	c.CheckVersionMismatch(context.Background(), &sb, "1.0.0")
	if !strings.Contains(sb.String(), "differs") {
		t.Fatalf("expected mismatch warning, got %q", sb.String())
	}
	sb.Reset()
	c.CheckVersionMismatch(context.Background(), &sb, "2.0.0")
	if sb.Len() != 0 {
		t.Fatalf("unexpected output %q", sb.String())
	}
}
