package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cws "github.com/coder/websocket"
)

func TestWebSocketEndpoint(t *testing.T) {
	ws, _, _ := newTestWebServer(t, testSecret)
	srv := httptest.NewServer(ws.Handler())
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/jsonrpc/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, token := range []string{"", "wrong-token"} {
		opts := &cws.DialOptions{HTTPHeader: http.Header{}}
		if token != "" {
			opts.HTTPHeader.Set("Authorization", "Bearer "+token)
		}
		_, resp, err := cws.Dial(ctx, wsURL, opts)
		if err == nil {
			t.Fatalf("expected dial with token %q to fail", token)
		}
		if resp != nil && resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	}

	conn, _, err := cws.Dial(ctx, wsURL, &cws.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + testSecret}},
	})
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer conn.Close(cws.StatusNormalClosure, "")

	req, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "method": "spider.list", "id": 7})
	if err := conn.Write(ctx, cws.MessageText, req); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["id"].(float64) != 7 || resp["result"] == nil {
		t.Fatalf("unexpected response %v", resp)
	}
}
