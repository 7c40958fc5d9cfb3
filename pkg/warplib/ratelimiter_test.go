package warplib

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"
)

func TestRateLimitedReaderUnlimited(t *testing.T) {
	r := bytes.NewReader([]byte("abc"))
	if got := NewRateLimitedReader(context.Background(), r, 0); got != io.Reader(r) {
		t.Fatal("expected the reader to be returned unchanged")
	}
}

func TestRateLimitedReaderThrottles(t *testing.T) {
	data := bytes.Repeat([]byte{'x'}, 3*int(DEF_CHUNK_SIZE))
	r := NewRateLimitedReader(context.Background(), bytes.NewReader(data), DEF_CHUNK_SIZE)

	start := time.Now()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("data mismatch")
	}
	// The first KiB is covered by the burst, the other two need ~2s.
	if elapsed := time.Since(start); elapsed < 1500*time.Millisecond {
		t.Fatalf("expected throttling, finished in %s", elapsed)
	}
}

func TestRateLimitedReaderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRateLimitedReader(ctx, bytes.NewReader(make([]byte, 10)), 1)
	if _, err := r.Read(make([]byte, 10)); err == nil {
		t.Fatal("expected context error")
	}
}

func TestParseSpeedLimit(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"0", 0, true},
		{"100", 100, true},
		{"100B", 100, true},
		{"512kb", 512 * KB, true},
		{"1.5MB", int64(1.5 * float64(MB)), true},
		{"2G", 2 * GB, true},
		{"", 0, false},
		{"MB", 0, false},
		{"10XB", 0, false},
		{"-5", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseSpeedLimit(tt.in)
		if tt.ok != (err == nil) || (tt.ok && got != tt.want) {
			t.Errorf("ParseSpeedLimit(%q) = %d, %v", tt.in, got, err)
		}
	}
}
