package warplib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"wrapped unexpected eof", &url.Error{Op: "Get", URL: "u", Err: io.ErrUnexpectedEOF}, true},
		{"connection reset", &net.OpError{Op: "read", Err: os.NewSyscallError("read", syscall.ECONNRESET)}, true},
		{"broken pipe", syscall.EPIPE, true},
		{"connection aborted", syscall.ECONNABORTED, true},
		{"connection refused", syscall.ECONNREFUSED, false},
		{"marked transient", &TransientError{Err: errors.New("x")}, true},
		{"http2 stream reset", errors.New("stream error: stream ID 3; INTERNAL_ERROR"), true},
		{"idle close", errors.New("http: server closed idle connection"), true},
		{"timeout", timeoutErr{}, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), false},
		{"dns", &net.DNSError{Err: "no such host", Name: "vol.moe"}, false},
		{"status", &StatusError{Code: 503}, false},
		{"size mismatch", ErrSizeMismatch, false},
		{"other", errors.New("x509: certificate signed by unknown authority"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Fatalf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestTransientErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &TransientError{Err: inner}
	if !errors.Is(err, inner) {
		t.Fatal("expected Unwrap to expose the inner error")
	}
}
