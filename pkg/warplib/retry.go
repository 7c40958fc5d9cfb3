package warplib

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// TransientError marks an error as an abrupt transport termination that is
// worth retrying.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient transport error: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// protocolPatterns match messages of the net/http and http2 transports for
// a connection or stream that ended mid-message.
var protocolPatterns = []string{
	"connection reset",
	"broken pipe",
	"unexpected eof",
	"server closed idle connection",
	"transport connection broken",
	"stream error",
	"http2: client connection lost",
	"http2: server sent goaway",
	"use of closed network connection",
}

// IsTransient reports whether err is an abrupt connection or protocol
// termination. Timeouts, cancellation, DNS failures, refused connections
// and HTTP status errors are not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return false
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return isTransientErrno(errno)
	}
	msg := strings.ToLower(err.Error())
	for _, p := range protocolPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
