//go:build !windows

package warplib

import "syscall"

// isTransientErrno reports errnos of a connection dropped by the peer.
func isTransientErrno(errno syscall.Errno) bool {
	switch errno {
	case syscall.ECONNRESET, syscall.ECONNABORTED, syscall.EPIPE:
		return true
	}
	return false
}
