//go:build windows

package warplib

import "syscall"

// Native Windows socket error codes.
const (
	wsaenetreset    syscall.Errno = 10052
	wsaeconnaborted syscall.Errno = 10053
	wsaeconnreset   syscall.Errno = 10054
)

// isTransientErrno checks both the POSIX-style values Go defines and the
// native WSAE* values.
func isTransientErrno(errno syscall.Errno) bool {
	switch errno {
	case syscall.ECONNRESET, syscall.ECONNABORTED, syscall.EPIPE,
		wsaenetreset, wsaeconnaborted, wsaeconnreset:
		return true
	}
	return false
}
