//go:build darwin || freebsd || linux

package warplib

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// checkDiskSpace returns ErrInsufficientDiskSpace when the filesystem
// holding dir has fewer than requiredBytes available. Unknown sizes and
// failing statfs calls pass.
func checkDiskSpace(dir string, requiredBytes int64) error {
	if requiredBytes <= 0 {
		return nil
	}
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return nil
	}
	available := int64(st.Bavail) * int64(st.Bsize)
	if available < requiredBytes {
		return fmt.Errorf("%w: required %s, available %s",
			ErrInsufficientDiskSpace, ContentLength(requiredBytes), ContentLength(available))
	}
	return nil
}
