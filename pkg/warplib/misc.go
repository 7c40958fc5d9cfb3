// Package warplib materializes remote assets on disk: one resumable,
// chunked HTTP download per task, retried indefinitely on transient
// transport failures.
package warplib

import "time"

// Size unit constants for byte conversions.
const (
	B  int64 = 1
	KB       = 1024 * B
	MB       = 1024 * KB
	GB       = 1024 * MB
)

const (
	DEF_CHUNK_SIZE = 1 * KB
	DEF_USER_AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

	// PartialSuffix marks the in-progress file next to the destination.
	PartialSuffix = ".downloading"

	// RetryInterval is the fixed wait before re-entering a download after a
	// transient transport error.
	RetryInterval = 30 * time.Second
	// ProgressInterval is the minimum wall-clock time between two progress
	// observations of the same download.
	ProgressInterval = 5 * time.Second
)

// PartialPath returns the path of the partial file of dest.
func PartialPath(dest string) string {
	return dest + PartialSuffix
}
