//go:build !darwin && !freebsd && !linux

package warplib

func checkDiskSpace(dir string, requiredBytes int64) error {
	return nil
}
