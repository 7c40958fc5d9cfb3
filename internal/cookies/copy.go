package cookies

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SafeCopy copies a SQLite cookie file and its -wal and -shm companions to a
// temporary directory so the browser's lock on the live file does not
// matter. The caller must call cleanup.
func SafeCopy(srcPath string) (copied string, cleanup func(), err error) {
	if err := checkStoreFile(srcPath); err != nil {
		return "", nil, err
	}
	tempDir, err := os.MkdirTemp("", "warpcrawl-cookies-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup = func() { os.RemoveAll(tempDir) }

	copied = filepath.Join(tempDir, filepath.Base(srcPath))
	if err := copyFile(srcPath, copied); err != nil {
		cleanup()
		return "", nil, err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if _, err := os.Stat(srcPath + suffix); err == nil {
			_ = copyFile(srcPath+suffix, copied+suffix)
		}
	}
	return copied, cleanup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
