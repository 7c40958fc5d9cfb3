package cookies

import (
	"os"
	"testing"
)

func TestSafeCopy(t *testing.T) {
	src := createStore(t, t.TempDir(), firefoxSchema, nil)
	if err := os.WriteFile(src+"-wal", []byte("wal"), 0600); err != nil {
		t.Fatal(err)
	}
	copied, cleanup, err := SafeCopy(src)
	if err != nil {
		t.Fatalf("SafeCopy: %v", err)
	}
	if copied == src {
		t.Fatal("copy has the source path")
	}
	if b, err := os.ReadFile(copied + "-wal"); err != nil || string(b) != "wal" {
		t.Errorf("wal companion = %q, %v", b, err)
	}
	if _, err := os.Stat(copied + "-shm"); !os.IsNotExist(err) {
		t.Errorf("unexpected shm companion: %v", err)
	}
	cleanup()
	if _, err := os.Stat(copied); !os.IsNotExist(err) {
		t.Errorf("copy survives cleanup: %v", err)
	}
}

func TestSafeCopy_Missing(t *testing.T) {
	if _, _, err := SafeCopy("/nonexistent/cookies.sqlite"); err == nil {
		t.Fatal("expected error")
	}
}
