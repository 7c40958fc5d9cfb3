package cookies

import (
	"bufio"
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

var (
	ErrUnsupportedStore = errors.New("unsupported cookie store")
	ErrEmptyStore       = errors.New("cookie store is empty")
)

// sqliteMagic is the first 16 bytes of any SQLite database file.
var sqliteMagic = []byte("SQLite format 3\x00")

// DetectFormat determines the cookie store format of the file at path.
func DetectFormat(path string) (Format, error) {
	if err := checkStoreFile(path); err != nil {
		return FormatUnknown, err
	}
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	n, err := io.ReadFull(f, header)
	if err == nil && bytes.Equal(header, sqliteMagic) {
		return detectSQLiteFormat(path)
	}
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return FormatUnknown, fmt.Errorf("read %s: %w", path, err)
	}

	first, _ := bufio.NewReader(io.MultiReader(bytes.NewReader(header[:n]), f)).ReadString('\n')
	switch strings.TrimRight(first, "\r\n") {
	case "# Netscape HTTP Cookie File", "# HTTP Cookie File":
		return FormatNetscape, nil
	}
	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedStore, path)
}

// checkStoreFile rejects directories and empty files.
func checkStoreFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrUnsupportedStore, path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyStore, path)
	}
	return nil
}

// detectSQLiteFormat tells Firefox and Chrome stores apart by their table.
func detectSQLiteFormat(path string) (Format, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return FormatUnknown, fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	for _, s := range schemas {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, s.table).Scan(&name)
		if err == nil {
			return s.format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedStore, path)
}
