package cookies

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "modernc.org/sqlite"
)

// chromeEpochOffsetSeconds is the number of seconds between the Windows NT epoch
// (1601-01-01 00:00:00 UTC) and the Unix epoch (1970-01-01 00:00:00 UTC).
const chromeEpochOffsetSeconds int64 = 11_644_473_600

// schema describes the cookie table of one browser family. Expiry columns
// are converted with toUnix; 0 means a session cookie.
type schema struct {
	format  Format
	browser string
	table   string
	query   string
	fromNow func(now time.Time) int64
	toUnix  func(v int64) int64
}

var firefoxSchema = schema{
	format:  FormatFirefox,
	browser: "Firefox",
	table:   "moz_cookies",
	query: `SELECT name, value, host, path, expiry, isSecure, isHttpOnly
        FROM moz_cookies
        WHERE (host = ? OR host = ? OR host LIKE ?)
          AND (expiry = 0 OR expiry > ?)
        ORDER BY path DESC, name ASC`,
	fromNow: func(now time.Time) int64 { return now.Unix() },
	toUnix:  func(v int64) int64 { return v },
}

var chromeSchema = schema{
	format:  FormatChrome,
	browser: "Chrome",
	table:   "cookies",
	query: `SELECT name, value, host_key, path, expires_utc, is_secure, is_httponly
        FROM cookies
        WHERE (host_key = ? OR host_key = ? OR host_key LIKE ?)
          AND value != ''
          AND (expires_utc = 0 OR expires_utc > ?)
        ORDER BY path DESC, name ASC`,
	fromNow: func(now time.Time) int64 { return (now.Unix() + chromeEpochOffsetSeconds) * 1_000_000 },
	toUnix:  chromeToUnix,
}

var schemas = []schema{firefoxSchema, chromeSchema}

// chromeToUnix converts a Chrome timestamp (microseconds since 1601-01-01)
// to a Unix timestamp (seconds since 1970-01-01).
func chromeToUnix(chromeUSec int64) int64 {
	return (chromeUSec / 1_000_000) - chromeEpochOffsetSeconds
}

// parseSQLite reads the unexpired cookies of domain and its subdomains.
// dbPath should be a copy of the browser's file, not the live database.
func parseSQLite(dbPath, domain string, s schema, now time.Time) ([]*http.Cookie, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?immutable=1", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", s.browser, err)
	}
	defer db.Close()

	rows, err := db.Query(s.query, domain, "."+domain, "%."+domain, s.fromNow(now))
	if err != nil {
		return nil, fmt.Errorf("query %s cookies: %w", s.browser, err)
	}
	defer rows.Close()

	var cookies []*http.Cookie
	for rows.Next() {
		var (
			c                http.Cookie
			expiry           int64
			secure, httpOnly int
		)
		if err := rows.Scan(&c.Name, &c.Value, &c.Domain, &c.Path, &expiry, &secure, &httpOnly); err != nil {
			return nil, fmt.Errorf("scan %s cookie: %w", s.browser, err)
		}
		if expiry != 0 {
			c.Expires = time.Unix(s.toUnix(expiry), 0)
		}
		c.Secure = secure != 0
		c.HttpOnly = httpOnly != 0
		cookies = append(cookies, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s cookies: %w", s.browser, err)
	}
	return cookies, nil
}
