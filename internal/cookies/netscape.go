package cookies

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/warpdl/warpcrawl/pkg/logger"
)

const httpOnlyPrefix = "#HttpOnly_"

// parseNetscape reads a cookies.txt stream. Lines starting with # are
// comments except the #HttpOnly_ marker. Malformed lines are skipped with a
// warning that never includes the cookie value.
func parseNetscape(r io.Reader, domain string, now time.Time, l logger.Logger) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		httpOnly := strings.HasPrefix(line, httpOnlyPrefix)
		if httpOnly {
			line = line[len(httpOnlyPrefix):]
		} else if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			l.Warning("cookies.txt line %d: expected 7 fields, got %d", lineNo, len(fields))
			continue
		}
		expiry, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			l.Warning("cookies.txt line %d: invalid expiry %q", lineNo, fields[4])
			continue
		}
		cookieDomain := fields[0]
		if strings.EqualFold(fields[1], "TRUE") && !strings.HasPrefix(cookieDomain, ".") {
			cookieDomain = "." + cookieDomain
		}
		if !matchesDomain(cookieDomain, domain) {
			continue
		}
		c := &http.Cookie{
			Name:     fields[5],
			Value:    fields[6],
			Domain:   cookieDomain,
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			HttpOnly: httpOnly,
		}
		if expiry > 0 {
			c.Expires = time.Unix(expiry, 0)
			if c.Expires.Before(now) {
				continue
			}
		}
		cookies = append(cookies, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cookies.txt: %w", err)
	}
	return cookies, nil
}

// matchesDomain reports whether cookieDomain is domain, its dotted form or
// one of its subdomains.
func matchesDomain(cookieDomain, domain string) bool {
	cookieDomain = strings.ToLower(cookieDomain)
	domain = strings.ToLower(domain)
	dotDomain := "." + domain
	return cookieDomain == domain || cookieDomain == dotDomain || strings.HasSuffix(cookieDomain, dotDomain)
}
