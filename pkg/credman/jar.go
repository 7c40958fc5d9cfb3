package credman

import (
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/warpdl/warpcrawl/pkg/credman/types"
	"golang.org/x/net/publicsuffix"
)

// Jar is a concurrency-safe http.CookieJar whose contents can be listed and
// restored, which the standard library jar does not allow.
type Jar struct {
	mu      sync.Mutex
	entries map[string]types.Cookie
	now     func() time.Time
}

func NewJar() *Jar {
	return &Jar{
		entries: make(map[string]types.Cookie),
		now:     time.Now,
	}
}

func entryKey(c *types.Cookie) string {
	return c.Domain + ";" + c.Path + ";" + c.Name
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	host := canonicalHost(u.Host)
	if host == "" {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now()
	for _, hc := range cookies {
		if hc.Name == "" {
			continue
		}
		domain, hostOnly, ok := cookieDomain(host, hc.Domain)
		if !ok {
			continue
		}
		c := types.Cookie{
			Name:     hc.Name,
			Value:    hc.Value,
			Domain:   domain,
			Path:     hc.Path,
			Secure:   hc.Secure,
			HttpOnly: hc.HttpOnly,
			HostOnly: hostOnly,
			Created:  now,
		}
		if !strings.HasPrefix(c.Path, "/") {
			c.Path = defaultPath(u.Path)
		}
		key := entryKey(&c)
		switch {
		case hc.MaxAge < 0:
			delete(j.entries, key)
			continue
		case hc.MaxAge > 0:
			c.Expires = now.Add(time.Duration(hc.MaxAge) * time.Second)
		case !hc.Expires.IsZero():
			if !hc.Expires.After(now) {
				delete(j.entries, key)
				continue
			}
			c.Expires = hc.Expires
		}
		if old, ok := j.entries[key]; ok {
			c.Created = old.Created
		}
		j.entries[key] = c
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	host := canonicalHost(u.Host)
	if host == "" {
		return nil
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	https := u.Scheme == "https"

	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now()
	var matched []types.Cookie
	for key, c := range j.entries {
		if c.Expired(now) {
			delete(j.entries, key)
			continue
		}
		if c.Secure && !https {
			continue
		}
		if !domainMatch(&c, host) || !pathMatch(c.Path, path) {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(a, b int) bool {
		if len(matched[a].Path) != len(matched[b].Path) {
			return len(matched[a].Path) > len(matched[b].Path)
		}
		return matched[a].Created.Before(matched[b].Created)
	})
	out := make([]*http.Cookie, 0, len(matched))
	for i := range matched {
		out = append(out, matched[i].HTTP())
	}
	return out
}

// Entries returns a snapshot of unexpired cookies in a stable order.
func (j *Jar) Entries() []types.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now()
	out := make([]types.Cookie, 0, len(j.entries))
	for key, c := range j.entries {
		if c.Expired(now) {
			delete(j.entries, key)
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool {
		return entryKey(&out[a]) < entryKey(&out[b])
	})
	return out
}

// Add stores persisted cookies as they are.
func (j *Jar) Add(cookies ...types.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range cookies {
		if c.Name == "" || c.Domain == "" {
			continue
		}
		if c.Path == "" {
			c.Path = "/"
		}
		j.entries[entryKey(&c)] = c
	}
}

// Import adds cookies read from a browser store. A leading dot on Domain
// marks a domain cookie, anything else is host-only.
func (j *Jar) Import(cookies []*http.Cookie) int {
	var added []types.Cookie
	now := j.now()
	for _, hc := range cookies {
		domain := strings.ToLower(hc.Domain)
		c := types.Cookie{
			Name:     hc.Name,
			Value:    hc.Value,
			Domain:   strings.TrimPrefix(domain, "."),
			Path:     hc.Path,
			Expires:  hc.Expires,
			Secure:   hc.Secure,
			HttpOnly: hc.HttpOnly,
			HostOnly: !strings.HasPrefix(domain, "."),
			Created:  now,
		}
		if c.Expired(now) {
			continue
		}
		added = append(added, c)
	}
	j.Add(added...)
	return len(added)
}

// replace swaps the whole content of the jar.
func (j *Jar) replace(cookies []types.Cookie) {
	j.mu.Lock()
	j.entries = make(map[string]types.Cookie, len(cookies))
	j.mu.Unlock()
	j.Add(cookies...)
}

func (j *Jar) Len() int {
	return len(j.Entries())
}

func canonicalHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	return strings.ToLower(host)
}

func cookieDomain(host, domain string) (string, bool, bool) {
	if domain == "" {
		return host, true, true
	}
	domain = strings.TrimPrefix(strings.ToLower(domain), ".")
	if domain == host {
		return host, false, true
	}
	if net.ParseIP(host) != nil {
		return "", false, false
	}
	if !strings.HasSuffix(host, "."+domain) {
		return "", false, false
	}
	if ps, _ := publicsuffix.PublicSuffix(domain); ps == domain {
		return "", false, false
	}
	return domain, false, true
}

func domainMatch(c *types.Cookie, host string) bool {
	if c.Domain == host {
		return true
	}
	return !c.HostOnly && strings.HasSuffix(host, "."+c.Domain)
}

func pathMatch(cookiePath, reqPath string) bool {
	if cookiePath == reqPath {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || reqPath[len(cookiePath)] == '/'
}

func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}

var _ http.CookieJar = (*Jar)(nil)
