package credman

import (
	"net/url"
	"strings"
	"sync"
)

// Session is the explicit cookie state of one crawl job for one site
// identity. Each host gets its own Jar.
type Session struct {
	mu     sync.Mutex
	store  *SessionStore
	siteID string
	jars   map[string]*Jar
}

// NewSession returns an empty session that persists through store.
// A nil store keeps everything in memory.
func NewSession(store *SessionStore, siteID string) *Session {
	return &Session{
		store:  store,
		siteID: siteID,
		jars:   make(map[string]*Jar),
	}
}

// OpenSession loads the persisted cookies of siteID into a new session.
func OpenSession(store *SessionStore, siteID string) (*Session, error) {
	s := NewSession(store, siteID)
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) SiteID() string {
	return s.siteID
}

// Jar returns the jar of host, creating it on first use.
func (s *Session) Jar(host string) *Jar {
	host = canonicalHost(host)
	s.mu.Lock()
	defer s.mu.Unlock()
	jar, ok := s.jars[host]
	if !ok {
		jar = NewJar()
		s.jars[host] = jar
	}
	return jar
}

// Hosts lists the hostnames that have a jar.
func (s *Session) Hosts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Hosts(s.jars)
}

// Reload replaces the contents of the in-memory jars with the persisted
// ones. When no file exists the in-memory jars are kept. Jars already handed
// out stay valid and see the reloaded cookies.
func (s *Session) Reload() error {
	if s.store == nil {
		return nil
	}
	loaded, found, err := s.store.load(s.siteID)
	if err != nil || !found {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for host, jar := range loaded {
		if cur, ok := s.jars[host]; ok {
			cur.replace(jar.Entries())
			continue
		}
		s.jars[host] = jar
	}
	return nil
}

// Save persists the whole mapping, overwriting the previous file.
func (s *Session) Save() error {
	if s.store == nil {
		return nil
	}
	s.mu.Lock()
	snapshot := make(map[string]*Jar, len(s.jars))
	for h, j := range s.jars {
		snapshot[h] = j
	}
	s.mu.Unlock()
	return s.store.Save(s.siteID, snapshot)
}

// HostKey derives the session key of a URL: its lower-cased hostname.
func HostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
