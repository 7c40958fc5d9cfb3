package crawler

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// VolMoeName is the site identity of vol.moe; it also names the cookie file.
const VolMoeName = "vol.moe"

// DefaultDownloadDir is used when no download root is configured.
const DefaultDownloadDir = "./download"

var ErrUnknownSpider = errors.New("unknown spider")

// Spider holds the fixed endpoints of one site.
type Spider struct {
	Name         string
	Host         string
	StartURL     string
	LoginURL     string
	LoginPageURL string
}

// VolMoe returns the vol.moe spider rooted at host; an empty host means
// https://vol.moe.
func VolMoe(host string) Spider {
	if host == "" {
		host = "https://vol.moe"
	}
	return Spider{
		Name:         VolMoeName,
		Host:         host,
		StartURL:     host + "/myfollow.php",
		LoginURL:     host + "/login_do.php",
		LoginPageURL: host + "/login.php",
	}
}

// Factory builds a ready-to-run crawler from runtime options.
type Factory func(opts Options) (*Crawler, error)

// Registry maps spider names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	spiders   map[string]Spider
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		spiders:   make(map[string]Spider),
	}
}

// DefaultRegistry knows every built-in spider.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterSpider(VolMoe(""))
	return r
}

func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// RegisterSpider registers s under its name with the standard wiring.
func (r *Registry) RegisterSpider(s Spider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spiders[s.Name] = s
	r.factories[s.Name] = func(opts Options) (*Crawler, error) {
		return New(s, opts)
	}
}

// Spider returns the endpoints of a spider added with RegisterSpider.
func (r *Registry) Spider(name string) (Spider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.spiders[name]
	if !ok {
		return Spider{}, fmt.Errorf("%w: %s", ErrUnknownSpider, name)
	}
	return s, nil
}

// Names lists the registered spiders in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// New builds the crawler of spider name.
func (r *Registry) New(name string, opts Options) (*Crawler, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSpider, name)
	}
	return f(opts)
}
