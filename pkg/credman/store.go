// Package credman manages the per-site sessions of a crawl: the cookie jars
// used on every outbound request, their persisted form on disk, and the
// site credentials used to log in again when a session expires.
package credman

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"github.com/warpdl/warpcrawl/pkg/credman/encryption"
	"github.com/warpdl/warpcrawl/pkg/credman/types"
	"github.com/warpdl/warpcrawl/pkg/logger"
)

const (
	DefaultDir     = ".cookies"
	fileExt        = ".cookies"
	fileMode       = 0600
	persistVersion = 1
)

var (
	// ErrNotRegularFile is returned by Load when the cookie path exists but
	// is a directory or another non-regular file.
	ErrNotRegularFile = errors.New("cookie path is not a regular file")
	// ErrSealedWithoutKey is returned when a sealed file is read by a store
	// that has no Sealer configured.
	ErrSealedWithoutKey = errors.New("cookie file is encrypted but no key is configured")
	// ErrUnsupportedVersion is returned for files written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported cookie file version")
)

type persisted struct {
	Version int
	Hosts   map[string][]types.Cookie
}

type StoreOptions struct {
	// Dir holds one file per site identity; defaults to DefaultDir.
	Dir string
	// Enabled turns persistence on. A disabled store never touches Fs.
	Enabled bool
	Fs      afero.Fs
	// Sealer encrypts the file contents when set.
	Sealer encryption.Sealer
	Logger logger.Logger
}

// SessionStore loads and saves the hostname to cookie jar mapping of each
// site. Saves always overwrite the whole file.
type SessionStore struct {
	dir     string
	enabled bool
	fs      afero.Fs
	sealer  encryption.Sealer
	log     logger.Logger
}

func NewSessionStore(opts StoreOptions) *SessionStore {
	if opts.Dir == "" {
		opts.Dir = DefaultDir
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	return &SessionStore{
		dir:     opts.Dir,
		enabled: opts.Enabled,
		fs:      opts.Fs,
		sealer:  opts.Sealer,
		log:     logger.OrNop(opts.Logger),
	}
}

func (s *SessionStore) Enabled() bool {
	return s.enabled
}

// Path returns the cookie file of siteID.
func (s *SessionStore) Path(siteID string) string {
	return filepath.Join(s.dir, siteID+fileExt)
}

// Load returns the persisted mapping of siteID. A missing file yields an
// empty mapping.
func (s *SessionStore) Load(siteID string) (map[string]*Jar, error) {
	jars, _, err := s.load(siteID)
	return jars, err
}

func (s *SessionStore) load(siteID string) (map[string]*Jar, bool, error) {
	jars := make(map[string]*Jar)
	if !s.enabled {
		return jars, false, nil
	}
	path := s.Path(siteID)
	fi, err := s.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Info("no cookie file for %s at %s", siteID, path)
			return jars, false, nil
		}
		return nil, false, fmt.Errorf("stat %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, false, fmt.Errorf("%s: %w", path, ErrNotRegularFile)
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	if encryption.IsSealed(data) {
		if s.sealer == nil {
			return nil, false, fmt.Errorf("%s: %w", path, ErrSealedWithoutKey)
		}
		if data, err = s.sealer.Open(data); err != nil {
			return nil, false, fmt.Errorf("decrypt %s: %w", path, err)
		}
	}
	var p persisted
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", path, err)
	}
	if p.Version > persistVersion {
		return nil, false, fmt.Errorf("%s: %w %d", path, ErrUnsupportedVersion, p.Version)
	}
	for host, cookies := range p.Hosts {
		jar := NewJar()
		jar.Add(cookies...)
		jars[host] = jar
	}
	s.log.Debug("loaded cookies for %d host(s) from %s", len(jars), path)
	return jars, true, nil
}

// Save overwrites the cookie file of siteID with jars. The directory is
// created when missing.
func (s *SessionStore) Save(siteID string, jars map[string]*Jar) error {
	if !s.enabled {
		return nil
	}
	p := persisted{Version: persistVersion, Hosts: make(map[string][]types.Cookie, len(jars))}
	for host, jar := range jars {
		if jar == nil {
			continue
		}
		p.Hosts[host] = jar.Entries()
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&p); err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}
	data := buf.Bytes()
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(data)
		if err != nil {
			return fmt.Errorf("encrypt cookies: %w", err)
		}
		data = sealed
	}
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create cookie dir: %w", err)
	}
	path := s.Path(siteID)
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, fileMode); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	s.log.Debug("saved cookies for %d host(s) to %s", len(p.Hosts), path)
	return nil
}

// Hosts lists the hostnames of a mapping in sorted order.
func Hosts(jars map[string]*Jar) []string {
	hosts := make([]string, 0, len(jars))
	for h := range jars {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}
