// Package keyring stores the session sealing key and the account password
// in the operating system's keyring, falling back to a key file when no
// keyring service is reachable.
package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/warpdl/warpcrawl/pkg/logger"
	"github.com/zalando/go-keyring"
)

const (
	DefaultApp      = "warpcrawl"
	DefaultKeyField = "session-key"
	passwordPrefix  = "password:"
)

// ErrNotFound is returned when no secret is stored under the requested name.
var ErrNotFound = keyring.ErrNotFound

type Keyring struct {
	AppName  string
	KeyField string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

func NewKeyring() *Keyring {
	return &Keyring{
		AppName:  DefaultApp,
		KeyField: DefaultKeyField,
	}
}

// SetKey generates a fresh 32-byte key and stores it hex-encoded.
func (k *Keyring) SetKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := randRead(key); err != nil {
		return nil, err
	}
	if err := keyringSet(k.AppName, k.KeyField, hex.EncodeToString(key)); err != nil {
		return nil, err
	}
	return key, nil
}

func (k *Keyring) GetKey() ([]byte, error) {
	value, err := keyringGet(k.AppName, k.KeyField)
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid key format: %w", err)
	}
	return key, nil
}

func (k *Keyring) DeleteKey() error {
	return keyringDelete(k.AppName, k.KeyField)
}

// SetPassword stores the site password for user.
func (k *Keyring) SetPassword(user, password string) error {
	return keyringSet(k.AppName, passwordPrefix+user, password)
}

// GetPassword returns the stored site password for user or ErrNotFound.
func (k *Keyring) GetPassword(user string) (string, error) {
	return keyringGet(k.AppName, passwordPrefix+user)
}

func (k *Keyring) DeletePassword(user string) error {
	return keyringDelete(k.AppName, passwordPrefix+user)
}

// KeyStore is satisfied by both the keyring and the file fallback.
type KeyStore interface {
	SetKey() ([]byte, error)
	GetKey() ([]byte, error)
	DeleteKey() error
}

// Provider resolves the session sealing key, preferring the system keyring.
type Provider struct {
	Primary  KeyStore
	Fallback KeyStore
	Log      logger.Logger
}

// NewProvider builds a Provider over the system keyring with a key file in dir
// as fallback.
func NewProvider(dir string, l logger.Logger) *Provider {
	return &Provider{
		Primary:  NewKeyring(),
		Fallback: NewFileKeyStore(nil, dir),
		Log:      logger.OrNop(l),
	}
}

// LoadOrCreate returns the existing key or generates and stores a new one.
// A keyring failure other than "not found" moves the lookup to the fallback.
func (p *Provider) LoadOrCreate() ([]byte, error) {
	log := logger.OrNop(p.Log)
	key, err := loadOrCreate(p.Primary)
	if err == nil {
		return key, nil
	}
	if p.Fallback == nil {
		return nil, err
	}
	log.Warning("system keyring unavailable, using key file: %v", err)
	return loadOrCreate(p.Fallback)
}

func loadOrCreate(s KeyStore) ([]byte, error) {
	key, err := s.GetKey()
	if err == nil {
		return key, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return s.SetKey()
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, errKeyFileMissing)
}
