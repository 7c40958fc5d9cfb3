// Package encryption seals the persisted cookie blob of a session so that
// session tokens are not stored in clear text on disk.
package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	gcmPrefix    = "gcm1"
	scryptPrefix = "scr1"
	saltSize     = 16
)

// scrypt cost parameters for passphrase-derived keys.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
	keySize = 32
)

var (
	// ErrNotSealed is returned when opening data that carries no known seal prefix.
	ErrNotSealed = errors.New("data is not sealed")
	// ErrEmptyPassphrase is returned by PassphraseSealer when no passphrase is set.
	ErrEmptyPassphrase = errors.New("passphrase is empty")
)

// Sealer encrypts and decrypts a whole serialized blob.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// IsSealed reports whether data starts with a prefix written by one of the
// sealers in this package.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, []byte(gcmPrefix)) || bytes.HasPrefix(data, []byte(scryptPrefix))
}

// EncryptValue encrypts value with AES-GCM under key. The output is
// "gcm1" || nonce || ciphertext.
func EncryptValue(value []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	ciphertext := gcm.Seal(nil, nonce, value, nil)
	out := make([]byte, 0, len(gcmPrefix)+len(nonce)+len(ciphertext))
	out = append(out, gcmPrefix...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// DecryptValue reverses EncryptValue.
func DecryptValue(ciphertext []byte, key []byte) ([]byte, error) {
	if !bytes.HasPrefix(ciphertext, []byte(gcmPrefix)) {
		return nil, ErrNotSealed
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < len(gcmPrefix)+nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[len(gcmPrefix) : len(gcmPrefix)+nonceSize]
	data := ciphertext[len(gcmPrefix)+nonceSize:]
	return gcm.Open(nil, nonce, data, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// KeySealer seals with a raw AES key (16, 24 or 32 bytes).
type KeySealer struct {
	Key []byte
}

func (k *KeySealer) Seal(plaintext []byte) ([]byte, error) {
	return EncryptValue(plaintext, k.Key)
}

func (k *KeySealer) Open(sealed []byte) ([]byte, error) {
	return DecryptValue(sealed, k.Key)
}

// PassphraseSealer derives an AES-256 key from a passphrase with scrypt.
// A fresh salt is generated on every Seal and stored in front of the
// ciphertext: "scr1" || salt || EncryptValue(...).
type PassphraseSealer struct {
	Passphrase string
}

var randRead = rand.Read

func (p *PassphraseSealer) Seal(plaintext []byte) ([]byte, error) {
	if p.Passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	salt := make([]byte, saltSize)
	if _, err := randRead(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	key, err := DeriveKey(p.Passphrase, salt)
	if err != nil {
		return nil, err
	}
	sealed, err := EncryptValue(plaintext, key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(scryptPrefix)+saltSize+len(sealed))
	out = append(out, scryptPrefix...)
	out = append(out, salt...)
	out = append(out, sealed...)
	return out, nil
}

func (p *PassphraseSealer) Open(sealed []byte) ([]byte, error) {
	if p.Passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	if !bytes.HasPrefix(sealed, []byte(scryptPrefix)) {
		return nil, ErrNotSealed
	}
	if len(sealed) < len(scryptPrefix)+saltSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	salt := sealed[len(scryptPrefix) : len(scryptPrefix)+saltSize]
	key, err := DeriveKey(p.Passphrase, salt)
	if err != nil {
		return nil, err
	}
	return DecryptValue(sealed[len(scryptPrefix)+saltSize:], key)
}

// DeriveKey stretches passphrase into a 32-byte key with scrypt.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

var (
	_ Sealer = (*KeySealer)(nil)
	_ Sealer = (*PassphraseSealer)(nil)
)
