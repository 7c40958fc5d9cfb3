package credman

import (
	"encoding/hex"
	"fmt"

	"github.com/warpdl/warpcrawl/pkg/credman/encryption"
)

// KeySource produces the raw sealing key, e.g. keyring.Provider.
type KeySource interface {
	LoadOrCreate() ([]byte, error)
}

// NewSealer picks how the cookie file is encrypted: an explicit hex key
// first, then a passphrase, then a key from src. It returns nil when none is
// available, in which case the file is written unencrypted.
func NewSealer(hexKey, passphrase string, src KeySource) (encryption.Sealer, error) {
	switch {
	case hexKey != "":
		key, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, fmt.Errorf("invalid cookie key: %w", err)
		}
		switch len(key) {
		case 16, 24, 32:
		default:
			return nil, fmt.Errorf("invalid cookie key length %d", len(key))
		}
		return &encryption.KeySealer{Key: key}, nil
	case passphrase != "":
		return &encryption.PassphraseSealer{Passphrase: passphrase}, nil
	case src != nil:
		key, err := src.LoadOrCreate()
		if err != nil {
			return nil, fmt.Errorf("load cookie key: %w", err)
		}
		return &encryption.KeySealer{Key: key}, nil
	}
	return nil, nil
}
