package credman

import (
	"errors"
	"fmt"

	"github.com/warpdl/warpcrawl/pkg/credman/keyring"
)

// ErrMissingCredentials is fatal at spider construction.
var ErrMissingCredentials = errors.New("missing site credentials")

// Credentials log in to a site. They are immutable once resolved.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Validate() error {
	switch {
	case c.Username == "" && c.Password == "":
		return fmt.Errorf("%w: username and password are empty", ErrMissingCredentials)
	case c.Username == "":
		return fmt.Errorf("%w: username is empty", ErrMissingCredentials)
	case c.Password == "":
		return fmt.Errorf("%w: password is empty", ErrMissingCredentials)
	}
	return nil
}

// String never prints the password.
func (c Credentials) String() string {
	return fmt.Sprintf("%s:****", c.Username)
}

// PasswordStore is implemented by keyring.Keyring.
type PasswordStore interface {
	GetPassword(user string) (string, error)
	SetPassword(user, password string) error
}

// ResolveCredentials completes a missing password from ps and validates the
// result.
func ResolveCredentials(user, password string, ps PasswordStore) (Credentials, error) {
	if password == "" && user != "" && ps != nil {
		pw, err := ps.GetPassword(user)
		switch {
		case err == nil:
			password = pw
		case errors.Is(err, keyring.ErrNotFound):
		default:
			return Credentials{}, fmt.Errorf("keyring lookup for %s: %w", user, err)
		}
	}
	c := Credentials{Username: user, Password: password}
	if err := c.Validate(); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

var _ PasswordStore = (*keyring.Keyring)(nil)
