package keys

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const DefaultKeyringService = "inkwell"

// KeyringStore keeps API keys in the system keyring, one entry per provider.
type KeyringStore struct {
	Service string
}

func (s *KeyringStore) Get(provider string) (string, error) {
	val, err := keyring.Get(s.service(), provider)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	if val == "" {
		return "", ErrKeyNotFound
	}
	return val, nil
}

func (s *KeyringStore) Put(provider, key string) error {
	return keyring.Set(s.service(), provider, key)
}

func (s *KeyringStore) Delete(provider string) error {
	err := keyring.Delete(s.service(), provider)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func (s *KeyringStore) service() string {
	if s != nil && s.Service != "" {
		return s.Service
	}
	return DefaultKeyringService
}

// KeyringAvailable reports whether a system keyring backend appears supported.
func KeyringAvailable() bool {
	_, err := keyring.Get(DefaultKeyringService, "_probe_")
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return true
	}
	return !errors.Is(err, keyring.ErrUnsupportedPlatform)
}
