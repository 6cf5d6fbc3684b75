package keys

import (
	"errors"
	"fmt"
	"strings"
)

// KeyStore provides access to generation backend API keys, one per provider.
type KeyStore interface {
	Get(provider string) (string, error)
	Put(provider, key string) error
	Delete(provider string) error
}

var ErrKeyNotFound = errors.New("api key not found")

// ConfigStore keeps keys in config-managed storage (generator.api_key or
// the INKWELL_GENERATOR_API_KEY environment variable).
type ConfigStore struct {
	Keys map[string]string
}

func (s *ConfigStore) Get(provider string) (string, error) {
	if s == nil || s.Keys == nil {
		return "", ErrKeyNotFound
	}
	val := strings.TrimSpace(s.Keys[provider])
	if val == "" {
		return "", ErrKeyNotFound
	}
	return val, nil
}

func (s *ConfigStore) Put(provider, key string) error {
	if s.Keys == nil {
		s.Keys = map[string]string{}
	}
	s.Keys[provider] = key
	return nil
}

func (s *ConfigStore) Delete(provider string) error {
	if s == nil || s.Keys == nil {
		return nil
	}
	delete(s.Keys, provider)
	return nil
}

// ForProvider returns the store named by generator.key_provider.
func ForProvider(name string, configured map[string]string) (KeyStore, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "config":
		return &ConfigStore{Keys: configured}, nil
	case "keyring":
		return &KeyringStore{}, nil
	default:
		return nil, fmt.Errorf("unknown key provider %q", name)
	}
}

// Mask hides all but the last four characters of a key for display.
func Mask(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
