package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestConfigStoreRoundTrip(t *testing.T) {
	store := &ConfigStore{}

	require.NoError(t, store.Put("gemini", "secret"))
	got, err := store.Get("gemini")
	require.NoError(t, err)
	assert.Equal(t, "secret", got)

	require.NoError(t, store.Delete("gemini"))
	_, err = store.Get("gemini")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestConfigStoreBlankIsMissing(t *testing.T) {
	store := &ConfigStore{Keys: map[string]string{"ollama": "   "}}
	_, err := store.Get("ollama")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	var nilStore *ConfigStore
	_, err = nilStore.Get("ollama")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKeyringStoreRoundTrip(t *testing.T) {
	keyring.MockInit()
	store := &KeyringStore{Service: "inkwell-test"}

	_, err := store.Get("gemini")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Put("gemini", "abc123"))
	got, err := store.Get("gemini")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)

	require.NoError(t, store.Delete("gemini"))
	require.NoError(t, store.Delete("gemini"), "deleting a missing key is not an error")
}

func TestForProvider(t *testing.T) {
	s, err := ForProvider("", map[string]string{"gemini": "k"})
	require.NoError(t, err)
	got, err := s.Get("gemini")
	require.NoError(t, err)
	assert.Equal(t, "k", got)

	s, err = ForProvider("Keyring", nil)
	require.NoError(t, err)
	assert.IsType(t, &KeyringStore{}, s)

	_, err = ForProvider("vault", nil)
	assert.Error(t, err)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "****5678", Mask("12345678"))
}
