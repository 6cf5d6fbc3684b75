package wire

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/inkwell/internal/config"
	"github.com/mithrel/inkwell/internal/shell"
)

func loadConfig(t *testing.T) *viper.Viper {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	v := viper.New()
	v.Set("data_dir", t.TempDir())
	require.NoError(t, config.Load(context.Background(), v))
	return v
}

func TestBuildAppWithHistory(t *testing.T) {
	v := loadConfig(t)
	app, err := BuildApp(context.Background(), v)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	_, err = os.Stat(filepath.Join(v.GetString("data_dir"), "inkwell.db"))
	assert.NoError(t, err)
}

func TestBuildAppFileGeneratorSession(t *testing.T) {
	v := loadConfig(t)
	v.Set("history.enabled", false)
	post := filepath.Join(t.TempDir(), "post.md")
	require.NoError(t, os.WriteFile(post, []byte("## Hello\n* world"), 0o600))
	v.Set("generator.provider", "file")
	v.Set("generator.file", post)

	app, err := BuildApp(context.Background(), v)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	sess, err := app.NewSession(nil)
	require.NoError(t, err)
	done, ok := sess.Submit(context.Background(), "anything")
	require.True(t, ok)
	st, ok := (<-done).(shell.Ready)
	require.True(t, ok)
	assert.Equal(t, "## Hello\n* world", st.Raw)

	p, err := app.Store.Posts.GetPost(context.Background(), st.PostID)
	require.NoError(t, err)
	assert.Equal(t, "file", p.Provider)
}

func TestNewLogger(t *testing.T) {
	v := viper.New()
	v.Set("log.level", "debug")
	v.Set("log.format", "json")
	var buf bytes.Buffer
	l, err := NewLogger(v, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	l.WithField("k", "v").Info("hi")
	assert.Contains(t, buf.String(), `"k":"v"`)

	v.Set("log.level", "loud")
	_, err = NewLogger(v, &buf)
	assert.Error(t, err)
}

func TestUnknownKeyProvider(t *testing.T) {
	v := loadConfig(t)
	v.Set("generator.key_provider", "vault")
	_, err := BuildApp(context.Background(), v)
	assert.Error(t, err)
}
