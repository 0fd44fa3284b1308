package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndDelete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "posts/a.png", strings.NewReader("image"), "image/png"))

	data, err := os.ReadFile(filepath.Join(s.Root(), "posts", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "image", string(data))
	assert.Equal(t, "/uploads/posts/a.png", s.URL("posts/a.png"))

	require.NoError(t, s.Delete(ctx, "posts/a.png"))
	_, err = os.Stat(filepath.Join(s.Root(), "posts", "a.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, "posts/a.png"))
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, key := range []string{"", "/etc/passwd", "../secret", "posts/../../x", "..", `posts\a.png`} {
		err := s.Save(context.Background(), key, strings.NewReader("x"), "")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestLocalStorageHonorsCancelledContext(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Save(ctx, "posts/a.png", strings.NewReader("x"), ""), context.Canceled)
}
