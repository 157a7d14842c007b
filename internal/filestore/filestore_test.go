package filestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveProfileImage(t *testing.T) {
	store := New(t.TempDir())

	path, err := store.SaveProfileImage("avatar.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".png"))
	assert.Contains(t, filepath.Base(path), "image-")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestSaveProfileImageUniqueNames(t *testing.T) {
	store := New(t.TempDir())

	a, err := store.SaveProfileImage("avatar.jpg", strings.NewReader("one"))
	require.NoError(t, err)
	b, err := store.SaveProfileImage("avatar.jpg", strings.NewReader("two"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSaveProfileImageRejectsOtherExtensions(t *testing.T) {
	store := New(t.TempDir())

	for _, name := range []string{"doc.pdf", "pic.gif", "script.sh", "noext"} {
		_, err := store.SaveProfileImage(name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrUnsupportedImage, name)
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	path, err := store.SaveProfileImage("avatar.png", strings.NewReader("bytes"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// repeated removal and empty references are no-ops
	assert.NoError(t, store.Remove(path))
	assert.NoError(t, store.Remove(""))
}

func TestRemoveRefusesOutsideDir(t *testing.T) {
	store := New(t.TempDir())

	outside := filepath.Join(t.TempDir(), "stray.png")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	assert.Error(t, store.Remove(outside))
	_, err := os.Stat(outside)
	assert.NoError(t, err)
}
