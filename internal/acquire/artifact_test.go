package acquire

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestCleanup_RemovesPrimaryAndSidecars(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "tiktok_video_123.mp4")

	touch(t, primary)
	touch(t, filepath.Join(dir, "tiktok_video_123.jpg"))
	touch(t, filepath.Join(dir, "tiktok_video_123.part"))
	touch(t, filepath.Join(dir, "tiktok_video_123.info.json"))
	// A neighbour with a different base name must survive.
	survivor := filepath.Join(dir, "tiktok_video_456.mp4")
	touch(t, survivor)

	require.NoError(t, Cleanup(primary))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tiktok_video_456.mp4", entries[0].Name())
}

func TestCleanup_Idempotent(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "instagram_photo_abc.jpg")
	touch(t, primary)

	require.NoError(t, Cleanup(primary))
	// Second sweep finds nothing and still succeeds.
	require.NoError(t, Cleanup(primary))
	assert.NoFileExists(t, primary)
}

func TestCleanup_MissingFile(t *testing.T) {
	assert.NoError(t, Cleanup(filepath.Join(t.TempDir(), "never_existed.mp4")))
}

func TestCleanup_EmptyPath(t *testing.T) {
	assert.NoError(t, Cleanup(""))
}
