package acquire

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/media-grab-go/internal/domain"
)

func TestSizeGate_UnderLimitPasses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, make([]byte, 204800), 0644))

	gate := NewSizeGate(1024*1024, zap.NewNop())
	size, err := gate.Check(path)

	require.NoError(t, err)
	assert.Equal(t, int64(204800), size)
	assert.FileExists(t, path)
}

func TestSizeGate_OverLimitRejectsAndDeletes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	sidecar := filepath.Join(dir, "clip.jpg")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0644))
	require.NoError(t, os.WriteFile(sidecar, []byte("thumb"), 0644))

	gate := NewSizeGate(1024, zap.NewNop())
	size, err := gate.Check(path)

	assert.ErrorIs(t, err, domain.ErrTooLarge)
	assert.Equal(t, int64(2048), size)
	// Rejection deletes the artifact and its sidecars before returning.
	assert.NoFileExists(t, path)
	assert.NoFileExists(t, sidecar)
}

func TestSizeGate_ExactLimitPasses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, make([]byte, 1024), 0644))

	gate := NewSizeGate(1024, zap.NewNop())
	_, err := gate.Check(path)
	assert.NoError(t, err)
}

func TestSizeGate_ZeroLimitDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0644))

	gate := NewSizeGate(0, zap.NewNop())
	size, err := gate.Check(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), size)
}

func TestSizeGate_MissingFile(t *testing.T) {
	gate := NewSizeGate(1024, zap.NewNop())
	_, err := gate.Check(filepath.Join(t.TempDir(), "gone.mp4"))
	assert.Error(t, err)
}
