package acquire

import (
	"os"
	"path/filepath"
	"strings"
)

// sidecarExtensions are the companion files an acquisition attempt may
// leave next to the primary artifact: thumbnails, alternate containers,
// extractor partials and metadata dumps.
var sidecarExtensions = []string{
	".jpg", ".jpeg", ".png", ".webp",
	".mp4", ".mov", ".webm",
	".part", ".ytdl", ".info.json",
}

// Cleanup removes the artifact at path and every sidecar sharing its base
// name. It is idempotent: missing files are not errors, and the worst
// real failure is reported without stopping the sweep.
func Cleanup(path string) error {
	if path == "" {
		return nil
	}

	var lastErr error
	remove := func(p string) {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}

	remove(path)

	base := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range sidecarExtensions {
		sidecar := base + ext
		if sidecar == path {
			continue
		}
		remove(sidecar)
	}
	return lastErr
}
