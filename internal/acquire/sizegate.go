package acquire

import (
	"os"

	"go.uber.org/zap"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// SizeGate enforces the global artifact ceiling after acquisition. An
// artifact over the limit is removed together with its sidecars before
// the rejection is reported, so nothing oversized survives on disk.
type SizeGate struct {
	Limit  int64
	logger *zap.Logger
}

// NewSizeGate creates a gate with the configured byte ceiling. A zero or
// negative limit disables the gate.
func NewSizeGate(limit int64, logger *zap.Logger) *SizeGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SizeGate{Limit: limit, logger: logger}
}

// Check stats the artifact and rejects it with domain.ErrTooLarge when it
// exceeds the limit. On rejection the artifact is already deleted when
// Check returns.
func (g *SizeGate) Check(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	size := info.Size()

	if g.Limit > 0 && size > g.Limit {
		g.logger.Warn("artifact over size limit, discarding",
			zap.String("path", path),
			zap.Int64("size", size),
			zap.Int64("limit", g.Limit))
		if cleanErr := Cleanup(path); cleanErr != nil {
			g.logger.Error("cleanup after size rejection failed",
				zap.String("path", path), zap.Error(cleanErr))
		}
		return size, domain.ErrTooLarge
	}
	return size, nil
}
