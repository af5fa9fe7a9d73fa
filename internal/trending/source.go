// internal/trending/source.go
package trending

import (
	"context"

	"github.com/rovshanmuradov/memescope/internal/risk"
	"github.com/rovshanmuradov/memescope/internal/snapshot"
)

// FileSource re-reads a snapshot file on every refresh.
type FileSource struct {
	Path string
}

func (f FileSource) Snapshots(_ context.Context) ([]risk.Snapshot, error) {
	return snapshot.LoadFile(f.Path)
}

// StaticSource serves a fixed list.
type StaticSource []risk.Snapshot

func (s StaticSource) Snapshots(_ context.Context) ([]risk.Snapshot, error) {
	out := make([]risk.Snapshot, len(s))
	copy(out, s)
	return out, nil
}
