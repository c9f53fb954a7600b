package backup

import (
	"context"
	"fmt"
	"slices"

	"github.com/lite-lake/peerdns/internal/constants"
	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
)

// Store persists snapshots. List returns newest first; a zero key lists everything.
type Store interface {
	Save(ctx context.Context, snap *entity.Snapshot) error
	List(ctx context.Context, key entity.SnapshotKey) ([]entity.SnapshotInfo, error)
	Load(ctx context.Context, id string) (*entity.Snapshot, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

const (
	BackendFile = "file"
	BackendBolt = "bolt"
)

// Open returns the store for backend rooted at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(path)
	case BackendBolt:
		return NewBoltStore(path)
	default:
		return nil, fmt.Errorf("%w: backup backend %q", domain.ErrInvalidType, backend)
	}
}

func snapshotName(snap *entity.Snapshot) string {
	return snap.CreatedAt.UTC().Format(constants.SnapshotTimeLayout) + "_" + snap.ID
}

func matchesKey(key, want entity.SnapshotKey) bool {
	if want == (entity.SnapshotKey{}) {
		return true
	}
	return key.Zone == want.Zone &&
		entity.NormalizeName(key.RecordName) == entity.NormalizeName(want.RecordName) &&
		key.Strategy == want.Strategy
}

func newestFirst(infos []entity.SnapshotInfo) {
	slices.SortStableFunc(infos, func(a, b entity.SnapshotInfo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func infoOf(snap *entity.Snapshot, location string) entity.SnapshotInfo {
	return entity.SnapshotInfo{
		ID:        snap.ID,
		CreatedAt: snap.CreatedAt,
		Key:       snap.Key,
		Records:   len(snap.Records),
		Location:  location,
	}
}
