package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/lite-lake/peerdns/internal/constants"
	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
)

// FileStore keeps one YAML document per snapshot under dir/<key>/.
type FileStore struct {
	dir   string
	flock *flock.Flock
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, constants.DirPermissionOwnerRWX); err != nil {
		return nil, fmt.Errorf("creating backup directory %s: %w", dir, domain.WrapOp("create backup dir", err))
	}
	return &FileStore{
		dir:   dir,
		flock: flock.New(filepath.Join(dir, constants.LockFileName)),
	}, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) Save(ctx context.Context, snap *entity.Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot %s: %w", snap.ID, domain.WrapOp("marshal snapshot", err))
	}

	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	defer s.flock.Unlock()

	keyDir := filepath.Join(s.dir, keyDirName(snap.Key))
	if err := os.MkdirAll(keyDir, constants.DirPermissionOwnerRWX); err != nil {
		return fmt.Errorf("creating %s: %w", keyDir, domain.WrapOp("create snapshot dir", err))
	}

	path := filepath.Join(keyDir, snapshotName(snap)+constants.SnapshotFileExt)
	tmpPath := filepath.Join(keyDir, "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tmpPath, data, constants.FilePermissionOwnerRW); err != nil {
		return fmt.Errorf("writing temp snapshot file %s: %w", tmpPath, domain.WrapOp("write snapshot", err))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming snapshot file from %s to %s: %w", tmpPath, path, domain.WrapOp("rename snapshot", err))
	}
	return nil
}

func (s *FileStore) List(ctx context.Context, key entity.SnapshotKey) ([]entity.SnapshotInfo, error) {
	paths, err := s.files()
	if err != nil {
		return nil, err
	}

	infos := make([]entity.SnapshotInfo, 0, len(paths))
	for _, path := range paths {
		snap, err := readSnapshot(path)
		if err != nil {
			return nil, err
		}
		if matchesKey(snap.Key, key) {
			infos = append(infos, infoOf(snap, path))
		}
	}
	newestFirst(infos)
	return infos, nil
}

func (s *FileStore) Load(ctx context.Context, id string) (*entity.Snapshot, error) {
	path, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return readSnapshot(path)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	defer s.flock.Unlock()

	path, err := s.find(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing snapshot %s: %w", path, domain.WrapOp("delete snapshot", err))
	}
	return nil
}

func (s *FileStore) files() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*", "*"+constants.SnapshotFileExt))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", s.dir, err)
	}
	return paths, nil
}

func (s *FileStore) find(id string) (string, error) {
	paths, err := s.files()
	if err != nil {
		return "", err
	}
	suffix := "_" + id + constants.SnapshotFileExt
	for _, path := range paths {
		if strings.HasSuffix(filepath.Base(path), suffix) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, id)
}

func readSnapshot(path string) (*entity.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file %s: %w", path, domain.WrapOp("read snapshot", err))
	}
	var snap entity.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot file %s: %w", path, domain.WrapOp("parse snapshot", err))
	}
	return &snap, nil
}

var keyDirReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")

func keyDirName(key entity.SnapshotKey) string {
	name := strings.Join([]string{key.Zone, entity.NormalizeName(key.RecordName), strings.ToLower(string(key.Strategy))}, "__")
	return keyDirReplacer.Replace(name)
}
