package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/lite-lake/peerdns/internal/constants"
	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
)

var bucketSnapshots = []byte(constants.BoltSnapshotBucketName)

// BoltStore keeps snapshots in a single bucket keyed by timestamp and id,
// so cursor order is creation order.
type BoltStore struct {
	db   *bolt.DB
	path string
}

func NewBoltStore(dataDir string) (*BoltStore, error) {
	if err := os.MkdirAll(dataDir, constants.DirPermissionOwnerRWX); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, constants.BoltDatabaseFile)

	db, err := bolt.Open(dbPath, constants.FilePermissionOwnerRW, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSnapshots); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketSnapshots, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, path: dbPath}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Save(ctx context.Context, snap *entity.Snapshot) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		return b.Put([]byte(snapshotName(snap)), data)
	})
}

func (s *BoltStore) List(ctx context.Context, key entity.SnapshotKey) ([]entity.SnapshotInfo, error) {
	var infos []entity.SnapshotInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var snap entity.Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return fmt.Errorf("decoding snapshot %s: %w", k, err)
			}
			if matchesKey(snap.Key, key) {
				infos = append(infos, infoOf(&snap, s.path+"#"+string(k)))
			}
		}
		return nil
	})
	return infos, err
}

func (s *BoltStore) Load(ctx context.Context, id string) (*entity.Snapshot, error) {
	var snap entity.Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		k, v := s.find(tx, id)
		if k == nil {
			return fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, id)
		}
		return json.Unmarshal(v, &snap)
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *BoltStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		k, _ := s.find(tx, id)
		if k == nil {
			return fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, id)
		}
		return tx.Bucket(bucketSnapshots).Delete(k)
	})
}

func (s *BoltStore) find(tx *bolt.Tx, id string) ([]byte, []byte) {
	suffix := []byte("_" + id)
	c := tx.Bucket(bucketSnapshots).Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if bytes.HasSuffix(k, suffix) {
			return append([]byte(nil), k...), v
		}
	}
	return nil, nil
}
