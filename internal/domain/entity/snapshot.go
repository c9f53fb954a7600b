package entity

import (
	"fmt"
	"time"
)

// SnapshotKey identifies the managed record set a snapshot belongs to.
// Retention is applied per key.
type SnapshotKey struct {
	Zone       string   `yaml:"zone" json:"zone"`
	RecordName string   `yaml:"record_name" json:"record_name"`
	Strategy   Strategy `yaml:"strategy" json:"strategy"`
}

func (k SnapshotKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Zone, k.RecordName, k.Strategy)
}

// Snapshot is an immutable capture of the managed records taken before a run mutates the zone.
type Snapshot struct {
	ID        string      `yaml:"id" json:"id"`
	CreatedAt time.Time   `yaml:"created_at" json:"created_at"`
	Provider  string      `yaml:"provider" json:"provider"`
	Key       SnapshotKey `yaml:",inline" json:"key"`
	Records   []DNSRecord `yaml:"records" json:"records"`
}

// SnapshotInfo is the listing view of a stored snapshot.
type SnapshotInfo struct {
	ID        string
	CreatedAt time.Time
	Key       SnapshotKey
	Records   int
	Location  string
}
