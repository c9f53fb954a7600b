package constants

import "time"

const (
	DefaultProvider      = "cloudflare"
	DefaultStrategy      = "SRV"
	DefaultPrefix        = "peer"
	DefaultTimeout       = 2 * time.Second
	DefaultTTL           = 300
	DefaultWeight        = 10
	DefaultRetries       = 3
	DefaultMaxRecords    = 0
	DefaultPriorityStart = 10
	DefaultPriorityStep  = 10
	DefaultConcurrency   = 16
	DefaultPeersFile     = "peers.txt"

	DefaultBackupBackend   = "file"
	DefaultBackupPath      = "backups"
	DefaultBackupRetention = 7

	// RetryPause separates a successful probe attempt from the next one.
	RetryPause = 100 * time.Millisecond
)

const (
	FilePermissionOwnerRW  = 0o600
	DirPermissionOwnerRWX  = 0o700
	SnapshotFileExt        = ".yaml"
	SnapshotTimeLayout     = "20060102T150405.000000000Z"
	BoltSnapshotBucketName = "snapshots"
	BoltDatabaseFile       = "peerdns.db"
	LockFileName           = ".peerdns.lock"
)

const (
	EnvDebug     = "PEERDNS_DEBUG"
	EnvLogFormat = "PEERDNS_LOG_FORMAT"
)

const (
	ExitOK           = 0
	ExitPartial      = 1
	ExitInputError   = 2
	ExitNoReachable  = 3
	ExitStoreFailure = 4
)
