package storage

import "context"

// SnapshotArchiver stores ruleset revisions that a save replaced, so a coach
// can audit or recover any historical rule package. Archiving is best-effort:
// callers log failures but never block a save on the archive.
type SnapshotArchiver interface {
	// ArchiveSnapshot stores one JSON ruleset payload and returns the object
	// key it was written under. The version label becomes part of the key.
	ArchiveSnapshot(ctx context.Context, version string, payload []byte) (string, error)
}

// NoopArchiver discards snapshots. Used when no object storage is configured.
type NoopArchiver struct{}

func (NoopArchiver) ArchiveSnapshot(ctx context.Context, version string, payload []byte) (string, error) {
	return "", nil
}
