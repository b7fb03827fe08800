package dto

import "time"

// SnapshotState describes how a directory response was produced.
type SnapshotState string

const (
	// SnapshotFresh means the cached snapshot was within its TTL.
	SnapshotFresh SnapshotState = "fresh"
	// SnapshotRefreshed means the upstream sheet was fetched for this request.
	SnapshotRefreshed SnapshotState = "refreshed"
	// SnapshotStale means the refresh failed and an older snapshot was served.
	SnapshotStale SnapshotState = "stale"
)

// DirectoryResult is the serialized company array plus how it was obtained.
type DirectoryResult struct {
	Body      []byte
	State     SnapshotState
	FetchedAt time.Time
}

// Degraded reports whether the body is a fallback served after a failed refresh.
func (r DirectoryResult) Degraded() bool {
	return r.State == SnapshotStale
}
