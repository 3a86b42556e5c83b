package storage

import "context"

// Package storage contains the object-store abstraction used for best-effort
// JSON mirrors of presentations and their version snapshots. Mirrors are
// never authoritative: writes here must not fail the primary operation, and
// reads are only consulted as a fallback when the durable table is
// unreachable.
//
// Key layout: presentations/{id}.json for the live mirror,
// versions/{id}/{version_id}.json for per-version mirrors.

// Storage is a reusable, S3-compatible object storage client interface for
// small JSON payloads.
type Storage interface {
	// Put uploads data under the given key, overwriting any existing object.
	Put(ctx context.Context, key string, data []byte) error
	// Get retrieves an object's full content.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// List returns the keys of all objects under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// PresentationKey is the mirror key for a presentation's live state.
func PresentationKey(id string) string {
	return "presentations/" + id + ".json"
}

// VersionKey is the mirror key for one version snapshot.
func VersionKey(id, versionID string) string {
	return "versions/" + id + "/" + versionID + ".json"
}

// VersionPrefix is the mirror key prefix holding all of a presentation's
// version snapshots.
func VersionPrefix(id string) string {
	return "versions/" + id + "/"
}
