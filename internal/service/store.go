package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"prezstore/internal/model"
)

// Backend identifies which storage implementation is active. The route layer
// branches on this once at startup instead of probing capabilities at
// request time.
type Backend string

const (
	// BackendDurable is the Postgres + blob-mirror implementation with
	// caching and version history.
	BackendDurable Backend = "durable"
	// BackendFilesystem is the local JSON-file fallback without versioning.
	BackendFilesystem Backend = "filesystem"
)

// VersionHistory is the listing view of a presentation's ledger.
// CurrentVersionID is the version the live state was restored from, empty
// when the live state was produced by ordinary writes.
type VersionHistory struct {
	CurrentVersionID string              `json:"current_version_id,omitempty"`
	Versions         []model.VersionMeta `json:"versions"`
}

// ReconcileReport describes the outcome of orphan reconciliation for one
// slide.
type ReconcileReport struct {
	SlideID string `json:"slide_id"`
	Index   int    `json:"index"`
	Removed int    `json:"removed"`
}

// PresentationStore is the single entry point the rest of the application
// uses for presentation persistence. Two implementations exist: the durable
// store (Postgres + MinIO mirror + cache + version ledger) and the
// filesystem fallback.
//
// "Not found" is reported as ErrNotFound; durable-backend infrastructure
// failures surface as *PersistenceError and are never downgraded.
type PresentationStore interface {
	// Backend reports which implementation is active.
	Backend() Backend

	// Save assigns a fresh id, stamps created_at and persists the
	// presentation, returning the assigned id.
	Save(ctx context.Context, p *model.Presentation) (string, error)

	// Load returns the presentation by id, consulting the cache first.
	Load(ctx context.Context, id string) (*model.Presentation, error)

	// Update shallow-merges the patch into the current document and
	// persists the result. When createVersion is set, the pre-update state
	// is appended to the version ledger first (backup-before-mutate).
	Update(ctx context.Context, id string, patch model.PresentationPatch, updatedBy, changeSummary string, createVersion bool) (*model.Presentation, error)

	// Delete removes the presentation and its versions, reporting whether
	// it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// ListIDs enumerates all presentation ids (administrative listing, not
	// cached).
	ListIDs(ctx context.Context) ([]string, error)

	// VersionHistory lists the presentation's versions newest-first.
	VersionHistory(ctx context.Context, id string) (*VersionHistory, error)

	// RestoreVersion overwrites the live state with the given version's
	// content. With createBackup set, the pre-restore live state is first
	// appended to the ledger so the restore itself is undoable. History only
	// grows: no restore ever removes a version.
	RestoreVersion(ctx context.Context, id, versionID string, createBackup bool) (*model.Presentation, error)
}

// logJSON emits one structured log line, matching the format used across the
// service.
func logJSON(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		data["level"] = "info"
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal log entry: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}

// warnMirror logs a best-effort mirror failure. Mirror errors are a
// side-channel warning only; they never propagate.
func warnMirror(event, key string, err error) {
	logJSON(map[string]any{
		"component": "storage",
		"event":     event,
		"level":     "warn",
		"key":       key,
		"error":     err.Error(),
	})
}
