package repository

// Package repository contains data access layer abstractions.
// Implementations can live in subpackages (e.g., postgres) inside this
// directory. No business logic here — strictly persistence operations.

import (
	"context"

	"prezstore/internal/model"
)

// PresentationRepository is the authoritative row store for presentations.
// "Not found" is reported as sql.ErrNoRows by SQL-backed implementations;
// callers translate it at the service boundary.
type PresentationRepository interface {
	// Insert stores a new presentation row. The caller provides ID and
	// CreatedAt.
	Insert(ctx context.Context, p *model.Presentation) error

	// FindByID returns a presentation by its ID.
	FindByID(ctx context.Context, id string) (*model.Presentation, error)

	// Update overwrites an existing row in full (last writer wins).
	Update(ctx context.Context, p *model.Presentation) error

	// Delete removes a row by ID, reporting whether it existed. Version rows
	// are removed by the database via ON DELETE CASCADE.
	Delete(ctx context.Context, id string) (bool, error)

	// ListIDs enumerates all presentation ids, newest first. Unpaginated:
	// this is an administrative listing, not a hot path.
	ListIDs(ctx context.Context) ([]string, error)
}

// VersionRepository is the append-only version ledger table. Rows are keyed
// by (presentation_id, version_id) and are never updated in place.
type VersionRepository interface {
	// Insert appends one immutable snapshot.
	Insert(ctx context.Context, v *model.Version) error

	// ListMeta returns version metadata newest-first, without payloads.
	ListMeta(ctx context.Context, presentationID string) ([]model.VersionMeta, error)

	// FindByID fetches one full snapshot by composite key.
	FindByID(ctx context.Context, presentationID, versionID string) (*model.Version, error)
}
