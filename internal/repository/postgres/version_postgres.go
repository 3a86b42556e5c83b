package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"prezstore/internal/model"
	"prezstore/internal/repository"
)

// VersionPostgres is a PostgreSQL implementation of
// repository.VersionRepository. Rows are immutable: inserted once, never
// updated, so the history table only grows.
type VersionPostgres struct {
	db *sql.DB
}

// NewVersionPostgres creates a new VersionPostgres repository.
func NewVersionPostgres(db *sql.DB) *VersionPostgres {
	return &VersionPostgres{db: db}
}

var _ repository.VersionRepository = (*VersionPostgres)(nil)

// Insert appends one snapshot row keyed by (presentation_id, version_id).
func (r *VersionPostgres) Insert(ctx context.Context, v *model.Version) error {
	const q = `
		INSERT INTO presentation_versions (presentation_id, version_id, version_data, created_by, created_at, change_summary)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	data, err := json.Marshal(v.Data)
	if err != nil {
		return fmt.Errorf("encode version_data: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q,
		v.PresentationID,
		v.VersionID,
		data,
		v.CreatedBy,
		v.CreatedAt,
		v.ChangeSummary,
	)
	return err
}

// ListMeta returns version metadata newest-first without payloads.
func (r *VersionPostgres) ListMeta(ctx context.Context, presentationID string) ([]model.VersionMeta, error) {
	const q = `
		SELECT version_id, created_by, created_at, change_summary
		FROM presentation_versions
		WHERE presentation_id = $1
		ORDER BY created_at DESC, version_id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, presentationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metas := make([]model.VersionMeta, 0)
	for rows.Next() {
		var m model.VersionMeta
		if err := rows.Scan(&m.VersionID, &m.CreatedBy, &m.CreatedAt, &m.ChangeSummary); err != nil {
			return nil, err
		}
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return metas, nil
}

// FindByID fetches one full snapshot by composite key.
func (r *VersionPostgres) FindByID(ctx context.Context, presentationID, versionID string) (*model.Version, error) {
	const q = `
		SELECT presentation_id, version_id, version_data, created_by, created_at, change_summary
		FROM presentation_versions
		WHERE presentation_id = $1 AND version_id = $2
	`
	row := r.db.QueryRowContext(ctx, q, presentationID, versionID)

	var (
		v    model.Version
		data []byte
	)
	if err := row.Scan(
		&v.PresentationID,
		&v.VersionID,
		&data,
		&v.CreatedBy,
		&v.CreatedAt,
		&v.ChangeSummary,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &v.Data); err != nil {
		return nil, fmt.Errorf("decode version_data: %w", err)
	}
	return &v, nil
}
