package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"prezstore/internal/model"
	"prezstore/internal/repository"
)

// PresentationPostgres is a PostgreSQL implementation of
// repository.PresentationRepository. It uses database/sql with parameterized
// queries and contains no business logic; structured fields (slides, config
// blobs) are stored as JSONB columns.
type PresentationPostgres struct {
	db *sql.DB
}

// NewPresentationPostgres creates a new PresentationPostgres repository.
func NewPresentationPostgres(db *sql.DB) *PresentationPostgres {
	return &PresentationPostgres{db: db}
}

var _ repository.PresentationRepository = (*PresentationPostgres)(nil)

const presentationColumns = `id, title, slides, created_at, updated_at, updated_by, restored_from, metadata, derivative_elements, theme_config`

// Insert stores a new presentation row.
func (r *PresentationPostgres) Insert(ctx context.Context, p *model.Presentation) error {
	const q = `
		INSERT INTO presentations (id, title, slides, created_at, updated_at, updated_by, restored_from, metadata, derivative_elements, theme_config)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	slides, metadata, derivative, theme, err := marshalBlobs(p)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		p.ID,
		p.Title,
		slides,
		p.CreatedAt,
		nullTime(p.UpdatedAt),
		p.UpdatedBy,
		p.RestoredFrom,
		metadata,
		derivative,
		theme,
	)
	return err
}

// FindByID fetches a single presentation by its ID.
func (r *PresentationPostgres) FindByID(ctx context.Context, id string) (*model.Presentation, error) {
	const q = `
		SELECT ` + presentationColumns + `
		FROM presentations
		WHERE id = $1
	`
	return scanPresentation(r.db.QueryRowContext(ctx, q, id))
}

// Update overwrites the full row for p.ID.
func (r *PresentationPostgres) Update(ctx context.Context, p *model.Presentation) error {
	const q = `
		UPDATE presentations
		SET title = $2, slides = $3, updated_at = $4, updated_by = $5, restored_from = $6,
		    metadata = $7, derivative_elements = $8, theme_config = $9
		WHERE id = $1
	`
	slides, metadata, derivative, theme, err := marshalBlobs(p)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q,
		p.ID,
		p.Title,
		slides,
		nullTime(p.UpdatedAt),
		p.UpdatedBy,
		p.RestoredFrom,
		metadata,
		derivative,
		theme,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a presentation row, reporting whether it existed. Version
// rows go with it via the foreign-key cascade.
func (r *PresentationPostgres) Delete(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM presentations WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListIDs enumerates all presentation ids, newest first.
func (r *PresentationPostgres) ListIDs(ctx context.Context) ([]string, error) {
	const q = `SELECT id FROM presentations ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPresentation(row rowScanner) (*model.Presentation, error) {
	var (
		p          model.Presentation
		slides     []byte
		metadata   []byte
		derivative []byte
		theme      []byte
		updatedAt  sql.NullTime
	)
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&slides,
		&p.CreatedAt,
		&updatedAt,
		&p.UpdatedBy,
		&p.RestoredFrom,
		&metadata,
		&derivative,
		&theme,
	); err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	if err := unmarshalInto(slides, &p.Slides); err != nil {
		return nil, fmt.Errorf("decode slides: %w", err)
	}
	if err := unmarshalInto(metadata, &p.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if err := unmarshalInto(derivative, &p.DerivativeElements); err != nil {
		return nil, fmt.Errorf("decode derivative_elements: %w", err)
	}
	if err := unmarshalInto(theme, &p.ThemeConfig); err != nil {
		return nil, fmt.Errorf("decode theme_config: %w", err)
	}
	return &p, nil
}

func marshalBlobs(p *model.Presentation) (slides, metadata, derivative, theme []byte, err error) {
	if slides, err = json.Marshal(p.Slides); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode slides: %w", err)
	}
	if metadata, err = json.Marshal(p.Metadata); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode metadata: %w", err)
	}
	if derivative, err = json.Marshal(p.DerivativeElements); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode derivative_elements: %w", err)
	}
	if theme, err = json.Marshal(p.ThemeConfig); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode theme_config: %w", err)
	}
	return slides, metadata, derivative, theme, nil
}

func unmarshalInto(b []byte, dst any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
