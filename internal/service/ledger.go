package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"prezstore/internal/model"
	"prezstore/internal/storage"
)

// preRestoreSummary is the change summary stamped on the automatic snapshot
// taken before a restore, so the restore itself is undoable.
const preRestoreSummary = "pre-restore backup"

// newVersionID builds a version id from a sortable UTC timestamp prefix and
// a random suffix. The suffix guards against collisions when two snapshots
// land in the same millisecond.
func newVersionID(now time.Time) string {
	return now.UTC().Format("20060102T150405.000") + "-" + uuid.NewString()[:8]
}

// appendVersion writes one immutable snapshot of p to the ledger and
// best-effort mirrors it to blob storage. Ledger-table failures are fatal to
// the calling operation; mirror failures are not.
func (s *presentationStore) appendVersion(ctx context.Context, p *model.Presentation, createdBy, changeSummary string) (string, error) {
	v := &model.Version{
		PresentationID: p.ID,
		VersionID:      newVersionID(s.now()),
		Data:           *p,
		CreatedBy:      createdBy,
		CreatedAt:      s.now().UTC(),
		ChangeSummary:  changeSummary,
	}

	if err := s.versions.Insert(ctx, v); err != nil {
		return "", &PersistenceError{Op: "version append", Err: err}
	}

	key := storage.VersionKey(p.ID, v.VersionID)
	if data, err := json.Marshal(v); err != nil {
		warnMirror("mirror_encode_failed", key, err)
	} else if err := s.mirror.Put(ctx, key, data); err != nil {
		warnMirror("mirror_put_failed", key, err)
	}

	return v.VersionID, nil
}

// VersionHistory lists the ledger newest-first. The presentation must exist;
// a missing id reports ErrNotFound like any other lookup.
func (s *presentationStore) VersionHistory(ctx context.Context, id string) (*VersionHistory, error) {
	current, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	metas, err := s.versions.ListMeta(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "version list", Err: err}
	}

	return &VersionHistory{
		CurrentVersionID: current.RestoredFrom,
		Versions:         metas,
	}, nil
}

// RestoreVersion overwrites the live state with the snapshot's content,
// stamping restored_from and a fresh updated_at. With createBackup set, the
// current live state is first appended to the ledger. Restoring never
// deletes a version: history only grows.
func (s *presentationStore) RestoreVersion(ctx context.Context, id, versionID string, createBackup bool) (*model.Presentation, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	v, err := s.versions.FindByID(ctx, id, versionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "version load", Err: err}
	}

	if createBackup {
		current, err := s.Load(ctx, id)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if err == nil {
			createdBy := current.UpdatedBy
			if createdBy == "" {
				createdBy = "system"
			}
			if _, err := s.appendVersion(ctx, current, createdBy, preRestoreSummary); err != nil {
				return nil, err
			}
		}
	}

	restored := v.Data
	restored.ID = id
	restored.RestoredFrom = versionID
	restored.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, &restored); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "restore", Err: err}
	}

	s.mirrorPut(ctx, &restored)
	s.cacheInvalidate(id)
	return &restored, nil
}
