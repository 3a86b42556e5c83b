package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"prezstore/internal/model"
)

// filesystemStore is the fallback implementation of PresentationStore used
// when no durable backend is configured. One JSON file per presentation in a
// local directory; no cache tier, no blob mirror and no version ledger —
// Update ignores createVersion and the version operations report
// ErrNotSupported.
type filesystemStore struct {
	dir string
	now func() time.Time
}

// NewFilesystemStore creates the directory if needed and returns the
// fallback store.
func NewFilesystemStore(dir string) (PresentationStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &filesystemStore{dir: dir, now: time.Now}, nil
}

func (s *filesystemStore) Backend() Backend {
	return BackendFilesystem
}

func (s *filesystemStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *filesystemStore) Save(ctx context.Context, p *model.Presentation) (string, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = s.now().UTC()
	stampSlideCount(p)

	if err := s.write(p); err != nil {
		return "", err
	}
	return p.ID, nil
}

func (s *filesystemStore) Load(ctx context.Context, id string) (*model.Presentation, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	var p model.Presentation
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	return &p, nil
}

// Update is a plain overwrite on this backend: no version snapshot is taken
// regardless of createVersion.
func (s *filesystemStore) Update(ctx context.Context, id string, patch model.PresentationPatch, updatedBy, changeSummary string, createVersion bool) (*model.Presentation, error) {
	current, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	applyPatch(current, patch)
	current.UpdatedAt = s.now().UTC()
	current.UpdatedBy = updatedBy

	if err := s.write(current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *filesystemStore) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, ErrIDRequired
	}

	err := os.Remove(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &PersistenceError{Op: "delete", Err: err}
	}
	return true, nil
}

func (s *filesystemStore) ListIDs(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *filesystemStore) VersionHistory(ctx context.Context, id string) (*VersionHistory, error) {
	return nil, ErrNotSupported
}

func (s *filesystemStore) RestoreVersion(ctx context.Context, id, versionID string, createBackup bool) (*model.Presentation, error) {
	return nil, ErrNotSupported
}

func (s *filesystemStore) write(p *model.Presentation) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	if err := os.WriteFile(s.path(p.ID), data, 0o644); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}
