package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"prezstore/internal/cache"
	"prezstore/internal/model"
	"prezstore/internal/repository"
	"prezstore/internal/storage"
)

// presentationStore is the durable implementation of PresentationStore. It
// orchestrates the cache (fast path), the Postgres repositories (source of
// truth) and the blob mirror (best-effort fallback copy).
//
// Protocol: reads go cache → table → mirror; writes go ledger-append →
// table → mirror → cache-invalidate. Cache invalidation strictly follows
// durable persistence, so a crash in between leaves at worst a stale entry
// that expires with the TTL.
type presentationStore struct {
	repo     repository.PresentationRepository
	versions repository.VersionRepository
	mirror   storage.Storage
	cache    *cache.Cache[*model.Presentation]

	now func() time.Time
}

// NewPresentationStore constructs the durable store. cache may be nil to
// disable the in-process cache tier.
func NewPresentationStore(
	repo repository.PresentationRepository,
	versions repository.VersionRepository,
	mirror storage.Storage,
	c *cache.Cache[*model.Presentation],
) PresentationStore {
	return &presentationStore{
		repo:     repo,
		versions: versions,
		mirror:   mirror,
		cache:    c,
		now:      time.Now,
	}
}

func (s *presentationStore) Backend() Backend {
	return BackendDurable
}

// Save assigns a fresh id, stamps created_at, inserts the row and populates
// the cache. The blob mirror is written best-effort.
func (s *presentationStore) Save(ctx context.Context, p *model.Presentation) (string, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = s.now().UTC()
	stampSlideCount(p)

	if err := s.repo.Insert(ctx, p); err != nil {
		return "", &PersistenceError{Op: "save", Err: err}
	}

	s.mirrorPut(ctx, p)
	s.cacheSet(p)
	return p.ID, nil
}

// Load checks the cache first; on a hit no durable-store call is made. On a
// miss it reads the table, and only when the table read failed at the
// infrastructure level (not a clean "not found") it falls back to the blob
// mirror before reporting absence.
func (s *presentationStore) Load(ctx context.Context, id string) (*model.Presentation, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	if p, ok := s.cacheGet(id); ok {
		return p, nil
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return s.loadFromMirror(ctx, id, err)
	}

	s.cacheSet(p)
	return p, nil
}

// loadFromMirror reconstructs a presentation from its blob mirror after the
// durable table failed. Losing this race too means reporting absence; the
// original infrastructure error has already been logged.
func (s *presentationStore) loadFromMirror(ctx context.Context, id string, cause error) (*model.Presentation, error) {
	logJSON(map[string]any{
		"component": "storage",
		"event":     "durable_load_failed",
		"level":     "error",
		"id":        id,
		"error":     cause.Error(),
	})

	data, err := s.mirror.Get(ctx, storage.PresentationKey(id))
	if err != nil {
		warnMirror("mirror_fallback_failed", storage.PresentationKey(id), err)
		return nil, ErrNotFound
	}

	var p model.Presentation
	if err := json.Unmarshal(data, &p); err != nil {
		warnMirror("mirror_decode_failed", storage.PresentationKey(id), err)
		return nil, ErrNotFound
	}

	s.cacheSet(&p)
	return &p, nil
}

// Update applies the patch to the current state and persists the result.
// Order matters: the pre-update snapshot is appended to the ledger before
// the mutating write, so a crash mid-update can leave a dangling snapshot
// but never an applied update without its backup.
func (s *presentationStore) Update(ctx context.Context, id string, patch model.PresentationPatch, updatedBy, changeSummary string, createVersion bool) (*model.Presentation, error) {
	current, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if createVersion {
		if _, err := s.appendVersion(ctx, current, updatedBy, changeSummary); err != nil {
			return nil, err
		}
	}

	applyPatch(current, patch)
	current.UpdatedAt = s.now().UTC()
	current.UpdatedBy = updatedBy

	if err := s.repo.Update(ctx, current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "update", Err: err}
	}

	s.mirrorPut(ctx, current)
	s.cacheInvalidate(id)
	return current, nil
}

// Delete removes the row (versions cascade at the database level), then
// best-effort removes the blob mirrors. The cache entry is invalidated
// regardless of outcome.
func (s *presentationStore) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, ErrIDRequired
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.cacheInvalidate(id)
		return false, &PersistenceError{Op: "delete", Err: err}
	}

	if delErr := s.mirror.Delete(ctx, storage.PresentationKey(id)); delErr != nil {
		warnMirror("mirror_delete_failed", storage.PresentationKey(id), delErr)
	}
	if keys, listErr := s.mirror.List(ctx, storage.VersionPrefix(id)); listErr != nil {
		warnMirror("mirror_list_failed", storage.VersionPrefix(id), listErr)
	} else {
		for _, key := range keys {
			if delErr := s.mirror.Delete(ctx, key); delErr != nil {
				warnMirror("mirror_delete_failed", key, delErr)
			}
		}
	}

	s.cacheInvalidate(id)
	return found, nil
}

// ListIDs enumerates all presentation ids straight from the durable store;
// the cache is not consulted for enumerations.
func (s *presentationStore) ListIDs(ctx context.Context) ([]string, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return ids, nil
}

// mirrorPut writes the full JSON mirror for p. Failures are logged and
// swallowed; the mirror must never fail the primary operation.
func (s *presentationStore) mirrorPut(ctx context.Context, p *model.Presentation) {
	data, err := json.Marshal(p)
	if err != nil {
		warnMirror("mirror_encode_failed", storage.PresentationKey(p.ID), err)
		return
	}
	if err := s.mirror.Put(ctx, storage.PresentationKey(p.ID), data); err != nil {
		warnMirror("mirror_put_failed", storage.PresentationKey(p.ID), err)
	}
}

// cacheSet stores a deep copy so later caller mutations cannot leak into
// the cache.
func (s *presentationStore) cacheSet(p *model.Presentation) {
	if s.cache == nil {
		return
	}
	clone, err := p.Clone()
	if err != nil {
		return
	}
	s.cache.Set(p.ID, clone)
}

func (s *presentationStore) cacheInvalidate(id string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(id)
}

func (s *presentationStore) cacheGet(id string) (*model.Presentation, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	clone, err := cached.Clone()
	if err != nil {
		return nil, false
	}
	return clone, true
}

// applyPatch shallow-merges the patch: every set field wholly replaces the
// current value (top-level overwrite, never a deep merge). When the slides
// array changes, the derived slide count in metadata is recomputed.
func applyPatch(p *model.Presentation, patch model.PresentationPatch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Metadata != nil {
		p.Metadata = *patch.Metadata
	}
	if patch.DerivativeElements != nil {
		p.DerivativeElements = *patch.DerivativeElements
	}
	if patch.ThemeConfig != nil {
		p.ThemeConfig = *patch.ThemeConfig
	}
	if patch.Slides != nil {
		p.Slides = *patch.Slides
		stampSlideCount(p)
	}
}

func stampSlideCount(p *model.Presentation) {
	if p.Metadata == nil {
		p.Metadata = make(map[string]any)
	}
	p.Metadata["slide_count"] = len(p.Slides)
}
