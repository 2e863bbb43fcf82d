package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"ayurveda_resorts/internal/domain"
)

// CatalogCacheKey holds the migrated snapshot in the shared cache.
const CatalogCacheKey = "catalog:snapshot"

// CatalogService owns the published snapshot. Readers always see either the
// defaults or one complete load, never a partial one.
type CatalogService struct {
	store    domain.ContentStore
	cache    domain.Cache
	cacheTTL time.Duration
	defaults domain.Snapshot

	mu     sync.RWMutex
	snap   domain.Snapshot
	loaded bool
}

func NewCatalogService(store domain.ContentStore, cache domain.Cache, ttl time.Duration) *CatalogService {
	d := DefaultSnapshot()
	return &CatalogService{
		store:    store,
		cache:    cache,
		cacheTTL: ttl,
		defaults: d,
		snap:     cloneSnapshot(d),
	}
}

// Init performs the first load. On failure the defaults stay in place and
// the error is returned for logging only.
func (s *CatalogService) Init(ctx context.Context) error {
	if s.cache != nil {
		var cached domain.Snapshot
		if ok, _ := s.cache.Get(ctx, CatalogCacheKey, &cached); ok {
			s.publish(cached)
			return nil
		}
	}
	return s.fetch(ctx)
}

// Refetch bypasses the cache and reloads from the store. A failed reload
// keeps the current snapshot.
func (s *CatalogService) Refetch(ctx context.Context) error {
	s.Invalidate(ctx)
	return s.fetch(ctx)
}

// Invalidate drops the cached snapshot so other instances reload too.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, CatalogCacheKey); err != nil {
		log.Warn().Err(err).Msg("catalog cache invalidate failed")
	}
}

func (s *CatalogService) fetch(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	rows, err := s.store.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch site content: %w", err)
	}
	snap, diags := MigrateContent(rows, s.defaults)
	for _, d := range diags {
		log.Warn().Str("key", d.Key).Msg(d.Message)
	}
	s.publish(snap)

	if s.cache != nil {
		if b, _ := json.Marshal(snap); len(b) < 1_000_000 {
			_ = s.cache.Set(ctx, CatalogCacheKey, snap, int(s.cacheTTL.Seconds()))
		}
	}
	return nil
}

func (s *CatalogService) publish(snap domain.Snapshot) {
	if len(snap.Hero) == 0 {
		snap.Hero = append([]string(nil), s.defaults.Hero...)
	}
	s.mu.Lock()
	s.snap = snap
	s.loaded = true
	s.mu.Unlock()
}

// Loaded reports whether any store or cache load has succeeded.
func (s *CatalogService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Snapshot returns a deep copy of everything, hidden resorts included.
func (s *CatalogService) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(s.snap)
}

// VisibleResorts keeps editor order.
func (s *CatalogService) VisibleResorts() []domain.Resort {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Resort, 0, len(s.snap.Resorts))
	for _, r := range s.snap.Resorts {
		if r.Visible {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Resort returns a visible resort by id.
func (s *CatalogService) Resort(id string) (domain.Resort, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.snap.Resorts {
		if r.ID == id && r.Visible {
			return r.Clone(), nil
		}
	}
	return domain.Resort{}, domain.ErrNotFound
}

func (s *CatalogService) Hero() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.snap.Hero...)
}
