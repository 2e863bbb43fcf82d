package app_test

import (
	"context"
	"testing"
	"time"

	"ayurveda_resorts/internal/app"
	"ayurveda_resorts/internal/domain"
)

const twoResorts = `[
 {"id":"a","name":"A","packageCategories":[]},
 {"id":"b","name":"B","isVisible":false,"packageCategories":[]},
 {"id":"c","name":"C","isVisible":true,"packageCategories":[]}
]`

func TestCatalog_VisibleResortsKeepOrder(t *testing.T) {
	store := newFakeStore(map[string]string{domain.KeyResortsData: twoResorts})
	cs := app.NewCatalogService(store, nil, time.Minute)
	if err := cs.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}

	got := cs.VisibleResorts()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("unexpected visible resorts: %+v", got)
	}
	if _, err := cs.Resort("b"); err != domain.ErrNotFound {
		t.Fatalf("hidden resort served: %v", err)
	}
	if len(cs.Snapshot().Resorts) != 3 {
		t.Fatalf("snapshot should keep hidden resorts")
	}
}

func TestCatalog_FetchFailureKeepsDefaults(t *testing.T) {
	store := newFakeStore(nil)
	store.fetchErr = errBoom
	cs := app.NewCatalogService(store, nil, time.Minute)

	if err := cs.Init(context.Background()); err == nil {
		t.Fatalf("expected fetch error to be reported")
	}
	if cs.Loaded() {
		t.Fatalf("should not be marked loaded")
	}
	def := app.DefaultSnapshot()
	if got := cs.VisibleResorts(); len(got) != len(def.Resorts) {
		t.Fatalf("expected default catalog, got %d resorts", len(got))
	}
	if h := cs.Hero(); len(h) != 1 || h[0] != app.DefaultHeroImage {
		t.Fatalf("expected default hero, got %v", h)
	}
}

func TestCatalog_CacheMissThenHit(t *testing.T) {
	store := newFakeStore(map[string]string{
		domain.KeyHeroImage:   `["https://x/1.jpg"]`,
		domain.KeyResortsData: twoResorts,
	})
	cache := &fakeCache{}

	first := app.NewCatalogService(store, cache, 10*time.Minute)
	if err := first.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, ok := cache.store[app.CatalogCacheKey]; !ok {
		t.Fatalf("snapshot not cached")
	}

	// a second instance must be served from the cache
	store.rows[domain.KeyHeroImage] = `["https://x/SHOULD-NOT-SEE.jpg"]`
	second := app.NewCatalogService(store, cache, 10*time.Minute)
	if err := second.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if h := second.Hero(); h[0] != "https://x/1.jpg" {
		t.Fatalf("expected cached hero, got %v", h)
	}
	if store.fetches != 1 {
		t.Fatalf("expected one store fetch, got %d", store.fetches)
	}

	// refetch bypasses and refreshes the cache
	if err := second.Refetch(context.Background()); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if h := second.Hero(); h[0] != "https://x/SHOULD-NOT-SEE.jpg" {
		t.Fatalf("refetch did not reload: %v", h)
	}
}

func TestCatalog_RefetchFailureKeepsCurrent(t *testing.T) {
	store := newFakeStore(map[string]string{domain.KeyResortsData: twoResorts})
	cs := app.NewCatalogService(store, nil, time.Minute)
	_ = cs.Init(context.Background())

	store.fetchErr = errBoom
	if err := cs.Refetch(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if got := cs.VisibleResorts(); len(got) != 2 || got[0].ID != "a" {
		t.Fatalf("refetch failure replaced content: %+v", got)
	}
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	cs := app.NewCatalogService(nil, nil, time.Minute)
	rs := cs.VisibleResorts()
	rs[0].Name = "mutated"
	rs[0].PackageCategories[0].Items[0].Name = "mutated"
	again := cs.VisibleResorts()
	if again[0].Name == "mutated" || again[0].PackageCategories[0].Items[0].Name == "mutated" {
		t.Fatalf("caller mutation leaked into catalog")
	}
}
