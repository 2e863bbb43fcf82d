package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"ayurveda_resorts/internal/app"
	"ayurveda_resorts/internal/domain"
)

func newEditorFixture(t *testing.T) (*fakeStore, *app.CatalogService, *app.Editor) {
	t.Helper()
	store := newFakeStore(nil)
	cs := app.NewCatalogService(store, &fakeCache{}, time.Minute)
	if err := cs.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return store, cs, app.NewEditor(store, cs)
}

func TestEditor_DeleteNotVisibleUntilSave(t *testing.T) {
	store, cs, ed := newEditorFixture(t)
	id := cs.VisibleResorts()[0].ID

	if err := ed.DeleteResort(id, false); !errors.Is(err, domain.ErrConfirmationRequired) {
		t.Fatalf("expected confirmation error, got %v", err)
	}
	if err := ed.DeleteResort(id, true); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cs.Resort(id); err != nil {
		t.Fatalf("delete leaked before save: %v", err)
	}

	if err := ed.SaveAll(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := cs.Resort(id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted resort still served after save")
	}
	if _, ok := store.get(domain.KeyResortsData); !ok {
		t.Fatalf("resorts not written")
	}
}

func TestEditor_SaveDropsBlankHeroEntries(t *testing.T) {
	store, cs, ed := newEditorFixture(t)
	i := ed.AddHeroSlot()
	_ = ed.SetHero(i, "https://img/2.jpg")
	ed.AddHeroSlot()

	if err := ed.SaveAll(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _ := store.get(domain.KeyHeroImage)
	var hero []string
	if err := json.Unmarshal([]byte(raw), &hero); err != nil {
		t.Fatalf("hero not a JSON list: %q", raw)
	}
	if len(hero) != 2 || hero[1] != "https://img/2.jpg" {
		t.Fatalf("unexpected hero: %v", hero)
	}
	if h := cs.Hero(); len(h) != 2 {
		t.Fatalf("catalog not refreshed: %v", h)
	}
}

func TestEditor_PartialFailureReportsBoth(t *testing.T) {
	store, cs, ed := newEditorFixture(t)
	store.failKey[domain.KeyResortsData] = errors.New("permission denied for table site_content")
	id := cs.VisibleResorts()[0].ID
	_, _ = ed.ToggleVisibility(id)

	err := ed.SaveAll(context.Background())
	se := app.AsSaveError(err)
	if se == nil {
		t.Fatalf("expected SaveError, got %v", err)
	}
	if se.Hero != nil || se.Resorts == nil {
		t.Fatalf("unexpected causes: %+v", se)
	}
	if !strings.Contains(se.Guide(), "site_content") {
		t.Fatalf("guide missing")
	}
	if _, err := cs.Resort(id); err != nil {
		t.Fatalf("failed save must not change published content")
	}
}

func TestEditor_HeroSlots(t *testing.T) {
	_, _, ed := newEditorFixture(t)
	if len(ed.Draft().Hero) != 1 {
		t.Fatalf("expected the single default slot")
	}
	if err := ed.RemoveHero(0); !errors.Is(err, domain.ErrLastHeroSlot) {
		t.Fatalf("last slot removed: %v", err)
	}
	ed.AddHeroSlot()
	if err := ed.RemoveHero(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := ed.SetHero(5, "x"); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Fatalf("out of range: %v", err)
	}
}

func TestEditor_CreateAndEditResort(t *testing.T) {
	_, _, ed := newEditorFixture(t)
	r := ed.CreateResort()
	if r.ID == "" || !r.Visible || !r.Bookable() {
		t.Fatalf("bad new resort: %+v", r)
	}
	if len(r.PackageCategories[0].PriceTiers) != 2 {
		t.Fatalf("expected two tiers")
	}

	p, err := ed.SetTierPrice(r.ID, 0, 1, app.SideDouble, "١٢٬٥٠٠ ر.س")
	if err != nil {
		t.Fatalf("set price: %v", err)
	}
	if p.String() != "12500" {
		t.Fatalf("price = %q", p.String())
	}
	if _, err := ed.SetTierPrice(r.ID, 0, 0, app.SideSingle, "abc"); domain.AsValidationError(err) == nil {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := ed.AddPackageItem(r.ID, 0, "تخفيف الوزن"); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := ed.AddPackageItem(r.ID, 0, "تخفيف الوزن"); !errors.Is(err, domain.ErrDuplicateItemName) {
		t.Fatalf("duplicate accepted: %v", err)
	}
	_ = ed.SetCategoryTitle(r.ID, 0, "برامج")

	var got domain.Resort
	for _, d := range ed.Draft().Resorts {
		if d.ID == r.ID {
			got = d
		}
	}
	c := got.PackageCategories[0]
	if c.Title != "برامج" || len(c.Items) != 2 || c.PriceTiers[1].PriceDouble.String() != "12500" {
		t.Fatalf("edits not applied: %+v", c)
	}
	if len(c.Items[1].Durations) != 2 {
		t.Fatalf("new item should list tier durations: %v", c.Items[1].Durations)
	}

	if err := ed.RemovePackageItem(r.ID, 0, 1); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if v, _ := ed.ToggleVisibility(r.ID); v {
		t.Fatalf("toggle should hide")
	}
}

func TestEditor_UpdateRejectsDuplicateNames(t *testing.T) {
	_, _, ed := newEditorFixture(t)
	r := ed.Draft().Resorts[0]
	r.PackageCategories[1].Items = append(r.PackageCategories[1].Items, r.PackageCategories[0].Items[0])
	if err := ed.UpdateResort(r); !errors.Is(err, domain.ErrDuplicateItemName) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	r = ed.Draft().Resorts[0]
	r.Name = "اسم جديد"
	if err := ed.UpdateResort(r); err != nil {
		t.Fatalf("update: %v", err)
	}
	if ed.Draft().Resorts[0].Name != "اسم جديد" {
		t.Fatalf("update not applied")
	}
	if err := ed.UpdateResort(domain.Resort{ID: "missing"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestParseFeatures(t *testing.T) {
	got := app.ParseFeatures("واي فاي WiFi مجاني\n\n  مسبح خارجي \nشيء آخر\nقريب من المطار")
	want := []domain.Icon{domain.IconWifi, domain.IconWaves, domain.IconSparkles, domain.IconPlane}
	if len(got) != len(want) {
		t.Fatalf("got %d features", len(got))
	}
	for i := range want {
		if got[i].Icon != want[i] {
			t.Fatalf("feature %d icon = %s, want %s", i, got[i].Icon, want[i])
		}
	}
	if got[1].Title != "مسبح خارجي" {
		t.Fatalf("title not trimmed: %q", got[1].Title)
	}
}

func TestEditor_FeaturesFromText(t *testing.T) {
	_, _, ed := newEditorFixture(t)
	id := ed.Draft().Resorts[1].ID
	before := len(ed.Draft().Resorts[1].Features)
	added, err := ed.AddFeaturesFromText(id, "جلسات يوغا\nطبيب مقيم")
	if err != nil || len(added) != 2 {
		t.Fatalf("add: %v %v", added, err)
	}
	if err := ed.RemoveFeature(id, before); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if n := len(ed.Draft().Resorts[1].Features); n != before+1 {
		t.Fatalf("features = %d", n)
	}
}

func TestEditorRegistry_DropsOnSignOut(t *testing.T) {
	store, cs, _ := newEditorFixture(t)
	reg := app.NewEditorRegistry(store, cs)
	a := reg.Open("s1", time.Time{})
	if reg.Open("s1", time.Time{}) != a {
		t.Fatalf("same session should reuse its draft")
	}
	reg.Open("s2", time.Time{})

	events := make(chan app.SessionEvent, 2)
	events <- app.SessionEvent{Kind: app.SessionSignedIn, SessionID: "s2"}
	events <- app.SessionEvent{Kind: app.SessionSignedOut, SessionID: "s1"}
	close(events)
	reg.Follow(events)

	if reg.Len() != 1 {
		t.Fatalf("expected one draft left, got %d", reg.Len())
	}
}

func TestEditor_SaveKeepsUnknownIconKeys(t *testing.T) {
	raw := `[{"id":"x","name":"X","features":[{"icon":"spa-typo","title":"t"}],
	  "offerIncludes":[{"icon":"bedd","title":"b"}],"packageCategories":[]}]`
	store := newFakeStore(map[string]string{domain.KeyResortsData: raw})
	cs := app.NewCatalogService(store, &fakeCache{}, time.Minute)
	if err := cs.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := app.NewEditor(store, cs).SaveAll(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	saved, _ := store.get(domain.KeyResortsData)
	if !strings.Contains(saved, `"icon":"spa-typo"`) || !strings.Contains(saved, `"icon":"bedd"`) {
		t.Fatalf("unknown keys rewritten: %s", saved)
	}
	if strings.Contains(saved, `"icon":"sparkles"`) {
		t.Fatalf("fallback glyph stored: %s", saved)
	}
}

func TestRewriteContent_RefusesUndecodableCatalog(t *testing.T) {
	broken := `[{"id":"a","name":"A"},]`
	store := newFakeStore(map[string]string{domain.KeyResortsData: broken})

	_, _, err := app.RewriteContent(context.Background(), store)
	if !errors.Is(err, app.ErrContentUndecodable) {
		t.Fatalf("expected ErrContentUndecodable, got %v", err)
	}
	if got, _ := store.get(domain.KeyResortsData); got != broken {
		t.Fatalf("stored catalog overwritten: %s", got)
	}
	if _, ok := store.get(domain.KeyHeroImage); ok {
		t.Fatalf("hero written on refused rewrite")
	}
}

func TestRewriteContent_LegacyLayout(t *testing.T) {
	id := app.DefaultSnapshot().Resorts[0].ID
	store := newFakeStore(map[string]string{
		domain.LegacyResortImageKey(id): "https://a/legacy.jpg",
	})
	from, to, err := app.RewriteContent(context.Background(), store)
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if from != domain.SchemaLegacyImages || to.Schema != domain.SchemaCatalog {
		t.Fatalf("schema %s -> %s", from, to.Schema)
	}
	saved, ok := store.get(domain.KeyResortsData)
	if !ok || !strings.Contains(saved, "https://a/legacy.jpg") {
		t.Fatalf("legacy image not carried into resorts_data: %s", saved)
	}
}

func TestEditorRegistry_PrunesExpiredSessions(t *testing.T) {
	store, cs, _ := newEditorFixture(t)
	reg := app.NewEditorRegistry(store, cs)
	now := time.Now()
	reg.Open("gone", now.Add(-time.Minute))
	live := reg.Open("live", now.Add(time.Hour))
	reg.Open("forever", time.Time{})

	if n := reg.Prune(now); n != 1 {
		t.Fatalf("pruned %d, want 1", n)
	}
	if reg.Len() != 2 || reg.Open("live", now.Add(time.Hour)) != live {
		t.Fatalf("live draft lost")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Sweep(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("sweep did not stop on cancel")
	}
}
