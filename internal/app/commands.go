package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ayurveda_resorts/internal/domain"
)

// RemediationGuide is shown to editors when a save or upload is refused by
// the backing stores.
const RemediationGuide = `-- Content store (MySQL):
CREATE TABLE IF NOT EXISTS site_content (
  ` + "`key`" + ` VARCHAR(191) NOT NULL PRIMARY KEY,
  value LONGTEXT NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
);
GRANT SELECT, INSERT, UPDATE ON site_content TO 'app'@'%';

-- Object store bucket:
insert into storage.buckets (id, name, public) values ('images', 'images', true) on conflict (id) do update set public = true;
create policy "Public Access" on storage.objects for select using ( bucket_id = 'images' );
create policy "Authenticated Insert" on storage.objects for insert to authenticated with check ( bucket_id = 'images' );`

// SaveError reports which of the two content writes failed.
type SaveError struct {
	Hero    error
	Resorts error
}

func (e *SaveError) Error() string {
	var parts []string
	if e.Hero != nil {
		parts = append(parts, "hero: "+e.Hero.Error())
	}
	if e.Resorts != nil {
		parts = append(parts, "resorts: "+e.Resorts.Error())
	}
	return "save content: " + strings.Join(parts, "; ")
}

func (e *SaveError) Unwrap() []error {
	var out []error
	for _, err := range []error{e.Hero, e.Resorts} {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

func (e *SaveError) Guide() string { return RemediationGuide }

// Draft is an editor's unsaved working copy.
type Draft struct {
	Hero    []string        `json:"hero"`
	Resorts []domain.Resort `json:"resorts"`
}

// TierSide picks which occupancy price a tier edit targets.
type TierSide string

const (
	SideSingle TierSide = "single"
	SideDouble TierSide = "double"
)

// Editor holds one admin session's working copy. Nothing is visible to
// visitors until SaveAll succeeds.
type Editor struct {
	store   domain.ContentStore
	catalog *CatalogService

	mu      sync.Mutex
	hero    []string
	resorts []domain.Resort
}

func NewEditor(store domain.ContentStore, catalog *CatalogService) *Editor {
	e := &Editor{store: store, catalog: catalog}
	e.seed(catalog.Snapshot())
	return e
}

func (e *Editor) seed(s domain.Snapshot) {
	e.hero = append([]string(nil), s.Hero...)
	if len(e.hero) == 0 {
		e.hero = []string{""}
	}
	e.resorts = cloneResorts(s.Resorts)
}

func (e *Editor) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Draft{Hero: append([]string(nil), e.hero...), Resorts: cloneResorts(e.resorts)}
}

// ---- hero ----

func (e *Editor) AddHeroSlot() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hero = append(e.hero, "")
	return len(e.hero) - 1
}

func (e *Editor) SetHero(i int, url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.hero) {
		return domain.ErrIndexOutOfRange
	}
	e.hero[i] = strings.TrimSpace(url)
	return nil
}

func (e *Editor) RemoveHero(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.hero) {
		return domain.ErrIndexOutOfRange
	}
	if len(e.hero) == 1 {
		return domain.ErrLastHeroSlot
	}
	e.hero = append(e.hero[:i], e.hero[i+1:]...)
	return nil
}

// ---- resorts ----

// CreateResort appends a resort with placeholder content and one bookable
// category.
func (e *Editor) CreateResort() domain.Resort {
	r := domain.Resort{
		ID:          newResortID(),
		Name:        "منتجع جديد",
		Location:    "كيرلا",
		Description: "وصف المنتجع...",
		Visible:     true,
		PackageCategories: []domain.PackageCategory{{
			Title: "باقات العافية",
			Items: []domain.PackageItem{{Name: "تجديد النشاط", Durations: []string{"7 ليالٍ", "14 ليلة"}}},
			PriceTiers: []domain.PriceTier{
				{DurationLabel: "7 ليالٍ", PriceSingle: domain.NewPrice(0), PriceDouble: domain.NewPrice(0)},
				{DurationLabel: "14 ليلة", PriceSingle: domain.NewPrice(0), PriceDouble: domain.NewPrice(0)},
			},
		}},
	}
	e.mu.Lock()
	e.resorts = append(e.resorts, r)
	e.mu.Unlock()
	return r.Clone()
}

// UpdateResort replaces the resort with the same id, nested lists included.
func (e *Editor) UpdateResort(r domain.Resort) error {
	if dups := r.DuplicateItemNames(); len(dups) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateItemName, strings.Join(dups, ", "))
	}
	if r.PackageCategories == nil {
		r.PackageCategories = []domain.PackageCategory{}
	}
	return e.mutate(r.ID, func(cur *domain.Resort) error {
		*cur = r.Clone()
		return nil
	})
}

// SetResortImage points the resort at an uploaded image.
func (e *Editor) SetResortImage(id, url string) error {
	return e.mutate(id, func(r *domain.Resort) error {
		r.ImageURL = strings.TrimSpace(url)
		return nil
	})
}

func (e *Editor) ToggleVisibility(id string) (bool, error) {
	var visible bool
	err := e.mutate(id, func(r *domain.Resort) error {
		r.Visible = !r.Visible
		visible = r.Visible
		return nil
	})
	return visible, err
}

func (e *Editor) DeleteResort(id string, confirmed bool) error {
	if !confirmed {
		return domain.ErrConfirmationRequired
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.resorts {
		if e.resorts[i].ID == id {
			e.resorts = append(e.resorts[:i], e.resorts[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (e *Editor) AddPackageItem(id string, cat int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		ve := domain.NewValidationError()
		ve.Add("name", "is required")
		return ve
	}
	return e.mutate(id, func(r *domain.Resort) error {
		if cat < 0 || cat >= len(r.PackageCategories) {
			return domain.ErrIndexOutOfRange
		}
		if _, taken := r.CategoryFor(name); taken {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateItemName, name)
		}
		c := &r.PackageCategories[cat]
		durations := make([]string, 0, len(c.PriceTiers))
		for _, t := range c.PriceTiers {
			durations = append(durations, t.DurationLabel)
		}
		c.Items = append(c.Items, domain.PackageItem{Name: name, Durations: durations})
		return nil
	})
}

func (e *Editor) RemovePackageItem(id string, cat, idx int) error {
	return e.mutate(id, func(r *domain.Resort) error {
		if cat < 0 || cat >= len(r.PackageCategories) {
			return domain.ErrIndexOutOfRange
		}
		c := &r.PackageCategories[cat]
		if idx < 0 || idx >= len(c.Items) {
			return domain.ErrIndexOutOfRange
		}
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		return nil
	})
}

func (e *Editor) SetCategoryTitle(id string, cat int, title string) error {
	return e.mutate(id, func(r *domain.Resort) error {
		if cat < 0 || cat >= len(r.PackageCategories) {
			return domain.ErrIndexOutOfRange
		}
		r.PackageCategories[cat].Title = strings.TrimSpace(title)
		return nil
	})
}

// SetTierPrice accepts whatever the editor typed ("12,500 ر.س", "SAR 900")
// and stores the normalized amount.
func (e *Editor) SetTierPrice(id string, cat, tier int, side TierSide, raw string) (domain.Price, error) {
	p, err := domain.ParsePrice(raw)
	if err != nil {
		ve := domain.NewValidationError()
		ve.Add("price", "must be a number")
		return domain.Price{}, ve
	}
	err = e.mutate(id, func(r *domain.Resort) error {
		if cat < 0 || cat >= len(r.PackageCategories) {
			return domain.ErrIndexOutOfRange
		}
		tiers := r.PackageCategories[cat].PriceTiers
		if tier < 0 || tier >= len(tiers) {
			return domain.ErrIndexOutOfRange
		}
		switch side {
		case SideSingle:
			tiers[tier].PriceSingle = p
		case SideDouble:
			tiers[tier].PriceDouble = p
		default:
			return domain.ErrInvalidRoomType
		}
		return nil
	})
	return p, err
}

// AddFeaturesFromText appends one feature per non-blank line.
func (e *Editor) AddFeaturesFromText(id, text string) ([]domain.Feature, error) {
	added := ParseFeatures(text)
	if len(added) == 0 {
		return nil, nil
	}
	err := e.mutate(id, func(r *domain.Resort) error {
		r.Features = append(r.Features, added...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (e *Editor) RemoveFeature(id string, idx int) error {
	return e.mutate(id, func(r *domain.Resort) error {
		if idx < 0 || idx >= len(r.Features) {
			return domain.ErrIndexOutOfRange
		}
		r.Features = append(r.Features[:idx], r.Features[idx+1:]...)
		return nil
	})
}

func (e *Editor) mutate(id string, fn func(*domain.Resort) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.resorts {
		if e.resorts[i].ID != id {
			continue
		}
		work := e.resorts[i].Clone()
		if err := fn(&work); err != nil {
			return err
		}
		e.resorts[i] = work
		return nil
	}
	return domain.ErrNotFound
}

// ---- save ----

// SaveAll writes both content keys concurrently. Either failure yields a
// *SaveError and nothing is retried.
func (e *Editor) SaveAll(ctx context.Context) error {
	e.mu.Lock()
	hero := CleanHero(e.hero)
	resorts := cloneResorts(e.resorts)
	e.mu.Unlock()

	heroJSON, err := json.Marshal(hero)
	if err != nil {
		return fmt.Errorf("encode hero: %w", err)
	}
	resortsJSON, err := json.Marshal(resorts)
	if err != nil {
		return fmt.Errorf("encode resorts: %w", err)
	}

	var herr, rerr error
	var g errgroup.Group
	g.Go(func() error {
		herr = e.store.Upsert(ctx, domain.KeyHeroImage, string(heroJSON))
		return herr
	})
	g.Go(func() error {
		rerr = e.store.Upsert(ctx, domain.KeyResortsData, string(resortsJSON))
		return rerr
	})
	if g.Wait() != nil {
		return &SaveError{Hero: herr, Resorts: rerr}
	}

	e.mu.Lock()
	e.hero = hero
	if len(e.hero) == 0 {
		e.hero = []string{""}
	}
	e.mu.Unlock()

	if err := e.catalog.Refetch(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog refetch after save failed")
	}
	return nil
}

// AsSaveError returns the wrapped SaveError, if any.
func AsSaveError(err error) *SaveError {
	var se *SaveError
	if errors.As(err, &se) {
		return se
	}
	return nil
}

func newResortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// ---- features ----

var featureKeywords = []struct {
	word string
	icon domain.Icon
}{
	{"wifi", domain.IconWifi}, {"نت", domain.IconWifi}, {"انترنت", domain.IconWifi},
	{"مسبح", domain.IconWaves}, {"pool", domain.IconWaves}, {"سباحة", domain.IconWaves},
	{"طعام", domain.IconUtensils}, {"food", domain.IconUtensils}, {"مطعم", domain.IconUtensils},
	{"يوغا", domain.IconActivity}, {"yoga", domain.IconActivity},
	{"طبيب", domain.IconStethoscope}, {"doctor", domain.IconStethoscope},
	{"طبيعة", domain.IconLeaf}, {"nature", domain.IconLeaf}, {"حديقة", domain.IconFlower},
	{"بحر", domain.IconSunset}, {"ocean", domain.IconSunset}, {"شاطئ", domain.IconSunset},
	{"مطار", domain.IconPlane}, {"airport", domain.IconPlane},
	{"نقل", domain.IconPlane}, {"توصيل", domain.IconPlane},
	{"غرفة", domain.IconBed}, {"room", domain.IconBed}, {"إقامة", domain.IconBed},
}

// ParseFeatures maps free text to features, first matching keyword wins.
func ParseFeatures(text string) []domain.Feature {
	var out []domain.Feature
	for _, line := range strings.Split(text, "\n") {
		title := strings.TrimSpace(line)
		if title == "" {
			continue
		}
		low := strings.ToLower(title)
		icon := domain.IconSparkles
		for _, k := range featureKeywords {
			if strings.Contains(low, k.word) {
				icon = k.icon
				break
			}
		}
		out = append(out, domain.Feature{Icon: icon, Title: title})
	}
	return out
}

// ---- one-shot rewrite ----

// ErrContentUndecodable stops a rewrite that would overwrite stored
// content with defaults.
var ErrContentUndecodable = errors.New("stored content could not be decoded")

// RewriteContent loads stored content and saves it back in the current
// layout. An empty store is seeded with the defaults. Nothing is written
// when a stored value fails to decode.
func RewriteContent(ctx context.Context, store domain.ContentStore) (from domain.Schema, to domain.Snapshot, err error) {
	rows, err := store.FetchAll(ctx)
	if err != nil {
		return "", domain.Snapshot{}, fmt.Errorf("read site content: %w", err)
	}
	_, diags := MigrateContent(rows, DefaultSnapshot())
	var bad []string
	for _, d := range diags {
		if d.Undecodable {
			bad = append(bad, d.Key+": "+d.Message)
		}
	}
	if len(bad) > 0 {
		return "", domain.Snapshot{}, fmt.Errorf("%w: %s", ErrContentUndecodable, strings.Join(bad, "; "))
	}

	catalog := NewCatalogService(store, nil, 0)
	if err := catalog.Init(ctx); err != nil {
		return "", domain.Snapshot{}, err
	}
	from = catalog.Snapshot().Schema
	if err := NewEditor(store, catalog).SaveAll(ctx); err != nil {
		return from, domain.Snapshot{}, err
	}
	return from, catalog.Snapshot(), nil
}

// ---- registry ----

// EditorRegistry keeps one draft per admin session until the session
// signs out or expires.
type EditorRegistry struct {
	store   domain.ContentStore
	catalog *CatalogService

	mu     sync.Mutex
	drafts map[string]draft
}

type draft struct {
	ed      *Editor
	expires time.Time
}

func NewEditorRegistry(store domain.ContentStore, catalog *CatalogService) *EditorRegistry {
	return &EditorRegistry{store: store, catalog: catalog, drafts: make(map[string]draft)}
}

// Open returns the session's editor, seeding a new one from the published
// catalog on first use. A zero expires never lapses.
func (r *EditorRegistry) Open(session string, expires time.Time) *Editor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.drafts[session]; ok {
		return d.ed
	}
	ed := NewEditor(r.store, r.catalog)
	r.drafts[session] = draft{ed: ed, expires: expires}
	return ed
}

func (r *EditorRegistry) Drop(session string) {
	r.mu.Lock()
	delete(r.drafts, session)
	r.mu.Unlock()
}

func (r *EditorRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drafts)
}

// Prune drops drafts whose session expired before now.
func (r *EditorRegistry) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, d := range r.drafts {
		if !d.expires.IsZero() && now.After(d.expires) {
			delete(r.drafts, id)
			n++
		}
	}
	return n
}

// Sweep prunes expired drafts every interval until ctx is done.
func (r *EditorRegistry) Sweep(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := r.Prune(now); n > 0 {
				log.Debug().Int("drafts", n).Msg("expired drafts dropped")
			}
		}
	}
}

// Follow drops drafts whose session ends until events is closed.
func (r *EditorRegistry) Follow(events <-chan SessionEvent) {
	for ev := range events {
		if ev.Kind == SessionSignedOut {
			r.Drop(ev.SessionID)
		}
	}
}
