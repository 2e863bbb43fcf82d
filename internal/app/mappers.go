package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"ayurveda_resorts/internal/domain"
)

// Diagnostic is a non-fatal finding from content migration. Undecodable
// marks a stored value that was replaced by defaults.
type Diagnostic struct {
	Key         string
	Message     string
	Undecodable bool
}

// MigrateContent turns raw site_content rows into a normalized snapshot.
// It runs once per load; consumers never see legacy shapes.
func MigrateContent(rows map[string]string, defaults domain.Snapshot) (domain.Snapshot, []Diagnostic) {
	var diags []Diagnostic
	out := domain.Snapshot{}

	hero, err := decodeHero(rows[domain.KeyHeroImage])
	if err != nil {
		diags = append(diags, Diagnostic{Key: domain.KeyHeroImage, Message: err.Error(), Undecodable: true})
	}
	if len(hero) == 0 {
		hero = append([]string(nil), defaults.Hero...)
	}
	out.Hero = hero

	raw, hasCatalog := rows[domain.KeyResortsData]
	switch {
	case hasCatalog && strings.TrimSpace(raw) != "":
		resorts, rd, err := decodeResorts(raw)
		diags = append(diags, rd...)
		if err != nil {
			diags = append(diags, Diagnostic{Key: domain.KeyResortsData, Message: err.Error(), Undecodable: true})
			out.Resorts = cloneResorts(defaults.Resorts)
			out.Schema = domain.SchemaDefaults
			break
		}
		out.Resorts = resorts
		out.Schema = domain.SchemaCatalog
	default:
		out.Resorts = cloneResorts(defaults.Resorts)
		out.Schema = domain.SchemaDefaults
		if overlayLegacyImages(out.Resorts, rows) {
			out.Schema = domain.SchemaLegacyImages
		}
	}

	for _, r := range out.Resorts {
		if d := r.DuplicateItemNames(); len(d) > 0 {
			diags = append(diags, Diagnostic{
				Key:     "resort:" + r.ID,
				Message: fmt.Sprintf("package item names not unique: %s", strings.Join(d, ", ")),
			})
		}
	}
	return out, diags
}

// decodeHero accepts a JSON array, a bare JSON string, or a raw URL.
// Blank entries are dropped.
func decodeHero(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return CleanHero(list), nil
	}
	var single string
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		return CleanHero([]string{single}), nil
	}
	if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
		return nil, fmt.Errorf("hero value is not a list or string")
	}
	return []string{raw}, nil
}

// CleanHero drops blank entries and keeps order.
func CleanHero(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if t := strings.TrimSpace(u); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func overlayLegacyImages(resorts []domain.Resort, rows map[string]string) bool {
	applied := false
	for i := range resorts {
		v, ok := rows[domain.LegacyResortImageKey(resorts[i].ID)]
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		var s string
		if err := json.Unmarshal([]byte(v), &s); err == nil {
			v = strings.TrimSpace(s)
		}
		if v == "" {
			continue
		}
		resorts[i].ImageURL = v
		applied = true
	}
	return applied
}

// ---- stored document shapes ----

type resortDoc struct {
	ID                string                   `json:"id"`
	Name              string                   `json:"name"`
	Location          string                   `json:"location"`
	Description       string                   `json:"description"`
	LongDescription   string                   `json:"longDescription"`
	ImageURL          string                   `json:"imageUrl"`
	Badge             string                   `json:"badge"`
	Stars             json.RawMessage          `json:"stars"`
	BookingScore      json.RawMessage          `json:"bookingScore"`
	Airport           *domain.AirportInfo      `json:"airport"`
	Features          []featureDoc             `json:"features"`
	OfferIncludes     []inclusionDoc           `json:"offerIncludes"`
	TreatmentIncludes []inclusionDoc           `json:"treatmentIncludes"`
	OfferExcludes     []inclusionDoc           `json:"offerExcludes"`
	PackageCategories []domain.PackageCategory `json:"packageCategories"`
	IsVisible         *bool                    `json:"isVisible"`
}

type featureDoc struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type inclusionDoc struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
}

func decodeResorts(raw string) ([]domain.Resort, []Diagnostic, error) {
	var docs []resortDoc
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return nil, nil, fmt.Errorf("decode resorts: %w", err)
	}
	var diags []Diagnostic
	out := make([]domain.Resort, 0, len(docs))
	for _, d := range docs {
		r, rd := mapResort(d)
		diags = append(diags, rd...)
		out = append(out, r)
	}
	return out, diags, nil
}

// DecodeResort reads one resort the way stored rows are read, so fields
// an editor omits get the same defaults as on load.
func DecodeResort(raw []byte) (domain.Resort, []Diagnostic, error) {
	var d resortDoc
	if err := json.Unmarshal(raw, &d); err != nil {
		return domain.Resort{}, nil, fmt.Errorf("decode resort: %w", err)
	}
	r, diags := mapResort(d)
	return r, diags, nil
}

func mapResort(d resortDoc) (domain.Resort, []Diagnostic) {
	var diags []Diagnostic
	icon := func(key string) (domain.Icon, string) {
		ic, raw := domain.LookupIcon(key)
		if ic == domain.IconUnknown {
			diags = append(diags, Diagnostic{
				Key:     "resort:" + d.ID,
				Message: fmt.Sprintf("unknown icon %q", key),
			})
		}
		return ic, raw
	}

	r := domain.Resort{
		ID:              d.ID,
		Name:            d.Name,
		Location:        d.Location,
		Description:     d.Description,
		LongDescription: d.LongDescription,
		ImageURL:        d.ImageURL,
		Badge:           d.Badge,
		Airport:         d.Airport,
		Visible:         d.IsVisible == nil || *d.IsVisible,
	}
	if f := flexFloat(d.Stars); f != nil {
		s := int(*f)
		r.Stars = &s
	}
	r.BookingScore = flexFloat(d.BookingScore)

	for _, f := range d.Features {
		ic, raw := icon(f.Icon)
		r.Features = append(r.Features, domain.Feature{Icon: ic, IconKey: raw, Title: f.Title, Description: f.Description})
	}
	mapInclusions := func(in []inclusionDoc) []domain.InclusionItem {
		var out []domain.InclusionItem
		for _, it := range in {
			ic, raw := icon(it.Icon)
			out = append(out, domain.InclusionItem{Icon: ic, IconKey: raw, Title: it.Title})
		}
		return out
	}
	r.OfferIncludes = mapInclusions(d.OfferIncludes)
	r.TreatmentIncludes = mapInclusions(d.TreatmentIncludes)
	r.OfferExcludes = mapInclusions(d.OfferExcludes)

	r.PackageCategories = d.PackageCategories
	if r.PackageCategories == nil {
		r.PackageCategories = []domain.PackageCategory{}
	}
	for _, c := range r.PackageCategories {
		for _, t := range c.PriceTiers {
			for _, p := range []domain.Price{t.PriceSingle, t.PriceDouble} {
				if !p.Valid() {
					diags = append(diags, Diagnostic{
						Key:     "resort:" + d.ID,
						Message: fmt.Sprintf("price %q for %q could not be parsed", p.String(), t.DurationLabel),
					})
				}
			}
		}
	}
	return r, diags
}

// flexFloat reads a number stored either as JSON number or string ("8,9").
func flexFloat(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return &f
	}
	return nil
}

func cloneResorts(in []domain.Resort) []domain.Resort {
	out := make([]domain.Resort, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

func cloneSnapshot(s domain.Snapshot) domain.Snapshot {
	return domain.Snapshot{
		Hero:    append([]string(nil), s.Hero...),
		Resorts: cloneResorts(s.Resorts),
		Schema:  s.Schema,
	}
}
