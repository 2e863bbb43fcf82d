package domain

import "encoding/json"

// Resort is one sellable property. JSON keys match the stored
// resorts_data blob.
type Resort struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Location          string            `json:"location"`
	Description       string            `json:"description"`
	LongDescription   string            `json:"longDescription,omitempty"`
	ImageURL          string            `json:"imageUrl"`
	Badge             string            `json:"badge,omitempty"`
	Stars             *int              `json:"stars,omitempty"`
	BookingScore      *float64          `json:"bookingScore,omitempty"`
	Airport           *AirportInfo      `json:"airport,omitempty"`
	Features          []Feature         `json:"features,omitempty"`
	OfferIncludes     []InclusionItem   `json:"offerIncludes,omitempty"`
	TreatmentIncludes []InclusionItem   `json:"treatmentIncludes,omitempty"`
	OfferExcludes     []InclusionItem   `json:"offerExcludes,omitempty"`
	PackageCategories []PackageCategory `json:"packageCategories"`
	Visible           bool              `json:"isVisible"`
}

// Feature and InclusionItem keep an unrecognized stored icon key in
// IconKey so it is written back unchanged and reported again on the next
// load.
type Feature struct {
	Icon        Icon   `json:"icon"`
	IconKey     string `json:"-"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type featureJSON struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func (f Feature) MarshalJSON() ([]byte, error) {
	return json.Marshal(featureJSON{Icon: f.Icon.storedKey(f.IconKey), Title: f.Title, Description: f.Description})
}

func (f *Feature) UnmarshalJSON(b []byte) error {
	var doc featureJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	ic, key := LookupIcon(doc.Icon)
	*f = Feature{Icon: ic, IconKey: key, Title: doc.Title, Description: doc.Description}
	return nil
}

type InclusionItem struct {
	Icon    Icon   `json:"icon"`
	IconKey string `json:"-"`
	Title   string `json:"title"`
}

type inclusionJSON struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
}

func (it InclusionItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(inclusionJSON{Icon: it.Icon.storedKey(it.IconKey), Title: it.Title})
}

func (it *InclusionItem) UnmarshalJSON(b []byte) error {
	var doc inclusionJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	ic, key := LookupIcon(doc.Icon)
	*it = InclusionItem{Icon: ic, IconKey: key, Title: doc.Title}
	return nil
}

type AirportInfo struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Distance string `json:"distance"`
	Time     string `json:"time"`
}

// PackageCategory groups programs that share one price table. Every item
// is bookable against every tier.
type PackageCategory struct {
	Title      string        `json:"title"`
	Items      []PackageItem `json:"items"`
	PriceTiers []PriceTier   `json:"priceTiers"`
}

type PackageItem struct {
	Name      string   `json:"name"`
	Durations []string `json:"durations"` // display only
}

type PriceTier struct {
	DurationLabel string `json:"durationLabel"`
	PriceSingle   Price  `json:"priceSingle"`
	PriceDouble   Price  `json:"priceDouble"`
}

// Bookable reports whether the configurator has anything to offer.
func (r Resort) Bookable() bool { return len(r.PackageCategories) > 0 }

// DisplayStars defaults to five when the resort has no rating.
func (r Resort) DisplayStars() int {
	if r.Stars == nil || *r.Stars <= 0 {
		return 5
	}
	return *r.Stars
}

// Summary is the short text shown on the detail page.
func (r Resort) Summary() string {
	if r.LongDescription != "" {
		return r.LongDescription
	}
	return r.Description
}

// CategoryFor returns the first category that lists an item with the given
// name. Item names are expected to be unique across the resort.
func (r Resort) CategoryFor(item string) (int, bool) {
	for i, c := range r.PackageCategories {
		for _, it := range c.Items {
			if it.Name == item {
				return i, true
			}
		}
	}
	return -1, false
}

// DuplicateItemNames lists item names that appear more than once anywhere
// in the resort.
func (r Resort) DuplicateItemNames() []string {
	seen := map[string]int{}
	var dups []string
	for _, c := range r.PackageCategories {
		for _, it := range c.Items {
			seen[it.Name]++
			if seen[it.Name] == 2 {
				dups = append(dups, it.Name)
			}
		}
	}
	return dups
}

// Clone deep-copies the resort so drafts never alias published content.
func (r Resort) Clone() Resort {
	out := r
	if r.Stars != nil {
		s := *r.Stars
		out.Stars = &s
	}
	if r.BookingScore != nil {
		b := *r.BookingScore
		out.BookingScore = &b
	}
	if r.Airport != nil {
		a := *r.Airport
		out.Airport = &a
	}
	out.Features = append([]Feature(nil), r.Features...)
	out.OfferIncludes = append([]InclusionItem(nil), r.OfferIncludes...)
	out.TreatmentIncludes = append([]InclusionItem(nil), r.TreatmentIncludes...)
	out.OfferExcludes = append([]InclusionItem(nil), r.OfferExcludes...)
	out.PackageCategories = make([]PackageCategory, len(r.PackageCategories))
	for i, c := range r.PackageCategories {
		nc := PackageCategory{Title: c.Title}
		nc.Items = make([]PackageItem, len(c.Items))
		for j, it := range c.Items {
			nc.Items[j] = PackageItem{Name: it.Name, Durations: append([]string(nil), it.Durations...)}
		}
		nc.PriceTiers = append([]PriceTier(nil), c.PriceTiers...)
		out.PackageCategories[i] = nc
	}
	return out
}

// Snapshot is one consistent read of the site content.
type Snapshot struct {
	Hero    []string `json:"hero"`
	Resorts []Resort `json:"resorts"`
	Schema  Schema   `json:"schema"`
}

// Schema identifies which stored layout a snapshot was migrated from.
type Schema string

const (
	SchemaDefaults     Schema = "defaults"
	SchemaLegacyImages Schema = "legacy-images"
	SchemaCatalog      Schema = "catalog"
)

// Site-content keys.
const (
	KeyHeroImage   = "hero_image"
	KeyResortsData = "resorts_data"
)

// LegacyResortImageKey is the per-resort image key used before the whole
// catalog was stored as one blob.
func LegacyResortImageKey(id string) string { return "resort_" + id + "_image" }
