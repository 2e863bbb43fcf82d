package app

import "ayurveda_resorts/internal/domain"

// DefaultHeroImage is shown when no hero list is stored.
const DefaultHeroImage = "https://images.unsplash.com/photo-1602216056096-3b40cc0c9944?q=80&w=2070&auto=format&fit=crop"

// PriceDisclaimer accompanies every price table.
const PriceDisclaimer = "ملاحظة: الأسعار الموضحة أعلاه هي أسعار استرشادية وتخضع للتغيير بناءً على توفر الغرف، الموسم، والضرائب الحكومية. الأسعار النهائية يتم تأكيدها عند التواصل وإتمام الحجز."

// DefaultSnapshot is the built-in catalog used when the store is empty or
// unreachable.
func DefaultSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Hero:    []string{DefaultHeroImage},
		Resorts: defaultResorts(),
		Schema:  domain.SchemaDefaults,
	}
}

func defaultResorts() []domain.Resort {
	five := 5
	score1, score2 := 9.1, 8.8
	return []domain.Resort{
		{
			ID:              "somatheeram",
			Name:            "منتجع سوماتيرام",
			Location:        "كوفالام، كيرلا",
			Description:     "قرية أيورفيدا على تلة تطل على بحر العرب.",
			LongDescription: "منتجع أيورفيدا تقليدي يجمع بين العلاج على يد أطباء متخصصين والإقامة في أكواخ خشبية وسط حدائق استوائية تطل على الشاطئ.",
			ImageURL:        "https://images.unsplash.com/photo-1540541338287-41700207dee6?q=80&w=1600&auto=format&fit=crop",
			Badge:           "الأكثر طلباً",
			Stars:           &five,
			BookingScore:    &score1,
			Airport:         &domain.AirportInfo{Code: "TRV", Name: "مطار تريفاندرم الدولي", Distance: "21 km", Time: "35 min"},
			Features: []domain.Feature{
				{Icon: domain.IconStethoscope, Title: "استشارة طبية يومية", Description: "متابعة مع طبيب أيورفيدا طوال الإقامة"},
				{Icon: domain.IconSunset, Title: "إطلالة على البحر"},
				{Icon: domain.IconActivity, Title: "جلسات يوغا وتأمل"},
			},
			OfferIncludes: []domain.InclusionItem{
				{Icon: domain.IconBed, Title: "الإقامة"},
				{Icon: domain.IconUtensils, Title: "ثلاث وجبات نباتية يومياً"},
				{Icon: domain.IconPlane, Title: "الاستقبال من المطار"},
			},
			TreatmentIncludes: []domain.InclusionItem{
				{Icon: domain.IconHandHeart, Title: "مساج علاجي يومي"},
				{Icon: domain.IconLeaf, Title: "أدوية عشبية"},
			},
			OfferExcludes: []domain.InclusionItem{
				{Icon: domain.IconFlag, Title: "تذاكر الطيران"},
			},
			PackageCategories: []domain.PackageCategory{
				{
					Title: "باقات العافية",
					Items: []domain.PackageItem{
						{Name: "تجديد النشاط", Durations: []string{"7 ليالٍ", "14 ليلة"}},
						{Name: "تخفيف الوزن", Durations: []string{"7 ليالٍ", "14 ليلة"}},
					},
					PriceTiers: []domain.PriceTier{
						{DurationLabel: "7 ليالٍ", PriceSingle: domain.NewPrice(950000), PriceDouble: domain.NewPrice(1600000)},
						{DurationLabel: "14 ليلة", PriceSingle: domain.NewPrice(1800000), PriceDouble: domain.NewPrice(3000000)},
					},
				},
				{
					Title: "البرامج العلاجية",
					Items: []domain.PackageItem{
						{Name: "علاج آلام الظهر والمفاصل", Durations: []string{"14 ليلة", "21 ليلة"}},
					},
					PriceTiers: []domain.PriceTier{
						{DurationLabel: "14 ليلة", PriceSingle: domain.NewPrice(2100000), PriceDouble: domain.NewPrice(3500000)},
						{DurationLabel: "21 ليلة", PriceSingle: domain.NewPrice(2900000), PriceDouble: domain.NewPrice(4800000)},
					},
				},
			},
			Visible: true,
		},
		{
			ID:           "kairali",
			Name:         "منتجع كايرالي للشفاء",
			Location:     "بالاكاد، كيرلا",
			Description:  "منتجع علاجي بين حقول الأرز وأشجار النخيل.",
			ImageURL:     "https://images.unsplash.com/photo-1571896349842-33c89424de2d?q=80&w=1600&auto=format&fit=crop",
			Stars:        &five,
			BookingScore: &score2,
			Airport:      &domain.AirportInfo{Code: "CJB", Name: "مطار كويمباتور الدولي", Distance: "60 km", Time: "1.5 h"},
			Features: []domain.Feature{
				{Icon: domain.IconLeaf, Title: "مزرعة أعشاب عضوية"},
				{Icon: domain.IconWaves, Title: "مسبح خارجي"},
				{Icon: domain.IconWifi, Title: "واي فاي مجاني"},
			},
			PackageCategories: []domain.PackageCategory{
				{
					Title: "باقات الاسترخاء",
					Items: []domain.PackageItem{
						{Name: "التخلص من السموم", Durations: []string{"7 ليالٍ", "14 ليلة"}},
						{Name: "مكافحة التوتر", Durations: []string{"7 ليالٍ"}},
					},
					PriceTiers: []domain.PriceTier{
						{DurationLabel: "7 ليالٍ", PriceSingle: domain.NewPrice(1100000), PriceDouble: domain.NewPrice(1850000)},
						{DurationLabel: "14 ليلة", PriceSingle: domain.NewPrice(2000000), PriceDouble: domain.NewPrice(3400000)},
					},
				},
			},
			Visible: true,
		},
	}
}
