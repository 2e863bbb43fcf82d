package app

// InfoSection is one block of the static Ayurveda introduction.
type InfoSection struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// AyurvedaInfo is the static "about Ayurveda" page content.
type AyurvedaInfo struct {
	Headline string        `json:"headline"`
	Intro    []string      `json:"intro"`
	Doshas   []InfoSection `json:"doshas"`
	Healing  []InfoSection `json:"healing"`
	Notice   string        `json:"notice"`
}

func Info() AyurvedaInfo {
	return AyurvedaInfo{
		Headline: "ما هي الأيورفيدا؟",
		Intro: []string{
			`كلمة "Ayurveda" معناها علم الحياة أو فن العيش بصحة.`,
			"نشأت في الهند قبل أكثر من 4000–5000 سنة ولا تزال تُمارس هناك وفي دول أخرى حتى اليوم.",
			`تعتبر من أنظمة "الطب البديل/التكميلي" وليست بديلاً كاملاً عن الطب الحديث، بل تُستخدم غالباً معه.`,
		},
		Doshas: []InfoSection{
			{Title: "فاتا (Vata)", Body: "مرتبطة بالحركة والهواء، مثل حركة الأعصاب والتنفس."},
			{Title: "بيتا (Pitta)", Body: "مرتبطة بالنار والهضم والطاقة والتحولات في الجسم."},
			{Title: "كافا (Kapha)", Body: "مرتبطة بالماء والأرض، تعطي ثباتاً ورطوبة للجسم والمناعة."},
		},
		Healing: []InfoSection{
			{Title: "الأعشاب والزيوت", Body: "استخدام تركيبات عشبية وزيوت طبية دافئة مخصصة لكل حالة لتعزيز الشفاء العميق."},
			{Title: "الغذاء كدواء", Body: "أنظمة غذائية دقيقة تعيد التوازن للدوشا المختلة، فما يناسب الفاتا قد يضر البيتا."},
			{Title: "البانشاكارما", Body: "عمليات تطهير عميقة لإخراج السموم المتراكمة في الجسم عبر المساج والبخار وغيرها."},
			{Title: "نمط الحياة", Body: "ضبط الساعة البيولوجية، النوم المبكر، اليوغا، والتأمل لتهدئة العقل."},
		},
		Notice: "تهدف هذه البرامج لتحسين جودة الحياة والوقاية. في الحالات المرضية المزمنة، يجب دائماً استشارة الطبيب المختص قبل البدء في أي برنامج علاجي مكثف، حيث أن بعض الأعشاب قد تتفاعل مع الأدوية الطبية.",
	}
}
