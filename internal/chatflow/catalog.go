package chatflow

import "github.com/xavierca1/leadfunnel/internal/entity"

type PageContext string

const (
	ContextDefault    PageContext = "default"
	ContextRestaurant PageContext = "restaurant"
	ContextRetail     PageContext = "retail"
	ContextDemo       PageContext = "demo"
	ContextPricing    PageContext = "pricing"
)

func ParsePageContext(s string) PageContext {
	switch c := PageContext(s); c {
	case ContextRestaurant, ContextRetail, ContextDemo, ContextPricing:
		return c
	default:
		return ContextDefault
	}
}

// NotSureID is the option that skips straight to the contact step.
const NotSureID = "not_sure"

type label map[entity.Language]string

type optionDef struct {
	id    string
	label label
}

type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var notSure = optionDef{NotSureID, label{"en": "Not sure, I need help", "ar": "لست متأكداً، أحتاج مساعدة"}}

var (
	businessDefault = []optionDef{
		{"restaurant", label{"en": "Restaurant", "ar": "مطعم"}},
		{"cafe", label{"en": "Cafe", "ar": "مقهى"}},
		{"retail", label{"en": "Retail store", "ar": "متجر"}},
		{"services", label{"en": "Services", "ar": "خدمات"}},
		notSure,
	}
	businessRestaurant = []optionDef{
		{"restaurant", label{"en": "Restaurant", "ar": "مطعم"}},
		{"cafe", label{"en": "Cafe", "ar": "مقهى"}},
		{"bakery", label{"en": "Bakery", "ar": "مخبز"}},
		{"cloud_kitchen", label{"en": "Cloud kitchen", "ar": "مطبخ سحابي"}},
		notSure,
	}
	businessRetail = []optionDef{
		{"fashion", label{"en": "Fashion", "ar": "أزياء"}},
		{"electronics", label{"en": "Electronics", "ar": "إلكترونيات"}},
		{"grocery", label{"en": "Grocery", "ar": "بقالة"}},
		{"beauty", label{"en": "Beauty", "ar": "تجميل"}},
		notSure,
	}

	servicesDefault = []optionDef{
		{"online_ordering", label{"en": "Online ordering", "ar": "الطلب أونلاين"}},
		{"whatsapp_bot", label{"en": "WhatsApp assistant", "ar": "مساعد واتساب"}},
		{"website", label{"en": "Website", "ar": "موقع إلكتروني"}},
		{"social_media", label{"en": "Social media", "ar": "التواصل الاجتماعي"}},
		notSure,
	}
	servicesRetail = []optionDef{
		{"online_store", label{"en": "Online store", "ar": "متجر إلكتروني"}},
		{"whatsapp_bot", label{"en": "WhatsApp assistant", "ar": "مساعد واتساب"}},
		{"social_media", label{"en": "Social media", "ar": "التواصل الاجتماعي"}},
		notSure,
	}
	servicesPricing = []optionDef{
		{"starter", label{"en": "Starter plan", "ar": "الباقة الأساسية"}},
		{"growth", label{"en": "Growth plan", "ar": "باقة النمو"}},
		{"pro", label{"en": "Pro plan", "ar": "الباقة الاحترافية"}},
		notSure,
	}
)

var catalog = map[PageContext][2][]optionDef{
	ContextDefault:    {businessDefault, servicesDefault},
	ContextRestaurant: {businessRestaurant, servicesDefault},
	ContextRetail:     {businessRetail, servicesRetail},
	ContextDemo:       {businessDefault, servicesDefault},
	ContextPricing:    {businessDefault, servicesPricing},
}

var prompts = map[entity.Language][3]string{
	entity.LanguageEnglish: {
		"Hi! What kind of business do you run?",
		"Great. What would you like help with?",
		"Perfect, let's talk. How would you like to reach us?",
	},
	entity.LanguageArabic: {
		"أهلاً! ما نوع نشاطك التجاري؟",
		"رائع. بماذا يمكننا مساعدتك؟",
		"ممتاز، لنتحدث. كيف تفضل التواصل معنا؟",
	},
}

var actionLabels = map[entity.Language]map[ContactChannel]string{
	entity.LanguageEnglish: {ChannelWhatsApp: "Chat on WhatsApp", ChannelEmail: "Send an email", ChannelPhone: "Call us"},
	entity.LanguageArabic:  {ChannelWhatsApp: "تواصل عبر واتساب", ChannelEmail: "أرسل بريداً", ChannelPhone: "اتصل بنا"},
}

func options(ctx PageContext, step Step, lang entity.Language) []Option {
	if step > StepService {
		return nil
	}
	defs := catalog[ctx][step]
	out := make([]Option, 0, len(defs))
	for _, d := range defs {
		out = append(out, Option{ID: d.id, Label: d.label[lang]})
	}
	return out
}

func findOption(ctx PageContext, step Step, id string) (optionDef, bool) {
	if step > StepService {
		return optionDef{}, false
	}
	for _, d := range catalog[ctx][step] {
		if d.id == id {
			return d, true
		}
	}
	return optionDef{}, false
}
