package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

const MaxChatTurns = 15

const (
	EventMenu     = "menu"
	EventServices = "services"
	EventService  = "service"
	EventPricing  = "pricing"
	EventContact  = "contact"
)

type serviceInfo struct {
	ID      string
	Title   map[entity.Language]string
	Summary map[entity.Language]string
}

var assistantServices = []serviceInfo{
	{
		ID:      "online_ordering",
		Title:   map[entity.Language]string{"en": "Online ordering", "ar": "الطلب أونلاين"},
		Summary: map[entity.Language]string{"en": "A branded ordering page with menu, cart and delivery zones.", "ar": "صفحة طلب باسم نشاطك مع قائمة وسلة ومناطق توصيل."},
	},
	{
		ID:      "whatsapp_bot",
		Title:   map[entity.Language]string{"en": "WhatsApp assistant", "ar": "مساعد واتساب"},
		Summary: map[entity.Language]string{"en": "Answers questions and takes orders on WhatsApp around the clock.", "ar": "يرد على الاستفسارات ويستقبل الطلبات عبر واتساب على مدار الساعة."},
	},
	{
		ID:      "website",
		Title:   map[entity.Language]string{"en": "Business website", "ar": "موقع إلكتروني"},
		Summary: map[entity.Language]string{"en": "A fast mobile-first site that ranks on local search.", "ar": "موقع سريع يناسب الجوال ويظهر في نتائج البحث المحلية."},
	},
	{
		ID:      "social_media",
		Title:   map[entity.Language]string{"en": "Social media kit", "ar": "باقة التواصل الاجتماعي"},
		Summary: map[entity.Language]string{"en": "Templates and scheduling for Instagram, TikTok and Facebook.", "ar": "قوالب وجدولة لمنشورات إنستغرام وتيك توك وفيسبوك."},
	},
}

var assistantText = map[entity.Language]map[string]string{
	entity.LanguageEnglish: {
		"greeting":       "Hi! I can walk you through our services, pricing or put you in touch with the team. What would you like to do?",
		"services":       "Here is what we offer:",
		"pricing":        "Our plans:",
		"contact":        "You can reach us on WhatsApp, by email or by phone. Pick whatever suits you.",
		"unknownService": "I could not find that service. Here is the full list:",
		"opt_services":   "Our services",
		"opt_pricing":    "Pricing",
		"opt_contact":    "Talk to the team",
		"opt_menu":       "Main menu",
		"system":         "You are a friendly sales assistant for a studio that builds online ordering, WhatsApp assistants and websites for small businesses. Answer briefly in English. Suggest a demo when the visitor shows interest.",
	},
	entity.LanguageArabic: {
		"greeting":       "أهلاً! يمكنني تعريفك بخدماتنا وأسعارنا أو توصيلك بفريقنا. ماذا تود أن تفعل؟",
		"services":       "هذه خدماتنا:",
		"pricing":        "باقاتنا:",
		"contact":        "يمكنك التواصل معنا عبر واتساب أو البريد الإلكتروني أو الهاتف.",
		"unknownService": "لم أجد هذه الخدمة. هذه القائمة الكاملة:",
		"opt_services":   "خدماتنا",
		"opt_pricing":    "الأسعار",
		"opt_contact":    "تحدث مع الفريق",
		"opt_menu":       "القائمة الرئيسية",
		"system":         "أنت مساعد مبيعات ودود لاستوديو يبني أنظمة الطلب أونلاين ومساعدات واتساب والمواقع للأنشطة الصغيرة. أجب باختصار باللغة العربية واقترح عرضاً تجريبياً عند اهتمام الزائر.",
	},
}

type ContactInfo struct {
	WhatsApp string
	Email    string
	Phone    string
}

// AssistantUseCase answers the chat widget. Menu events are answered
// deterministically; free conversation goes to the language model.
type AssistantUseCase struct {
	Model    LanguageModel
	Plans    entity.PlanRepository
	Contact  ContactInfo
	Recorder Recorder
	Logger   *zap.Logger
}

func NewAssistantUseCase(model LanguageModel, plans entity.PlanRepository, contact ContactInfo, recorder Recorder, logger *zap.Logger) *AssistantUseCase {
	return &AssistantUseCase{
		Model:    model,
		Plans:    plans,
		Contact:  contact,
		Recorder: recorderOrNop(recorder),
		Logger:   logger,
	}
}

func (uc *AssistantUseCase) Execute(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	lang := entity.ParseLanguage(input.Language)
	if lang == "" {
		lang = entity.LanguageEnglish
	}

	if input.Event != "" {
		return uc.navigate(ctx, lang, input.Event, input.Value)
	}

	history := TrimHistory(input.Messages, MaxChatTurns)
	if len(history) == 0 {
		return uc.navigate(ctx, lang, EventMenu, "")
	}

	if uc.Model == nil {
		return nil, &TechnicalError{Code: CodeAIUnavailable, Message: "assistant is not configured"}
	}

	reply, err := uc.Model.Complete(ctx, assistantText[lang]["system"], history)
	if err != nil {
		uc.Recorder.IntegrationError("gemini")
		uc.Logger.Error("language model call failed", zap.Error(err))
		return nil, &TechnicalError{Code: CodeAIUnavailable, Message: "assistant is unavailable", Err: err}
	}

	return &ChatOutput{
		Reply:   strings.TrimSpace(reply),
		Options: mainOptions(lang),
		Data:    map[string]any{"source": "model"},
	}, nil
}

// TrimHistory keeps the last n non-empty turns.
func TrimHistory(messages []ChatMessage, n int) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, m)
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

func (uc *AssistantUseCase) navigate(ctx context.Context, lang entity.Language, event, value string) (*ChatOutput, error) {
	text := assistantText[lang]

	switch event {
	case EventServices:
		return &ChatOutput{
			Reply:   text["services"],
			Options: append(serviceOptions(lang), ChatOption{Label: text["opt_menu"], Event: EventMenu}),
			Data:    map[string]any{"event": event},
		}, nil

	case EventService:
		for _, s := range assistantServices {
			if s.ID == value {
				return &ChatOutput{
					Reply: fmt.Sprintf("%s: %s", s.Title[lang], s.Summary[lang]),
					Options: []ChatOption{
						{Label: text["opt_pricing"], Event: EventPricing},
						{Label: text["opt_contact"], Event: EventContact},
						{Label: text["opt_menu"], Event: EventMenu},
					},
					Data: map[string]any{"event": event, "service": s.ID},
				}, nil
			}
		}
		return &ChatOutput{
			Reply:   text["unknownService"],
			Options: serviceOptions(lang),
			Data:    map[string]any{"event": event},
		}, nil

	case EventPricing:
		plans, err := uc.Plans.List(ctx)
		if err != nil {
			uc.Logger.Error("failed to list plans", zap.Error(err))
			return nil, &TechnicalError{Code: CodeStorage, Message: "failed to load plans", Err: err}
		}
		lines := []string{text["pricing"]}
		data := make([]map[string]any, 0, len(plans))
		for _, p := range plans {
			lines = append(lines, fmt.Sprintf("- %s: %s", p.Name, formatPrice(p)))
			data = append(data, map[string]any{"id": p.ID, "name": p.Name, "price_cents": p.PriceCents, "currency": p.Currency, "interval": p.Interval})
		}
		return &ChatOutput{
			Reply: strings.Join(lines, "\n"),
			Options: []ChatOption{
				{Label: text["opt_contact"], Event: EventContact},
				{Label: text["opt_menu"], Event: EventMenu},
			},
			Data: map[string]any{"event": event, "plans": data},
		}, nil

	case EventContact:
		return &ChatOutput{
			Reply:   text["contact"],
			Options: []ChatOption{{Label: text["opt_menu"], Event: EventMenu}},
			Data: map[string]any{
				"event":    event,
				"whatsapp": uc.Contact.WhatsApp,
				"email":    uc.Contact.Email,
				"phone":    uc.Contact.Phone,
			},
		}, nil

	default:
		return &ChatOutput{
			Reply:   text["greeting"],
			Options: mainOptions(lang),
			Data:    map[string]any{"event": EventMenu},
		}, nil
	}
}

func mainOptions(lang entity.Language) []ChatOption {
	text := assistantText[lang]
	return []ChatOption{
		{Label: text["opt_services"], Event: EventServices},
		{Label: text["opt_pricing"], Event: EventPricing},
		{Label: text["opt_contact"], Event: EventContact},
	}
}

func serviceOptions(lang entity.Language) []ChatOption {
	opts := make([]ChatOption, 0, len(assistantServices))
	for _, s := range assistantServices {
		opts = append(opts, ChatOption{Label: s.Title[lang], Event: EventService, Value: s.ID})
	}
	return opts
}

func formatPrice(p *entity.Plan) string {
	amount := fmt.Sprintf("%d.%02d %s", p.PriceCents/100, p.PriceCents%100, strings.ToUpper(p.Currency))
	if p.Interval != "" {
		amount += " / " + p.Interval
	}
	return amount
}
