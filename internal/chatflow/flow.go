// Package chatflow drives the lead qualification dialogue of the chat widget:
// business type, then service interest, then a contact channel. Reaching a
// contact channel submits the collected answers as a lead without waiting on
// the result.
package chatflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
	"github.com/xavierca1/leadfunnel/internal/usecase"
)

type Step int

const (
	StepBusinessType Step = 0
	StepService      Step = 1
	StepContact      Step = 2
)

type ContactChannel string

const (
	ChannelWhatsApp ContactChannel = "whatsapp"
	ChannelEmail    ContactChannel = "email"
	ChannelPhone    ContactChannel = "phone"
)

var (
	ErrUnknownOption  = errors.New("option not available at this step")
	ErrFlowComplete   = errors.New("flow already reached the contact step")
	ErrNotAtContact   = errors.New("contact actions are only available at the last step")
	ErrEmptyText      = errors.New("text must not be empty")
	ErrChannelHidden  = errors.New("contact channel not offered")
	ErrSessionExpired = errors.New("session not found or expired")
)

type Session struct {
	ID           string          `json:"id"`
	Language     entity.Language `json:"language"`
	Context      PageContext     `json:"context"`
	Step         Step            `json:"step"`
	BusinessType string          `json:"business_type,omitempty"`
	Service      string          `json:"service,omitempty"`
	FreeText     string          `json:"free_text,omitempty"`
	Preselected  ContactChannel  `json:"preselected_channel,omitempty"`
	Submitted    bool            `json:"submitted"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type ContactAction struct {
	Channel ContactChannel `json:"channel"`
	Label   string         `json:"label"`
	URL     string         `json:"url"`
}

// View is what the widget renders for the current step.
type View struct {
	SessionID   string          `json:"session_id"`
	Step        Step            `json:"step"`
	Prompt      string          `json:"prompt"`
	Options     []Option        `json:"options,omitempty"`
	Actions     []ContactAction `json:"actions,omitempty"`
	TypingDelay int64           `json:"typing_delay_ms"`
}

type ContactTargets struct {
	WhatsApp string
	Email    string
	Phone    string
}

// Visitor is whatever the widget already knows about the person.
type Visitor struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type LeadSubmitter interface {
	Execute(ctx context.Context, input usecase.LeadInput) (*usecase.LeadOutput, error)
}

type Flow struct {
	Targets     ContactTargets
	Intake      LeadSubmitter
	Tasks       *usecase.BackgroundTasks
	TypingDelay time.Duration
	Logger      *zap.Logger
	Now         func() time.Time
}

func NewFlow(targets ContactTargets, intake LeadSubmitter, tasks *usecase.BackgroundTasks, typingDelay time.Duration, logger *zap.Logger) *Flow {
	return &Flow{
		Targets:     targets,
		Intake:      intake,
		Tasks:       tasks,
		TypingDelay: typingDelay,
		Logger:      logger,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start opens a session. The demo context skips the business type question.
func (f *Flow) Start(lang entity.Language, pageCtx PageContext, preselected string) *Session {
	if lang == "" {
		lang = entity.LanguageEnglish
	}
	now := f.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Language:  lang,
		Context:   pageCtx,
		Step:      StepBusinessType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pageCtx == ContextDemo {
		s.Step = StepService
	}
	switch ch := ContactChannel(strings.ToLower(preselected)); ch {
	case ChannelWhatsApp, ChannelEmail, ChannelPhone:
		s.Preselected = ch
	}
	return s
}

func (f *Flow) View(s *Session) View {
	v := View{
		SessionID:   s.ID,
		Step:        s.Step,
		Prompt:      prompts[s.Language][s.Step],
		TypingDelay: f.TypingDelay.Milliseconds(),
	}
	if s.Step == StepContact {
		v.Actions = f.ContactActions(s)
	} else {
		v.Options = options(s.Context, s.Step, s.Language)
	}
	return v
}

// Select advances one step, or jumps to the contact step for "not sure".
func (f *Flow) Select(s *Session, optionID string) error {
	if s.Step == StepContact {
		return ErrFlowComplete
	}
	opt, ok := findOption(s.Context, s.Step, optionID)
	if !ok {
		return ErrUnknownOption
	}

	switch {
	case opt.id == NotSureID:
		s.Step = StepContact
	case s.Step == StepBusinessType:
		s.BusinessType = opt.id
		s.Step = StepService
	case s.Step == StepService:
		s.Service = opt.id
		s.Step = StepContact
	}
	s.UpdatedAt = f.Now()
	return nil
}

const maxFreeTextRunes = 1000

// SubmitText records free text and always jumps to the contact step.
func (f *Flow) SubmitText(s *Session, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	if r := []rune(text); len(r) > maxFreeTextRunes {
		text = string(r[:maxFreeTextRunes])
	}
	s.FreeText = text
	s.Step = StepContact
	s.UpdatedAt = f.Now()
	return nil
}

// ContactActions lists the deep links for the session, limited to the
// preselected channel when the referring page carried one.
func (f *Flow) ContactActions(s *Session) []ContactAction {
	summary := f.summary(s)
	labels := actionLabels[s.Language]

	var out []ContactAction
	add := func(ch ContactChannel, link string) {
		if link == "" || (s.Preselected != "" && s.Preselected != ch) {
			return
		}
		out = append(out, ContactAction{Channel: ch, Label: labels[ch], URL: link})
	}

	if digits := usecase.NormalizePhone(f.Targets.WhatsApp); digits != "" {
		add(ChannelWhatsApp, "https://wa.me/"+digits+"?text="+url.QueryEscape(summary))
	}
	if f.Targets.Email != "" {
		q := url.Values{}
		q.Set("subject", subjectFor(s.Language))
		q.Set("body", summary)
		add(ChannelEmail, "mailto:"+f.Targets.Email+"?"+strings.ReplaceAll(q.Encode(), "+", "%20"))
	}
	if digits := usecase.NormalizePhone(f.Targets.Phone); digits != "" {
		add(ChannelPhone, "tel:+"+digits)
	}
	return out
}

// Activate submits the lead in the background and returns the link to open.
// The submission result is never reported back to the visitor.
func (f *Flow) Activate(s *Session, ch ContactChannel, visitor Visitor) (string, error) {
	if s.Step != StepContact {
		return "", ErrNotAtContact
	}

	var link string
	for _, a := range f.ContactActions(s) {
		if a.Channel == ch {
			link = a.URL
			break
		}
	}
	if link == "" {
		return "", ErrChannelHidden
	}

	input := f.leadInput(s, visitor)
	if !s.Submitted {
		sessionID := s.ID
		f.Tasks.Go("flow_lead_submit", func(ctx context.Context) error {
			out, err := f.Intake.Execute(ctx, input)
			if err != nil {
				return fmt.Errorf("session %s: %w", sessionID, err)
			}
			f.Logger.Info("flow lead submitted", zap.String("session_id", sessionID), zap.String("lead_id", out.ID))
			return nil
		})
		s.Submitted = true
	}
	s.UpdatedAt = f.Now()
	return link, nil
}

func (f *Flow) leadInput(s *Session, v Visitor) usecase.LeadInput {
	name := strings.TrimSpace(v.Name)
	if name == "" && v.Phone == "" && v.Email == "" {
		// The widget rarely knows who the visitor is; keep the lead traceable.
		name = "Chat visitor " + s.ID[:8]
	}

	notes := s.FreeText
	if s.Context != ContextDefault {
		notes = strings.TrimSpace(fmt.Sprintf("[%s] %s", s.Context, notes))
	}

	return usecase.LeadInput{
		Name:         name,
		Language:     string(s.Language),
		BusinessType: s.BusinessType,
		Service:      s.Service,
		Phone:        v.Phone,
		Email:        v.Email,
		Source:       string(entity.SourceChat),
		Notes:        notes,
	}
}

func (f *Flow) summary(s *Session) string {
	business := s.BusinessType
	service := s.Service
	if def, ok := findOption(s.Context, StepBusinessType, business); ok {
		business = def.label[s.Language]
	}
	if def, ok := findOption(s.Context, StepService, service); ok {
		service = def.label[s.Language]
	}

	var parts []string
	if s.Language == entity.LanguageArabic {
		parts = append(parts, "مرحباً، أود معرفة المزيد.")
		if business != "" {
			parts = append(parts, "نوع النشاط: "+business)
		}
		if service != "" {
			parts = append(parts, "الخدمة: "+service)
		}
	} else {
		parts = append(parts, "Hi, I'd like to learn more.")
		if business != "" {
			parts = append(parts, "Business: "+business)
		}
		if service != "" {
			parts = append(parts, "Interested in: "+service)
		}
	}
	if s.FreeText != "" {
		parts = append(parts, s.FreeText)
	}
	return strings.Join(parts, "\n")
}

func subjectFor(lang entity.Language) string {
	if lang == entity.LanguageArabic {
		return "استفسار من الموقع"
	}
	return "Website enquiry"
}
