package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

// IntakeUseCase is the lead intake boundary used by the public form, the chat
// widget terminal step and manual admin entry.
type IntakeUseCase struct {
	Store     *LeadStore
	Tasks     *BackgroundTasks
	Sheet     LeadSheet
	Publisher NotificationPublisher
	Recorder  Recorder
	Logger    *zap.Logger
}

func NewIntakeUseCase(
	store *LeadStore,
	tasks *BackgroundTasks,
	sheet LeadSheet,
	publisher NotificationPublisher,
	recorder Recorder,
	logger *zap.Logger,
) *IntakeUseCase {
	return &IntakeUseCase{
		Store:     store,
		Tasks:     tasks,
		Sheet:     sheet,
		Publisher: publisher,
		Recorder:  recorderOrNop(recorder),
		Logger:    logger,
	}
}

func (uc *IntakeUseCase) Execute(ctx context.Context, input LeadInput) (*LeadOutput, error) {
	if errs := ValidateLeadInput(input); len(errs) > 0 {
		return nil, validationDomainError(errs)
	}

	lead, err := uc.Store.Create(ctx, LeadFromInput(input))
	if err != nil {
		return nil, err
	}
	uc.Recorder.LeadCaptured(lead.Source)

	if uc.Sheet != nil {
		snapshot := lead.Clone()
		uc.Tasks.Go("sheet_append", func(ctx context.Context) error {
			return uc.Sheet.AppendLead(ctx, snapshot)
		})
	}

	if lead.Priority == entity.PriorityHigh && uc.Publisher != nil {
		n := HotLeadNotification(lead, uc.Store.Now())
		uc.Tasks.Go("hot_lead_notification", func(ctx context.Context) error {
			return uc.Publisher.Publish(ctx, n)
		})
	}

	return &LeadOutput{
		ID:       lead.ID,
		Status:   lead.Status,
		Score:    lead.Score,
		Priority: lead.Priority,
	}, nil
}

// LeadFromInput maps the intake payload onto a partial lead.
func LeadFromInput(input LeadInput) entity.Lead {
	return entity.Lead{
		Name:         strings.TrimSpace(input.Name),
		City:         strings.TrimSpace(input.City),
		Language:     entity.ParseLanguage(input.Language),
		BusinessType: strings.TrimSpace(input.BusinessType),
		Service:      strings.TrimSpace(input.Service),
		Contact: entity.Contact{
			Phone:    strings.TrimSpace(input.Phone),
			WhatsApp: strings.TrimSpace(input.WhatsApp),
			Email:    strings.TrimSpace(input.Email),
		},
		Socials: entity.Socials{
			Instagram: input.Instagram,
			Facebook:  input.Facebook,
			LinkedIn:  input.LinkedIn,
			TikTok:    input.TikTok,
		},
		Source: entity.ParseSource(input.Source),
		Qualification: entity.Qualification{
			HasWebsite:    input.HasWebsite,
			HasOrdering:   input.HasOrdering,
			HasWhatsApp:   input.HasWhatsApp,
			EstimatedSize: entity.Size(input.EstimatedSize),
		},
		Notes: input.Notes,
	}
}

func HotLeadNotification(lead *entity.Lead, now time.Time) *entity.Notification {
	return &entity.Notification{
		ID:   uuid.NewString(),
		Type: entity.NotificationHotLead,
		Data: map[string]any{
			"lead_id":       lead.ID,
			"name":          lead.Name,
			"phone":         lead.Contact.Phone,
			"whatsapp":      lead.Contact.WhatsApp,
			"email":         lead.Contact.Email,
			"business_type": lead.BusinessType,
			"service":       lead.Service,
			"source":        string(lead.Source),
			"score":         lead.Score,
		},
		CreatedAt: now,
	}
}
