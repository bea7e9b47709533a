package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

type PositiveResponseMode string

const (
	// ResponseDirectDemo moves contacted leads straight to demo.
	ResponseDirectDemo PositiveResponseMode = "direct_demo"
	// ResponseViaReplied records replied before sending the demo link.
	ResponseViaReplied PositiveResponseMode = "via_replied"
)

type LanguageFallback string

const (
	// FallbackCityHeuristic treats a lead with a city and no language as Arabic.
	FallbackCityHeuristic LanguageFallback = "city_heuristic"
	FallbackEnglish       LanguageFallback = "english"
)

const NegativeResponseNote = "Lead declined outreach"

const blockedReason = "previous outreach has no reply yet"

var errAwaitingReply = errors.New("lead is awaiting a reply")

type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second}

type OutreachEngine struct {
	Store            *LeadStore
	Templates        *Templates
	Dispatchers      map[entity.Channel]Dispatcher
	Retry            RetryPolicy
	DemoURL          string
	ResponseMode     PositiveResponseMode
	LanguageFallback LanguageFallback
	Recorder         Recorder
	Logger           *zap.Logger
}

func NewOutreachEngine(
	store *LeadStore,
	templates *Templates,
	dispatchers map[entity.Channel]Dispatcher,
	demoURL string,
	mode PositiveResponseMode,
	fallback LanguageFallback,
	recorder Recorder,
	logger *zap.Logger,
) *OutreachEngine {
	if mode == "" {
		mode = ResponseDirectDemo
	}
	if fallback == "" {
		fallback = FallbackCityHeuristic
	}
	return &OutreachEngine{
		Store:            store,
		Templates:        templates,
		Dispatchers:      dispatchers,
		Retry:            DefaultRetryPolicy,
		DemoURL:          demoURL,
		ResponseMode:     mode,
		LanguageFallback: fallback,
		Recorder:         recorderOrNop(recorder),
		Logger:           logger,
	}
}

// TriggerOutreach sends the first templated message on channel and moves the
// lead to contacted. A lead still waiting on a reply is not contacted again:
// that case returns Blocked with a nil error.
func (e *OutreachEngine) TriggerOutreach(ctx context.Context, id string, channel entity.Channel) (*OutreachResult, error) {
	if _, ok := entity.ParseChannel(string(channel)); !ok {
		return nil, &DomainError{Code: CodeInvalidChannel, Message: "unknown channel: " + string(channel)}
	}

	lead, err := e.Store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if lead.AwaitingReply() {
		return e.blocked(lead, channel), nil
	}

	if lead.Status != entity.StatusNew && lead.Status != entity.StatusScored {
		return nil, &DomainError{
			Code:    CodeInvalidState,
			Message: fmt.Sprintf("outreach requires a new or scored lead, got %s", lead.Status),
		}
	}

	to := recipientFor(lead, channel)
	if to == "" {
		return nil, &DomainError{
			Code:    CodeMissingRecipient,
			Message: fmt.Sprintf("lead has no %s contact", channel),
		}
	}

	if err := e.send(ctx, KindOutreach, lead, channel, to); err != nil {
		return nil, err
	}

	updated, err := e.Store.Update(ctx, id, func(l *entity.Lead) error {
		if l.AwaitingReply() {
			return errAwaitingReply
		}
		if err := entity.ApplyStatus(l, entity.StatusContacted, nil, e.Store.Now()); err != nil {
			return err
		}
		l.LastChannel = channel
		return nil
	})
	if errors.Is(err, errAwaitingReply) {
		e.Logger.Warn("concurrent outreach committed first, message already delivered",
			zap.String("lead_id", id), zap.String("channel", string(channel)))
		return e.blocked(lead, channel), nil
	}
	if err != nil {
		return nil, e.Store.storageError(err)
	}

	e.Recorder.OutreachSent(channel)
	e.Logger.Info("outreach sent",
		zap.String("lead_id", id),
		zap.String("channel", string(channel)),
		zap.Int("attempts", updated.OutreachAttempts),
	)

	return &OutreachResult{LeadID: id, Channel: channel, Sent: true, Lead: updated}, nil
}

// HandleResponse records a reply to outreach. Positive replies reach demo and
// get the demo link on the last used channel; negative ones are archived.
func (e *OutreachEngine) HandleResponse(ctx context.Context, id string, positive bool) (*ResponseResult, error) {
	if !positive {
		note := NegativeResponseNote
		lead, err := e.transition(ctx, id, entity.StatusArchived, &note, entity.StatusContacted, entity.StatusReplied)
		if err != nil {
			return nil, err
		}
		e.Logger.Info("lead archived after negative response", zap.String("lead_id", id))
		return &ResponseResult{Lead: lead}, nil
	}

	var (
		lead *entity.Lead
		err  error
	)
	if e.ResponseMode == ResponseViaReplied {
		lead, err = e.transition(ctx, id, entity.StatusReplied, nil, entity.StatusContacted, entity.StatusReplied)
	} else {
		lead, err = e.transition(ctx, id, entity.StatusDemo, nil, entity.StatusContacted, entity.StatusReplied)
	}
	if err != nil {
		return nil, err
	}

	sent := e.sendDemoLink(ctx, lead)

	if lead.Status == entity.StatusReplied {
		lead, err = e.transition(ctx, id, entity.StatusDemo, nil, entity.StatusReplied)
		if err != nil {
			return nil, err
		}
	}

	return &ResponseResult{Lead: lead, DemoLinkSent: sent}, nil
}

// Convert is the operator action that closes a lead from demo.
func (e *OutreachEngine) Convert(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := e.transition(ctx, id, entity.StatusConverted, nil, entity.StatusDemo)
	if err != nil {
		return nil, err
	}
	e.Logger.Info("lead converted", zap.String("lead_id", id))
	return lead, nil
}

func (e *OutreachEngine) transition(ctx context.Context, id string, to entity.Status, notes *string, from ...entity.Status) (*entity.Lead, error) {
	lead, err := e.Store.Update(ctx, id, func(l *entity.Lead) error {
		allowed := false
		for _, s := range from {
			if l.Status == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return &DomainError{
				Code:    CodeInvalidState,
				Message: fmt.Sprintf("cannot move lead from %s to %s", l.Status, to),
			}
		}
		return entity.ApplyStatus(l, to, notes, e.Store.Now())
	})
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, &DomainError{Code: CodeLeadNotFound, Message: "lead not found: " + id}
	}
	if errors.Is(err, entity.ErrInvalidTransition) {
		return nil, &DomainError{Code: CodeInvalidState, Message: "cannot move lead to " + string(to)}
	}
	if err != nil {
		return nil, e.Store.storageError(err)
	}
	return lead, nil
}

// sendDemoLink is best effort: a failed delivery is logged, the status stays committed.
func (e *OutreachEngine) sendDemoLink(ctx context.Context, lead *entity.Lead) bool {
	channel := lead.LastChannel
	if channel == "" {
		channel = entity.ChannelWhatsApp
	}
	to := recipientFor(lead, channel)
	if to == "" && lead.Contact.Email != "" {
		channel, to = entity.ChannelEmail, lead.Contact.Email
	}
	if to == "" {
		e.Logger.Warn("no recipient for demo link", zap.String("lead_id", lead.ID))
		return false
	}

	if err := e.send(ctx, KindDemo, lead, channel, to); err != nil {
		e.Logger.Error("demo link delivery failed",
			zap.String("lead_id", lead.ID),
			zap.String("channel", string(channel)),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (e *OutreachEngine) send(ctx context.Context, kind TemplateKind, lead *entity.Lead, channel entity.Channel, to string) error {
	d, ok := e.Dispatchers[channel]
	if !ok {
		return &DomainError{Code: CodeInvalidChannel, Message: "no dispatcher for channel " + string(channel)}
	}

	subject, body, err := e.Templates.Render(kind, channel, e.LanguageFor(lead), TemplateData{
		Name:         displayName(lead),
		BusinessType: lead.BusinessType,
		City:         lead.City,
		DemoURL:      e.DemoURL,
	})
	if err != nil {
		return &TechnicalError{Code: CodeDispatchFailed, Message: "failed to render message", Err: err}
	}

	msg := OutboundMessage{Channel: channel, To: to, Subject: subject, Body: body, LeadID: lead.ID}
	if err := e.dispatchWithRetry(ctx, d, msg); err != nil {
		e.Recorder.IntegrationError(string(channel))
		return &TechnicalError{Code: CodeDispatchFailed, Message: "message delivery failed", Err: err}
	}
	return nil
}

// dispatchWithRetry retries with exponential backoff, honoring ctx between attempts.
func (e *OutreachEngine) dispatchWithRetry(ctx context.Context, d Dispatcher, msg OutboundMessage) error {
	attempts := e.Retry.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			delay := e.Retry.BaseDelay << uint(i-1)
			if e.Retry.MaxDelay > 0 && delay > e.Retry.MaxDelay {
				delay = e.Retry.MaxDelay
			}
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return errors.Join(lastErr, ctx.Err())
			case <-timer.C:
			}
		}

		err := d.Dispatch(ctx, msg)
		if err == nil {
			return nil
		}
		lastErr = err
		e.Logger.Warn("dispatch attempt failed",
			zap.String("lead_id", msg.LeadID),
			zap.String("channel", string(msg.Channel)),
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
	}
	return lastErr
}

func (e *OutreachEngine) blocked(lead *entity.Lead, channel entity.Channel) *OutreachResult {
	e.Recorder.OutreachBlocked(channel)
	e.Logger.Info("outreach blocked, awaiting reply",
		zap.String("lead_id", lead.ID), zap.String("channel", string(channel)))
	return &OutreachResult{
		LeadID:  lead.ID,
		Channel: channel,
		Blocked: true,
		Reason:  blockedReason,
		Lead:    lead,
	}
}

// LanguageFor resolves the message language for a lead.
func (e *OutreachEngine) LanguageFor(lead *entity.Lead) entity.Language {
	if lead.Language != "" {
		return lead.Language
	}
	if e.LanguageFallback == FallbackCityHeuristic && strings.TrimSpace(lead.City) != "" {
		return entity.LanguageArabic
	}
	return entity.LanguageEnglish
}

func recipientFor(lead *entity.Lead, channel entity.Channel) string {
	switch channel {
	case entity.ChannelWhatsApp:
		if lead.Contact.WhatsApp != "" {
			return lead.Contact.WhatsApp
		}
		return lead.Contact.Phone
	case entity.ChannelEmail:
		return lead.Contact.Email
	case entity.ChannelLinkedIn:
		return lead.Socials.LinkedIn
	}
	return ""
}

func displayName(lead *entity.Lead) string {
	if name := strings.TrimSpace(lead.Name); name != "" {
		return name
	}
	return "there"
}
