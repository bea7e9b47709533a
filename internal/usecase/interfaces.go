package usecase

import (
	"context"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

// Dispatcher delivers a rendered message over one channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg OutboundMessage) error
}

type NotificationPublisher interface {
	Publish(ctx context.Context, n *entity.Notification) error
}

// LeadSheet mirrors captured leads into an external spreadsheet.
type LeadSheet interface {
	AppendLead(ctx context.Context, lead *entity.Lead) error
}

type LanguageModel interface {
	Complete(ctx context.Context, system string, history []ChatMessage) (string, error)
}

type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
}

// Recorder receives domain counters. Nil recorders are replaced by a no-op.
type Recorder interface {
	LeadCaptured(source entity.Source)
	OutreachSent(channel entity.Channel)
	OutreachBlocked(channel entity.Channel)
	IntegrationError(service string)
	TaskFailed(task string)
}

type nopRecorder struct{}

func (nopRecorder) LeadCaptured(entity.Source) {}
func (nopRecorder) OutreachSent(entity.Channel) {}
func (nopRecorder) OutreachBlocked(entity.Channel) {}
func (nopRecorder) IntegrationError(string) {}
func (nopRecorder) TaskFailed(string) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
