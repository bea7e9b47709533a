package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

func TestNotify_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid type", func(t *testing.T) {
		uc := NewNotifyUseCase(new(MockPublisher), zap.NewNop())
		_, err := uc.Execute(ctx, NotificationInput{Type: "PROMO"})
		assert.True(t, IsDomainError(err))
	})

	t.Run("enqueued", func(t *testing.T) {
		publisher := new(MockPublisher)
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool {
			return n.ID != "" && n.Type == entity.NotificationWelcome && n.Data != nil
		})).Return(nil).Once()

		uc := NewNotifyUseCase(publisher, zap.NewNop())
		out, err := uc.Execute(ctx, NotificationInput{Type: entity.NotificationWelcome})
		require.NoError(t, err)
		assert.True(t, out.Success)
		publisher.AssertExpectations(t)
	})

	t.Run("broker failure", func(t *testing.T) {
		publisher := new(MockPublisher)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

		uc := NewNotifyUseCase(publisher, zap.NewNop())
		_, err := uc.Execute(ctx, NotificationInput{Type: entity.NotificationHotLead})
		var te *TechnicalError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, CodeQueueUnavailable, te.Code)
	})
}

func TestNotificationProcessor_HotLead(t *testing.T) {
	email := new(MockDispatcher)
	whatsapp := new(MockDispatcher)
	p := NewNotificationProcessor(map[entity.Channel]Dispatcher{
		entity.ChannelEmail:    email,
		entity.ChannelWhatsApp: whatsapp,
	}, "sales@leadfunnel.example", "+15550009999", zap.NewNop())

	email.On("Dispatch", mock.Anything, mock.MatchedBy(func(m OutboundMessage) bool {
		return m.To == "sales@leadfunnel.example" && m.Subject == "Hot lead: Big Grill (score 100)"
	})).Return(nil).Once()
	whatsapp.On("Dispatch", mock.Anything, mock.MatchedBy(func(m OutboundMessage) bool {
		return m.To == "+15550009999"
	})).Return(errors.New("rate limited")).Once()

	lead := &entity.Lead{ID: "L1", Name: "Big Grill", Score: 100, Source: entity.SourceChat}
	err := p.Process(context.Background(), HotLeadNotification(lead, lead.CreatedAt))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	email.AssertExpectations(t)
	whatsapp.AssertExpectations(t)
}

func TestNotificationProcessor_Welcome(t *testing.T) {
	email := new(MockDispatcher)
	p := NewNotificationProcessor(map[entity.Channel]Dispatcher{entity.ChannelEmail: email}, "", "", zap.NewNop())

	email.On("Dispatch", mock.Anything, mock.MatchedBy(func(m OutboundMessage) bool {
		return m.To == "owner@example.com" && m.Subject == "Welcome aboard"
	})).Return(nil).Once()

	n := &entity.Notification{ID: "n1", Type: entity.NotificationWelcome, Data: map[string]any{
		"email": "owner@example.com",
		"phone": "+15550001234",
		"plan":  "growth",
	}}
	require.NoError(t, p.Publish(context.Background(), n), "whatsapp is skipped when not configured")
	email.AssertExpectations(t)

	err := p.Process(context.Background(), &entity.Notification{ID: "n2", Type: entity.NotificationWelcome})
	assert.Error(t, err)
}
