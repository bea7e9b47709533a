package chatflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
	"github.com/xavierca1/leadfunnel/internal/usecase"
)

type recordingIntake struct {
	mu     sync.Mutex
	inputs []usecase.LeadInput
	err    error
}

func (r *recordingIntake) Execute(ctx context.Context, input usecase.LeadInput) (*usecase.LeadOutput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, input)
	if r.err != nil {
		return nil, r.err
	}
	return &usecase.LeadOutput{ID: "lead-1"}, nil
}

func newTestFlow(intake LeadSubmitter) (*Flow, *usecase.BackgroundTasks) {
	tasks := usecase.NewBackgroundTasks(time.Second, nil, zap.NewNop())
	f := NewFlow(ContactTargets{
		WhatsApp: "+966 55 000 0000",
		Email:    "hello@leadfunnel.example",
		Phone:    "+966110000000",
	}, intake, tasks, 800*time.Millisecond, zap.NewNop())
	return f, tasks
}

func TestFlow_LinearPath(t *testing.T) {
	f, _ := newTestFlow(&recordingIntake{})
	s := f.Start(entity.LanguageEnglish, ContextDefault, "")

	v := f.View(s)
	assert.Equal(t, StepBusinessType, v.Step)
	assert.Equal(t, int64(800), v.TypingDelay)
	require.NotEmpty(t, v.Options)

	require.NoError(t, f.Select(s, "restaurant"))
	assert.Equal(t, StepService, s.Step)
	assert.Equal(t, "restaurant", s.BusinessType)

	require.NoError(t, f.Select(s, "online_ordering"))
	assert.Equal(t, StepContact, s.Step)

	v = f.View(s)
	assert.Empty(t, v.Options)
	assert.Len(t, v.Actions, 3)

	assert.ErrorIs(t, f.Select(s, "restaurant"), ErrFlowComplete)
}

func TestFlow_FreeTextShortCircuitsForEveryLocale(t *testing.T) {
	f, _ := newTestFlow(&recordingIntake{})
	for _, lang := range []entity.Language{entity.LanguageEnglish, entity.LanguageArabic} {
		for _, pc := range []PageContext{ContextDefault, ContextRestaurant, ContextRetail, ContextPricing} {
			s := f.Start(lang, pc, "")
			require.Equal(t, StepBusinessType, s.Step)

			require.NoError(t, f.SubmitText(s, "I need a menu for my food truck"))
			assert.Equal(t, StepContact, s.Step, "%s/%s", lang, pc)
			assert.Empty(t, s.Service, "service step is skipped")
		}
	}
}

func TestFlow_SubmitTextTruncatesByCharacter(t *testing.T) {
	f, _ := newTestFlow(&recordingIntake{})
	s := f.Start(entity.LanguageArabic, ContextDefault, "")

	require.NoError(t, f.SubmitText(s, strings.Repeat("مطعم ", 300)))
	assert.True(t, utf8.ValidString(s.FreeText))
	assert.Equal(t, maxFreeTextRunes, utf8.RuneCountInString(s.FreeText))
	assert.True(t, utf8.ValidString(f.ContactActions(s)[0].URL))
}

func TestFlow_NotSureShortCircuits(t *testing.T) {
	f, _ := newTestFlow(&recordingIntake{})
	s := f.Start(entity.LanguageArabic, ContextRetail, "")

	require.NoError(t, f.Select(s, NotSureID))
	assert.Equal(t, StepContact, s.Step)
	assert.Empty(t, s.BusinessType)

	v := f.View(s)
	assert.Equal(t, prompts[entity.LanguageArabic][StepContact], v.Prompt)
	assert.Equal(t, "تواصل عبر واتساب", v.Actions[0].Label)
}

func TestFlow_DemoContextStartsAtService(t *testing.T) {
	f, _ := newTestFlow(&recordingIntake{})
	s := f.Start(entity.LanguageEnglish, ContextDemo, "")
	assert.Equal(t, StepService, s.Step)
}

func TestFlow_RejectsOptionsFromOtherSteps(t *testing.T) {
	f, _ := newTestFlow(&recordingIntake{})
	s := f.Start(entity.LanguageEnglish, ContextDefault, "")

	assert.ErrorIs(t, f.Select(s, "online_ordering"), ErrUnknownOption)
	assert.ErrorIs(t, f.SubmitText(s, "   "), ErrEmptyText)
	assert.Equal(t, StepBusinessType, s.Step)
}

func TestFlow_PreselectedChannelFiltersActions(t *testing.T) {
	f, _ := newTestFlow(&recordingIntake{})
	s := f.Start(entity.LanguageEnglish, ContextPricing, "WhatsApp")
	require.NoError(t, f.Select(s, NotSureID))

	actions := f.ContactActions(s)
	require.Len(t, actions, 1)
	assert.Equal(t, ChannelWhatsApp, actions[0].Channel)
	assert.True(t, strings.HasPrefix(actions[0].URL, "https://wa.me/966550000000?text="))

	_, err := f.Activate(s, ChannelEmail, Visitor{})
	assert.ErrorIs(t, err, ErrChannelHidden)
}

func TestFlow_ActivateSubmitsLeadOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	intake := &recordingIntake{}
	f, tasks := newTestFlow(intake)
	s := f.Start(entity.LanguageEnglish, ContextRestaurant, "")
	require.NoError(t, f.Select(s, "bakery"))
	require.NoError(t, f.Select(s, "whatsapp_bot"))

	link, err := f.Activate(s, ChannelEmail, Visitor{Email: "owner@bakery.example"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "mailto:hello@leadfunnel.example?"))
	assert.Contains(t, link, "Bakery")

	_, err = f.Activate(s, ChannelPhone, Visitor{})
	require.NoError(t, err)

	require.NoError(t, tasks.Wait(context.Background()))
	require.Len(t, intake.inputs, 1)
	in := intake.inputs[0]
	assert.Equal(t, "chat", in.Source)
	assert.Equal(t, "bakery", in.BusinessType)
	assert.Equal(t, "whatsapp_bot", in.Service)
	assert.Equal(t, "owner@bakery.example", in.Email)
	assert.Equal(t, "[restaurant]", in.Notes)
}

func TestFlow_ActivateIgnoresSubmitFailure(t *testing.T) {
	intake := &recordingIntake{err: errors.New("store down")}
	f, tasks := newTestFlow(intake)
	s := f.Start(entity.LanguageEnglish, ContextDefault, "phone")
	require.NoError(t, f.SubmitText(s, "call me"))

	link, err := f.Activate(s, ChannelPhone, Visitor{})
	require.NoError(t, err)
	assert.Equal(t, "tel:+966110000000", link)

	require.NoError(t, tasks.Wait(context.Background()))
	require.Len(t, intake.inputs, 1)
	assert.True(t, strings.HasPrefix(intake.inputs[0].Name, "Chat visitor "))
	assert.Equal(t, "call me", intake.inputs[0].Notes)
}

func TestFlow_ActivateBeforeContactStep(t *testing.T) {
	f, _ := newTestFlow(&recordingIntake{})
	s := f.Start(entity.LanguageEnglish, ContextDefault, "")
	_, err := f.Activate(s, ChannelWhatsApp, Visitor{})
	assert.ErrorIs(t, err, ErrNotAtContact)
}
