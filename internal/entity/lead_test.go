package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLead(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	lead, err := NewLead(Lead{
		Name:    "Cairo Deli",
		Contact: Contact{Phone: "9665XXXXXXXX"},
		Source:  SourceChat,
	}, now)
	require.NoError(t, err)

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, StatusNew, lead.Status)
	assert.Equal(t, 65, lead.Score)
	assert.Equal(t, PriorityHigh, lead.Priority)
	assert.Equal(t, 1, lead.Version)
	assert.Equal(t, now, lead.CreatedAt)
	assert.Nil(t, lead.LastContactedAt)
	assert.Nil(t, lead.LastRepliedAt)
}

func TestNewLeadRejectsEmptyIdentity(t *testing.T) {
	_, err := NewLead(Lead{Name: "  "}, time.Now())
	assert.ErrorIs(t, err, ErrMissingContact)
}

func TestNewLeadDefaultsSource(t *testing.T) {
	lead, err := NewLead(Lead{Contact: Contact{Email: "a@b.co"}}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, SourceUnknown, lead.Source)
}

func TestNewLeadIDsAreTimeOrdered(t *testing.T) {
	base := time.Now()
	ids := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		ids = append(ids, NewLeadID(base.Add(time.Duration(i/10)*time.Millisecond)))
	}
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
}

func TestCloneCopiesTimestamps(t *testing.T) {
	now := time.Now()
	l := &Lead{ID: "x", LastContactedAt: &now}

	c := l.Clone()
	later := now.Add(time.Hour)
	*c.LastContactedAt = later

	assert.Equal(t, now, *l.LastContactedAt)
}

func TestParseSource(t *testing.T) {
	assert.Equal(t, SourceChat, ParseSource("chat"))
	assert.Equal(t, SourceContactForm, ParseSource(" Contact_Form "))
	assert.Equal(t, SourceDemoForm, ParseSource("demo_form"))
	assert.Equal(t, SourceUnknown, ParseSource("billboard"))
	assert.Equal(t, SourceUnknown, ParseSource(""))
}

func TestParseChannel(t *testing.T) {
	ch, ok := ParseChannel("WhatsApp")
	assert.True(t, ok)
	assert.Equal(t, ChannelWhatsApp, ch)

	_, ok = ParseChannel("sms")
	assert.False(t, ok)
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, LanguageArabic, ParseLanguage("ar-SA"))
	assert.Equal(t, LanguageEnglish, ParseLanguage("en-US"))
	assert.Equal(t, LanguageEnglish, ParseLanguage("fr"))
	assert.Equal(t, Language(""), ParseLanguage(""))
	assert.Equal(t, LanguageArabic, ParseLanguage("", "ar"))
}
