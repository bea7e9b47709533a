package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/leadfunnel/internal/entity"
	"github.com/xavierca1/leadfunnel/internal/usecase"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

type fakeTextSender struct {
	to, body string
	err      error
}

func (f *fakeTextSender) SendText(_ context.Context, to, body string) (string, error) {
	f.to, f.body = to, body
	return "wamid.1", f.err
}

func TestEmailSender_Dispatch(t *testing.T) {
	d := &fakeDialer{}
	s := &EmailSender{From: "sales@leadfunnel.app", Dialer: d, Logger: zap.NewNop()}

	err := s.Dispatch(context.Background(), usecase.OutboundMessage{
		Channel: entity.ChannelEmail,
		To:      "owner@deli.example",
		Subject: "Quick idea for Cairo Deli",
		Body:    "Hi <Cairo Deli>,\n\nSee you soon.",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"owner@deli.example"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Quick idea for Cairo Deli"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "&lt;Cairo Deli&gt;")
}

func TestEmailSender_Errors(t *testing.T) {
	s := &EmailSender{From: "x@y.z", Dialer: &fakeDialer{err: errors.New("auth failed")}, Logger: zap.NewNop()}

	err := s.Dispatch(context.Background(), usecase.OutboundMessage{To: "a@b.c"})
	assert.ErrorContains(t, err, "auth failed")

	err = s.Dispatch(context.Background(), usecase.OutboundMessage{})
	assert.Error(t, err)
}

func TestHTMLBody(t *testing.T) {
	assert.Equal(t, "<p>a<br>b</p><p>c</p>", htmlBody("a\nb\n\nc\n"))
}

func TestWhatsAppSender_Dispatch(t *testing.T) {
	client := &fakeTextSender{}
	s := NewWhatsAppSender(client, zap.NewNop())

	require.NoError(t, s.Dispatch(context.Background(), usecase.OutboundMessage{To: "966551234567", Body: "hello"}))
	assert.Equal(t, "966551234567", client.to)
	assert.Equal(t, "hello", client.body)

	client.err = errors.New("rate limited")
	assert.Error(t, s.Dispatch(context.Background(), usecase.OutboundMessage{To: "1", Body: "x"}))
}

func TestLogSender_NeverFails(t *testing.T) {
	s := NewLogSender(zap.NewNop())
	assert.NoError(t, s.Dispatch(context.Background(), usecase.OutboundMessage{Channel: entity.ChannelLinkedIn, To: "https://linkedin.com/in/x"}))
}
