package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/inventario-salidas/internal/application/alerts"
	"github.com/jhoicas/inventario-salidas/pkg/config"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestSMTPSender_SimulatedWhenNotConfigured(t *testing.T) {
	var buf bytes.Buffer
	s := NewSMTPSender(config.SMTPConfig{}, logger.New(logger.Config{Env: "production", Output: &buf}))

	err := s.Send(context.Background(), alerts.Message{To: "ana@example.com", Subject: "x", Text: "y"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "envío simulado")
	assert.Contains(t, buf.String(), "ana@example.com")
}

func TestSMTPSender_BuildsMultipartMessage(t *testing.T) {
	d := &recordingDialer{}
	s := &SMTPSender{cfg: config.SMTPConfig{From: "alertas@inventario.local"}, dialer: d, log: logger.Nop()}

	err := s.Send(context.Background(), alerts.Message{
		To:      "ana@example.com",
		ToName:  "Ana",
		Subject: "Alertas de inventario",
		Text:    "texto plano",
		HTML:    "<p>html</p>",
		Attachments: []alerts.Attachment{
			{Name: "alertas-inventario.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
		},
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	var out bytes.Buffer
	_, err = d.sent[0].WriteTo(&out)
	require.NoError(t, err)
	raw := out.String()
	assert.Contains(t, raw, "From: alertas@inventario.local")
	assert.Contains(t, raw, "ana@example.com")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "alertas-inventario.pdf")
	assert.Contains(t, raw, "application/pdf")
}

func TestSMTPSender_PropagatesTransportError(t *testing.T) {
	d := &recordingDialer{err: errors.New("connection refused")}
	s := &SMTPSender{cfg: config.SMTPConfig{From: "a@b.c"}, dialer: d, log: logger.Nop()}

	err := s.Send(context.Background(), alerts.Message{To: "ana@example.com", Subject: "s", Text: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSMTPSender_RejectsEmptyRecipient(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{}, logger.Nop())
	require.Error(t, s.Send(context.Background(), alerts.Message{}))
}
