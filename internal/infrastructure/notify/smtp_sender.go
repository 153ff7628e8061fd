// Package notify entrega las notificaciones de alertas por correo.
package notify

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/inventario-salidas/internal/application/alerts"
	"github.com/jhoicas/inventario-salidas/pkg/config"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

var _ alerts.Sender = (*SMTPSender)(nil)

// dialer permite sustituir el transporte en tests.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender envía con gomail. Sin credenciales el envío se simula y solo se registra en el log.
type SMTPSender struct {
	cfg    config.SMTPConfig
	dialer dialer
	log    *logger.Logger
}

// NewSMTPSender construye el sender a partir de la configuración SMTP.
func NewSMTPSender(cfg config.SMTPConfig, log *logger.Logger) *SMTPSender {
	s := &SMTPSender{cfg: cfg, log: log}
	if cfg.Configured() {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	}
	return s
}

// Send arma el mensaje MIME (texto + HTML alternativo + adjuntos) y lo entrega.
func (s *SMTPSender) Send(ctx context.Context, msg alerts.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("smtp: destinatario vacío")
	}
	if s.dialer == nil {
		s.log.Info().
			Str("to", msg.To).
			Str("subject", msg.Subject).
			Int("attachments", len(msg.Attachments)).
			Msg("SMTP no configurado: envío simulado")
		return nil
	}
	if err := s.dialer.DialAndSend(s.build(msg)); err != nil {
		return fmt.Errorf("smtp: enviar a %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTPSender) build(msg alerts.Message) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetHeader("From", s.cfg.From)
	m.SetAddressHeader("To", msg.To, msg.ToName)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	for _, a := range msg.Attachments {
		data := a.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}))
		}
		m.Attach(a.Name, settings...)
	}
	return m
}
