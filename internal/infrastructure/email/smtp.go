// Package email is the outbound notification gateway: SMTP delivery plus the
// messages the request and ticket workflows send.
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/chamberirc/chamberbnc/internal/shared/biztime"
	sharedConfig "github.com/chamberirc/chamberbnc/internal/shared/config"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
	"github.com/chamberirc/chamberbnc/internal/shared/services/markdown"
)

// Sender delivers one message; gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPGateway struct {
	config   sharedConfig.MailConfig
	sender   Sender
	renderer markdown.Renderer
	logger   logger.Interface
}

func NewSMTPGateway(config sharedConfig.MailConfig, renderer markdown.Renderer, logger logger.Interface) *SMTPGateway {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	if config.HeloDomain != "" {
		dialer.LocalName = config.HeloDomain
	}
	return NewSMTPGatewayWithSender(config, dialer, renderer, logger)
}

func NewSMTPGatewayWithSender(config sharedConfig.MailConfig, sender Sender, renderer markdown.Renderer, logger logger.Interface) *SMTPGateway {
	return &SMTPGateway{
		config:   config,
		sender:   sender,
		renderer: renderer,
		logger:   logger,
	}
}

// Send delivers a plain-text body with a sanitized HTML alternative. The
// context is checked before dialing; gomail itself is not cancellable.
func (g *SMTPGateway) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", g.config.FromAddress, g.config.FromName)
	m.SetHeader("To", to)
	if g.config.ReplyTo != "" {
		m.SetHeader("Reply-To", g.config.ReplyTo)
	}
	m.SetHeader("Subject", subject)
	m.SetDateHeader("Date", biztime.NowUTC())
	m.SetHeader("Message-Id", g.messageID())
	m.SetBody("text/plain", body)

	if html, err := g.renderer.ToHTMLSanitized(body); err != nil {
		g.logger.Warnw("failed to render html alternative, sending plain text only", "subject", subject, "error", err)
	} else {
		m.AddAlternative("text/html", html)
	}

	if err := g.sender.DialAndSend(m); err != nil {
		g.logger.Errorw("failed to send email", "to", to, "subject", subject, "error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	g.logger.Infow("email sent", "to", to, "subject", subject)
	return nil
}

func (g *SMTPGateway) messageID() string {
	domain := "localhost"
	if _, d, ok := strings.Cut(g.config.FromAddress, "@"); ok && d != "" {
		domain = d
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
