package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/chamberirc/chamberbnc/internal/application/provisioning"
	"github.com/chamberirc/chamberbnc/internal/domain/request"
	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

// Gateway is the notification gateway contract: send(to, subject, body).
type Gateway interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Mailer turns workflow events into messages. Requesters get their own
// mails; reviewer mails go to every configured reviewer address.
type Mailer struct {
	gateway   Gateway
	branding  Branding
	reviewers []string
	logger    logger.Interface
}

func NewMailer(gateway Gateway, branding Branding, reviewers []string, logger logger.Interface) *Mailer {
	return &Mailer{
		gateway:   gateway,
		branding:  branding,
		reviewers: append([]string(nil), reviewers...),
		logger:    logger,
	}
}

func (m *Mailer) SendVerification(ctx context.Context, r *request.Request) error {
	msg := verificationMessage(m.branding, r)
	return m.gateway.Send(ctx, r.Email(), msg.Subject, msg.Body)
}

func (m *Mailer) SendRequestWaiting(ctx context.Context, r *request.Request) error {
	return m.toReviewers(ctx, requestWaitingMessage(m.branding, r))
}

func (m *Mailer) SendApproved(ctx context.Context, r *request.Request, node provisioning.Node, password string) error {
	msg := approvedMessage(m.branding, r, node, password)
	return m.gateway.Send(ctx, r.Email(), msg.Subject, msg.Body)
}

func (m *Mailer) SendTicketCreated(ctx context.Context, t *ticket.Ticket) error {
	return m.toReviewers(ctx, ticketCreatedMessage(m.branding, t))
}

func (m *Mailer) SendTicketUpdated(ctx context.Context, t *ticket.Ticket, replier string, text string) error {
	return m.toReviewers(ctx, ticketUpdatedMessage(m.branding, t, replier, text))
}

// toReviewers tries every address and joins the failures.
func (m *Mailer) toReviewers(ctx context.Context, msg message) error {
	if len(m.reviewers) == 0 {
		m.logger.Debugw("no reviewer addresses configured", "subject", msg.Subject)
		return nil
	}
	var errs []error
	for _, to := range m.reviewers {
		if err := m.gateway.Send(ctx, to, msg.Subject, msg.Body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}
