package usecases

import (
	"context"

	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	"github.com/chamberirc/chamberbnc/internal/shared/biztime"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type Announcer interface {
	AnnounceAdmin(ctx context.Context, text string) error
}

// TicketMailer notifies the reviewer addresses.
type TicketMailer interface {
	SendTicketCreated(ctx context.Context, t *ticket.Ticket) error
	SendTicketUpdated(ctx context.Context, t *ticket.Ticket, replier string, message string) error
}

type Auditor interface {
	Record(ctx context.Context, event ticket.AuditEvent) error
}

// Actor is whoever issues a ticket command.
type Actor struct {
	Nick string
	Mask string
	// Admin is true when the command came from the admin channel.
	Admin bool
}

// notifier runs the side effects that follow a stored ticket change. The
// change is already durable, so failures are only logged.
type notifier struct {
	announcer Announcer
	auditor   Auditor
	logger    logger.Interface
}

func (n notifier) announce(ctx context.Context, text string) {
	if err := n.announcer.AnnounceAdmin(ctx, text); err != nil {
		n.logger.Warnw("failed to announce ticket change", "error", err)
	}
}

func (n notifier) audit(ctx context.Context, event ticket.AuditEvent) {
	event.Time = biztime.NowUTC()
	if err := n.auditor.Record(ctx, event); err != nil {
		n.logger.Warnw("failed to record ticket audit event", "event", event.Name, "ticket_id", event.TicketID, "error", err)
	}
}
