package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/chamberirc/chamberbnc/internal/application/ticket/dto"
	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	"github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type AssignTicketCommand struct {
	TicketID uint
	Assignee string
	Actor    Actor
}

type AssignTicketUseCase struct {
	ticketRepo ticket.TicketRepository
	notifier   notifier
	logger     logger.Interface
}

func NewAssignTicketUseCase(
	ticketRepo ticket.TicketRepository,
	announcer Announcer,
	auditor Auditor,
	logger logger.Interface,
) *AssignTicketUseCase {
	return &AssignTicketUseCase{
		ticketRepo: ticketRepo,
		notifier:   notifier{announcer: announcer, auditor: auditor, logger: logger},
		logger:     logger,
	}
}

// Execute assigns the ticket and moves it to in-progress.
func (uc *AssignTicketUseCase) Execute(ctx context.Context, cmd AssignTicketCommand) (*dto.TicketDTO, error) {
	uc.logger.Infow("executing assign ticket use case",
		"ticket_id", cmd.TicketID, "assignee", cmd.Assignee, "actor", cmd.Actor.Nick)

	if !cmd.Actor.Admin {
		return nil, errors.NewForbiddenError("tickets can only be assigned from the admin channel")
	}
	assignee := strings.TrimSpace(cmd.Assignee)

	t, err := uc.ticketRepo.Modify(ctx, cmd.TicketID, func(t *ticket.Ticket) error {
		return t.AssignTo(assignee)
	})
	if err != nil {
		uc.logger.Warnw("failed to assign ticket", "ticket_id", cmd.TicketID, "error", err)
		return nil, err
	}

	uc.notifier.announce(ctx, fmt.Sprintf("Ticket #%d assigned to %s by %s.", t.ID(), t.Assignee(), cmd.Actor.Nick))
	uc.notifier.audit(ctx, ticket.AuditEvent{
		Name:     ticket.EventAssigned,
		TicketID: t.ID(),
		Actor:    cmd.Actor.Nick,
		Mask:     cmd.Actor.Mask,
		Assignee: t.Assignee(),
	})

	uc.logger.Infow("ticket assigned", "ticket_id", t.ID(), "assignee", t.Assignee())
	return dto.ToTicketDTO(t), nil
}
