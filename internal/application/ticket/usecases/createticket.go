package usecases

import (
	"context"
	"fmt"

	"github.com/chamberirc/chamberbnc/internal/application/ticket/dto"
	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type CreateTicketCommand struct {
	Creator Actor
	Subject string
	Message string
	Network string
}

type CreateTicketUseCase struct {
	ticketRepo ticket.TicketRepository
	mailer     TicketMailer
	notifier   notifier
	logger     logger.Interface
}

func NewCreateTicketUseCase(
	ticketRepo ticket.TicketRepository,
	announcer Announcer,
	mailer TicketMailer,
	auditor Auditor,
	logger logger.Interface,
) *CreateTicketUseCase {
	return &CreateTicketUseCase{
		ticketRepo: ticketRepo,
		mailer:     mailer,
		notifier:   notifier{announcer: announcer, auditor: auditor, logger: logger},
		logger:     logger,
	}
}

func (uc *CreateTicketUseCase) Execute(ctx context.Context, cmd CreateTicketCommand) (*dto.TicketDTO, error) {
	uc.logger.Infow("executing create ticket use case", "creator", cmd.Creator.Mask, "network", cmd.Network)

	t, err := ticket.NewTicket(cmd.Creator.Mask, cmd.Subject, cmd.Message, cmd.Network)
	if err != nil {
		uc.logger.Warnw("invalid ticket", "error", err)
		return nil, err
	}

	if err := uc.ticketRepo.Create(ctx, t); err != nil {
		uc.logger.Errorw("failed to save ticket", "error", err)
		return nil, err
	}

	uc.notifier.announce(ctx, fmt.Sprintf("[NEW TICKET] #%d - %s from %s (%s)",
		t.ID(), t.Subject(), cmd.Creator.Nick, cmd.Creator.Mask))
	if err := uc.mailer.SendTicketCreated(ctx, t); err != nil {
		uc.logger.Errorw("failed to mail new ticket", "ticket_id", t.ID(), "error", err)
	}
	uc.notifier.audit(ctx, ticket.AuditEvent{
		Name:     ticket.EventCreated,
		TicketID: t.ID(),
		Actor:    cmd.Creator.Nick,
		Mask:     cmd.Creator.Mask,
	})

	uc.logger.Infow("ticket created successfully", "ticket_id", t.ID())
	return dto.ToTicketDTO(t), nil
}
