package usecases

import (
	"context"
	"fmt"

	"github.com/chamberirc/chamberbnc/internal/application/ticket/dto"
	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	"github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type AddReplyCommand struct {
	TicketID uint
	Author   Actor
	Message  string
}

type AddReplyUseCase struct {
	ticketRepo ticket.TicketRepository
	mailer     TicketMailer
	notifier   notifier
	logger     logger.Interface
}

func NewAddReplyUseCase(
	ticketRepo ticket.TicketRepository,
	announcer Announcer,
	mailer TicketMailer,
	auditor Auditor,
	logger logger.Interface,
) *AddReplyUseCase {
	return &AddReplyUseCase{
		ticketRepo: ticketRepo,
		mailer:     mailer,
		notifier:   notifier{announcer: announcer, auditor: auditor, logger: logger},
		logger:     logger,
	}
}

func (uc *AddReplyUseCase) Execute(ctx context.Context, cmd AddReplyCommand) (*dto.TicketDTO, error) {
	uc.logger.Infow("executing add reply use case", "ticket_id", cmd.TicketID, "author", cmd.Author.Mask)

	t, err := uc.ticketRepo.Modify(ctx, cmd.TicketID, func(t *ticket.Ticket) error {
		if !cmd.Author.Admin && !t.IsVisibleTo(cmd.Author.Mask) {
			return errors.NewForbiddenError("you don't have permission to reply to this ticket")
		}
		if err := t.AddReply(cmd.Author.Mask, cmd.Message); err != nil {
			if errors.IsStateConflictError(err) {
				return errors.NewStateConflictError(fmt.Sprintf(
					"cannot reply to a %s ticket, an administrator can reopen it with ticketreopen %d", t.Status(), t.ID()))
			}
			return err
		}
		return nil
	})
	if err != nil {
		uc.logger.Warnw("failed to add reply", "ticket_id", cmd.TicketID, "error", err)
		return nil, err
	}

	replies := t.Replies()
	message := replies[len(replies)-1].Message()
	if cmd.Author.Admin {
		uc.notifier.announce(ctx, fmt.Sprintf("Ticket #%d replied to by %s: %s", t.ID(), cmd.Author.Nick, message))
	} else {
		uc.notifier.announce(ctx, fmt.Sprintf("[TICKET REPLY] #%d - %s replied: %s", t.ID(), cmd.Author.Nick, message))
	}
	if err := uc.mailer.SendTicketUpdated(ctx, t, cmd.Author.Nick, message); err != nil {
		uc.logger.Errorw("failed to mail ticket update", "ticket_id", t.ID(), "error", err)
	}
	uc.notifier.audit(ctx, ticket.AuditEvent{
		Name:     ticket.EventReplied,
		TicketID: t.ID(),
		Actor:    cmd.Author.Nick,
		Mask:     cmd.Author.Mask,
	})

	uc.logger.Infow("reply added", "ticket_id", t.ID(), "replies", len(replies))
	return dto.ToTicketDTO(t), nil
}
