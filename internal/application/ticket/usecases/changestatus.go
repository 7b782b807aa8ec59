package usecases

import (
	"context"
	"fmt"

	"github.com/chamberirc/chamberbnc/internal/application/ticket/dto"
	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	vo "github.com/chamberirc/chamberbnc/internal/domain/ticket/valueobjects"
	"github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type StatusAction int

const (
	// ActionSetStatus applies ChangeStatusCommand.Status.
	ActionSetStatus StatusAction = iota
	ActionClose
	ActionResolve
	ActionReopen
)

type ChangeStatusCommand struct {
	TicketID uint
	Action   StatusAction
	Status   string
	Actor    Actor
}

type ChangeStatusUseCase struct {
	ticketRepo ticket.TicketRepository
	notifier   notifier
	logger     logger.Interface
}

func NewChangeStatusUseCase(
	ticketRepo ticket.TicketRepository,
	announcer Announcer,
	auditor Auditor,
	logger logger.Interface,
) *ChangeStatusUseCase {
	return &ChangeStatusUseCase{
		ticketRepo: ticketRepo,
		notifier:   notifier{announcer: announcer, auditor: auditor, logger: logger},
		logger:     logger,
	}
}

func (uc *ChangeStatusUseCase) Execute(ctx context.Context, cmd ChangeStatusCommand) (*dto.TicketDTO, error) {
	uc.logger.Infow("executing change status use case",
		"ticket_id", cmd.TicketID, "action", cmd.Action, "status", cmd.Status, "actor", cmd.Actor.Nick)

	if !cmd.Actor.Admin {
		return nil, errors.NewForbiddenError("ticket status can only be changed from the admin channel")
	}

	var (
		status vo.TicketStatus
		event  string
		notice string
	)
	switch cmd.Action {
	case ActionClose:
		status, event, notice = vo.StatusClosed, ticket.EventClosed, "Ticket #%d closed by %s."
	case ActionResolve:
		status, event, notice = vo.StatusResolved, ticket.EventResolved, "Ticket #%d resolved by %s."
	case ActionReopen:
		status, event, notice = vo.StatusOpen, ticket.EventReopened, "Ticket #%d reopened by %s."
	default:
		status = vo.ParseTicketStatus(cmd.Status)
		if !status.IsValid() {
			return nil, errors.NewValidationError(fmt.Sprintf("invalid status, valid statuses: %s", vo.StatusNames()))
		}
		event, notice = ticket.EventStatusChanged, "Ticket #%d status changed to "+status.String()+" by %s."
	}

	t, err := uc.ticketRepo.Modify(ctx, cmd.TicketID, func(t *ticket.Ticket) error {
		return t.ChangeStatus(status)
	})
	if err != nil {
		uc.logger.Warnw("failed to change ticket status", "ticket_id", cmd.TicketID, "error", err)
		return nil, err
	}

	uc.notifier.announce(ctx, fmt.Sprintf(notice, t.ID(), cmd.Actor.Nick))
	audit := ticket.AuditEvent{Name: event, TicketID: t.ID(), Actor: cmd.Actor.Nick, Mask: cmd.Actor.Mask}
	if cmd.Action == ActionSetStatus {
		audit.Status = status.String()
	}
	uc.notifier.audit(ctx, audit)

	uc.logger.Infow("ticket status changed", "ticket_id", t.ID(), "status", status)
	return dto.ToTicketDTO(t), nil
}
