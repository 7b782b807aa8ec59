package usecases

import (
	"context"
	"sort"

	"github.com/chamberirc/chamberbnc/internal/application/ticket/dto"
	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	"github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type GetTicketQuery struct {
	TicketID uint
	Viewer   Actor
}

type GetTicketUseCase struct {
	ticketRepo ticket.TicketRepository
	logger     logger.Interface
}

func NewGetTicketUseCase(ticketRepo ticket.TicketRepository, logger logger.Interface) *GetTicketUseCase {
	return &GetTicketUseCase{
		ticketRepo: ticketRepo,
		logger:     logger,
	}
}

// Execute returns the ticket when the viewer created it or is an admin.
func (uc *GetTicketUseCase) Execute(ctx context.Context, query GetTicketQuery) (*dto.TicketDTO, error) {
	t, err := uc.ticketRepo.GetByID(ctx, query.TicketID)
	if err != nil {
		return nil, err
	}
	if !query.Viewer.Admin && !t.IsVisibleTo(query.Viewer.Mask) {
		uc.logger.Warnw("ticket view denied", "ticket_id", query.TicketID, "viewer", query.Viewer.Mask)
		return nil, errors.NewForbiddenError("you don't have permission to view this ticket")
	}
	return dto.ToTicketDTO(t), nil
}

type ListTicketsQuery struct {
	// Creator limits the result to one creator's tickets, newest first.
	Creator string
	// ActiveOnly keeps open and in-progress tickets, oldest first.
	ActiveOnly bool
}

type ListTicketsUseCase struct {
	ticketRepo ticket.TicketRepository
	logger     logger.Interface
}

func NewListTicketsUseCase(ticketRepo ticket.TicketRepository, logger logger.Interface) *ListTicketsUseCase {
	return &ListTicketsUseCase{
		ticketRepo: ticketRepo,
		logger:     logger,
	}
}

func (uc *ListTicketsUseCase) Execute(ctx context.Context, query ListTicketsQuery) ([]*dto.TicketDTO, error) {
	tickets, err := uc.ticketRepo.List(ctx, ticket.TicketFilter{
		Creator:    query.Creator,
		ActiveOnly: query.ActiveOnly,
	})
	if err != nil {
		uc.logger.Errorw("failed to list tickets", "error", err)
		return nil, err
	}

	newestFirst := query.Creator != "" && !query.ActiveOnly
	sort.SliceStable(tickets, func(i, j int) bool {
		a, b := tickets[i], tickets[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			if newestFirst {
				return a.CreatedAt().After(b.CreatedAt())
			}
			return a.CreatedAt().Before(b.CreatedAt())
		}
		if newestFirst {
			return a.ID() > b.ID()
		}
		return a.ID() < b.ID()
	})
	return dto.ToTicketDTOs(tickets), nil
}
