// Package ticket is the support ticket workflow.
package ticket

import (
	"context"

	"github.com/chamberirc/chamberbnc/internal/application/ticket/dto"
	"github.com/chamberirc/chamberbnc/internal/application/ticket/usecases"
	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type ServiceDDD struct {
	logger logger.Interface

	create       *usecases.CreateTicketUseCase
	addReply     *usecases.AddReplyUseCase
	changeStatus *usecases.ChangeStatusUseCase
	assign       *usecases.AssignTicketUseCase
	get          *usecases.GetTicketUseCase
	list         *usecases.ListTicketsUseCase
}

func NewServiceDDD(
	ticketRepo ticket.TicketRepository,
	announcer usecases.Announcer,
	mailer usecases.TicketMailer,
	auditor usecases.Auditor,
	logger logger.Interface,
) *ServiceDDD {
	return &ServiceDDD{
		logger: logger,

		create:       usecases.NewCreateTicketUseCase(ticketRepo, announcer, mailer, auditor, logger),
		addReply:     usecases.NewAddReplyUseCase(ticketRepo, announcer, mailer, auditor, logger),
		changeStatus: usecases.NewChangeStatusUseCase(ticketRepo, announcer, auditor, logger),
		assign:       usecases.NewAssignTicketUseCase(ticketRepo, announcer, auditor, logger),
		get:          usecases.NewGetTicketUseCase(ticketRepo, logger),
		list:         usecases.NewListTicketsUseCase(ticketRepo, logger),
	}
}

func (s *ServiceDDD) Create(ctx context.Context, cmd usecases.CreateTicketCommand) (*dto.TicketDTO, error) {
	return s.create.Execute(ctx, cmd)
}

func (s *ServiceDDD) AddReply(ctx context.Context, cmd usecases.AddReplyCommand) (*dto.TicketDTO, error) {
	return s.addReply.Execute(ctx, cmd)
}

func (s *ServiceDDD) ChangeStatus(ctx context.Context, cmd usecases.ChangeStatusCommand) (*dto.TicketDTO, error) {
	return s.changeStatus.Execute(ctx, cmd)
}

func (s *ServiceDDD) Assign(ctx context.Context, cmd usecases.AssignTicketCommand) (*dto.TicketDTO, error) {
	return s.assign.Execute(ctx, cmd)
}

func (s *ServiceDDD) Get(ctx context.Context, query usecases.GetTicketQuery) (*dto.TicketDTO, error) {
	return s.get.Execute(ctx, query)
}

// ListByCreator returns the creator's tickets, newest first.
func (s *ServiceDDD) ListByCreator(ctx context.Context, creator string) ([]*dto.TicketDTO, error) {
	return s.list.Execute(ctx, usecases.ListTicketsQuery{Creator: creator})
}

// ListOpen returns open and in-progress tickets, oldest first.
func (s *ServiceDDD) ListOpen(ctx context.Context) ([]*dto.TicketDTO, error) {
	return s.list.Execute(ctx, usecases.ListTicketsQuery{ActiveOnly: true})
}
