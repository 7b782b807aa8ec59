// Package request is the account request workflow: submission, mail
// verification, approval with provisioning, and removal.
package request

import (
	"context"

	"github.com/chamberirc/chamberbnc/internal/application/request/dto"
	"github.com/chamberirc/chamberbnc/internal/application/request/usecases"
	"github.com/chamberirc/chamberbnc/internal/domain/request"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type ServiceDDD struct {
	logger logger.Interface

	submit  *usecases.SubmitRequestUseCase
	confirm *usecases.ConfirmRequestUseCase
	approve *usecases.ApproveRequestUseCase
	remove  *usecases.DeleteRequestUseCase
	get     *usecases.GetRequestUseCase
	list    *usecases.ListRequestsUseCase
	find    *usecases.FindRequestUseCase
}

func NewServiceDDD(
	requestRepo request.RequestRepository,
	provisioner usecases.Provisioner,
	mailer usecases.RequestMailer,
	announcer usecases.Announcer,
	logger logger.Interface,
) *ServiceDDD {
	return &ServiceDDD{
		logger: logger,

		submit:  usecases.NewSubmitRequestUseCase(requestRepo, provisioner, mailer, announcer, logger),
		confirm: usecases.NewConfirmRequestUseCase(requestRepo, mailer, announcer, logger),
		approve: usecases.NewApproveRequestUseCase(requestRepo, provisioner, mailer, announcer, logger),
		remove:  usecases.NewDeleteRequestUseCase(requestRepo, logger),
		get:     usecases.NewGetRequestUseCase(requestRepo, logger),
		list:    usecases.NewListRequestsUseCase(requestRepo, logger),
		find:    usecases.NewFindRequestUseCase(requestRepo, logger),
	}
}

func (s *ServiceDDD) Submit(ctx context.Context, cmd usecases.SubmitRequestCommand) (*usecases.SubmitRequestResult, error) {
	return s.submit.Execute(ctx, cmd)
}

func (s *ServiceDDD) Confirm(ctx context.Context, requestID uint, token string) (*dto.RequestDTO, error) {
	return s.confirm.Execute(ctx, usecases.ConfirmRequestCommand{RequestID: requestID, Token: token})
}

// ForceConfirm marks a request verified without its token.
func (s *ServiceDDD) ForceConfirm(ctx context.Context, requestID uint) (*dto.RequestDTO, error) {
	return s.confirm.Execute(ctx, usecases.ConfirmRequestCommand{RequestID: requestID, Force: true})
}

func (s *ServiceDDD) Approve(ctx context.Context, cmd usecases.ApproveRequestCommand) (*usecases.ApproveRequestResult, error) {
	return s.approve.Execute(ctx, cmd)
}

func (s *ServiceDDD) Delete(ctx context.Context, cmd usecases.DeleteRequestCommand) error {
	return s.remove.Execute(ctx, cmd)
}

func (s *ServiceDDD) Get(ctx context.Context, requestID uint) (*dto.RequestDTO, error) {
	return s.get.Execute(ctx, requestID)
}

func (s *ServiceDDD) List(ctx context.Context, query usecases.ListRequestsQuery) ([]*dto.RequestDTO, error) {
	return s.list.Execute(ctx, query)
}

// ListPending returns requests that are not approved yet.
func (s *ServiceDDD) ListPending(ctx context.Context) ([]*dto.RequestDTO, error) {
	return s.list.Execute(ctx, usecases.ListRequestsQuery{PendingOnly: true})
}

func (s *ServiceDDD) Find(ctx context.Context, query usecases.FindRequestQuery) (*dto.RequestDTO, error) {
	return s.find.Execute(ctx, query)
}
