package usecases

import (
	"context"
	"sort"

	"github.com/chamberirc/chamberbnc/internal/application/request/dto"
	"github.com/chamberirc/chamberbnc/internal/domain/request"
	"github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type GetRequestUseCase struct {
	requestRepo request.RequestRepository
	logger      logger.Interface
}

func NewGetRequestUseCase(requestRepo request.RequestRepository, logger logger.Interface) *GetRequestUseCase {
	return &GetRequestUseCase{
		requestRepo: requestRepo,
		logger:      logger,
	}
}

func (uc *GetRequestUseCase) Execute(ctx context.Context, requestID uint) (*dto.RequestDTO, error) {
	req, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return dto.ToRequestDTO(req), nil
}

type ListRequestsQuery struct {
	// PendingOnly keeps requests that are not approved yet.
	PendingOnly bool
	// AwaitingApprovalOnly keeps verified requests that are not approved yet.
	AwaitingApprovalOnly bool
}

type ListRequestsUseCase struct {
	requestRepo request.RequestRepository
	logger      logger.Interface
}

func NewListRequestsUseCase(requestRepo request.RequestRepository, logger logger.Interface) *ListRequestsUseCase {
	return &ListRequestsUseCase{
		requestRepo: requestRepo,
		logger:      logger,
	}
}

// Execute returns matching requests in id order.
func (uc *ListRequestsUseCase) Execute(ctx context.Context, query ListRequestsQuery) ([]*dto.RequestDTO, error) {
	reqs, err := uc.requestRepo.List(ctx, request.RequestFilter{
		PendingOnly:          query.PendingOnly,
		AwaitingApprovalOnly: query.AwaitingApprovalOnly,
	})
	if err != nil {
		uc.logger.Errorw("failed to list requests", "error", err)
		return nil, err
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID() < reqs[j].ID() })
	return dto.ToRequestDTOs(reqs), nil
}

type FindRequestQuery struct {
	Email    string
	Username string
}

type FindRequestUseCase struct {
	requestRepo request.RequestRepository
	logger      logger.Interface
}

func NewFindRequestUseCase(requestRepo request.RequestRepository, logger logger.Interface) *FindRequestUseCase {
	return &FindRequestUseCase{
		requestRepo: requestRepo,
		logger:      logger,
	}
}

// Execute looks a request up by email when given, otherwise by username.
// Both comparisons ignore case.
func (uc *FindRequestUseCase) Execute(ctx context.Context, query FindRequestQuery) (*dto.RequestDTO, error) {
	var (
		req *request.Request
		err error
	)
	switch {
	case query.Email != "":
		req, err = uc.requestRepo.FindByEmail(ctx, query.Email)
	case query.Username != "":
		req, err = uc.requestRepo.FindByUsername(ctx, query.Username)
	default:
		return nil, errors.NewValidationError("an email or a username is required")
	}
	if err != nil {
		return nil, err
	}
	return dto.ToRequestDTO(req), nil
}
