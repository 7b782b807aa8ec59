package usecases

import (
	"context"

	"github.com/chamberirc/chamberbnc/internal/domain/request"
	"github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type DeleteRequestCommand struct {
	RequestID uint
	// Admin deletes unconditionally; otherwise Token must match and the
	// request must not be approved yet.
	Admin bool
	Token string
}

type DeleteRequestUseCase struct {
	requestRepo request.RequestRepository
	logger      logger.Interface
}

func NewDeleteRequestUseCase(requestRepo request.RequestRepository, logger logger.Interface) *DeleteRequestUseCase {
	return &DeleteRequestUseCase{
		requestRepo: requestRepo,
		logger:      logger,
	}
}

func (uc *DeleteRequestUseCase) Execute(ctx context.Context, cmd DeleteRequestCommand) error {
	uc.logger.Infow("executing delete request use case", "request_id", cmd.RequestID, "admin", cmd.Admin)

	var guard func(*request.Request) error
	if !cmd.Admin {
		if cmd.Token == "" {
			return errors.NewForbiddenError("only administrators can delete a request without its verification code")
		}
		guard = func(r *request.Request) error {
			return r.CheckSelfDelete(cmd.Token)
		}
	}

	if err := uc.requestRepo.Delete(ctx, cmd.RequestID, guard); err != nil {
		uc.logger.Warnw("failed to delete request", "request_id", cmd.RequestID, "error", err)
		return err
	}

	uc.logger.Infow("request deleted", "request_id", cmd.RequestID)
	return nil
}
