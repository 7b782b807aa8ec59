package usecases

import (
	"context"
	"fmt"

	"github.com/chamberirc/chamberbnc/internal/application/request/dto"
	"github.com/chamberirc/chamberbnc/internal/domain/request"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type ConfirmRequestCommand struct {
	RequestID uint
	Token     string
	// Force skips the token check; administrators only.
	Force bool
}

type ConfirmRequestUseCase struct {
	requestRepo request.RequestRepository
	mailer      RequestMailer
	announcer   Announcer
	logger      logger.Interface
}

func NewConfirmRequestUseCase(
	requestRepo request.RequestRepository,
	mailer RequestMailer,
	announcer Announcer,
	logger logger.Interface,
) *ConfirmRequestUseCase {
	return &ConfirmRequestUseCase{
		requestRepo: requestRepo,
		mailer:      mailer,
		announcer:   announcer,
		logger:      logger,
	}
}

func (uc *ConfirmRequestUseCase) Execute(ctx context.Context, cmd ConfirmRequestCommand) (*dto.RequestDTO, error) {
	uc.logger.Infow("executing confirm request use case", "request_id", cmd.RequestID, "force", cmd.Force)

	req, err := uc.requestRepo.Modify(ctx, cmd.RequestID, func(r *request.Request) error {
		if cmd.Force {
			return r.ForceConfirm()
		}
		return r.Confirm(cmd.Token)
	})
	if err != nil {
		uc.logger.Warnw("failed to confirm request", "request_id", cmd.RequestID, "error", err)
		return nil, err
	}

	if err := uc.mailer.SendRequestWaiting(ctx, req); err != nil {
		uc.logger.Errorw("failed to notify reviewers", "request_id", req.ID(), "error", err)
	}

	notice := fmt.Sprintf("Request #%d from %s (%s on %s) has been verified and is waiting for approval.",
		req.ID(), req.Username(), req.OriginIdentity(), req.OriginNetwork())
	if err := uc.announcer.AnnounceAdmin(ctx, notice); err != nil {
		uc.logger.Warnw("failed to announce verified request", "request_id", req.ID(), "error", err)
	}

	uc.logger.Infow("request confirmed", "request_id", req.ID())
	return dto.ToRequestDTO(req), nil
}
