package usecases

import (
	"context"
	"fmt"

	"github.com/chamberirc/chamberbnc/internal/application/request/dto"
	"github.com/chamberirc/chamberbnc/internal/domain/request"
	"github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/id"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type SubmitRequestCommand struct {
	Username       string
	Email          string
	TargetServer   string
	TargetPort     int
	OriginNetwork  string
	OriginIdentity string
	RequestedNode  string
}

type SubmitRequestResult struct {
	Request *dto.RequestDTO
	// MailDelivered is false when the verification mail could not be sent;
	// the request is stored regardless.
	MailDelivered bool
}

type SubmitRequestUseCase struct {
	requestRepo request.RequestRepository
	nodes       NodeResolver
	mailer      RequestMailer
	announcer   Announcer
	logger      logger.Interface
}

func NewSubmitRequestUseCase(
	requestRepo request.RequestRepository,
	nodes NodeResolver,
	mailer RequestMailer,
	announcer Announcer,
	logger logger.Interface,
) *SubmitRequestUseCase {
	return &SubmitRequestUseCase{
		requestRepo: requestRepo,
		nodes:       nodes,
		mailer:      mailer,
		announcer:   announcer,
		logger:      logger,
	}
}

func (uc *SubmitRequestUseCase) Execute(ctx context.Context, cmd SubmitRequestCommand) (*SubmitRequestResult, error) {
	uc.logger.Infow("executing submit request use case",
		"username", cmd.Username, "network", cmd.OriginNetwork, "source", cmd.OriginIdentity)

	if cmd.RequestedNode != "" {
		if _, ok := uc.nodes.ResolveNode(cmd.RequestedNode); !ok {
			return nil, errors.NewValidationError(fmt.Sprintf("%s is not a known server", cmd.RequestedNode))
		}
	}

	token, err := id.NewVerificationToken()
	if err != nil {
		uc.logger.Errorw("failed to generate verification token", "error", err)
		return nil, errors.NewInternalError("could not generate a verification code")
	}

	req, err := request.NewRequest(
		cmd.Username,
		cmd.Email,
		cmd.TargetServer,
		cmd.TargetPort,
		cmd.OriginNetwork,
		cmd.OriginIdentity,
		cmd.RequestedNode,
		token,
	)
	if err != nil {
		uc.logger.Warnw("invalid request submission", "error", err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.requestRepo.Create(ctx, req); err != nil {
		uc.logger.Warnw("failed to store request", "username", cmd.Username, "error", err)
		return nil, err
	}

	result := &SubmitRequestResult{Request: dto.ToRequestDTO(req), MailDelivered: true}

	if err := uc.mailer.SendVerification(ctx, req); err != nil {
		result.MailDelivered = false
		uc.logger.Errorw("failed to send verification mail", "request_id", req.ID(), "error", err)
		notice := fmt.Sprintf("Verification mail for request #%d (%s) could not be sent: %v", req.ID(), req.Username(), err)
		if annErr := uc.announcer.AnnounceAdmin(ctx, notice); annErr != nil {
			uc.logger.Warnw("failed to announce mail failure", "error", annErr)
		}
	}

	uc.logger.Infow("request submitted", "request_id", req.ID(), "username", req.Username())
	return result, nil
}
