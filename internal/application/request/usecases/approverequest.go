package usecases

import (
	"context"
	"fmt"
	"sync"

	"github.com/chamberirc/chamberbnc/internal/application/provisioning"
	"github.com/chamberirc/chamberbnc/internal/application/request/dto"
	"github.com/chamberirc/chamberbnc/internal/domain/request"
	"github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/id"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type ApproveRequestCommand struct {
	RequestID uint
	// Node is a provisioning node name or address.
	Node     string
	Approver string
}

type ApproveRequestResult struct {
	Request       *dto.RequestDTO
	Node          string
	MailDelivered bool
}

// ApproveRequestUseCase provisions the account and only then records the
// approval. Mail and chat notices follow the stored approval and never undo it.
type ApproveRequestUseCase struct {
	requestRepo request.RequestRepository
	provisioner Provisioner
	mailer      RequestMailer
	announcer   Announcer
	logger      logger.Interface

	inFlight sync.Map
}

func NewApproveRequestUseCase(
	requestRepo request.RequestRepository,
	provisioner Provisioner,
	mailer RequestMailer,
	announcer Announcer,
	logger logger.Interface,
) *ApproveRequestUseCase {
	return &ApproveRequestUseCase{
		requestRepo: requestRepo,
		provisioner: provisioner,
		mailer:      mailer,
		announcer:   announcer,
		logger:      logger,
	}
}

func (uc *ApproveRequestUseCase) Execute(ctx context.Context, cmd ApproveRequestCommand) (*ApproveRequestResult, error) {
	uc.logger.Infow("executing approve request use case",
		"request_id", cmd.RequestID, "node", cmd.Node, "approver", cmd.Approver)

	req, err := uc.requestRepo.GetByID(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	if err := req.CheckApprovable(); err != nil {
		return nil, err
	}

	node, ok := uc.provisioner.ResolveNode(cmd.Node)
	if !ok {
		return nil, errors.NewValidationError(fmt.Sprintf("%s is not a known server", cmd.Node))
	}

	// Two admins approving the same request at once would create the account twice.
	if _, busy := uc.inFlight.LoadOrStore(cmd.RequestID, struct{}{}); busy {
		return nil, errors.NewStateConflictError(fmt.Sprintf("request #%d is already being approved", cmd.RequestID))
	}
	defer uc.inFlight.Delete(cmd.RequestID)

	// The first read may predate an approval that finished before the guard was taken.
	req, err = uc.requestRepo.GetByID(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	if err := req.CheckApprovable(); err != nil {
		return nil, err
	}

	password, err := id.NewPassword()
	if err != nil {
		uc.logger.Errorw("failed to generate password", "error", err)
		return nil, errors.NewInternalError("could not generate a password")
	}

	acct := provisioning.Account{
		Username:     req.Username(),
		Password:     password,
		TargetServer: req.TargetServer(),
		TargetPort:   req.TargetPort(),
	}
	if err := uc.provisioner.Provision(ctx, node, acct); err != nil {
		uc.logger.Errorw("provisioning failed, request left unapproved",
			"request_id", req.ID(), "node", node.Name, "error", err)
		return nil, err
	}

	approved, err := uc.requestRepo.Modify(ctx, cmd.RequestID, func(r *request.Request) error {
		return r.Approve()
	})
	if err != nil {
		uc.logger.Errorw("account provisioned but approval not stored",
			"request_id", req.ID(), "node", node.Name, "error", err)
		return nil, err
	}

	result := &ApproveRequestResult{
		Request:       dto.ToRequestDTO(approved),
		Node:          node.Name,
		MailDelivered: true,
	}

	if err := uc.mailer.SendApproved(ctx, approved, node, password); err != nil {
		result.MailDelivered = false
		uc.logger.Errorw("failed to send approval mail", "request_id", approved.ID(), "error", err)
		notice := fmt.Sprintf("Request #%d was approved but the credentials mail to %s failed: %v",
			approved.ID(), approved.Email(), err)
		if annErr := uc.announcer.AnnounceAdmin(ctx, notice); annErr != nil {
			uc.logger.Warnw("failed to announce mail failure", "error", annErr)
		}
	}

	notice := fmt.Sprintf("Request #%d for %s has been approved. Check your email for details.",
		approved.ID(), approved.Username())
	if err := uc.announcer.AnnounceNetwork(ctx, approved.OriginNetwork(), notice); err != nil {
		uc.logger.Warnw("failed to announce approval", "request_id", approved.ID(),
			"network", approved.OriginNetwork(), "error", err)
	}

	uc.logger.Infow("request approved", "request_id", approved.ID(), "node", node.Name)
	return result, nil
}
