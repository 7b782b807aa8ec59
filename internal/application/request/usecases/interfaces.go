package usecases

import (
	"context"

	"github.com/chamberirc/chamberbnc/internal/application/provisioning"
	"github.com/chamberirc/chamberbnc/internal/domain/request"
)

type NodeResolver interface {
	ResolveNode(nameOrAddr string) (provisioning.Node, bool)
}

type Provisioner interface {
	NodeResolver
	Provision(ctx context.Context, node provisioning.Node, acct provisioning.Account) error
}

// RequestMailer sends the mails of the request lifecycle. Reviewer
// addresses are the mailer's concern.
type RequestMailer interface {
	SendVerification(ctx context.Context, req *request.Request) error
	SendRequestWaiting(ctx context.Context, req *request.Request) error
	SendApproved(ctx context.Context, req *request.Request, node provisioning.Node, password string) error
}

// Announcer posts notices to chat.
type Announcer interface {
	AnnounceAdmin(ctx context.Context, text string) error
	AnnounceNetwork(ctx context.Context, network string, text string) error
}
