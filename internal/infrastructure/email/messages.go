package email

import (
	"fmt"
	"strings"

	"github.com/chamberirc/chamberbnc/internal/application/provisioning"
	"github.com/chamberirc/chamberbnc/internal/domain/request"
	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	"github.com/chamberirc/chamberbnc/internal/shared/biztime"
)

// Branding is the service identity the messages speak for.
type Branding struct {
	Name          string
	CommandPrefix string
	// Channel and Server tell the reader where the bot lives.
	Channel string
	Server  string
}

type message struct {
	Subject string
	Body    string
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func verificationMessage(b Branding, r *request.Request) message {
	return message{
		Subject: fmt.Sprintf("%s account verification", b.Name),
		Body: lines(
			"Hello,",
			"",
			fmt.Sprintf("Someone, hopefully you, requested a %s account in %s on %s. If this was you, please send", b.Name, b.Channel, b.Server),
			"",
			fmt.Sprintf("    %sverify %d %s", b.CommandPrefix, r.ID(), r.VerificationToken()),
			"",
			fmt.Sprintf("in %s or in a private message to the bot.", b.Channel),
			"",
			"Didn't make this request or changed your mind? You can safely cancel it by sending",
			"",
			fmt.Sprintf("    %sdelete %d %s", b.CommandPrefix, r.ID(), r.VerificationToken()),
			"",
			"in the same place.",
			"",
			"Regards,",
			fmt.Sprintf("%s Team", b.Name),
		),
	}
}

func requestWaitingMessage(b Branding, r *request.Request) message {
	node := r.RequestedNode()
	if node == "" {
		node = "not specified"
	}
	return message{
		Subject: fmt.Sprintf("%s account request - #%d for %s", b.Name, r.ID(), r.Username()),
		Body: lines(
			"Admin,",
			"",
			fmt.Sprintf("There is a %s account waiting to be approved. Details:", b.Name),
			"",
			fmt.Sprintf("ID: %d", r.ID()),
			fmt.Sprintf("Username: %s", r.Username()),
			fmt.Sprintf("Source: %s on %s", r.OriginIdentity(), r.OriginNetwork()),
			fmt.Sprintf("Server: %s %d", r.TargetServer(), r.TargetPort()),
			fmt.Sprintf("Email: %s", r.Email()),
			fmt.Sprintf("Timestamp: %s", biztime.Format(r.CreatedAt())),
			fmt.Sprintf("Requested server: %s", node),
			"",
			fmt.Sprintf("Approve it with %sapprove %d <server>.", b.CommandPrefix, r.ID()),
			"",
			"Regards,",
			fmt.Sprintf("%s bot", b.Name),
		),
	}
}

func approvedMessage(b Branding, r *request.Request, node provisioning.Node, password string) message {
	user := r.Username()
	return message{
		Subject: fmt.Sprintf("%s account approved", b.Name),
		Body: lines(
			fmt.Sprintf("Dear %s,", user),
			"",
			fmt.Sprintf("Your %s account has been approved. Your account details are:", b.Name),
			"",
			fmt.Sprintf("Server: %s", node.Addr),
			fmt.Sprintf("Server name: %s", node.Name),
			fmt.Sprintf("Plaintext Port: %d", node.PublicPort),
			fmt.Sprintf("SSL Port: %d", node.PublicSSLPort),
			fmt.Sprintf("Username: %s", user),
			fmt.Sprintf("Password: %s", password),
			fmt.Sprintf("Web Panel: %s", node.Panel),
			"",
			fmt.Sprintf("To connect, point your IRC client at %s on port %d (or %d for SSL) and put your username and password, separated by a colon, in the server password field:",
				node.Addr, node.PublicPort, node.PublicSSLPort),
			"",
			fmt.Sprintf("    %s:%s", user, password),
			"",
			fmt.Sprintf("If you need any help, join %s on %s.", b.Channel, b.Server),
			"",
			"Regards,",
			fmt.Sprintf("%s Team", b.Name),
		),
	}
}

func ticketCreatedMessage(b Branding, t *ticket.Ticket) message {
	return message{
		Subject: fmt.Sprintf("[%s] New ticket #%d: %s", b.Name, t.ID(), t.Subject()),
		Body: lines(
			"Admin,",
			"",
			"A new support ticket has been opened.",
			"",
			fmt.Sprintf("Ticket: #%d", t.ID()),
			fmt.Sprintf("Subject: %s", t.Subject()),
			fmt.Sprintf("From: %s on %s", t.Creator(), t.OriginNetwork()),
			fmt.Sprintf("Created: %s", biztime.Format(t.CreatedAt())),
			"",
			t.Message(),
			"",
			fmt.Sprintf("View it with %sticketinfo %d in the admin channel.", b.CommandPrefix, t.ID()),
		),
	}
}

func ticketUpdatedMessage(b Branding, t *ticket.Ticket, replier, text string) message {
	return message{
		Subject: fmt.Sprintf("[%s] Ticket #%d updated: %s", b.Name, t.ID(), t.Subject()),
		Body: lines(
			"Admin,",
			"",
			fmt.Sprintf("%s replied to ticket #%d (%s).", replier, t.ID(), t.Status()),
			"",
			text,
			"",
			fmt.Sprintf("The ticket now has %d replies.", len(t.Replies())),
		),
	}
}
