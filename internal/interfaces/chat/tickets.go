package chat

import (
	"strings"

	ticketdto "github.com/chamberirc/chamberbnc/internal/application/ticket/dto"
	ticketuc "github.com/chamberirc/chamberbnc/internal/application/ticket/usecases"
	"github.com/chamberirc/chamberbnc/internal/shared/biztime"
)

const subjectSeparator = "::"

func (c *call) actor() ticketuc.Actor {
	return ticketuc.Actor{Nick: c.in.Nick, Mask: c.in.Mask, Admin: c.admin}
}

// handleTicket covers the ticket sub-verbs: new, reply, view, help, and a
// bare id as a shorthand for view.
func (d *Dispatcher) handleTicket(c *call) error {
	sub, rest, _ := strings.Cut(c.args, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(sub) {
	case "new":
		if !c.admin && !d.allow(&call{ctx: c.ctx, in: c.in, verb: "ticket-new"}) {
			c.say("Error: You are doing that too often, please try again later.")
			return nil
		}
		return d.ticketNew(c, rest)
	case "reply":
		return d.ticketReply(c, rest)
	case "view":
		return d.ticketView(c, rest)
	case "help":
		return d.ticketHelp(c)
	case "":
		return errUsage
	default:
		return d.ticketView(c, c.args)
	}
}

func (d *Dispatcher) ticketNew(c *call, args string) error {
	subject, message, ok := strings.Cut(args, subjectSeparator)
	subject, message = strings.TrimSpace(subject), strings.TrimSpace(message)
	if !ok || subject == "" || message == "" {
		return errUsage
	}

	t, err := d.tickets.Create(c.ctx, ticketuc.CreateTicketCommand{
		Creator: c.actor(),
		Subject: subject,
		Message: message,
		Network: c.in.Network,
	})
	if err != nil {
		return err
	}
	c.say("Support ticket #%d created successfully. You can view it with: %sticket %d", t.ID, d.opts.Prefix, t.ID)
	return nil
}

func (d *Dispatcher) ticketReply(c *call, args string) error {
	idText, message, _ := strings.Cut(args, " ")
	message = strings.TrimSpace(message)
	if message == "" {
		return errUsage
	}
	id, err := parseID(idText)
	if err != nil {
		return err
	}

	if _, err := d.tickets.AddReply(c.ctx, ticketuc.AddReplyCommand{
		TicketID: id,
		Author:   c.actor(),
		Message:  message,
	}); err != nil {
		return err
	}
	c.say("Reply added to ticket #%d.", id)
	return nil
}

func (d *Dispatcher) ticketView(c *call, args string) error {
	id, err := parseID(strings.TrimSpace(args))
	if err != nil {
		return err
	}
	t, err := d.tickets.Get(c.ctx, ticketuc.GetTicketQuery{TicketID: id, Viewer: c.actor()})
	if err != nil {
		return err
	}

	c.say("Ticket #%d: %s - %s", t.ID, strings.ToUpper(t.Status), t.Subject)
	c.say("Created: %s by %s", biztime.Format(t.CreatedAt), t.Creator)
	c.say("Message: %s", t.Message)
	if t.Assignee != "" {
		c.say("Assigned to: %s", t.Assignee)
	}
	if len(t.Replies) == 0 {
		c.say("No replies yet.")
		return nil
	}
	c.say("Replies (%d):", len(t.Replies))
	for i, r := range t.Replies {
		c.say("  [%d] %s (%s): %s", i+1, r.Author, biztime.Format(r.CreatedAt), r.Message)
	}
	return nil
}

func (d *Dispatcher) ticketHelp(c *call) error {
	p := d.opts.Prefix
	if c.admin {
		c.say("Admin ticket commands:")
		c.say("  %sticketlist - List all open tickets", p)
		c.say("  %sticketinfo <id> - View detailed ticket information", p)
		c.say("  %sticketassign <id> <admin> - Assign ticket to admin", p)
		c.say("  %sticketclose <id> - Close a ticket", p)
		c.say("  %sticketresolve <id> - Mark ticket as resolved", p)
		c.say("  %sticketreopen <id> - Reopen a closed ticket", p)
		c.say("  %sticketstatus <id> <status> - Set ticket status (open, in-progress, closed, resolved)", p)
		return nil
	}
	c.say("Support ticket commands:")
	c.say("  %sticket new <subject> :: <message> - Create a new support ticket", p)
	c.say("  %sticket <id> - View a ticket and its replies", p)
	c.say("  %sticket reply <id> <message> - Reply to a ticket", p)
	c.say("  %stickets - List all your tickets", p)
	c.say("  %sticket help - Show this help", p)
	return nil
}

func (d *Dispatcher) handleMyTickets(c *call) error {
	list, err := d.tickets.ListByCreator(c.ctx, c.in.Mask)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		c.say("You have no support tickets. Create one with: %sticket new <subject> :: <message>", d.opts.Prefix)
		return nil
	}
	c.say("Your tickets (%d):", len(list))
	for _, t := range list {
		c.say("  #%d - %s - %s (%s)", t.ID, strings.ToUpper(t.Status), t.Subject, t.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func (d *Dispatcher) handleTicketList(c *call) error {
	list, err := d.tickets.ListOpen(c.ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		c.say("No open tickets.")
		return nil
	}
	c.say("Open tickets (%d):", len(list))
	for _, t := range list {
		c.say("  #%d - %s - %s%s by %s (%s)",
			t.ID, strings.ToUpper(t.Status), t.Subject, assignedSuffix(t), t.CreatorNick, t.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func assignedSuffix(t *ticketdto.TicketDTO) string {
	if t.Assignee == "" {
		return ""
	}
	return " (assigned: " + t.Assignee + ")"
}

func (d *Dispatcher) handleTicketInfo(c *call) error {
	f := c.fields()
	if len(f) != 1 {
		return errUsage
	}
	id, err := parseID(f[0])
	if err != nil {
		return err
	}
	t, err := d.tickets.Get(c.ctx, ticketuc.GetTicketQuery{TicketID: id, Viewer: c.actor()})
	if err != nil {
		return err
	}

	assignee := t.Assignee
	if assignee == "" {
		assignee = "Unassigned"
	}
	c.say("Ticket #%d: %s", t.ID, strings.ToUpper(t.Status))
	c.say("Subject: %s", t.Subject)
	c.say("Creator: %s on %s", t.Creator, t.OriginNetwork)
	c.say("Created: %s", biztime.Format(t.CreatedAt))
	c.say("Updated: %s", biztime.Format(t.UpdatedAt))
	c.say("Assigned: %s", assignee)
	c.say("Message: %s", t.Message)
	c.say("Replies: %d", len(t.Replies))
	return nil
}

func (d *Dispatcher) handleTicketAssign(c *call) error {
	idText, assignee, _ := strings.Cut(c.args, " ")
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return errUsage
	}
	id, err := parseID(idText)
	if err != nil {
		return err
	}
	if _, err := d.tickets.Assign(c.ctx, ticketuc.AssignTicketCommand{
		TicketID: id,
		Assignee: assignee,
		Actor:    c.actor(),
	}); err != nil {
		return err
	}
	c.say("Ticket #%d assigned to %s and set to in-progress.", id, assignee)
	return nil
}

var statusReplies = map[ticketuc.StatusAction]string{
	ticketuc.ActionClose:   "Ticket #%d closed.",
	ticketuc.ActionResolve: "Ticket #%d marked as resolved.",
	ticketuc.ActionReopen:  "Ticket #%d reopened.",
}

func (d *Dispatcher) statusHandler(action ticketuc.StatusAction) handlerFunc {
	return func(c *call) error {
		f := c.fields()
		if len(f) != 1 {
			return errUsage
		}
		id, err := parseID(f[0])
		if err != nil {
			return err
		}
		if _, err := d.tickets.ChangeStatus(c.ctx, ticketuc.ChangeStatusCommand{
			TicketID: id,
			Action:   action,
			Actor:    c.actor(),
		}); err != nil {
			return err
		}
		c.say(statusReplies[action], id)
		return nil
	}
}

func (d *Dispatcher) handleTicketStatus(c *call) error {
	f := c.fields()
	if len(f) != 2 {
		return errUsage
	}
	id, err := parseID(f[0])
	if err != nil {
		return err
	}
	t, err := d.tickets.ChangeStatus(c.ctx, ticketuc.ChangeStatusCommand{
		TicketID: id,
		Action:   ticketuc.ActionSetStatus,
		Status:   f[1],
		Actor:    c.actor(),
	})
	if err != nil {
		return err
	}
	c.say("Ticket #%d status set to %s.", id, t.Status)
	return nil
}
