// Package chat turns chat lines into workflow calls. Every verb is listed in
// one command table; handlers reply through the transport that delivered the
// line.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chamberirc/chamberbnc/internal/application/provisioning"
	requestdto "github.com/chamberirc/chamberbnc/internal/application/request/dto"
	requestuc "github.com/chamberirc/chamberbnc/internal/application/request/usecases"
	ticketdto "github.com/chamberirc/chamberbnc/internal/application/ticket/dto"
	ticketuc "github.com/chamberirc/chamberbnc/internal/application/ticket/usecases"
	apperrors "github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

// Inbound is one chat line that may carry a command.
type Inbound struct {
	Network string
	// Channel is empty for private messages.
	Channel string
	Nick    string
	Mask    string
	Text    string
}

type Replier interface {
	Reply(ctx context.Context, text string) error
}

type RequestService interface {
	Submit(ctx context.Context, cmd requestuc.SubmitRequestCommand) (*requestuc.SubmitRequestResult, error)
	Confirm(ctx context.Context, requestID uint, token string) (*requestdto.RequestDTO, error)
	ForceConfirm(ctx context.Context, requestID uint) (*requestdto.RequestDTO, error)
	Approve(ctx context.Context, cmd requestuc.ApproveRequestCommand) (*requestuc.ApproveRequestResult, error)
	Delete(ctx context.Context, cmd requestuc.DeleteRequestCommand) error
	Get(ctx context.Context, requestID uint) (*requestdto.RequestDTO, error)
	ListPending(ctx context.Context) ([]*requestdto.RequestDTO, error)
	Find(ctx context.Context, query requestuc.FindRequestQuery) (*requestdto.RequestDTO, error)
}

type TicketService interface {
	Create(ctx context.Context, cmd ticketuc.CreateTicketCommand) (*ticketdto.TicketDTO, error)
	AddReply(ctx context.Context, cmd ticketuc.AddReplyCommand) (*ticketdto.TicketDTO, error)
	ChangeStatus(ctx context.Context, cmd ticketuc.ChangeStatusCommand) (*ticketdto.TicketDTO, error)
	Assign(ctx context.Context, cmd ticketuc.AssignTicketCommand) (*ticketdto.TicketDTO, error)
	Get(ctx context.Context, query ticketuc.GetTicketQuery) (*ticketdto.TicketDTO, error)
	ListByCreator(ctx context.Context, creator string) ([]*ticketdto.TicketDTO, error)
	ListOpen(ctx context.Context) ([]*ticketdto.TicketDTO, error)
}

// NetworkInfo is one chat network as listed by the networks command.
type NetworkInfo struct {
	Name      string
	Server    string
	Connected bool
}

// Networks gives the admin verbs access to every chat session.
type Networks interface {
	NetworkList() []NetworkInfo
	Broadcast(ctx context.Context, text string) int
	SetTopic(ctx context.Context, channel, topic string) int
}

type NodeDirectory interface {
	Nodes() []provisioning.Node
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Options configures the dispatcher.
type Options struct {
	Prefix       string
	AdminNetwork string
	AdminChannel string
	// TopicChannel is the channel the topic verb changes.
	TopicChannel string
}

var errUsage = errors.New("usage")

type handlerFunc func(c *call) error

type command struct {
	handler handlerFunc
	usage   string
	summary string
	admin   bool
	limited bool
}

// call is one command invocation.
type call struct {
	ctx   context.Context
	in    Inbound
	verb  string
	args  string
	reply Replier
	admin bool
}

func (c *call) fields() []string {
	return strings.Fields(c.args)
}

func (c *call) say(format string, a ...any) {
	_ = c.reply.Reply(c.ctx, fmt.Sprintf(format, a...))
}

type Dispatcher struct {
	requests RequestService
	tickets  TicketService
	networks Networks
	nodes    NodeDirectory
	limiter  RateLimiter
	opts     Options
	commands map[string]command
	logger   logger.Interface
}

func NewDispatcher(
	requests RequestService,
	tickets TicketService,
	networks Networks,
	nodes NodeDirectory,
	limiter RateLimiter,
	opts Options,
	logger logger.Interface,
) *Dispatcher {
	if opts.Prefix == "" {
		opts.Prefix = "!"
	}
	d := &Dispatcher{
		requests: requests,
		tickets:  tickets,
		networks: networks,
		nodes:    nodes,
		limiter:  limiter,
		opts:     opts,
		logger:   logger.Named("chat"),
	}
	d.commands = d.commandTable()
	return d
}

func (d *Dispatcher) commandTable() map[string]command {
	return map[string]command{
		"request": {handler: d.handleRequest, limited: true,
			usage: "request <username> <email> <server> <port> [node]", summary: "Request a bouncer account"},
		"verify": {handler: d.handleVerify,
			usage: "verify <id> <code>", summary: "Verify your request with the code from the email"},
		"reqinfo": {handler: d.handleRequestInfo,
			usage: "reqinfo <id>", summary: "Show the status of a request"},
		"delete": {handler: d.handleDelete,
			usage: "delete <id> <code>", summary: "Cancel your request"},
		"servers": {handler: d.handleServers,
			usage: "servers", summary: "List the bouncer servers"},
		"networks": {handler: d.handleNetworks,
			usage: "networks", summary: "List the chat networks the bot is on"},
		"ticket": {handler: d.handleTicket,
			usage: "ticket new <subject> :: <message> | ticket <id> | ticket reply <id> <message> | ticket help", summary: "Open, view or reply to a support ticket"},
		"tickets": {handler: d.handleMyTickets,
			usage: "tickets", summary: "List your support tickets"},
		"help": {handler: d.handleHelp,
			usage: "help", summary: "Show this help"},

		"approve": {handler: d.handleApprove, admin: true,
			usage: "approve <id> <server>", summary: "Approve a verified request on a bouncer server"},
		"fverify": {handler: d.handleForceVerify, admin: true,
			usage: "fverify <id>", summary: "Mark a request verified without its code"},
		"findrequest": {handler: d.handleFindRequest, admin: true,
			usage: "findrequest <email|username>", summary: "Look up a request by email or username"},
		"pending": {handler: d.handlePending, admin: true,
			usage: "pending", summary: "List requests that are not approved"},
		"broadcast": {handler: d.handleBroadcast, admin: true,
			usage: "broadcast <text>", summary: "Announce text on every network"},
		"topic": {handler: d.handleTopic, admin: true,
			usage: "topic <text>", summary: "Set the relay channel topic on every network"},
		"ticketlist": {handler: d.handleTicketList, admin: true,
			usage: "ticketlist", summary: "List open tickets"},
		"ticketinfo": {handler: d.handleTicketInfo, admin: true,
			usage: "ticketinfo <id>", summary: "Show ticket details"},
		"ticketassign": {handler: d.handleTicketAssign, admin: true,
			usage: "ticketassign <id> <admin>", summary: "Assign a ticket"},
		"ticketclose": {handler: d.statusHandler(ticketuc.ActionClose), admin: true,
			usage: "ticketclose <id>", summary: "Close a ticket"},
		"ticketresolve": {handler: d.statusHandler(ticketuc.ActionResolve), admin: true,
			usage: "ticketresolve <id>", summary: "Mark a ticket resolved"},
		"ticketreopen": {handler: d.statusHandler(ticketuc.ActionReopen), admin: true,
			usage: "ticketreopen <id>", summary: "Reopen a ticket"},
		"ticketstatus": {handler: d.handleTicketStatus, admin: true,
			usage: "ticketstatus <id> <status>", summary: "Set a ticket status"},
	}
}

// IsAdmin reports whether the line came from the admin channel.
func (d *Dispatcher) IsAdmin(in Inbound) bool {
	return in.Channel != "" &&
		strings.EqualFold(in.Network, d.opts.AdminNetwork) &&
		strings.EqualFold(in.Channel, d.opts.AdminChannel)
}

// Dispatch runs the command carried by in, if any. Every rejected command
// produces exactly one reply.
func (d *Dispatcher) Dispatch(ctx context.Context, in Inbound, reply Replier) {
	text := strings.TrimSpace(in.Text)
	if !strings.HasPrefix(text, d.opts.Prefix) {
		return
	}
	text = strings.TrimPrefix(text, d.opts.Prefix)

	verb, args, _ := strings.Cut(text, " ")
	verb = strings.ToLower(verb)
	cmd, ok := d.commands[verb]
	if !ok {
		return
	}

	c := &call{
		ctx:   ctx,
		in:    in,
		verb:  verb,
		args:  strings.TrimSpace(args),
		reply: reply,
		admin: d.IsAdmin(in),
	}
	log := d.logger.With("verb", verb, "network", in.Network, "mask", in.Mask)

	if cmd.admin && !c.admin {
		log.Debugw("admin command outside admin channel")
		c.say("Error: %s is only available in the admin channel.", d.opts.Prefix+verb)
		return
	}
	if cmd.limited && !c.admin && !d.allow(c) {
		c.say("Error: You are doing that too often, please try again later.")
		return
	}

	err := cmd.handler(c)
	if err == nil {
		return
	}
	if errors.Is(err, errUsage) {
		c.say("Usage: %s%s", d.opts.Prefix, cmd.usage)
		return
	}
	c.say("%s", d.errorReply(log, err))
}

// allow consults the rate limiter. A limiter failure admits the command.
func (d *Dispatcher) allow(c *call) bool {
	if d.limiter == nil {
		return true
	}
	key := c.verb + ":" + strings.ToLower(c.in.Mask)
	ok, err := d.limiter.Allow(c.ctx, key)
	if err != nil {
		d.logger.Warnw("rate limiter unavailable", "key", key, "error", err)
		return true
	}
	if !ok {
		d.logger.Infow("command rate limited", "key", key)
	}
	return ok
}

func (d *Dispatcher) errorReply(log logger.Interface, err error) string {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		log.Errorw("command failed", "error", err)
		return "Error: Something went wrong, please try again later."
	}

	switch appErr.Type {
	case apperrors.ErrorTypeInternal:
		log.Errorw("command failed", "error", err)
	case apperrors.ErrorTypePersistence, apperrors.ErrorTypeProvisioning:
		log.Errorw("command failed", "type", appErr.Type, "error", err)
	default:
		log.Infow("command rejected", "type", appErr.Type, "reason", appErr.Message)
	}
	return "Error: " + sentence(appErr.Message)
}

// sentence capitalises msg and ends it with a full stop.
func sentence(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "Unknown error."
	}
	first, size := utf8.DecodeRuneInString(msg)
	msg = string(unicode.ToUpper(first)) + msg[size:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}

func (d *Dispatcher) handleHelp(c *call) error {
	var public, admin []string
	for verb, cmd := range d.commands {
		line := fmt.Sprintf("  %s%s - %s", d.opts.Prefix, cmd.usage, cmd.summary)
		if verb == "ticket" {
			line = fmt.Sprintf("  %sticket help - %s", d.opts.Prefix, cmd.summary)
		}
		if cmd.admin {
			admin = append(admin, line)
		} else {
			public = append(public, line)
		}
	}
	sort.Strings(public)
	sort.Strings(admin)

	c.say("Commands:")
	for _, l := range public {
		c.say("%s", l)
	}
	if c.admin {
		c.say("Admin commands:")
		for _, l := range admin {
			c.say("%s", l)
		}
	}
	return nil
}
