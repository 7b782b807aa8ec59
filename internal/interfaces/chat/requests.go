package chat

import (
	"strconv"
	"strings"

	requestdto "github.com/chamberirc/chamberbnc/internal/application/request/dto"
	requestuc "github.com/chamberirc/chamberbnc/internal/application/request/usecases"
	"github.com/chamberirc/chamberbnc/internal/shared/biztime"
)

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 10, 32)
	if err != nil || id == 0 {
		return 0, errUsage
	}
	return uint(id), nil
}

func (d *Dispatcher) handleRequest(c *call) error {
	f := c.fields()
	if len(f) < 4 || len(f) > 5 {
		return errUsage
	}
	port, err := strconv.Atoi(f[3])
	if err != nil {
		return errUsage
	}
	cmd := requestuc.SubmitRequestCommand{
		Username:       f[0],
		Email:          f[1],
		TargetServer:   f[2],
		TargetPort:     port,
		OriginNetwork:  c.in.Network,
		OriginIdentity: c.in.Mask,
	}
	if len(f) == 5 {
		cmd.RequestedNode = f[4]
	}

	res, err := d.requests.Submit(c.ctx, cmd)
	if err != nil {
		return err
	}
	if !res.MailDelivered {
		c.say("Request #%d created, but the verification email could not be sent. An administrator has been notified.",
			res.Request.ID)
		return nil
	}
	c.say("Request #%d created. A verification email has been sent to %s; follow the instructions in it to verify your request.",
		res.Request.ID, res.Request.Email)
	return nil
}

func (d *Dispatcher) handleVerify(c *call) error {
	f := c.fields()
	if len(f) != 2 {
		return errUsage
	}
	id, err := parseID(f[0])
	if err != nil {
		return err
	}
	if _, err := d.requests.Confirm(c.ctx, id, f[1]); err != nil {
		return err
	}
	c.say("Request #%d verified. An administrator will review it shortly.", id)
	return nil
}

func (d *Dispatcher) handleForceVerify(c *call) error {
	f := c.fields()
	if len(f) != 1 {
		return errUsage
	}
	id, err := parseID(f[0])
	if err != nil {
		return err
	}
	if _, err := d.requests.ForceConfirm(c.ctx, id); err != nil {
		return err
	}
	c.say("Request #%d marked as verified.", id)
	return nil
}

func (d *Dispatcher) handleApprove(c *call) error {
	f := c.fields()
	if len(f) != 2 {
		return errUsage
	}
	id, err := parseID(f[0])
	if err != nil {
		return err
	}
	res, err := d.requests.Approve(c.ctx, requestuc.ApproveRequestCommand{
		RequestID: id,
		Node:      f[1],
		Approver:  c.in.Nick,
	})
	if err != nil {
		return err
	}
	if !res.MailDelivered {
		c.say("Request #%d approved on %s, but the approval email could not be sent.", id, res.Node)
		return nil
	}
	c.say("Request #%d approved on %s.", id, res.Node)
	return nil
}

func (d *Dispatcher) handleDelete(c *call) error {
	f := c.fields()
	cmd := requestuc.DeleteRequestCommand{Admin: c.admin}
	switch {
	case c.admin && len(f) == 1:
	case len(f) == 2:
		cmd.Token = f[1]
	default:
		return errUsage
	}
	id, err := parseID(f[0])
	if err != nil {
		return err
	}
	cmd.RequestID = id

	if err := d.requests.Delete(c.ctx, cmd); err != nil {
		return err
	}
	c.say("Request #%d deleted.", id)
	return nil
}

func (d *Dispatcher) handleRequestInfo(c *call) error {
	f := c.fields()
	if len(f) != 1 {
		return errUsage
	}
	id, err := parseID(f[0])
	if err != nil {
		return err
	}
	r, err := d.requests.Get(c.ctx, id)
	if err != nil {
		return err
	}

	if !c.admin {
		c.say("Request #%d: %s - %s.", r.ID, r.Username, r.Status)
		return nil
	}
	sayRequestDetails(c, r)
	return nil
}

// handleFindRequest looks a request up by email when the argument has an @,
// otherwise by username.
func (d *Dispatcher) handleFindRequest(c *call) error {
	f := c.fields()
	if len(f) != 1 {
		return errUsage
	}
	query := requestuc.FindRequestQuery{Username: f[0]}
	if strings.Contains(f[0], "@") {
		query = requestuc.FindRequestQuery{Email: f[0]}
	}
	r, err := d.requests.Find(c.ctx, query)
	if err != nil {
		return err
	}
	sayRequestDetails(c, r)
	return nil
}

func sayRequestDetails(c *call, r *requestdto.RequestDTO) {
	node := r.RequestedNode
	if node == "" {
		node = "none"
	}
	c.say("Request #%d: %s <%s> - %s", r.ID, r.Username, r.Email, r.Status)
	c.say("Source: %s on %s", r.OriginIdentity, r.OriginNetwork)
	c.say("Server: %s:%d, requested node: %s", r.TargetServer, r.TargetPort, node)
	c.say("Created: %s", biztime.Format(r.CreatedAt))
}

func (d *Dispatcher) handlePending(c *call) error {
	pending, err := d.requests.ListPending(c.ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		c.say("No pending requests.")
		return nil
	}
	c.say("Pending requests (%d):", len(pending))
	for _, r := range pending {
		c.say("  #%d %s <%s> - %s (%s, %s:%d)",
			r.ID, r.Username, r.Email, r.Status, r.OriginNetwork, r.TargetServer, r.TargetPort)
	}
	return nil
}
