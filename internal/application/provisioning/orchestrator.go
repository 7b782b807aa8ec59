// Package provisioning creates bouncer accounts on provisioning nodes by
// sending control commands over each node's control session.
//
// Commands are fire-and-forget: a command counts as issued once it is
// written to the control session. The second batch runs after a settle
// delay as a separately scheduled job, so a restart between the two
// batches leaves the account partially configured.
package provisioning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

// ControlChannel delivers one command line to a node's control session.
type ControlChannel interface {
	SendControl(ctx context.Context, node string, command string) error
}

// Deferrer runs task once after delay.
type Deferrer interface {
	Defer(name string, delay time.Duration, task func(ctx context.Context) error) error
}

type AdminAnnouncer interface {
	AnnounceAdmin(ctx context.Context, text string) error
}

type Orchestrator struct {
	nodes       []Node
	control     ControlChannel
	deferrer    Deferrer
	announcer   AdminAnnouncer
	settleDelay time.Duration
	logger      logger.Interface
}

func NewOrchestrator(
	nodes []Node,
	control ControlChannel,
	deferrer Deferrer,
	announcer AdminAnnouncer,
	settleDelay time.Duration,
	logger logger.Interface,
) *Orchestrator {
	return &Orchestrator{
		nodes:       nodes,
		control:     control,
		deferrer:    deferrer,
		announcer:   announcer,
		settleDelay: settleDelay,
		logger:      logger,
	}
}

// Nodes returns the configured nodes in configuration order.
func (o *Orchestrator) Nodes() []Node {
	return append([]Node(nil), o.nodes...)
}

// ResolveNode matches a node name first, then a node address, ignoring case.
func (o *Orchestrator) ResolveNode(nameOrAddr string) (Node, bool) {
	key := strings.TrimSpace(nameOrAddr)
	if key == "" {
		return Node{}, false
	}
	for _, n := range o.nodes {
		if strings.EqualFold(n.Name, key) {
			return n, true
		}
	}
	for _, n := range o.nodes {
		if strings.EqualFold(n.Addr, key) {
			return n, true
		}
	}
	return Node{}, false
}

// Provision issues the immediate batch and schedules the deferred one. A
// failure to issue any immediate command, or to schedule the deferred
// batch, is returned as a ProvisioningError.
func (o *Orchestrator) Provision(ctx context.Context, node Node, acct Account) error {
	log := o.logger.With("node", node.Name, "username", acct.Username)

	for _, cmd := range ImmediateCommands(node, acct) {
		if err := o.control.SendControl(ctx, node.Name, cmd); err != nil {
			log.Errorw("failed to issue provisioning command", "command", redact(cmd), "error", err)
			return errors.NewProvisioningError(
				fmt.Sprintf("could not reach provisioning node %s", node.Name), err)
		}
	}
	log.Infow("immediate provisioning batch issued")

	deferred := DeferredCommands(acct)
	err := o.deferrer.Defer("provision:"+node.Name+":"+acct.Username, o.settleDelay, func(ctx context.Context) error {
		return o.runDeferred(ctx, node, acct, deferred)
	})
	if err != nil {
		log.Errorw("failed to schedule deferred provisioning batch", "error", err)
		return errors.NewProvisioningError("could not schedule network setup", err)
	}
	return nil
}

func (o *Orchestrator) runDeferred(ctx context.Context, node Node, acct Account, commands []string) error {
	log := o.logger.With("node", node.Name, "username", acct.Username)

	for _, cmd := range commands {
		if err := o.control.SendControl(ctx, node.Name, cmd); err != nil {
			log.Errorw("failed to issue deferred provisioning command", "command", cmd, "error", err)
			notice := fmt.Sprintf("Provisioning of %s on %s is incomplete: %q failed (%v). Add the network by hand.",
				acct.Username, node.Name, cmd, err)
			if annErr := o.announcer.AnnounceAdmin(ctx, notice); annErr != nil {
				log.Warnw("failed to announce provisioning failure", "error", annErr)
			}
			return err
		}
	}
	log.Infow("deferred provisioning batch issued")
	return nil
}

// redact hides the password argument in logs.
func redact(cmd string) string {
	if strings.HasPrefix(cmd, "Set Password ") {
		fields := strings.Fields(cmd)
		return strings.Join(fields[:len(fields)-1], " ") + " ***"
	}
	return cmd
}
