package irc

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"

	sharedConfig "github.com/chamberirc/chamberbnc/internal/shared/config"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

const (
	controlNick   = "bncbot"
	controlTarget = "*controlpanel"
)

// ControlSession is the admin login to one provisioning node. Commands go
// to the node's control module as private messages.
type ControlSession struct {
	node   string
	conn   conn
	logger logger.Interface
	loopWg sync.WaitGroup
}

func NewControlSession(node sharedConfig.ProvisioningNodeConfig, log logger.Interface) *ControlSession {
	c := &ircevent.Connection{
		Server:        node.GetAddr(),
		Nick:          controlNick,
		User:          controlNick,
		RealName:      controlNick,
		Password:      node.Username + ":" + node.Password,
		UseTLS:        node.SSL,
		ReconnectFreq: defaultReconnectFreq,
	}
	return newControlSession(node.Name, c, log)
}

func newControlSession(node string, c conn, log logger.Interface) *ControlSession {
	s := &ControlSession{
		node:   node,
		conn:   c,
		logger: log.With("node", node),
	}
	c.AddConnectCallback(func(ircmsg.Message) {
		s.logger.Infow("control session connected")
	})
	c.AddDisconnectCallback(func(ircmsg.Message) {
		s.logger.Warnw("control session disconnected")
	})
	c.AddCallback("PRIVMSG", func(msg ircmsg.Message) {
		if !strings.EqualFold(sourceNick(msg.Source), controlTarget) {
			return
		}
		s.logger.Infow("control reply", "text", param(msg, 1))
	})
	return s
}

func (s *ControlSession) Node() string {
	return s.node
}

func (s *ControlSession) Connected() bool {
	return s.conn.Connected()
}

// SendControl writes one command. Success means the line was written, not
// that the node accepted it.
func (s *ControlSession) SendControl(ctx context.Context, command string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.conn.Connected() {
		return fmt.Errorf("node %s: %w", s.node, ErrNotConnected)
	}
	if err := s.conn.Privmsg(controlTarget, command); err != nil {
		return fmt.Errorf("failed to send control command to %s: %w", s.node, err)
	}
	return nil
}

func (s *ControlSession) Start(ctx context.Context) error {
	return startLoop(ctx, s.conn, s.logger, &s.loopWg)
}

func (s *ControlSession) Stop() {
	stopLoop(s.conn, &s.loopWg)
}
