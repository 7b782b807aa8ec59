// Package irc connects the bot to its chat networks and to the control
// interface of every provisioning node.
package irc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"

	"github.com/chamberirc/chamberbnc/internal/application/relay"
	sharedConfig "github.com/chamberirc/chamberbnc/internal/shared/config"
	"github.com/chamberirc/chamberbnc/internal/shared/goroutine"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

// ErrNotConnected is returned when sending on a session that is down.
var ErrNotConnected = errors.New("session not connected")

const (
	defaultReconnectFreq  = 30 * time.Second
	defaultConnectTimeout = 10 * time.Minute
)

// conn is the part of *ircevent.Connection the sessions use.
type conn interface {
	Connect() error
	Loop()
	Quit()
	Connected() bool
	CurrentNick() string
	Privmsg(target, text string) error
	Send(command string, params ...string) error
	Join(channel string) error
	AddCallback(code string, cb func(ircmsg.Message)) ircevent.CallbackID
	AddConnectCallback(cb func(ircmsg.Message)) ircevent.CallbackID
	AddDisconnectCallback(cb func(ircmsg.Message)) ircevent.CallbackID
}

// MessageHandler receives every PRIVMSG that may carry a command.
type MessageHandler func(ctx context.Context, msg InboundMessage)

// EventHandler receives relayable channel events.
type EventHandler interface {
	Handle(ctx context.Context, origin relay.Session, ev relay.Event) int
}

// Session is the bot's connection to one chat network.
type Session struct {
	network  string
	channels []string
	identify func(c conn)
	conn     conn
	logger   logger.Interface

	mu        sync.RWMutex
	onMessage MessageHandler
	relay     EventHandler

	ctx    context.Context
	cancel context.CancelFunc
	loopWg sync.WaitGroup
}

func newNetworkConn(netCfg sharedConfig.NetworkConfig, bot sharedConfig.BotConfig) *ircevent.Connection {
	c := &ircevent.Connection{
		Server:        netCfg.GetAddr(),
		Nick:          bot.Nick,
		User:          bot.User,
		RealName:      bot.RealName,
		UseTLS:        netCfg.SSL,
		RequestCaps:   []string{"server-time", "message-tags"},
		ReconnectFreq: defaultReconnectFreq,
		QuitMessage:   "chamberbnc shutting down",
	}
	if netCfg.SASLEnabled() {
		c.UseSASL = true
		c.SASLLogin = bot.SASLName
		c.SASLPassword = bot.SASLPass
	}
	return c
}

// NewSession builds a session for one configured network. When SASL is
// disabled the bot identifies to NickServ after registration.
func NewSession(netCfg sharedConfig.NetworkConfig, bot sharedConfig.BotConfig, channels []string, log logger.Interface) *Session {
	s := newSession(netCfg.Name, channels, newNetworkConn(netCfg, bot), log)
	if !netCfg.SASLEnabled() && bot.SASLName != "" {
		s.identify = func(c conn) {
			if err := c.Privmsg("NickServ", fmt.Sprintf("IDENTIFY %s %s", bot.SASLName, bot.SASLPass)); err != nil {
				s.logger.Warnw("failed to identify to NickServ", "error", err)
			}
		}
	}
	return s
}

func newSession(network string, channels []string, c conn, log logger.Interface) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		network:  network,
		channels: channels,
		conn:     c,
		logger:   logger.ForNetwork(log, network),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.registerCallbacks()
	return s
}

func (s *Session) registerCallbacks() {
	s.conn.AddConnectCallback(func(ircmsg.Message) {
		s.logger.Infow("connected", "nick", s.conn.CurrentNick())
		if s.identify != nil {
			s.identify(s.conn)
		}
		for _, ch := range s.channels {
			if err := s.conn.Join(ch); err != nil {
				s.logger.Warnw("failed to join channel", "channel", ch, "error", err)
			}
		}
	})
	s.conn.AddDisconnectCallback(func(ircmsg.Message) {
		s.logger.Warnw("disconnected")
	})

	s.conn.AddCallback("PRIVMSG", func(msg ircmsg.Message) {
		if in, ok := inbound(s.network, msg); ok {
			s.dispatchMessage(in)
		}
		s.dispatchEvent(msg)
	})
	for _, code := range []string{"JOIN", "PART", "KICK", "QUIT"} {
		s.conn.AddCallback(code, s.dispatchEvent)
	}
}

// dispatchMessage hands the message to the command handler on its own
// goroutine so slow commands never stall the read loop.
func (s *Session) dispatchMessage(in InboundMessage) {
	s.mu.RLock()
	handler := s.onMessage
	s.mu.RUnlock()
	if handler == nil {
		return
	}

	in.session = s
	goroutine.SafeGo(s.logger, "irc-command", func() {
		handler(s.ctx, in)
	})
}

func (s *Session) dispatchEvent(msg ircmsg.Message) {
	s.mu.RLock()
	r := s.relay
	s.mu.RUnlock()
	if r == nil {
		return
	}

	ev, ok := translate(msg)
	if !ok {
		return
	}
	_ = goroutine.SafeCall(s.logger, "irc-relay", func() error {
		r.Handle(s.ctx, s, ev)
		return nil
	})
}

func (s *Session) setHandlers(onMessage MessageHandler, r EventHandler) {
	s.mu.Lock()
	s.onMessage = onMessage
	s.relay = r
	s.mu.Unlock()
}

func (s *Session) Network() string {
	return s.network
}

func (s *Session) Nick() string {
	return s.conn.CurrentNick()
}

func (s *Session) Connected() bool {
	return s.conn.Connected()
}

// Send delivers text to target, one PRIVMSG per line.
func (s *Session) Send(ctx context.Context, target, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.conn.Connected() {
		return fmt.Errorf("%s: %w", s.network, ErrNotConnected)
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := s.conn.Privmsg(target, line); err != nil {
			return fmt.Errorf("failed to send to %s on %s: %w", target, s.network, err)
		}
	}
	return nil
}

// SetTopic changes a channel topic. The bot needs operator rights for it.
func (s *Session) SetTopic(ctx context.Context, channel, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.conn.Connected() {
		return fmt.Errorf("%s: %w", s.network, ErrNotConnected)
	}
	return s.conn.Send("TOPIC", channel, topic)
}

// Start connects, retrying with exponential backoff, then runs the read
// loop until Stop. The library reconnects on its own after that.
func (s *Session) Start(ctx context.Context) error {
	return startLoop(ctx, s.conn, s.logger, &s.loopWg)
}

func (s *Session) Stop() {
	s.cancel()
	stopLoop(s.conn, &s.loopWg)
}

func startLoop(ctx context.Context, c conn, log logger.Interface, wg *sync.WaitGroup) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 2 * time.Minute

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.Connect()
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(defaultConnectTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warnw("connect failed, retrying", "error", err, "retry_in", next)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	wg.Add(1)
	goroutine.SafeGo(log, "irc-loop", func() {
		defer wg.Done()
		c.Loop()
	})
	return nil
}

func stopLoop(c conn, wg *sync.WaitGroup) {
	c.Quit()
	wg.Wait()
}
