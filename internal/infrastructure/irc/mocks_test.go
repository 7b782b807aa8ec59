package irc

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"
	"github.com/stretchr/testify/require"

	"github.com/chamberirc/chamberbnc/internal/application/relay"
)

type sentLine struct {
	Command string
	Params  []string
}

type fakeConn struct {
	mu         sync.Mutex
	nick       string
	connected  bool
	connectErr []error
	connects   int
	quit       chan struct{}
	sendErr    error
	sent       []sentLine
	callbacks  map[string][]func(ircmsg.Message)
	onConnect  []func(ircmsg.Message)
	onDisconn  []func(ircmsg.Message)
}

func newFakeConn(nick string) *fakeConn {
	return &fakeConn{
		nick:      nick,
		quit:      make(chan struct{}),
		callbacks: make(map[string][]func(ircmsg.Message)),
	}
}

func (c *fakeConn) Connect() error {
	c.mu.Lock()
	c.connects++
	if len(c.connectErr) > 0 {
		err := c.connectErr[0]
		c.connectErr = c.connectErr[1:]
		c.mu.Unlock()
		return err
	}
	c.connected = true
	cbs := append(([]func(ircmsg.Message))(nil), c.onConnect...)
	c.mu.Unlock()

	for _, cb := range cbs {
		cb(ircmsg.Message{Command: "001"})
	}
	return nil
}

func (c *fakeConn) Loop() { <-c.quit }

func (c *fakeConn) Quit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	select {
	case <-c.quit:
	default:
		close(c.quit)
	}
}

func (c *fakeConn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeConn) CurrentNick() string { return c.nick }

func (c *fakeConn) Privmsg(target, text string) error {
	return c.Send("PRIVMSG", target, text)
}

func (c *fakeConn) Send(command string, params ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, sentLine{Command: command, Params: params})
	return nil
}

func (c *fakeConn) Join(channel string) error {
	return c.Send("JOIN", channel)
}

func (c *fakeConn) AddCallback(code string, cb func(ircmsg.Message)) ircevent.CallbackID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks[code] = append(c.callbacks[code], cb)
	return ircevent.CallbackID{}
}

func (c *fakeConn) AddConnectCallback(cb func(ircmsg.Message)) ircevent.CallbackID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, cb)
	return ircevent.CallbackID{}
}

func (c *fakeConn) AddDisconnectCallback(cb func(ircmsg.Message)) ircevent.CallbackID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconn = append(c.onDisconn, cb)
	return ircevent.CallbackID{}
}

// fire parses a raw protocol line and runs the callbacks registered for it.
func (c *fakeConn) fire(t *testing.T, line string) {
	t.Helper()
	msg, err := ircmsg.ParseLine(line)
	require.NoError(t, err)

	c.mu.Lock()
	cbs := append(([]func(ircmsg.Message))(nil), c.callbacks[msg.Command]...)
	c.mu.Unlock()
	for _, cb := range cbs {
		cb(msg)
	}
}

func (c *fakeConn) lines() []sentLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentLine(nil), c.sent...)
}

var errWrite = errors.New("write: broken pipe")

type recordingRelay struct {
	mu     sync.Mutex
	events []relay.Event
	origin []string
}

func (r *recordingRelay) Handle(_ context.Context, origin relay.Session, ev relay.Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	r.origin = append(r.origin, origin.Network())
	return 1
}

func (r *recordingRelay) snapshot() []relay.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]relay.Event(nil), r.events...)
}
