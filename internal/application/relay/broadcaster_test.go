package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type fixture struct {
	a, b, c *fakeSession
	reg     *fakeRegistry
	bc      *Broadcaster
}

func newFixture(channels ...string) *fixture {
	f := &fixture{
		a: newFakeSession("NetA"),
		b: newFakeSession("NetB"),
		c: newFakeSession("NetC"),
	}
	f.reg = &fakeRegistry{sessions: []*fakeSession{f.a, f.b, f.c}}
	f.bc = NewBroadcaster(channels, f.reg, 0, logger.NewNopLogger())
	return f
}

func TestNewBroadcaster_NormalisesChannels(t *testing.T) {
	bc := NewBroadcaster([]string{"Lobby", "#lobby", "", "chat"}, &fakeRegistry{}, 0, logger.NewNopLogger())
	assert.Equal(t, []string{"#Lobby", "#chat"}, bc.Channels())
	assert.True(t, bc.IsRelayChannel("#LOBBY"))
	assert.True(t, bc.IsRelayChannel("chat"))
	assert.False(t, bc.IsRelayChannel("#other"))

	empty := NewBroadcaster(nil, &fakeRegistry{}, 0, logger.NewNopLogger())
	assert.Equal(t, DefaultChannel, empty.DefaultChannel())
}

func TestHandle_MessageReachesEveryOtherNetworkOnce(t *testing.T) {
	f := newFixture("#bnc.im")

	n := f.bc.Handle(context.Background(), f.a, Event{Kind: EventMessage, Channel: "#BNC.im", Nick: "nova", Text: "hello"})
	assert.Equal(t, 2, n)

	assert.Empty(t, f.a.lines())
	want := []sentLine{{Target: "#bnc.im", Text: "[NetA] <nova> hello"}}
	assert.Equal(t, want, f.b.lines())
	assert.Equal(t, want, f.c.lines())
}

func TestHandle_SameNetworkIsSkipped(t *testing.T) {
	f := newFixture("#bnc.im")
	twin := newFakeSession("netb")
	f.reg.sessions = append(f.reg.sessions, twin)

	n := f.bc.Handle(context.Background(), f.b, Event{Kind: EventMessage, Channel: "#bnc.im", Nick: "nova", Text: "hi"})
	assert.Equal(t, 2, n)
	assert.Empty(t, twin.lines())
	assert.Len(t, f.a.lines(), 1)
	assert.Len(t, f.c.lines(), 1)
}

func TestHandle_Formats(t *testing.T) {
	tests := []struct {
		name   string
		event  Event
		target string
		text   string
	}{
		{"action", Event{Kind: EventAction, Channel: "#bnc.im", Nick: "nova", Text: "waves"}, "#bnc.im", "[NetA] * nova waves"},
		{"join", Event{Kind: EventJoin, Channel: "#bnc.im", Nick: "nova"}, "#bnc.im", "[NetA] - nova has joined #bnc.im."},
		{"part", Event{Kind: EventPart, Channel: "#bnc.im", Nick: "nova"}, "#bnc.im", "[NetA] - nova has parted #bnc.im."},
		{"kick", Event{Kind: EventLeave, Channel: "#bnc.im", Nick: "nova"}, "#bnc.im", "[NetA] - nova has left #bnc.im."},
		{"quit uses default channel", Event{Kind: EventQuit, Nick: "nova"}, "#bnc.im", "[NetA] - nova has quit."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture("#bnc.im", "#other")
			f.bc.Handle(context.Background(), f.a, tt.event)
			assert.Equal(t, []sentLine{{Target: tt.target, Text: tt.text}}, f.c.lines())
		})
	}
}

func TestHandle_NoOps(t *testing.T) {
	tests := []struct {
		name  string
		event Event
	}{
		{"channel not relayed", Event{Kind: EventMessage, Channel: "#private", Nick: "nova", Text: "secret"}},
		{"own message", Event{Kind: EventMessage, Channel: "#bnc.im", Nick: "ChamberBNC", Text: "echo"}},
		{"own join", Event{Kind: EventJoin, Channel: "#bnc.im", Nick: "chamberbnc"}},
		{"empty text", Event{Kind: EventMessage, Channel: "#bnc.im", Nick: "nova", Text: "  "}},
		{"part elsewhere", Event{Kind: EventPart, Channel: "#private", Nick: "nova"}},
		{"no channel", Event{Kind: EventMessage, Nick: "nova", Text: "pm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture("#bnc.im")
			assert.Zero(t, f.bc.Handle(context.Background(), f.a, tt.event))
			assert.Empty(t, f.b.lines())
			assert.Empty(t, f.c.lines())
		})
	}
}

func TestHandle_DisconnectedSessionSkipped(t *testing.T) {
	f := newFixture("#bnc.im")
	f.c.connected = false

	f.bc.Handle(context.Background(), f.a, Event{Kind: EventMessage, Channel: "#bnc.im", Nick: "nova", Text: "hi"})
	assert.Empty(t, f.c.lines())
}

func TestHandle_FailureIsolated(t *testing.T) {
	f := newFixture("#bnc.im")
	f.b.sendErr = errors.New("connection reset")
	d := newFakeSession("NetD")
	d.panicMsg = "boom"
	f.reg.sessions = append(f.reg.sessions, d)

	var n int
	require.NotPanics(t, func() {
		n = f.bc.Handle(context.Background(), f.a, Event{Kind: EventMessage, Channel: "#bnc.im", Nick: "nova", Text: "hi"})
	})
	assert.Equal(t, 1, n)
	assert.Len(t, f.c.lines(), 1)
}
