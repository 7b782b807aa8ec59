package relay

import (
	"context"
	"sync"
)

type sentLine struct {
	Target string
	Text   string
}

type fakeSession struct {
	network   string
	nick      string
	connected bool
	sendErr   error
	panicMsg  string

	mu   sync.Mutex
	sent []sentLine
}

func newFakeSession(network string) *fakeSession {
	return &fakeSession{network: network, nick: "chamberbnc", connected: true}
}

func (f *fakeSession) Network() string { return f.network }
func (f *fakeSession) Nick() string    { return f.nick }
func (f *fakeSession) Connected() bool { return f.connected }

func (f *fakeSession) Send(ctx context.Context, target, text string) error {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.sendErr != nil {
		return f.sendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentLine{Target: target, Text: text})
	return nil
}

func (f *fakeSession) lines() []sentLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentLine(nil), f.sent...)
}

type fakeRegistry struct {
	sessions []*fakeSession
}

func (r *fakeRegistry) Sessions() []Session {
	out := make([]Session, len(r.sessions))
	for i, s := range r.sessions {
		out[i] = s
	}
	return out
}
