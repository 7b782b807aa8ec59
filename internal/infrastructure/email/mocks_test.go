package email

import (
	"context"
	"sync"

	"gopkg.in/gomail.v2"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type mockGateway struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo map[string]error
}

func (g *mockGateway) Send(ctx context.Context, to, subject, body string) error {
	if err := g.failTo[to]; err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type mockSender struct {
	messages []*gomail.Message
	err      error
}

func (s *mockSender) DialAndSend(m ...*gomail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, m...)
	return nil
}
