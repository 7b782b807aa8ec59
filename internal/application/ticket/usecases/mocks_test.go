package usecases

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/persistence"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/recordstore"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/repository"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type mockAnnouncer struct {
	mu    sync.Mutex
	lines []string
	err   error
}

func (m *mockAnnouncer) AnnounceAdmin(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, text)
	return m.err
}

type updateMail struct {
	TicketID uint
	Replier  string
	Message  string
}

type mockMailer struct {
	mu      sync.Mutex
	created []uint
	updated []updateMail
	err     error
}

func (m *mockMailer) SendTicketCreated(ctx context.Context, t *ticket.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, t.ID())
	return m.err
}

func (m *mockMailer) SendTicketUpdated(ctx context.Context, t *ticket.Ticket, replier string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, updateMail{TicketID: t.ID(), Replier: replier, Message: message})
	return m.err
}

type mockAuditor struct {
	mu     sync.Mutex
	events []ticket.AuditEvent
	err    error
}

func (m *mockAuditor) Record(ctx context.Context, event ticket.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockAuditor) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Name
	}
	return out
}

type fixture struct {
	repo      *repository.TicketRepository
	announcer *mockAnnouncer
	mailer    *mockMailer
	auditor   *mockAuditor

	create *CreateTicketUseCase
	reply  *AddReplyUseCase
	status *ChangeStatusUseCase
	assign *AssignTicketUseCase
	get    *GetTicketUseCase
	list   *ListTicketsUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNopLogger()
	table, err := persistence.OpenTicketTable(filepath.Join(t.TempDir(), "tickets.csv"), log, recordstore.WithRetryDelay(0))
	require.NoError(t, err)

	f := &fixture{
		repo:      repository.NewTicketRepository(table),
		announcer: &mockAnnouncer{},
		mailer:    &mockMailer{},
		auditor:   &mockAuditor{},
	}
	f.create = NewCreateTicketUseCase(f.repo, f.announcer, f.mailer, f.auditor, log)
	f.reply = NewAddReplyUseCase(f.repo, f.announcer, f.mailer, f.auditor, log)
	f.status = NewChangeStatusUseCase(f.repo, f.announcer, f.auditor, log)
	f.assign = NewAssignTicketUseCase(f.repo, f.announcer, f.auditor, log)
	f.get = NewGetTicketUseCase(f.repo, log)
	f.list = NewListTicketsUseCase(f.repo, log)
	return f
}

var (
	nova  = Actor{Nick: "nova", Mask: "nova!nova@host.example"}
	vega  = Actor{Nick: "vega", Mask: "vega!vega@other.example"}
	admin = Actor{Nick: "root", Mask: "root!root@staff.example", Admin: true}
)

func (f *fixture) mustCreate(t *testing.T, creator Actor, subject string) uint {
	t.Helper()
	res, err := f.create.Execute(context.Background(), CreateTicketCommand{
		Creator: creator,
		Subject: subject,
		Message: "details for " + subject,
		Network: "Net1",
	})
	require.NoError(t, err)
	return res.ID
}
