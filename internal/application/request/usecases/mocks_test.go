package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/chamberirc/chamberbnc/internal/application/provisioning"
	"github.com/chamberirc/chamberbnc/internal/domain/request"
)

type mockRequestRepository struct {
	CreateFunc         func(ctx context.Context, r *request.Request) error
	GetByIDFunc        func(ctx context.Context, id uint) (*request.Request, error)
	ModifyFunc         func(ctx context.Context, id uint, fn func(*request.Request) error) (*request.Request, error)
	DeleteFunc         func(ctx context.Context, id uint, guard func(*request.Request) error) error
	ListFunc           func(ctx context.Context, filter request.RequestFilter) ([]*request.Request, error)
	FindByEmailFunc    func(ctx context.Context, email string) (*request.Request, error)
	FindByUsernameFunc func(ctx context.Context, username string) (*request.Request, error)
}

func (m *mockRequestRepository) Create(ctx context.Context, r *request.Request) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, r)
	}
	return r.SetID(1)
}

func (m *mockRequestRepository) GetByID(ctx context.Context, id uint) (*request.Request, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockRequestRepository) Modify(ctx context.Context, id uint, fn func(*request.Request) error) (*request.Request, error) {
	if m.ModifyFunc != nil {
		return m.ModifyFunc(ctx, id, fn)
	}
	return nil, nil
}

func (m *mockRequestRepository) Delete(ctx context.Context, id uint, guard func(*request.Request) error) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, guard)
	}
	return nil
}

func (m *mockRequestRepository) List(ctx context.Context, filter request.RequestFilter) ([]*request.Request, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockRequestRepository) FindByEmail(ctx context.Context, email string) (*request.Request, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockRequestRepository) FindByUsername(ctx context.Context, username string) (*request.Request, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, username)
	}
	return nil, nil
}

type mockProvisioner struct {
	ResolveNodeFunc func(nameOrAddr string) (provisioning.Node, bool)
	ProvisionFunc   func(ctx context.Context, node provisioning.Node, acct provisioning.Account) error
}

func (m *mockProvisioner) ResolveNode(nameOrAddr string) (provisioning.Node, bool) {
	if m.ResolveNodeFunc != nil {
		return m.ResolveNodeFunc(nameOrAddr)
	}
	return provisioning.Node{Name: nameOrAddr}, true
}

func (m *mockProvisioner) Provision(ctx context.Context, node provisioning.Node, acct provisioning.Account) error {
	if m.ProvisionFunc != nil {
		return m.ProvisionFunc(ctx, node, acct)
	}
	return nil
}

type approvedMail struct {
	RequestID uint
	Node      string
	Password  string
}

type mockMailer struct {
	SendVerificationFunc   func(ctx context.Context, r *request.Request) error
	SendRequestWaitingFunc func(ctx context.Context, r *request.Request) error
	SendApprovedFunc       func(ctx context.Context, r *request.Request, node provisioning.Node, password string) error

	mu           sync.Mutex
	verification []*request.Request
	waiting      []uint
	approved     []approvedMail
}

func (m *mockMailer) SendVerification(ctx context.Context, r *request.Request) error {
	m.mu.Lock()
	m.verification = append(m.verification, r)
	m.mu.Unlock()
	if m.SendVerificationFunc != nil {
		return m.SendVerificationFunc(ctx, r)
	}
	return nil
}

func (m *mockMailer) SendRequestWaiting(ctx context.Context, r *request.Request) error {
	m.mu.Lock()
	m.waiting = append(m.waiting, r.ID())
	m.mu.Unlock()
	if m.SendRequestWaitingFunc != nil {
		return m.SendRequestWaitingFunc(ctx, r)
	}
	return nil
}

func (m *mockMailer) SendApproved(ctx context.Context, r *request.Request, node provisioning.Node, password string) error {
	m.mu.Lock()
	m.approved = append(m.approved, approvedMail{RequestID: r.ID(), Node: node.Name, Password: password})
	m.mu.Unlock()
	if m.SendApprovedFunc != nil {
		return m.SendApprovedFunc(ctx, r, node, password)
	}
	return nil
}

// lastToken returns the verification token of the most recent mail.
func (m *mockMailer) lastToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.verification) == 0 {
		return ""
	}
	return m.verification[len(m.verification)-1].VerificationToken()
}

type networkNotice struct {
	Network string
	Text    string
}

type mockAnnouncer struct {
	mu      sync.Mutex
	admin   []string
	network []networkNotice
	err     error
}

func (m *mockAnnouncer) AnnounceAdmin(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admin = append(m.admin, text)
	return m.err
}

func (m *mockAnnouncer) AnnounceNetwork(ctx context.Context, network string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.network = append(m.network, networkNotice{Network: network, Text: text})
	return m.err
}

type controlLine struct {
	Node    string
	Command string
}

type recordingControl struct {
	mu    sync.Mutex
	lines []controlLine
	err   error
}

func (c *recordingControl) SendControl(ctx context.Context, node string, command string) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, controlLine{Node: node, Command: command})
	return nil
}

// inlineDeferrer runs deferred tasks immediately.
type inlineDeferrer struct{}

func (inlineDeferrer) Defer(name string, delay time.Duration, task func(ctx context.Context) error) error {
	return task(context.Background())
}
