package chat

import (
	"context"
	"sync"

	"github.com/chamberirc/chamberbnc/internal/application/provisioning"
	requestdto "github.com/chamberirc/chamberbnc/internal/application/request/dto"
	requestuc "github.com/chamberirc/chamberbnc/internal/application/request/usecases"
	ticketdto "github.com/chamberirc/chamberbnc/internal/application/ticket/dto"
	ticketuc "github.com/chamberirc/chamberbnc/internal/application/ticket/usecases"
)

type mockRequestService struct {
	SubmitFunc       func(ctx context.Context, cmd requestuc.SubmitRequestCommand) (*requestuc.SubmitRequestResult, error)
	ConfirmFunc      func(ctx context.Context, id uint, token string) (*requestdto.RequestDTO, error)
	ForceConfirmFunc func(ctx context.Context, id uint) (*requestdto.RequestDTO, error)
	ApproveFunc      func(ctx context.Context, cmd requestuc.ApproveRequestCommand) (*requestuc.ApproveRequestResult, error)
	DeleteFunc       func(ctx context.Context, cmd requestuc.DeleteRequestCommand) error
	GetFunc          func(ctx context.Context, id uint) (*requestdto.RequestDTO, error)
	ListPendingFunc  func(ctx context.Context) ([]*requestdto.RequestDTO, error)
	FindFunc         func(ctx context.Context, query requestuc.FindRequestQuery) (*requestdto.RequestDTO, error)
}

func (m *mockRequestService) Submit(ctx context.Context, cmd requestuc.SubmitRequestCommand) (*requestuc.SubmitRequestResult, error) {
	return m.SubmitFunc(ctx, cmd)
}

func (m *mockRequestService) Confirm(ctx context.Context, id uint, token string) (*requestdto.RequestDTO, error) {
	return m.ConfirmFunc(ctx, id, token)
}

func (m *mockRequestService) ForceConfirm(ctx context.Context, id uint) (*requestdto.RequestDTO, error) {
	return m.ForceConfirmFunc(ctx, id)
}

func (m *mockRequestService) Approve(ctx context.Context, cmd requestuc.ApproveRequestCommand) (*requestuc.ApproveRequestResult, error) {
	return m.ApproveFunc(ctx, cmd)
}

func (m *mockRequestService) Delete(ctx context.Context, cmd requestuc.DeleteRequestCommand) error {
	return m.DeleteFunc(ctx, cmd)
}

func (m *mockRequestService) Get(ctx context.Context, id uint) (*requestdto.RequestDTO, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockRequestService) ListPending(ctx context.Context) ([]*requestdto.RequestDTO, error) {
	return m.ListPendingFunc(ctx)
}

func (m *mockRequestService) Find(ctx context.Context, query requestuc.FindRequestQuery) (*requestdto.RequestDTO, error) {
	return m.FindFunc(ctx, query)
}

type mockTicketService struct {
	CreateFunc        func(ctx context.Context, cmd ticketuc.CreateTicketCommand) (*ticketdto.TicketDTO, error)
	AddReplyFunc      func(ctx context.Context, cmd ticketuc.AddReplyCommand) (*ticketdto.TicketDTO, error)
	ChangeStatusFunc  func(ctx context.Context, cmd ticketuc.ChangeStatusCommand) (*ticketdto.TicketDTO, error)
	AssignFunc        func(ctx context.Context, cmd ticketuc.AssignTicketCommand) (*ticketdto.TicketDTO, error)
	GetFunc           func(ctx context.Context, query ticketuc.GetTicketQuery) (*ticketdto.TicketDTO, error)
	ListByCreatorFunc func(ctx context.Context, creator string) ([]*ticketdto.TicketDTO, error)
	ListOpenFunc      func(ctx context.Context) ([]*ticketdto.TicketDTO, error)
}

func (m *mockTicketService) Create(ctx context.Context, cmd ticketuc.CreateTicketCommand) (*ticketdto.TicketDTO, error) {
	return m.CreateFunc(ctx, cmd)
}

func (m *mockTicketService) AddReply(ctx context.Context, cmd ticketuc.AddReplyCommand) (*ticketdto.TicketDTO, error) {
	return m.AddReplyFunc(ctx, cmd)
}

func (m *mockTicketService) ChangeStatus(ctx context.Context, cmd ticketuc.ChangeStatusCommand) (*ticketdto.TicketDTO, error) {
	return m.ChangeStatusFunc(ctx, cmd)
}

func (m *mockTicketService) Assign(ctx context.Context, cmd ticketuc.AssignTicketCommand) (*ticketdto.TicketDTO, error) {
	return m.AssignFunc(ctx, cmd)
}

func (m *mockTicketService) Get(ctx context.Context, query ticketuc.GetTicketQuery) (*ticketdto.TicketDTO, error) {
	return m.GetFunc(ctx, query)
}

func (m *mockTicketService) ListByCreator(ctx context.Context, creator string) ([]*ticketdto.TicketDTO, error) {
	return m.ListByCreatorFunc(ctx, creator)
}

func (m *mockTicketService) ListOpen(ctx context.Context) ([]*ticketdto.TicketDTO, error) {
	return m.ListOpenFunc(ctx)
}

type mockNetworks struct {
	list       []NetworkInfo
	broadcasts []string
	topics     [][2]string
}

func (m *mockNetworks) NetworkList() []NetworkInfo { return m.list }

func (m *mockNetworks) Broadcast(_ context.Context, text string) int {
	m.broadcasts = append(m.broadcasts, text)
	return len(m.list)
}

func (m *mockNetworks) SetTopic(_ context.Context, channel, topic string) int {
	m.topics = append(m.topics, [2]string{channel, topic})
	return len(m.list)
}

type staticNodes []provisioning.Node

func (n staticNodes) Nodes() []provisioning.Node { return n }

type mockLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (m *mockLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.keys = append(m.keys, key)
	return m.allow, m.err
}

type recordingReplier struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingReplier) Reply(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, text)
	return nil
}
