package provisioning

import (
	"context"
	"sync"
	"time"
)

type sentCommand struct {
	Node    string
	Command string
}

type mockControlChannel struct {
	mu       sync.Mutex
	Sent     []sentCommand
	SendFunc func(ctx context.Context, node, command string) error
}

func (m *mockControlChannel) SendControl(ctx context.Context, node, command string) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, node, command); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentCommand{Node: node, Command: command})
	return nil
}

func (m *mockControlChannel) commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Sent))
	for i, s := range m.Sent {
		out[i] = s.Command
	}
	return out
}

type deferredTask struct {
	Name  string
	Delay time.Duration
	Task  func(ctx context.Context) error
}

type mockDeferrer struct {
	Tasks     []deferredTask
	DeferFunc func(name string, delay time.Duration) error
}

func (m *mockDeferrer) Defer(name string, delay time.Duration, task func(ctx context.Context) error) error {
	if m.DeferFunc != nil {
		if err := m.DeferFunc(name, delay); err != nil {
			return err
		}
	}
	m.Tasks = append(m.Tasks, deferredTask{Name: name, Delay: delay, Task: task})
	return nil
}

type mockAnnouncer struct {
	Notices []string
}

func (m *mockAnnouncer) AnnounceAdmin(ctx context.Context, text string) error {
	m.Notices = append(m.Notices, text)
	return nil
}
