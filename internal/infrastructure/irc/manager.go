package irc

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/chamberirc/chamberbnc/internal/application/relay"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/config"
	"github.com/chamberirc/chamberbnc/internal/shared/goroutine"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

// NetworkState is the connection state of one chat network.
type NetworkState struct {
	Name      string `json:"name"`
	Server    string `json:"server"`
	Connected bool   `json:"connected"`
}

// Manager owns every chat and control session of the process.
type Manager struct {
	sessions     []*Session
	byNetwork    map[string]*Session
	controls     map[string]*ControlSession
	servers      map[string]string
	adminNetwork string
	adminChannel string
	primary      string
	logger       logger.Interface

	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewManager builds one session per configured network and one control
// session per provisioning node. Nothing connects until Start.
func NewManager(cfg *config.Config, log logger.Interface) *Manager {
	m := newManager(cfg.Admin.Network, cfg.Admin.Channel, cfg.Bot.PrimaryChannel(), log)
	for _, n := range cfg.Servers {
		m.addSession(NewSession(n, cfg.Bot, cfg.ChannelsFor(n.Name), log), n.GetAddr())
	}
	for _, node := range cfg.ZNCServers {
		m.addControl(NewControlSession(node, log))
	}
	return m
}

func newManager(adminNetwork, adminChannel, primary string, log logger.Interface) *Manager {
	return &Manager{
		byNetwork:    make(map[string]*Session),
		controls:     make(map[string]*ControlSession),
		servers:      make(map[string]string),
		adminNetwork: adminNetwork,
		adminChannel: adminChannel,
		primary:      primary,
		logger:       log.Named("irc"),
	}
}

func (m *Manager) addSession(s *Session, server string) {
	m.sessions = append(m.sessions, s)
	m.byNetwork[strings.ToLower(s.Network())] = s
	m.servers[strings.ToLower(s.Network())] = server
}

func (m *Manager) addControl(c *ControlSession) {
	m.controls[strings.ToLower(c.Node())] = c
}

// SetHandlers wires the command handler and the relay into every session.
// It must be called before Start.
func (m *Manager) SetHandlers(onMessage MessageHandler, r EventHandler) {
	for _, s := range m.sessions {
		s.setHandlers(onMessage, r)
	}
}

// Sessions implements relay.SessionRegistry.
func (m *Manager) Sessions() []relay.Session {
	out := make([]relay.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

func (m *Manager) Session(network string) (*Session, bool) {
	s, ok := m.byNetwork[strings.ToLower(network)]
	return s, ok
}

// Networks lists the chat networks in configuration order.
func (m *Manager) Networks() []NetworkState {
	out := make([]NetworkState, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, NetworkState{
			Name:      s.Network(),
			Server:    m.servers[strings.ToLower(s.Network())],
			Connected: s.Connected(),
		})
	}
	return out
}

// AnnounceAdmin posts text to the admin channel.
func (m *Manager) AnnounceAdmin(ctx context.Context, text string) error {
	s, ok := m.Session(m.adminNetwork)
	if !ok {
		return fmt.Errorf("admin network %s is not configured", m.adminNetwork)
	}
	return s.Send(ctx, m.adminChannel, text)
}

// AnnounceNetwork posts text to the primary bot channel of network.
func (m *Manager) AnnounceNetwork(ctx context.Context, network, text string) error {
	s, ok := m.Session(network)
	if !ok {
		return fmt.Errorf("network %s is not configured", network)
	}
	return s.Send(ctx, m.primary, text)
}

// Broadcast posts text to the primary bot channel of every connected
// network and returns how many received it.
func (m *Manager) Broadcast(ctx context.Context, text string) int {
	return m.fanOut(ctx, "broadcast", func(s *Session) error {
		return s.Send(ctx, m.primary, text)
	})
}

// SetTopic sets the topic of channel on every connected network and returns
// how many networks accepted the command.
func (m *Manager) SetTopic(ctx context.Context, channel, topic string) int {
	return m.fanOut(ctx, "topic", func(s *Session) error {
		return s.SetTopic(ctx, channel, topic)
	})
}

func (m *Manager) fanOut(ctx context.Context, name string, fn func(s *Session) error) int {
	results := make([]bool, len(m.sessions))
	var g errgroup.Group
	for i, s := range m.sessions {
		if !s.Connected() {
			continue
		}
		g.Go(func() error {
			err := goroutine.SafeCall(m.logger, name, func() error { return fn(s) })
			if err != nil {
				m.logger.Warnw("fan-out delivery failed", "op", name, "network", s.Network(), "error", err)
				return nil
			}
			results[i] = true
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, ok := range results {
		if ok {
			n++
		}
	}
	return n
}

// SendControl implements provisioning.ControlChannel.
func (m *Manager) SendControl(ctx context.Context, node string, command string) error {
	c, ok := m.controls[strings.ToLower(node)]
	if !ok {
		return fmt.Errorf("no control session for node %s", node)
	}
	return c.SendControl(ctx, command)
}

// Start connects every session in the background. Connection failures are
// logged; a session that never connects stays disconnected.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)

	for _, s := range m.sessions {
		goroutine.SafeGo(m.logger, "irc-connect", func() {
			if err := s.Start(ctx); err != nil {
				m.logger.Errorw("network unavailable", "network", s.Network(), "error", err)
			}
		})
	}
	for _, c := range m.controls {
		goroutine.SafeGo(m.logger, "irc-control-connect", func() {
			if err := c.Start(ctx); err != nil {
				m.logger.Errorw("provisioning node unavailable", "node", c.Node(), "error", err)
			}
		})
	}
	m.logger.Infow("irc manager started", "networks", len(m.sessions), "nodes", len(m.controls))
}

// Stop quits every session and waits for the read loops to end.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.cancel = nil

	var wg sync.WaitGroup
	for _, s := range m.sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Stop()
		}()
	}
	for _, c := range m.controls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Stop()
		}()
	}
	wg.Wait()
	m.logger.Infow("irc manager stopped")
}
