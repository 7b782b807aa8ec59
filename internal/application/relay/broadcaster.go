// Package relay mirrors traffic in shared channels across every connected
// network.
package relay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	sharedConfig "github.com/chamberirc/chamberbnc/internal/shared/config"
	"github.com/chamberirc/chamberbnc/internal/shared/goroutine"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

// DefaultChannel is relayed when no channel is configured.
const DefaultChannel = "#bnc.im"

// DefaultSendTimeout bounds a single delivery to one session.
const DefaultSendTimeout = 10 * time.Second

// Session is one network connection as seen by the broadcaster.
type Session interface {
	Network() string
	Nick() string
	Connected() bool
	Send(ctx context.Context, target, text string) error
}

type SessionRegistry interface {
	Sessions() []Session
}

type Broadcaster struct {
	channels    []string
	relaySet    map[string]string
	registry    SessionRegistry
	sendTimeout time.Duration
	logger      logger.Interface
}

func NewBroadcaster(channels []string, registry SessionRegistry, sendTimeout time.Duration, logger logger.Interface) *Broadcaster {
	normalized := sharedConfig.NormalizeChannels(channels)
	if len(normalized) == 0 {
		normalized = []string{DefaultChannel}
	}
	set := make(map[string]string, len(normalized))
	for _, c := range normalized {
		set[strings.ToLower(c)] = c
	}
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}

	return &Broadcaster{
		channels:    normalized,
		relaySet:    set,
		registry:    registry,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// Channels returns the normalised relay channels; the first is the default.
func (b *Broadcaster) Channels() []string {
	return append([]string(nil), b.channels...)
}

func (b *Broadcaster) DefaultChannel() string {
	return b.channels[0]
}

func (b *Broadcaster) IsRelayChannel(channel string) bool {
	_, ok := b.canonical(channel)
	return ok
}

// canonical maps channel to its configured spelling.
func (b *Broadcaster) canonical(channel string) (string, bool) {
	if channel == "" {
		return "", false
	}
	c, ok := b.relaySet[strings.ToLower(sharedConfig.NormalizeChannel(channel))]
	return c, ok
}

// Handle relays ev, observed by origin, to every other connected session on
// a different network. It returns the number of sessions the line was
// delivered to. Delivery failures are logged, never returned.
func (b *Broadcaster) Handle(ctx context.Context, origin Session, ev Event) int {
	if strings.EqualFold(ev.Nick, origin.Nick()) {
		return 0
	}

	target, text := b.format(origin.Network(), ev)
	if target == "" || strings.TrimSpace(text) == "" {
		return 0
	}

	var targets []Session
	for _, s := range b.registry.Sessions() {
		if s == origin || !s.Connected() || strings.EqualFold(s.Network(), origin.Network()) {
			continue
		}
		targets = append(targets, s)
	}
	if len(targets) == 0 {
		return 0
	}

	results := make([]bool, len(targets))
	var g errgroup.Group
	for i, s := range targets {
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(ctx, b.sendTimeout)
			defer cancel()

			err := goroutine.SafeCall(b.logger, "relay-send", func() error {
				return s.Send(sendCtx, target, text)
			})
			if err != nil {
				b.logger.Warnw("relay delivery failed",
					"from", origin.Network(), "to", s.Network(), "channel", target, "error", err)
				return nil
			}
			results[i] = true
			return nil
		})
	}
	_ = g.Wait()

	delivered := 0
	for _, ok := range results {
		if ok {
			delivered++
		}
	}
	return delivered
}

// format returns the destination channel and the relayed line. An empty
// channel means the event is not relayed.
func (b *Broadcaster) format(network string, ev Event) (string, string) {
	prefix := "[" + network + "]"

	// Quits carry no channel and go to the default relay channel.
	if ev.Kind == EventQuit {
		return b.DefaultChannel(), fmt.Sprintf("%s - %s has quit.", prefix, ev.Nick)
	}

	channel, ok := b.canonical(ev.Channel)
	if !ok {
		return "", ""
	}

	switch ev.Kind {
	case EventMessage:
		if strings.TrimSpace(ev.Text) == "" {
			return "", ""
		}
		return channel, fmt.Sprintf("%s <%s> %s", prefix, ev.Nick, ev.Text)
	case EventAction:
		if strings.TrimSpace(ev.Text) == "" {
			return "", ""
		}
		return channel, fmt.Sprintf("%s * %s %s", prefix, ev.Nick, ev.Text)
	case EventJoin:
		return channel, fmt.Sprintf("%s - %s has joined %s.", prefix, ev.Nick, channel)
	case EventPart:
		return channel, fmt.Sprintf("%s - %s has parted %s.", prefix, ev.Nick, channel)
	case EventLeave:
		return channel, fmt.Sprintf("%s - %s has left %s.", prefix, ev.Nick, channel)
	default:
		return "", ""
	}
}
