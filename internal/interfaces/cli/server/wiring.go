package server

import (
	"context"

	"github.com/chamberirc/chamberbnc/internal/infrastructure/irc"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/scheduler"
	"github.com/chamberirc/chamberbnc/internal/interfaces/chat"
	"github.com/chamberirc/chamberbnc/internal/interfaces/cli/bootstrap"
	"github.com/chamberirc/chamberbnc/internal/interfaces/http/handlers"
)

// ircNetworks adapts the session manager to the chat dispatcher.
type ircNetworks struct {
	*irc.Manager
}

func (n ircNetworks) NetworkList() []chat.NetworkInfo {
	states := n.Networks()
	out := make([]chat.NetworkInfo, 0, len(states))
	for _, s := range states {
		out = append(out, chat.NetworkInfo{Name: s.Name, Server: s.Server, Connected: s.Connected})
	}
	return out
}

// dispatchInbound bridges chat lines from a session into the dispatcher.
func dispatchInbound(d *chat.Dispatcher) irc.MessageHandler {
	return func(ctx context.Context, msg irc.InboundMessage) {
		d.Dispatch(ctx, chat.Inbound{
			Network: msg.Network,
			Channel: msg.Channel(),
			Nick:    msg.Nick,
			Mask:    msg.Mask,
			Text:    msg.Text,
		}, msg)
	}
}

// statusSource feeds the status endpoint.
type statusSource struct {
	irc    *irc.Manager
	stores *bootstrap.Stores
	sched  *scheduler.SchedulerManager
}

type storeView interface {
	Name() string
	Len() int
	Degraded() (bool, error)
}

func (s statusSource) Networks() []handlers.NetworkStatus {
	states := s.irc.Networks()
	out := make([]handlers.NetworkStatus, 0, len(states))
	for _, st := range states {
		out = append(out, handlers.NetworkStatus{Name: st.Name, Server: st.Server, Connected: st.Connected})
	}
	return out
}

func (s statusSource) Stores() []handlers.StoreStatus {
	views := []storeView{s.stores.Requests, s.stores.Tickets}
	out := make([]handlers.StoreStatus, 0, len(views))
	for _, v := range views {
		degraded, err := v.Degraded()
		st := handlers.StoreStatus{Name: v.Name(), Records: v.Len(), Degraded: degraded}
		if err != nil {
			st.LastError = err.Error()
		}
		out = append(out, st)
	}
	return out
}

func (s statusSource) Scheduler() handlers.SchedulerStatus {
	return handlers.SchedulerStatus{
		Running:         s.sched.IsStarted(),
		PendingDeferred: s.sched.PendingDeferred(),
		FailedDeferred:  s.sched.FailedDeferred(),
	}
}
