// Package reminder posts a periodic digest of work waiting on administrators.
package reminder

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/chamberirc/chamberbnc/internal/domain/request"
	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

// maxListed caps how many ids one digest line names.
const maxListed = 10

type Announcer interface {
	AnnounceAdmin(ctx context.Context, text string) error
}

type Processor struct {
	requests  request.RequestRepository
	tickets   ticket.TicketRepository
	announcer Announcer
	logger    logger.Interface
}

func NewProcessor(
	requests request.RequestRepository,
	tickets ticket.TicketRepository,
	announcer Announcer,
	logger logger.Interface,
) *Processor {
	return &Processor{
		requests:  requests,
		tickets:   tickets,
		announcer: announcer,
		logger:    logger,
	}
}

// ProcessReminders announces confirmed requests awaiting approval and
// active tickets. Nothing is announced when neither exists.
func (p *Processor) ProcessReminders(ctx context.Context) error {
	waiting, err := p.requests.List(ctx, request.RequestFilter{AwaitingApprovalOnly: true})
	if err != nil {
		return fmt.Errorf("failed to list waiting requests: %w", err)
	}
	active, err := p.tickets.List(ctx, ticket.TicketFilter{ActiveOnly: true})
	if err != nil {
		return fmt.Errorf("failed to list active tickets: %w", err)
	}

	var lines []string
	if len(waiting) > 0 {
		sort.Slice(waiting, func(i, j int) bool { return waiting[i].ID() < waiting[j].ID() })
		items := make([]string, 0, len(waiting))
		for _, r := range waiting {
			items = append(items, fmt.Sprintf("#%d %s (%s)", r.ID(), r.Username(), r.OriginNetwork()))
		}
		lines = append(lines, fmt.Sprintf("Reminder: %d request(s) awaiting approval: %s",
			len(waiting), joinCapped(items)))
	}
	if len(active) > 0 {
		sort.Slice(active, func(i, j int) bool { return active[i].ID() < active[j].ID() })
		items := make([]string, 0, len(active))
		for _, t := range active {
			item := fmt.Sprintf("#%d [%s]", t.ID(), t.Status())
			if t.Assignee() != "" {
				item += " " + t.Assignee()
			}
			items = append(items, item)
		}
		lines = append(lines, fmt.Sprintf("Reminder: %d open ticket(s): %s",
			len(active), joinCapped(items)))
	}

	if len(lines) == 0 {
		p.logger.Debugw("nothing to remind")
		return nil
	}

	for _, line := range lines {
		if err := p.announcer.AnnounceAdmin(ctx, line); err != nil {
			return fmt.Errorf("failed to announce reminder: %w", err)
		}
	}
	p.logger.Infow("reminder digest sent", "waiting_requests", len(waiting), "active_tickets", len(active))
	return nil
}

func joinCapped(items []string) string {
	if len(items) <= maxListed {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:maxListed], ", ") + fmt.Sprintf(" and %d more", len(items)-maxListed)
}
