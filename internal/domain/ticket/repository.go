package ticket

import (
	"context"
)

type TicketRepository interface {
	// Create allocates the id and persists the new ticket.
	Create(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, ticketID uint) (*Ticket, error)
	// Modify applies fn to the stored ticket and persists the result under the
	// store lock. Nothing is written when fn returns an error.
	Modify(ctx context.Context, ticketID uint, fn func(*Ticket) error) (*Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]*Ticket, error)
}

// TicketFilter narrows List; the zero value matches every ticket.
type TicketFilter struct {
	Creator    string
	ActiveOnly bool
}
