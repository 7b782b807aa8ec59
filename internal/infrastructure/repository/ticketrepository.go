package repository

import (
	"context"
	"fmt"

	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/persistence"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/persistence/mappers"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/persistence/models"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/recordstore"
	"github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/mapper"
)

type TicketRepository struct {
	table  *persistence.TicketTable
	mapper mappers.TicketMapper
}

func NewTicketRepository(table *persistence.TicketTable) *TicketRepository {
	return &TicketRepository{
		table:  table,
		mapper: mappers.NewTicketMapper(),
	}
}

func ticketNotFound(id uint) error {
	return errors.NewNotFoundError(fmt.Sprintf("ticket #%d not found", id))
}

func (r *TicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	return r.table.Mutate(ctx, func(tx *recordstore.Tx[models.TicketModel]) error {
		if err := t.SetID(tx.AllocateID()); err != nil {
			return err
		}
		return tx.Insert(r.mapper.ToModel(t))
	})
}

func (r *TicketRepository) GetByID(ctx context.Context, id uint) (*ticket.Ticket, error) {
	m, ok := r.table.Get(id)
	if !ok {
		return nil, ticketNotFound(id)
	}
	return r.mapper.ToEntity(&m)
}

func (r *TicketRepository) Modify(ctx context.Context, id uint, fn func(*ticket.Ticket) error) (*ticket.Ticket, error) {
	var result *ticket.Ticket
	err := r.table.Mutate(ctx, func(tx *recordstore.Tx[models.TicketModel]) error {
		m, ok := tx.Get(id)
		if !ok {
			return ticketNotFound(id)
		}
		entity, err := r.mapper.ToEntity(&m)
		if err != nil {
			return err
		}
		if err := fn(entity); err != nil {
			return err
		}
		if err := tx.Update(r.mapper.ToModel(entity)); err != nil {
			return err
		}
		result = entity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *TicketRepository) List(ctx context.Context, filter ticket.TicketFilter) ([]*ticket.Ticket, error) {
	entities, err := mapper.MapSliceWithError(r.table.Snapshot(), func(m models.TicketModel) (*ticket.Ticket, error) {
		return r.mapper.ToEntity(&m)
	})
	if err != nil {
		return nil, err
	}

	return mapper.Filter(entities, func(t *ticket.Ticket) bool {
		if filter.Creator != "" && !t.IsVisibleTo(filter.Creator) {
			return false
		}
		if filter.ActiveOnly && !t.Status().IsActive() {
			return false
		}
		return true
	}), nil
}
