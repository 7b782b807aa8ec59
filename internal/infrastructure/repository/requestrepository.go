package repository

import (
	"context"
	"fmt"

	"github.com/chamberirc/chamberbnc/internal/domain/request"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/persistence"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/persistence/mappers"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/persistence/models"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/recordstore"
	"github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/mapper"
)

type RequestRepository struct {
	table  *persistence.RequestTable
	mapper mappers.RequestMapper
}

func NewRequestRepository(table *persistence.RequestTable) *RequestRepository {
	return &RequestRepository{
		table:  table,
		mapper: mappers.NewRequestMapper(),
	}
}

func requestNotFound(id uint) error {
	return errors.NewNotFoundError(fmt.Sprintf("request #%d not found", id))
}

func (r *RequestRepository) Create(ctx context.Context, req *request.Request) error {
	return r.table.Mutate(ctx, func(tx *recordstore.Tx[models.RequestModel]) error {
		for _, m := range tx.All() {
			existing, err := r.mapper.ToEntity(&m)
			if err != nil {
				return fmt.Errorf("failed to map request %d: %w", m.ID, err)
			}
			if err := req.Conflicts(existing); err != nil {
				return err
			}
		}

		if err := req.SetID(tx.AllocateID()); err != nil {
			return err
		}
		return tx.Insert(r.mapper.ToModel(req))
	})
}

func (r *RequestRepository) GetByID(ctx context.Context, id uint) (*request.Request, error) {
	m, ok := r.table.Get(id)
	if !ok {
		return nil, requestNotFound(id)
	}
	return r.mapper.ToEntity(&m)
}

func (r *RequestRepository) Modify(ctx context.Context, id uint, fn func(*request.Request) error) (*request.Request, error) {
	var result *request.Request
	err := r.table.Mutate(ctx, func(tx *recordstore.Tx[models.RequestModel]) error {
		m, ok := tx.Get(id)
		if !ok {
			return requestNotFound(id)
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

func (r *RequestRepository) Delete(ctx context.Context, id uint, guard func(*request.Request) error) error {
	return r.table.Mutate(ctx, func(tx *recordstore.Tx[models.RequestModel]) error {
		m, ok := tx.Get(id)
		if !ok {
			return requestNotFound(id)
		}
		if guard != nil {
			entity, err := r.mapper.ToEntity(&m)
			if err != nil {
				return err
			}
			if err := guard(entity); err != nil {
				return err
			}
		}
		tx.Delete(id)
		return nil
	})
}

func (r *RequestRepository) List(ctx context.Context, filter request.RequestFilter) ([]*request.Request, error) {
	rows := r.table.Snapshot()
	entities, err := mapper.MapSliceWithError(rows, func(m models.RequestModel) (*request.Request, error) {
		return r.mapper.ToEntity(&m)
	})
	if err != nil {
		return nil, err
	}

	return mapper.Filter(entities, func(req *request.Request) bool {
		if filter.PendingOnly && !req.IsPending() {
			return false
		}
		if filter.AwaitingApprovalOnly && !req.AwaitsApproval() {
			return false
		}
		return true
	}), nil
}

func (r *RequestRepository) FindByEmail(ctx context.Context, email string) (*request.Request, error) {
	return r.findBy(func(m models.RequestModel) bool {
		return request.FoldKey(m.Email) == request.FoldKey(email)
	}, fmt.Sprintf("no request with email %s", email))
}

func (r *RequestRepository) FindByUsername(ctx context.Context, username string) (*request.Request, error) {
	return r.findBy(func(m models.RequestModel) bool {
		return request.FoldKey(m.Username) == request.FoldKey(username)
	}, fmt.Sprintf("no request with username %s", username))
}

func (r *RequestRepository) findBy(match func(models.RequestModel) bool, notFound string) (*request.Request, error) {
	for _, m := range r.table.Snapshot() {
		if match(m) {
			return r.mapper.ToEntity(&m)
		}
	}
	return nil, errors.NewNotFoundError(notFound)
}
