package request

import (
	"context"
)

type RequestRepository interface {
	// Create rejects a username or email already held by a stored request,
	// then allocates the id and persists.
	Create(ctx context.Context, request *Request) error
	GetByID(ctx context.Context, id uint) (*Request, error)
	// Modify applies fn to the stored request and persists the result under
	// the store lock. Nothing is written when fn returns an error.
	Modify(ctx context.Context, id uint, fn func(*Request) error) (*Request, error)
	// Delete removes the request; guard, when non-nil, may veto the removal.
	Delete(ctx context.Context, id uint, guard func(*Request) error) error
	List(ctx context.Context, filter RequestFilter) ([]*Request, error)
	FindByEmail(ctx context.Context, email string) (*Request, error)
	FindByUsername(ctx context.Context, username string) (*Request, error)
}

// RequestFilter narrows List; the zero value matches every request.
type RequestFilter struct {
	PendingOnly          bool
	AwaitingApprovalOnly bool
}
