package dto

import (
	"time"

	"github.com/chamberirc/chamberbnc/internal/domain/request"
)

const (
	StatusUnverified = "awaiting verification"
	StatusWaiting    = "awaiting approval"
	StatusApproved   = "approved"
)

type RequestDTO struct {
	ID             uint
	CreatedAt      time.Time
	Username       string
	Email          string
	TargetServer   string
	TargetPort     int
	OriginNetwork  string
	OriginIdentity string
	RequestedNode  string
	Confirmed      bool
	Approved       bool
	Status         string
}

func ToRequestDTO(r *request.Request) *RequestDTO {
	if r == nil {
		return nil
	}
	status := StatusUnverified
	switch {
	case r.IsApproved():
		status = StatusApproved
	case r.IsConfirmed():
		status = StatusWaiting
	}
	return &RequestDTO{
		ID:             r.ID(),
		CreatedAt:      r.CreatedAt(),
		Username:       r.Username(),
		Email:          r.Email(),
		TargetServer:   r.TargetServer(),
		TargetPort:     r.TargetPort(),
		OriginNetwork:  r.OriginNetwork(),
		OriginIdentity: r.OriginIdentity(),
		RequestedNode:  r.RequestedNode(),
		Confirmed:      r.IsConfirmed(),
		Approved:       r.IsApproved(),
		Status:         status,
	}
}

func ToRequestDTOs(rs []*request.Request) []*RequestDTO {
	out := make([]*RequestDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToRequestDTO(r))
	}
	return out
}
