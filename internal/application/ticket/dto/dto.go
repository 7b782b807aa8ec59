package dto

import (
	"time"

	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	"github.com/chamberirc/chamberbnc/internal/shared/mapper"
)

type TicketDTO struct {
	ID            uint
	Creator       string
	CreatorNick   string
	Subject       string
	Message       string
	Status        string
	Assignee      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	OriginNetwork string
	Replies       []ReplyDTO
}

type ReplyDTO struct {
	Author    string
	Message   string
	CreatedAt time.Time
}

func ToTicketDTO(t *ticket.Ticket) *TicketDTO {
	if t == nil {
		return nil
	}

	return &TicketDTO{
		ID:            t.ID(),
		Creator:       t.Creator(),
		CreatorNick:   t.CreatorNick(),
		Subject:       t.Subject(),
		Message:       t.Message(),
		Status:        t.Status().String(),
		Assignee:      t.Assignee(),
		CreatedAt:     t.CreatedAt(),
		UpdatedAt:     t.UpdatedAt(),
		OriginNetwork: t.OriginNetwork(),
		Replies: mapper.MapSlice(t.Replies(), func(r ticket.Reply) ReplyDTO {
			return ReplyDTO{Author: r.Author(), Message: r.Message(), CreatedAt: r.CreatedAt()}
		}),
	}
}

func ToTicketDTOs(ts []*ticket.Ticket) []*TicketDTO {
	return mapper.MapSlice(ts, ToTicketDTO)
}
