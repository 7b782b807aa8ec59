package mappers

import (
	"fmt"

	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	vo "github.com/chamberirc/chamberbnc/internal/domain/ticket/valueobjects"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/persistence/models"
	"github.com/chamberirc/chamberbnc/internal/shared/biztime"
	"github.com/chamberirc/chamberbnc/internal/shared/mapper"
)

type TicketMapper interface {
	ToEntity(model *models.TicketModel) (*ticket.Ticket, error)
	ToModel(entity *ticket.Ticket) models.TicketModel
}

type TicketMapperImpl struct{}

func NewTicketMapper() TicketMapper {
	return &TicketMapperImpl{}
}

func (m *TicketMapperImpl) ToEntity(model *models.TicketModel) (*ticket.Ticket, error) {
	if model == nil {
		return nil, nil
	}

	replies := mapper.MapSlice(model.Replies, func(r models.ReplyModel) ticket.Reply {
		return ticket.ReconstructReply(r.Author, r.Message, biztime.FromUnix(r.Timestamp))
	})

	entity, err := ticket.ReconstructTicket(
		model.ID,
		model.Creator,
		model.Subject,
		model.Message,
		vo.TicketStatus(model.Status),
		model.AssignedTo,
		biztime.FromUnix(model.CreatedAt),
		biztime.FromUnix(model.UpdatedAt),
		model.OriginNetwork,
		replies,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct ticket entity: %w", err)
	}
	return entity, nil
}

func (m *TicketMapperImpl) ToModel(entity *ticket.Ticket) models.TicketModel {
	return models.TicketModel{
		ID:            entity.ID(),
		Creator:       entity.Creator(),
		Subject:       entity.Subject(),
		Message:       entity.Message(),
		Status:        entity.Status().String(),
		AssignedTo:    entity.Assignee(),
		CreatedAt:     entity.CreatedAt().Unix(),
		UpdatedAt:     entity.UpdatedAt().Unix(),
		OriginNetwork: entity.OriginNetwork(),
		Replies: mapper.MapSlice(entity.Replies(), func(r ticket.Reply) models.ReplyModel {
			return models.ReplyModel{
				Author:    r.Author(),
				Message:   r.Message(),
				Timestamp: r.CreatedAt().Unix(),
			}
		}),
	}
}
