package mappers

import (
	"fmt"

	"github.com/chamberirc/chamberbnc/internal/domain/request"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/persistence/models"
	"github.com/chamberirc/chamberbnc/internal/shared/biztime"
)

type RequestMapper interface {
	ToEntity(model *models.RequestModel) (*request.Request, error)
	ToModel(entity *request.Request) models.RequestModel
}

type RequestMapperImpl struct{}

func NewRequestMapper() RequestMapper {
	return &RequestMapperImpl{}
}

func (m *RequestMapperImpl) ToEntity(model *models.RequestModel) (*request.Request, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := request.ReconstructRequest(
		model.ID,
		biztime.FromUnix(model.CreatedAt),
		model.VerificationToken,
		model.OriginIdentity,
		model.Username,
		model.Email,
		model.TargetServer,
		model.TargetPort,
		model.OriginNetwork,
		model.RequestedNode,
		model.Confirmed,
		model.Approved,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct request entity: %w", err)
	}
	return entity, nil
}

func (m *RequestMapperImpl) ToModel(entity *request.Request) models.RequestModel {
	return models.RequestModel{
		ID:                entity.ID(),
		CreatedAt:         entity.CreatedAt().Unix(),
		VerificationToken: entity.VerificationToken(),
		OriginIdentity:    entity.OriginIdentity(),
		Username:          entity.Username(),
		Email:             entity.Email(),
		TargetServer:      entity.TargetServer(),
		TargetPort:        entity.TargetPort(),
		Approved:          entity.IsApproved(),
		Confirmed:         entity.IsConfirmed(),
		OriginNetwork:     entity.OriginNetwork(),
		RequestedNode:     entity.RequestedNode(),
	}
}
