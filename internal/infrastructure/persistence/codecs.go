// Package persistence binds the domain entities to record tables.
package persistence

import (
	"github.com/chamberirc/chamberbnc/internal/infrastructure/persistence/mappers"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/persistence/models"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/recordstore"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

type (
	RequestTable = recordstore.Table[models.RequestModel]
	TicketTable  = recordstore.Table[models.TicketModel]
)

// RequestCodec parses request rows and rejects rows that do not describe a
// valid request, such as one approved without being confirmed.
func RequestCodec() recordstore.Codec[models.RequestModel] {
	mapper := mappers.NewRequestMapper()
	return recordstore.Codec[models.RequestModel]{
		Header: models.RequestHeader,
		Encode: models.RequestModel.Row,
		Decode: func(row []string) (models.RequestModel, error) {
			m, err := models.ParseRequestRow(row)
			if err != nil {
				return m, err
			}
			if _, err := mapper.ToEntity(&m); err != nil {
				return m, err
			}
			return m, nil
		},
		ID: func(m models.RequestModel) uint { return m.ID },
	}
}

func TicketCodec() recordstore.Codec[models.TicketModel] {
	mapper := mappers.NewTicketMapper()
	return recordstore.Codec[models.TicketModel]{
		Header: models.TicketHeader,
		Encode: models.TicketModel.Row,
		Decode: func(row []string) (models.TicketModel, error) {
			m, err := models.ParseTicketRow(row)
			if err != nil {
				return m, err
			}
			if _, err := mapper.ToEntity(&m); err != nil {
				return m, err
			}
			return m, nil
		},
		ID: func(m models.TicketModel) uint { return m.ID },
	}
}

func OpenRequestTable(path string, log logger.Interface, opts ...recordstore.Option) (*RequestTable, error) {
	opts = append([]recordstore.Option{recordstore.WithName("requests")}, opts...)
	return recordstore.Open(path, RequestCodec(), log, opts...)
}

func OpenTicketTable(path string, log logger.Interface, opts ...recordstore.Option) (*TicketTable, error) {
	opts = append([]recordstore.Option{recordstore.WithName("tickets")}, opts...)
	return recordstore.Open(path, TicketCodec(), log, opts...)
}
