package models

import (
	"fmt"
	"strconv"
)

// RequestHeader is the header row of the request table, in column order.
var RequestHeader = []string{
	"id",
	"created_at",
	"verification_token",
	"source",
	"username",
	"email",
	"server",
	"port",
	"approved",
	"confirmed",
	"network",
	"requested_node",
}

// RequestModel is one row of the request table.
type RequestModel struct {
	ID                uint
	CreatedAt         int64
	VerificationToken string
	OriginIdentity    string
	Username          string
	Email             string
	TargetServer      string
	TargetPort        int
	Approved          bool
	Confirmed         bool
	OriginNetwork     string
	RequestedNode     string
}

func (m RequestModel) Row() []string {
	return []string{
		strconv.FormatUint(uint64(m.ID), 10),
		strconv.FormatInt(m.CreatedAt, 10),
		m.VerificationToken,
		m.OriginIdentity,
		m.Username,
		m.Email,
		m.TargetServer,
		strconv.Itoa(m.TargetPort),
		strconv.FormatBool(m.Approved),
		strconv.FormatBool(m.Confirmed),
		m.OriginNetwork,
		m.RequestedNode,
	}
}

func ParseRequestRow(row []string) (RequestModel, error) {
	if len(row) != len(RequestHeader) {
		return RequestModel{}, fmt.Errorf("expected %d fields, got %d", len(RequestHeader), len(row))
	}

	id, err := strconv.ParseUint(row[0], 10, 64)
	if err != nil {
		return RequestModel{}, fmt.Errorf("id: %w", err)
	}
	createdAt, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return RequestModel{}, fmt.Errorf("created_at: %w", err)
	}
	port, err := strconv.Atoi(row[7])
	if err != nil {
		return RequestModel{}, fmt.Errorf("port: %w", err)
	}
	approved, err := strconv.ParseBool(row[8])
	if err != nil {
		return RequestModel{}, fmt.Errorf("approved: %w", err)
	}
	confirmed, err := strconv.ParseBool(row[9])
	if err != nil {
		return RequestModel{}, fmt.Errorf("confirmed: %w", err)
	}

	return RequestModel{
		ID:                uint(id),
		CreatedAt:         createdAt,
		VerificationToken: row[2],
		OriginIdentity:    row[3],
		Username:          row[4],
		Email:             row[5],
		TargetServer:      row[6],
		TargetPort:        port,
		Approved:          approved,
		Confirmed:         confirmed,
		OriginNetwork:     row[10],
		RequestedNode:     row[11],
	}, nil
}
