package models

import (
	"fmt"
	"strconv"
	"strings"
)

// TicketHeader is the header row of the ticket table, in column order.
var TicketHeader = []string{
	"id",
	"creator",
	"subject",
	"message",
	"status",
	"assigned_to",
	"created_at",
	"updated_at",
	"network",
	"replies",
}

const (
	replyFieldSep = ":::"
	replySep      = "|||"
)

// TicketModel is one row of the ticket table.
type TicketModel struct {
	ID            uint
	Creator       string
	Subject       string
	Message       string
	Status        string
	AssignedTo    string
	CreatedAt     int64
	UpdatedAt     int64
	OriginNetwork string
	Replies       []ReplyModel
}

// ReplyModel is one entry of the encoded reply log.
type ReplyModel struct {
	Author    string
	Message   string
	Timestamp int64
}

func (m TicketModel) Row() []string {
	return []string{
		strconv.FormatUint(uint64(m.ID), 10),
		m.Creator,
		m.Subject,
		m.Message,
		m.Status,
		m.AssignedTo,
		strconv.FormatInt(m.CreatedAt, 10),
		strconv.FormatInt(m.UpdatedAt, 10),
		m.OriginNetwork,
		EncodeReplies(m.Replies),
	}
}

func ParseTicketRow(row []string) (TicketModel, error) {
	if len(row) != len(TicketHeader) {
		return TicketModel{}, fmt.Errorf("expected %d fields, got %d", len(TicketHeader), len(row))
	}

	id, err := strconv.ParseUint(row[0], 10, 64)
	if err != nil {
		return TicketModel{}, fmt.Errorf("id: %w", err)
	}
	createdAt, err := strconv.ParseInt(row[6], 10, 64)
	if err != nil {
		return TicketModel{}, fmt.Errorf("created_at: %w", err)
	}
	updatedAt, err := strconv.ParseInt(row[7], 10, 64)
	if err != nil {
		return TicketModel{}, fmt.Errorf("updated_at: %w", err)
	}

	return TicketModel{
		ID:            uint(id),
		Creator:       row[1],
		Subject:       row[2],
		Message:       row[3],
		Status:        row[4],
		AssignedTo:    row[5],
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
		OriginNetwork: row[8],
		Replies:       DecodeReplies(row[9]),
	}, nil
}

// EncodeReplies joins replies as author:::message:::timestamp separated by |||.
func EncodeReplies(replies []ReplyModel) string {
	parts := make([]string, len(replies))
	for i, r := range replies {
		parts[i] = r.Author + replyFieldSep + r.Message + replyFieldSep + strconv.FormatInt(r.Timestamp, 10)
	}
	return strings.Join(parts, replySep)
}

// DecodeReplies drops entries without a numeric timestamp or with a field
// separator left inside the message. The timestamp is taken from the right
// and the author from the left, so a message may begin or end with a colon.
func DecodeReplies(encoded string) []ReplyModel {
	replies := []ReplyModel{}
	if encoded == "" {
		return replies
	}

	for _, part := range strings.Split(encoded, replySep) {
		last := strings.LastIndex(part, replyFieldSep)
		if last < 0 {
			continue
		}
		ts, err := strconv.ParseInt(part[last+len(replyFieldSep):], 10, 64)
		if err != nil {
			continue
		}
		author, message, ok := strings.Cut(part[:last], replyFieldSep)
		if !ok || strings.Contains(message, replyFieldSep) {
			continue
		}
		replies = append(replies, ReplyModel{Author: author, Message: message, Timestamp: ts})
	}
	return replies
}
