package valueobjects

import (
	"strings"
)

type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in-progress"
	StatusClosed     TicketStatus = "closed"
	StatusResolved   TicketStatus = "resolved"
)

var validTicketStatuses = map[TicketStatus]bool{
	StatusOpen:       true,
	StatusInProgress: true,
	StatusClosed:     true,
	StatusResolved:   true,
}

// AllStatuses lists the statuses in the order they are presented to users.
var AllStatuses = []TicketStatus{
	StatusOpen,
	StatusInProgress,
	StatusClosed,
	StatusResolved,
}

// ParseTicketStatus accepts any letter case and surrounding whitespace.
// The result must still be checked with IsValid.
func ParseTicketStatus(s string) TicketStatus {
	return TicketStatus(strings.ToLower(strings.TrimSpace(s)))
}

func (ts TicketStatus) String() string {
	return string(ts)
}

func (ts TicketStatus) IsValid() bool {
	return validTicketStatuses[ts]
}

// IsActive reports whether the ticket still awaits work.
func (ts TicketStatus) IsActive() bool {
	return ts == StatusOpen || ts == StatusInProgress
}

// AcceptsReplies is false once a ticket is closed or resolved.
func (ts TicketStatus) AcceptsReplies() bool {
	return ts.IsActive()
}

// StatusNames joins the valid statuses for help and error text.
func StatusNames() string {
	names := make([]string, len(AllStatuses))
	for i, s := range AllStatuses {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}
