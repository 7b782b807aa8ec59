package ticket

import "time"

// Audit event names written to the ticket audit log.
const (
	EventCreated       = "ticket_created"
	EventReplied       = "ticket_replied"
	EventClosed        = "ticket_closed"
	EventResolved      = "ticket_resolved"
	EventReopened      = "ticket_reopened"
	EventAssigned      = "ticket_assigned"
	EventStatusChanged = "ticket_status_changed"
)

// AuditEvent is one ticket transition. Assignee and Status are set only
// for the events they apply to.
type AuditEvent struct {
	Time     time.Time
	Name     string
	TicketID uint
	Actor    string
	Mask     string
	Assignee string
	Status   string
}
