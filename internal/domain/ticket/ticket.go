package ticket

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	vo "github.com/chamberirc/chamberbnc/internal/domain/ticket/valueobjects"
	"github.com/chamberirc/chamberbnc/internal/shared/biztime"
	"github.com/chamberirc/chamberbnc/internal/shared/errors"
)

const (
	MaxSubjectLength = 100
	MaxMessageLength = 1000
)

// Separators of the persisted reply log. Free text may not contain them.
const (
	ReplyFieldSeparator = ":::"
	ReplySeparator      = "|||"
)

type Ticket struct {
	id            uint
	creator       string
	subject       string
	message       string
	status        vo.TicketStatus
	assignee      string
	createdAt     time.Time
	updatedAt     time.Time
	originNetwork string
	replies       []Reply
}

func NewTicket(creator, subject, message, originNetwork string) (*Ticket, error) {
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)

	if strings.TrimSpace(creator) == "" {
		return nil, errors.NewValidationError("ticket creator is required")
	}
	if err := validateText("subject", subject, MaxSubjectLength); err != nil {
		return nil, err
	}
	if err := validateText("message", message, MaxMessageLength); err != nil {
		return nil, err
	}

	now := biztime.NowUTC()
	return &Ticket{
		creator:       creator,
		subject:       subject,
		message:       message,
		status:        vo.StatusOpen,
		createdAt:     now,
		updatedAt:     now,
		originNetwork: originNetwork,
		replies:       []Reply{},
	}, nil
}

func ReconstructTicket(
	id uint,
	creator string,
	subject string,
	message string,
	status vo.TicketStatus,
	assignee string,
	createdAt, updatedAt time.Time,
	originNetwork string,
	replies []Reply,
) (*Ticket, error) {
	if id == 0 {
		return nil, fmt.Errorf("ticket ID cannot be zero")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	if replies == nil {
		replies = []Reply{}
	}

	return &Ticket{
		id:            id,
		creator:       creator,
		subject:       subject,
		message:       message,
		status:        status,
		assignee:      assignee,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		originNetwork: originNetwork,
		replies:       replies,
	}, nil
}

func (t *Ticket) ID() uint {
	return t.id
}

func (t *Ticket) Creator() string {
	return t.creator
}

// CreatorNick is the nick part of the creator's nick!user@host mask.
func (t *Ticket) CreatorNick() string {
	nick, _, _ := strings.Cut(t.creator, "!")
	return nick
}

func (t *Ticket) Subject() string {
	return t.subject
}

func (t *Ticket) Message() string {
	return t.message
}

func (t *Ticket) Status() vo.TicketStatus {
	return t.status
}

func (t *Ticket) Assignee() string {
	return t.assignee
}

func (t *Ticket) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Ticket) UpdatedAt() time.Time {
	return t.updatedAt
}

func (t *Ticket) OriginNetwork() string {
	return t.originNetwork
}

func (t *Ticket) Replies() []Reply {
	repliesCopy := make([]Reply, len(t.replies))
	copy(repliesCopy, t.replies)
	return repliesCopy
}

func (t *Ticket) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("ticket ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("ticket ID cannot be zero")
	}
	t.id = id
	return nil
}

// IsVisibleTo reports whether identity created the ticket. Admin access is
// decided by the caller.
func (t *Ticket) IsVisibleTo(identity string) bool {
	return strings.EqualFold(t.creator, identity)
}

func (t *Ticket) AddReply(author, message string) error {
	if !t.status.AcceptsReplies() {
		return errors.NewStateConflictError(fmt.Sprintf("ticket #%d is %s and does not accept replies", t.id, t.status))
	}

	now := t.nextUpdate()
	reply, err := NewReply(author, strings.TrimSpace(message), now)
	if err != nil {
		return err
	}

	t.replies = append(t.replies, reply)
	t.updatedAt = now
	return nil
}

// ChangeStatus sets any valid status; administrators may move a ticket freely.
func (t *Ticket) ChangeStatus(status vo.TicketStatus) error {
	if !status.IsValid() {
		return errors.NewValidationError(fmt.Sprintf("invalid status %q, valid statuses: %s", status, vo.StatusNames()))
	}

	t.status = status
	t.updatedAt = t.nextUpdate()
	return nil
}

// AssignTo records the assignee and moves the ticket to in-progress.
func (t *Ticket) AssignTo(assignee string) error {
	assignee = strings.TrimSpace(assignee)
	if err := validateText("assignee", assignee, 0); err != nil {
		return err
	}

	t.assignee = assignee
	t.status = vo.StatusInProgress
	t.updatedAt = t.nextUpdate()
	return nil
}

// nextUpdate returns a timestamp strictly after the previous update, at the
// one second resolution records are stored with.
func (t *Ticket) nextUpdate() time.Time {
	now := biztime.NowUTC()
	if !now.After(t.updatedAt) {
		now = t.updatedAt.Add(time.Second)
	}
	return now
}

// validateText rejects empty text, text over max runes (when max > 0) and
// text containing a newline or a reply-log separator.
func validateText(field, s string, max int) error {
	if s == "" {
		return errors.NewValidationError(fmt.Sprintf("%s is required", field))
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return errors.NewValidationError(fmt.Sprintf("%s is too long (maximum %d characters)", field, max))
	}
	if strings.ContainsAny(s, "\r\n") {
		return errors.NewValidationError(fmt.Sprintf("%s must be a single line", field))
	}
	if strings.Contains(s, ReplyFieldSeparator) || strings.Contains(s, ReplySeparator) {
		return errors.NewValidationError(fmt.Sprintf("%s may not contain %q or %q", field, ReplyFieldSeparator, ReplySeparator))
	}
	return nil
}
