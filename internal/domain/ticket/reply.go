package ticket

import (
	"strings"
	"time"

	"github.com/chamberirc/chamberbnc/internal/shared/errors"
)

// Reply is one entry of a ticket's append-only thread.
type Reply struct {
	author    string
	message   string
	createdAt time.Time
}

func NewReply(author, message string, createdAt time.Time) (Reply, error) {
	if err := validateText("author", author, 0); err != nil {
		return Reply{}, err
	}
	if err := validateText("reply", message, MaxMessageLength); err != nil {
		return Reply{}, err
	}
	// The reply log finds the end of the author at the first separator.
	if strings.HasSuffix(author, ":") {
		return Reply{}, errors.NewValidationError(`author may not end with ":"`)
	}
	return Reply{author: author, message: message, createdAt: createdAt}, nil
}

// ReconstructReply rebuilds a persisted reply without validation.
func ReconstructReply(author, message string, createdAt time.Time) Reply {
	return Reply{author: author, message: message, createdAt: createdAt}
}

func (r Reply) Author() string {
	return r.author
}

func (r Reply) Message() string {
	return r.message
}

func (r Reply) CreatedAt() time.Time {
	return r.createdAt
}
