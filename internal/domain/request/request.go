// Package request models an account request: a chat user's application for a
// bouncer account, verified by mail and approved by an administrator.
package request

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/chamberirc/chamberbnc/internal/shared/biztime"
	"github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/utils"
)

// FoldKey is the case-insensitive form used to compare usernames and addresses.
func FoldKey(s string) string {
	// A Caser carries state and cannot be shared between goroutines.
	return cases.Fold().String(strings.TrimSpace(s))
}

type Request struct {
	id                uint
	createdAt         time.Time
	verificationToken string
	originIdentity    string
	username          string
	email             string
	targetServer      string
	targetPort        int
	originNetwork     string
	requestedNode     string
	confirmed         bool
	approved          bool
}

// NewRequest validates a submission. The caller supplies the verification
// token so the entity stays deterministic under test.
func NewRequest(
	username string,
	email string,
	targetServer string,
	targetPort int,
	originNetwork string,
	originIdentity string,
	requestedNode string,
	verificationToken string,
) (*Request, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	targetServer = strings.TrimSpace(targetServer)

	if err := utils.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := utils.ValidateServerAddress(targetServer); err != nil {
		return nil, err
	}
	if err := utils.ValidatePort(targetPort); err != nil {
		return nil, err
	}
	if verificationToken == "" {
		return nil, fmt.Errorf("verification token is required")
	}

	return &Request{
		createdAt:         biztime.NowUTC(),
		verificationToken: verificationToken,
		originIdentity:    originIdentity,
		username:          username,
		email:             email,
		targetServer:      targetServer,
		targetPort:        targetPort,
		originNetwork:     originNetwork,
		requestedNode:     strings.TrimSpace(requestedNode),
	}, nil
}

func ReconstructRequest(
	id uint,
	createdAt time.Time,
	verificationToken string,
	originIdentity string,
	username string,
	email string,
	targetServer string,
	targetPort int,
	originNetwork string,
	requestedNode string,
	confirmed bool,
	approved bool,
) (*Request, error) {
	if id == 0 {
		return nil, fmt.Errorf("request ID cannot be zero")
	}
	if approved && !confirmed {
		return nil, fmt.Errorf("request %d is approved but not confirmed", id)
	}

	return &Request{
		id:                id,
		createdAt:         createdAt,
		verificationToken: verificationToken,
		originIdentity:    originIdentity,
		username:          username,
		email:             email,
		targetServer:      targetServer,
		targetPort:        targetPort,
		originNetwork:     originNetwork,
		requestedNode:     requestedNode,
		confirmed:         confirmed,
		approved:          approved,
	}, nil
}

func (r *Request) ID() uint {
	return r.id
}

func (r *Request) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Request) VerificationToken() string {
	return r.verificationToken
}

func (r *Request) OriginIdentity() string {
	return r.originIdentity
}

func (r *Request) Username() string {
	return r.username
}

func (r *Request) Email() string {
	return r.email
}

func (r *Request) TargetServer() string {
	return r.targetServer
}

func (r *Request) TargetPort() int {
	return r.targetPort
}

func (r *Request) OriginNetwork() string {
	return r.originNetwork
}

func (r *Request) RequestedNode() string {
	return r.requestedNode
}

func (r *Request) IsConfirmed() bool {
	return r.confirmed
}

func (r *Request) IsApproved() bool {
	return r.approved
}

// IsPending is true until the request is approved.
func (r *Request) IsPending() bool {
	return !r.approved
}

// AwaitsApproval is true for verified requests an administrator still has to act on.
func (r *Request) AwaitsApproval() bool {
	return r.confirmed && !r.approved
}

func (r *Request) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("request ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("request ID cannot be zero")
	}
	r.id = id
	return nil
}

// Conflicts reports a ValidationError when other already holds this
// request's username or email.
func (r *Request) Conflicts(other *Request) error {
	if FoldKey(other.email) == FoldKey(r.email) {
		return errors.NewValidationError(fmt.Sprintf("email %s is already in use", r.email))
	}
	if FoldKey(other.username) == FoldKey(r.username) {
		return errors.NewValidationError(fmt.Sprintf("username %s is already taken", r.username))
	}
	return nil
}

func (r *Request) tokenMatches(supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(r.verificationToken), []byte(supplied)) == 1
}

// Confirm checks the supplied token before the current state.
func (r *Request) Confirm(suppliedToken string) error {
	if !r.tokenMatches(suppliedToken) {
		return errors.NewValidationError(fmt.Sprintf("verification code for request #%d is incorrect", r.id))
	}
	return r.ForceConfirm()
}

// ForceConfirm marks the request verified without a token.
func (r *Request) ForceConfirm() error {
	if r.confirmed {
		return errors.NewStateConflictError(fmt.Sprintf("request #%d is already verified", r.id))
	}
	r.confirmed = true
	return nil
}

// CheckApprovable reports why the request cannot be approved yet, if anything.
func (r *Request) CheckApprovable() error {
	if r.approved {
		return errors.NewStateConflictError(fmt.Sprintf("request #%d is already approved", r.id))
	}
	if !r.confirmed {
		return errors.NewStateConflictError(fmt.Sprintf("request #%d has not been verified", r.id))
	}
	return nil
}

func (r *Request) Approve() error {
	if err := r.CheckApprovable(); err != nil {
		return err
	}
	r.approved = true
	return nil
}

// CheckSelfDelete allows a requester holding the token to withdraw a request
// that has not been approved yet.
func (r *Request) CheckSelfDelete(suppliedToken string) error {
	if !r.tokenMatches(suppliedToken) {
		return errors.NewValidationError(fmt.Sprintf("verification code for request #%d is incorrect", r.id))
	}
	if r.approved {
		return errors.NewStateConflictError(fmt.Sprintf("request #%d is already approved and can only be removed by an administrator", r.id))
	}
	return nil
}
