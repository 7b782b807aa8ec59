package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chamberirc/chamberbnc/internal/application/provisioning"
	"github.com/chamberirc/chamberbnc/internal/domain/request"
	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	vo "github.com/chamberirc/chamberbnc/internal/domain/ticket/valueobjects"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

var testBranding = Branding{
	Name:          "ChamberBNC",
	CommandPrefix: "!",
	Channel:       "#chamberBNC",
	Server:        "irc.chamberirc.net",
}

func testRequest(t *testing.T) *request.Request {
	t.Helper()
	r, err := request.ReconstructRequest(3, time.Unix(1700000000, 0).UTC(), "tok3n", "nova!n@host", "nova",
		"nova@example.org", "irc.example.net", 6697, "Libera", "chicago", true, false)
	require.NoError(t, err)
	return r
}

func testTicket(t *testing.T) *ticket.Ticket {
	t.Helper()
	created := time.Unix(1700000000, 0).UTC()
	tk, err := ticket.ReconstructTicket(1, "nova!n@host", "help", "it broke", vo.StatusOpen, "",
		created, created, "Libera", nil)
	require.NoError(t, err)
	return tk
}

func TestMailer_RequestMessages(t *testing.T) {
	gw := &mockGateway{}
	m := NewMailer(gw, testBranding, []string{"ops1@example.org", "ops2@example.org"}, logger.NewNopLogger())
	ctx := context.Background()
	r := testRequest(t)

	require.NoError(t, m.SendVerification(ctx, r))
	require.Len(t, gw.sent, 1)
	assert.Equal(t, "nova@example.org", gw.sent[0].To)
	assert.Contains(t, gw.sent[0].Body, "!verify 3 tok3n")
	assert.Contains(t, gw.sent[0].Body, "!delete 3 tok3n")

	require.NoError(t, m.SendRequestWaiting(ctx, r))
	require.Len(t, gw.sent, 3)
	assert.Equal(t, "ops1@example.org", gw.sent[1].To)
	assert.Equal(t, "ops2@example.org", gw.sent[2].To)
	assert.Equal(t, "ChamberBNC account request - #3 for nova", gw.sent[1].Subject)
	assert.Contains(t, gw.sent[1].Body, "Source: nova!n@host on Libera")
	assert.Contains(t, gw.sent[1].Body, "Requested server: chicago")

	node := provisioning.Node{Name: "chicago", Addr: "chi.example.net", Panel: "https://chi.example.net", PublicPort: 6667, PublicSSLPort: 6697}
	require.NoError(t, m.SendApproved(ctx, r, node, "s3cret"))
	last := gw.sent[len(gw.sent)-1]
	assert.Equal(t, "nova@example.org", last.To)
	assert.Contains(t, last.Body, "Server name: chicago")
	assert.Contains(t, last.Body, "SSL Port: 6697")
	assert.Contains(t, last.Body, "nova:s3cret")
}

func TestMailer_ReviewerFailuresAreJoined(t *testing.T) {
	gw := &mockGateway{failTo: map[string]error{"ops1@example.org": errors.New("mailbox full")}}
	m := NewMailer(gw, testBranding, []string{"ops1@example.org", "ops2@example.org"}, logger.NewNopLogger())

	tk := testTicket(t)

	err := m.SendTicketCreated(context.Background(), tk)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ops1@example.org")
	require.Len(t, gw.sent, 1)
	assert.Equal(t, "ops2@example.org", gw.sent[0].To)
	assert.Contains(t, gw.sent[0].Body, "it broke")
}

func TestMailer_NoReviewers(t *testing.T) {
	gw := &mockGateway{}
	m := NewMailer(gw, testBranding, nil, logger.NewNopLogger())
	tk := testTicket(t)

	assert.NoError(t, m.SendTicketUpdated(context.Background(), tk, "nova", "more"))
	assert.Empty(t, gw.sent)
}
