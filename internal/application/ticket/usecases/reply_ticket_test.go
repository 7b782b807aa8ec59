package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
	apperrors "github.com/chamberirc/chamberbnc/internal/shared/errors"
)

func TestAddReplyUseCase_CreatorAndAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.mustCreate(t, nova, "help")

	res, err := f.reply.Execute(ctx, AddReplyCommand{TicketID: id, Author: nova, Message: " still broken "})
	require.NoError(t, err)
	require.Len(t, res.Replies, 1)
	assert.Equal(t, nova.Mask, res.Replies[0].Author)
	assert.Equal(t, "still broken", res.Replies[0].Message)

	res, err = f.reply.Execute(ctx, AddReplyCommand{TicketID: id, Author: admin, Message: "looking"})
	require.NoError(t, err)
	require.Len(t, res.Replies, 2)
	assert.True(t, res.UpdatedAt.After(res.CreatedAt))

	assert.Contains(t, f.announcer.lines, "[TICKET REPLY] #1 - nova replied: still broken")
	assert.Contains(t, f.announcer.lines, "Ticket #1 replied to by root: looking")
	assert.Equal(t, []updateMail{
		{TicketID: 1, Replier: "nova", Message: "still broken"},
		{TicketID: 1, Replier: "root", Message: "looking"},
	}, f.mailer.updated)
	assert.Equal(t, []string{ticket.EventCreated, ticket.EventReplied, ticket.EventReplied}, f.auditor.names())
}

func TestAddReplyUseCase_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.mustCreate(t, nova, "help")

	_, err := f.reply.Execute(ctx, AddReplyCommand{TicketID: 42, Author: nova, Message: "hi"})
	assert.True(t, apperrors.IsNotFoundError(err))

	_, err = f.reply.Execute(ctx, AddReplyCommand{TicketID: id, Author: vega, Message: "hi"})
	assert.True(t, apperrors.IsForbiddenError(err))

	_, err = f.reply.Execute(ctx, AddReplyCommand{TicketID: id, Author: nova, Message: "a|||b"})
	assert.True(t, apperrors.IsValidationError(err))

	got, err := f.get.Execute(ctx, GetTicketQuery{TicketID: id, Viewer: nova})
	require.NoError(t, err)
	assert.Empty(t, got.Replies)
}

func TestAddReplyUseCase_ClosedAndResolvedRejectUntilReopened(t *testing.T) {
	for _, action := range []StatusAction{ActionClose, ActionResolve} {
		f := newFixture(t)
		ctx := context.Background()
		id := f.mustCreate(t, nova, "help")

		_, err := f.status.Execute(ctx, ChangeStatusCommand{TicketID: id, Action: action, Actor: admin})
		require.NoError(t, err)

		_, err = f.reply.Execute(ctx, AddReplyCommand{TicketID: id, Author: nova, Message: "hello?"})
		require.Error(t, err)
		assert.True(t, apperrors.IsStateConflictError(err))
		assert.Contains(t, err.Error(), "ticketreopen 1")

		_, err = f.status.Execute(ctx, ChangeStatusCommand{TicketID: id, Action: ActionReopen, Actor: admin})
		require.NoError(t, err)

		res, err := f.reply.Execute(ctx, AddReplyCommand{TicketID: id, Author: nova, Message: "hello?"})
		require.NoError(t, err)
		assert.Len(t, res.Replies, 1)
	}
}
