package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chamberirc/chamberbnc/internal/domain/request"
	"github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

func TestConfirmRequestUseCase(t *testing.T) {
	tests := []struct {
		name      string
		confirmed bool
		cmd       ConfirmRequestCommand
		check     func(error) bool
	}{
		{name: "correct token", cmd: ConfirmRequestCommand{RequestID: 1, Token: testToken}},
		{name: "forced", cmd: ConfirmRequestCommand{RequestID: 1, Force: true}},
		{name: "wrong token", cmd: ConfirmRequestCommand{RequestID: 1, Token: "wrong"}, check: errors.IsValidationError},
		{name: "already confirmed", confirmed: true, cmd: ConfirmRequestCommand{RequestID: 1, Token: testToken}, check: errors.IsStateConflictError},
		{name: "forced twice", confirmed: true, cmd: ConfirmRequestCommand{RequestID: 1, Force: true}, check: errors.IsStateConflictError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := storedRequest(t, 1, tt.confirmed, false)
			repo := &mockRequestRepository{ModifyFunc: modifyStored(stored)}
			mailer := &mockMailer{}
			announcer := &mockAnnouncer{}
			uc := NewConfirmRequestUseCase(repo, mailer, announcer, logger.NewNopLogger())

			result, err := uc.Execute(context.Background(), tt.cmd)
			if tt.check != nil {
				require.Error(t, err)
				assert.True(t, tt.check(err), "unexpected error kind: %v", err)
				assert.Equal(t, tt.confirmed, stored.IsConfirmed())
				assert.Empty(t, mailer.waiting)
				assert.Empty(t, announcer.admin)
				return
			}

			require.NoError(t, err)
			assert.True(t, result.Confirmed)
			assert.Equal(t, []uint{1}, mailer.waiting)
			require.Len(t, announcer.admin, 1)
			assert.Contains(t, announcer.admin[0], "Request #1")
		})
	}
}

func TestConfirmRequestUseCase_NotFound(t *testing.T) {
	repo := &mockRequestRepository{
		ModifyFunc: func(ctx context.Context, id uint, fn func(*request.Request) error) (*request.Request, error) {
			return nil, errors.NewNotFoundError("request #9 not found")
		},
	}
	uc := NewConfirmRequestUseCase(repo, &mockMailer{}, &mockAnnouncer{}, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), ConfirmRequestCommand{RequestID: 9, Token: testToken})
	assert.True(t, errors.IsNotFoundError(err))
}
