package usecases

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chamberirc/chamberbnc/internal/application/provisioning"
	"github.com/chamberirc/chamberbnc/internal/domain/request"
	"github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

func approveFixture(t *testing.T, stored *request.Request, provisioner *mockProvisioner) (*ApproveRequestUseCase, *mockMailer, *mockAnnouncer) {
	t.Helper()
	repo := &mockRequestRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*request.Request, error) {
			if id != stored.ID() {
				return nil, errors.NewNotFoundError("request not found")
			}
			return stored, nil
		},
		ModifyFunc: modifyStored(stored),
	}
	mailer := &mockMailer{}
	announcer := &mockAnnouncer{}
	return NewApproveRequestUseCase(repo, provisioner, mailer, announcer, logger.NewNopLogger()), mailer, announcer
}

func TestApproveRequestUseCase_Success(t *testing.T) {
	stored := storedRequest(t, 1, true, false)
	var provisioned provisioning.Account
	provisioner := &mockProvisioner{
		ProvisionFunc: func(ctx context.Context, node provisioning.Node, acct provisioning.Account) error {
			assert.False(t, stored.IsApproved(), "approval must be stored after provisioning")
			provisioned = acct
			return nil
		},
	}
	uc, mailer, announcer := approveFixture(t, stored, provisioner)

	result, err := uc.Execute(context.Background(), ApproveRequestCommand{RequestID: 1, Node: "chicago", Approver: "admin"})
	require.NoError(t, err)

	assert.True(t, result.Request.Approved)
	assert.Equal(t, "chicago", result.Node)
	assert.True(t, result.MailDelivered)
	assert.Equal(t, "nova", provisioned.Username)
	assert.Len(t, provisioned.Password, 16)

	require.Len(t, mailer.approved, 1)
	assert.Equal(t, provisioned.Password, mailer.approved[0].Password)
	require.Len(t, announcer.network, 1)
	assert.Equal(t, "Net1", announcer.network[0].Network)
}

func TestApproveRequestUseCase_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		id        uint
		confirmed bool
		approved  bool
		node      string
		check     func(error) bool
	}{
		{name: "unknown id", id: 2, confirmed: true, node: "chicago", check: errors.IsNotFoundError},
		{name: "not confirmed", id: 1, node: "chicago", check: errors.IsStateConflictError},
		{name: "already approved", id: 1, confirmed: true, approved: true, node: "chicago", check: errors.IsStateConflictError},
		{name: "unknown node", id: 1, confirmed: true, node: "nodeX", check: errors.IsValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := storedRequest(t, 1, tt.confirmed, tt.approved)
			provisioned := false
			provisioner := &mockProvisioner{
				ResolveNodeFunc: func(name string) (provisioning.Node, bool) {
					return provisioning.Node{Name: name}, name == "chicago"
				},
				ProvisionFunc: func(ctx context.Context, node provisioning.Node, acct provisioning.Account) error {
					provisioned = true
					return nil
				},
			}
			uc, mailer, _ := approveFixture(t, stored, provisioner)

			_, err := uc.Execute(context.Background(), ApproveRequestCommand{RequestID: tt.id, Node: tt.node})
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
			assert.False(t, provisioned)
			assert.Empty(t, mailer.approved)
			assert.Equal(t, tt.approved, stored.IsApproved())
		})
	}
}

func TestApproveRequestUseCase_ProvisioningFailureLeavesRequestUnapproved(t *testing.T) {
	stored := storedRequest(t, 1, true, false)
	provisioner := &mockProvisioner{
		ProvisionFunc: func(ctx context.Context, node provisioning.Node, acct provisioning.Account) error {
			return errors.NewProvisioningError("could not reach provisioning node chicago", stderrors.New("not connected"))
		},
	}
	uc, mailer, announcer := approveFixture(t, stored, provisioner)

	_, err := uc.Execute(context.Background(), ApproveRequestCommand{RequestID: 1, Node: "chicago"})
	require.Error(t, err)
	assert.True(t, errors.IsProvisioningError(err))
	assert.False(t, stored.IsApproved())
	assert.Empty(t, mailer.approved)
	assert.Empty(t, announcer.network)
}

func TestApproveRequestUseCase_MailFailureIsAnnounced(t *testing.T) {
	stored := storedRequest(t, 1, true, false)
	uc, mailer, announcer := approveFixture(t, stored, &mockProvisioner{})
	mailer.SendApprovedFunc = func(ctx context.Context, r *request.Request, node provisioning.Node, password string) error {
		return stderrors.New("smtp down")
	}

	result, err := uc.Execute(context.Background(), ApproveRequestCommand{RequestID: 1, Node: "chicago"})
	require.NoError(t, err)
	assert.False(t, result.MailDelivered)
	assert.True(t, stored.IsApproved())
	require.Len(t, announcer.admin, 1)
	assert.Contains(t, announcer.admin[0], "nova@example.org")
}

func TestApproveRequestUseCase_ConcurrentApprovalsProvisionOnce(t *testing.T) {
	stored := storedRequest(t, 1, true, false)
	release := make(chan struct{})
	entered := make(chan struct{}, 2)
	var mu sync.Mutex
	calls := 0
	provisioner := &mockProvisioner{
		ProvisionFunc: func(ctx context.Context, node provisioning.Node, acct provisioning.Account) error {
			mu.Lock()
			calls++
			mu.Unlock()
			entered <- struct{}{}
			<-release
			return nil
		},
	}
	uc, _, _ := approveFixture(t, stored, provisioner)

	var wg sync.WaitGroup
	errs := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := uc.Execute(context.Background(), ApproveRequestCommand{RequestID: 1, Node: "chicago"})
		errs <- err
	}()
	<-entered

	_, err := uc.Execute(context.Background(), ApproveRequestCommand{RequestID: 1, Node: "chicago"})
	assert.True(t, errors.IsStateConflictError(err))

	close(release)
	wg.Wait()
	require.NoError(t, <-errs)
	assert.Equal(t, 1, calls)
}

func TestApproveRequestUseCase_StaleReadDoesNotProvisionAgain(t *testing.T) {
	stored := storedRequest(t, 1, true, false)
	var mu sync.Mutex
	reads := 0
	firstApprovalDone := make(chan struct{})
	staleTaken := make(chan struct{})

	repo := &mockRequestRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*request.Request, error) {
			mu.Lock()
			reads++
			n := reads
			mu.Unlock()
			if n == 1 {
				// Snapshot taken before the other approval runs.
				snapshot := storedRequest(t, 1, true, stored.IsApproved())
				close(staleTaken)
				<-firstApprovalDone
				return snapshot, nil
			}
			return stored, nil
		},
		ModifyFunc: modifyStored(stored),
	}
	calls := 0
	provisioner := &mockProvisioner{
		ProvisionFunc: func(ctx context.Context, node provisioning.Node, acct provisioning.Account) error {
			mu.Lock()
			calls++
			mu.Unlock()
			return nil
		},
	}
	mailer := &mockMailer{}
	uc := NewApproveRequestUseCase(repo, provisioner, mailer, &mockAnnouncer{}, logger.NewNopLogger())

	errs := make(chan error, 1)
	go func() {
		_, err := uc.Execute(context.Background(), ApproveRequestCommand{RequestID: 1, Node: "chicago"})
		errs <- err
	}()
	<-staleTaken

	_, err := uc.Execute(context.Background(), ApproveRequestCommand{RequestID: 1, Node: "chicago"})
	require.NoError(t, err)
	close(firstApprovalDone)

	err = <-errs
	require.Error(t, err)
	assert.True(t, errors.IsStateConflictError(err), "unexpected error kind: %v", err)
	assert.Equal(t, 1, calls)
	assert.Len(t, mailer.approved, 1)
	assert.True(t, stored.IsApproved())
}
