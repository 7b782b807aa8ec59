package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chamberirc/chamberbnc/internal/domain/request"
)

const testToken = "abcdefghijklmno"

func storedRequest(t *testing.T, id uint, confirmed, approved bool) *request.Request {
	t.Helper()
	r, err := request.ReconstructRequest(
		id,
		time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		testToken,
		"nova!nova@host.example",
		"nova",
		"nova@example.org",
		"irc.example.net",
		6667,
		"Net1",
		"",
		confirmed,
		approved,
	)
	require.NoError(t, err)
	return r
}

// modifyStored applies fn to r and hands it back, like the repository does.
func modifyStored(r *request.Request) func(ctx context.Context, id uint, fn func(*request.Request) error) (*request.Request, error) {
	return func(_ context.Context, _ uint, fn func(*request.Request) error) (*request.Request, error) {
		if err := fn(r); err != nil {
			return nil, err
		}
		return r, nil
	}
}
