package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedConfig "github.com/chamberirc/chamberbnc/internal/shared/config"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
	"github.com/chamberirc/chamberbnc/internal/shared/services/markdown"
)

func testMailConfig() sharedConfig.MailConfig {
	return sharedConfig.MailConfig{
		Host:        "smtp.example.net",
		Port:        587,
		FromAddress: "bot@chamberirc.net",
		FromName:    "ChamberBNC",
		ReplyTo:     "admin@chamberirc.net",
	}
}

func TestSMTPGateway_Send(t *testing.T) {
	sender := &mockSender{}
	g := NewSMTPGatewayWithSender(testMailConfig(), sender, markdown.NewRenderer(), logger.NewNopLogger())

	err := g.Send(context.Background(), "a@b.com", "Hello", "Line one\nLine two\n")
	require.NoError(t, err)
	require.Len(t, sender.messages, 1)

	m := sender.messages[0]
	assert.Equal(t, []string{"a@b.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Hello"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"admin@chamberirc.net"}, m.GetHeader("Reply-To"))
	require.Len(t, m.GetHeader("Message-Id"), 1)
	assert.Regexp(t, `^<[0-9a-f-]{36}@chamberirc\.net>$`, m.GetHeader("Message-Id")[0])

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
}

func TestSMTPGateway_SendFailure(t *testing.T) {
	sender := &mockSender{err: errors.New("connection refused")}
	g := NewSMTPGatewayWithSender(testMailConfig(), sender, markdown.NewRenderer(), logger.NewNopLogger())

	err := g.Send(context.Background(), "a@b.com", "Hello", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSMTPGateway_CancelledContext(t *testing.T) {
	sender := &mockSender{}
	g := NewSMTPGatewayWithSender(testMailConfig(), sender, markdown.NewRenderer(), logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, g.Send(ctx, "a@b.com", "Hello", "body"), context.Canceled)
	assert.Empty(t, sender.messages)
}
