package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chamberirc/chamberbnc/internal/shared/errors"
)

type sampleSection struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"min=1,max=65535"`
}

func TestValidateStruct_ReportsConfigKeys(t *testing.T) {
	err := ValidateStruct(sampleSection{Port: 0})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	appErr := errors.GetAppError(err)
	assert.Contains(t, appErr.Details, "host is required")
	assert.Contains(t, appErr.Details, "port must be at least 1")
}

func TestValidateStruct_OK(t *testing.T) {
	assert.NoError(t, ValidateStruct(sampleSection{Host: "localhost", Port: 6667}))
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "nova", false},
		{"digits after letter", "nova42", false},
		{"empty", "", true},
		{"leading digit", "4nova", true},
		{"punctuation", "no-va", true},
		{"too long", "abcdefghijklmnopqrstuvwxyzabcdefg", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.input)
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmailAndServer(t *testing.T) {
	assert.NoError(t, ValidateEmail("a@b.com"))
	assert.Error(t, ValidateEmail("not-an-address"))

	assert.NoError(t, ValidateServerAddress("irc.example.net"))
	assert.NoError(t, ValidateServerAddress("192.0.2.10"))
	assert.Error(t, ValidateServerAddress("bad host!"))

	assert.NoError(t, ValidatePort(6667))
	assert.Error(t, ValidatePort(0))
	assert.Error(t, ValidatePort(70000))
}
