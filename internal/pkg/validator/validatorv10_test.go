package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitInput struct {
	WorkflowID string `validate:"required,uuid"`
	Code       string `validate:"required,len=6,otpcode"`
}

type createInput struct {
	ChequeRef      string `validate:"required,chequeref"`
	SessionMinutes int    `validate:"omitempty,min=1,max=1440"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	tests := []struct {
		name       string
		data       any
		wantFields []string
	}{
		{
			name: "valid submit",
			data: submitInput{WorkflowID: "0195f0c4-6f7a-7cc1-9d35-3f1b2a0c9e11", Code: "004213"},
		},
		{
			name:       "code with letters",
			data:       submitInput{WorkflowID: "0195f0c4-6f7a-7cc1-9d35-3f1b2a0c9e11", Code: "12a456"},
			wantFields: []string{"code"},
		},
		{
			name:       "missing everything",
			data:       submitInput{},
			wantFields: []string{"workflow_id", "code"},
		},
		{
			name: "valid create",
			data: createInput{ChequeRef: "CHQ-000123", SessionMinutes: 30},
		},
		{
			name:       "bad cheque ref",
			data:       createInput{ChequeRef: "chq 1"},
			wantFields: []string{"cheque_ref"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.data)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verr V10ValidationError
			require.ErrorAs(t, err, &verr)
			for _, f := range tt.wantFields {
				assert.Contains(t, verr.Values(), f)
			}
		})
	}
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Code":           "code",
		"ChequeRef":      "cheque_ref",
		"WorkflowID":     "workflow_id",
		"HTTPServer":     "http_server",
		"SessionMinutes": "session_minutes",
	}

	for in, want := range tests {
		assert.Equal(t, want, snakeCase(in), in)
	}
}
