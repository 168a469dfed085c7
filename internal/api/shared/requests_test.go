package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name string `json:"name" validate:"required"`
	Age  int    `json:"age"  validate:"gte=0"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid json", body: `{"name":"test","age":30}`},
		{name: "invalid json", body: `{"name":"test",}`, wantErr: "invalid character"},
		{name: "empty body", body: "", wantErr: ErrEmptyBody.Error()},
		{name: "unknown field", body: `{"name":"test","extra":1}`, wantErr: "unknown field"},
		{name: "trailing data", body: `{"name":"a"}{"name":"b"}`, wantErr: "unexpected data"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tc.body))
			var got sampleRequest
			err := DecodeJSON(req, &got)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sampleRequest{Name: "test", Age: 30}, got)
		})
	}
}

type selfValidating struct{ called bool }

func (s *selfValidating) Validate() error {
	s.called = true
	return nil
}

func TestValidateRequest(t *testing.T) {
	require.NoError(t, ValidateRequest(&sampleRequest{Name: "x"}))

	err := ValidateRequest(&sampleRequest{Age: -1})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)

	custom := &selfValidating{}
	require.NoError(t, ValidateRequest(custom))
	assert.True(t, custom.called)
}
