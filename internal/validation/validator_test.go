package validation_test

import (
	"net/http"
	"testing"

	apperrors "github.com/Vyacheslaf/giftcert-server/internal/errors"
	"github.com/Vyacheslaf/giftcert-server/internal/validation"
	"github.com/stretchr/testify/assert"
)

type TestRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Price    int64  `json:"price" validate:"gte=0"`
	Duration int64  `json:"duration" validate:"gt=0"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := TestRequest{
		Name:     "spa day",
		Price:    5000,
		Duration: 30,
	}

	err := v.Validate(req)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name       string
		req        TestRequest
		wantErrMsg string
	}{
		{
			name:       "missing required field",
			req:        TestRequest{Name: "", Price: 100, Duration: 7},
			wantErrMsg: "name",
		},
		{
			name:       "negative price",
			req:        TestRequest{Name: "x", Price: -1, Duration: 7},
			wantErrMsg: "price",
		},
		{
			name:       "zero duration",
			req:        TestRequest{Name: "x", Price: 100, Duration: 0},
			wantErrMsg: "duration",
		},
		{
			name:       "name too long",
			req:        TestRequest{Name: string(make([]byte, 256)), Price: 100, Duration: 7},
			wantErrMsg: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var domainErr *apperrors.Error
			if assert.True(t, apperrors.As(err, &domainErr)) {
				assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
				assert.Equal(t, apperrors.CodeValidation, domainErr.Code)

				details, ok := domainErr.Details.(map[string]string)
				if assert.True(t, ok) {
					assert.Contains(t, details, tt.wantErrMsg)
				}
			}
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(TestRequest{Name: "", Price: 100, Duration: 7})
	assert.Error(t, err)

	var domainErr *apperrors.Error
	if assert.True(t, apperrors.As(err, &domainErr)) {
		details, ok := domainErr.Details.(map[string]string)
		if assert.True(t, ok) {
			// Uses the JSON tag name "name", not the struct field name.
			assert.Contains(t, details, "name")
			assert.NotContains(t, details, "Name")
		}
	}
}
