package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorString(t *testing.T) {
	withInner := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: fmt.Errorf("db down")}
	assert.Equal(t, "INTERNAL_ERROR: something broke: db down", withInner.Error())

	plain := &AppError{Code: "NOT_FOUND", Message: "product not found"}
	assert.Equal(t, "NOT_FOUND: product not found", plain.Error())
}

func TestStorefrontConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"missing parameter", MissingParameter("languageId"), "MISSING_PARAMETER", http.StatusBadRequest, ErrMissingParameter},
		{"language not found", LanguageNotFound("lang-1"), "LANGUAGE_NOT_FOUND", http.StatusBadRequest, ErrLanguageNotFound},
		{"review not active", ReviewNotActive(), "REVIEW_NOT_ACTIVE", http.StatusForbidden, ErrReviewNotActive},
		{"not logged in", CustomerNotLoggedIn(), "CUSTOMER_NOT_LOGGED_IN", http.StatusForbidden, ErrCustomerNotLoggedIn},
		{"not found", NotFound("product", "p-1"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"unavailable", ServiceUnavailable("down"), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestMissingParameter_MessageNamesField(t *testing.T) {
	assert.Contains(t, MissingParameter("languageId").Message, "languageId")
}

func TestHTTPStatus_WrappedSentinels(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Wrap(ErrLanguageNotFound, "switch")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Wrap(ErrReviewNotActive, "reviews")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("load: %w", ErrNotFound)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestHTTPStatus_WrappedAppError(t *testing.T) {
	err := fmt.Errorf("save review: %w", CustomerNotLoggedIn())
	assert.Equal(t, http.StatusForbidden, HTTPStatus(err))
}
