package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeWrongID, http.StatusNotFound},
		{CodeTagForUserNotFound, http.StatusNotFound},
		{CodeWrongOrderIDForUser, http.StatusNotFound},
		{CodeDuplicateKey, http.StatusConflict},
		{CodeInvalidSortToken, http.StatusBadRequest},
		{CodeInvalidTagName, http.StatusBadRequest},
		{CodeWrongOrderFields, http.StatusBadRequest},
		{CodeValidation, http.StatusBadRequest},
		{CodeUnsupported, http.StatusMethodNotAllowed},
		{CodeStorage, http.StatusInternalServerError},
		{Code("UNKNOWN"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := WrongIDf("gift certificate", 42)

	if !Is(err, ErrWrongID) {
		t.Error("WrongIDf should match ErrWrongID")
	}
	if Is(err, ErrDuplicateKey) {
		t.Error("WrongIDf should not match ErrDuplicateKey")
	}
}

func TestIsMatchesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("looking up certificate: %w", WrongIDf("gift certificate", 7))

	if !Is(err, ErrWrongID) {
		t.Error("wrapped error should still match ErrWrongID")
	}
}

func TestWithCause(t *testing.T) {
	cause := stderrors.New("disk I/O error")
	err := Storage(cause)

	if !Is(err, ErrStorage) {
		t.Error("Storage should match ErrStorage")
	}
	if Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", Unwrap(err), cause)
	}
	if got := err.Error(); got == "" || got == cause.Error() {
		t.Errorf("Error() = %q, want message wrapping cause", got)
	}
}

func TestInvalidSortTokenDetails(t *testing.T) {
	err := InvalidSortToken("price.asc", []string{"name", "create-date"})

	if !Is(err, ErrInvalidSortToken) {
		t.Error("InvalidSortToken should match ErrInvalidSortToken")
	}
	details, ok := err.Details.(map[string]any)
	if !ok {
		t.Fatalf("Details = %T, want map[string]any", err.Details)
	}
	if details["token"] != "price.asc" {
		t.Errorf("details token = %v, want price.asc", details["token"])
	}
}

func TestWithDetailsDoesNotMutate(t *testing.T) {
	base := Validation("bad request")
	derived := base.WithDetails(map[string]string{"name": "required"})

	if base.Details != nil {
		t.Error("WithDetails mutated the original error")
	}
	if derived.Details == nil {
		t.Error("derived error missing details")
	}
	if derived.Code != base.Code {
		t.Errorf("derived code = %s, want %s", derived.Code, base.Code)
	}
}
