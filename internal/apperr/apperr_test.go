package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Unauthenticated("no identity"), http.StatusUnauthorized},
		{EntitlementRequired("no plan"), http.StatusPaymentRequired},
		{Validation(CodeCategoriesRequired, "empty"), http.StatusBadRequest},
		{Conflict(CodeFastExists, "exists"), http.StatusBadRequest},
		{NotFound(CodeFastNotFound, "missing"), http.StatusNotFound},
		{Persistence("save", errors.New("disk")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.err.HTTPStatus(); got != tt.want {
			t.Errorf("%s: HTTPStatus() = %d, want %d", tt.err.Code, got, tt.want)
		}
	}
}

func TestAsAndHasCode(t *testing.T) {
	wrapped := fmt.Errorf("create: %w", Conflict(CodeFastExists, "active campaign exists"))
	if !HasCode(wrapped, CodeFastExists) {
		t.Fatal("HasCode did not see through wrapping")
	}
	if got := As(wrapped).Code; got != CodeFastExists {
		t.Fatalf("As().Code = %q, want %q", got, CodeFastExists)
	}

	plain := As(errors.New("boom"))
	if plain.Code != CodeInternal || plain.HTTPStatus() != http.StatusInternalServerError {
		t.Fatalf("unexpected mapping for plain error: %+v", plain)
	}
	if As(nil) != nil {
		t.Fatal("As(nil) should be nil")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := NotFound(CodeFastNotFound, "campaign 42")
	if !errors.Is(err, NotFound(CodeFastNotFound, "other text")) {
		t.Fatal("errors.Is should match on code")
	}
	if errors.Is(err, Validation(CodeDayInvalid, "")) {
		t.Fatal("errors.Is matched a different code")
	}
}
