package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  *ServiceError
		want int
	}{
		{NotFound("missing"), http.StatusNotFound},
		{InvalidInput("bad"), http.StatusBadRequest},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{Conflict("merged"), http.StatusConflict},
		{Remote("supabase", nil), http.StatusServiceUnavailable},
		{Internal("boom", nil), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := c.err.HTTPStatus(); got != c.want {
			t.Errorf("%s: status = %d, want %d", c.err.Code, got, c.want)
		}
	}
}

func TestWrapPassesThroughServiceErrors(t *testing.T) {
	orig := NotFound("profile not found")
	wrapped := Wrap(fmt.Errorf("lookup: %w", orig), "profile lookup failed")
	if wrapped.Code != CodeNotFound {
		t.Fatalf("code = %s, want %s", wrapped.Code, CodeNotFound)
	}
	if !IsNotFound(wrapped) {
		t.Fatal("IsNotFound should see through Wrap")
	}
}

func TestWithDetails(t *testing.T) {
	err := InvalidInput("spiciness out of range").WithDetails("max", 3)
	if err.Details["max"] != 3 {
		t.Fatalf("details = %v", err.Details)
	}
}
