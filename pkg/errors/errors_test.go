package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(CodeNotFound, "order not found")

	if err.Code() != CodeNotFound {
		t.Fatalf("expected code %s, got %s", CodeNotFound, err.Code())
	}
	if err.Message() != "order not found" {
		t.Fatalf("unexpected message %q", err.Message())
	}
	if got := err.Error(); got != "NOT_FOUND: order not found" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("pq: connection refused")
	err := Wrap(CodeDependency, cause, "database unavailable")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("expected code %s, got %s", CodeDependency, err.Code())
	}
}

func TestWrapNilCause(t *testing.T) {
	err := Wrap(CodeInternal, nil, "something broke")
	if err.Unwrap() != nil {
		t.Fatal("expected nil cause")
	}
	if err.Code() != CodeInternal {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsUnwrapsThroughChains(t *testing.T) {
	inner := New(CodeStateConflict, "cannot cancel a delivered order")
	wrapped := fmt.Errorf("processing request: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error through the wrap chain")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("unexpected code %s", typed.Code())
	}

	if As(fmt.Errorf("plain error")) != nil {
		t.Fatal("expected nil for untyped error")
	}
	if As(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestHasCode(t *testing.T) {
	err := New(CodeConsistency, "deposit customer does not match order")

	if !HasCode(err, CodeConsistency) {
		t.Fatal("expected HasCode to match")
	}
	if HasCode(err, CodeConflict) {
		t.Fatal("expected HasCode to reject a different code")
	}
	if HasCode(nil, CodeInternal) {
		t.Fatal("expected HasCode to reject nil")
	}
}

func TestWithDetails(t *testing.T) {
	details := map[string]string{"status": "delivered"}
	err := New(CodeStateConflict, "transition disallowed").WithDetails(details)

	got, ok := err.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type %T", err.Details())
	}
	if got["status"] != "delivered" {
		t.Fatalf("unexpected details %v", got)
	}
}

func TestMetadataFor(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeConsistency, http.StatusUnprocessableEntity},
		{CodeIdempotency, http.StatusConflict},
		{CodeInternal, http.StatusInternalServerError},
		{CodeDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		meta := MetadataFor(tc.code)
		if meta.HTTPStatus != tc.status {
			t.Fatalf("code %s: expected status %d, got %d", tc.code, tc.status, meta.HTTPStatus)
		}
		if meta.PublicMessage == "" {
			t.Fatalf("code %s: expected a public message", tc.code)
		}
	}

	if MetadataFor(Code("UNKNOWN")).HTTPStatus != http.StatusInternalServerError {
		t.Fatal("expected unknown codes to fall back to internal metadata")
	}
}
