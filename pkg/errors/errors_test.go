package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAsUnwrapsThroughWrappedChains(t *testing.T) {
	t.Parallel()

	inner := New(CodeInsufficientStock, "product out of stock")
	wrapped := fmt.Errorf("placing order: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatalf("expected typed error from chain")
	}
	if typed.Code() != CodeInsufficientStock {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", meta.HTTPStatus)
	}
}

func TestInsufficientStockMapsToConflictStatus(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(CodeInsufficientStock)
	if meta.HTTPStatus != http.StatusConflict {
		t.Fatalf("expected 409, got %d", meta.HTTPStatus)
	}
	if meta.Retryable {
		t.Fatal("insufficient stock must not be retryable")
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	if !IsRetryable(New(CodeDependency, "db down")) {
		t.Fatal("dependency errors are retryable")
	}
	if IsRetryable(New(CodeConflict, "raced")) {
		t.Fatal("conflicts must not be retryable")
	}
	if IsRetryable(fmt.Errorf("plain")) {
		t.Fatal("untyped errors are not retryable")
	}
}
