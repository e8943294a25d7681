package gcs

import (
	"context"
	"testing"
)

func TestObjectURL(t *testing.T) {
	t.Parallel()

	c := &Client{defaultBucket: "shop-images"}
	got := c.ObjectURL("products/123_cap.png")
	want := "https://storage.googleapis.com/shop-images/products/123_cap.png"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUploadRequiresKey(t *testing.T) {
	t.Parallel()

	c := &Client{tokenSource: &tokenSource{}}
	if _, err := c.Upload(context.Background(), "", "image/png", nil); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestServiceAccountTokenSourceRejectsBadCreds(t *testing.T) {
	t.Parallel()

	if _, err := newServiceAccountTokenSource(nil, "{}"); err == nil {
		t.Fatal("expected error for empty credentials")
	}
	if _, err := newServiceAccountTokenSource(nil, "not-json"); err == nil {
		t.Fatal("expected error for malformed json")
	}
}
