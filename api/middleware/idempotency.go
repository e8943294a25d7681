package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/davidrenteria/storefront-backend/api/responses"
	pkgerrors "github.com/davidrenteria/storefront-backend/pkg/errors"
	"github.com/davidrenteria/storefront-backend/pkg/logger"
)

const maxIdempotencyKeyLen = 128

// IdempotencyKey lifts the Idempotency-Key header into the request context.
// The header is optional; when present it must be a reasonable length. The
// checkout service uses the key to make order placement replay-safe.
func IdempotencyKey(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLen {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header too long"))
				return
			}
			ctx := context.WithValue(r.Context(), ctxIdempotencyKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
