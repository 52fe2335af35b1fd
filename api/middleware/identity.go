package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/trongle278/seasondecorbe-sub000/pkg/logger"
)

const accountIDHeader = "X-Account-Id"

// Identity resolves the caller from the gateway-injected account header.
// Authentication itself happens upstream; this core only needs to know who
// is acting.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(accountIDHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			accountID, err := uuid.Parse(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithAccountID(r.Context(), accountID)
			if logg != nil {
				ctx = logg.WithAccountID(ctx, accountID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
