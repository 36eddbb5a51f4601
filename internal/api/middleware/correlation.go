package middleware

import (
	"net/http"

	"github.com/rs/xid"

	"github.com/doorman-ac/doorman/internal/logging"
)

const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationIDMiddleware tags every request with a correlation ID so a
// decision can be traced from the response header through the logs to its
// audit entry (and replayed from there). A caller-supplied ID is honored.
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if id == "" {
			id = xid.New().String()
		}
		w.Header().Set(CorrelationIDHeader, id)

		ctx := logging.WithCorrelationID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
