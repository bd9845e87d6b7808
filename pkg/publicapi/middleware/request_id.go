package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/techwm-project/techwm/pkg/logger"
	"github.com/techwm-project/techwm/pkg/publicapi/apimodels"
)

// RequestID reuses the caller's X-Request-ID or generates one, echoes it in
// the response and tags the request logger with it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(apimodels.HTTPHeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(apimodels.HTTPHeaderRequestID, requestID)
		// handlers behind http.TimeoutHandler see a fresh response header map
		r.Header.Set(apimodels.HTTPHeaderRequestID, requestID)

		ctx := logger.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
