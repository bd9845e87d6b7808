package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/techwm-project/techwm/pkg/publicapi/apimodels"
)

// RequestLogger logs one line per request at logLevel. Client errors are
// logged at least at warn level, server errors at least at error level.
func RequestLogger(logger zerolog.Logger, logLevel zerolog.Level) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			level := logLevel
			if recorder.status >= http.StatusInternalServerError && level < zerolog.ErrorLevel {
				level = zerolog.ErrorLevel
			} else if recorder.status >= http.StatusBadRequest && level < zerolog.WarnLevel {
				level = zerolog.WarnLevel
			}
			logger.WithLevel(level).
				Str("Method", r.Method).
				Str("URI", r.URL.String()).
				Str("RemoteAddr", r.RemoteAddr).
				Int("StatusCode", recorder.status).
				Int("Size", recorder.size).
				Dur("Duration", time.Since(start)).
				Str("Referer", r.Referer()).
				Str("UserAgent", r.UserAgent()).
				Str("User", r.Header.Get(apimodels.HTTPHeaderUser)).
				Str("RequestID", w.Header().Get(apimodels.HTTPHeaderRequestID)).
				Send()
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}
