package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/techwm-project/techwm/pkg/publicapi/apimodels"
)

// WriteError renders err as an APIError with the status its code maps to.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	apiError := apimodels.FromError(err)
	apiError.RequestID = r.Header.Get(apimodels.HTTPHeaderRequestID)

	if apiError.HTTPStatusCode >= http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	} else {
		log.Ctx(r.Context()).Debug().Err(err).Str("Code", apiError.Code).Msg("request rejected")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiError.HTTPStatusCode)
	if r.Method == http.MethodHead {
		return
	}
	if responseErr := json.NewEncoder(w).Encode(apiError); responseErr != nil {
		log.Ctx(r.Context()).Error().Err(responseErr).
			Str("original_error", err.Error()).
			Msg("Failed to send error response")
	}
}
