package publicapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/techwm-project/techwm/pkg/models"
	"github.com/techwm-project/techwm/pkg/publicapi/apimodels"
	"github.com/techwm-project/techwm/pkg/publicapi/middleware"
	"github.com/techwm-project/techwm/pkg/scheduler"
)

// Catalog is the part of the resource catalog the API exposes.
type Catalog interface {
	Register(ctx context.Context, id, name string) (models.Resource, error)
	RegisterWithKind(ctx context.Context, id, name string, kind models.ResourceKind) (models.Resource, error)
	Get(ctx context.Context, id string) (models.Resource, error)
	ListAttached(ctx context.Context, n int) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// Scheduler is the part of the scheduler the API exposes.
type Scheduler interface {
	Submit(ctx context.Context, caller models.Caller, name string, resourceIDs []string) (*scheduler.Allocation, error)
	Cancel(ctx context.Context, jobID string, username string) error
	Finish(ctx context.Context, jobID string) error
	GetInformation(ctx context.Context, jobID string) (models.Job, error)
	Stats() scheduler.Stats
	ListActive() []models.Job
}

type httpErrorFunc func(http.ResponseWriter, *http.Request) error

// handleError renders the error of fn, if any, as an APIError.
func handleError(fn httpErrorFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			middleware.WriteError(w, r, err)
		}
	})
}

// returnsJSON encodes the result of fn as the response body.
func returnsJSON[T any](fn func(*http.Request) (T, error)) httpErrorFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		result, err := fn(r)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err = json.NewEncoder(w).Encode(result); err != nil {
			// the status is already sent, so there is nothing left to report to the client
			log.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
		}
		return nil
	}
}

// expectsJSON decodes the request body into a Req before calling fn.
func expectsJSON[Req any, Res any](fn func(*http.Request, Req) (Res, error)) func(*http.Request) (Res, error) {
	return func(r *http.Request) (Res, error) {
		var request Req
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			var empty Res
			return empty, models.NewBaseError("invalid request body").
				WithCode(models.BadRequestError).
				WithComponent(component).
				WithCause(err)
		}
		return fn(r, request)
	}
}

// callerFromRequest reads the identity forwarded by the authenticating proxy.
func callerFromRequest(r *http.Request) (models.Caller, error) {
	username := r.Header.Get(apimodels.HTTPHeaderUser)
	if username == "" {
		return models.Caller{}, models.NewBaseError("missing %s header", apimodels.HTTPHeaderUser).
			WithCode(models.BadRequestError).
			WithComponent(component)
	}
	accountType, err := models.ParseAccountType(r.Header.Get(apimodels.HTTPHeaderAccountType))
	if err != nil {
		return models.Caller{}, models.NewBaseError("invalid %s header", apimodels.HTTPHeaderAccountType).
			WithCode(models.BadRequestError).
			WithComponent(component).
			WithHint("use one of default, research or root").
			WithCause(err)
	}
	return models.Caller{Username: username, AccountType: accountType}, nil
}

func errNotFound(r *http.Request) error {
	return models.NewBaseError("no endpoint for %s %s", r.Method, r.URL.Path).
		WithCode(models.NotFoundError).
		WithComponent(component)
}

const component = "APIServer"
