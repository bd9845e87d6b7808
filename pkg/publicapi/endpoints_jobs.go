package publicapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/techwm-project/techwm/pkg/models"
	"github.com/techwm-project/techwm/pkg/publicapi/apimodels"
)

// submitJob admits a job for the calling user. With ?wait=<duration> the
// response is held until the job runs or the wait runs out, in which case
// the job is returned still queued.
func (s *Server) submitJob(r *http.Request, request apimodels.SubmitJobRequest) (apimodels.SubmitJobResponse, error) {
	ctx := r.Context()
	caller, err := callerFromRequest(r)
	if err != nil {
		return apimodels.SubmitJobResponse{}, err
	}
	wait, err := s.parseWait(r)
	if err != nil {
		return apimodels.SubmitJobResponse{}, err
	}

	allocation, err := s.scheduler.Submit(ctx, caller, request.Name, request.Resources)
	if err != nil {
		return apimodels.SubmitJobResponse{}, err
	}

	if wait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, wait)
		defer cancel()
		if _, err = allocation.Wait(waitCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return apimodels.SubmitJobResponse{}, err
		}
	}

	job, err := s.scheduler.GetInformation(ctx, allocation.ID())
	if err != nil {
		return apimodels.SubmitJobResponse{}, err
	}
	return apimodels.SubmitJobResponse{Job: job}, nil
}

func (s *Server) listJobs(*http.Request) (apimodels.ListJobsResponse, error) {
	return apimodels.ListJobsResponse{Jobs: s.scheduler.ListActive()}, nil
}

func (s *Server) describeJob(r *http.Request) (apimodels.GetJobResponse, error) {
	job, err := s.scheduler.GetInformation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return apimodels.GetJobResponse{}, err
	}
	return apimodels.GetJobResponse{Job: job}, nil
}

func (s *Server) cancelJob(r *http.Request) (apimodels.GetJobResponse, error) {
	ctx := r.Context()
	jobID := mux.Vars(r)["id"]
	caller, err := callerFromRequest(r)
	if err != nil {
		return apimodels.GetJobResponse{}, err
	}
	if err = s.scheduler.Cancel(ctx, jobID, caller.Username); err != nil {
		return apimodels.GetJobResponse{}, err
	}
	return s.describeJob(r)
}

func (s *Server) finishJob(r *http.Request) (apimodels.GetJobResponse, error) {
	if err := s.scheduler.Finish(r.Context(), mux.Vars(r)["id"]); err != nil {
		return apimodels.GetJobResponse{}, err
	}
	return s.describeJob(r)
}

func (s *Server) parseWait(r *http.Request) (time.Duration, error) {
	raw := r.URL.Query().Get("wait")
	if raw == "" {
		return 0, nil
	}
	wait, err := time.ParseDuration(raw)
	if err != nil || wait < 0 {
		return 0, models.NewBaseError("invalid wait %q", raw).
			WithCode(models.BadRequestError).
			WithComponent(component).
			WithHint("use a duration such as 10s")
	}
	if wait > s.config.MaxWait {
		log.Ctx(r.Context()).Debug().Dur("Requested", wait).Dur("Max", s.config.MaxWait).Msg("capping submit wait")
		wait = s.config.MaxWait
	}
	return wait, nil
}
