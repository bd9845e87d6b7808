package client

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/techwm-project/techwm/pkg/models"
	"github.com/techwm-project/techwm/pkg/publicapi/apimodels"
	"github.com/techwm-project/techwm/pkg/system"
)

// Alive calls the server's health check.
func (apiClient *APIClient) Alive(ctx context.Context) (bool, error) {
	var res apimodels.HealthResponse
	if err := apiClient.doGet(ctx, "healthz", nil, &res); err != nil {
		return false, err
	}
	return res.Status == "OK", nil
}

func (apiClient *APIClient) Version(ctx context.Context) (*models.BuildVersionInfo, error) {
	var res apimodels.VersionResponse
	if err := apiClient.doGet(ctx, "version", nil, &res); err != nil {
		return nil, err
	}
	return res.BuildVersionInfo, nil
}

func (apiClient *APIClient) Stats(ctx context.Context) (apimodels.StatsResponse, error) {
	var res apimodels.StatsResponse
	err := apiClient.doGet(ctx, "stats", nil, &res)
	return res, err
}

func (apiClient *APIClient) AttachResource(
	ctx context.Context, req apimodels.AttachResourceRequest) (models.Resource, error) {
	var res apimodels.AttachResourceResponse
	if err := apiClient.doPost(ctx, "resources", nil, req, &res); err != nil {
		return models.Resource{}, err
	}
	return res.Resource, nil
}

// ListResources returns up to limit resources in registration order.
func (apiClient *APIClient) ListResources(ctx context.Context, limit int) ([]models.Resource, error) {
	var res apimodels.ListResourcesResponse
	query := url.Values{"limit": []string{strconv.Itoa(limit)}}
	if err := apiClient.doGet(ctx, "resources", query, &res); err != nil {
		return nil, err
	}
	return res.Resources, nil
}

func (apiClient *APIClient) GetResource(ctx context.Context, id string) (models.Resource, error) {
	var res apimodels.GetResourceResponse
	if err := apiClient.doGet(ctx, "resources/"+url.PathEscape(id), nil, &res); err != nil {
		return models.Resource{}, err
	}
	return res.Resource, nil
}

// SubmitJob submits a job as the client's caller. A positive wait asks the
// server to hold the response until the job runs or wait runs out.
func (apiClient *APIClient) SubmitJob(
	ctx context.Context, req apimodels.SubmitJobRequest, wait time.Duration) (models.Job, error) {
	var query url.Values
	if wait > 0 {
		query = url.Values{"wait": []string{wait.String()}}
	}
	var res apimodels.SubmitJobResponse
	if err := apiClient.doPost(ctx, "jobs", query, req, &res); err != nil {
		return models.Job{}, err
	}
	return res.Job, nil
}

// ListJobs returns the queued and running jobs.
func (apiClient *APIClient) ListJobs(ctx context.Context) ([]models.Job, error) {
	var res apimodels.ListJobsResponse
	if err := apiClient.doGet(ctx, "jobs", nil, &res); err != nil {
		return nil, err
	}
	return res.Jobs, nil
}

func (apiClient *APIClient) GetJob(ctx context.Context, id string) (models.Job, error) {
	var res apimodels.GetJobResponse
	if err := apiClient.doGet(ctx, "jobs/"+url.PathEscape(id), nil, &res); err != nil {
		return models.Job{}, err
	}
	return res.Job, nil
}

func (apiClient *APIClient) CancelJob(ctx context.Context, id string) (models.Job, error) {
	var res apimodels.GetJobResponse
	if err := apiClient.doPost(ctx, "jobs/"+url.PathEscape(id)+"/cancel", nil, nil, &res); err != nil {
		return models.Job{}, err
	}
	return res.Job, nil
}

func (apiClient *APIClient) FinishJob(ctx context.Context, id string) (models.Job, error) {
	var res apimodels.GetJobResponse
	if err := apiClient.doPost(ctx, "jobs/"+url.PathEscape(id)+"/finish", nil, nil, &res); err != nil {
		return models.Job{}, err
	}
	return res.Job, nil
}

// WaitForJob polls the job every delay until it leaves the queue, and
// returns it as last seen.
func (apiClient *APIClient) WaitForJob(
	ctx context.Context, id string, delay time.Duration, maxAttempts int) (models.Job, error) {
	var job models.Job
	waiter := &system.FunctionWaiter{
		Name:        "wait for job " + id,
		MaxAttempts: maxAttempts,
		Delay:       delay,
		Handler: func(ctx context.Context) (bool, error) {
			var err error
			job, err = apiClient.GetJob(ctx, id)
			if err != nil {
				return false, err
			}
			return job.State != models.JobStateQueued, nil
		},
	}
	err := waiter.Wait(ctx)
	return job, err
}
