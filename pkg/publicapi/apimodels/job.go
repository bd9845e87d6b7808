package apimodels

import (
	"github.com/techwm-project/techwm/pkg/models"
)

// HTTP headers carrying the identity of the caller. The server trusts them;
// authentication happens in front of it.
const (
	HTTPHeaderUser        = "X-Techwm-User"
	HTTPHeaderAccountType = "X-Techwm-Account-Type"
	HTTPHeaderRequestID   = "X-Request-ID"
)

type SubmitJobRequest struct {
	Name      string   `json:"Name"`
	Resources []string `json:"Resources"`
}

// SubmitJobResponse carries the job as it is right after submission, or
// after the server side wait if one was requested.
type SubmitJobResponse struct {
	Job models.Job `json:"Job"`
}

type GetJobResponse struct {
	Job models.Job `json:"Job"`
}

// ListJobsResponse lists queued and running jobs ordered by id.
type ListJobsResponse struct {
	Jobs []models.Job `json:"Jobs"`
}

type StatsResponse struct {
	Queued    int `json:"Queued"`
	Running   int `json:"Running"`
	Resources int `json:"Resources"`
}
