package publicapi

import (
	"net/http"

	"github.com/techwm-project/techwm/pkg/publicapi/apimodels"
	"github.com/techwm-project/techwm/pkg/version"
)

func (s *Server) healthz(*http.Request) (apimodels.HealthResponse, error) {
	return apimodels.HealthResponse{Status: "OK"}, nil
}

// version returns the build version running on the server.
func (s *Server) version(*http.Request) (apimodels.VersionResponse, error) {
	return apimodels.VersionResponse{BuildVersionInfo: version.Get()}, nil
}

// stats counts queued and running jobs and registered resources.
func (s *Server) stats(r *http.Request) (apimodels.StatsResponse, error) {
	count, err := s.catalog.Count(r.Context())
	if err != nil {
		return apimodels.StatsResponse{}, err
	}
	stats := s.scheduler.Stats()
	return apimodels.StatsResponse{
		Queued:    stats.Queued,
		Running:   stats.Running,
		Resources: count,
	}, nil
}
