package apimodels

import (
	"github.com/techwm-project/techwm/pkg/models"
)

// AttachResourceRequest registers a resource. Kind is optional; when empty
// the server resolves it from the id and name.
type AttachResourceRequest struct {
	ID   string `json:"ID"`
	Name string `json:"Name"`
	Kind string `json:"Kind,omitempty"`
}

type AttachResourceResponse struct {
	Resource models.Resource `json:"Resource"`
}

// ListResourcesResponse lists resources in registration order.
type ListResourcesResponse struct {
	Resources []models.Resource `json:"Resources"`
}

type GetResourceResponse struct {
	Resource models.Resource `json:"Resource"`
}

type VersionResponse struct {
	BuildVersionInfo *models.BuildVersionInfo `json:"BuildVersionInfo"`
}

type HealthResponse struct {
	Status string `json:"Status"`
}
