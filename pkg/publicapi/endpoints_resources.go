package publicapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/techwm-project/techwm/pkg/models"
	"github.com/techwm-project/techwm/pkg/publicapi/apimodels"
)

// DefaultListLimit is used when a list request has no limit parameter.
const DefaultListLimit = 100

func (s *Server) attachResource(
	r *http.Request, request apimodels.AttachResourceRequest) (apimodels.AttachResourceResponse, error) {
	ctx := r.Context()
	var (
		resource models.Resource
		err      error
	)
	if request.Kind == "" {
		resource, err = s.catalog.Register(ctx, request.ID, request.Name)
	} else {
		var kind models.ResourceKind
		kind, err = models.ParseResourceKind(request.Kind)
		if err != nil {
			return apimodels.AttachResourceResponse{}, models.NewBaseError("invalid resource kind").
				WithCode(models.BadRequestError).
				WithComponent(component).
				WithHint("use cpu or gpu").
				WithCause(err)
		}
		resource, err = s.catalog.RegisterWithKind(ctx, request.ID, request.Name, kind)
	}
	if err != nil {
		return apimodels.AttachResourceResponse{}, err
	}
	return apimodels.AttachResourceResponse{Resource: resource}, nil
}

// listResources returns up to ?limit= resources in registration order.
func (s *Server) listResources(r *http.Request) (apimodels.ListResourcesResponse, error) {
	ctx := r.Context()
	limit, err := parseLimit(r)
	if err != nil {
		return apimodels.ListResourcesResponse{}, err
	}

	ids, err := s.catalog.ListAttached(ctx, limit)
	if err != nil {
		return apimodels.ListResourcesResponse{}, err
	}
	resources := make([]models.Resource, 0, len(ids))
	for _, id := range ids {
		resource, err := s.catalog.Get(ctx, id)
		if err != nil {
			return apimodels.ListResourcesResponse{}, err
		}
		resources = append(resources, resource)
	}
	return apimodels.ListResourcesResponse{Resources: resources}, nil
}

func (s *Server) describeResource(r *http.Request) (apimodels.GetResourceResponse, error) {
	resource, err := s.catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return apimodels.GetResourceResponse{}, err
	}
	return apimodels.GetResourceResponse{Resource: resource}, nil
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultListLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewBaseError("invalid limit %q", raw).
			WithCode(models.BadRequestError).
			WithComponent(component).
			WithCause(err)
	}
	return limit, nil
}
