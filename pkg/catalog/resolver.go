package catalog

import (
	"context"
	"strings"

	"github.com/techwm-project/techwm/pkg/models"
)

var DefaultGPUMarkers = []string{"gpu", "nvidia", "radeon", "rtx", "tesla"}

// NameMatchResolver classifies a resource as GPU when its id or display
// name contains one of Markers, ignoring case. Everything else is a CPU.
type NameMatchResolver struct {
	Markers []string
}

func NewNameMatchResolver() *NameMatchResolver {
	return &NameMatchResolver{Markers: DefaultGPUMarkers}
}

func (r *NameMatchResolver) Resolve(_ context.Context, id, name string) (models.ResourceKind, error) {
	haystack := strings.ToLower(id + " " + name)
	for _, marker := range r.Markers {
		if strings.Contains(haystack, strings.ToLower(marker)) {
			return models.ResourceKindGPU, nil
		}
	}
	return models.ResourceKindCPU, nil
}

// FixedKindResolver resolves every resource to the same kind.
type FixedKindResolver models.ResourceKind

func (r FixedKindResolver) Resolve(context.Context, string, string) (models.ResourceKind, error) {
	return models.ResourceKind(r), nil
}

// compile-time check whether the resolvers implement the interface
var _ KindResolver = (*NameMatchResolver)(nil)
var _ KindResolver = FixedKindResolver(models.ResourceKindCPU)
