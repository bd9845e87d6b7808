package catalog

import (
	"github.com/techwm-project/techwm/pkg/models"
)

// ErrResourceNotFound is returned when the resource is not registered
type ErrResourceNotFound struct {
	ResourceID string
}

func NewErrResourceNotFound(id string) ErrResourceNotFound {
	return ErrResourceNotFound{ResourceID: id}
}

func (e ErrResourceNotFound) Error() string {
	return "resource not found: " + e.ResourceID
}

func (e ErrResourceNotFound) Code() models.ErrorCode {
	return models.NotFoundError
}

// ErrResourceAlreadyExists is returned when a resource id is registered twice
type ErrResourceAlreadyExists struct {
	ResourceID string
}

func NewErrResourceAlreadyExists(id string) ErrResourceAlreadyExists {
	return ErrResourceAlreadyExists{ResourceID: id}
}

func (e ErrResourceAlreadyExists) Error() string {
	return "resource already exists: " + e.ResourceID
}

func (e ErrResourceAlreadyExists) Code() models.ErrorCode {
	return models.AlreadyExistsError
}
