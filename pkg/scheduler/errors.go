package scheduler

import (
	"github.com/techwm-project/techwm/pkg/models"
)

// ErrInvalidJobState is returned when a job is not in the state an
// operation needs.
type ErrInvalidJobState struct {
	JobID    string
	Actual   models.JobStateType
	Expected models.JobStateType
}

func NewErrInvalidJobState(id string, actual models.JobStateType, expected models.JobStateType) ErrInvalidJobState {
	return ErrInvalidJobState{JobID: id, Actual: actual, Expected: expected}
}

func (e ErrInvalidJobState) Error() string {
	if e.Expected.IsUndefined() {
		return "job " + e.JobID + " is in unexpected state " + e.Actual.String()
	}
	return "job " + e.JobID + " is in state " + e.Actual.String() + " but expected " + e.Expected.String()
}

func (e ErrInvalidJobState) Code() models.ErrorCode {
	return models.InvalidStateError
}
