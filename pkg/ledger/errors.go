package ledger

import (
	"github.com/techwm-project/techwm/pkg/models"
)

// ErrJobNotFound is returned when the ledger holds no record for a job
type ErrJobNotFound struct {
	JobID string
}

func NewErrJobNotFound(id string) ErrJobNotFound {
	return ErrJobNotFound{JobID: id}
}

func (e ErrJobNotFound) Error() string {
	return "job not found: " + e.JobID
}

func (e ErrJobNotFound) Code() models.ErrorCode {
	return models.NotFoundError
}

// ErrJobAlreadyExists is returned when a terminal job is recorded twice
type ErrJobAlreadyExists struct {
	JobID string
}

func NewErrJobAlreadyExists(id string) ErrJobAlreadyExists {
	return ErrJobAlreadyExists{JobID: id}
}

func (e ErrJobAlreadyExists) Error() string {
	return "job already exists: " + e.JobID
}

func (e ErrJobAlreadyExists) Code() models.ErrorCode {
	return models.AlreadyExistsError
}

// ErrJobNotTerminal is returned when a job that is still queued or running
// is appended.
type ErrJobNotTerminal struct {
	JobID string
	State models.JobStateType
}

func NewErrJobNotTerminal(id string, state models.JobStateType) ErrJobNotTerminal {
	return ErrJobNotTerminal{JobID: id, State: state}
}

func (e ErrJobNotTerminal) Error() string {
	return "job " + e.JobID + " is in non terminal state " + e.State.String()
}

func (e ErrJobNotTerminal) Code() models.ErrorCode {
	return models.InvalidStateError
}
