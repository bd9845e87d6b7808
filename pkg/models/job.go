package models

import (
	"fmt"
	"strings"
	"time"
)

// JobStateType is the lifecycle state of a job.
type JobStateType int

const (
	JobStateUndefined JobStateType = iota // must be first

	// JobStateQueued is a job that is waiting for its resources.
	JobStateQueued

	// JobStateRunning is a job that holds all of its resources.
	JobStateRunning

	// JobStateFailed is a job that was cancelled, either queued or running.
	JobStateFailed

	// JobStateFinished is a job that completed normally.
	JobStateFinished
)

var jobStateNames = map[JobStateType]string{
	JobStateUndefined: "Undefined",
	JobStateQueued:    "Queued",
	JobStateRunning:   "Running",
	JobStateFailed:    "Failed",
	JobStateFinished:  "Finished",
}

func (s JobStateType) String() string {
	if name, ok := jobStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("JobStateType(%d)", int(s))
}

func (s JobStateType) IsUndefined() bool {
	return s == JobStateUndefined
}

// IsTerminal returns true if the given job state signals the end of the lifecycle of
// that job and that no change in the state can be expected.
func (s JobStateType) IsTerminal() bool {
	return s == JobStateFailed || s == JobStateFinished
}

func (s JobStateType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *JobStateType) UnmarshalText(text []byte) error {
	name := string(text)
	for typ := JobStateUndefined; typ <= JobStateFinished; typ++ {
		if strings.EqualFold(typ.String(), name) {
			*s = typ
			return nil
		}
	}
	return fmt.Errorf("unknown job state %q", name)
}

// Job is the point-in-time description of a submitted job.
type Job struct {
	// ID is the decimal form of the ledger counter at submission.
	ID string `json:"ID"`
	// Name is the display name chosen by the submitter.
	Name string `json:"Name"`
	// Owner is the username of the submitter.
	Owner string `json:"Owner"`
	// RequestedResources lists resource ids in request order. Duplicates are kept.
	RequestedResources []string `json:"RequestedResources"`
	// State is the current state of the job.
	State JobStateType `json:"State"`
	// AllocatedResources is empty until the job is running.
	AllocatedResources []ResourceHandle `json:"AllocatedResources,omitempty"`
	// CreateTime is the time the job id was assigned.
	CreateTime time.Time `json:"CreateTime"`
	// ModifyTime is the time of the last state change.
	ModifyTime time.Time `json:"ModifyTime"`
}

// Copy returns a deep copy of the job, so callers never share slices with the scheduler.
func (j Job) Copy() Job {
	out := j
	if j.RequestedResources != nil {
		out.RequestedResources = append([]string(nil), j.RequestedResources...)
	}
	if j.AllocatedResources != nil {
		out.AllocatedResources = append([]ResourceHandle(nil), j.AllocatedResources...)
	}
	return out
}

// IsTerminal reports whether the job has reached a final state.
func (j Job) IsTerminal() bool {
	return j.State.IsTerminal()
}
