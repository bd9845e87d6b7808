//go:build unit || !integration

package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/techwm-project/techwm/pkg/models"
)

type JobTestSuite struct {
	suite.Suite
}

func TestJobTestSuite(t *testing.T) {
	suite.Run(t, new(JobTestSuite))
}

func (suite *JobTestSuite) TestTerminalStates() {
	testCases := []struct {
		state    models.JobStateType
		terminal bool
	}{
		{models.JobStateQueued, false},
		{models.JobStateRunning, false},
		{models.JobStateFailed, true},
		{models.JobStateFinished, true},
	}
	for _, tc := range testCases {
		suite.Run(tc.state.String(), func() {
			suite.Equal(tc.terminal, tc.state.IsTerminal())
		})
	}
}

func (suite *JobTestSuite) TestJSONUsesStateNames() {
	job := models.Job{
		ID:                 "7",
		Name:               "first-job",
		Owner:              "admin",
		RequestedResources: []string{"cpu-1", "gpu-1"},
		State:              models.JobStateFinished,
		AllocatedResources: []models.ResourceHandle{
			{ID: "cpu-1", Kind: models.ResourceKindCPU},
			{ID: "gpu-1", Kind: models.ResourceKindGPU},
		},
		CreateTime: time.Unix(100, 0).UTC(),
		ModifyTime: time.Unix(200, 0).UTC(),
	}

	data, err := json.Marshal(job)
	suite.Require().NoError(err)
	suite.Contains(string(data), `"State":"Finished"`)
	suite.Contains(string(data), `"Kind":"GPU"`)

	var decoded models.Job
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.Equal(job, decoded)
}

func (suite *JobTestSuite) TestUnmarshalUnknownState() {
	var state models.JobStateType
	suite.Error(state.UnmarshalText([]byte("paused")))
}

func (suite *JobTestSuite) TestCopyDoesNotShareSlices() {
	job := models.Job{
		RequestedResources: []string{"cpu-1"},
		AllocatedResources: []models.ResourceHandle{{ID: "cpu-1", Kind: models.ResourceKindCPU}},
	}
	cp := job.Copy()
	cp.RequestedResources[0] = "changed"
	cp.AllocatedResources[0].ID = "changed"

	suite.Equal("cpu-1", job.RequestedResources[0])
	suite.Equal("cpu-1", job.AllocatedResources[0].ID)
}

func (suite *JobTestSuite) TestParseAccountType() {
	typ, err := models.ParseAccountType("research")
	suite.Require().NoError(err)
	suite.Equal(models.AccountTypeResearch, typ)

	typ, err = models.ParseAccountType("")
	suite.Require().NoError(err)
	suite.Equal(models.AccountTypeDefault, typ)

	_, err = models.ParseAccountType("superuser")
	suite.Error(err)
}

func (suite *JobTestSuite) TestParseResourceKind() {
	kind, err := models.ParseResourceKind("gpu")
	suite.Require().NoError(err)
	suite.Equal(models.ResourceKindGPU, kind)

	_, err = models.ParseResourceKind("Undefined")
	suite.Error(err)
}
