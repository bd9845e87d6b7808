//go:build unit || !integration

package policy

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/techwm-project/techwm/pkg/config/types"
	"github.com/techwm-project/techwm/pkg/models"
)

type PolicyTestSuite struct {
	suite.Suite
	policy *Policy
}

func TestPolicyTestSuite(t *testing.T) {
	suite.Run(t, new(PolicyTestSuite))
}

func (s *PolicyTestSuite) SetupTest() {
	s.policy = NewDefaultPolicy()
}

func kinds(cpu, gpu int) []models.ResourceKind {
	return append(
		lo.Times(cpu, func(int) models.ResourceKind { return models.ResourceKindCPU }),
		lo.Times(gpu, func(int) models.ResourceKind { return models.ResourceKindGPU })...,
	)
}

func (s *PolicyTestSuite) TestDefaultTable() {
	testCases := []struct {
		name    string
		account models.AccountType
		cpu     int
		gpu     int
		allowed bool
	}{
		{"default empty request", models.AccountTypeDefault, 0, 0, true},
		{"default two cpu", models.AccountTypeDefault, 2, 0, true},
		{"default three cpu", models.AccountTypeDefault, 3, 0, false},
		{"default one gpu", models.AccountTypeDefault, 0, 1, false},
		{"default cpu and gpu", models.AccountTypeDefault, 1, 1, false},
		{"research two cpu two gpu", models.AccountTypeResearch, 2, 2, true},
		{"research three cpu", models.AccountTypeResearch, 3, 0, false},
		{"research three gpu", models.AccountTypeResearch, 0, 3, false},
		{"research five cpu", models.AccountTypeResearch, 5, 0, false},
		{"root anything", models.AccountTypeRoot, 10, 10, true},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := s.policy.Evaluate(tc.account, kinds(tc.cpu, tc.gpu))
			if tc.allowed {
				s.NoError(err)
				return
			}
			s.ErrorAs(err, &ErrIllegalResourceRequest{})
			s.True(models.IsErrorWithCode(err, models.IllegalResourceRequest))
		})
	}
}

func (s *PolicyTestSuite) TestUnknownAccountGetsNothing() {
	s.Error(s.policy.Evaluate(models.AccountType(42), kinds(1, 0)))
	s.NoError(s.policy.Evaluate(models.AccountType(42), nil))
}

func (s *PolicyTestSuite) TestNewPolicyKeepsMissingDefaults() {
	p := NewPolicy(Table{models.AccountTypeDefault: UnlimitedLimits()})
	s.NoError(p.Evaluate(models.AccountTypeDefault, kinds(5, 5)))
	s.Error(p.Evaluate(models.AccountTypeResearch, kinds(3, 0)))
}

func (s *PolicyTestSuite) TestTableFromConfig() {
	table, err := TableFromConfig(types.PolicyConfig{
		Limits: map[string]types.LimitsConfig{
			"research": {MaxCPU: lo.ToPtr(4)},
			"Default":  {MaxGPU: lo.ToPtr(Unlimited)},
		},
	})
	s.Require().NoError(err)

	s.Equal(Limits{MaxTotal: Unlimited, MaxCPU: 4, MaxGPU: 2}, table[models.AccountTypeResearch])
	s.Equal(Limits{MaxTotal: 2, MaxCPU: Unlimited, MaxGPU: Unlimited}, table[models.AccountTypeDefault])
	s.Equal(UnlimitedLimits(), table[models.AccountTypeRoot])

	_, err = TableFromConfig(types.PolicyConfig{
		Limits: map[string]types.LimitsConfig{"superuser": {}},
	})
	s.Error(err)

	_, err = TableFromConfig(types.PolicyConfig{
		Limits: map[string]types.LimitsConfig{"root": {MaxTotal: lo.ToPtr(-2)}},
	})
	s.Error(err)
}

func (s *PolicyTestSuite) TestErrorMessage() {
	err := s.policy.Evaluate(models.AccountTypeDefault, kinds(0, 1))
	s.EqualError(err,
		"illegal resource request for Default account: requested cpu: 0, gpu: 1, allowed total: 2, cpu: unlimited, gpu: 0")
}
