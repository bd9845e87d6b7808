package policy

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/techwm-project/techwm/pkg/models"
)

// Unlimited marks a limit that is not enforced.
const Unlimited = -1

// Limits bounds how many resources a single job may request.
type Limits struct {
	MaxTotal int `json:"MaxTotal" yaml:"MaxTotal" mapstructure:"maxtotal"`
	MaxCPU   int `json:"MaxCPU" yaml:"MaxCPU" mapstructure:"maxcpu"`
	MaxGPU   int `json:"MaxGPU" yaml:"MaxGPU" mapstructure:"maxgpu"`
}

func UnlimitedLimits() Limits {
	return Limits{MaxTotal: Unlimited, MaxCPU: Unlimited, MaxGPU: Unlimited}
}

func within(count, limit int) bool {
	return limit == Unlimited || count <= limit
}

// Allows returns true when usage is within every limit.
func (l Limits) Allows(usage Usage) bool {
	return within(usage.Total(), l.MaxTotal) &&
		within(usage.CPU, l.MaxCPU) &&
		within(usage.GPU, l.MaxGPU)
}

func (l Limits) String() string {
	show := func(limit int) string {
		if limit == Unlimited {
			return "unlimited"
		}
		return fmt.Sprint(limit)
	}
	return fmt.Sprintf("total: %s, cpu: %s, gpu: %s", show(l.MaxTotal), show(l.MaxCPU), show(l.MaxGPU))
}

// Usage counts requested resources by kind. Duplicated ids count once per
// occurrence.
type Usage struct {
	CPU int
	GPU int
}

func UsageOf(kinds []models.ResourceKind) Usage {
	return Usage{
		CPU: lo.Count(kinds, models.ResourceKindCPU),
		GPU: lo.Count(kinds, models.ResourceKindGPU),
	}
}

func (u Usage) Total() int {
	return u.CPU + u.GPU
}

func (u Usage) String() string {
	return fmt.Sprintf("cpu: %d, gpu: %d", u.CPU, u.GPU)
}

// Table maps each account type to its limits.
type Table map[models.AccountType]Limits

// DefaultTable is the built-in policy:
//
//	Default:  at most 2 resources, no GPU
//	Research: at most 2 CPU and at most 2 GPU
//	Root:     unlimited
func DefaultTable() Table {
	return Table{
		models.AccountTypeDefault:  {MaxTotal: 2, MaxCPU: Unlimited, MaxGPU: 0},
		models.AccountTypeResearch: {MaxTotal: Unlimited, MaxCPU: 2, MaxGPU: 2},
		models.AccountTypeRoot:     UnlimitedLimits(),
	}
}

// Policy decides whether an account may submit a request. It is a pure
// function of its table and has no side effects.
type Policy struct {
	table Table
}

// NewPolicy builds a policy from table. Account types missing from table
// keep their default limits.
func NewPolicy(table Table) *Policy {
	merged := DefaultTable()
	for account, limits := range table {
		merged[account] = limits
	}
	return &Policy{table: merged}
}

func NewDefaultPolicy() *Policy {
	return NewPolicy(nil)
}

func (p *Policy) Limits(account models.AccountType) Limits {
	limits, ok := p.table[account]
	if !ok {
		// unknown account types get nothing
		return Limits{}
	}
	return limits
}

// Evaluate returns ErrIllegalResourceRequest when the requested kinds
// exceed the limits of account.
func (p *Policy) Evaluate(account models.AccountType, kinds []models.ResourceKind) error {
	usage := UsageOf(kinds)
	limits := p.Limits(account)
	if !limits.Allows(usage) {
		return NewErrIllegalResourceRequest(account, usage, limits)
	}
	return nil
}
