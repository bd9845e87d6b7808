package policy

import (
	"fmt"

	"github.com/techwm-project/techwm/pkg/config/types"
	"github.com/techwm-project/techwm/pkg/models"
)

// TableFromConfig applies the configured overrides on top of DefaultTable.
func TableFromConfig(cfg types.PolicyConfig) (Table, error) {
	table := DefaultTable()
	for name, override := range cfg.Limits {
		account, err := models.ParseAccountType(name)
		if err != nil {
			return nil, fmt.Errorf("invalid policy override: %w", err)
		}
		limits := table[account]
		for _, field := range []struct {
			value  *int
			target *int
			name   string
		}{
			{override.MaxTotal, &limits.MaxTotal, "MaxTotal"},
			{override.MaxCPU, &limits.MaxCPU, "MaxCPU"},
			{override.MaxGPU, &limits.MaxGPU, "MaxGPU"},
		} {
			if field.value == nil {
				continue
			}
			if *field.value < Unlimited {
				return nil, fmt.Errorf("invalid policy override: %s.%s is %d", name, field.name, *field.value)
			}
			*field.target = *field.value
		}
		table[account] = limits
	}
	return table, nil
}
