package resource

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/techwm-project/techwm/cmd/util"
	"github.com/techwm-project/techwm/cmd/util/flags"
	"github.com/techwm-project/techwm/cmd/util/output"
	"github.com/techwm-project/techwm/pkg/publicapi"
)

type ListOptions struct {
	Limit      int
	OutputOpts output.OutputOptions
}

func NewListOptions() *ListOptions {
	return &ListOptions{
		Limit:      publicapi.DefaultListLimit,
		OutputOpts: output.OutputOptions{Format: output.TableFormat},
	}
}

func NewListCmd() *cobra.Command {
	o := NewListOptions()
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered resources in registration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd)
		},
	}
	listCmd.Flags().IntVarP(&o.Limit, "limit", "n", o.Limit, `Limit the number of resources returned`)
	listCmd.Flags().AddFlagSet(flags.OutputFormatFlags(&o.OutputOpts))
	return listCmd
}

func (o *ListOptions) run(cmd *cobra.Command) error {
	if o.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	ctx := cmd.Context()
	apiClient, err := util.GetAPIClient(ctx)
	if err != nil {
		return err
	}
	resources, err := apiClient.ListResources(ctx, o.Limit)
	if err != nil {
		return fmt.Errorf("failed to list resources: %w", err)
	}
	return output.Output(cmd, resourceColumns, o.OutputOpts, resources)
}
