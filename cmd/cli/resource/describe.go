package resource

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/techwm-project/techwm/cmd/util"
	"github.com/techwm-project/techwm/cmd/util/flags"
	"github.com/techwm-project/techwm/cmd/util/output"
)

func NewDescribeCmd() *cobra.Command {
	outputOpts := output.OutputOptions{Format: output.YAMLFormat}
	describeCmd := &cobra.Command{
		Use:   "describe <id>",
		Short: "Show a registered resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			apiClient, err := util.GetAPIClient(ctx)
			if err != nil {
				return err
			}
			resource, err := apiClient.GetResource(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to describe resource %s: %w", args[0], err)
			}
			return output.OutputOne(cmd, resourceColumns, outputOpts, resource)
		},
	}
	describeCmd.Flags().AddFlagSet(flags.OutputFormatFlags(&outputOpts))
	return describeCmd
}
