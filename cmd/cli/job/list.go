package job

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/techwm-project/techwm/cmd/util"
	"github.com/techwm-project/techwm/cmd/util/flags"
	"github.com/techwm-project/techwm/cmd/util/output"
)

func NewListCmd() *cobra.Command {
	outputOpts := output.OutputOptions{Format: output.TableFormat}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List queued and running jobs",
		Long:  "List queued and running jobs. Jobs that ended are only available through describe.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			apiClient, err := util.GetAPIClient(ctx)
			if err != nil {
				return err
			}
			jobs, err := apiClient.ListJobs(ctx)
			if err != nil {
				return fmt.Errorf("failed to list jobs: %w", err)
			}
			return output.Output(cmd, jobColumns, outputOpts, jobs)
		},
	}
	listCmd.Flags().AddFlagSet(flags.OutputFormatFlags(&outputOpts))
	return listCmd
}
