package job

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/techwm-project/techwm/cmd/util"
	"github.com/techwm-project/techwm/cmd/util/flags"
	"github.com/techwm-project/techwm/cmd/util/output"
	"github.com/techwm-project/techwm/pkg/publicapi/apimodels"
)

type SubmitOptions struct {
	Wait       time.Duration
	IDOnly     bool
	OutputOpts output.OutputOptions
}

func NewSubmitOptions() *SubmitOptions {
	return &SubmitOptions{
		OutputOpts: output.OutputOptions{Format: output.TableFormat},
	}
}

func NewSubmitCmd() *cobra.Command {
	o := NewSubmitOptions()
	submitCmd := &cobra.Command{
		Use:   "submit <name> <resource-id>...",
		Short: "Submit a job that needs the given resources",
		Long: `Submit a job that needs the given resources. The job runs straight away when
every resource is free and no earlier job is waiting, otherwise it is queued.
Jobs are promoted strictly in submission order.`,
		Example: `  techwm job submit build cpu-1
  techwm job submit train cpu-1 gpu-1 gpu-2 --wait 30s`,
		Args: cobra.MinimumNArgs(2), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0], args[1:])
		},
	}
	submitCmd.Flags().DurationVar(&o.Wait, "wait", o.Wait,
		`Wait up to this long for a queued job to start before returning`)
	submitCmd.Flags().BoolVar(&o.IDOnly, "id-only", o.IDOnly, `Print out only the job id`)
	submitCmd.Flags().AddFlagSet(flags.OutputFormatFlags(&o.OutputOpts))
	return submitCmd
}

func (o *SubmitOptions) run(cmd *cobra.Command, name string, resourceIDs []string) error {
	ctx := cmd.Context()
	apiClient, err := util.GetAPIClient(ctx)
	if err != nil {
		return err
	}
	job, err := apiClient.SubmitJob(ctx, apimodels.SubmitJobRequest{Name: name, Resources: resourceIDs}, o.Wait)
	if err != nil {
		return fmt.Errorf("failed to submit job %s: %w", name, err)
	}
	if o.IDOnly {
		cmd.Println(job.ID)
		return nil
	}
	return output.OutputOne(cmd, jobColumns, o.OutputOpts, job)
}
