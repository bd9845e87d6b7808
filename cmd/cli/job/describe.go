package job

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/techwm-project/techwm/cmd/util"
	"github.com/techwm-project/techwm/cmd/util/flags"
	"github.com/techwm-project/techwm/cmd/util/output"
	"github.com/techwm-project/techwm/pkg/models"
)

const (
	waitPollInterval = 500 * time.Millisecond
	waitMaxAttempts  = 120
)

type DescribeOptions struct {
	WaitStarted bool
	OutputOpts  output.OutputOptions
}

func NewDescribeCmd() *cobra.Command {
	o := &DescribeOptions{OutputOpts: output.OutputOptions{Format: output.YAMLFormat}}
	describeCmd := &cobra.Command{
		Use:   "describe <id>",
		Short: "Show a job, including jobs that already ended",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0])
		},
	}
	describeCmd.Flags().BoolVar(&o.WaitStarted, "wait-started", o.WaitStarted,
		`Poll a queued job until it leaves the queue, for up to a minute`)
	describeCmd.Flags().AddFlagSet(flags.OutputFormatFlags(&o.OutputOpts))
	return describeCmd
}

func (o *DescribeOptions) run(cmd *cobra.Command, id string) error {
	ctx := cmd.Context()
	apiClient, err := util.GetAPIClient(ctx)
	if err != nil {
		return err
	}

	var job models.Job
	if o.WaitStarted {
		job, err = apiClient.WaitForJob(ctx, id, waitPollInterval, waitMaxAttempts)
	} else {
		job, err = apiClient.GetJob(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("failed to describe job %s: %w", id, err)
	}
	return output.OutputOne(cmd, jobColumns, o.OutputOpts, job)
}
