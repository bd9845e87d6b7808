package job

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/techwm-project/techwm/cmd/util"
	"github.com/techwm-project/techwm/pkg/models"
	"github.com/techwm-project/techwm/pkg/publicapi/client"
)

func NewCancelCmd() *cobra.Command {
	return newEndCmd("cancel", "Cancel a queued or running job",
		"cancelled", (*client.APIClient).CancelJob)
}

func NewFinishCmd() *cobra.Command {
	return newEndCmd("finish", "Mark a running job as finished and free its resources",
		"finished", (*client.APIClient).FinishJob)
}

type endFunc func(apiClient *client.APIClient, ctx context.Context, id string) (models.Job, error)

func newEndCmd(use, short, verb string, end endFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			apiClient, err := util.GetAPIClient(ctx)
			if err != nil {
				return err
			}
			job, err := end(apiClient, ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to %s job %s: %w", use, args[0], err)
			}
			cmd.Printf("Job %s %s (state: %s)\n", job.ID, verb, job.State)
			return nil
		},
	}
}
