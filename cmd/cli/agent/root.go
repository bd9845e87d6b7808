package agent

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/techwm-project/techwm/cmd/util"
	"github.com/techwm-project/techwm/cmd/util/flags"
	"github.com/techwm-project/techwm/cmd/util/output"
	"github.com/techwm-project/techwm/pkg/publicapi/apimodels"
)

func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Commands to query the server",
	}
	cmd.AddCommand(NewAliveCmd())
	cmd.AddCommand(NewStatsCmd())
	return cmd
}

func NewAliveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alive",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			apiClient, err := util.GetAPIClient(ctx)
			if err != nil {
				return err
			}
			alive, err := apiClient.Alive(ctx)
			if err != nil {
				return fmt.Errorf("could not reach server: %w", err)
			}
			if !alive {
				return fmt.Errorf("server at %s is not healthy", apiClient.BaseURI)
			}
			cmd.Println("OK")
			return nil
		},
	}
}

var statsColumns = []output.TableColumn[apimodels.StatsResponse]{
	{
		ColumnConfig: table.ColumnConfig{Name: "resources"},
		Value:        func(s apimodels.StatsResponse) string { return strconv.Itoa(s.Resources) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "running"},
		Value:        func(s apimodels.StatsResponse) string { return strconv.Itoa(s.Running) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "queued"},
		Value:        func(s apimodels.StatsResponse) string { return strconv.Itoa(s.Queued) },
	},
}

func NewStatsCmd() *cobra.Command {
	outputOpts := output.OutputOptions{Format: output.TableFormat}
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show how many resources are registered and how many jobs are running or queued",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			apiClient, err := util.GetAPIClient(ctx)
			if err != nil {
				return err
			}
			stats, err := apiClient.Stats(ctx)
			if err != nil {
				return fmt.Errorf("failed to get stats: %w", err)
			}
			return output.OutputOne(cmd, statsColumns, outputOpts, stats)
		},
	}
	statsCmd.Flags().AddFlagSet(flags.OutputFormatFlags(&outputOpts))
	return statsCmd
}
