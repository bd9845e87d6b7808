package resource

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/techwm-project/techwm/cmd/util"
	"github.com/techwm-project/techwm/cmd/util/flags"
	"github.com/techwm-project/techwm/cmd/util/output"
	"github.com/techwm-project/techwm/pkg/publicapi/apimodels"
)

type AttachOptions struct {
	Kind       string
	OutputOpts output.OutputOptions
}

func NewAttachOptions() *AttachOptions {
	return &AttachOptions{
		OutputOpts: output.OutputOptions{Format: output.TableFormat},
	}
}

func NewAttachCmd() *cobra.Command {
	o := NewAttachOptions()
	attachCmd := &cobra.Command{
		Use:   "attach <id> <name>",
		Short: "Register a resource with the catalog",
		Long: `Register a resource with the catalog. Unless --kind is given, the kind is
decided from the id and name: anything mentioning a GPU vendor or model is a GPU,
everything else a CPU.`,
		Example: `  techwm resource attach cpu-1 "Intel Xeon 8 Core"
  techwm resource attach accel-7 "Alveo U250" --kind gpu`,
		Args: cobra.ExactArgs(2), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0], args[1])
		},
	}
	attachCmd.Flags().StringVar(&o.Kind, "kind", o.Kind, `Force the resource kind: 'cpu' or 'gpu'`)
	attachCmd.Flags().AddFlagSet(flags.OutputFormatFlags(&o.OutputOpts))
	return attachCmd
}

func (o *AttachOptions) run(cmd *cobra.Command, id, name string) error {
	ctx := cmd.Context()
	apiClient, err := util.GetAPIClient(ctx)
	if err != nil {
		return err
	}
	resource, err := apiClient.AttachResource(ctx, apimodels.AttachResourceRequest{ID: id, Name: name, Kind: o.Kind})
	if err != nil {
		return fmt.Errorf("failed to attach resource %s: %w", id, err)
	}
	return output.OutputOne(cmd, resourceColumns, o.OutputOpts, resource)
}
