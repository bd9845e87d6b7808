package version

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/techwm-project/techwm/cmd/util"
	"github.com/techwm-project/techwm/cmd/util/flags"
	"github.com/techwm-project/techwm/cmd/util/output"
	"github.com/techwm-project/techwm/pkg/models"
	"github.com/techwm-project/techwm/pkg/version"
)

type VersionOptions struct {
	Server     bool
	OutputOpts output.OutputOptions
}

func NewVersionOptions() *VersionOptions {
	return &VersionOptions{
		OutputOpts: output.OutputOptions{Format: output.TableFormat},
	}
}

// Versions is what `techwm version` prints.
type Versions struct {
	ClientVersion *models.BuildVersionInfo `json:"clientVersion,omitempty"`
	ServerVersion *models.BuildVersionInfo `json:"serverVersion,omitempty"`
}

func NewCmd() *cobra.Command {
	oV := NewVersionOptions()

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Get the client and optionally the server version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return oV.Run(cmd)
		},
	}
	versionCmd.Flags().BoolVar(&oV.Server, "server", oV.Server, "If true, queries the server for its version.")
	versionCmd.Flags().AddFlagSet(flags.OutputFormatFlags(&oV.OutputOpts))

	return versionCmd
}

var clientVersionColumn = output.TableColumn[Versions]{
	ColumnConfig: table.ColumnConfig{Name: "client"},
	Value:        func(v Versions) string { return v.ClientVersion.GitVersion },
}

var serverVersionColumn = output.TableColumn[Versions]{
	ColumnConfig: table.ColumnConfig{Name: "server"},
	Value:        func(v Versions) string { return v.ServerVersion.GitVersion },
}

func (oV *VersionOptions) Run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	versions := Versions{ClientVersion: version.Get()}
	columns := []output.TableColumn[Versions]{clientVersionColumn}

	if oV.Server {
		apiClient, err := util.GetAPIClient(ctx)
		if err != nil {
			return err
		}
		serverVersion, err := apiClient.Version(ctx)
		if err != nil {
			return fmt.Errorf("error running version: %w", err)
		}
		versions.ServerVersion = serverVersion
		columns = append(columns, serverVersionColumn)
	}

	return output.OutputOne(cmd, columns, oV.OutputOpts, versions)
}
