package job

import (
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/techwm-project/techwm/cmd/util/output"
	"github.com/techwm-project/techwm/pkg/models"
)

func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Submit, inspect and end jobs",
	}
	cmd.AddCommand(NewSubmitCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewDescribeCmd())
	cmd.AddCommand(NewCancelCmd())
	cmd.AddCommand(NewFinishCmd())
	return cmd
}

var jobColumns = []output.TableColumn[models.Job]{
	{
		ColumnConfig: table.ColumnConfig{Name: "id", Align: text.AlignRight},
		Value:        func(j models.Job) string { return j.ID },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "name", WidthMax: 32, WidthMaxEnforcer: text.WrapText},
		Value:        func(j models.Job) string { return j.Name },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "owner"},
		Value:        func(j models.Job) string { return j.Owner },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "state"},
		Value:        func(j models.Job) string { return j.State.String() },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "resources", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		Value: func(j models.Job) string {
			if len(j.AllocatedResources) == 0 {
				return strings.Join(j.RequestedResources, " ")
			}
			return strings.Join(lo.Map(j.AllocatedResources, func(h models.ResourceHandle, _ int) string {
				return h.ID + "(" + h.Kind.String() + ")"
			}), " ")
		},
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "created"},
		Value:        func(j models.Job) string { return j.CreateTime.Format(time.DateTime) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "modified"},
		Value:        func(j models.Job) string { return j.ModifyTime.Format(time.DateTime) },
	},
}
