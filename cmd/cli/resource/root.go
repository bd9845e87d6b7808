package resource

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/techwm-project/techwm/cmd/util/output"
	"github.com/techwm-project/techwm/pkg/models"
)

func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Register and inspect hardware resources",
	}
	cmd.AddCommand(NewAttachCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewDescribeCmd())
	return cmd
}

var resourceColumns = []output.TableColumn[models.Resource]{
	{
		ColumnConfig: table.ColumnConfig{Name: "serial", Align: text.AlignRight},
		Value:        func(r models.Resource) string { return strconv.FormatUint(r.SerialNumber, 10) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "id", WidthMax: 24, WidthMaxEnforcer: text.WrapText},
		Value:        func(r models.Resource) string { return r.ID },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "name", WidthMax: 40, WidthMaxEnforcer: text.WrapText},
		Value:        func(r models.Resource) string { return r.Name },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "kind"},
		Value:        func(r models.Resource) string { return r.Kind.String() },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "available"},
		Value:        func(r models.Resource) string { return strconv.FormatBool(r.Available) },
	},
}
