package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [target]",
		Short: "Print the target subtree",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.List(cmd.Context(), target(args), options(cmd), cmd.OutOrStdout())
		},
	}
}
