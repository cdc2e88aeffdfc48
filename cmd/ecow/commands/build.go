package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/ecow/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [target]",
		Short: "Build the target subtree, skipping units that are up to date",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			return c.app.Build(cmd.Context(), target(args), app.BuildOptions{
				Options: options(cmd),
				Watch:   watch,
			})
		},
	}
	cmd.Flags().BoolP("watch", "w", false, "Rebuild whenever a file below the project root changes")
	return cmd
}
