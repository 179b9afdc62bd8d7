package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "searchctl",
		Short: "Inspect storefront search ranking",
		Long: `searchctl runs the storefront ranking engine locally against a catalog file,
which is useful for checking why a product does or does not show up for a query.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	root.AddCommand(newRankCmd())
	root.AddCommand(newNormalizeCmd())
	return root
}
