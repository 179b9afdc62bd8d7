package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/search"
)

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize TEXT...",
		Short: "Show how text is normalized for matching",
		Long:  `Print the Latin skeleton, its Georgian rendering and the tokens the ranker compares.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			variants := search.Variants(strings.Join(args, " "))
			out := c.OutOrStdout()
			fmt.Fprintf(out, "latin:    %s\n", variants.Latin())
			fmt.Fprintf(out, "georgian: %s\n", variants.Georgian())
			fmt.Fprintf(out, "tokens:   %s\n", strings.Join(search.Tokenize(variants.Latin()), " | "))
			return nil
		},
	}
}
