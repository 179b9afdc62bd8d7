package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/domain"
	"github.com/storefront/backend/internal/infrastructure/catalog"
	"github.com/storefront/backend/internal/search"
)

const (
	flagCatalog = "catalog"
	flagLimit   = "limit"
	flagJSON    = "json"
)

func newRankCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "rank QUERY...",
		Short: "Rank a catalog file against a query",
		Long:  `Load a YAML or JSON catalog file and print the entries matching the query, best first.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRank,
	}
	c.Flags().StringP(flagCatalog, "c", "", "Catalog file (YAML or JSON)")
	c.Flags().IntP(flagLimit, "n", 10, "Maximum results to print (0 for all)")
	c.Flags().Bool(flagJSON, false, "Print results as JSON")
	_ = c.MarkFlagRequired(flagCatalog)
	return c
}

func runRank(c *cobra.Command, args []string) error {
	path, _ := c.Flags().GetString(flagCatalog)
	limit, _ := c.Flags().GetInt(flagLimit)
	asJSON, _ := c.Flags().GetBool(flagJSON)
	if limit < 0 {
		return errors.New("limit must not be negative")
	}

	logger := logrus.New()
	logger.SetOutput(c.ErrOrStderr())
	logger.SetLevel(logrus.WarnLevel)

	entries, err := catalog.NewFileSource(path, logger.WithField("component", "searchctl")).LoadCatalog(c.Context())
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	query := strings.Join(args, " ")
	results := search.Rank(query, entries)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if asJSON {
		enc := json.NewEncoder(c.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return printResults(c.OutOrStdout(), query, results)
}

func printResults(w io.Writer, query string, results []domain.ScoredEntry) error {
	if len(results) == 0 {
		_, err := fmt.Fprintf(w, "No products match %q\n", query)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tFIELD\tID\tNAME\tBRAND")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%.2f\t%s\t%s\t%s\t%s\n",
			i+1, r.Score, r.MatchedField, r.Entry.ID, r.Entry.Name, r.Entry.Brand)
	}
	return tw.Flush()
}
