package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/charts"
	"github.com/launchdash/launchdash/server/internal/config"
	"github.com/launchdash/launchdash/server/internal/dataset"
)

// queryFlags are shared by the one-shot chart commands.
type queryFlags struct {
	data string
	site string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.data, "data", config.DefaultDatasetPath, "path to the launch records CSV")
	cmd.Flags().StringVar(&q.site, "site", types.AllSites, "launch site, or ALL")
}

func newSummaryCmd() *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the success summary chart for a site as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := dataset.Load(q.data, dataset.DefaultColumns)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), charts.SiteSummary(ds, q.site))
		},
	}
	q.register(cmd)
	return cmd
}

func newScatterCmd() *cobra.Command {
	var (
		q         queryFlags
		low, high float64
	)
	cmd := &cobra.Command{
		Use:   "scatter",
		Short: "Print the payload/outcome scatter chart for a site and payload range as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := dataset.Load(q.data, dataset.DefaultColumns)
			if err != nil {
				return err
			}
			rng := ds.Bounds()
			if cmd.Flags().Changed("low") {
				rng.Low = low
			}
			if cmd.Flags().Changed("high") {
				rng.High = high
			}
			return writeJSON(cmd.OutOrStdout(), charts.ScatterPoints(ds, q.site, rng))
		},
	}
	q.register(cmd)
	cmd.Flags().Float64Var(&low, "low", 0, "lower payload bound in kg; dataset minimum when unset")
	cmd.Flags().Float64Var(&high, "high", 0, "upper payload bound in kg; dataset maximum when unset")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
