package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/insightreporter/internal/analysis"
	"github.com/kiranshivaraju/insightreporter/internal/dataset"
	"github.com/kiranshivaraju/insightreporter/internal/render"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

func newAnalyzeCmd(root *rootFlags) *cobra.Command {
	var (
		rows   int
		asJSON bool
		plain  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [source]",
		Short: "Find the worst churn month without calling a model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			source := cfg.Dataset.Source
			if len(args) == 1 {
				source = args[0]
			}

			ds, err := dataset.NewLoader(cfg.Dataset.HTTPTimeout).Load(cmd.Context(), source)
			if err != nil {
				if errors.Is(err, dataset.ErrNotFound) {
					return fmt.Errorf("%s: %w", dataset.NotFoundHint, err)
				}
				return err
			}
			res, err := analysis.Analyze(ds)
			if err != nil {
				return fmt.Errorf("analyzing %s: %w", source, err)
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Source   string                `json:"source"`
					Analysis models.AnalysisResult `json:"analysis"`
					Summary  string                `json:"summary"`
					Rows     []models.DataRow      `json:"rows,omitempty"`
				}{source, res, analysis.Summary(res), tailRows(ds, rows)})
			}

			r, err := render.New(render.Options{Plain: plain})
			if err != nil {
				return err
			}
			if rows > 0 {
				if err := r.Dataset(w, models.Dataset{Source: ds.Source, Rows: ds.Tail(rows)}); err != nil {
					return err
				}
			}
			return r.Analysis(w, source, res)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 0, "also print the last N rows of the dataset")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the analysis as JSON")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colour and borders")
	return cmd
}

func tailRows(ds models.Dataset, n int) []models.DataRow {
	if n <= 0 {
		return nil
	}
	return ds.Tail(n)
}
