package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kiranshivaraju/insightreporter/internal/ai"
	"github.com/kiranshivaraju/insightreporter/internal/briefing"
	"github.com/kiranshivaraju/insightreporter/internal/config"
	"github.com/kiranshivaraju/insightreporter/internal/dataset"
	"github.com/kiranshivaraju/insightreporter/internal/pipeline"
	"github.com/kiranshivaraju/insightreporter/internal/render"
	"github.com/kiranshivaraju/insightreporter/internal/session"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

const cliOwner = "cli"

type runFlags struct {
	asJSON   bool
	showLogs bool
	plain    bool
	progress bool
	parallel int
}

// runOutcome is one source's result. Exactly one of Briefing and Error is set.
type runOutcome struct {
	Source   string             `json:"source"`
	Briefing *briefing.Briefing `json:"briefing,omitempty"`
	Error    string             `json:"error,omitempty"`
	Logs     []models.LogEntry  `json:"logs,omitempty"`

	err error
}

func newRunCmd(root *rootFlags) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [source...]",
		Short: "Produce a briefing for one or more datasets",
		Long: "Run analyzes each source (a CSV path or http(s) URL) and sends its worst\n" +
			"churn month through the Editor and Strategist. With no arguments the\n" +
			"configured dataset source is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.ValidateAI(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			sources := args
			if len(sources) == 0 {
				sources = []string{cfg.Dataset.Source}
			}
			var progress io.Writer
			if f.progress {
				progress = cmd.ErrOrStderr()
			}
			return runBriefings(cmd.Context(), cmd.OutOrStdout(), progress, cfg, sources, f)
		},
	}
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&f.showLogs, "logs", false, "print the session log after each briefing")
	cmd.Flags().BoolVar(&f.plain, "plain", false, "disable colour and borders")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "report pipeline states on stderr")
	cmd.Flags().IntVar(&f.parallel, "parallel", 4, "number of sources briefed concurrently")
	return cmd
}

// runBriefings briefs every source and writes the outcomes to w in argument
// order. Pipeline states go to progress when it is not nil.
func runBriefings(ctx context.Context, w, progress io.Writer, cfg *config.Config, sources []string, f *runFlags) error {
	provider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	loader := dataset.NewLoader(cfg.Dataset.HTTPTimeout)

	var progressMu sync.Mutex
	newService := func(src string) *briefing.Service {
		var opts []pipeline.Option
		if progress != nil {
			opts = append(opts, pipeline.WithObserver(func(s pipeline.State) {
				progressMu.Lock()
				defer progressMu.Unlock()
				fmt.Fprintf(progress, "%s: %s\n", src, s)
			}))
		}
		return briefing.NewService(loader, pipeline.NewForProvider(provider, opts...), nil, src, cfg.AI.InferenceTimeout)
	}

	outcomes := make([]runOutcome, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	if f.parallel > 0 {
		g.SetLimit(f.parallel)
	}
	for i, src := range sources {
		g.Go(func() error {
			out := runOutcome{Source: src}
			b, err := newService(src).Dispatch(gctx, cliOwner, session.NewID())
			if err != nil {
				out.err = err
				out.Error = describeRunError(err)
				var runErr *briefing.RunError
				if errors.As(err, &runErr) {
					out.Logs = runErr.Logs
				}
			} else {
				out.Briefing = b
			}
			outcomes[i] = out
			// A failed source does not cancel the others.
			return nil
		})
	}
	_ = g.Wait()

	if err := writeOutcomes(w, outcomes, f); err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
		}
	}
	switch {
	case failed == 0:
		return nil
	case len(outcomes) == 1:
		if errors.Is(outcomes[0].err, dataset.ErrNotFound) {
			return fmt.Errorf("%s: %w", dataset.NotFoundHint, outcomes[0].err)
		}
		return outcomes[0].err
	default:
		return fmt.Errorf("%d of %d briefings failed", failed, len(outcomes))
	}
}

func writeOutcomes(w io.Writer, outcomes []runOutcome, f *runFlags) error {
	if f.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outcomes)
	}

	r, err := render.New(render.Options{Plain: f.plain, ShowLogs: f.showLogs})
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		if o.err != nil {
			err = r.Failure(w, o.Source, errors.New(o.Error), o.Logs)
		} else {
			err = r.Briefing(w, o.Briefing)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func describeRunError(err error) string {
	if errors.Is(err, dataset.ErrNotFound) {
		return dataset.NotFoundHint
	}
	return err.Error()
}
