package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/insightreporter/internal/config"
)

type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "insightreporter",
		Short: "Automated data journalism for company metrics",
		Long: "InsightReporter scans a company metrics dataset for its worst churn month,\n" +
			"has an Editor draft a breaking-news brief about it, and has a Strategist\n" +
			"turn that brief into three recommendations for the CEO.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "",
		"YAML config file (default $"+config.EnvConfigFile+")")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newAnalyzeCmd(flags))
	cmd.AddCommand(newKeysCmd(flags))
	return cmd
}

// loadConfig reads configuration and installs the JSON logger at the
// configured level, writing to w.
func (f *rootFlags) loadConfig(w io.Writer) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	level, err := config.ParseLogLevel(cfg.Server.LogLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
	return cfg, nil
}
