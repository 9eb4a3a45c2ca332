package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bumper/internal/config"
	logpkg "github.com/kailas-cloud/bumper/internal/logger"
)

// Flag names shared across commands.
const (
	flagEnv      = "env"
	flagSolrURL  = "solr-url"
	flagLogLevel = "log-level"
)

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	env      string
	solrURL  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	gf := &globalFlags{}

	root := &cobra.Command{
		Use:           "bumper",
		Short:         "Search bug reports and their fixes in the Bumper index",
		SilenceUsage:  true,
		SilenceErrors: false,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&gf.env, flagEnv, config.GetEnv(), "Config environment (config/<env>.yaml)")
	root.PersistentFlags().StringVar(&gf.solrURL, flagSolrURL, "", "Override solr.base_url")
	root.PersistentFlags().StringVar(&gf.logLevel, flagLogLevel, "", "Override logging.level")

	root.AddCommand(
		newServeCmd(gf),
		newSearchCmd(gf),
		newFixesCmd(gf),
		newVersionCmd(),
	)
	return root
}

// load reads the config for the selected environment and applies flag overrides.
func (gf *globalFlags) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(gf.env)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if gf.solrURL != "" {
		cfg.Solr.BaseURL = gf.solrURL
		if err := cfg.Validate(); err != nil {
			return config.Config{}, nil, fmt.Errorf("invalid --%s: %w", flagSolrURL, err)
		}
	}
	if gf.logLevel != "" {
		cfg.Logging.Level = gf.logLevel
	}

	opts := logpkg.Options{Level: cfg.Logging.Level}
	if f := cfg.Logging.File; f.Path != "" {
		opts.File = &logpkg.FileOptions{
			Path:       f.Path,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		}
	}
	logger, err := logpkg.NewLogger(gf.env, opts)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
