package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dianapaula19/intoxicated-speech-detection/config"
	"github.com/dianapaula19/intoxicated-speech-detection/dataset"
	"github.com/dianapaula19/intoxicated-speech-detection/db"
	"github.com/dianapaula19/intoxicated-speech-detection/utils"

	"github.com/mdobak/go-xerrors"
	"github.com/spf13/cobra"
)

type options struct {
	configPath    string
	root          string
	out           string
	catalogDriver string
	catalogDSN    string
	format        string
	frameLength   int
	coefficients  int
	noProgress    bool
}

// loadConfig layers command-line flags over the file and environment settings.
func loadConfig(cmd *cobra.Command, opts *options, job string) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Corpus.Root = opts.root
	}
	if flags.Changed("out") {
		switch job {
		case "summary":
			cfg.Output.SummaryCSV = opts.out
		case "bundles":
			cfg.Output.BundleDir = opts.out
		}
	}
	if flags.Changed("catalog-driver") {
		cfg.Catalog.Driver = opts.catalogDriver
	}
	if flags.Changed("catalog-dsn") {
		cfg.Catalog.DSN = opts.catalogDSN
	}
	if flags.Changed("no-progress") {
		cfg.Progress = !opts.noProgress
	}
	if flags.Changed("frame-length") {
		cfg.Features.FrameLength = opts.frameLength
	}
	if flags.Changed("coefficients") {
		cfg.Features.Coefficients = opts.coefficients
	}
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openCatalog(cfg *config.Config) (db.DBClient, error) {
	if cfg.Catalog.Driver == "" {
		return nil, nil
	}
	return db.NewDBClient(cfg.Catalog.Driver, cfg.Catalog.DSN, cfg.Catalog.Database)
}

// setup resolves the configuration, the process logger and the optional catalog.
func setup(cmd *cobra.Command, opts *options, job string) (*config.Config, *slog.Logger, db.DBClient, error) {
	cfg, err := loadConfig(cmd, opts, job)
	if err != nil {
		return nil, utils.GetLogger(), nil, err
	}
	logger := utils.ConfigureLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	catalog, err := openCatalog(cfg)
	if err != nil {
		return nil, logger, nil, err
	}
	return cfg, logger, catalog, nil
}

func closeCatalog(ctx context.Context, logger *slog.Logger, catalog db.DBClient) {
	if catalog == nil {
		return
	}
	if err := catalog.Close(); err != nil {
		logger.WarnContext(ctx, "Failed to close catalog.", slog.Any("error", xerrors.New(err)))
	}
}

func runSummary(ctx context.Context, cmd *cobra.Command, opts *options) error {
	cfg, logger, catalog, err := setup(cmd, opts, "summary")
	if err != nil {
		logger.ErrorContext(ctx, "Failed to set up summary job.", slog.Any("error", xerrors.New(err)))
		return err
	}
	defer closeCatalog(ctx, logger, catalog)

	job := dataset.NewSummaryJob(cfg, logger, catalog, cmd.OutOrStdout())
	result, err := job.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Summary job failed.", slog.Any("error", xerrors.New(err)))
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nRead %d annotations, wrote %d rows to %s (%d duplicates dropped)\n",
		result.Files, result.Rows, result.CSVPath, result.Duplicates)
	return nil
}

func runBundles(ctx context.Context, cmd *cobra.Command, opts *options) error {
	cfg, logger, catalog, err := setup(cmd, opts, "bundles")
	if err != nil {
		logger.ErrorContext(ctx, "Failed to set up bundle job.", slog.Any("error", xerrors.New(err)))
		return err
	}
	defer closeCatalog(ctx, logger, catalog)

	job, err := dataset.NewBundleJob(cfg, logger, catalog)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create bundle job.", slog.Any("error", xerrors.New(err)))
		return err
	}
	result, err := job.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Bundle job failed.", slog.Any("error", xerrors.New(err)))
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed %d recordings, wrote %d bundles to %s\n",
		result.Recordings, result.Written, cfg.Output.BundleDir)
	if len(result.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped %d recordings:\n", len(result.Skipped))
		for _, skip := range result.Skipped {
			fmt.Fprintf(out, "  %-10s %s (%v)\n", skip.Identity, skip.Path, skip.Reason)
		}
	}
	if len(result.Collisions) > 0 {
		fmt.Fprintf(out, "Overwritten identities: %v\n", result.Collisions)
	}
	return nil
}

func runConfig(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts, "")
	if err != nil {
		utils.GetLogger().ErrorContext(cmd.Context(), "Failed to load config.", slog.Any("error", xerrors.New(err)))
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
