package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "isd",
		Short: "Intoxicated speech dataset builder",
		Long: `isd walks an ALC corpus of recordings and annotations and builds
a deduplicated annotation summary and one MFCC feature bundle per labeled recording.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.root, "root", "", "corpus root directory")
	flags.StringVar(&opts.out, "out", "", "summary CSV path (summary) or bundle directory (bundles)")
	flags.StringVar(&opts.catalogDriver, "catalog-driver", "", "catalog driver: sqlite or mongo (empty disables)")
	flags.StringVar(&opts.catalogDSN, "catalog-dsn", "", "catalog data source (sqlite file or mongo URI)")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "disable the progress bar")

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Aggregate annotations into a deduplicated CSV summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(ctx, cmd, opts)
		},
	}

	bundlesCmd := &cobra.Command{
		Use:   "bundles",
		Short: "Extract MFCC feature bundles for every labeled recording",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundles(ctx, cmd, opts)
		},
	}
	bundlesCmd.Flags().IntVar(&opts.frameLength, "frame-length", 0, "frames per bundle after padding or truncation")
	bundlesCmd.Flags().IntVar(&opts.coefficients, "coefficients", 0, "MFCC coefficients per frame")
	bundlesCmd.Flags().StringVar(&opts.format, "format", "", "bundle file format: gob or json")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd, opts)
		},
	}

	rootCmd.AddCommand(summaryCmd, bundlesCmd, configCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
