package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/chromedriver-sync/internal/logger"
	"github.com/oshokin/chromedriver-sync/internal/service/elevation"
	"github.com/oshokin/chromedriver-sync/internal/service/sync"
	"github.com/oshokin/chromedriver-sync/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// browserVersion optionally pins the browser version instead of probing.
	browserVersion string

	// logLevel sets the minimum level for console and file output.
	logLevel string

	// rootCmd represents the base command for synchronizing the driver binary.
	rootCmd = &cobra.Command{
		Use:   "chromedriver-sync",
		Short: "Keep the ChromeDriver binary matched to the installed Chrome browser",
		Args:  cobra.NoArgs,
		// The tool runs unattended; diagnostics belong in the log, not on a console.
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Hand over to an elevated copy of ourselves when the platform
			// requires it. The parent exits silently with code 0.
			relaunched, err := elevation.RelaunchIfNeeded(ctx)
			if err != nil {
				logger.Warnf(ctx, "Could not relaunch with elevated privileges: %v", err)
			}

			if relaunched {
				return nil
			}

			options := &sync.Options{
				ConfigPath:     configPath,
				BrowserVersion: browserVersion,
			}

			return sync.Run(ctx, options)
		},
	}
)

// Execute runs the chromedriver-sync CLI and translates stage failures into
// their contractual exit codes.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(sync.ExitCode(err))
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	rootCmd.Flags().StringVar(&browserVersion, "browser-version", "", "skip probing and use this browser version")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "minimum log level (debug, info, warn, error)")
}
